// Package config loads COS credentials from the environment and optional
// tool settings from a YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
)

// Sentinel errors for config operations.
var (
	ErrMissingCredential = errors.New("missing required environment variable")
	ErrConfigNotFound    = errors.New("config file not found")
	ErrConfigParse       = errors.New("failed to parse config")
	ErrEmptyConfigName   = errors.New("config name cannot be empty")
	ErrConfigTooLarge    = errors.New("config file exceeds maximum size")
)

// maxConfigSize caps YAML input to prevent memory exhaustion.
const maxConfigSize = 1 << 20

// Environment variable names for COS credentials.
const (
	EnvSecretID  = "COS_SECRET_ID"
	EnvSecretKey = "COS_SECRET_KEY"
	EnvRegion    = "COS_REGION"
	EnvBucket    = "COS_BUCKET"
)

// COS holds bucket credentials, read once at startup and immutable for
// the process lifetime.
type COS struct {
	SecretID  string
	SecretKey string
	Region    string
	Bucket    string
}

// COSFromEnv reads COS credentials from the environment. All four
// variables are required; the first missing one is reported.
func COSFromEnv() (COS, error) {
	cfg := COS{
		SecretID:  os.Getenv(EnvSecretID),
		SecretKey: os.Getenv(EnvSecretKey),
		Region:    os.Getenv(EnvRegion),
		Bucket:    os.Getenv(EnvBucket),
	}

	for _, v := range []struct {
		name  string
		value string
	}{
		{EnvSecretID, cfg.SecretID},
		{EnvSecretKey, cfg.SecretKey},
		{EnvRegion, cfg.Region},
		{EnvBucket, cfg.Bucket},
	} {
		if v.value == "" {
			return COS{}, fmt.Errorf("%w: %s", ErrMissingCredential, v.name)
		}
	}

	return cfg, nil
}

// BucketURL returns the public base URL of the bucket.
func (c COS) BucketURL() string {
	return fmt.Sprintf("https://%s.cos.%s.myqcloud.com", c.Bucket, c.Region)
}

// BucketHost returns the host part of the bucket URL, used to recognize
// references that already point at the bucket.
func (c COS) BucketHost() string {
	return fmt.Sprintf("%s.cos.%s.myqcloud.com", c.Bucket, c.Region)
}

// Config holds optional tool settings loaded from a YAML file.
// CLI flags override anything set here.
type Config struct {
	Timeout string        `yaml:"timeout"` // Per-render timeout, e.g. "30s"
	Workers int           `yaml:"workers"` // Parallel workers for batch runs (0 = auto)
	Upload  UploadConfig  `yaml:"upload"`
	Mermaid MermaidConfig `yaml:"mermaid"`
}

// UploadConfig defines object naming options.
type UploadConfig struct {
	KeyPrefix string `yaml:"keyPrefix"` // Object key prefix (default "imgs/")
}

// MermaidConfig defines mermaid rendering options.
type MermaidConfig struct {
	Backend string  `yaml:"backend"` // "browser" or "cli"
	Theme   string  `yaml:"theme"`   // default, dark, forest, neutral
	Scale   float64 `yaml:"scale"`   // Device scale factor
	Layout  string  `yaml:"layout"`  // Flowchart layout: dagre or elk
	Bundle  string  `yaml:"bundle"`  // Local mermaid bundle path ("" = CDN)
}

// DefaultConfig returns a neutral configuration.
func DefaultConfig() *Config {
	return &Config{}
}

// LoadConfig loads configuration from a file path or config name.
// A string containing a path separator is treated as a file path;
// otherwise it is searched in standard locations. Unknown fields are
// rejected to catch typos.
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	configPath := nameOrPath
	if !strings.ContainsAny(nameOrPath, "/\\") {
		resolved, err := resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
		configPath = resolved
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if len(data) > maxConfigSize {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrConfigTooLarge, len(data), maxConfigSize)
	}

	var cfg Config
	if err := yaml.UnmarshalWithOptions(data, &cfg, yaml.Strict()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	return &cfg, nil
}

// resolveConfigPath searches for a config file by name.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, ~/.config/mdproc/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	tried := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		localPath := name + ext
		if fileExists(localPath) {
			return localPath, nil
		}
		tried = append(tried, localPath)
	}

	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, "mdproc", name+ext)
			if fileExists(userPath) {
				return userPath, nil
			}
			tried = append(tried, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(tried, ", "))
}

// fileExists returns true if the path exists and is a regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
