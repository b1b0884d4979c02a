package mdproc

import (
	"bytes"
	"context"
	"crypto/md5" // #nosec G501 -- content hash for object naming, not security
	"encoding/hex"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/tencentyun/cos-go-sdk-v5"

	"github.com/honghe/mdproc/internal/config"
)

// Uploader persists bytes to the configured bucket and returns a durable URL.
type Uploader interface {
	Upload(ctx context.Context, data []byte, nameHint string) (UploadResult, error)
}

// Compile-time interface check.
var _ Uploader = (*COSUploader)(nil)

// DefaultKeyPrefix is where uploaded assets live inside the bucket.
const DefaultKeyPrefix = "imgs/"

// hashLen is the number of hex characters of the content hash kept in
// object keys, enough to bust caches and avoid collisions in practice.
const hashLen = 8

// COSUploader uploads objects to a Tencent Cloud Object Storage bucket.
type COSUploader struct {
	client    *cos.Client
	baseURL   string
	keyPrefix string
}

// NewCOSUploader creates an uploader for the bucket named in cfg, with
// credentials sent via the SDK's authorization transport. An empty
// keyPrefix means DefaultKeyPrefix.
func NewCOSUploader(cfg config.COS, keyPrefix string) (*COSUploader, error) {
	u, err := url.Parse(cfg.BucketURL())
	if err != nil {
		return nil, fmt.Errorf("%w: invalid bucket URL: %v", ErrUpload, err)
	}
	return newCOSUploaderForURL(u, cfg.SecretID, cfg.SecretKey, keyPrefix), nil
}

// newCOSUploaderForURL wires the SDK client against an explicit bucket
// URL. Tests point it at an httptest server.
func newCOSUploaderForURL(bucketURL *url.URL, secretID, secretKey, keyPrefix string) *COSUploader {
	client := cos.NewClient(&cos.BaseURL{BucketURL: bucketURL}, &http.Client{
		Transport: &cos.AuthorizationTransport{
			SecretID:  secretID,
			SecretKey: secretKey,
		},
	})
	if keyPrefix == "" {
		keyPrefix = DefaultKeyPrefix
	}
	return &COSUploader{
		client:    client,
		baseURL:   strings.TrimSuffix(bucketURL.String(), "/"),
		keyPrefix: keyPrefix,
	}
}

// Upload puts the bytes under a content-derived key and returns the
// public URL. Identical bytes and hint always map to the same key.
func (u *COSUploader) Upload(ctx context.Context, data []byte, nameHint string) (UploadResult, error) {
	if len(data) == 0 {
		return UploadResult{}, fmt.Errorf("%w: empty payload", ErrUpload)
	}

	key := u.objectKey(data, nameHint)

	opt := &cos.ObjectPutOptions{
		ObjectPutHeaderOptions: &cos.ObjectPutHeaderOptions{
			ContentType:      http.DetectContentType(data),
			XCosStorageClass: "STANDARD",
		},
	}

	if _, err := u.client.Object.Put(ctx, key, bytes.NewReader(data), opt); err != nil {
		return UploadResult{}, fmt.Errorf("%w: putting %s: %v", ErrUpload, key, err)
	}

	return UploadResult{
		Key: key,
		URL: u.baseURL + "/" + key,
	}, nil
}

// objectKey derives the object key: <prefix><stem>_<hash8><ext>, where
// hash8 is the first 8 hex characters of the MD5 of the content.
func (u *COSUploader) objectKey(data []byte, nameHint string) string {
	return u.keyPrefix + ObjectName(data, nameHint)
}

// ObjectName derives the content-addressed file name for a payload.
// The hint contributes the stem and extension; the hash busts caches
// when content changes under the same name.
func ObjectName(data []byte, nameHint string) string {
	sum := md5.Sum(data) // #nosec G401 -- naming, not security
	hash := hex.EncodeToString(sum[:])[:hashLen]

	base := path.Base(nameHint)
	if base == "." || base == "/" {
		base = ""
	}
	ext := path.Ext(base)
	stem := sanitizeNameComponent(strings.TrimSuffix(base, ext))
	if stem == "" {
		stem = "asset"
	}
	if ext == "" {
		ext = ".png"
	}

	return stem + "_" + hash + strings.ToLower(ext)
}

// sanitizeNameComponent keeps object keys to a safe character set.
func sanitizeNameComponent(value string) string {
	var b strings.Builder
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '_' || r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	return strings.Trim(b.String(), "-")
}
