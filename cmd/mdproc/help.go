package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdproc <command> [flags] <input.md> [input2.md ...]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  imgupload     Upload referenced images to COS and rewrite links")
	fmt.Fprintln(w, "  table2img     Render pipe tables to images and upload to COS")
	fmt.Fprintln(w, "  mermaid2img   Render mermaid blocks to images and upload to COS")
	fmt.Fprintln(w, "  zhihu         Remove blank lines around image references")
	fmt.Fprintln(w, "  version       Show version information")
	fmt.Fprintln(w, "  help          Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  COS_SECRET_ID, COS_SECRET_KEY, COS_REGION, COS_BUCKET")
	fmt.Fprintln(w, "                Bucket credentials, required by the upload commands")
	fmt.Fprintln(w, "  MMDC_PATH     mermaid-cli binary for 'mermaid2img --backend cli'")
	fmt.Fprintln(w, "  ROD_BROWSER_BIN")
	fmt.Fprintln(w, "                Pre-installed Chrome for the browser backend")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'mdproc help <command>' for details on a specific command.")
}

// printPipelineUsage prints usage for one of the pipeline commands.
func printPipelineUsage(w io.Writer, cmd string) {
	fmt.Fprintf(w, "Usage: mdproc %s [flags] <input.md> [input2.md ...]\n", cmd)
	fmt.Fprintln(w)
	switch cmd {
	case "imgupload":
		fmt.Fprintln(w, "Upload every image the document references to the bucket and")
		fmt.Fprintln(w, "rewrite the references. Images already hosted on the bucket are")
		fmt.Fprintln(w, "left untouched. Default output: <stem>_output.md")
	case "table2img":
		fmt.Fprintln(w, "Render each pipe table as an image, upload it, and replace the")
		fmt.Fprintln(w, "table block with an image reference. Default output: <stem>_table2img.md")
	case "mermaid2img":
		fmt.Fprintln(w, "Render each fenced mermaid block as an image, upload it, and")
		fmt.Fprintln(w, "replace the block with an image reference. Default output: <stem>_mm2img.md")
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -o, --output <path>   Output file (single input only)")
	fmt.Fprintln(w, "      --in-place        Overwrite the input file")
	fmt.Fprintln(w, "  -c, --config <name>   Config file name or path")
	fmt.Fprintln(w, "  -t, --timeout <d>     Per-render timeout (e.g., 30s, 2m)")
	fmt.Fprintln(w, "  -w, --workers <n>     Parallel workers for multiple inputs (0 = auto)")
	fmt.Fprintln(w, "  -q, --quiet           Only show errors")
	fmt.Fprintln(w, "  -v, --verbose         Show per-match progress")
	if cmd == "mermaid2img" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Mermaid:")
		fmt.Fprintln(w, "      --backend <s>     Rendering backend: browser, cli")
		fmt.Fprintln(w, "      --theme <s>       Theme: default, dark, forest, neutral")
		fmt.Fprintln(w, "      --layout <s>      Flowchart layout engine: dagre, elk")
		fmt.Fprintln(w, "      --scale <f>       Device scale factor")
		fmt.Fprintln(w, "      --bundle <path>   Local mermaid bundle (default: jsDelivr CDN)")
		fmt.Fprintln(w, "      --mmdc <path>     mermaid-cli binary (cli backend)")
	}
}

// printZhihuUsage prints usage for the zhihu command.
func printZhihuUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdproc zhihu [flags] <input.md> [input2.md ...]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Remove blank lines directly before and after image references, for")
	fmt.Fprintln(w, "platforms that render them as extra vertical gaps.")
	fmt.Fprintln(w, "Default output: <stem>_forzhihu.md")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -o, --output <path>   Output file (single input only)")
	fmt.Fprintln(w, "      --in-place        Overwrite the input file")
	fmt.Fprintln(w, "  -q, --quiet           Only show errors")
}
