// Package mdproc externalizes visual content from markdown documents into
// a Cloud Object Storage bucket.
//
// Three pipelines share one Uploader:
//
//   - UploadImages finds image references, resolves their bytes (remote
//     fetch or local read), uploads them, and rewrites the references to
//     the bucket URLs.
//   - RenderTables finds pipe tables, rasterizes each with headless
//     Chrome, uploads the screenshot, and replaces the table block with an
//     image reference.
//   - RenderMermaid finds fenced mermaid blocks and does the same, either
//     through headless Chrome or the mermaid-cli (mmdc) binary.
//
// Basic usage:
//
//	cos, err := config.COSFromEnv()
//	if err != nil {
//		log.Fatal(err)
//	}
//	up, err := mdproc.NewCOSUploader(cos, "")
//	if err != nil {
//		log.Fatal(err)
//	}
//	svc := mdproc.New(mdproc.WithUploader(up))
//	defer svc.Close()
//
//	out, err := svc.RenderTables(ctx, mdproc.Document{Path: path, Content: content})
//
// All pipelines are fail-fast: the first render, fetch, or upload error
// aborts the run so the caller never writes a document that references
// uploads that did not happen. Scanner-level ambiguities (an unterminated
// fence, a table without a delimiter row) are skipped, not fatal.
//
// The headless Chrome instance is launched lazily on the first render and
// reused for every match in the document. Call Close to release it.
package mdproc
