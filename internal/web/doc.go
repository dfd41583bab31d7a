// Package web serves the compositor over HTTP for browser uploads.
//
// POST /process takes a multipart form with one template_file and one or
// more psd_files. Every product is composited onto the template with the
// configured server profile and written to the server output directory;
// the response lists each file with its output path and an embedded
// preview:
//
//	{"results": [
//	  {"filename": "shoe.psd", "success": true,
//	   "output_path": "output/processed_shoe.jpg",
//	   "preview_data": "data:image/jpeg;base64,..."},
//	  {"filename": "bad.psd", "success": false,
//	   "error": "could not read image file"}
//	]}
//
// Uploads are stored in a fresh directory per request and removed when the
// request finishes. A background sweep also removes anything in the upload
// folder older than the configured max age.
//
// GET /healthz reports liveness. All routes allow any origin.
package web
