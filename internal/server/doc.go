// Package server implements the MCP (Model Context Protocol) server for the
// product compositor.
//
// The server communicates over stdio using JSON-RPC 2.0, one request per
// line. Supported methods are initialize, tools/list, tools/call and ping.
//
// # Available Tools
//
// Inspection:
//   - image_info: Dimensions, format and alpha of an image or PSD
//   - template_analyze: Safe band of a template
//   - profiles_list: Configured compositing profiles
//   - ocr_status: Whether the text analysis strategy can run
//
// Processing:
//   - product_convert: Flatten a PSD to PNG, optionally matted
//   - composite_apply: Composite one product onto a template
//   - composite_batch: Composite many products concurrently
//
// Templates are cached by path for the lifetime of the server.
//
// # Error Handling
//
// Malformed arguments are answered with code -32602. Failed jobs return
// code -32000 with a short failure summary in the message and the full
// error in data. A batch never fails as a whole: its report lists the
// outcome of every product.
package server
