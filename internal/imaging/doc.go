// Package imaging provides the raster primitives of the compositor.
//
// It decodes product and template files into a Raster, tracks whether a
// raster carries a real alpha channel, strips near-white backgrounds to
// transparency, and encodes finished canvases as JPEG or PNG.
//
// # Rasters
//
// Every decoded image is held as a non-premultiplied *image.NRGBA with its
// origin at (0,0). The Mode field records what the source declared:
//   - ModeOpaque: the source had no alpha (JPEG, grayscale, opaque palette).
//     The buffer still stores alpha, set to 255 for every pixel.
//   - ModeAlpha: the source declared an alpha channel, even if every pixel
//     happens to be opaque.
//
// Promote is the only way a raster changes mode. Compositing code promotes
// explicitly before any paste-with-alpha; nothing in this package converts
// modes as a hidden side effect.
//
// # Supported Inputs
//
//   - PSD: the merged composite image stored in the document
//   - PNG, JPEG, GIF (standard library decoders)
//   - BMP, TIFF, WebP (golang.org/x/image decoders)
//
// Outputs are JPEG (quality 95, opaque) or PNG (alpha preserved).
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. Rasters are not: a raster belongs
// to the job that decoded it, and Matte mutates its buffer in place.
// Cached template rasters are shared and must be treated as read-only.
//
// # Error Handling
//
// Functions return errors for:
//   - Files that cannot be opened (wrapping fs.ErrNotExist when missing)
//   - Data that no registered decoder accepts
//   - Encoding or write failures
package imaging
