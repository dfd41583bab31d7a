package imaging

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	_ "image/gif" // Register GIF format decoder
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/disintegration/imaging"
	"github.com/oov/psd"
	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

// psdMagic is the signature at the start of every Photoshop document.
var psdMagic = []byte("8BPS")

// ErrEmptyImage is returned when a decoded image has no pixels.
var ErrEmptyImage = errors.New("image has zero width or height")

// Open decodes the file at path into a Raster.
//
// PSD documents are recognised by their signature, not their extension, and
// are flattened to their merged composite. Everything else goes through the
// registered image decoders.
//
// # Errors
//
//   - The file does not exist or cannot be read (wraps the os error, so
//     errors.Is(err, fs.ErrNotExist) holds for missing files)
//   - No decoder accepts the data
//   - The decoded image is empty
func Open(path string) (*Raster, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	return Decode(f)
}

// Decode reads a PSD or raster image from r.
func Decode(r io.Reader) (*Raster, error) {
	br := bufio.NewReader(r)
	head, _ := br.Peek(len(psdMagic))

	if bytes.Equal(head, psdMagic) {
		return decodePSD(br)
	}

	img, err := imaging.Decode(br)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	if img.Bounds().Empty() {
		return nil, ErrEmptyImage
	}
	return NewRaster(img), nil
}

// decodePSD flattens a PSD to its merged image. The document declares alpha
// when it has more channels than its color mode needs.
func decodePSD(r io.Reader) (*Raster, error) {
	doc, _, err := psd.Decode(r, &psd.DecodeOptions{SkipLayerImage: true})
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	if doc.Picker == nil || doc.Config.Rect.Empty() {
		return nil, ErrEmptyImage
	}

	mode := ModeOpaque
	if doc.Config.Channels > doc.Config.ColorMode.Channels() {
		mode = ModeAlpha
	}
	return newRaster(doc.Picker, mode), nil
}

// ImageCache provides thread-safe caching of decoded templates.
//
// A batch run composites many products onto one template; the cache keeps
// the template from being decoded once per job. Cached rasters are shared
// between goroutines and must never be mutated.
//
// Every Load stats the file and decodes it again when its size or
// modification time changed, so a template edited during a long session is
// picked up by the next job.
//
// # Memory Management
//
// Cached rasters remain in memory until explicitly removed via Evict() or
// Clear().
type ImageCache struct {
	mu     sync.RWMutex
	images map[string]cacheEntry
}

type cacheEntry struct {
	raster  *Raster
	size    int64
	modTime time.Time
}

// NewImageCache creates and initializes a new empty image cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		images: make(map[string]cacheEntry),
	}
}

// Load retrieves a raster from the cache or decodes it from disk.
//
// The raster is cached using the exact path string provided. Different
// paths to the same file result in separate cache entries. A file that no
// longer exists is evicted.
func (c *ImageCache) Load(path string) (*Raster, error) {
	stat, err := os.Stat(path)
	if err != nil {
		c.Evict(path)
		return nil, fmt.Errorf("failed to open image: %w", err)
	}

	c.mu.RLock()
	e, ok := c.images[path]
	c.mu.RUnlock()
	if ok && e.size == stat.Size() && e.modTime.Equal(stat.ModTime()) {
		return e.raster, nil
	}

	r, err := Open(path)
	if err != nil {
		c.Evict(path)
		return nil, err
	}

	c.mu.Lock()
	c.images[path] = cacheEntry{raster: r, size: stat.Size(), modTime: stat.ModTime()}
	c.mu.Unlock()

	return r, nil
}

// Clear removes all rasters from the cache.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]cacheEntry)
	c.mu.Unlock()
}

// Evict removes a specific raster from the cache by its path.
// If the path is not in the cache, this method does nothing.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, path)
	c.mu.Unlock()
}

// ImageInfo contains metadata about an image file.
type ImageInfo struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Format is derived from the file extension: "psd", "png", "jpeg",
	// "gif", "bmp", "tiff", "webp" or "unknown".
	Format string `json:"format"`

	// Mode is "alpha" when the source declares an alpha channel.
	Mode ColorMode `json:"mode"`

	// HasAlpha mirrors Mode for clients that only want a boolean.
	HasAlpha bool `json:"has_alpha"`

	// FileSizeBytes is the size of the image file on disk in bytes.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// LoadImageInfo decodes the file at path and describes it.
//
// The web flow uses this to reject templates without an alpha channel
// before any compositing work starts.
func LoadImageInfo(path string) (*ImageInfo, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	r, err := Open(path)
	if err != nil {
		return nil, err
	}

	size := r.Size()
	return &ImageInfo{
		Width:         size.X,
		Height:        size.Y,
		Format:        FormatName(path),
		Mode:          r.Mode,
		HasAlpha:      r.Mode == ModeAlpha,
		FileSizeBytes: stat.Size(),
	}, nil
}

// FormatName maps a file extension to a short format name.
func FormatName(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".psd":
		return "psd"
	case ".png":
		return "png"
	case ".jpg", ".jpeg":
		return "jpeg"
	case ".gif":
		return "gif"
	case ".bmp":
		return "bmp"
	case ".tif", ".tiff":
		return "tiff"
	case ".webp":
		return "webp"
	}
	return "unknown"
}
