package media

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"

	"showcase_ingest/internal/logger"
	"showcase_ingest/internal/workspace"
)

// ErrCorruptSource marks a source file that could not be decoded at all.
var ErrCorruptSource = errors.New("source image could not be decoded")

// Resizer writes src scaled to fit inside a size x size box to dst. The
// output format follows dst's extension.
type Resizer interface {
	Fit(src, dst string, size, quality int) error
}

type ImagingResizer struct{}

func (ImagingResizer) Fit(src, dst string, size, quality int) error {
	img, err := imaging.Open(src, imaging.AutoOrientation(true))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCorruptSource, err)
	}
	// imaging.Fit returns an unscaled clone when img already fits.
	out := imaging.Fit(img, size, size, imaging.Lanczos)

	if !isGIF(dst) {
		b := out.Bounds()
		bg := imaging.New(b.Dx(), b.Dy(), color.White)
		out = imaging.Overlay(bg, out, image.Point{}, 1.0)
	}
	return imaging.Save(out, dst, imaging.JPEGQuality(quality))
}

// Renderer produces one thumbnail per configured size. Existing thumbnails
// are left untouched.
type Renderer struct {
	layout  workspace.Layout
	resizer Resizer
	sizes   []int
	quality int
}

func NewRenderer(layout workspace.Layout, resizer Resizer, sizes []int, quality int) *Renderer {
	return &Renderer{layout: layout, resizer: resizer, sizes: append([]int(nil), sizes...), quality: quality}
}

// ThumbPath is where the thumbnail of id rendered from src lives. GIF sources
// keep their format, everything else becomes JPEG.
func (r *Renderer) ThumbPath(id, src string, size int) string {
	ext := ".jpg"
	if isGIF(src) {
		ext = ".gif"
	}
	return filepath.Join(r.layout.ThumbDir(size), id+ext)
}

// Render returns the thumbnails that exist after the call, keyed by size, and
// one *RenderError per size that failed.
func (r *Renderer) Render(id, src string) (map[int]string, []error) {
	log := logger.ForSubmission(id)
	thumbs := make(map[int]string, len(r.sizes))
	var errs []error
	corrupt := false

	for _, size := range r.sizes {
		dst := r.ThumbPath(id, src, size)
		if exists(dst) {
			thumbs[size] = dst
			continue
		}
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			errs = append(errs, &RenderError{Path: src, Size: size, Err: err})
			continue
		}
		if err := r.resizer.Fit(src, dst, size, r.quality); err != nil {
			_ = os.Remove(dst)
			log.WithError(err).WithField("size", size).Error("unable to resize image")
			errs = append(errs, &RenderError{Path: src, Size: size, Err: err})
			if errors.Is(err, ErrCorruptSource) {
				corrupt = true
			}
			continue
		}
		thumbs[size] = dst
	}

	// A corrupt download is discarded so the next run fetches it again.
	if corrupt && r.isDownloaded(src) {
		if err := os.Remove(src); err == nil {
			log.WithField("path", src).Warn("removed undecodable download")
		}
	}
	return thumbs, errs
}

func (r *Renderer) isDownloaded(path string) bool {
	rel, err := filepath.Rel(r.layout.Originals, path)
	return err == nil && !strings.HasPrefix(rel, "..")
}
