package media

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"showcase_ingest/internal/logger"
	"showcase_ingest/internal/workspace"
)

var errUnknownType = errors.New("content type not recognised")

// Detector sniffs a file's content type from its bytes.
type Detector interface {
	Detect(path string) (mime, ext string, err error)
}

type MimeDetector struct{}

func (MimeDetector) Detect(path string) (string, string, error) {
	m, err := mimetype.DetectFile(path)
	if err != nil {
		return "", "", err
	}
	if m.Is("application/octet-stream") {
		return "", "", errUnknownType
	}
	return m.String(), m.Extension(), nil
}

// keepExtension lists detected types that must not rename the file: generic
// containers wrapping a more specific format, and known false positives.
var keepExtension = map[string]bool{
	"application/zip":           true,
	"application/x-ole-storage": true,
	"audio/mpeg":                true,
}

type TypeResult struct {
	Path string
	Mime string
}

// Corrector renames files whose extension disagrees with their content.
// Renamed files move into the override directory so later runs pick them up.
type Corrector struct {
	layout   workspace.Layout
	detector Detector
}

func NewCorrector(layout workspace.Layout, detector Detector) *Corrector {
	return &Corrector{layout: layout, detector: detector}
}

// Correct always returns a usable result. A non-nil error is soft: detection
// failed (empty Mime) or the rename could not be performed.
func (c *Corrector) Correct(id, path string) (TypeResult, error) {
	mime, ext, err := c.detector.Detect(path)
	if err != nil {
		return TypeResult{Path: path}, &TypeDetectionError{Path: path, Err: err}
	}
	result := TypeResult{Path: path, Mime: mime}

	if keepExtension[baseMime(mime)] {
		return result, nil
	}
	// Illustrator files are PDF containers.
	if IsDocument(path) && baseMime(mime) == "application/pdf" {
		return result, nil
	}
	want := NormalizeExtension(ext)
	if want == "" || want == NormalizeExtension(filepath.Ext(path)) {
		return result, nil
	}

	target := filepath.Join(c.layout.Overrides, stem(path)+want)
	if target == path {
		return result, nil
	}
	if err := os.MkdirAll(c.layout.Overrides, 0o755); err != nil {
		return result, fmt.Errorf("media.Correct: %w", err)
	}
	if err := os.Rename(path, target); err != nil {
		return result, fmt.Errorf("media.Correct: %w", err)
	}
	logger.ForSubmission(id).WithFields(map[string]interface{}{
		"from": filepath.Base(path),
		"to":   filepath.Base(target),
	}).Info("corrected file extension")

	result.Path = target
	return result, nil
}

func baseMime(mime string) string {
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = mime[:i]
	}
	return strings.TrimSpace(mime)
}
