package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"showcase_ingest/internal/logger"
	"showcase_ingest/internal/workspace"
)

// Rasterizer renders the first page of a document to a raster file named
// dstStem plus an extension of its choosing, and returns that path.
type Rasterizer interface {
	RasterizeFirstPage(ctx context.Context, src, dstStem string) (string, error)
}

// PdftoppmRasterizer shells out to poppler's pdftoppm.
type PdftoppmRasterizer struct {
	Binary string
	DPI    int
}

func NewPdftoppmRasterizer(binary string) *PdftoppmRasterizer {
	if strings.TrimSpace(binary) == "" {
		binary = "pdftoppm"
	}
	return &PdftoppmRasterizer{Binary: binary, DPI: 150}
}

func (r *PdftoppmRasterizer) RasterizeFirstPage(ctx context.Context, src, dstStem string) (string, error) {
	bin, err := exec.LookPath(r.Binary)
	if err != nil {
		return "", fmt.Errorf("binary %q not found: %w", r.Binary, err)
	}
	cmd := exec.CommandContext(ctx, bin,
		"-png", "-r", strconv.Itoa(r.DPI),
		"-f", "1", "-l", "1", "-singlefile",
		src, dstStem,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%s: %w: %s", filepath.Base(bin), err, strings.TrimSpace(stderr.String()))
	}
	out := dstStem + ".png"
	if !exists(out) {
		return "", errors.New("pdftoppm produced no output")
	}
	return out, nil
}

// Converter turns a document into a raster stored in the override directory,
// so later runs find the raster and skip conversion.
type Converter struct {
	layout     workspace.Layout
	rasterizer Rasterizer
}

func NewConverter(layout workspace.Layout, rasterizer Rasterizer) *Converter {
	return &Converter{layout: layout, rasterizer: rasterizer}
}

// Convert returns the raster path. On failure it returns the original path
// together with a *ConversionError.
func (c *Converter) Convert(ctx context.Context, id, path string) (string, error) {
	if err := os.MkdirAll(c.layout.Overrides, 0o755); err != nil {
		return path, &ConversionError{Path: path, Err: err}
	}

	tmpStem := filepath.Join(c.layout.Overrides, "."+stem(path)+".converting")
	out, err := c.rasterizer.RasterizeFirstPage(ctx, path, tmpStem)
	if err != nil {
		logger.ForSubmission(id).WithError(err).Error("rasterization failed")
		return path, &ConversionError{Path: path, Err: err}
	}

	final := filepath.Join(c.layout.Overrides, stem(path)+NormalizeExtension(filepath.Ext(out)))
	if err := os.Rename(out, final); err != nil {
		_ = os.Remove(out)
		return path, &ConversionError{Path: path, Err: err}
	}
	logger.ForSubmission(id).WithField("path", final).Info("rasterized first page")
	return final, nil
}
