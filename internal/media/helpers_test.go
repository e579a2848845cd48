package media

import (
	"context"
	"errors"
	"image"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/require"

	"showcase_ingest/internal/workspace"
)

func newLayout(t *testing.T) workspace.Layout {
	t.Helper()
	l := workspace.New(t.TempDir())
	require.NoError(t, l.Ensure([]int{100, 400}))
	return l
}

// writeImage saves a w x h gradient; the format follows the extension.
func writeImage(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x * 255 / w), G: uint8(y * 255 / h), B: 120, A: 255})
		}
	}
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, imaging.Save(img, path))
}

func imageSize(t *testing.T, path string) (int, int) {
	t.Helper()
	w, h, err := ConfigProber{}.Probe(path)
	require.NoError(t, err)
	return w, h
}

type stubFetcher struct {
	body  []byte
	err   error
	calls atomic.Int32
}

func (f *stubFetcher) Fetch(_ context.Context, _ string, dst io.Writer) (int64, error) {
	f.calls.Add(1)
	if f.err != nil {
		_, _ = dst.Write([]byte("partial"))
		return 0, f.err
	}
	n, err := dst.Write(f.body)
	return int64(n), err
}

type countingResizer struct {
	inner  Resizer
	failAt int
	calls  int
}

func (r *countingResizer) Fit(src, dst string, size, quality int) error {
	r.calls++
	if size == r.failAt {
		return errors.New("boom")
	}
	return r.inner.Fit(src, dst, size, quality)
}
