package media

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	"showcase_ingest/internal/logger"
	"showcase_ingest/internal/workspace"
)

// Fetcher streams the body behind rawURL into dst.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string, dst io.Writer) (int64, error)
}

type HTTPFetcher struct {
	client *http.Client
}

// NewHTTPFetcher uses http.DefaultClient when client is nil. No timeout is
// added on top of what the transport enforces.
func NewHTTPFetcher(client *http.Client) *HTTPFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPFetcher{client: client}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string, dst io.Writer) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return io.Copy(dst, resp.Body)
}

// EncodeURL percent-encodes every path segment of rawURL. Already escaped
// segments are decoded first, so they are not double-encoded.
func EncodeURL(rawURL string) (string, error) {
	u, err := encodeURL(rawURL)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

func encodeURL(rawURL string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, err
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("not an absolute URL: %q", rawURL)
	}
	segments := strings.Split(u.Path, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	u.RawPath = strings.Join(segments, "/")
	return u, nil
}

// Acquirer resolves a submission's asset to a local file. Overrides win over
// cached downloads, which win over the network.
type Acquirer struct {
	layout         workspace.Layout
	fetcher        Fetcher
	minViableBytes int64
}

func NewAcquirer(layout workspace.Layout, fetcher Fetcher, minViableBytes int64) *Acquirer {
	return &Acquirer{layout: layout, fetcher: fetcher, minViableBytes: minViableBytes}
}

func (a *Acquirer) Acquire(ctx context.Context, id, sourceURL string) (string, error) {
	log := logger.ForSubmission(id)

	if strings.TrimSpace(sourceURL) == "" {
		return "", &AcquisitionError{SubmissionID: id, Reason: "missing source URL"}
	}
	if id == "" || strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return "", &AcquisitionError{SubmissionID: id, Reason: "unsafe submission id"}
	}

	if override, ok := a.findOverride(id); ok {
		log.WithField("path", override).Debug("using override")
		return override, nil
	}

	u, err := encodeURL(sourceURL)
	if err != nil {
		return "", &AcquisitionError{SubmissionID: id, Reason: "invalid source URL", Err: err}
	}
	dest := filepath.Join(a.layout.Originals, id+NormalizeExtension(path.Ext(u.Path)))

	if info, err := os.Stat(dest); err == nil && info.Size() > a.minViableBytes {
		log.WithField("path", dest).Debug("already downloaded")
		return dest, nil
	}

	n, err := a.download(ctx, u.String(), dest)
	if err != nil {
		log.WithError(err).Error("download failed")
		return "", &AcquisitionError{SubmissionID: id, Reason: "download failed", Err: err}
	}
	log.WithFields(map[string]interface{}{
		"path": dest,
		"size": humanize.Bytes(uint64(n)),
	}).Debug("downloaded")
	return dest, nil
}

func (a *Acquirer) download(ctx context.Context, rawURL, dest string) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return 0, err
	}
	f, err := os.Create(dest)
	if err != nil {
		return 0, err
	}
	n, err := a.fetcher.Fetch(ctx, rawURL, f)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(dest)
		return 0, err
	}
	return n, nil
}

// findOverride returns the override named <id> or <id>.<ext>. A raster wins
// over other matches, so a document converted by an earlier run is not
// converted again. Ties go to name order.
func (a *Acquirer) findOverride(id string) (string, bool) {
	entries, err := os.ReadDir(a.layout.Overrides)
	if err != nil {
		return "", false
	}
	first := ""
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if name != id && !strings.HasPrefix(name, id+".") {
			continue
		}
		if IsRaster(name) {
			return filepath.Join(a.layout.Overrides, name), true
		}
		if first == "" {
			first = name
		}
	}
	if first == "" {
		return "", false
	}
	return filepath.Join(a.layout.Overrides, first), true
}
