package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"showcase_ingest/internal/diagnostics"
	"showcase_ingest/internal/models"
	"showcase_ingest/internal/storage"
	"showcase_ingest/internal/workspace"
)

const exportCSV = "ID,Name,Description,Image RGB,Image CMYK,Photo,Branding\n" +
	"s1, Studio One ,A print,https://example.invalid/uploads/s1.png,,1,\n" +
	"s2,Studio Two,No image,,,,yes\n" +
	",Orphan,,,,1,1\n"

func testConfig(t *testing.T) *models.Config {
	t.Helper()
	root := t.TempDir()
	input := filepath.Join(root, "submissions.csv")
	require.NoError(t, os.WriteFile(input, []byte(exportCSV), 0o644))

	cfg := &models.Config{
		Input:     input,
		Workspace: filepath.Join(root, "ws"),
		OutputDir: filepath.Join(root, "out"),
		Sizes:     []int{100, 400},
	}
	cfg.ApplyDefaults()
	require.NoError(t, cfg.Validate())

	// s1 is served from the override directory, so the run never hits the network.
	img := image.NewNRGBA(image.Rect(0, 0, 240, 160))
	for y := 0; y < 160; y++ {
		for x := 0; x < 240; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: 80, B: uint8(y), A: 255})
		}
	}
	layout := workspace.New(cfg.Workspace)
	require.NoError(t, layout.Ensure(cfg.Sizes))
	require.NoError(t, imaging.Save(img, filepath.Join(layout.Overrides, "s1.png")))
	return cfg
}

func TestRunIngestWritesDatasetAndReport(t *testing.T) {
	cfg := testConfig(t)
	var out bytes.Buffer

	require.NoError(t, runIngest(context.Background(), cfg, defaultStages(cfg), &out))

	var subs []models.CanonicalSubmission
	data, err := os.ReadFile(filepath.Join(cfg.OutputDir, "submissions.json"))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &subs))
	require.Len(t, subs, 2)

	assert.Equal(t, "Studio One", subs[0].Name)
	assert.Equal(t, []string{"photography"}, subs[0].Categories)
	require.NotNil(t, subs[0].Width)
	assert.Equal(t, 100, *subs[0].Width)
	require.NotNil(t, subs[0].ThumbName)
	assert.Equal(t, "s1.jpg", *subs[0].ThumbName)
	require.NotNil(t, subs[0].Color)
	assert.True(t, strings.HasPrefix(*subs[0].Color, "#"))

	assert.Equal(t, []string{"branding_and_packaging"}, subs[1].Categories)
	assert.Nil(t, subs[1].Width)

	report, err := diagnostics.ReadReport(cfg.OutputDir)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Submissions)
	require.Len(t, report.Entries, 1)
	assert.Equal(t, "s2", report.Entries[0].SubmissionID)
	assert.Equal(t, diagnostics.ReasonAcquisitionError, report.Entries[0].Reason)
	assert.FileExists(t, filepath.Join(cfg.OutputDir, diagnostics.MissingImageFile))

	assert.Contains(t, out.String(), diagnostics.ReasonAcquisitionError)
	assert.Contains(t, out.String(), report.RunID)
}

func TestRunIngestRefusesLockedWorkspace(t *testing.T) {
	cfg := testConfig(t)

	unlock, err := workspace.New(cfg.Workspace).Lock()
	require.NoError(t, err)
	defer func() { _ = unlock() }()

	err = runIngest(context.Background(), cfg, defaultStages(cfg), &bytes.Buffer{})
	require.ErrorIs(t, err, workspace.ErrLocked)
}

func TestRunIngestMissingInput(t *testing.T) {
	cfg := testConfig(t)
	cfg.Input = filepath.Join(t.TempDir(), "absent.csv")

	err := runIngest(context.Background(), cfg, defaultStages(cfg), &bytes.Buffer{})
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestRunIngestChecksStorageFirst(t *testing.T) {
	cfg := testConfig(t)
	cfg.Storage.Driver = models.DriverRedis
	cfg.Storage.RedisAddr = "127.0.0.1:1"

	err := runIngest(context.Background(), cfg, defaultStages(cfg), &bytes.Buffer{})
	require.Error(t, err)

	// unreachable storage is reported before any submission is processed
	assert.NoFileExists(t, filepath.Join(workspace.New(cfg.Workspace).ThumbDir(100), "s1.jpg"))
	assert.NoFileExists(t, filepath.Join(cfg.OutputDir, diagnostics.ReportFile))
}

type failingWriter struct{}

func (failingWriter) PersistCategories(context.Context, []models.CanonicalCategory) error {
	return errors.New("disk full")
}
func (failingWriter) PersistSubmissions(context.Context, []models.CanonicalSubmission) error {
	return nil
}
func (failingWriter) PersistAssociations(context.Context, []models.Association) error { return nil }
func (failingWriter) Close() error                                                    { return nil }

func TestRootCommandRequiresConfig(t *testing.T) {
	cmd := newRootCommand()
	cmd.SetArgs([]string{"run", "--config", filepath.Join(t.TempDir(), "missing.yaml")})
	cmd.SetOut(&bytes.Buffer{})
	require.Error(t, cmd.Execute())
}

func TestRunIngestSkipsReportWhenPersistFails(t *testing.T) {
	cfg := testConfig(t)
	openWriter = func(context.Context, models.StorageConfig, string) (storage.Writer, error) {
		return failingWriter{}, nil
	}
	t.Cleanup(func() { openWriter = storage.Open })

	err := runIngest(context.Background(), cfg, defaultStages(cfg), &bytes.Buffer{})
	require.ErrorContains(t, err, "disk full")

	assert.FileExists(t, filepath.Join(workspace.New(cfg.Workspace).ThumbDir(100), "s1.jpg"))
	assert.NoFileExists(t, filepath.Join(cfg.OutputDir, diagnostics.ReportFile))
	assert.NoFileExists(t, filepath.Join(cfg.OutputDir, diagnostics.MissingImageFile))
}
