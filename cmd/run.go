package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"showcase_ingest/internal/categories"
	"showcase_ingest/internal/diagnostics"
	"showcase_ingest/internal/logger"
	"showcase_ingest/internal/media"
	"showcase_ingest/internal/models"
	"showcase_ingest/internal/notify"
	"showcase_ingest/internal/pipeline"
	"showcase_ingest/internal/records"
	"showcase_ingest/internal/storage"
	"showcase_ingest/internal/workspace"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Acquire, normalize and persist every submission",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return runIngest(context.Background(), cfg, defaultStages(cfg), cmd.OutOrStdout())
		},
	}
}

// defaultStages wires the production capabilities.
func defaultStages(cfg *models.Config) pipeline.Stages {
	layout := workspace.New(cfg.Workspace)
	return pipeline.Stages{
		Acquirer:  media.NewAcquirer(layout, media.NewHTTPFetcher(http.DefaultClient), cfg.MinViableBytes),
		Corrector: media.NewCorrector(layout, media.MimeDetector{}),
		Converter: media.NewConverter(layout, media.NewPdftoppmRasterizer(cfg.PdftoppmPath)),
		Renderer:  media.NewRenderer(layout, media.ImagingResizer{}, cfg.Sizes, cfg.Quality),
		Extractor: media.NewExtractor(media.ConfigProber{}, media.MutedPalette{}),
	}
}

var openWriter = storage.Open

// runIngest performs one full run. Degraded submissions never fail the run;
// input, lock and persistence failures do. Storage is opened before any
// submission is processed, and the report is only written once the dataset is.
func runIngest(ctx context.Context, cfg *models.Config, stages pipeline.Stages, out io.Writer) error {
	const op = "main.runIngest"

	layout := workspace.New(cfg.Workspace)
	unlock, err := layout.Lock()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		if err := unlock(); err != nil {
			logger.Log.WithError(err).Warn("unable to release workspace lock")
		}
	}()
	if err := layout.Ensure(cfg.Sizes); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	rows, err := records.ReadCSVFile(cfg.Input)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	recs := records.Normalize(rows)

	w, err := openWriter(ctx, cfg.Storage, cfg.OutputDir)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		if err := w.Close(); err != nil {
			logger.Log.WithError(err).Warn("unable to close storage")
		}
	}()

	runID := uuid.NewString()
	started := time.Now().UTC()
	log := logger.WithField("run_id", runID)
	log.WithField("input", cfg.Input).Info("starting ingest run")

	result := pipeline.New(stages, cfg.Concurrency, cfg.PrimarySize()).Run(ctx, recs)
	subs, assocs := pipeline.Canonicalize(recs, result.Assets)

	if err := storage.PersistAll(ctx, w, categories.Canonical(), subs, assocs); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	report := diagnostics.Report{
		RunID:       runID,
		StartedAt:   started,
		FinishedAt:  time.Now().UTC(),
		Submissions: len(recs),
		Entries:     result.Diagnostics,
	}
	if err := diagnostics.WriteReport(cfg.OutputDir, report); err != nil {
		log.WithError(err).Error("unable to write diagnostics report")
	}

	pub := notify.New(cfg.Kafka)
	if err := pub.PublishRun(ctx, report); err != nil {
		log.WithError(err).Warn("unable to publish run events")
	}
	if err := pub.Close(); err != nil {
		log.WithError(err).Warn("unable to close publisher")
	}

	log.WithFields(map[string]interface{}{
		"submissions": len(recs),
		"degraded":    len(report.Entries),
		"duration":    report.FinishedAt.Sub(started).String(),
	}).Info("ingest run finished")

	fmt.Fprintln(out, renderSummary(report))
	return nil
}
