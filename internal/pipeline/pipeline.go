// Package pipeline drives the per-submission media stages under a bounded
// worker pool and turns the results into the canonical dataset.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"showcase_ingest/internal/diagnostics"
	"showcase_ingest/internal/logger"
	"showcase_ingest/internal/media"
	"showcase_ingest/internal/models"
)

// Stages are the media steps run for each submission, in order.
type Stages struct {
	Acquirer  *media.Acquirer
	Corrector *media.Corrector
	Converter *media.Converter
	Renderer  *media.Renderer
	Extractor *media.Extractor
}

type Pipeline struct {
	stages      Stages
	concurrency int
	primarySize int
}

func New(stages Stages, concurrency, primarySize int) *Pipeline {
	return &Pipeline{stages: stages, concurrency: concurrency, primarySize: primarySize}
}

// Result holds one asset per input record, in input order, plus everything
// the run recorded as degraded.
type Result struct {
	Assets      []*models.SubmissionAsset
	Diagnostics []diagnostics.Entry
}

// Run processes every record. It always returns len(records) assets; failures
// are isolated per submission and reported in Result.Diagnostics.
func (p *Pipeline) Run(ctx context.Context, records []models.RawRecord) Result {
	sink := diagnostics.NewSink()
	assets := make([]*models.SubmissionAsset, len(records))
	for i, rec := range records {
		assets[i] = models.NewSubmissionAsset(rec.ID)
	}

	total := len(records)
	logger.WithFields(map[string]interface{}{
		"submissions": total,
		"concurrency": p.concurrency,
	}).Info("processing submissions")

	Map(ctx, total, p.concurrency,
		func(ctx context.Context, i int) *models.SubmissionAsset {
			p.process(ctx, records[i], assets[i], sink)
			return assets[i]
		},
		func(i int, r any) *models.SubmissionAsset {
			logger.ForSubmission(records[i].ID).WithField("panic", r).Error("submission pipeline panicked")
			sink.Add(entryFor(records[i], assets[i], diagnostics.ReasonInternalError, fmt.Sprint(r)))
			return assets[i]
		},
	)

	entries := sink.Entries()
	logger.WithFields(map[string]interface{}{
		"submissions": total,
		"degraded":    len(entries),
	}).Info("finished processing submissions")
	return Result{Assets: assets, Diagnostics: entries}
}

func (p *Pipeline) process(ctx context.Context, rec models.RawRecord, asset *models.SubmissionAsset, sink *diagnostics.Sink) {
	log := logger.ForSubmission(rec.ID)
	record := func(err error) {
		log.WithError(err).Warn("submission degraded")
		sink.Add(entryFor(rec, asset, ReasonFor(err), err.Error()))
	}

	path, err := p.stages.Acquirer.Acquire(ctx, rec.ID, rec.SourceURL)
	if err != nil {
		record(err)
		return
	}
	asset.FilePath = path

	path = p.correct(rec.ID, asset, path)

	if media.IsDocument(path) {
		converted, err := p.stages.Converter.Convert(ctx, rec.ID, path)
		if err != nil {
			record(err)
			return
		}
		path = p.correct(rec.ID, asset, converted)
	}

	if !media.IsRaster(path) {
		record(&media.ExtractionError{Kind: media.NotAnImage, Path: path})
		return
	}

	thumbs, errs := p.stages.Renderer.Render(rec.ID, path)
	asset.Thumbnails = thumbs
	for _, err := range errs {
		record(err)
	}
	asset.ThumbPath = thumbs[p.primarySize]

	if err := p.stages.Extractor.Dimensions(asset); err != nil {
		record(err)
	}
	if asset.ThumbPath != "" {
		if err := p.stages.Extractor.Color(asset); err != nil {
			log.WithError(err).Warn("unable to extract colour")
		}
	}
}

func (p *Pipeline) correct(id string, asset *models.SubmissionAsset, path string) string {
	res, err := p.stages.Corrector.Correct(id, path)
	if err != nil {
		logger.ForSubmission(id).WithError(err).Warn("unable to determine file type")
	}
	asset.FilePath = res.Path
	asset.Mime = res.Mime
	return res.Path
}

// ReasonFor maps a stage error to its diagnostics reason code.
func ReasonFor(err error) string {
	var (
		acq  *media.AcquisitionError
		conv *media.ConversionError
		rend *media.RenderError
		ext  *media.ExtractionError
	)
	switch {
	case errors.As(err, &acq):
		return diagnostics.ReasonAcquisitionError
	case errors.As(err, &conv):
		return diagnostics.ReasonConversionError
	case errors.As(err, &rend):
		return diagnostics.ReasonResizeError
	case errors.As(err, &ext):
		if ext.Kind == media.FileMissing {
			return diagnostics.ReasonFileMissing
		}
		return diagnostics.ReasonNotAnImage
	default:
		return diagnostics.ReasonInternalError
	}
}

func entryFor(rec models.RawRecord, asset *models.SubmissionAsset, reason, detail string) diagnostics.Entry {
	ext := ""
	if asset.FilePath != "" {
		ext = filepath.Ext(asset.FilePath)
	}
	return diagnostics.Entry{
		SubmissionID: rec.ID,
		Reason:       reason,
		Detail:       detail,
		Name:         rec.Name,
		Extension:    ext,
		Link:         rec.SourceURL,
	}
}
