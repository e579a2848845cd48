// Package storage persists the canonical dataset. Every write replaces the
// whole collection.
package storage

import (
	"context"
	"fmt"

	"showcase_ingest/internal/models"
)

// Collection names shared by every adapter.
const (
	CollectionCategories  = "categories"
	CollectionSubmissions = "submissions"
	CollectionAssociation = "submission_categories"
)

type Writer interface {
	PersistCategories(ctx context.Context, categories []models.CanonicalCategory) error
	PersistSubmissions(ctx context.Context, submissions []models.CanonicalSubmission) error
	PersistAssociations(ctx context.Context, associations []models.Association) error
	Close() error
}

// PersistenceError is fatal to the run.
type PersistenceError struct {
	Collection string
	Err        error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist %s: %v", e.Collection, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Open returns the adapter selected by cfg.Driver. The document adapter
// writes into outputDir.
func Open(ctx context.Context, cfg models.StorageConfig, outputDir string) (Writer, error) {
	const op = "storage.Open"

	switch cfg.Driver {
	case models.DriverDocument, "":
		return NewDocumentStore(outputDir), nil
	case models.DriverRedis:
		s, err := NewRedisStore(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return s, nil
	case models.DriverSQLite, models.DriverPgx, models.DriverPostgres:
		s, err := NewSQLStore(ctx, cfg.Driver, cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("%s: unknown driver %q", op, cfg.Driver)
	}
}

// PersistAll writes categories, then submissions, then associations.
func PersistAll(ctx context.Context, w Writer, cats []models.CanonicalCategory, subs []models.CanonicalSubmission, assocs []models.Association) error {
	if err := w.PersistCategories(ctx, cats); err != nil {
		return err
	}
	if err := w.PersistSubmissions(ctx, subs); err != nil {
		return err
	}
	return w.PersistAssociations(ctx, assocs)
}
