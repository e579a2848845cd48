package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"showcase_ingest/internal/models"
)

// DocumentStore writes one JSON document per collection into a directory.
type DocumentStore struct {
	dir string
}

func NewDocumentStore(dir string) *DocumentStore {
	return &DocumentStore{dir: dir}
}

// Path is the file holding collection.
func (s *DocumentStore) Path(collection string) string {
	return filepath.Join(s.dir, collection+".json")
}

func (s *DocumentStore) PersistCategories(_ context.Context, categories []models.CanonicalCategory) error {
	if categories == nil {
		categories = []models.CanonicalCategory{}
	}
	return s.write(CollectionCategories, categories)
}

func (s *DocumentStore) PersistSubmissions(_ context.Context, submissions []models.CanonicalSubmission) error {
	if submissions == nil {
		submissions = []models.CanonicalSubmission{}
	}
	return s.write(CollectionSubmissions, submissions)
}

func (s *DocumentStore) PersistAssociations(_ context.Context, associations []models.Association) error {
	if associations == nil {
		associations = []models.Association{}
	}
	return s.write(CollectionAssociation, associations)
}

func (s *DocumentStore) Close() error { return nil }

// write replaces the collection file atomically via a temp file and rename.
func (s *DocumentStore) write(collection string, v any) error {
	fail := func(err error) error { return &PersistenceError{Collection: collection, Err: err} }

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fail(err)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fail(err)
	}
	tmp, err := os.CreateTemp(s.dir, fmt.Sprintf(".%s-*.json", collection))
	if err != nil {
		return fail(err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fail(err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fail(err)
	}
	if err := os.Rename(tmp.Name(), s.Path(collection)); err != nil {
		os.Remove(tmp.Name())
		return fail(err)
	}
	return nil
}
