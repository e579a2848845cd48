package pipeline

import (
	"path/filepath"

	"showcase_ingest/internal/categories"
	"showcase_ingest/internal/models"
)

// Canonicalize joins records with their assets (same index) into the
// persisted submissions and their category associations.
func Canonicalize(records []models.RawRecord, assets []*models.SubmissionAsset) ([]models.CanonicalSubmission, []models.Association) {
	subs := make([]models.CanonicalSubmission, 0, len(records))
	var assocs []models.Association

	for i, rec := range records {
		var asset *models.SubmissionAsset
		if i < len(assets) {
			asset = assets[i]
		}
		if asset == nil {
			asset = models.NewSubmissionAsset(rec.ID)
		}

		cats := categories.Reconcile(rec)
		sub := models.CanonicalSubmission{
			ID:          rec.ID,
			Name:        rec.Name,
			Description: rec.Description,
			Website:     rec.Website,
			Instagram:   rec.Instagram,
			Categories:  cats,
		}
		if asset.Width > 0 {
			sub.Width = ptr(asset.Width)
		}
		if asset.Height > 0 {
			sub.Height = ptr(asset.Height)
		}
		if sub.Width != nil && sub.Height != nil {
			sub.Ratio = ptr(float64(asset.Width) / float64(asset.Height))
		}
		if asset.Color != "" {
			sub.Color = ptr(asset.Color)
		}
		if asset.FilePath != "" {
			sub.FileName = ptr(filepath.Base(asset.FilePath))
		}
		if asset.ThumbPath != "" {
			sub.ThumbName = ptr(filepath.Base(asset.ThumbPath))
		}
		subs = append(subs, sub)

		for _, c := range cats {
			assocs = append(assocs, models.Association{SubmissionID: rec.ID, CategoryID: c})
		}
	}
	return subs, assocs
}

func ptr[T any](v T) *T {
	return &v
}
