package records

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"showcase_ingest/internal/categories"
	"showcase_ingest/internal/logger"
	"showcase_ingest/internal/models"
)

// Row is one parsed input line keyed by normalized header name.
type Row map[string]string

// Column names of the submission export after header normalization.
const (
	FieldID          = "id"
	FieldName        = "name"
	FieldDescription = "description"
	FieldWebsite     = "website"
	FieldInstagram   = "instagram"
	FieldImageRGB    = "image_rgb"
	FieldImageCMYK   = "image_cmyk"
)

// Normalize turns rows into records, silently dropping rows without an id.
// Later rows repeating an id are dropped so identifiers stay unique.
func Normalize(rows []Row) []models.RawRecord {
	legacy := categories.Legacy()
	out := make([]models.RawRecord, 0, len(rows))
	seen := make(map[string]struct{}, len(rows))

	for _, row := range rows {
		id := text(row[FieldID])
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			logger.ForSubmission(id).Warn("duplicate submission id, keeping first occurrence")
			continue
		}
		seen[id] = struct{}{}

		source := text(row[FieldImageRGB])
		if source == "" {
			source = text(row[FieldImageCMYK])
		}

		flags := make(map[string]bool)
		for _, name := range legacy {
			if truthy(row[name]) {
				flags[name] = true
			}
		}

		out = append(out, models.RawRecord{
			ID:          id,
			Name:        text(row[FieldName]),
			Description: text(row[FieldDescription]),
			Website:     text(row[FieldWebsite]),
			Instagram:   text(row[FieldInstagram]),
			SourceURL:   source,
			Flags:       flags,
		})
	}
	return out
}

func text(v string) string {
	return norm.NFC.String(strings.TrimSpace(v))
}

// truthy treats a ticked checkbox export (label text, "1", "true") as set.
func truthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "0", "false", "no", "n", "off":
		return false
	default:
		return true
	}
}
