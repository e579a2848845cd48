package models

// RawRecord is one input row after normalization. Never mutated after parse.
type RawRecord struct {
	ID          string
	Name        string
	Description string
	Website     string
	Instagram   string
	SourceURL   string
	// Flags holds the legacy category columns that were ticked.
	Flags map[string]bool
}

// SubmissionAsset is the per-submission scratch state filled in by the media stages.
type SubmissionAsset struct {
	SubmissionID string
	FilePath     string
	Mime         string
	Width        int
	Height       int
	Color        string
	ThumbPath    string
	// Thumbnails maps target size to rendered file path.
	Thumbnails map[int]string
}

func NewSubmissionAsset(id string) *SubmissionAsset {
	return &SubmissionAsset{SubmissionID: id, Thumbnails: make(map[int]string)}
}

type CanonicalCategory struct {
	ID   string `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// CanonicalSubmission is the persisted form. Pointer fields are null when the
// corresponding imaging stage did not produce a value.
type CanonicalSubmission struct {
	ID          string   `json:"id" db:"id"`
	Name        string   `json:"name" db:"name"`
	Description string   `json:"description" db:"description"`
	Website     string   `json:"website" db:"website"`
	Instagram   string   `json:"instagram" db:"instagram"`
	Categories  []string `json:"categories" db:"-"`
	Width       *int     `json:"width" db:"width"`
	Height      *int     `json:"height" db:"height"`
	Ratio       *float64 `json:"ratio" db:"ratio"`
	Color       *string  `json:"colour" db:"colour"`
	FileName    *string  `json:"file_name" db:"file_name"`
	ThumbName   *string  `json:"thumb_name" db:"thumb_name"`
}

type Association struct {
	SubmissionID string `json:"submission_id" db:"submission_id"`
	CategoryID   string `json:"category_id" db:"category_id"`
}
