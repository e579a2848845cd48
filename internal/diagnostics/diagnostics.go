// Package diagnostics collects per-submission failure records for one run.
package diagnostics

import (
	"sort"
	"sync"
)

// Reason codes surfaced in the run report.
const (
	ReasonFileMissing      = "file_missing"
	ReasonNotAnImage       = "not_an_image"
	ReasonResizeError      = "resize_error"
	ReasonAcquisitionError = "acquisition_error"
	ReasonConversionError  = "conversion_error"
	ReasonInternalError    = "internal_error"
)

type Entry struct {
	SubmissionID string `json:"submission_id"`
	Reason       string `json:"reason"`
	Detail       string `json:"detail"`
	Name         string `json:"name,omitempty"`
	Extension    string `json:"extension,omitempty"`
	Link         string `json:"link,omitempty"`
}

// Sink is an append-only, concurrency-safe collection of entries. Create one per run.
type Sink struct {
	mu      sync.Mutex
	entries []Entry
}

func NewSink() *Sink {
	return &Sink{}
}

func (s *Sink) Add(e Entry) {
	s.mu.Lock()
	s.entries = append(s.entries, e)
	s.mu.Unlock()
}

// Entries returns a snapshot in append order.
func (s *Sink) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Entry(nil), s.entries...)
}

// Count is the number of entries recorded for one reason code.
type Count struct {
	Reason string
	Total  int
}

// Counts groups entries by reason, sorted by reason code.
func Counts(entries []Entry) []Count {
	totals := make(map[string]int)
	for _, e := range entries {
		totals[e.Reason]++
	}
	out := make([]Count, 0, len(totals))
	for reason, total := range totals {
		out = append(out, Count{Reason: reason, Total: total})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Reason < out[j].Reason })
	return out
}
