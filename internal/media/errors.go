package media

import "fmt"

// AcquisitionError means the submission's asset could not be made available
// locally. The next run retries naturally.
type AcquisitionError struct {
	SubmissionID string
	Reason       string
	Err          error
}

func (e *AcquisitionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("acquire %s: %s: %v", e.SubmissionID, e.Reason, e.Err)
	}
	return fmt.Sprintf("acquire %s: %s", e.SubmissionID, e.Reason)
}

func (e *AcquisitionError) Unwrap() error { return e.Err }

// TypeDetectionError is soft: the file keeps its name and has no mime.
type TypeDetectionError struct {
	Path string
	Err  error
}

func (e *TypeDetectionError) Error() string {
	return fmt.Sprintf("detect type of %s: %v", e.Path, e.Err)
}

func (e *TypeDetectionError) Unwrap() error { return e.Err }

type ConversionError struct {
	Path string
	Err  error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("rasterize %s: %v", e.Path, e.Err)
}

func (e *ConversionError) Unwrap() error { return e.Err }

// RenderError is scoped to a single target size.
type RenderError struct {
	Path string
	Size int
	Err  error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("resize %s to %d: %v", e.Path, e.Size, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

type ExtractionKind int

const (
	FileMissing ExtractionKind = iota
	NotAnImage
	ProbeFailure
)

func (k ExtractionKind) String() string {
	switch k {
	case FileMissing:
		return "file missing"
	case NotAnImage:
		return "not an image"
	default:
		return "probe failure"
	}
}

type ExtractionError struct {
	Kind ExtractionKind
	Path string
	Err  error
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Path)
}

func (e *ExtractionError) Unwrap() error { return e.Err }
