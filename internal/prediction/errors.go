package prediction

import "errors"

var (
	// ErrModelNotLoaded is returned when no trained model is available.
	ErrModelNotLoaded = errors.New("model not loaded")
	// ErrEmptyText is returned when a document yields no text to analyze.
	ErrEmptyText = errors.New("failed to extract text")
	// ErrMalformedUpload is returned for missing, oversized or non-PDF uploads.
	ErrMalformedUpload = errors.New("malformed upload")
)
