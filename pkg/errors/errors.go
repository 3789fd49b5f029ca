// Package errors provides the domain error types for conversa.
//
// Only a handful of conditions are fatal for an analysis run (the
// transcript cannot be read, the report cannot be written, the
// configuration is invalid). Everything else degrades by omission and
// never reaches these sentinels.
//
// Usage:
//
//	import cverrors "github.com/otherjamesbrown/conversa/pkg/errors"
//
//	return fmt.Errorf("%w: %s: %v", cverrors.ErrTranscriptUnavailable, path, err)
//
//	if cverrors.IsTranscriptUnavailable(err) {
//	    // abort the run
//	}
package errors

import "errors"

// Domain errors.
var (
	// ErrTranscriptUnavailable indicates the transcript source could not be opened or read.
	ErrTranscriptUnavailable = errors.New("transcript unavailable")

	// ErrOutputUnavailable indicates the report sink could not be created or written.
	ErrOutputUnavailable = errors.New("output unavailable")

	// ErrClassification indicates an external classifier failed for one input.
	ErrClassification = errors.New("classification failed")

	// ErrValidation indicates invalid input or configuration.
	ErrValidation = errors.New("validation error")

	// ErrNotConfigured indicates a required setting (e.g. an API key) is missing.
	ErrNotConfigured = errors.New("not configured")

	// ErrNotFound indicates the requested item was not found.
	ErrNotFound = errors.New("not found")
)

// IsTranscriptUnavailable reports whether any error in err's chain is ErrTranscriptUnavailable.
func IsTranscriptUnavailable(err error) bool {
	return errors.Is(err, ErrTranscriptUnavailable)
}

// IsOutputUnavailable reports whether any error in err's chain is ErrOutputUnavailable.
func IsOutputUnavailable(err error) bool {
	return errors.Is(err, ErrOutputUnavailable)
}

// IsClassification reports whether any error in err's chain is ErrClassification.
func IsClassification(err error) bool {
	return errors.Is(err, ErrClassification)
}

// IsValidation reports whether any error in err's chain is ErrValidation.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsNotConfigured reports whether any error in err's chain is ErrNotConfigured.
func IsNotConfigured(err error) bool {
	return errors.Is(err, ErrNotConfigured)
}

// IsNotFound reports whether any error in err's chain is ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsFatal reports whether err should abort an analysis run.
func IsFatal(err error) bool {
	return IsTranscriptUnavailable(err) || IsOutputUnavailable(err) || IsValidation(err) || IsNotConfigured(err)
}
