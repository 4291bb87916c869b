// Package ownership centralizes the existence-then-ownership check applied to
// every resource reachable from a user's documents.
package ownership

import (
	"errors"

	"inreader-backend/internal/shared/apperr"
)

// ErrMissing is the lookup error repositories wrap when a row does not exist.
var ErrMissing = errors.New("resource missing")

// Rule carries the public messages for one resource type.
type Rule struct {
	NotFound  string
	Forbidden string
}

// Verify reports NotFound when the lookup found nothing, Forbidden when the
// resource belongs to someone else, and passes any other lookup error through.
// Existence is always decided first.
func (r Rule) Verify(callerID, ownerID string, lookupErr error) error {
	if lookupErr != nil {
		if errors.Is(lookupErr, ErrMissing) {
			return apperr.NotFound(r.NotFound)
		}
		return lookupErr
	}
	if callerID == "" || callerID != ownerID {
		return apperr.Forbidden(r.Forbidden)
	}
	return nil
}

// Rules shared across packages.
var (
	DocumentAccess = Rule{
		NotFound:  "Document not found",
		Forbidden: "You cannot access a document that is not yours",
	}
	DocumentTranscribe = Rule{
		NotFound:  "Document not found",
		Forbidden: "You cannot transcribe a document that is not yours",
	}
	TranscriptionAccess = Rule{
		NotFound:  "Transcription not found",
		Forbidden: "You do not own this transcription",
	}
	TranscriptionOfDocument = Rule{
		NotFound:  "Document not found",
		Forbidden: "You cannot access a transcription for a document that is not yours",
	}
	CompletionAccess = Rule{
		NotFound:  "AiCompletion not found",
		Forbidden: "You do not own this AiCompletion",
	}
	UserAccess = Rule{
		NotFound:  "User not found",
		Forbidden: "You can only access your own user data",
	}
	UserUpdate = Rule{
		NotFound:  "User not found",
		Forbidden: "You can only update your own user data",
	}
)
