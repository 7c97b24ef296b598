// Package tutor defines the error taxonomy shared across the tutoring
// pipeline. Callers classify failures with errors.Is against these
// sentinels; the HTTP layer maps them onto status codes.
package tutor

import "errors"

var (
	// ErrValidation marks malformed or incomplete input.
	ErrValidation = errors.New("validation failed")

	// ErrAuth marks a missing, expired, or otherwise invalid identity.
	ErrAuth = errors.New("authentication failed")

	// ErrRetrieval marks a content retrieval failure. Recoverable: the
	// pipeline degrades to an empty context instead of aborting.
	ErrRetrieval = errors.New("content retrieval failed")

	// ErrHistoryRead marks a chat history read failure. Recoverable in
	// the same way as ErrRetrieval.
	ErrHistoryRead = errors.New("history read failed")

	// ErrGeneration marks an answer generation failure. Fatal: the
	// exchange is aborted, though the user's message stays persisted.
	ErrGeneration = errors.New("answer generation failed")

	// ErrPersistence marks a session or message store failure.
	ErrPersistence = errors.New("persistence failed")
)
