package domain

import "github.com/rotisserie/eris"

var (
	// ErrFetchFailed marks a fetch collaborator failure (transport or API error).
	ErrFetchFailed = eris.New("fetch failed")
	// ErrRateLimited is returned by sources when the remote platform throttles us.
	ErrRateLimited = eris.New("rate limited")
	// ErrMissingArtifact marks a stage whose input artifact is absent.
	ErrMissingArtifact = eris.New("missing artifact")
	// ErrMalformedInput marks a table lacking an expected column or holding a bad cell.
	ErrMalformedInput = eris.New("malformed input")
	// ErrInvalidRequest marks invocation parameters outside their allowed range.
	ErrInvalidRequest = eris.New("invalid request")
)
