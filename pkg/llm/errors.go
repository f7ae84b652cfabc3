package llm

import "errors"

// Categorized provider failures. Handlers surface these uniformly to the
// caller; the categories exist for logging and retry decisions.
var (
	ErrInvalidRequest      = errors.New("llm: invalid request")
	ErrAuthFailure         = errors.New("llm: authentication failed")
	ErrRateLimited         = errors.New("llm: rate limited")
	ErrUpstreamUnavailable = errors.New("llm: upstream unavailable")
	ErrUpstreamTimeout     = errors.New("llm: upstream timeout")
)
