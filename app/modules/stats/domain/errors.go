package statsdomain

import "errors"

var (
	// ErrUpstreamLookupFailed marks an event dropped because a team,
	// player or competition it references could not be resolved.
	ErrUpstreamLookupFailed = errors.New("upstream lookup failed")
	// ErrMalformedEvent marks an event whose fields contradict its kind.
	ErrMalformedEvent      = errors.New("malformed match event")
	ErrCompetitionNotFound = errors.New("competition not found")
)
