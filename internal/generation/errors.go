package generation

import "errors"

// Terminal failure classes for one generation call. Neither is retried
// here: unavailability retries are the caller's policy, and malformed
// output usually means a prompt/schema mismatch rather than a transient
// fault.
var (
	// ErrUnavailable means the backend was unreachable or answered non-2xx.
	ErrUnavailable = errors.New("generation backend unavailable")

	// ErrMalformedOutput means the backend answered but the response could
	// not be parsed as a question set.
	ErrMalformedOutput = errors.New("malformed generation output")
)
