package silence

import "errors"

var (
	// ErrMalformedLine marks a report line that carries the silence_end
	// marker but not the numeric fields. Such lines are skipped.
	ErrMalformedLine = errors.New("malformed silence_end line")

	// ErrInvalidConfig is returned before any interval is processed.
	ErrInvalidConfig = errors.New("invalid rescale configuration")

	// ErrInvariant signals a rescaled interval that grew or inverted.
	// It is a programming error, never a user error.
	ErrInvariant = errors.New("silence interval invariant violated")
)
