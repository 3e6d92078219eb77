package vsmark

import "errors"

// Error kinds surfaced by the embedding API. Callers match them with
// errors.Is; every error returned by EmbedMetadata wraps exactly one.
var (
	// ErrInput marks a parameter of the wrong type or shape, such as a
	// private key of the wrong length.
	ErrInput = errors.New("invalid input")

	// ErrValue marks a missing required field, an unknown enum value, or
	// an unparseable timestamp.
	ErrValue = errors.New("invalid value")

	// ErrCapacity is returned when the host text has no anchor for the
	// selector run, or too few anchors in distributed mode.
	ErrCapacity = errors.New("insufficient embedding targets")

	// ErrFatal wraps unexpected failures in the signer or serializer.
	ErrFatal = errors.New("internal failure")
)
