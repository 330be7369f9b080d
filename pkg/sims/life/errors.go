package life

import "errors"

var (
	// ErrInvalidSettings reports rule thresholds or dimensions out of range.
	ErrInvalidSettings = errors.New("invalid settings")

	// ErrInvalidSignature reports a binary save without the "g22" magic.
	ErrInvalidSignature = errors.New("invalid file signature")
	// ErrMalformedSettings reports a binary save whose settings record cannot be decoded.
	ErrMalformedSettings = errors.New("could not decode game settings")
	// ErrMalformedStepCount reports a binary save whose step counter cannot be decoded.
	ErrMalformedStepCount = errors.New("could not decode step count")
	// ErrMalformedCells reports a binary save whose cell map cannot be decoded.
	ErrMalformedCells = errors.New("could not decode cell map")
	// ErrMalformedHistory reports a binary save whose toggle history cannot be decoded.
	ErrMalformedHistory = errors.New("could not decode toggle history")

	// ErrEmptyText reports a text save without any board rows.
	ErrEmptyText = errors.New("text save has no rows")
)
