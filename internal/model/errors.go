package model

import "errors"

// Sentinel errors of the deadline engine. Callers match them with errors.Is;
// the engine wraps them with the offending value for context.
var (
	ErrInvalidTemplate     = errors.New("invalid deadline type template")
	ErrUnknownDeadlineType = errors.New("unknown deadline type")
	ErrInvalidDate         = errors.New("invalid date")
	ErrInvalidYear         = errors.New("invalid year")
)
