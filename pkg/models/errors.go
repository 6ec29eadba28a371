package models

import "errors"

// Error taxonomy shared by every component. Wrap with fmt.Errorf("...: %w")
// and test with errors.Is.
var (
	ErrUnreadableFile    = errors.New("unreadable file")
	ErrUnreadableImage   = errors.New("unreadable image")
	ErrProviderFailure   = errors.New("embedding provider failure")
	ErrShapeMismatch     = errors.New("vector shape mismatch")
	ErrLengthMismatch    = errors.New("hash length mismatch")
	ErrDegenerateContent = errors.New("degenerate content")
	ErrCorruptSnapshot   = errors.New("corrupt snapshot line")
	ErrUsage             = errors.New("usage error")
	ErrNotFound          = errors.New("not found")
)
