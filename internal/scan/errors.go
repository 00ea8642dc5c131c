package scan

import "errors"

var (
	ErrUnknownMethod  = errors.New("unknown derivation method")
	ErrUnknownVersion = errors.New("unknown game version")
	ErrInvalidRange   = errors.New("invalid seed range")
	ErrInvalidLead    = errors.New("invalid lead filter")
)
