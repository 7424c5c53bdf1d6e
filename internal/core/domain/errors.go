package domain

import "errors"

var (
	// ErrNotFound is returned when a song, playlist or stored asset does not exist.
	ErrNotFound = errors.New("domain: not found")
	// ErrInvalidArgument is returned when caller input fails a domain rule.
	ErrInvalidArgument = errors.New("domain: invalid argument")
	// ErrUnsupportedMedia is returned when an upload is not a recognized audio file.
	ErrUnsupportedMedia = errors.New("domain: unsupported media type")
)
