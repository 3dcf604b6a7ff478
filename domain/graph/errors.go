package graph

import "errors"

var (
	ErrInvalidIdentifier = errors.New("identifier must start with a letter or underscore and contain only letters, digits and underscores")
	ErrInvalidDirection  = errors.New("direction must be one of incoming, outgoing, both")
	ErrUnsupportedValue  = errors.New("unsupported property value")
	ErrEmptyID           = errors.New("id cannot be empty")
)
