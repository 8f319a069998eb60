package synopsis

import "errors"

var (
	ErrNotFound     = errors.New("synopsis not found")
	ErrInvalidInput = errors.New("invalid input")
)
