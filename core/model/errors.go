package model

import "errors"

// ErrMalformedInput is returned when scenario tables or plans are inconsistent.
var ErrMalformedInput = errors.New("malformed input")
