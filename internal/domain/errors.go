package domain

import "errors"

var (
	ErrDataUnavailable = errors.New("data unavailable")
	ErrInvalidRange    = errors.New("invalid range")
)
