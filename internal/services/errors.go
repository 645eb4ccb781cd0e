package services

import "errors"

// Survey service errors
var (
	ErrDatasetNotLoaded = errors.New("dataset not loaded")
	ErrInvalidInput     = errors.New("invalid input")
)
