package domain

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrValidation        = errors.New("validation failed")
	ErrExpansionParse    = errors.New("expansion parse failed")
	ErrGenerationFailure = errors.New("generation failure")
)
