package domain

import "errors"

var (
	// ErrValidation marks caller input that was rejected before any outbound call.
	ErrValidation = errors.New("validation failed")
	// ErrGeneration marks any failure of the structured-generation backend.
	ErrGeneration = errors.New("generation failed")
	// ErrInvalidImage marks image payloads that cannot be decoded as an image.
	ErrInvalidImage = errors.New("invalid image")
)
