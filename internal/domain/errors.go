package domain

import "errors"

var (
	// ErrNoQuestion is returned by fallback sources that have nothing cached
	// or stored for the requested topic.
	ErrNoQuestion = errors.New("no question available for topic")
	// ErrInvalidQuestion indicates generated content failed schema validation.
	ErrInvalidQuestion = errors.New("question failed validation")
)
