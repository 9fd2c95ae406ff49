package calculator

import "errors"

var (
	// ErrConfigUnavailable is returned when any underlying fetch fails
	// during configuration composition. No partial document is ever
	// returned.
	ErrConfigUnavailable = errors.New("configuration unavailable")

	// ErrInvalidSelection is returned when a selection references a
	// project type, design level or scope option the configuration does
	// not know about.
	ErrInvalidSelection = errors.New("invalid selection")

	// ErrIncompleteSelection is returned when a required design level is
	// missing from the selection.
	ErrIncompleteSelection = errors.New("incomplete selection")
)
