package engine

import "errors"

var (
	// ErrInvalidConfig marks optimizer configurations rejected before any
	// generation runs.
	ErrInvalidConfig = errors.New("invalid optimizer configuration")

	// ErrEmptyPopulation is returned by Best when given no agents.
	ErrEmptyPopulation = errors.New("empty population")
)
