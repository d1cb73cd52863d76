package mobx

import "errors"

var (
	// ErrCycle is the panic value (wrapped) when a computed reads itself
	// while computing.
	ErrCycle = errors.New("cycle detected in computation")
	// ErrReactionLoop is reported when reactions keep scheduling each other
	// for MaxReactionIterations passes.
	ErrReactionLoop = errors.New("reaction doesn't converge to a stable state")
)
