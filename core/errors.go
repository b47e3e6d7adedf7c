package core

import "errors"

// Error kinds surfaced by the loaders, the simulator and the formula evaluators.
// Callers wrap them with context and test with errors.Is.
var (
	ErrMissingColumn      = errors.New("missing required column")
	ErrInvalidParameter   = errors.New("invalid parameter")
	ErrInvalidInput       = errors.New("invalid input")
	ErrDivergentSystem    = errors.New("queue is unstable (rho >= 1)")
	ErrInsufficientSample = errors.New("insufficient sample size")
)
