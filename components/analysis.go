package components

import (
	"errors"

	"github.com/panyam/queuelab/core"
)

// Analysis bundles everything one simulation run produces.
type Analysis struct {
	Servers   int               `json:"servers" yaml:"servers"`
	Timeline  *Timeline         `json:"timeline" yaml:"timeline"`
	Empirical EmpiricalMetrics  `json:"empirical" yaml:"empirical"`
	Occupancy []OccupancySample `json:"occupancy,omitempty" yaml:"occupancy,omitempty"`

	// Theory is nil when the closed form could not be evaluated, in which
	// case TheoryErr says why (typically ErrDivergentSystem).
	Theory      *QueueMetrics `json:"theory,omitempty" yaml:"theory,omitempty"`
	TheoryErr   error         `json:"-" yaml:"-"`
	TheoryError string        `json:"theory_error,omitempty" yaml:"theory_error,omitempty"`
}

// Stable reports whether steady state figures exist for this run.
func (a *Analysis) Stable() bool {
	return a.Theory != nil
}

// Diverges reports whether the closed form was refused because rho >= 1.
func (a *Analysis) Diverges() bool {
	return errors.Is(a.TheoryErr, core.ErrDivergentSystem)
}

// Analyze replays trace on `servers` servers and derives the empirical metrics,
// the Erlang-C metrics and `samples` occupancy samples.
//
// Invalid input or parameters fail the whole run. A trace whose rates make the
// closed form unusable (unstable or empty) still returns the replay, with the
// reason in TheoryErr.
func Analyze(trace core.Trace, servers, samples int) (*Analysis, error) {
	tl, err := Simulate(trace, servers)
	if err != nil {
		return nil, err
	}

	a := &Analysis{
		Servers:   servers,
		Timeline:  tl,
		Empirical: Empirical(tl),
		Occupancy: Occupancy(tl, samples),
	}

	theory, err := TheoryForTrace(trace, servers)
	switch {
	case err == nil:
		a.Theory = &theory
	case errors.Is(err, core.ErrDivergentSystem), errors.Is(err, core.ErrInsufficientSample):
		a.TheoryErr = err
		a.TheoryError = err.Error()
		core.Warn("closed form unavailable for %d customers on %d servers: %v", trace.Len(), servers, err)
	default:
		return nil, err
	}
	return a, nil
}
