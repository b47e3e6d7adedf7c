package components

import (
	"fmt"
	"math"

	"github.com/panyam/queuelab/core"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// QueueMetrics are the steady state figures of an M/M/c queue.
//
// Lq and L follow the textbook Erlang-C relations (Lq = PWait*rho/(1-rho),
// L = Lq + lambda/mu) and Wq, W follow from Little's law.
type QueueMetrics struct {
	Lambda      float64 `json:"lambda" yaml:"lambda"`             // λ, arrivals per minute
	Mu          float64 `json:"mu" yaml:"mu"`                     // μ, services per minute per server
	Servers     int     `json:"servers" yaml:"servers"`           // c
	OfferedLoad float64 `json:"offered_load" yaml:"offered_load"` // a = λ/μ
	Rho         float64 `json:"rho" yaml:"rho"`                   // ρ = a/c
	P0          float64 `json:"p0" yaml:"p0"`
	PWait       float64 `json:"p_wait" yaml:"p_wait"`
	Lq          float64 `json:"lq" yaml:"lq"`
	L           float64 `json:"l" yaml:"l"`
	Wq          float64 `json:"wq" yaml:"wq"`
	W           float64 `json:"w" yaml:"w"`
}

// ErlangC evaluates the M/M/c formulas for arrival rate lambda, per server
// service rate mu and c servers. Unstable systems (rho >= 1) are rejected
// with ErrDivergentSystem rather than reported with meaningless numbers.
func ErlangC(lambda, mu float64, servers int) (QueueMetrics, error) {
	if servers < 1 {
		return QueueMetrics{}, fmt.Errorf("%w: server count must be >= 1, got %d", core.ErrInvalidParameter, servers)
	}
	if !core.IsFinite(lambda) || lambda <= 0 {
		return QueueMetrics{}, fmt.Errorf("%w: arrival rate must be finite and > 0, got %v", core.ErrInvalidParameter, lambda)
	}
	if !core.IsFinite(mu) || mu <= 0 {
		return QueueMetrics{}, fmt.Errorf("%w: service rate must be finite and > 0, got %v", core.ErrInvalidParameter, mu)
	}

	c := float64(servers)
	a := lambda / mu
	rho := a / c
	if rho >= 1 {
		return QueueMetrics{}, fmt.Errorf("%w: lambda=%.4f mu=%.4f c=%d gives rho=%.4f",
			core.ErrDivergentSystem, lambda, mu, servers, rho)
	}

	p0, pWait := erlangTerms(a, servers, rho)
	lq := pWait * rho / (1 - rho)
	wq := lq / lambda
	return QueueMetrics{
		Lambda:      lambda,
		Mu:          mu,
		Servers:     servers,
		OfferedLoad: a,
		Rho:         rho,
		P0:          p0,
		PWait:       pWait,
		Lq:          lq,
		L:           lq + a,
		Wq:          wq,
		W:           wq + 1/mu,
	}, nil
}

// erlangTerms returns P0 and the Erlang-C delay probability.
//
// With a = λ/μ the normalising sum is
//
//	Σ_{k<c} a^k/k! + a^c/(c!(1-ρ))
//
// Each term is kept as a logarithm (k·ln a - ln k!) and the sum is taken with
// log-sum-exp, so neither c! nor a^c is ever formed and large c cannot overflow.
func erlangTerms(a float64, c int, rho float64) (p0, pWait float64) {
	logA := math.Log(a)
	logTerms := make([]float64, c+1)
	for k := 0; k < c; k++ {
		lgk, _ := math.Lgamma(float64(k + 1))
		logTerms[k] = float64(k)*logA - lgk
	}
	lgc, _ := math.Lgamma(float64(c + 1))
	logTerms[c] = float64(c)*logA - lgc - math.Log1p(-rho)

	logNorm := floats.LogSumExp(logTerms)
	return math.Exp(-logNorm), math.Exp(logTerms[c] - logNorm)
}

// RatesFromTrace estimates λ as 1/mean(interarrival) and μ as 1/mean(service).
func RatesFromTrace(trace core.Trace) (lambda, mu float64, err error) {
	if trace.Len() == 0 {
		return 0, 0, fmt.Errorf("%w: cannot estimate rates from an empty trace", core.ErrInsufficientSample)
	}
	meanIA := stat.Mean(trace.Interarrivals(), nil)
	meanSvc := stat.Mean(trace.ServiceTimes(), nil)
	if meanSvc <= 0 {
		return 0, 0, fmt.Errorf("%w: mean service time must be > 0, got %v", core.ErrInvalidInput, meanSvc)
	}
	if meanIA <= 0 {
		return 0, 0, fmt.Errorf("%w: mean interarrival time is %v so the arrival rate is unbounded",
			core.ErrDivergentSystem, meanIA)
	}
	return 1 / meanIA, 1 / meanSvc, nil
}

// TheoryForTrace estimates the rates of trace and evaluates ErlangC with them.
func TheoryForTrace(trace core.Trace, servers int) (QueueMetrics, error) {
	lambda, mu, err := RatesFromTrace(trace)
	if err != nil {
		return QueueMetrics{}, err
	}
	return ErlangC(lambda, mu, servers)
}
