package components

import (
	"sort"

	"github.com/panyam/queuelab/core"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// EmpiricalMetrics are measured directly off a replayed timeline over the
// observation window [0, Makespan].
//
// Lq and L are time averages, which is Little's law applied with the observed
// throughput n/Makespan: Lq = Σwait/T, L = Σ(time in system)/T.
type EmpiricalMetrics struct {
	Customers   int          `json:"customers" yaml:"customers"`
	Makespan    core.Minutes `json:"makespan" yaml:"makespan"`
	Throughput  float64      `json:"throughput" yaml:"throughput"`
	Wq          core.Minutes `json:"wq" yaml:"wq"`
	W           core.Minutes `json:"w" yaml:"w"`
	MaxWait     core.Minutes `json:"max_wait" yaml:"max_wait"`
	Lq          float64      `json:"lq" yaml:"lq"`
	L           float64      `json:"l" yaml:"l"`
	PWait       float64      `json:"p_wait" yaml:"p_wait"`
	P0          float64      `json:"p0" yaml:"p0"`
	Utilization float64      `json:"utilization" yaml:"utilization"`
	MaxQueue    int          `json:"max_queue" yaml:"max_queue"`
}

// Empirical measures the timeline. An empty timeline gives zero metrics.
func Empirical(t *Timeline) EmpiricalMetrics {
	n := t.Len()
	if n == 0 {
		return EmpiricalMetrics{}
	}

	span := t.Makespan()
	waits := t.Waits()
	totals := t.Totals()

	waited := 0
	busyTime := 0.0
	var inSystem, inQueue []edge
	for _, e := range t.Entries {
		if e.Wait > 0 {
			waited++
			inQueue = append(inQueue, edge{e.Arrival, 1}, edge{e.Start, -1})
		}
		busyTime += e.Service
		inSystem = append(inSystem, edge{e.Arrival, 1}, edge{e.End, -1})
	}

	emptyTime := 0.0
	sweep(inSystem, span, func(from, to float64, level int) {
		if level == 0 {
			emptyTime += to - from
		}
	})

	return EmpiricalMetrics{
		Customers:   n,
		Makespan:    span,
		Throughput:  float64(n) / span,
		Wq:          stat.Mean(waits, nil),
		W:           stat.Mean(totals, nil),
		MaxWait:     floats.Max(waits),
		Lq:          floats.Sum(waits) / span,
		L:           floats.Sum(totals) / span,
		PWait:       float64(waited) / float64(n),
		P0:          emptyTime / span,
		Utilization: busyTime / (float64(t.Servers) * span),
		MaxQueue:    sweep(inQueue, span, nil),
	}
}

// edge is the start (+1) or end (-1) of a half-open occupancy interval.
type edge struct {
	at    float64
	delta int
}

// sweep walks the edges in time order, applying every edge that shares a
// timestamp before the level is observed, which matches the half-open
// [from, to) convention of the occupancy queries. visit, when set, is called
// for each constant-level segment up to horizon. It returns the peak level.
func sweep(edges []edge, horizon float64, visit func(from, to float64, level int)) int {
	sort.Slice(edges, func(i, j int) bool { return edges[i].at < edges[j].at })
	level, peak, prev := 0, 0, 0.0
	for i := 0; i < len(edges); {
		at := edges[i].at
		if visit != nil && at > prev {
			visit(prev, at, level)
		}
		for ; i < len(edges) && edges[i].at == at; i++ {
			level += edges[i].delta
		}
		if level > peak {
			peak = level
		}
		prev = at
	}
	if visit != nil && horizon > prev {
		visit(prev, horizon, level)
	}
	return peak
}
