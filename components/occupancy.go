package components

import (
	"github.com/panyam/queuelab/core"
	"gonum.org/v1/gonum/floats"
)

// DefaultOccupancySamples is how many instants the occupancy charts sample.
const DefaultOccupancySamples = 1000

// OccupancySample is the state of the line at one instant.
type OccupancySample struct {
	Time    core.Minutes `json:"time" yaml:"time"`
	InQueue int          `json:"in_queue" yaml:"in_queue"`
	Busy    int          `json:"busy" yaml:"busy"`
}

// QueueLengthAt counts customers waiting at instant at: arrival <= at < start.
func (t *Timeline) QueueLengthAt(at core.Minutes) int {
	count := 0
	for i := range t.Entries {
		if t.Entries[i].Arrival <= at && at < t.Entries[i].Start {
			count++
		}
	}
	return count
}

// BusyServersAt counts customers in service at instant at: start <= at < end.
func (t *Timeline) BusyServersAt(at core.Minutes) int {
	count := 0
	for i := range t.Entries {
		if t.Entries[i].Start <= at && at < t.Entries[i].End {
			count++
		}
	}
	return count
}

// SampleInstants returns n evenly spaced instants covering [0, end].
func SampleInstants(end core.Minutes, n int) []float64 {
	switch {
	case n <= 0:
		return nil
	case n == 1:
		return []float64{0}
	}
	return floats.Span(make([]float64, n), 0, end)
}

// Occupancy evaluates queue length and busy servers at `samples` instants
// spanning [0, makespan]. It is a linear scan per instant and only meant for charts.
func Occupancy(t *Timeline, samples int) []OccupancySample {
	if t.Len() == 0 {
		return nil
	}
	instants := SampleInstants(t.Makespan(), samples)
	out := make([]OccupancySample, len(instants))
	for i, at := range instants {
		out[i] = OccupancySample{Time: at, InQueue: t.QueueLengthAt(at), Busy: t.BusyServersAt(at)}
	}
	return out
}
