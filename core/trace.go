package core

import "fmt"

// Record is one customer of the service line, in arrival order.
type Record struct {
	// Time since the previous customer's arrival.
	InterarrivalTime Minutes `json:"interarrival_time" yaml:"interarrival_time"`

	// How long the customer occupies a server.
	ServiceTime Minutes `json:"service_time" yaml:"service_time"`
}

// Trace is the ordered sequence of records a simulation replays.
// It is built once by a loader and never mutated afterwards.
type Trace struct {
	Records []Record
}

// NewTrace pairs up interarrival and service times into a Trace.
func NewTrace(interarrivals, services []float64) (Trace, error) {
	if len(interarrivals) != len(services) {
		return Trace{}, fmt.Errorf("%w: %d interarrival times but %d service times",
			ErrInvalidInput, len(interarrivals), len(services))
	}
	records := make([]Record, len(services))
	for i := range services {
		records[i] = Record{InterarrivalTime: interarrivals[i], ServiceTime: services[i]}
	}
	return Trace{Records: records}, nil
}

// Len returns the number of customers in the trace.
func (t Trace) Len() int {
	return len(t.Records)
}

// Interarrivals returns a copy of the interarrival column.
func (t Trace) Interarrivals() []float64 {
	out := make([]float64, len(t.Records))
	for i, r := range t.Records {
		out[i] = r.InterarrivalTime
	}
	return out
}

// ServiceTimes returns a copy of the service time column.
func (t Trace) ServiceTimes() []float64 {
	out := make([]float64, len(t.Records))
	for i, r := range t.Records {
		out[i] = r.ServiceTime
	}
	return out
}

// Validate checks the values a queue replay depends on: interarrival times
// must be >= 0 and service times > 0. Offending values are rejected, not clamped.
func (t Trace) Validate() error {
	for i, r := range t.Records {
		if !IsFinite(r.InterarrivalTime) || r.InterarrivalTime < 0 {
			return fmt.Errorf("%w: record %d has interarrival time %v (must be >= 0)",
				ErrInvalidInput, i, r.InterarrivalTime)
		}
		if !IsFinite(r.ServiceTime) || r.ServiceTime <= 0 {
			return fmt.Errorf("%w: record %d has service time %v (must be > 0)",
				ErrInvalidInput, i, r.ServiceTime)
		}
	}
	return nil
}
