package components

import (
	"container/heap"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/panyam/queuelab/core"
	"gonum.org/v1/gonum/floats"
)

// TimelineEntry records how one customer moved through the service line.
type TimelineEntry struct {
	Customer int          `json:"customer" yaml:"customer"`
	Server   int          `json:"server" yaml:"server"`
	Arrival  core.Minutes `json:"arrival_time" yaml:"arrival_time"`
	Start    core.Minutes `json:"start_service" yaml:"start_service"`
	End      core.Minutes `json:"end_service" yaml:"end_service"`
	Service  core.Minutes `json:"service_time" yaml:"service_time"`
	Wait     core.Minutes `json:"wait_time" yaml:"wait_time"`
	Total    core.Minutes `json:"total_time" yaml:"total_time"`
}

// Timeline is the per customer result of replaying a trace through c servers.
// Entries are in arrival order, one per input record.
type Timeline struct {
	Servers int             `json:"servers" yaml:"servers"`
	Entries []TimelineEntry `json:"entries" yaml:"entries"`
}

func (t *Timeline) Len() int {
	return len(t.Entries)
}

func (t *Timeline) column(f func(e *TimelineEntry) float64) []float64 {
	out := make([]float64, len(t.Entries))
	for i := range t.Entries {
		out[i] = f(&t.Entries[i])
	}
	return out
}

func (t *Timeline) Arrivals() []float64 {
	return t.column(func(e *TimelineEntry) float64 { return e.Arrival })
}

func (t *Timeline) Starts() []float64 {
	return t.column(func(e *TimelineEntry) float64 { return e.Start })
}

func (t *Timeline) Ends() []float64 {
	return t.column(func(e *TimelineEntry) float64 { return e.End })
}

func (t *Timeline) Waits() []float64 {
	return t.column(func(e *TimelineEntry) float64 { return e.Wait })
}

func (t *Timeline) Totals() []float64 {
	return t.column(func(e *TimelineEntry) float64 { return e.Total })
}

// Makespan is the latest service end, or 0 for an empty timeline.
func (t *Timeline) Makespan() core.Minutes {
	if len(t.Entries) == 0 {
		return 0
	}
	return floats.Max(t.Ends())
}

// TimelineCSVHeader is the column layout of the downloadable timeline.
var TimelineCSVHeader = []string{"arrival_time", "start_service", "end_service", "wait_time", "total_time"}

// WriteCSV writes the timeline with TimelineCSVHeader columns.
func (t *Timeline) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(TimelineCSVHeader); err != nil {
		return err
	}
	format := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	for _, e := range t.Entries {
		row := []string{format(e.Arrival), format(e.Start), format(e.End), format(e.Wait), format(e.Total)}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// serverSlot is one server and the time it next becomes free.
type serverSlot struct {
	index  int
	freeAt core.Minutes
}

// serverPool is a min-heap of servers ordered by (freeAt, index), so the
// earliest available server is always at the root and ties go to the lowest index.
type serverPool []serverSlot

func (p serverPool) Len() int { return len(p) }
func (p serverPool) Less(i, j int) bool {
	if p[i].freeAt != p[j].freeAt {
		return p[i].freeAt < p[j].freeAt
	}
	return p[i].index < p[j].index
}
func (p serverPool) Swap(i, j int) { p[i], p[j] = p[j], p[i] }
func (p *serverPool) Push(x any)   { *p = append(*p, x.(serverSlot)) }
func (p *serverPool) Pop() any {
	old := *p
	n := len(old)
	slot := old[n-1]
	*p = old[:n-1]
	return slot
}

func newServerPool(servers int) *serverPool {
	pool := make(serverPool, servers)
	for i := range pool {
		pool[i] = serverSlot{index: i}
	}
	heap.Init(&pool)
	return &pool
}

// earliest returns the server that frees up first.
func (p *serverPool) earliest() serverSlot {
	return (*p)[0]
}

// occupyEarliest marks the earliest server busy until `until`.
func (p *serverPool) occupyEarliest(until core.Minutes) {
	(*p)[0].freeAt = until
	heap.Fix(p, 0)
}

// Simulate replays trace through `servers` parallel servers. Each customer, in
// arrival order, goes to the server that frees up first (lowest index on ties)
// and starts at max(arrival, free-at). Service is never preempted.
//
// The replay is pure: the same trace and server count always produce the same
// timeline. An empty trace yields an empty timeline.
func Simulate(trace core.Trace, servers int) (*Timeline, error) {
	if servers < 1 {
		return nil, fmt.Errorf("%w: server count must be >= 1, got %d", core.ErrInvalidParameter, servers)
	}
	if err := trace.Validate(); err != nil {
		return nil, err
	}

	n := trace.Len()
	tl := &Timeline{Servers: servers, Entries: make([]TimelineEntry, n)}
	if n == 0 {
		return tl, nil
	}

	arrivals := floats.CumSum(make([]float64, n), trace.Interarrivals())
	pool := newServerPool(servers)
	for i, rec := range trace.Records {
		slot := pool.earliest()
		start := math.Max(arrivals[i], slot.freeAt)
		end := start + rec.ServiceTime
		pool.occupyEarliest(end)

		tl.Entries[i] = TimelineEntry{
			Customer: i,
			Server:   slot.index,
			Arrival:  arrivals[i],
			Start:    start,
			End:      end,
			Service:  rec.ServiceTime,
			Wait:     start - arrivals[i],
			Total:    end - arrivals[i],
		}
	}
	core.Debug("simulated %d customers on %d servers, makespan %.3f", n, servers, tl.Makespan())
	return tl, nil
}
