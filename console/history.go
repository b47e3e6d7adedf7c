package console

import (
	"sync"
	"time"
)

// RunSummary is what the dashboard remembers about a finished simulation.
type RunSummary struct {
	ID          string    `json:"id"`
	At          time.Time `json:"at"`
	File        string    `json:"file"`
	Servers     int       `json:"servers"`
	Customers   int       `json:"customers"`
	Stable      bool      `json:"stable"`
	Wq          float64   `json:"wq"`
	W           float64   `json:"w"`
	Utilization float64   `json:"utilization"`

	timelineCSV []byte
}

// RunHistory keeps the most recent runs in a fixed size ring buffer. The
// oldest run is dropped once the buffer is full.
type RunHistory struct {
	runs      []*RunSummary
	size      int
	writePos  int
	readStart int
	count     int
	mu        sync.RWMutex
}

func NewRunHistory(size int) *RunHistory {
	if size < 1 {
		size = 1
	}
	return &RunHistory{runs: make([]*RunSummary, size), size: size}
}

// Add records a run together with its timeline CSV.
func (h *RunHistory) Add(run RunSummary, timelineCSV []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	run.timelineCSV = timelineCSV
	h.runs[h.writePos] = &run
	h.writePos = (h.writePos + 1) % h.size

	if h.count < h.size {
		h.count++
	} else {
		h.readStart = (h.readStart + 1) % h.size
	}
}

// Recent returns up to limit runs, newest first. limit <= 0 means all.
func (h *RunHistory) Recent(limit int) []RunSummary {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if limit <= 0 || limit > h.count {
		limit = h.count
	}
	out := make([]RunSummary, 0, limit)
	for i := 0; i < limit; i++ {
		idx := (h.writePos - 1 - i + h.size) % h.size
		out = append(out, *h.runs[idx])
	}
	return out
}

// Timeline returns the CSV of a run still in the buffer.
func (h *RunHistory) Timeline(id string) ([]byte, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for i := 0; i < h.count; i++ {
		run := h.runs[(h.readStart+i)%h.size]
		if run.ID == id {
			return run.timelineCSV, true
		}
	}
	return nil, false
}

func (h *RunHistory) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.count
}
