package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/panyam/queuelab/core"
)

// Columns names the two CSV headers a trace is read from.
type Columns struct {
	Interarrival string `mapstructure:"interarrival" yaml:"interarrival"`
	Service      string `mapstructure:"service" yaml:"service"`
}

var (
	// ReportColumns is the layout of the historical data the report reads.
	ReportColumns = Columns{Interarrival: "interarrival_time", Service: "service_time"}

	// DashboardColumns is the layout of the files uploaded to the dashboard.
	DashboardColumns = Columns{Interarrival: "Tempo_Espera", Service: "Tempo_Atendimento"}
)

// ColumnsByName resolves a layout name ("report" or "dashboard").
func ColumnsByName(name string) (Columns, error) {
	switch strings.ToLower(name) {
	case "report":
		return ReportColumns, nil
	case "dashboard", "":
		return DashboardColumns, nil
	}
	return Columns{}, fmt.Errorf("%w: unknown column layout %q (want report or dashboard)", core.ErrInvalidParameter, name)
}

// ReadTrace parses CSV data with a header row. Both columns in cols must be
// present by exact name; any other columns are ignored. Every cell of the two
// columns must parse as a number. Range checks are left to the consumers.
func ReadTrace(r io.Reader, cols Columns) (core.Trace, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return core.Trace{}, fmt.Errorf("%w: %s, %s (file is empty)", core.ErrMissingColumn, cols.Interarrival, cols.Service)
	}
	if err != nil {
		return core.Trace{}, fmt.Errorf("%w: reading header: %v", core.ErrInvalidInput, err)
	}

	iaIdx, svcIdx := -1, -1
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		switch name {
		case cols.Interarrival:
			iaIdx = i
		case cols.Service:
			svcIdx = i
		}
	}
	var missing []string
	if iaIdx < 0 {
		missing = append(missing, cols.Interarrival)
	}
	if svcIdx < 0 {
		missing = append(missing, cols.Service)
	}
	if len(missing) > 0 {
		return core.Trace{}, fmt.Errorf("%w: %s", core.ErrMissingColumn, strings.Join(missing, ", "))
	}

	var records []core.Record
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return core.Trace{}, fmt.Errorf("%w: %v", core.ErrInvalidInput, err)
		}
		ia, err := parseCell(row, iaIdx, cols.Interarrival, line)
		if err != nil {
			return core.Trace{}, err
		}
		svc, err := parseCell(row, svcIdx, cols.Service, line)
		if err != nil {
			return core.Trace{}, err
		}
		records = append(records, core.Record{InterarrivalTime: ia, ServiceTime: svc})
	}
	core.Debug("loaded %d records (%s, %s)", len(records), cols.Interarrival, cols.Service)
	return core.Trace{Records: records}, nil
}

func parseCell(row []string, idx int, column string, line int) (float64, error) {
	if idx >= len(row) {
		return 0, fmt.Errorf("%w: line %d has no %s value", core.ErrInvalidInput, line, column)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(row[idx]), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: line %d column %s: %q is not a number", core.ErrInvalidInput, line, column, row[idx])
	}
	return v, nil
}

// LoadTrace reads a trace from a CSV file on disk.
func LoadTrace(path string, cols Columns) (core.Trace, error) {
	f, err := os.Open(path)
	if err != nil {
		return core.Trace{}, err
	}
	defer f.Close()

	trace, err := ReadTrace(f, cols)
	if err != nil {
		return core.Trace{}, fmt.Errorf("%s: %w", path, err)
	}
	return trace, nil
}
