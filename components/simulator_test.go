package components

import (
	"bytes"
	"math/rand"
	"sort"
	"testing"

	"github.com/panyam/queuelab/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustTrace(t *testing.T, interarrivals, services []float64) core.Trace {
	t.Helper()
	tr, err := core.NewTrace(interarrivals, services)
	require.NoError(t, err)
	return tr
}

// randomTrace draws exponential interarrival and service times from a fixed seed.
func randomTrace(seed int64, n int, lambda, mu float64) core.Trace {
	rng := rand.New(rand.NewSource(seed))
	recs := make([]core.Record, n)
	for i := range recs {
		recs[i] = core.Record{
			InterarrivalTime: rng.ExpFloat64() / lambda,
			ServiceTime:      rng.ExpFloat64()/mu + 1e-6,
		}
	}
	return core.Trace{Records: recs}
}

func TestSimulate_SingleServerExample(t *testing.T) {
	tl, err := Simulate(mustTrace(t, []float64{0, 1, 1}, []float64{5, 5, 5}), 1)
	require.NoError(t, err)

	assert.Equal(t, []float64{0, 1, 2}, tl.Arrivals())
	assert.Equal(t, []float64{0, 5, 10}, tl.Starts())
	assert.Equal(t, []float64{5, 10, 15}, tl.Ends())
	assert.Equal(t, []float64{0, 4, 8}, tl.Waits())
	assert.Equal(t, []float64{5, 9, 13}, tl.Totals())
	assert.Equal(t, 15.0, tl.Makespan())
}

func TestSimulate_SingleServerIsFCFS(t *testing.T) {
	tr := randomTrace(7, 500, 1.0, 1.2)
	tl, err := Simulate(tr, 1)
	require.NoError(t, err)

	e := tl.Entries
	assert.Equal(t, e[0].Arrival+tr.Records[0].ServiceTime, e[0].End)
	for i := 1; i < len(e); i++ {
		want := e[i].Arrival
		if e[i-1].End > want {
			want = e[i-1].End
		}
		require.Equal(t, want, e[i].Start, "customer %d", i)
		require.Equal(t, 0, e[i].Server)
	}
}

func TestSimulate_TimelineOrdering(t *testing.T) {
	for servers := 1; servers <= 6; servers++ {
		tr := randomTrace(int64(servers), 300, 2.0, 1.0)
		tl, err := Simulate(tr, servers)
		require.NoError(t, err)
		require.Equal(t, tr.Len(), tl.Len())
		require.Equal(t, servers, tl.Servers)

		perServer := map[int][]TimelineEntry{}
		for i, e := range tl.Entries {
			assert.Equal(t, i, e.Customer)
			assert.LessOrEqual(t, e.Arrival, e.Start)
			assert.LessOrEqual(t, e.Start, e.End)
			assert.Equal(t, tr.Records[i].ServiceTime, e.Service)
			assert.InDelta(t, e.Service, e.End-e.Start, 1e-9)
			assert.GreaterOrEqual(t, e.Server, 0)
			assert.Less(t, e.Server, servers)
			perServer[e.Server] = append(perServer[e.Server], e)
		}

		// No two customers overlap on the same server.
		for idx, entries := range perServer {
			sort.Slice(entries, func(i, j int) bool { return entries[i].Start < entries[j].Start })
			for i := 1; i < len(entries); i++ {
				assert.GreaterOrEqual(t, entries[i].Start, entries[i-1].End, "server %d", idx)
			}
		}
	}
}

func TestSimulate_WorkConserving(t *testing.T) {
	tr := randomTrace(11, 400, 2.5, 1.0)
	tl, err := Simulate(tr, 3)
	require.NoError(t, err)
	for _, e := range tl.Entries {
		if e.Wait > 0 {
			assert.Equal(t, 3, tl.BusyServersAt(e.Arrival), "customer %d waited while a server was idle", e.Customer)
		}
	}
}

func TestSimulate_TieBreakLowestIndex(t *testing.T) {
	tl, err := Simulate(mustTrace(t, []float64{0, 0, 0, 0, 0}, []float64{1, 1, 1, 1, 1}), 3)
	require.NoError(t, err)

	servers := make([]int, tl.Len())
	for i, e := range tl.Entries {
		servers[i] = e.Server
	}
	assert.Equal(t, []int{0, 1, 2, 0, 1}, servers)
	assert.Equal(t, []float64{0, 0, 0, 1, 1}, tl.Starts())
}

func TestSimulate_Deterministic(t *testing.T) {
	tr := randomTrace(3, 250, 1.5, 0.8)
	a, err := Simulate(tr, 2)
	require.NoError(t, err)
	b, err := Simulate(tr, 2)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	var bufA, bufB bytes.Buffer
	require.NoError(t, a.WriteCSV(&bufA))
	require.NoError(t, b.WriteCSV(&bufB))
	assert.Equal(t, bufA.Bytes(), bufB.Bytes())
}

func TestSimulate_EmptyTrace(t *testing.T) {
	tl, err := Simulate(core.Trace{}, 2)
	require.NoError(t, err)
	assert.Equal(t, 0, tl.Len())
	assert.Equal(t, 0.0, tl.Makespan())
}

func TestSimulate_Errors(t *testing.T) {
	tr := mustTrace(t, []float64{0, 1}, []float64{1, 1})
	_, err := Simulate(tr, 0)
	assert.ErrorIs(t, err, core.ErrInvalidParameter)

	_, err = Simulate(mustTrace(t, []float64{0, -1}, []float64{1, 1}), 1)
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	_, err = Simulate(mustTrace(t, []float64{0, 1}, []float64{1, 0}), 1)
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestTimelineWriteCSV(t *testing.T) {
	tl, err := Simulate(mustTrace(t, []float64{0, 1, 1}, []float64{5, 5, 5}), 1)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, tl.WriteCSV(&buf))
	want := "arrival_time,start_service,end_service,wait_time,total_time\n" +
		"0,0,5,0,5\n" +
		"1,5,10,4,9\n" +
		"2,10,15,8,13\n"
	assert.Equal(t, want, buf.String())
}
