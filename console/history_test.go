package console

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunHistory_Wraps(t *testing.T) {
	h := NewRunHistory(3)
	assert.Empty(t, h.Recent(0))

	for i := 1; i <= 5; i++ {
		h.Add(RunSummary{ID: fmt.Sprintf("run-%d", i), Customers: i}, []byte(fmt.Sprintf("csv-%d", i)))
	}
	assert.Equal(t, 3, h.Len())

	recent := h.Recent(0)
	require.Len(t, recent, 3)
	assert.Equal(t, "run-5", recent[0].ID)
	assert.Equal(t, "run-4", recent[1].ID)
	assert.Equal(t, "run-3", recent[2].ID)

	top := h.Recent(2)
	require.Len(t, top, 2)
	assert.Equal(t, "run-5", top[0].ID)

	data, ok := h.Timeline("run-3")
	require.True(t, ok)
	assert.Equal(t, "csv-3", string(data))

	_, ok = h.Timeline("run-2")
	assert.False(t, ok, "evicted runs are gone")
}

func TestRunHistory_MinimumSize(t *testing.T) {
	h := NewRunHistory(0)
	h.Add(RunSummary{ID: "a"}, nil)
	h.Add(RunSummary{ID: "b"}, nil)
	require.Equal(t, 1, h.Len())
	assert.Equal(t, "b", h.Recent(0)[0].ID)
}

func TestRunHistory_ConcurrentAdds(t *testing.T) {
	h := NewRunHistory(8)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			h.Add(RunSummary{ID: fmt.Sprintf("r%d", i)}, nil)
			h.Recent(4)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 8, h.Len())
}

func TestAPIRunsAndDownloadByID(t *testing.T) {
	h := NewDashboard(DefaultOptions()).Handler()

	first := postUpload(t, h, "/api/simulate", exampleCSV, map[string]string{"servers": "1"})
	require.Equal(t, http.StatusOK, first.Code, first.Body.String())
	second := postUpload(t, h, "/api/simulate", exampleCSV, map[string]string{"servers": "3"})
	require.Equal(t, http.StatusOK, second.Code, second.Body.String())

	var created struct {
		RunID string `json:"run_id"`
	}
	require.NoError(t, json.Unmarshal(first.Body.Bytes(), &created))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/runs", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var listed struct {
		Runs []RunSummary `json:"runs"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Len(t, listed.Runs, 2)
	assert.Equal(t, 3, listed.Runs[0].Servers)
	assert.True(t, listed.Runs[0].Stable)
	assert.Equal(t, created.RunID, listed.Runs[1].ID)
	assert.False(t, listed.Runs[1].Stable)
	assert.Equal(t, 3, listed.Runs[1].Customers)
	assert.Equal(t, "fila.csv", listed.Runs[1].File)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/runs?limit=1", nil))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	assert.Len(t, listed.Runs, 1)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/runs?limit=x", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/download/"+created.RunID, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, created.RunID, rec.Header().Get("X-Run-ID"))
	assert.Equal(t, "arrival_time,start_service,end_service,wait_time,total_time\n0,0,5,0,5\n1,5,10,4,9\n2,10,15,8,13\n", rec.Body.String())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/download/unknown", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestIndexListsRecentRuns(t *testing.T) {
	h := NewDashboard(DefaultOptions()).Handler()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotContains(t, rec.Body.String(), "Simulações recentes")

	up := postUpload(t, h, "/simulate", exampleCSV, map[string]string{"servers": "1"})
	require.Equal(t, http.StatusOK, up.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	page := rec.Body.String()
	assert.Contains(t, page, "Simulações recentes")
	assert.Contains(t, page, "(instável)")
	assert.Contains(t, page, `href="/download/`)
}
