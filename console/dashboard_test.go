package console

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/panyam/queuelab/components"
	"github.com/panyam/queuelab/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const exampleCSV = "Cliente,Tempo_Espera,Tempo_Atendimento\n1,0,5\n2,1,5\n3,1,5\n"

func uploadBody(t *testing.T, csv string, fields map[string]string) (*bytes.Buffer, string) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if csv != "" {
		fw, err := mw.CreateFormFile("file", "fila.csv")
		require.NoError(t, err)
		_, err = io.WriteString(fw, csv)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &body, mw.FormDataContentType()
}

func postUpload(t *testing.T, h http.Handler, path, csv string, fields map[string]string) *httptest.ResponseRecorder {
	body, ctype := uploadBody(t, csv, fields)
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", ctype)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestIndex(t *testing.T) {
	h := NewDashboard(DefaultOptions()).Handler()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `name="servers"`)
	assert.Contains(t, rec.Body.String(), `value="3"`)
	assert.Contains(t, rec.Body.String(), `max="10"`)
}

func TestSimulate_RendersMetricsAndCharts(t *testing.T) {
	h := NewDashboard(DefaultOptions()).Handler()
	rec := postUpload(t, h, "/simulate", exampleCSV, map[string]string{"servers": "3"})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	page := rec.Body.String()
	assert.Contains(t, page, "P₀ (Sistema vazio)")
	assert.Contains(t, page, "Tempo médio de espera (Wq)")
	assert.Equal(t, 3, strings.Count(page, "<svg"))
	assert.Contains(t, page, "Ocupação dos servidores ao longo do tempo")
	assert.Contains(t, page, `href="/download"`)
}

func TestSimulate_UnstableSystemStillRenders(t *testing.T) {
	h := NewDashboard(DefaultOptions()).Handler()
	rec := postUpload(t, h, "/simulate", exampleCSV, map[string]string{"servers": "1"})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Sistema instável")
	assert.Contains(t, rec.Body.String(), unavailable)
	assert.Equal(t, 3, strings.Count(rec.Body.String(), "<svg"))
}

func TestSimulate_MissingColumns(t *testing.T) {
	h := NewDashboard(DefaultOptions()).Handler()
	rec := postUpload(t, h, "/simulate", "a,b\n1,2\n", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "CSV deve conter colunas &#39;Tempo_Espera&#39; e &#39;Tempo_Atendimento&#39;")
	assert.NotContains(t, rec.Body.String(), "<svg")
}

func TestSimulate_BadRequests(t *testing.T) {
	h := NewDashboard(DefaultOptions()).Handler()

	cases := []struct {
		name   string
		csv    string
		fields map[string]string
		want   string
	}{
		{"servers above max", exampleCSV, map[string]string{"servers": "11"}, "entre 1 e 10"},
		{"servers zero", exampleCSV, map[string]string{"servers": "0"}, "entre 1 e 10"},
		{"servers not a number", exampleCSV, map[string]string{"servers": "três"}, "entre 1 e 10"},
		{"no file", "", map[string]string{"servers": "2"}, "Selecione um arquivo CSV"},
		{"bad number", "Tempo_Espera,Tempo_Atendimento\n1,x\n", nil, "CSV inválido"},
		{"negative service", "Tempo_Espera,Tempo_Atendimento\n1,-2\n", nil, "Dados inválidos"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := postUpload(t, h, "/simulate", tc.csv, tc.fields)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), tc.want)
		})
	}
}

func TestDownload_UsesSession(t *testing.T) {
	srv := httptest.NewServer(NewDashboard(DefaultOptions()).Handler())
	defer srv.Close()

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{Jar: jar}

	resp, err := client.Get(srv.URL + "/download")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	body, ctype := uploadBody(t, exampleCSV, map[string]string{"servers": "1"})
	resp, err = client.Post(srv.URL+"/simulate", ctype, body)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = client.Get(srv.URL + "/download")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), DownloadName)
	assert.NotEmpty(t, resp.Header.Get("X-Run-ID"))

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t,
		"arrival_time,start_service,end_service,wait_time,total_time\n"+
			"0,0,5,0,5\n"+
			"1,5,10,4,9\n"+
			"2,10,15,8,13\n",
		string(data))
}

func TestAPISimulate(t *testing.T) {
	h := NewDashboard(DefaultOptions()).Handler()
	rec := postUpload(t, h, "/api/simulate", exampleCSV, map[string]string{"servers": "2"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var out struct {
		RunID    string              `json:"run_id"`
		File     string              `json:"file"`
		Analysis components.Analysis `json:"analysis"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.NotEmpty(t, out.RunID)
	assert.Equal(t, "fila.csv", out.File)
	assert.Equal(t, 2, out.Analysis.Servers)
	assert.Equal(t, 3, out.Analysis.Timeline.Len())

	rec = postUpload(t, h, "/api/simulate", "x\n1\n", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var errBody map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errBody))
	assert.Contains(t, errBody["error"], "Tempo_Espera")
}

func TestHealthAndMethods(t *testing.T) {
	h := NewDashboard(DefaultOptions()).Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/simulate", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestConsoleLoggerEvents(t *testing.T) {
	var buf bytes.Buffer
	l := NewConsoleLogger(&buf, core.LogLevelDebug)
	l.Success("done %d", 1)
	l.SetUseEmojis(false)
	l.Failure("broken")

	out := buf.String()
	assert.Contains(t, out, "✅ ")
	assert.Contains(t, out, "done 1")
	assert.Contains(t, out, "broken")
	assert.NotContains(t, out, "❌")
}

func TestOptionsValidate(t *testing.T) {
	require.NoError(t, DefaultOptions().Validate())

	cases := map[string]func(o *Options){
		"above server limit": func(o *Options) { o.MaxServers = ServerLimit + 1 },
		"no servers":         func(o *Options) { o.MaxServers = 0 },
		"default above max":  func(o *Options) { o.MaxServers, o.DefaultServers = 4, 5 },
		"default zero":       func(o *Options) { o.DefaultServers = 0 },
		"no samples":         func(o *Options) { o.Samples = 0 },
		"no upload":          func(o *Options) { o.MaxUploadBytes = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			o := DefaultOptions()
			mutate(&o)
			assert.ErrorIs(t, o.Validate(), core.ErrInvalidParameter)
		})
	}
}
