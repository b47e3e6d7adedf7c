// Package console serves the interactive queue simulation dashboard.
package console

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/panyam/queuelab/components"
	"github.com/panyam/queuelab/core"
	"github.com/panyam/queuelab/loader"
	"github.com/panyam/queuelab/viz"
)

// DownloadName is the file name offered for the timeline CSV.
const DownloadName = "resultados_simulacao.csv"

const (
	sessionTimelineKey = "timeline_csv"
	sessionRunKey      = "run_id"
)

// ServerLimit is the largest server count the dashboard offers.
const ServerLimit = 10

// Options bound what a single upload may ask for.
type Options struct {
	DefaultServers int
	MaxServers     int
	Samples        int
	MaxUploadBytes int64
	HistorySize    int
	Columns        loader.Columns
}

func DefaultOptions() Options {
	return Options{
		DefaultServers: 3,
		MaxServers:     ServerLimit,
		Samples:        components.DefaultOccupancySamples,
		MaxUploadBytes: 32 << 20,
		HistorySize:    20,
		Columns:        loader.DashboardColumns,
	}
}

// Validate rejects limits the dashboard cannot honor: MaxServers must lie in
// [1, ServerLimit] and DefaultServers in [1, MaxServers].
func (o Options) Validate() error {
	switch {
	case o.MaxServers < 1 || o.MaxServers > ServerLimit:
		return fmt.Errorf("%w: max servers %d outside [1, %d]", core.ErrInvalidParameter, o.MaxServers, ServerLimit)
	case o.DefaultServers < 1 || o.DefaultServers > o.MaxServers:
		return fmt.Errorf("%w: default servers %d outside [1, %d]", core.ErrInvalidParameter, o.DefaultServers, o.MaxServers)
	case o.Samples < 1:
		return fmt.Errorf("%w: occupancy samples must be >= 1, got %d", core.ErrInvalidParameter, o.Samples)
	case o.MaxUploadBytes < 1:
		return fmt.Errorf("%w: upload limit must be positive", core.ErrInvalidParameter)
	}
	return nil
}

// Dashboard is the web front end of the simulator. Every request runs its own
// pipeline; the session store keeps the last timeline of each visitor and the
// history keeps the last few runs across visitors.
type Dashboard struct {
	opts    Options
	session *scs.SessionManager
	history *RunHistory
	plotter viz.Plotter
	page    *template.Template
	logger  *ConsoleLogger
}

func NewDashboard(opts Options) *Dashboard {
	session := scs.New()
	session.Cookie.Name = "queuelab_session"
	return &Dashboard{
		opts:    opts,
		session: session,
		history: NewRunHistory(opts.HistorySize),
		plotter: viz.NewSVGPlotter(viz.DefaultPlotConfig()),
		page:    template.Must(template.New("page").Parse(pageTemplate)),
		logger:  consoleLogger,
	}
}

// Handler returns the routed dashboard with sessions and access logging.
func (d *Dashboard) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/", d.handleIndex).Methods(http.MethodGet)
	r.HandleFunc("/simulate", d.handleSimulate).Methods(http.MethodPost)
	r.HandleFunc("/download", d.handleDownload).Methods(http.MethodGet)
	r.HandleFunc("/download/{id}", d.handleDownloadRun).Methods(http.MethodGet)
	r.HandleFunc("/api/simulate", d.handleAPISimulate).Methods(http.MethodPost)
	r.HandleFunc("/api/runs", d.handleAPIRuns).Methods(http.MethodGet)
	r.HandleFunc("/healthz", d.handleHealth).Methods(http.MethodGet)
	return accessLog(d.logger, d.session.LoadAndSave(r))
}

// requestError is a failure caused by the upload itself.
type requestError struct {
	status int
	msg    string
}

func (e *requestError) Error() string { return e.msg }

func badRequest(format string, args ...any) error {
	return &requestError{status: http.StatusBadRequest, msg: fmt.Sprintf(format, args...)}
}

func statusOf(err error) int {
	var re *requestError
	if errors.As(err, &re) {
		return re.status
	}
	return http.StatusInternalServerError
}

// parseServers reads the server count; empty means the default.
func (d *Dashboard) parseServers(raw string) (int, error) {
	if raw == "" {
		return d.opts.DefaultServers, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > d.opts.MaxServers {
		return 0, badRequest("Número de servidores deve ser um inteiro entre 1 e %d", d.opts.MaxServers)
	}
	return n, nil
}

// simulation is the outcome of one upload.
type simulation struct {
	RunID    string
	FileName string
	Analysis *components.Analysis
}

func (d *Dashboard) simulate(r *http.Request) (*simulation, int, error) {
	servers := d.opts.DefaultServers
	if err := r.ParseMultipartForm(d.opts.MaxUploadBytes); err != nil {
		return nil, servers, badRequest("Envie o arquivo CSV em um formulário multipart: %v", err)
	}
	servers, err := d.parseServers(r.FormValue("servers"))
	if err != nil {
		return nil, d.opts.DefaultServers, err
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, servers, badRequest("Selecione um arquivo CSV")
	}
	defer file.Close()

	trace, err := loader.ReadTrace(file, d.opts.Columns)
	switch {
	case errors.Is(err, core.ErrMissingColumn):
		return nil, servers, badRequest("CSV deve conter colunas '%s' e '%s'", d.opts.Columns.Interarrival, d.opts.Columns.Service)
	case err != nil:
		return nil, servers, badRequest("CSV inválido: %v", err)
	}

	a, err := components.Analyze(trace, servers, d.opts.Samples)
	switch {
	case errors.Is(err, core.ErrInvalidInput), errors.Is(err, core.ErrInvalidParameter):
		return nil, servers, badRequest("Dados inválidos: %v", err)
	case err != nil:
		return nil, servers, err
	}

	var csv bytes.Buffer
	if err := a.Timeline.WriteCSV(&csv); err != nil {
		return nil, servers, err
	}
	sim := &simulation{RunID: uuid.NewString(), FileName: header.Filename, Analysis: a}
	d.session.Put(r.Context(), sessionTimelineKey, csv.Bytes())
	d.session.Put(r.Context(), sessionRunKey, sim.RunID)
	d.history.Add(RunSummary{
		ID:          sim.RunID,
		At:          time.Now(),
		File:        sim.FileName,
		Servers:     servers,
		Customers:   a.Timeline.Len(),
		Stable:      a.Stable(),
		Wq:          a.Empirical.Wq,
		W:           a.Empirical.W,
		Utilization: a.Empirical.Utilization,
	}, csv.Bytes())
	d.logger.Success("run %s: %d customers on %d servers from %s", sim.RunID, a.Timeline.Len(), servers, sim.FileName)
	return sim, servers, nil
}

func (d *Dashboard) handleIndex(w http.ResponseWriter, r *http.Request) {
	d.render(w, http.StatusOK, pageData{Servers: d.opts.DefaultServers, MaxServers: d.opts.MaxServers})
}

func (d *Dashboard) handleSimulate(w http.ResponseWriter, r *http.Request) {
	data := pageData{MaxServers: d.opts.MaxServers}
	sim, servers, err := d.simulate(r)
	data.Servers = servers
	if err != nil {
		d.logger.Failure("simulation rejected: %v", err)
		data.Error = err.Error()
		if statusOf(err) == http.StatusInternalServerError {
			data.Error = "Erro interno ao simular a fila"
		}
		d.render(w, statusOf(err), data)
		return
	}

	charts, err := viz.RenderQueueCharts(d.plotter, sim.Analysis)
	if err != nil {
		d.logger.Failure("rendering charts for run %s: %v", sim.RunID, err)
		data.Error = "Erro interno ao gerar os gráficos"
		d.render(w, http.StatusInternalServerError, data)
		return
	}
	data.Result = newResultView(sim, charts)
	d.render(w, http.StatusOK, data)
}

func (d *Dashboard) handleDownload(w http.ResponseWriter, r *http.Request) {
	data := d.session.GetBytes(r.Context(), sessionTimelineKey)
	if len(data) == 0 {
		http.Error(w, "nenhuma simulação nesta sessão", http.StatusNotFound)
		return
	}
	writeTimeline(w, d.session.GetString(r.Context(), sessionRunKey), data)
}

func (d *Dashboard) handleDownloadRun(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	data, ok := d.history.Timeline(id)
	if !ok {
		http.Error(w, "simulação não encontrada", http.StatusNotFound)
		return
	}
	writeTimeline(w, id, data)
}

func writeTimeline(w http.ResponseWriter, runID string, data []byte) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", DownloadName))
	if runID != "" {
		w.Header().Set("X-Run-ID", runID)
	}
	w.Write(data)
}

// apiResult is the JSON body of /api/simulate.
type apiResult struct {
	RunID    string               `json:"run_id"`
	File     string               `json:"file"`
	Analysis *components.Analysis `json:"analysis"`
}

func (d *Dashboard) handleAPISimulate(w http.ResponseWriter, r *http.Request) {
	sim, _, err := d.simulate(r)
	if err != nil {
		writeJSON(w, statusOf(err), map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, apiResult{RunID: sim.RunID, File: sim.FileName, Analysis: sim.Analysis})
}

// handleAPIRuns lists recent runs, newest first. ?limit=N caps the list.
func (d *Dashboard) handleAPIRuns(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit deve ser um inteiro não negativo"})
			return
		}
		limit = n
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": d.history.Recent(limit)})
}

func (d *Dashboard) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		Error("encoding response: %v", err)
	}
}

func (d *Dashboard) render(w http.ResponseWriter, status int, data pageData) {
	data.Recent = newRecentRuns(d.history.Recent(recentOnPage))
	var buf bytes.Buffer
	if err := d.page.Execute(&buf, data); err != nil {
		d.logger.Error("rendering page: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	io.Copy(w, &buf)
}
