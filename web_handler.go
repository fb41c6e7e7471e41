package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pivolan/readstats_dashboard/dashboard"
	"github.com/pivolan/readstats_dashboard/domain/models"
	"github.com/pivolan/readstats_dashboard/export"
	"github.com/pivolan/readstats_dashboard/plot"
)

const closedTimeLayout = "2006-01-02 15:04:05.000000"

type server struct {
	registry   *dashboard.Registry
	dataset    *models.Dataset
	colors     map[string]string
	closedFile string
	// mirrors receive a copy of every export, e.g. a telegram chat
	mirrors []export.Sink
	page    *template.Template
}

func newServer(ds *models.Dataset, t models.Thresholds, closedFile string, mirrors ...export.Sink) *server {
	colors := plot.ColorMap(ds.Samples)
	return &server{
		registry: dashboard.NewRegistry(ds, t, func() []dashboard.Binding {
			return newSessionView(colors).bindings()
		}),
		dataset:    ds,
		colors:     colors,
		closedFile: closedFile,
		mirrors:    mirrors,
		page:       template.Must(template.New("page").Parse(pageTemplate)),
	}
}

func (s *server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/charts", s.handleCharts)
	mux.HandleFunc("/plot.png", s.handlePlot)
	mux.HandleFunc("/view.json", s.handleViewJSON)
	mux.HandleFunc("/samples", s.postOnly(s.handleSamples))
	mux.HandleFunc("/select-all", s.postOnly(s.handleSelectAll))
	mux.HandleFunc("/deselect-all", s.postOnly(s.handleDeselectAll))
	mux.HandleFunc("/brush", s.postOnly(s.handleBrush))
	mux.HandleFunc("/thresholds", s.postOnly(s.handleThresholds))
	mux.HandleFunc("/export/plots", s.postOnly(s.handleExportPlots))
	mux.HandleFunc("/export/read-ids", s.postOnly(s.handleExportReadIDs))
	mux.HandleFunc("/close", s.postOnly(s.handleClose))
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func (s *server) postOnly(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h(w, r)
	}
}

// newSession creates a session; the registry binds its widgets before publishing it.
func (s *server) newSession() (*dashboard.Session, error) {
	sess, err := s.registry.Create()
	if err != nil {
		return nil, err
	}
	log.Printf("session %s created", sess.ID)
	return sess, nil
}

func (s *server) session(r *http.Request) (*dashboard.Session, *sessionView, bool) {
	sess, ok := s.registry.Get(r.FormValue("id"))
	if !ok {
		return nil, nil, false
	}
	v, ok := sessionViewOf(sess)
	return sess, v, ok
}

// redirect sends the browser back to the dashboard page of the session.
func (s *server) redirect(w http.ResponseWriter, r *http.Request, id, warning, notice string) {
	q := url.Values{"id": {id}}
	for _, key := range []string{"filter", "sort"} {
		if v := r.FormValue(key); v != "" {
			q.Set(key, v)
		}
	}
	if warning != "" {
		q.Set("warning", warning)
	}
	if notice != "" {
		q.Set("notice", notice)
	}
	http.Redirect(w, r, "/?"+q.Encode(), http.StatusSeeOther)
}

type sampleOption struct {
	Name     string
	Color    string
	Selected bool
}

type pageData struct {
	ID             string
	Generation     uint64
	Samples        []sampleOption
	Brush          *models.BrushRange
	Thresholds     models.Thresholds
	Facets         []models.BucketLabel
	UnbrushedCount int
	BrushedCount   int
	Warning        string
	Notice         string
	Filter         string
	Sort           string
	Summary        template.HTML
	Overview       template.HTML
	Detail         template.HTML
}

func (s *server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	sess, v, ok := s.session(r)
	if !ok {
		sess, err := s.newSession()
		if err != nil {
			http.Error(w, "Error creating session: "+err.Error(), http.StatusInternalServerError)
			return
		}
		http.Redirect(w, r, "/?id="+sess.ID, http.StatusSeeOther)
		return
	}

	views := sess.Views()
	data := pageData{
		ID:             sess.ID,
		Generation:     views.Generation,
		Brush:          brushOf(views.State),
		Thresholds:     views.State.Thresholds(),
		Facets:         views.Unbrushed.Facets(),
		UnbrushedCount: views.Unbrushed.Len(),
		BrushedCount:   views.Brushed.Len(),
		Warning:        r.FormValue("warning"),
		Notice:         r.FormValue("notice"),
		Filter:         r.FormValue("filter"),
		Sort:           r.FormValue("sort"),
		Summary:        template.HTML(RenderSummaryHTML(views.Unbrushed, views.State.SelectedSamples())),
		Detail:         template.HTML(v.detail.HTML(dashboard.TableQuery{})),
	}
	for _, name := range s.dataset.Samples {
		data.Samples = append(data.Samples, sampleOption{
			Name:     name,
			Color:    s.colors[name],
			Selected: views.State.IsSelected(name),
		})
	}

	q, err := dashboard.ParseTableQuery(data.Filter, data.Sort)
	if err != nil {
		data.Warning = err.Error()
		q = dashboard.TableQuery{}
	}
	data.Overview = template.HTML(v.overview.HTML(q))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.page.Execute(w, data); err != nil {
		log.Printf("render page: %v", err)
	}
}

func (s *server) handleCharts(w http.ResponseWriter, r *http.Request) {
	sess, _, ok := s.session(r)
	if !ok {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}
	views := sess.Views()
	err := plot.RenderPage(w, plot.ChartSet{
		Samples:   views.State.SelectedSamples(),
		Colors:    s.colors,
		Brush:     brushOf(views.State),
		Unbrushed: views.Unbrushed,
		Brushed:   views.Brushed,
	})
	if err != nil {
		http.Error(w, "Error rendering charts", http.StatusInternalServerError)
	}
}

func (s *server) handlePlot(w http.ResponseWriter, r *http.Request) {
	_, v, ok := s.session(r)
	if !ok {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}
	p, ok := v.plot(r.FormValue("name"))
	if !ok {
		http.Error(w, "unknown plot", http.StatusNotFound)
		return
	}
	png, err := p.PNG()
	if errors.Is(err, plot.ErrNothingToDraw) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		http.Error(w, "Error rendering plot: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}

type viewJSON struct {
	ID              string               `json:"id"`
	Generation      uint64               `json:"generation"`
	SelectedSamples []string             `json:"selected_samples"`
	Brush           *models.BrushRange   `json:"brush"`
	Thresholds      models.Thresholds    `json:"thresholds"`
	Facets          []models.BucketLabel `json:"facets"`
	Unbrushed       int                  `json:"unbrushed"`
	Brushed         int                  `json:"brushed"`
	BucketCounts    map[string]float64   `json:"bucket_counts"`
}

func (s *server) handleViewJSON(w http.ResponseWriter, r *http.Request) {
	sess, _, ok := s.session(r)
	if !ok {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}
	views := sess.Views()
	out := viewJSON{
		ID:              sess.ID,
		Generation:      views.Generation,
		SelectedSamples: views.State.SelectedSamples(),
		Brush:           brushOf(views.State),
		Thresholds:      views.State.Thresholds(),
		Facets:          views.Unbrushed.Facets(),
		Unbrushed:       views.Unbrushed.Len(),
		Brushed:         views.Brushed.Len(),
		BucketCounts:    map[string]float64{},
	}
	labels, counts := plot.BucketCounts(views.Unbrushed)
	for i, l := range labels {
		out.BucketCounts[l] = counts[i]
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(out)
}

// dispatch applies ev and redirects back. Rejections and dropped samples
// become a warning banner.
func (s *server) dispatch(w http.ResponseWriter, r *http.Request, ev dashboard.Event) {
	sess, _, ok := s.session(r)
	if !ok {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}
	res, err := sess.Dispatch(ev)
	var warning string
	switch {
	case errors.Is(err, dashboard.ErrSessionClosed):
		http.Error(w, err.Error(), http.StatusGone)
		return
	case errors.Is(err, models.ErrInvalidThresholds):
		warning = err.Error()
	case err != nil:
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if res.Warning() != nil {
		warning = res.Warning().Error()
	}
	s.redirect(w, r, sess.ID, warning, "")
}

func (s *server) handleSamples(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Error parsing form", http.StatusBadRequest)
		return
	}
	s.dispatch(w, r, dashboard.SetSampleSelection{Samples: r.Form["sample"]})
}

func (s *server) handleSelectAll(w http.ResponseWriter, r *http.Request) {
	s.dispatch(w, r, dashboard.SelectAll{})
}

func (s *server) handleDeselectAll(w http.ResponseWriter, r *http.Request) {
	s.dispatch(w, r, dashboard.DeselectAll{})
}

// handleBrush sets the zoom rectangle. All four bounds empty clears it.
func (s *server) handleBrush(w http.ResponseWriter, r *http.Request) {
	brush, err := parseBrush(r)
	if err != nil {
		s.redirect(w, r, r.FormValue("id"), err.Error(), "")
		return
	}
	s.dispatch(w, r, dashboard.SetBrushRange{Range: brush})
}

func parseBrush(r *http.Request) (*models.BrushRange, error) {
	keys := []string{"x_min", "x_max", "y_min", "y_max"}
	raw := make([]string, len(keys))
	empty := true
	for i, k := range keys {
		raw[i] = strings.TrimSpace(r.FormValue(k))
		if raw[i] != "" {
			empty = false
		}
	}
	if empty {
		return nil, nil
	}
	values := make([]float64, len(keys))
	for i, v := range raw {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid brush %s: %q", keys[i], v)
		}
		values[i] = f
	}
	return &models.BrushRange{XMin: values[0], XMax: values[1], YMin: values[2], YMax: values[3]}, nil
}

func (s *server) handleThresholds(w http.ResponseWriter, r *http.Request) {
	mid, err := strconv.Atoi(strings.TrimSpace(r.FormValue("mid")))
	if err != nil {
		s.redirect(w, r, r.FormValue("id"), "invalid mid threshold", "")
		return
	}
	long, err := strconv.Atoi(strings.TrimSpace(r.FormValue("long")))
	if err != nil {
		s.redirect(w, r, r.FormValue("id"), "invalid long threshold", "")
		return
	}
	s.dispatch(w, r, dashboard.SetThresholds{Thresholds: models.Thresholds{Mid: mid, Long: long}})
}

func (s *server) sink(primary export.Sink) export.Sink {
	if len(s.mirrors) == 0 {
		return primary
	}
	return export.Tee{Primary: primary, Mirrors: s.mirrors}
}

// exportWarning turns soft export failures into a banner message.
func exportWarning(err error) (string, bool) {
	switch {
	case errors.Is(err, export.ErrNothingToExport):
		return err.Error(), true
	case errors.Is(err, export.ErrDestinationUnavailable):
		return "export skipped: " + err.Error(), true
	case errors.Is(err, plot.ErrNothingToDraw):
		return "export skipped: " + err.Error(), true
	}
	return "", false
}

func (s *server) handleExportPlots(w http.ResponseWriter, r *http.Request) {
	sess, v, ok := s.session(r)
	if !ok {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}
	sink := s.sink(export.DirSink{Dir: strings.TrimSpace(r.FormValue("dir")), CreateDirs: true})
	var written []string
	// names and images come from the same generation
	err := sess.Do(func(views dashboard.Views) error {
		var err error
		written, err = export.ExportPlots(sink, views.State.SelectedSamples(), v.artifacts())
		return err
	})
	if errors.Is(err, dashboard.ErrSessionClosed) {
		http.Error(w, err.Error(), http.StatusGone)
		return
	}
	if err != nil {
		warning, soft := exportWarning(err)
		if !soft {
			http.Error(w, "Error exporting plots: "+err.Error(), http.StatusInternalServerError)
			return
		}
		s.redirect(w, r, sess.ID, warning, "")
		return
	}
	s.redirect(w, r, sess.ID, "", fmt.Sprintf("exported %s", strings.Join(written, ", ")))
}

func (s *server) handleExportReadIDs(w http.ResponseWriter, r *http.Request) {
	sess, v, ok := s.session(r)
	if !ok {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}
	q, err := dashboard.ParseTableQuery(r.FormValue("filter"), r.FormValue("sort"))
	if err != nil {
		s.redirect(w, r, sess.ID, err.Error(), "")
		return
	}
	rows := v.overview.Rows(q)
	ids := make([]string, len(rows))
	for i, row := range rows {
		ids[i] = row.ReadID
	}

	primary, name := export.FileSink(strings.TrimSpace(r.FormValue("path")))
	if err := export.ExportReadIDs(s.sink(primary), name, ids); err != nil {
		warning, soft := exportWarning(err)
		if !soft {
			http.Error(w, "Error exporting read ids: "+err.Error(), http.StatusInternalServerError)
			return
		}
		s.redirect(w, r, sess.ID, warning, "")
		return
	}
	s.redirect(w, r, sess.ID, "", fmt.Sprintf("exported %d read ids", len(ids)))
}

// handleClose tears the session down, then writes the closed sentinel file.
func (s *server) handleClose(w http.ResponseWriter, r *http.Request) {
	id := r.FormValue("id")
	if err := s.registry.Close(id); err != nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}
	if err := writeClosedFile(s.closedFile, time.Now()); err != nil {
		log.Printf("write %s: %v", s.closedFile, err)
	}
	log.Printf("session %s closed", id)
	fmt.Fprintf(w, "Dashboard closed")
}

func writeClosedFile(path string, at time.Time) error {
	if path == "" {
		return nil
	}
	return os.WriteFile(path, []byte("Dashboard was closed at: "+at.Format(closedTimeLayout)), 0644)
}
