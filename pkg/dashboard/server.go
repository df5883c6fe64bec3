// Package dashboard serves the live chart page, its JSON API and the
// websocket stream of figure updates.
package dashboard

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"lumitemp/pkg/logger"
	"lumitemp/pkg/metrics"
	"lumitemp/pkg/render"
	"lumitemp/pkg/storage"
)

const (
	DefaultAddr     = "0.0.0.0:8050"
	shutdownTimeout = 10 * time.Second
	plotlyURL       = "https://cdn.plot.ly/plotly-2.35.2.min.js"
)

//go:embed templates/index.html
var indexTemplate string

type Config struct {
	Addr   string
	Labels render.Labels
}

type Server struct {
	acc    storage.Accumulator
	labels render.Labels
	addr   string
	log    *logrus.Entry

	hub    *Hub
	router *mux.Router
	page   []byte
}

func NewServer(cfg Config, acc storage.Accumulator, log *logrus.Entry) (*Server, error) {
	if acc == nil {
		return nil, errors.New("dashboard needs an accumulator")
	}
	if log == nil {
		log = logger.NewDefault("dashboard")
	}
	addr := cfg.Addr
	if addr == "" {
		addr = DefaultAddr
	}
	labels := cfg.Labels
	if labels.Names == nil {
		labels = render.LabelsFor("en")
	}

	page, err := renderPage(labels)
	if err != nil {
		return nil, err
	}

	s := &Server{
		acc:    acc,
		labels: labels,
		addr:   addr,
		log:    log,
		hub:    NewHub(log),
		page:   page,
	}
	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(metrics.InstrumentHandler)

	r.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	r.HandleFunc("/api/snapshot", s.handleSnapshot).Methods(http.MethodGet)
	r.HandleFunc("/api/figure", s.handleFigure).Methods(http.MethodGet)
	r.HandleFunc("/ws", s.handleWS).Methods(http.MethodGet)
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	return r
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Figure renders the current accumulator state, or the placeholder when
// nothing has been collected yet.
func (s *Server) Figure() render.Figure {
	snap, err := s.acc.Snapshot()
	if err != nil {
		if !errors.Is(err, storage.ErrNoData) {
			s.log.WithError(err).Warn("snapshot failed")
		}
		return render.Placeholder()
	}
	return render.Build(snap, s.labels)
}

// Refresh pushes the current figure to every websocket client.
func (s *Server) Refresh() {
	data, err := json.Marshal(s.Figure())
	if err != nil {
		s.log.WithError(err).Error("failed to encode figure")
		return
	}
	s.hub.Broadcast(data)
}

// Run serves until ctx is cancelled, then shuts down gracefully. A failure
// to listen is returned immediately.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.addr, err)
	}

	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", ln.Addr().String()).Info("dashboard listening")
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.hub.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("dashboard shutdown: %w", err)
	}
	s.log.Info("dashboard stopped")
	return nil
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(s.page)
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := s.acc.Snapshot()
	if errors.Is(err, storage.ErrNoData) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleFigure(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Figure())
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	initial, err := json.Marshal(s.Figure())
	if err != nil {
		s.log.WithError(err).Error("failed to encode figure")
	}
	s.hub.ServeWS(w, r, initial)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeJSON encodes v before touching the response so an encoding failure
// can still be reported as a 500.
func writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		http.Error(w, fmt.Sprintf("encode response: %v", err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

type pageData struct {
	Heading   string
	Title     string
	PlotlyURL string
}

func renderPage(labels render.Labels) ([]byte, error) {
	tpl, err := template.New("index").Parse(indexTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse index template: %w", err)
	}
	var buf bytes.Buffer
	err = tpl.Execute(&buf, pageData{
		Heading:   "LumiTemp Data Viewer",
		Title:     labels.Title,
		PlotlyURL: plotlyURL,
	})
	if err != nil {
		return nil, fmt.Errorf("render index template: %w", err)
	}
	return buf.Bytes(), nil
}
