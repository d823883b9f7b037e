package serve

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/crimson-sun/timeline/internal/metrics"
	"github.com/crimson-sun/timeline/internal/render"
)

const (
	defaultShutdownTimeout = 5 * time.Second
	readHeaderTimeout      = 5 * time.Second
)

var indexTmpl = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body style="margin:0;text-align:center">
<img src="/chart.svg" alt="{{.Title}}" style="max-width:100%">
<p><a href="/chart.png">png</a> · <a href="/chart.pdf">pdf</a> · <a href="/layout.json">layout</a></p>
</body>
</html>
`))

// Option configures a Server.
type Option func(*Server)

// WithMetrics counts requests and encoded charts, and exposes /metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithShutdownTimeout bounds graceful shutdown after ctx is cancelled.
// Default: 5s.
func WithShutdownTimeout(d time.Duration) Option {
	return func(s *Server) { s.shutdownTimeout = d }
}

// WithTitle sets the HTML page title.
func WithTitle(title string) Option {
	return func(s *Server) { s.title = title }
}

// Server is an Output that serves the latest chart over HTTP.
type Server struct {
	addr            string
	title           string
	metrics         *metrics.Metrics
	shutdownTimeout time.Duration
	router          *mux.Router

	mu    sync.RWMutex
	chart *render.Chart
	cache map[string][]byte
	bound string
}

// New creates a Server that will listen on addr once a chart is written.
func New(addr string, opts ...Option) *Server {
	s := &Server{
		addr:            addr,
		title:           "Timeline",
		shutdownTimeout: defaultShutdownTimeout,
		cache:           make(map[string][]byte),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.countRequests)
	r.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	r.HandleFunc("/chart.{format:png|jpg|tif|svg|pdf|eps}", s.handleChart).Methods(http.MethodGet)
	r.HandleFunc("/layout.json", s.handleLayout).Methods(http.MethodGet)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok"))
	}).Methods(http.MethodGet)
	if s.metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.metrics.Registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}
	return r
}

// Handler returns the HTTP handler, for embedding or tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// SetChart replaces the served chart and drops cached encodings.
func (s *Server) SetChart(chart *render.Chart) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chart = chart
	s.cache = make(map[string][]byte)
}

// Addr returns the address the server is bound to, or "" before it
// starts listening.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bound
}

// Write publishes the chart and serves it until ctx is cancelled.
func (s *Server) Write(ctx context.Context, chart *render.Chart) error {
	s.SetChart(chart)

	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("serve output: listen %s: %w", s.addr, err)
	}
	s.mu.Lock()
	s.bound = ln.Addr().String()
	s.mu.Unlock()

	srv := &http.Server{Handler: s.router, ReadHeaderTimeout: readHeaderTimeout}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	slog.Info("serving chart", "addr", "http://"+ln.Addr().String())

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("serve output: shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve output: %w", err)
	}
}

// Close is a no-op; the server stops when the Write context ends.
func (s *Server) Close() error {
	return nil
}

func (s *Server) current() *render.Chart {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.chart
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if s.current() == nil {
		http.Error(w, "no chart yet", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTmpl.Execute(w, struct{ Title string }{s.title}); err != nil {
		slog.Error("render index", "error", err)
	}
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	format := mux.Vars(r)["format"]
	data, err := s.encoded(format)
	if err != nil {
		slog.Error("encode chart", "format", format, "error", err)
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", render.ContentType(format))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Write(data)
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	chart := s.current()
	if chart == nil {
		http.Error(w, "no chart yet", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(chart.Layout); err != nil {
		slog.Error("encode layout", "error", err)
	}
}

// encoded returns the chart in format, encoding it at most once per chart.
func (s *Server) encoded(format string) ([]byte, error) {
	s.mu.RLock()
	chart, data := s.chart, s.cache[format]
	s.mu.RUnlock()
	if chart == nil {
		return nil, errors.New("no chart yet")
	}
	if data != nil {
		return data, nil
	}

	var buf bytes.Buffer
	if err := chart.Encode(&buf, format); err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.ChartsRendered.WithLabelValues(format).Inc()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.chart == chart {
		s.cache[format] = buf.Bytes()
	}
	return buf.Bytes(), nil
}

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(rec, r)
		if s.metrics == nil {
			return
		}
		route := "unknown"
		if cr := mux.CurrentRoute(r); cr != nil {
			if tmpl, err := cr.GetPathTemplate(); err == nil {
				route = tmpl
			}
		}
		s.metrics.HTTPRequests.WithLabelValues(route, strconv.Itoa(rec.code)).Inc()
	})
}
