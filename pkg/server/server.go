// Package server exposes lipid name parsing over HTTP with Prometheus
// metrics.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ChrisMcGann/goslin/pkg/core"
	"github.com/ChrisMcGann/goslin/pkg/goslin"
	"github.com/ChrisMcGann/goslin/pkg/lipid"
	"github.com/ChrisMcGann/goslin/pkg/parser"
)

// maxRequestBodySize limits POST body sizes.
const maxRequestBodySize = 1 << 20

// maxBatch bounds the names of one POST request.
const maxBatch = 1000

// Parse outcomes used as metric labels.
const (
	outcomeOK         = "ok"
	outcomeUnparsable = "unparsable"
	outcomeInvalid    = "invalid"
)

// ParseRequest is the body of POST /api/parse.
type ParseRequest struct {
	Names []string `json:"names"`
	Level string   `json:"level,omitempty"`
}

// ParseResult is the outcome for one name.
type ParseResult struct {
	Input      string           `json:"input"`
	Annotation *core.Annotation `json:"annotation,omitempty"`
	Error      string           `json:"error,omitempty"`
}

// ParseResponse is returned by both parse endpoints.
type ParseResponse struct {
	RequestID string        `json:"request_id"`
	Results   []ParseResult `json:"results"`
}

// ClassInfo describes a lipid class for GET /api/classes.
type ClassInfo struct {
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	MaxFA       int      `json:"max_fa"`
	Formula     string   `json:"formula"`
	Synonyms    []string `json:"synonyms,omitempty"`
}

// Server handles parse requests. Parsers are pooled; the server is safe for
// concurrent use.
type Server struct {
	logger  *slog.Logger
	parsers sync.Pool
	opts    []goslin.Option

	registry *prometheus.Registry
	parses   *prometheus.CounterVec
	latency  prometheus.Histogram
}

// New creates a server whose parsers are built with opts.
func New(logger *slog.Logger, opts ...goslin.Option) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	// fail early on a broken grammar
	if _, err := goslin.New(opts...); err != nil {
		return nil, err
	}

	s := &Server{
		logger:   logger,
		opts:     opts,
		registry: prometheus.NewRegistry(),
		parses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "goslin",
			Name:      "parse_total",
			Help:      "Lipid names parsed, by outcome.",
		}, []string{"outcome"}),
		latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "goslin",
			Name:      "parse_duration_seconds",
			Help:      "Time to parse one lipid name.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 14),
		}),
	}
	s.registry.MustRegister(s.parses, s.latency)
	return s, nil
}

// RegisterHTTPHandlers registers the handlers on mux:
//
//	GET  /api/parse?name=...&level=...
//	POST /api/parse
//	GET  /api/classes
//	GET  /healthz
//	GET  <metricsPath>
func (s *Server) RegisterHTTPHandlers(mux *http.ServeMux, metricsPath string) {
	if metricsPath == "" {
		metricsPath = "/metrics"
	}
	mux.HandleFunc("/api/parse", s.withRequestID(s.handleParse))
	mux.HandleFunc("/api/classes", s.withRequestID(s.handleClasses))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.Handle(metricsPath, promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
}

type requestIDKey struct{}

func requestID(r *http.Request) string {
	id, _ := r.Context().Value(requestIDKey{}).(string)
	return id
}

// withRequestID stamps every request with an X-Request-ID, reusing the
// client's when it sent one.
func (s *Server) withRequestID(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	}
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	var req ParseRequest
	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		req.Names = q["name"]
		req.Level = q.Get("level")
	case http.MethodPost:
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if len(req.Names) == 0 {
		http.Error(w, "at least one name is required", http.StatusBadRequest)
		return
	}
	if len(req.Names) > maxBatch {
		http.Error(w, "too many names", http.StatusRequestEntityTooLarge)
		return
	}
	level := lipid.NoLevel
	if req.Level != "" {
		l, err := lipid.ParseLevel(req.Level)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		level = l
	}

	p, err := s.parser()
	if err != nil {
		http.Error(w, "Parser unavailable", http.StatusInternalServerError)
		return
	}
	defer s.parsers.Put(p)

	id := requestID(r)
	resp := ParseResponse{RequestID: id, Results: make([]ParseResult, 0, len(req.Names))}
	for _, name := range req.Names {
		res := s.parseOne(p, name, level)
		if res.Error != "" {
			s.logger.Debug("parse failed",
				slog.String("request_id", id),
				slog.String("name", name),
				slog.String("error", res.Error))
		}
		resp.Results = append(resp.Results, res)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) parseOne(p *goslin.Parser, name string, level lipid.Level) ParseResult {
	res := ParseResult{Input: name}
	start := time.Now()
	la, err := p.Parse(name)
	s.latency.Observe(time.Since(start).Seconds())
	if err == nil {
		res.Annotation, err = la.AnnotationAt(level)
	}

	var perr *parser.ParsingError
	switch {
	case err == nil:
		s.parses.WithLabelValues(outcomeOK).Inc()
	case errors.As(err, &perr):
		s.parses.WithLabelValues(outcomeUnparsable).Inc()
		res.Error = err.Error()
	default:
		s.parses.WithLabelValues(outcomeInvalid).Inc()
		res.Error = err.Error()
	}
	return res
}

func (s *Server) handleClasses(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	category := strings.TrimSpace(r.URL.Query().Get("category"))

	var classes []ClassInfo
	for _, c := range lipid.Classes().Classes() {
		if category != "" && !strings.EqualFold(category, c.Category.String()) {
			continue
		}
		classes = append(classes, ClassInfo{
			Name:        c.Name,
			Category:    c.Category.String(),
			Description: c.Description,
			MaxFA:       c.MaxFA,
			Formula:     c.Elements.SumFormula(),
			Synonyms:    c.Synonyms,
		})
	}
	writeJSON(w, http.StatusOK, classes)
}

func (s *Server) parser() (*goslin.Parser, error) {
	if p, ok := s.parsers.Get().(*goslin.Parser); ok {
		return p, nil
	}
	return goslin.New(s.opts...)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// headers are already sent, nothing useful to do on error
	_ = json.NewEncoder(w).Encode(v)
}
