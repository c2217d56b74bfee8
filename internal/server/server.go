// Package server exposes the coverage engine over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/thinkwright/wardrobe-coverage/internal/analysis"
	"github.com/thinkwright/wardrobe-coverage/internal/cache"
)

// ServiceName is reported by the health endpoint and in logs.
const ServiceName = "wardrobe-coverage"

const maxBodyBytes = 10 << 20

// Catalog is the read side of a garment catalog.
type Catalog interface {
	ListGarments(ctx context.Context) ([]analysis.Garment, error)
	OptionUniverses(ctx context.Context) (analysis.OptionUniverses, error)
}

// Config holds server configuration.
type Config struct {
	RequestTimeout time.Duration
	CacheTTL       time.Duration
	// Options are enumerated universes from configuration. They fill any
	// dimension the request or catalog leaves empty.
	Options analysis.OptionUniverses
}

// DefaultConfig returns default configuration values.
func DefaultConfig() Config {
	return Config{
		RequestTimeout: 30 * time.Second,
		CacheTTL:       5 * time.Minute,
	}
}

// Server serves coverage reports.
type Server struct {
	logger  zerolog.Logger
	cache   cache.Client
	catalog Catalog
	cfg     Config
}

// New creates a server. cacheClient and catalog may be nil: without a cache
// every report is computed, without a catalog GET /api/v1/coverage returns 503.
func New(logger zerolog.Logger, cacheClient cache.Client, catalog Catalog, cfg Config) *Server {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	return &Server{
		logger:  logger,
		cache:   cacheClient,
		catalog: catalog,
		cfg:     cfg,
	}
}

// Router returns the HTTP handler with all routes configured.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(s.cfg.RequestTimeout))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy", "service": ServiceName})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/coverage", s.computeCoverage)
		r.Get("/coverage", s.catalogCoverage)
	})

	return r
}

type coverageRequest struct {
	Garments        any `json:"garments"`
	OptionUniverses any `json:"optionUniverses"`
}

func (s *Server) computeCoverage(w http.ResponseWriter, r *http.Request) {
	var req coverageRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "malformed JSON body")
		return
	}

	garments, err := analysis.ParseGarments(req.Garments)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", err.Error())
		return
	}
	universes := analysis.ParseOptionUniverses(req.OptionUniverses).Merge(s.cfg.Options)

	s.respondWithReport(w, r, garments, universes)
}

func (s *Server) catalogCoverage(w http.ResponseWriter, r *http.Request) {
	if s.catalog == nil {
		writeError(w, http.StatusServiceUnavailable, "catalog_unavailable", "no garment catalog is configured")
		return
	}

	ctx := r.Context()
	garments, err := s.catalog.ListGarments(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("list garments failed")
		writeError(w, http.StatusInternalServerError, "catalog_error", "could not read garment catalog")
		return
	}
	stored, err := s.catalog.OptionUniverses(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("load option universes failed")
		writeError(w, http.StatusInternalServerError, "catalog_error", "could not read enumerated options")
		return
	}

	s.respondWithReport(w, r, garments, s.cfg.Options.Merge(stored))
}

// respondWithReport serves a cached report when one exists for the inputs,
// otherwise computes, caches and serves it.
func (s *Server) respondWithReport(w http.ResponseWriter, r *http.Request, garments []analysis.Garment, universes analysis.OptionUniverses) {
	ctx := r.Context()

	var key string
	if s.cache != nil {
		k, err := cache.ReportKey(garments, universes)
		if err != nil {
			s.logger.Warn().Err(err).Msg("cache key failed")
		} else {
			key = k
			data, err := s.cache.Get(ctx, key)
			switch {
			case err == nil:
				w.Header().Set("X-Cache", "hit")
				writeRaw(w, http.StatusOK, data)
				return
			case !errors.Is(err, cache.ErrCacheMiss):
				s.logger.Warn().Err(err).Str("key", key).Msg("cache get failed")
			}
		}
	}

	report := analysis.ComputeCoverageReport(garments, universes)
	data, err := json.Marshal(report)
	if err != nil {
		s.logger.Error().Err(err).Msg("encode report failed")
		writeError(w, http.StatusInternalServerError, "internal", "could not encode report")
		return
	}

	if key != "" {
		if err := s.cache.Set(ctx, key, data, s.cfg.CacheTTL); err != nil {
			s.logger.Warn().Err(err).Str("key", key).Msg("cache set failed")
		}
	}

	s.logger.Debug().
		Int("garments", report.TotalGarments).
		Int("gaps", len(report.GapAlerts)).
		Msg("coverage computed")

	w.Header().Set("X-Cache", "miss")
	writeRaw(w, http.StatusOK, data)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeRaw(w http.ResponseWriter, status int, data []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	resp := map[string]string{"error": code}
	if detail != "" {
		resp["detail"] = detail
	}
	writeJSON(w, status, resp)
}
