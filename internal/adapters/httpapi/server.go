package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/mikey/lovescan/internal/adapters/vision"
	"github.com/mikey/lovescan/internal/config"
	"github.com/mikey/lovescan/internal/core"
	"github.com/mikey/lovescan/internal/ports"
	"go.uber.org/zap"
)

// Server is the HTTP frontend of the scan service
type Server struct {
	scanner ports.Scanner
	images  ports.ImageSearcher
	metrics http.Handler
	cfg     config.HTTPConfig
	logger  *zap.Logger
	srv     *http.Server
}

// NewServer creates a new HTTP frontend. images and metrics may be nil.
func NewServer(scanner ports.Scanner, images ports.ImageSearcher, metrics http.Handler, cfg config.HTTPConfig, logger *zap.Logger) *Server {
	return &Server{
		scanner: scanner,
		images:  images,
		metrics: metrics,
		cfg:     cfg,
		logger:  logger,
	}
}

// Name identifies the frontend
func (s *Server) Name() string {
	return "http"
}

// Routes builds the router
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	if s.cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(s.cfg.RequestTimeout))
	}
	if len(s.cfg.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.cfg.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
			MaxAge:         300,
		}))
	}

	r.Get("/healthz", s.health)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Route("/api/v1", func(api chi.Router) {
		api.Post("/scans", s.createScan)
	})

	return r
}

// Start listens on the configured address and serves in the background
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.cfg.ListenAddress)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.ListenAddress, err)
	}

	s.srv = &http.Server{
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Info("HTTP API starting", zap.String("address", ln.Addr().String()))

	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	return nil
}

// Stop gracefully shuts the server down
func (s *Server) Stop(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// createScan handles POST /api/v1/scans
func (s *Server) createScan(w http.ResponseWriter, r *http.Request) {
	if s.cfg.MaxBodyBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	}

	var req ScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.respondError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	items := req.Evidence()

	if matches, ok := s.imageMatches(r.Context(), req); ok {
		items = append(items, core.ImageMatchSet{Matches: matches})
	}

	report, err := s.scanner.Scan(r.Context(), items)
	if err != nil {
		s.logger.Warn("Scan failed", zap.Error(err))
		s.respondError(w, http.StatusServiceUnavailable, "scan could not be completed")
		return
	}

	s.respondJSON(w, http.StatusOK, report)
}

// imageMatches resolves image evidence given as a raw vision response or as
// an image URL. Failures leave the image source absent.
func (s *Server) imageMatches(ctx context.Context, req ScanRequest) ([]core.ImageMatch, bool) {
	if len(req.VisionResponse) > 0 && string(req.VisionResponse) != "null" {
		resp, err := vision.ParseResponse(req.VisionResponse)
		if err == nil {
			var matches []core.ImageMatch
			matches, err = vision.MatchesFromResponse(resp)
			if err == nil {
				return matches, true
			}
		}
		s.logger.Warn("Ignoring unusable vision response", zap.Error(err))
		return nil, false
	}

	if req.ImageURL == "" {
		return nil, false
	}
	if s.images == nil {
		s.logger.Debug("Image URL submitted but reverse image search is disabled")
		return nil, false
	}

	matches, err := s.images.SearchImage(ctx, req.ImageURL)
	if err != nil {
		s.logger.Warn("Reverse image search failed", zap.String("image_url", req.ImageURL), zap.Error(err))
		return nil, false
	}
	return matches, true
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("Failed to write response", zap.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
