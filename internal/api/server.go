// Package api serves matchup analytics over HTTP: JSON views of the
// flight model and aggregators, go-echarts pages and gonum/plot images.
package api

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/banshee-data/pitch.report/internal/config"
	"github.com/banshee-data/pitch.report/internal/httputil"
	"github.com/banshee-data/pitch.report/internal/ingest"
	"github.com/banshee-data/pitch.report/internal/pitch"
	"github.com/banshee-data/pitch.report/internal/store"
	"github.com/banshee-data/pitch.report/internal/version"
)

// ANSI escape codes for cyan and reset
const colorCyan = "\033[36m"
const colorReset = "\033[0m"
const colorYellow = "\033[33m"
const colorBoldGreen = "\033[1;32m"
const colorBoldRed = "\033[1;31m"

// MaxUploadBytes bounds a CSV upload.
const MaxUploadBytes = 32 << 20

// MaxIntervals bounds the trajectory sampling a client may request.
const MaxIntervals = 2000

type Server struct {
	db        *store.DB
	cfg       *config.AnalyticsConfig
	cache     *viewCache
	maxUpload int64
}

// NewServer builds a server over db. A nil cfg uses the compiled-in
// defaults.
func NewServer(db *store.DB, cfg *config.AnalyticsConfig) (*Server, error) {
	if cfg == nil {
		cfg = config.DefaultAnalyticsConfig()
	}
	cache, err := newViewCache(cfg.GetCacheEntries())
	if err != nil {
		return nil, err
	}
	return &Server{db: db, cfg: cfg, cache: cache, maxUpload: MaxUploadBytes}, nil
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Flush() {
	if flusher, ok := lrw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func statusCodeColor(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return colorBoldGreen + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 300 && statusCode < 400:
		return colorYellow + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 400:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	default:
		return strconv.Itoa(statusCode)
	}
}

// LoggingMiddleware logs method, path, query, status, and duration
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{w, http.StatusOK}
		next.ServeHTTP(lrw, r)
		log.Printf(
			"[%s] %s %s%s%s %vms",
			statusCodeColor(lrw.statusCode), r.Method,
			colorCyan, r.RequestURI, colorReset,
			float64(time.Since(start).Nanoseconds())/1e6,
		)
	})
}

func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/config", s.showConfig)
	mux.HandleFunc("/api/matchups", s.handleMatchups)
	mux.HandleFunc("/api/pitches", s.listPitches)
	mux.HandleFunc("/api/trajectories", s.showTrajectories)
	mux.HandleFunc("/api/heatmap", s.showHeatmap)
	mux.HandleFunc("/api/velocity", s.showVelocity)
	mux.HandleFunc("/api/movement", s.showMovement)
	mux.HandleFunc("/api/arsenal", s.showArsenal)
	mux.HandleFunc("/charts/velocity", s.velocityChart)
	mux.HandleFunc("/charts/heatmap", s.heatmapChart)
	mux.HandleFunc("/charts/movement", s.movementChart)
	mux.HandleFunc("/plots/heatmap.png", s.heatmapPlot)
	mux.HandleFunc("/plots/trajectory.png", s.trajectoryPlot)
	return mux
}

// ListenAndServe serves the API, the admin routes and request logging on
// addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	mux := s.ServeMux()
	if err := s.db.AttachAdminRoutes(mux); err != nil {
		return err
	}

	server := &http.Server{
		Addr:              addr,
		Handler:           LoggingMiddleware(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Printf("listening on %s", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}
	log.Println("shutting down HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
		if err := server.Close(); err != nil {
			log.Printf("HTTP server force close error: %v", err)
		}
	}
	return nil
}

func (s *Server) showConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	httputil.WriteJSONOK(w, map[string]interface{}{
		"version":              version.String(),
		"cell_size":            s.cfg.GetCellSize(),
		"lateral_shift":        s.cfg.GetLateralShift(),
		"vertical_shift":       s.cfg.GetVerticalShift(),
		"trajectory_intervals": s.cfg.GetTrajectoryIntervals(),
		"speed_units":          s.cfg.GetSpeedUnits(),
	})
}

// writeError maps domain errors onto HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	var (
		tooLarge  *http.MaxBytesError
		malformed *csv.ParseError
	)
	switch {
	case errors.Is(err, store.ErrMatchupNotFound):
		httputil.NotFound(w, err.Error())
	case errors.As(err, &tooLarge):
		httputil.WriteJSONError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("upload exceeds %d bytes", tooLarge.Limit))
	case errors.Is(err, pitch.ErrInvalidArgument), errors.Is(err, ingest.ErrMissingColumn), errors.As(err, &malformed):
		httputil.BadRequest(w, err.Error())
	default:
		log.Printf("api: %v", err)
		httputil.InternalServerError(w, err.Error())
	}
}

func invalid(format string, v ...interface{}) error {
	return fmt.Errorf("%w: %s", pitch.ErrInvalidArgument, fmt.Sprintf(format, v...))
}
