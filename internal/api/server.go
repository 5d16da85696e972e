// Package api serves the import archive over HTTP and lets clients inspect
// a message without converting it.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"usmtf_importer/internal/convert"
	"usmtf_importer/internal/mtf"
	"usmtf_importer/internal/parser"
	"usmtf_importer/internal/storage"
)

// maxMessageBytes bounds the body accepted by the inspect endpoint.
const maxMessageBytes = 4 << 20

// Config holds configuration for the archive API server.
type Config struct {
	Addr    string   `yaml:"addr"`
	APIKeys []string `yaml:"api_keys"` // Empty disables authentication.
}

func DefaultConfig() Config {
	return Config{Addr: ":8081"}
}

func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Addr, validation.Required),
	)
}

// Server provides REST access to the import archive.
type Server struct {
	archive storage.Archive
	parser  *parser.Parser
	logger  *slog.Logger
	addr    string
	apiKeys map[string]bool
}

func NewServer(archive storage.Archive, p *parser.Parser, logger *slog.Logger, cfg Config) *Server {
	keys := make(map[string]bool)
	for _, k := range cfg.APIKeys {
		if k != "" {
			keys[k] = true
		}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{archive: archive, parser: p, logger: logger, addr: cfg.Addr, apiKeys: keys}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(s.logRequests)
	r.Mount("/api/v1", s.Router())

	srv := &http.Server{Addr: s.addr, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	s.logger.Info("archive API starting", slog.String("addr", s.addr), slog.Bool("auth", len(s.apiKeys) > 0))

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Router returns the API routes for embedding in other servers.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(corsMiddleware)

	// Health check (no auth required).
	r.Get("/health", s.handleHealth)

	r.Group(func(r chi.Router) {
		if len(s.apiKeys) > 0 {
			r.Use(s.authMiddleware)
		}
		r.Get("/imports", s.handleImports)
		r.Get("/imports/stats", s.handleStats)
		r.Post("/inspect", s.handleInspect)
	})
	return r
}

// corsMiddleware adds CORS headers for browser access.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, X-API-Key")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// authMiddleware validates API key authentication.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiKey := r.Header.Get("X-API-Key")
		if apiKey == "" {
			if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
				apiKey = strings.TrimPrefix(auth, "Bearer ")
			}
		}

		if apiKey == "" {
			writeError(w, http.StatusUnauthorized, "API key required")
			return
		}
		if !s.apiKeys[apiKey] {
			writeError(w, http.StatusForbidden, "Invalid API key")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("http request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Duration("took", time.Since(start)))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleImports(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	p := storage.QueryParams{
		MessageType: strings.ToUpper(q.Get("type")),
		Path:        q.Get("path"),
		InvalidOnly: q.Get("invalid") == "true",
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 1000 {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 1000")
			return
		}
		p.Limit = n
	}

	imps, err := s.archive.Query(r.Context(), p)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if imps == nil {
		imps = []storage.Import{}
	}
	writeJSON(w, http.StatusOK, imps)
}

// StatsResponse is the JSON response for archive statistics.
type StatsResponse struct {
	ByType    map[string]int    `json:"by_type"`
	TopIssues map[string]uint64 `json:"top_issues"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	top := 10
	if v := r.URL.Query().Get("top"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "top must be a positive integer")
			return
		}
		top = n
	}

	counts, err := s.archive.CountByType(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	issues, err := s.archive.TopIssues(r.Context(), top)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, StatsResponse{ByType: counts, TopIssues: issues})
}

// handleInspect parses the request body as a message and returns its
// report. Nothing is exported or archived.
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	msg, err := s.parser.Read(http.MaxBytesReader(w, r.Body, maxMessageBytes))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, mtf.ErrImport) {
			status = http.StatusUnprocessableEntity
		}
		writeError(w, status, err.Error())
		return
	}
	name := r.URL.Query().Get("name")
	writeJSON(w, http.StatusOK, convert.NewReport(name, msg))
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
