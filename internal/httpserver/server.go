package httpserver

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/pprof"
	"sync/atomic"
	"time"

	"github.com/CAFxX/httpcompression"
	"github.com/goccy/go-json"
	sentryhttp "github.com/getsentry/sentry-go/http"

	"github.com/SurajBakawat-Ra/profiler-visualizer/internal/config"
	"github.com/SurajBakawat-Ra/profiler-visualizer/internal/session"
	"github.com/SurajBakawat-Ra/profiler-visualizer/internal/telemetry"
	"github.com/SurajBakawat-Ra/profiler-visualizer/internal/version"
)

const (
	readHeaderTimeout = 5 * time.Second
	wsSendQueueSize   = 16
)

// Server wraps the HTTP surface area of the application.
type Server struct {
	cfg        config.Config
	logger     *slog.Logger
	httpServer *http.Server
	store      *session.Store
	gpuNamer   telemetry.GPUNamer

	documentsLoaded   atomic.Uint64
	documentsRejected atomic.Uint64
	framesLoaded      atomic.Uint64
	chartsRendered    atomic.Uint64
	imagesRendered    atomic.Uint64

	maxWSClients int64
	wsActive     atomic.Int64
	wsTotal      atomic.Uint64
	wsRejected   atomic.Uint64
	wsSent       atomic.Uint64
	wsDropped    atomic.Uint64
	wsConnIDs    atomic.Uint64
	requestIDs   atomic.Uint64
}

// New assembles a Server with its handlers. gpuNamer may be nil.
func New(cfg config.Config, logger *slog.Logger, store *session.Store, gpuNamer telemetry.GPUNamer) *Server {
	s := &Server{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		gpuNamer: gpuNamer,
	}

	if cfg.WS.MaxClients > 0 {
		s.maxWSClients = int64(cfg.WS.MaxClients)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/api/healthz", s.handleHealthz)
	mux.HandleFunc("/readyz", s.handleReadyz)
	mux.HandleFunc("/api/readyz", s.handleReadyz)
	mux.HandleFunc("/version", s.handleVersion)
	mux.HandleFunc("/api/version", s.handleVersion)
	mux.HandleFunc("/api", s.handleAPIDocs)
	mux.HandleFunc("/api/", s.handleAPIDocs)
	mux.HandleFunc("/api/groups", s.handleAPIGroups)
	mux.HandleFunc("/api/documents", s.handleAPIDocuments)
	mux.HandleFunc("/api/documents/", s.handleAPIDocumentSubresource)
	mux.Handle("/", s.staticHandler())

	if cfg.EnablePrometheus {
		s.registerPrometheus(mux)
	}
	if cfg.EnablePprof {
		registerPprof(mux)
	}

	var api http.Handler = mux
	if compress, err := httpcompression.DefaultAdapter(); err != nil {
		logger.Warn("response compression disabled", "err", err)
	} else {
		api = compress(mux)
	}

	// Websocket upgrades bypass compression, which cannot hijack connections.
	root := http.NewServeMux()
	root.HandleFunc("/ws", s.handleWS)
	root.Handle("/", withDecompression(api))

	var handler http.Handler = root
	if cfg.SentryDSN != "" {
		handler = sentryhttp.New(sentryhttp.Options{Repanic: true}).Handle(handler)
	}
	handler = s.withRequestLogging(handler)

	s.httpServer = &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	return s
}

// Handler exposes the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start begins serving HTTP until shutdown is requested.
func (s *Server) Start() error {
	s.logger.Info("listening", "addr", s.httpServer.Addr)
	err := s.httpServer.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.logger.Info("listener stopped")
	return nil
}

// Shutdown attempts a graceful shutdown within the supplied context.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	info := s.readiness()
	statusCode := http.StatusOK
	if info.Status != "ok" {
		statusCode = http.StatusServiceUnavailable
	}
	s.writeJSON(w, r, statusCode, info)
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.writeJSON(w, r, http.StatusOK, version.Current())
}

func (s *Server) handleAPIDocs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if r.URL.Path != "/api" && r.URL.Path != "/api/" {
		http.NotFound(w, r)
		return
	}

	logger := s.loggerFromContext(r.Context())
	data, err := embeddedAssets.ReadFile("assets/api.html")
	if err != nil {
		logger.Error("failed to read api docs asset", "err", err)
		http.Error(w, "missing api docs", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write(data); err != nil {
		logger.Warn("failed to write api docs response", "err", err)
	}
}

func (s *Server) handleAPIGroups(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.writeJSON(w, r, http.StatusOK, groupsResponse{
		Groups: telemetry.Groups(),
		Charts: telemetry.ChartIDs(),
	})
}

type groupsResponse struct {
	Groups []telemetry.GroupInfo `json:"groups"`
	Charts []string              `json:"charts"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		s.loggerFromContext(r.Context()).Error("failed to encode response", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(append(data, '\n')); err != nil {
		s.loggerFromContext(r.Context()).Warn("failed to write response", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	logger := s.loggerFromContext(r.Context())
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "status", status, "err", err)
		captureException(r.Context(), err)
	} else {
		logger.Debug("request rejected", "status", status, "err", err)
	}
	s.writeJSON(w, r, status, errorResponse{Error: err.Error()})
}

func registerPprof(mux *http.ServeMux) {
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
}

func originPatterns(origins []string) []string {
	for _, origin := range origins {
		if origin == "*" {
			return nil
		}
	}
	dst := make([]string, len(origins))
	copy(dst, origins)
	return dst
}

func (s *Server) readiness() readyResponse {
	if s.store == nil {
		return readyResponse{Status: "degraded", Reason: "session_store_not_configured"}
	}
	return readyResponse{Status: "ok", Sessions: s.store.Len()}
}

type readyResponse struct {
	Status   string `json:"status"`
	Sessions int    `json:"sessions"`
	Reason   string `json:"reason,omitempty"`
}
