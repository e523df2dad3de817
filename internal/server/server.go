// Package server exposes simulation runs over HTTP and streams run progress over WebSocket.
package server

import (
	"context"
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"wager-lab/internal/domain"
	"wager-lab/internal/logger"
	"wager-lab/internal/observability"
	"wager-lab/internal/simulation"
	"wager-lab/internal/storage"
)

// API request limits.
const (
	// DefaultMaxSimulations caps num_simulations per request.
	DefaultMaxSimulations = 1_000_000

	// DefaultMaxDraws caps num_simulations * total_games, the games one request may play.
	DefaultMaxDraws int64 = 1_000_000_000
)

// Executor executes one simulation run. *simulation.Runner satisfies it.
type Executor interface {
	Run(ctx context.Context, req simulation.RunRequest) (*domain.SimulationRun, *domain.ResultSet, error)
}

// Options configures a Server.
type Options struct {
	Runner      Executor
	RunStore    storage.RunStore    // nil disables run history endpoints
	ResultStore storage.ResultStore // nil disables the results endpoint
	Logger      *zap.Logger

	// Defaults fill config fields a request leaves out.
	Defaults domain.GameConfig

	AllowedOrigins []string

	MaxSimulations int   // 0 uses DefaultMaxSimulations
	MaxDraws       int64 // 0 uses DefaultMaxDraws
	MaxWorkers     int   // 0 uses runtime.NumCPU()
}

// Server handles the HTTP API.
type Server struct {
	runner         Executor
	runStore       storage.RunStore
	resultStore    storage.ResultStore
	logger         *zap.Logger
	defaults       domain.GameConfig
	allowedOrigins []string
	maxSimulations int
	maxDraws       int64
	maxWorkers     int
	upgrader       websocket.Upgrader
}

// New creates a Server.
func New(opts Options) *Server {
	s := &Server{
		runner:         opts.Runner,
		runStore:       opts.RunStore,
		resultStore:    opts.ResultStore,
		logger:         logger.OrNop(opts.Logger),
		defaults:       opts.Defaults,
		allowedOrigins: opts.AllowedOrigins,
		maxSimulations: opts.MaxSimulations,
		maxDraws:       opts.MaxDraws,
		maxWorkers:     opts.MaxWorkers,
	}
	if s.defaults == (domain.GameConfig{}) {
		s.defaults = domain.DefaultGameConfig()
	}
	if len(s.allowedOrigins) == 0 {
		s.allowedOrigins = []string{"*"}
	}
	if s.maxSimulations <= 0 {
		s.maxSimulations = DefaultMaxSimulations
	}
	if s.maxDraws <= 0 {
		s.maxDraws = DefaultMaxDraws
	}
	if s.maxWorkers <= 0 {
		s.maxWorkers = runtime.NumCPU()
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     s.checkOrigin,
	}
	return s
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.instrument)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           60 * 15,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", observability.Handler())

	r.Route("/api/v1/simulations", func(rr chi.Router) {
		rr.Post("/", s.handleCreate)
		rr.Get("/", s.handleList)
		rr.Get("/{id}", s.handleGet)
		rr.Get("/{id}/results", s.handleResults)
	})

	r.Get("/ws/simulations", s.handleWS)

	return r
}

// ListenAndServe serves Routes on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		s.logger.Info("http server shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

// instrument records one counter per request, labelled by route pattern and status.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		observability.RecordHTTPRequest(route, strconv.Itoa(status))
	})
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range s.allowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}
