// Package web serves the dashboard over HTTP.
package web

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/KaramelBytes/datadash/internal/dataset"
	"github.com/KaramelBytes/datadash/internal/view"
)

// Config holds configuration for the dashboard server.
type Config struct {
	Addr        string
	Loader      *dataset.Loader
	DefaultPath string
	// Watch starts a watcher that drops the cached default dataset when the
	// file changes on disk.
	Watch           bool
	SessionSecret   string
	MaxUploadMB     int
	View            view.Options
	Logger          *zap.Logger
	ShutdownTimeout time.Duration
}

// Server is the dashboard HTTP server.
type Server struct {
	cfg      Config
	loader   *dataset.Loader
	sessions *sessions.CookieStore
	logger   *zap.Logger
	pages    *pages
	router   chi.Router
}

// NewServer creates a server instance. An empty session secret is replaced
// by a random per-process secret, which invalidates sessions on restart.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Loader == nil {
		return nil, errors.New("web: loader is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.MaxUploadMB <= 0 {
		cfg.MaxUploadMB = 200
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 5 * time.Second
	}
	if cfg.DefaultPath == "" {
		cfg.DefaultPath = cfg.View.DefaultPath
	}
	if cfg.DefaultPath == "" {
		cfg.DefaultPath = view.DefaultOptions().DefaultPath
	}
	cfg.View.DefaultPath = cfg.DefaultPath
	secret := cfg.SessionSecret
	if secret == "" {
		cfg.Logger.Warn("session_secret not set, sessions will not survive a restart")
		secret = strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", "")
	}

	store := sessions.NewCookieStore([]byte(secret))
	store.MaxAge(86400 * 7)
	store.Options.Path = "/"
	store.Options.HttpOnly = true
	store.Options.SameSite = http.SameSiteLaxMode

	p, err := newPages()
	if err != nil {
		return nil, err
	}
	s := &Server{
		cfg:      cfg,
		loader:   cfg.Loader,
		sessions: store,
		logger:   cfg.Logger,
		pages:    p,
	}
	s.router = s.routes()
	return s, nil
}

// Handler returns the router.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewMux()
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		requestLogger(s.logger),
		middleware.Recoverer,
		middleware.Compress(5),
	)

	r.Get("/", s.handleHome)
	r.Get("/panel", s.handlePanel)
	r.Post("/upload", s.handleUpload)
	r.Post("/reset", s.handleReset)
	r.Get("/charts/{kind}", s.handleChart)
	r.Get("/report", s.handleReport)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	return r
}

// ListenAndServe listens on the configured address and serves until ctx is
// cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln and blocks until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.logger.Info("starting dashboard", zap.String("addr", "http://"+ln.Addr().String()))

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Handler: s.router,
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.cfg.Watch && s.cfg.DefaultPath != "" {
		w := dataset.NewWatcher(s.loader, s.cfg.DefaultPath, s.logger)
		eg.Go(func() error {
			if err := w.Run(egctx); err != nil {
				// The dashboard still works without invalidation.
				s.logger.Warn("default dataset watcher stopped", zap.Error(err))
			}
			return nil
		})
	}

	eg.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()

		s.logger.Debug("shutting down dashboard")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// requestLogger logs one line per request.
func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				logger.Info("request",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("duration", time.Since(start)),
					zap.String("request_id", middleware.GetReqID(r.Context())),
				)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
