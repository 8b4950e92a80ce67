// Package api provides HTTP handlers and the main API server logic for
// SchemeBot.
//
// It exposes RESTful endpoints for conversation sessions, scheme
// recommendations, and catalog lookups. The API integrates with the flow,
// recommend, and genai modules.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/schemebot/schemebot/internal/flow"
	"github.com/schemebot/schemebot/internal/genai"
	"github.com/schemebot/schemebot/internal/i18n"
	"github.com/schemebot/schemebot/internal/recommend"
)

// Server defaults.
const (
	DefaultAddr            = ":8080"
	DefaultSessionTimeout  = 10 * time.Minute
	DefaultLanguage        = i18n.LanguageEnglish
	defaultShutdownTimeout = 5 * time.Second
)

// Opts holds configuration for the API server.
type Opts struct {
	// Addr is the listen address.
	Addr string
	// DefaultLanguage is used when a request specifies none.
	DefaultLanguage string
	// SessionTimeout is the inactivity window before a session expires.
	SessionTimeout time.Duration
	// FlowOpts are passed through to every session's dialogue flow.
	FlowOpts []flow.Option
}

// Option configures API server construction.
type Option func(*Opts)

// WithAddr sets the listen address.
func WithAddr(addr string) Option {
	return func(o *Opts) { o.Addr = addr }
}

// WithDefaultLanguage sets the fallback conversation language.
func WithDefaultLanguage(language string) Option {
	return func(o *Opts) { o.DefaultLanguage = language }
}

// WithSessionTimeout sets the session inactivity timeout.
func WithSessionTimeout(timeout time.Duration) Option {
	return func(o *Opts) { o.SessionTimeout = timeout }
}

// WithFlowOptions sets options applied to each new session flow.
func WithFlowOptions(opts ...flow.Option) Option {
	return func(o *Opts) { o.FlowOpts = append(o.FlowOpts, opts...) }
}

// Server is the SchemeBot HTTP API.
type Server struct {
	addr            string
	defaultLanguage string
	sessions        *SessionRegistry
	rec             *recommend.Service
}

// NewServer creates an API server over the given capability client and
// recommendation service.
func NewServer(client genai.ClientInterface, rec *recommend.Service, opts ...Option) *Server {
	cfg := Opts{
		Addr:            DefaultAddr,
		DefaultLanguage: DefaultLanguage,
		SessionTimeout:  DefaultSessionTimeout,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	newFlow := func() *flow.Flow {
		return flow.NewFlow(client, rec, cfg.FlowOpts...)
	}

	return &Server{
		addr:            cfg.Addr,
		defaultLanguage: cfg.DefaultLanguage,
		sessions:        NewSessionRegistry(newFlow, cfg.SessionTimeout),
		rec:             rec,
	}
}

// routes builds the request multiplexer.
func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /sessions", s.createSessionHandler)
	mux.HandleFunc("POST /sessions/{id}/messages", s.postMessageHandler)
	mux.HandleFunc("GET /sessions/{id}/recommendations", s.recommendationsHandler)
	mux.HandleFunc("GET /sessions/{id}/profile", s.profileHandler)
	mux.HandleFunc("POST /sessions/{id}/reset", s.resetSessionHandler)
	mux.HandleFunc("GET /schemes/{id}", s.schemeHandler)
	mux.HandleFunc("GET /health", s.healthHandler)
	return mux
}

// Run starts the HTTP server and blocks until the context is canceled or
// the listener fails.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.addr,
		Handler: s.routes(),
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server.Run: SchemeBot API listening", "addr", s.addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("Server.Run: shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down server: %w", err)
		}
		return nil
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	}
}
