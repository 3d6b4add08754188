// Package server wires together the liposerver HTTP API: routing, the
// execution-history repository, and the admin bearer-token auth model.
package server

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"

	"github.com/hnkNkm/Lipona/server/api"
	"github.com/hnkNkm/Lipona/server/dao"
)

// Server is a running liposerver instance.
type Server struct {
	cfg Config
	db  dao.ExecutionRepository
	mux *http.ServeMux
	srv *http.Server
}

// New connects to the configured persistence backend and assembles the
// router. Call ServeForever to start listening.
func New(cfg Config) (*Server, error) {
	cfg = cfg.FillDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	db, err := cfg.DB.Connect()
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	a := &api.API{
		Executions:        db,
		Secret:            cfg.TokenSecret,
		AdminKeyHash:      cfg.AdminKeyHash,
		UnauthDelay:       cfg.UnauthDelay(),
		MaxLoopIterations: cfg.Limits.MaxLoopIterations,
		MaxCallDepth:      cfg.Limits.MaxCallDepth,
	}

	mux := http.NewServeMux()
	mux.Handle(api.PathPrefix+"/", http.StripPrefix(api.PathPrefix, a.Routes()))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	log.Printf("INFO  db=%s max_loop_iterations=%d max_call_depth=%d unauth_delay=%s",
		cfg.DB.Type, cfg.Limits.MaxLoopIterations, cfg.Limits.MaxCallDepth, cfg.UnauthDelay())

	return &Server{
		cfg: cfg,
		db:  db,
		mux: mux,
	}, nil
}

// ServeForever blocks, listening on the configured address until the
// process is killed or Shutdown is called.
func (s *Server) ServeForever() error {
	s.srv = &http.Server{
		Addr:    s.cfg.ListenAddress,
		Handler: s.mux,
	}

	ln, err := net.Listen("tcp", s.cfg.ListenAddress)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.ListenAddress, err)
	}

	log.Printf("INFO  liposerver listening on %s", s.cfg.ListenAddress)
	if err := s.srv.Serve(ln); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server and closes the execution repository.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	if s.srv != nil {
		err = s.srv.Shutdown(ctx)
	}
	if closeErr := s.db.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	return err
}
