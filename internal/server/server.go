package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/personalai/assistant/internal/config"
)

type Server struct {
	cfg  *config.Config
	http *http.Server
	db   *sql.DB // held for graceful close
}

func New(ctx context.Context, cfg *config.Config) (*Server, error) {
	deps, db, err := buildDeps(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("setup dependencies: %w", err)
	}

	s := &Server{cfg: cfg, db: db}
	s.http = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      NewRouter(cfg, deps),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.LLMTimeout*3 + cfg.QueryTimeout + 10*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s, nil
}

func (s *Server) Run(ctx context.Context) error {
	log.Info().Str("addr", s.http.Addr).Msg("listening")

	errCh := make(chan error, 1)
	go func() {
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("graceful shutdown initiated")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		err := s.http.Shutdown(shutdownCtx)
		s.close()
		return err
	case err := <-errCh:
		s.close()
		return err
	}
}

func (s *Server) close() {
	if s.db == nil {
		return
	}
	if err := s.db.Close(); err != nil {
		log.Warn().Err(err).Msg("error closing database")
	} else {
		log.Info().Msg("database closed")
	}
}
