// Package api is the HTTP surface of the aggregator: the news feed for the dashboard
// and the posting trigger for an external scheduler.
package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/kovalyov-valentin/cryptoflow/internal/cache"
	"github.com/kovalyov-valentin/cryptoflow/internal/model"
	"github.com/kovalyov-valentin/cryptoflow/internal/notifier"
	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

type Aggregator interface {
	FetchAll(ctx context.Context, sourceIDs []string, useCache bool) ([]model.Article, error)
}

type CacheStats interface {
	Stats() []cache.SourceStats
}

type SourceLister interface {
	All() []model.Source
}

type Publisher interface {
	Post(ctx context.Context, language string) (notifier.Result, error)
	Schedule(ctx context.Context, articleID string, at time.Time) (model.ScheduledPost, error)
	Scheduled(ctx context.Context) ([]model.ScheduledPost, error)
}

type Config struct {
	Addr string
	// Лимит на POST ручки, которые ходят в соцсеть
	PostRate  rate.Limit
	PostBurst int
	// Ошибка конфигурации соцсети, найденная при старте
	CredentialsErr error
}

type Server struct {
	echo *echo.Echo
	addr string

	articles  Aggregator
	cache     CacheStats
	sources   SourceLister
	publisher Publisher

	credentialsErr error
}

func New(articles Aggregator, stats CacheStats, sources SourceLister, publisher Publisher, cfg Config) *Server {
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.PostRate == 0 {
		cfg.PostRate = rate.Every(time.Second)
	}
	if cfg.PostBurst <= 0 {
		cfg.PostBurst = 1
	}

	s := &Server{
		echo:           echo.New(),
		addr:           cfg.Addr,
		articles:       articles,
		cache:          stats,
		sources:        sources,
		publisher:      publisher,
		credentialsErr: cfg.CredentialsErr,
	}

	s.echo.HideBanner = true
	s.echo.HidePort = true

	s.routes(rate.NewLimiter(cfg.PostRate, cfg.PostBurst))

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

// Start поднимает сервер и гасит его, когда отменяется контекст
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		log.Printf("[INFO] http server listening on %s", s.addr)

		if err := s.echo.Start(s.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return err
	}

	return ctx.Err()
}
