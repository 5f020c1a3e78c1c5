// Copyright 2025 SirSeer, LLC
//
// Licensed under the Business Source License 1.1 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://mariadb.com/bsl11
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package server exposes list views and repository mutations over HTTP. It
// is a thin presentation adapter: every request is translated into an intent
// on a session-owned list controller, and the response is the controller's
// view model.
package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/sirseerhq/sirseer-lens/internal/session"
)

// Options configures a Server.
type Options struct {
	Logger zerolog.Logger

	// AllowedOrigins lists the browser origins allowed by CORS. Empty
	// disables the CORS middleware.
	AllowedOrigins []string

	// Gatherer backs /metrics. Nil omits the route.
	Gatherer prometheus.Gatherer

	// PageSizeFor returns the page size of a repository's pull request
	// view. Nil uses the session default.
	PageSizeFor func(owner, name string) int
}

// Server holds the views opened by HTTP clients.
type Server struct {
	session *session.Session
	opts    Options
	log     zerolog.Logger

	mu    sync.RWMutex
	views map[string]view
}

// New creates a server over sess.
func New(sess *session.Session, opts Options) *Server {
	return &Server{
		session: sess,
		opts:    opts,
		log:     opts.Logger.With().Str("component", "server").Logger(),
		views:   make(map[string]view),
	}
}

// Router builds the gin engine serving the API.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(s.requestLogger())

	if len(s.opts.AllowedOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins: s.opts.AllowedOrigins,
			AllowMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
			MaxAge:       12 * time.Hour,
		}))
	}

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", s.health)

		views := v1.Group("/views")
		views.POST("/repositories", s.openRepositories)
		views.POST("/pulls", s.openPullRequests)
		views.GET("/:id", s.getView)
		views.POST("/:id/filter", s.setFilter)
		views.POST("/:id/sort", s.setSort)
		views.POST("/:id/more", s.loadMore)
		views.POST("/:id/retry", s.retry)
		views.DELETE("/:id", s.closeView)

		repos := v1.Group("/repositories")
		repos.POST("", s.createRepository)
		repos.PATCH("/:id", s.updateRepository)
		repos.DELETE("/:id", s.deleteRepository)
	}

	if s.opts.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.opts.Gatherer, promhttp.HandlerOpts{})))
	}

	return router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully and
// releases every open view.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.closeAll()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.closeAll()
	return err
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Msg("request")
	}
}

func (s *Server) closeAll() {
	s.mu.Lock()
	views := s.views
	s.views = make(map[string]view)
	s.mu.Unlock()

	for _, v := range views {
		v.release()
	}
}
