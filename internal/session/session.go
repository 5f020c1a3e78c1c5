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

// Package session is the application context: it owns the shared fetch
// cache, the GitHub client, the mutation coordinator and the statistics
// tracker, builds list controllers wired to all of them and disposes them on
// Close. Nothing in the application is global; every entry point constructs
// a Session and passes it down.
package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/sirseerhq/sirseer-lens/internal/cache"
	"github.com/sirseerhq/sirseer-lens/internal/github"
	"github.com/sirseerhq/sirseer-lens/internal/listview"
	"github.com/sirseerhq/sirseer-lens/internal/metadata"
	"github.com/sirseerhq/sirseer-lens/internal/mutation"
	"github.com/sirseerhq/sirseer-lens/internal/query"
	"github.com/sirseerhq/sirseer-lens/internal/sources"
)

// Options configures a Session.
type Options struct {
	Logger zerolog.Logger

	// Tracker defaults to metadata.New().
	Tracker *metadata.Tracker

	// Page sizes; zero selects the defaults of package sources.
	RepositoryPageSize  int
	PullRequestPageSize int
}

// Session owns the collaborators shared by every view.
type Session struct {
	cache   *cache.Cache
	client  github.Client
	coord   *mutation.Coordinator
	tracker *metadata.Tracker
	log     zerolog.Logger
	opts    Options

	mu     sync.Mutex
	views  map[any]func()
	closed bool
}

// disposer is implemented by every listview.Controller.
type disposer interface {
	Dispose()
}

// New creates a session over client.
func New(client github.Client, opts Options) *Session {
	if opts.Tracker == nil {
		opts.Tracker = metadata.New()
	}
	c := cache.New()
	return &Session{
		cache:  c,
		client: client,
		coord: mutation.NewCoordinator(c, client, mutation.Options{
			Logger:   opts.Logger,
			Recorder: opts.Tracker,
		}),
		tracker: opts.Tracker,
		log:     opts.Logger,
		opts:    opts,
		views:   make(map[any]func()),
	}
}

// Cache returns the shared fetch cache.
func (s *Session) Cache() *cache.Cache { return s.cache }

// Tracker returns the session statistics.
func (s *Session) Tracker() *metadata.Tracker { return s.tracker }

// Logger returns the session logger.
func (s *Session) Logger() zerolog.Logger { return s.log }

// RepositoryList creates a controller over the viewer's repositories.
func (s *Session) RepositoryList(opts ...ViewOption) (*listview.Controller[github.Repository], error) {
	cfg := s.viewConfig(s.opts.RepositoryPageSize, opts)
	return newView[github.Repository](s, sources.NewRepositories(s.client),
		cfg.apply(sources.RepositoriesQuery(cfg.pageSize)), cfg.opts)
}

// PullRequestList creates a controller over the open pull requests of owner/name.
func (s *Session) PullRequestList(owner, name string, opts ...ViewOption) (*listview.Controller[github.PullRequest], error) {
	cfg := s.viewConfig(s.opts.PullRequestPageSize, opts)
	cfg.opts.Normalize = sources.Normalize
	return newView[github.PullRequest](s, sources.NewPullRequests(s.client),
		cfg.apply(sources.PullRequestsQuery(owner, name, cfg.pageSize)), cfg.opts)
}

type viewConfig struct {
	opts     listview.Options
	pageSize int
	adjust   []func(query.Descriptor) query.Descriptor
}

func (c viewConfig) apply(d query.Descriptor) query.Descriptor {
	for _, fn := range c.adjust {
		d = fn(d)
	}
	return d
}

// ViewOption customizes a controller built by the session.
type ViewOption func(*viewConfig)

// WithOnChange sets the controller change callback.
func WithOnChange(fn func()) ViewOption {
	return func(c *viewConfig) { c.opts.OnChange = fn }
}

// WithPageSize overrides the session page size for one view.
func WithPageSize(n int) ViewOption {
	return func(c *viewConfig) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// WithSort replaces the default sort of a view.
func WithSort(sort query.Sort) ViewOption {
	return func(c *viewConfig) {
		c.adjust = append(c.adjust, func(d query.Descriptor) query.Descriptor { return d.WithSort(sort) })
	}
}

// WithFilter sets the initial value of a filter. An empty value clears it.
func WithFilter(name, value string) ViewOption {
	return func(c *viewConfig) {
		c.adjust = append(c.adjust, func(d query.Descriptor) query.Descriptor { return d.WithFilter(name, value) })
	}
}

func (s *Session) viewConfig(pageSize int, opts []ViewOption) viewConfig {
	cfg := viewConfig{
		opts: listview.Options{
			Logger:   s.log,
			Recorder: s.tracker,
		},
		pageSize: pageSize,
	}
	for _, o := range opts {
		o(&cfg)
	}
	return cfg
}

func newView[T any](s *Session, src listview.Source[T], d query.Descriptor, lo listview.Options) (*listview.Controller[T], error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, fmt.Errorf("session is closed")
	}

	ctrl, err := listview.New[T](s.cache, src, d, lo)
	if err != nil {
		return nil, err
	}
	unwatch := s.coord.Watch(ctrl)
	s.views[ctrl] = func() {
		unwatch()
		ctrl.Dispose()
	}
	return ctrl, nil
}

// Release disposes a controller created by this session and stops its
// invalidation notices. Its chain stays cached.
func (s *Session) Release(view disposer) {
	s.mu.Lock()
	release, ok := s.views[view]
	delete(s.views, view)
	s.mu.Unlock()

	if ok {
		release()
	}
}

// CreateRepository runs the create mutation.
func (s *Session) CreateRepository(ctx context.Context, m mutation.CreateRepository) mutation.Result[*github.Repository] {
	return mutation.Execute[*github.Repository](ctx, s.coord, m)
}

// UpdateRepositoryDescription runs the description edit mutation.
func (s *Session) UpdateRepositoryDescription(ctx context.Context, m mutation.UpdateRepositoryDescription) mutation.Result[*github.Repository] {
	return mutation.Execute[*github.Repository](ctx, s.coord, m)
}

// DeleteRepository runs the delete mutation.
func (s *Session) DeleteRepository(ctx context.Context, m mutation.DeleteRepository) mutation.Result[string] {
	return mutation.Execute[string](ctx, s.coord, m)
}

// Close disposes every controller and clears the cache. It is idempotent.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	views := s.views
	s.views = nil
	s.mu.Unlock()

	for _, release := range views {
		release()
	}
	s.cache.Clear()
	s.log.Debug().Int("views", len(views)).Msg("session closed")
}
