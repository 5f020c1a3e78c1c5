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

package mutation

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/sirseerhq/sirseer-lens/internal/cache"
	relaierrors "github.com/sirseerhq/sirseer-lens/internal/errors"
	"github.com/sirseerhq/sirseer-lens/internal/github"
	"github.com/sirseerhq/sirseer-lens/internal/query"
)

// Mutation is one write operation.
type Mutation[T any] interface {
	// Operation names the mutation in logs, errors and metrics.
	Operation() string

	// Validate checks inputs locally; it must not perform I/O.
	Validate() error

	// Affects lists the chains a successful mutation makes stale.
	Affects() []query.Match

	// Do dispatches the mutation.
	Do(ctx context.Context, client github.Client) (T, error)
}

// Watcher is notified after chains were invalidated. List controllers
// implement it and refetch when the key is theirs.
type Watcher interface {
	OnInvalidate(ctx context.Context, key query.Key) error
}

// Recorder receives one call per dispatched mutation.
type Recorder interface {
	RecordMutation(operation string, duration time.Duration, err error)
}

// Options configures a Coordinator.
type Options struct {
	Logger zerolog.Logger

	// Recorder is optional.
	Recorder Recorder

	// RefreshLimit bounds concurrent watcher refreshes. Zero means unbounded.
	RefreshLimit int
}

// Coordinator dispatches mutations and propagates their effects to the cache
// and to watching controllers.
type Coordinator struct {
	cache  *cache.Cache
	client github.Client
	opts   Options
	log    zerolog.Logger

	mu       sync.Mutex
	watchers map[int]Watcher
	nextID   int
}

// NewCoordinator creates a coordinator over a shared cache and client.
func NewCoordinator(c *cache.Cache, client github.Client, opts Options) *Coordinator {
	return &Coordinator{
		cache:    c,
		client:   client,
		opts:     opts,
		log:      opts.Logger.With().Str("component", "mutation").Logger(),
		watchers: make(map[int]Watcher),
	}
}

// Watch registers w for invalidation notices and returns a function that
// unregisters it.
func (c *Coordinator) Watch(w Watcher) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextID
	c.nextID++
	c.watchers[id] = w
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.watchers, id)
	}
}

func (c *Coordinator) snapshotWatchers() []Watcher {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Watcher, 0, len(c.watchers))
	for _, w := range c.watchers {
		out = append(out, w)
	}
	return out
}

// Execute runs m. Validation failures return before the transport is
// touched. On success every chain in m.Affects() is invalidated and the
// watchers refetch before the Ok result is returned.
func Execute[T any](ctx context.Context, c *Coordinator, m Mutation[T]) Result[T] {
	logger := c.log.With().Str("op", m.Operation()).Logger()

	if err := m.Validate(); err != nil {
		logger.Debug().Err(err).Msg("mutation rejected by validation")
		return Failed[T](err)
	}

	start := time.Now()
	value, err := m.Do(ctx, c.client)
	elapsed := time.Since(start)

	if c.opts.Recorder != nil {
		c.opts.Recorder.RecordMutation(m.Operation(), elapsed, err)
	}
	if err != nil {
		logger.Warn().Err(err).Str("kind", relaierrors.KindOf(err).String()).Dur("duration", elapsed).Msg("mutation failed")
		return Failed[T](err)
	}

	var keys []query.Key
	for _, match := range m.Affects() {
		keys = append(keys, c.cache.InvalidateMatching(match)...)
	}
	logger.Info().Int("invalidated", len(keys)).Dur("duration", elapsed).Msg("mutation applied")

	c.refresh(ctx, logger, keys)
	return Ok(value)
}

// refresh notifies every watcher of every invalidated key and waits for the
// resulting fetches. Refresh failures are visible in the affected views and
// do not fail the mutation.
func (c *Coordinator) refresh(ctx context.Context, logger zerolog.Logger, keys []query.Key) {
	if len(keys) == 0 {
		return
	}

	var g errgroup.Group
	if c.opts.RefreshLimit > 0 {
		g.SetLimit(c.opts.RefreshLimit)
	}
	for _, w := range c.snapshotWatchers() {
		for _, key := range keys {
			g.Go(func() error {
				return w.OnInvalidate(ctx, key)
			})
		}
	}
	if err := g.Wait(); err != nil {
		logger.Warn().Err(err).Msg("refetch after mutation failed")
	}
}
