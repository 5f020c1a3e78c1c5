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

package listview

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/sirseerhq/sirseer-lens/internal/cache"
	relaierrors "github.com/sirseerhq/sirseer-lens/internal/errors"
	"github.com/sirseerhq/sirseer-lens/internal/query"
)

// Options configures a Controller.
type Options struct {
	Logger zerolog.Logger

	// Recorder is optional.
	Recorder Recorder

	// OnChange is called after every applied commit and every chain switch.
	// It must not call back into the controller synchronously.
	OnChange func()

	// Normalize, when set, rewrites every descriptor before its key is
	// derived so that equivalent spellings share one chain.
	Normalize func(query.Descriptor) query.Descriptor
}

// Controller drives one list view. It is safe for concurrent use.
type Controller[T any] struct {
	cache  *cache.Cache
	source Source[T]
	opts   Options
	log    zerolog.Logger

	mu       sync.Mutex
	desc     query.Descriptor
	key      query.Key
	started  bool
	disposed bool
}

// New creates a controller for the chain of initial. No fetch happens until Load.
func New[T any](c *cache.Cache, source Source[T], initial query.Descriptor, opts Options) (*Controller[T], error) {
	if c == nil || source == nil {
		return nil, fmt.Errorf("listview: cache and source are required")
	}
	first := initial.WithCursor("")
	if opts.Normalize != nil {
		first = opts.Normalize(first)
	}
	if err := first.Validate(); err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}

	ctrl := &Controller[T]{
		cache:  c,
		source: source,
		opts:   opts,
		desc:   first,
		key:    c.Bind(first),
	}
	ctrl.log = opts.Logger.With().Str("op", string(first.Operation)).Logger()
	return ctrl, nil
}

// Key returns the key of the current chain.
func (c *Controller[T]) Key() query.Key {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.key
}

// Descriptor returns the first-page descriptor of the current chain.
func (c *Controller[T]) Descriptor() query.Descriptor {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.desc.WithCursor("")
}

// Load performs the initial load. A chain that is already loaded or loading
// is reused as-is; an idle or failed chain is fetched from the first page.
func (c *Controller[T]) Load(ctx context.Context) error {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return relaierrors.ErrControllerDisposed
	}
	c.started = true
	key := c.key
	c.mu.Unlock()

	snap := c.cache.GetOrCreate(key)
	switch snap.Status {
	case cache.Idle, cache.Failed:
		return c.fetch(ctx, true)
	default:
		return nil
	}
}

// SetFilter switches to the chain with the filter changed and loads it.
// An empty value clears the filter.
func (c *Controller[T]) SetFilter(ctx context.Context, name, value string) error {
	return c.switchTo(ctx, func(d query.Descriptor) query.Descriptor {
		return d.WithFilter(name, value)
	})
}

// SetSort switches to the chain with the new sort and loads it.
func (c *Controller[T]) SetSort(ctx context.Context, sort query.Sort) error {
	return c.switchTo(ctx, func(d query.Descriptor) query.Descriptor {
		return d.WithSort(sort)
	})
}

// SetScope switches to the chain of another scope and loads it.
func (c *Controller[T]) SetScope(ctx context.Context, scope query.Scope) error {
	return c.switchTo(ctx, func(d query.Descriptor) query.Descriptor {
		return d.WithScope(scope)
	})
}

func (c *Controller[T]) switchTo(ctx context.Context, change func(query.Descriptor) query.Descriptor) error {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return relaierrors.ErrControllerDisposed
	}
	next := change(c.desc)
	if c.opts.Normalize != nil {
		next = c.opts.Normalize(next)
	}
	prev := c.key
	c.desc = next
	c.key = c.cache.Bind(next)
	changed := c.key != prev
	c.mu.Unlock()

	if changed {
		c.log.Debug().
			Str("from", string(prev)).
			Str("key", string(c.Key())).
			Msg("switched chain")
		c.notify()
	}
	return c.Load(ctx)
}

// LoadMore fetches the next page of the current chain and appends it.
// It returns ErrNoMorePages when the chain is exhausted and
// ErrLoadInFlight when a fetch for the chain is outstanding.
func (c *Controller[T]) LoadMore(ctx context.Context) error {
	return c.fetch(ctx, false)
}

// Retry refetches the current chain from the first page. Items loaded
// before the failure stay visible until the new page arrives.
func (c *Controller[T]) Retry(ctx context.Context) error {
	c.mu.Lock()
	c.started = true
	c.mu.Unlock()
	return c.fetch(ctx, true)
}

// OnInvalidate refetches the current chain when key is its key. Other keys
// are ignored.
func (c *Controller[T]) OnInvalidate(ctx context.Context, key query.Key) error {
	c.mu.Lock()
	mine := key == c.key && !c.disposed
	c.mu.Unlock()
	if !mine {
		return nil
	}

	c.log.Debug().Str("key", string(key)).Msg("chain invalidated, refetching")
	return c.fetch(ctx, true)
}

// Dispose withdraws the controller's interest in its chain. A fetch already
// in flight runs to completion and still lands in the shared cache, but the
// controller no longer reports changes. Later calls return
// ErrControllerDisposed.
func (c *Controller[T]) Dispose() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.disposed = true
}

// State returns the controller state derived from the current chain.
func (c *Controller[T]) State() State {
	c.mu.Lock()
	key, started := c.key, c.started
	c.mu.Unlock()
	return stateOf(c.cache.GetOrCreate(key).Status, started)
}

func stateOf(status cache.Status, started bool) State {
	switch status {
	case cache.Loading:
		return Loading
	case cache.LoadingMore:
		return LoadingMore
	case cache.Ready:
		return Ready
	case cache.Failed:
		return Failed
	default:
		if started {
			return Loading
		}
		return Uninitialized
	}
}

// View derives the view model from the current chain.
func (c *Controller[T]) View() ViewModel[T] {
	c.mu.Lock()
	key, desc, started := c.key, c.desc, c.started
	c.mu.Unlock()

	snap := c.cache.GetOrCreate(key)
	items := make([]T, 0, len(snap.Items))
	for _, it := range snap.Items {
		if v, ok := it.(T); ok {
			items = append(items, v)
		}
	}

	state := stateOf(snap.Status, started)
	return ViewModel[T]{
		Items:            items,
		IsInitialLoading: state == Loading,
		IsLoadingMore:    state == LoadingMore,
		HasMore:          snap.HasMore(),
		Error:            snap.Err,
		State:            state,
		Query:            desc,
	}
}

// fetch runs one page request for the current chain.
func (c *Controller[T]) fetch(ctx context.Context, firstPage bool) error {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return relaierrors.ErrControllerDisposed
	}
	key, desc := c.key, c.desc
	c.mu.Unlock()

	seq, err := c.cache.BeginLoad(key, firstPage)
	if err != nil {
		if firstPage && errors.Is(err, relaierrors.ErrLoadInFlight) {
			// Another caller is already fetching this chain.
			return nil
		}
		return err
	}
	c.notify()

	d := desc.WithCursor("")
	if !firstPage {
		cursor := c.cache.GetOrCreate(key).NextCursor
		if cursor == "" {
			// Invalidated between BeginLoad and here; the response would be dropped.
			return nil
		}
		d = desc.WithCursor(cursor)
	}

	logger := c.log.With().Str("key", string(key)).Uint64("seq", seq).Logger()
	logger.Debug().Str("cursor", d.Cursor).Bool("first_page", firstPage).Msg("fetching page")

	start := time.Now()
	page, err := c.source.Fetch(ctx, d)
	elapsed := time.Since(start)

	if c.opts.Recorder != nil {
		c.opts.Recorder.RecordFetch(string(d.Operation), len(page.Items), elapsed, err)
	}

	if err != nil && ctx.Err() != nil {
		// The caller gave up; the chain goes back to where it was so that
		// other views sharing it are unaffected.
		if c.cache.Abandon(key, seq) {
			logger.Debug().Err(err).Msg("fetch withdrawn")
			c.notify()
		}
		return err
	}
	if err != nil {
		if c.cache.CommitFailure(key, seq, err) {
			logger.Warn().Err(err).Dur("duration", elapsed).Msg("fetch failed")
			c.notify()
		} else {
			logger.Debug().Err(err).Msg("discarded stale failure")
		}
		return err
	}

	items := make([]any, len(page.Items))
	for i := range page.Items {
		items[i] = page.Items[i]
	}
	if !c.cache.CommitPage(key, seq, items, page.NextCursor) {
		logger.Debug().Int("items", len(items)).Msg("discarded stale page")
		return nil
	}

	logger.Debug().
		Int("items", len(items)).
		Str("cursor", page.NextCursor).
		Dur("duration", elapsed).
		Msg("page applied")
	c.notify()
	return nil
}

func (c *Controller[T]) notify() {
	c.mu.Lock()
	disposed := c.disposed
	c.mu.Unlock()
	if !disposed && c.opts.OnChange != nil {
		c.opts.OnChange()
	}
}
