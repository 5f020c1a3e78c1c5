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
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sirseerhq/sirseer-lens/internal/cache"
	relaierrors "github.com/sirseerhq/sirseer-lens/internal/errors"
	"github.com/sirseerhq/sirseer-lens/internal/query"
)

// pagedSource serves fixed pages keyed by cursor and records every request.
type pagedSource struct {
	mu    sync.Mutex
	pages map[string]Page[string]
	err   error
	calls []query.Descriptor
}

func (s *pagedSource) Fetch(_ context.Context, d query.Descriptor) (Page[string], error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, d)
	if s.err != nil {
		return Page[string]{}, s.err
	}
	return s.pages[d.Cursor], nil
}

func (s *pagedSource) requests() []query.Descriptor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]query.Descriptor(nil), s.calls...)
}

func (s *pagedSource) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// gatedSource blocks every fetch until released and reports entry.
type gatedSource struct {
	entered chan query.Descriptor
	release chan Page[string]
}

func newGatedSource() *gatedSource {
	return &gatedSource{
		entered: make(chan query.Descriptor, 4),
		release: make(chan Page[string]),
	}
}

func (s *gatedSource) Fetch(ctx context.Context, d query.Descriptor) (Page[string], error) {
	s.entered <- d
	select {
	case p := <-s.release:
		return p, nil
	case <-ctx.Done():
		return Page[string]{}, ctx.Err()
	}
}

func pullsQuery() query.Descriptor {
	return query.New(query.ListPullRequests, query.Scope{"octocat", "hello-world"},
		map[string]string{"state": "OPEN"},
		query.Sort{Field: "CREATED_AT", Direction: query.Desc}, 2)
}

func newController(t *testing.T, c *cache.Cache, src Source[string]) *Controller[string] {
	t.Helper()
	ctrl, err := New[string](c, src, pullsQuery(), Options{Logger: zerolog.Nop()})
	require.NoError(t, err)
	t.Cleanup(ctrl.Dispose)
	return ctrl
}

func TestNew_RejectsInvalidQuery(t *testing.T) {
	d := pullsQuery()
	d.PageSize = 0
	_, err := New[string](cache.New(), &pagedSource{}, d, Options{})
	assert.Error(t, err)
}

func TestController_InitialLoad(t *testing.T) {
	src := &pagedSource{pages: map[string]Page[string]{
		"": {Items: []string{"a", "b"}, NextCursor: "cursor2"},
	}}
	ctrl := newController(t, cache.New(), src)

	assert.Equal(t, Uninitialized, ctrl.State())
	require.NoError(t, ctrl.Load(context.Background()))

	view := ctrl.View()
	assert.Equal(t, []string{"a", "b"}, view.Items)
	assert.True(t, view.HasMore)
	assert.False(t, view.IsInitialLoading)
	assert.NoError(t, view.Error)
	assert.Equal(t, Ready, view.State)

	// A loaded chain is not fetched again.
	require.NoError(t, ctrl.Load(context.Background()))
	assert.Len(t, src.requests(), 1)
}

func TestController_LoadMoreAppends(t *testing.T) {
	src := &pagedSource{pages: map[string]Page[string]{
		"":        {Items: []string{"pr-1", "pr-2"}, NextCursor: "cursor2"},
		"cursor2": {Items: []string{"pr-3"}},
	}}
	ctrl := newController(t, cache.New(), src)
	ctx := context.Background()

	require.NoError(t, ctrl.Load(ctx))
	require.NoError(t, ctrl.LoadMore(ctx))

	reqs := src.requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, "cursor2", reqs[1].Cursor)

	view := ctrl.View()
	if diff := cmp.Diff([]string{"pr-1", "pr-2", "pr-3"}, view.Items); diff != "" {
		t.Errorf("items mismatch (-want +got):\n%s", diff)
	}
	assert.False(t, view.HasMore)

	err := ctrl.LoadMore(ctx)
	assert.ErrorIs(t, err, relaierrors.ErrNoMorePages)
	assert.Len(t, src.requests(), 2)
}

func TestController_LoadingStatesVisible(t *testing.T) {
	src := newGatedSource()
	ctrl := newController(t, cache.New(), src)
	ctx := context.Background()

	errc := make(chan error, 1)
	go func() { errc <- ctrl.Load(ctx) }()
	<-src.entered

	view := ctrl.View()
	assert.True(t, view.IsInitialLoading)
	assert.False(t, view.IsLoadingMore)

	src.release <- Page[string]{Items: []string{"a"}, NextCursor: "c1"}
	require.NoError(t, <-errc)

	go func() { errc <- ctrl.LoadMore(ctx) }()
	d := <-src.entered
	assert.Equal(t, "c1", d.Cursor)

	view = ctrl.View()
	assert.True(t, view.IsLoadingMore)
	assert.Equal(t, []string{"a"}, view.Items)

	src.release <- Page[string]{Items: []string{"b"}}
	require.NoError(t, <-errc)
	assert.Equal(t, []string{"a", "b"}, ctrl.View().Items)
}

func TestController_SingleFetchInFlight(t *testing.T) {
	src := newGatedSource()
	ctrl := newController(t, cache.New(), src)
	ctx := context.Background()

	errc := make(chan error, 1)
	go func() { errc <- ctrl.Load(ctx) }()
	<-src.entered

	// A second load for the same chain joins the outstanding one.
	require.NoError(t, ctrl.Retry(ctx))
	assert.ErrorIs(t, ctrl.LoadMore(ctx), relaierrors.ErrLoadInFlight)

	src.release <- Page[string]{Items: []string{"a"}}
	require.NoError(t, <-errc)
	assert.Empty(t, src.entered, "no second fetch may start")
}

func TestController_SetFilterStartsNewChain(t *testing.T) {
	src := &pagedSource{pages: map[string]Page[string]{
		"": {Items: []string{"a"}, NextCursor: "next"},
	}}
	c := cache.New()
	ctrl := newController(t, c, src)
	ctx := context.Background()

	require.NoError(t, ctrl.Load(ctx))
	openKey := ctrl.Key()

	require.NoError(t, ctrl.SetFilter(ctx, "state", "CLOSED_OR_MERGED"))
	assert.NotEqual(t, openKey, ctrl.Key())

	reqs := src.requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, "CLOSED_OR_MERGED", reqs[1].Filter("state"))
	assert.Empty(t, reqs[1].Cursor)

	// Switching back reuses the cached chain.
	require.NoError(t, ctrl.SetFilter(ctx, "state", "OPEN"))
	assert.Equal(t, openKey, ctrl.Key())
	assert.Len(t, src.requests(), 2)
	assert.Equal(t, 2, c.Len())
}

func TestController_SetSortResetsCursor(t *testing.T) {
	src := &pagedSource{pages: map[string]Page[string]{
		"":   {Items: []string{"a"}, NextCursor: "c1"},
		"c1": {Items: []string{"b"}},
	}}
	ctrl := newController(t, cache.New(), src)
	ctx := context.Background()

	require.NoError(t, ctrl.Load(ctx))
	require.NoError(t, ctrl.LoadMore(ctx))
	require.NoError(t, ctrl.SetSort(ctx, query.Sort{Field: "UPDATED_AT", Direction: query.Asc}))

	reqs := src.requests()
	last := reqs[len(reqs)-1]
	assert.Empty(t, last.Cursor)
	assert.Equal(t, "UPDATED_AT", last.Sort.Field)
	assert.Equal(t, []string{"a"}, ctrl.View().Items)
}

func TestController_FailureKeepsItemsAndRetry(t *testing.T) {
	src := &pagedSource{pages: map[string]Page[string]{
		"":   {Items: []string{"a", "b"}, NextCursor: "c1"},
		"c1": {Items: []string{"c"}},
	}}
	ctrl := newController(t, cache.New(), src)
	ctx := context.Background()
	require.NoError(t, ctrl.Load(ctx))

	boom := &relaierrors.TransportError{Operation: "list-pull-requests", Err: relaierrors.ErrNetworkFailure}
	src.fail(boom)
	err := ctrl.LoadMore(ctx)
	require.ErrorIs(t, err, relaierrors.ErrNetworkFailure)

	view := ctrl.View()
	assert.Equal(t, Failed, view.State)
	assert.Equal(t, []string{"a", "b"}, view.Items, "stale items stay visible")
	assert.Equal(t, relaierrors.KindTransport, relaierrors.KindOf(view.Error))

	src.fail(nil)
	require.NoError(t, ctrl.Retry(ctx))
	view = ctrl.View()
	assert.Equal(t, Ready, view.State)
	assert.NoError(t, view.Error)
	assert.Equal(t, []string{"a", "b"}, view.Items)
}

func TestController_InvalidationDropsLateResponse(t *testing.T) {
	src := newGatedSource()
	c := cache.New()
	ctrl := newController(t, c, src)
	ctx := context.Background()

	errc := make(chan error, 1)
	go func() { errc <- ctrl.Load(ctx) }()
	<-src.entered

	c.Invalidate(ctrl.Key())
	src.release <- Page[string]{Items: []string{"stale"}}
	require.NoError(t, <-errc)

	assert.Empty(t, ctrl.View().Items, "response issued before invalidation is dropped")

	go func() { errc <- ctrl.OnInvalidate(ctx, ctrl.Key()) }()
	<-src.entered
	assert.True(t, ctrl.View().IsInitialLoading)
	src.release <- Page[string]{Items: []string{"fresh"}}
	require.NoError(t, <-errc)
	assert.Equal(t, []string{"fresh"}, ctrl.View().Items)
}

func TestController_OnInvalidateIgnoresOtherKeys(t *testing.T) {
	src := &pagedSource{pages: map[string]Page[string]{"": {Items: []string{"a"}}}}
	ctrl := newController(t, cache.New(), src)

	require.NoError(t, ctrl.OnInvalidate(context.Background(), query.Key("list-repositories:00")))
	assert.Empty(t, src.requests())
}

func TestController_DisposeLeavesSharedChainLoading(t *testing.T) {
	src := newGatedSource()
	c := cache.New()
	first := newController(t, c, src)
	second := newController(t, c, src)

	errc := make(chan error, 1)
	go func() { errc <- first.Load(context.Background()) }()
	<-src.entered

	// The second view joins the outstanding fetch.
	require.NoError(t, second.Load(context.Background()))

	first.Dispose()
	assert.Equal(t, Loading, second.State())

	src.release <- Page[string]{Items: []string{"a", "b"}, NextCursor: "c1"}
	select {
	case err := <-errc:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("in-flight fetch did not complete after dispose")
	}

	view := second.View()
	assert.Equal(t, Ready, view.State)
	assert.NoError(t, view.Error)
	assert.Equal(t, []string{"a", "b"}, view.Items)
	assert.True(t, view.HasMore)

	assert.ErrorIs(t, first.Load(context.Background()), relaierrors.ErrControllerDisposed)
	assert.ErrorIs(t, first.LoadMore(context.Background()), relaierrors.ErrControllerDisposed)
	assert.ErrorIs(t, first.SetFilter(context.Background(), "state", "OPEN"), relaierrors.ErrControllerDisposed)
}

func TestController_DisposeStopsChangeNotifications(t *testing.T) {
	src := newGatedSource()
	var mu sync.Mutex
	changes := 0
	ctrl, err := New[string](cache.New(), src, pullsQuery(), Options{
		Logger: zerolog.Nop(),
		OnChange: func() {
			mu.Lock()
			changes++
			mu.Unlock()
		},
	})
	require.NoError(t, err)

	errc := make(chan error, 1)
	go func() { errc <- ctrl.Load(context.Background()) }()
	<-src.entered

	ctrl.Dispose()
	mu.Lock()
	before := changes
	mu.Unlock()

	src.release <- Page[string]{Items: []string{"a"}}
	require.NoError(t, <-errc)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, before, changes)
}

func TestController_CallerCancelRollsBackChain(t *testing.T) {
	src := newGatedSource()
	c := cache.New()
	first := newController(t, c, src)
	second := newController(t, c, src)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- first.Load(ctx) }()
	<-src.entered
	require.NoError(t, second.Load(context.Background()))

	cancel()
	assert.ErrorIs(t, <-errc, context.Canceled)

	// The withdrawn load never becomes a failure on the shared chain.
	view := second.View()
	assert.NotEqual(t, Failed, view.State)
	assert.NoError(t, view.Error)

	go func() { errc <- second.Load(context.Background()) }()
	<-src.entered
	src.release <- Page[string]{Items: []string{"a"}}
	require.NoError(t, <-errc)
	assert.Equal(t, []string{"a"}, first.View().Items)
	assert.Equal(t, Ready, second.State())
}

func TestController_CallerCancelDuringLoadMoreKeepsItems(t *testing.T) {
	src := newGatedSource()
	ctrl := newController(t, cache.New(), src)

	errc := make(chan error, 1)
	go func() { errc <- ctrl.Load(context.Background()) }()
	<-src.entered
	src.release <- Page[string]{Items: []string{"a"}, NextCursor: "c1"}
	require.NoError(t, <-errc)

	ctx, cancel := context.WithCancel(context.Background())
	go func() { errc <- ctrl.LoadMore(ctx) }()
	<-src.entered
	cancel()
	assert.ErrorIs(t, <-errc, context.Canceled)

	view := ctrl.View()
	assert.Equal(t, Ready, view.State)
	assert.Equal(t, []string{"a"}, view.Items)
	assert.True(t, view.HasMore)
}

func TestController_SharedChain(t *testing.T) {
	src := &pagedSource{pages: map[string]Page[string]{"": {Items: []string{"a"}}}}
	c := cache.New()
	first := newController(t, c, src)
	second := newController(t, c, src)

	require.NoError(t, first.Load(context.Background()))
	require.NoError(t, second.Load(context.Background()))

	assert.Equal(t, first.Key(), second.Key())
	assert.Equal(t, []string{"a"}, second.View().Items)
	assert.Len(t, src.requests(), 1)
}

type countingRecorder struct {
	mu    sync.Mutex
	calls int
	errs  int
}

func (r *countingRecorder) RecordFetch(_ string, _ int, _ time.Duration, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if err != nil {
		r.errs++
	}
}

func TestController_RecorderAndOnChange(t *testing.T) {
	src := &pagedSource{pages: map[string]Page[string]{"": {Items: []string{"a"}}}}
	rec := &countingRecorder{}
	changes := 0

	ctrl, err := New[string](cache.New(), src, pullsQuery(), Options{
		Logger:   zerolog.Nop(),
		Recorder: rec,
		OnChange: func() { changes++ },
	})
	require.NoError(t, err)
	defer ctrl.Dispose()

	require.NoError(t, ctrl.Load(context.Background()))
	src.fail(errors.New("boom"))
	require.Error(t, ctrl.Retry(context.Background()))

	assert.Equal(t, 2, rec.calls)
	assert.Equal(t, 1, rec.errs)
	assert.GreaterOrEqual(t, changes, 4, "begin and commit of both fetches")
}
