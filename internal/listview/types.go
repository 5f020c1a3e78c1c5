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
	"time"

	"github.com/sirseerhq/sirseer-lens/internal/query"
)

// Page is one fetched page. An empty NextCursor means the chain is exhausted.
type Page[T any] struct {
	Items      []T
	NextCursor string
}

// Source fetches the page a descriptor names. Implementations must honor
// ctx cancellation and return typed items.
type Source[T any] interface {
	Fetch(ctx context.Context, d query.Descriptor) (Page[T], error)
}

// SourceFunc adapts a function to Source.
type SourceFunc[T any] func(ctx context.Context, d query.Descriptor) (Page[T], error)

// Fetch implements Source.
func (f SourceFunc[T]) Fetch(ctx context.Context, d query.Descriptor) (Page[T], error) {
	return f(ctx, d)
}

// Recorder receives one call per completed fetch, applied or not.
type Recorder interface {
	RecordFetch(operation string, items int, duration time.Duration, err error)
}

// State is the controller state derived from its chain.
type State int

const (
	Uninitialized State = iota
	Loading
	Ready
	LoadingMore
	Failed
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case LoadingMore:
		return "loading-more"
	case Failed:
		return "failed"
	default:
		return "uninitialized"
	}
}

// ViewModel is what a presentation layer renders. It is recomputed from the
// cached chain on every call to View and never shared with the cache.
type ViewModel[T any] struct {
	Items            []T              `json:"items"`
	IsInitialLoading bool             `json:"is_initial_loading"`
	IsLoadingMore    bool             `json:"is_loading_more"`
	HasMore          bool             `json:"has_more"`
	Error            error            `json:"-"`
	State            State            `json:"-"`
	Query            query.Descriptor `json:"-"`
}
