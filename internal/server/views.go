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

package server

import (
	"context"

	"github.com/sirseerhq/sirseer-lens/internal/listview"
	"github.com/sirseerhq/sirseer-lens/internal/query"
	"github.com/sirseerhq/sirseer-lens/internal/session"
)

// view erases the item type of a list controller so the server can keep
// repository and pull request views in one registry.
type view interface {
	load(ctx context.Context) error
	setFilter(ctx context.Context, name, value string) error
	setSort(ctx context.Context, sort query.Sort) error
	loadMore(ctx context.Context) error
	retry(ctx context.Context) error
	descriptor() query.Descriptor
	response(id string) ViewResponse
	release()
}

type listView[T any] struct {
	kind string
	ctrl *listview.Controller[T]
	sess *session.Session
}

func newListView[T any](kind string, ctrl *listview.Controller[T], sess *session.Session) *listView[T] {
	return &listView[T]{kind: kind, ctrl: ctrl, sess: sess}
}

func (v *listView[T]) load(ctx context.Context) error { return v.ctrl.Load(ctx) }

func (v *listView[T]) setFilter(ctx context.Context, name, value string) error {
	return v.ctrl.SetFilter(ctx, name, value)
}

func (v *listView[T]) setSort(ctx context.Context, sort query.Sort) error {
	return v.ctrl.SetSort(ctx, sort)
}

func (v *listView[T]) loadMore(ctx context.Context) error { return v.ctrl.LoadMore(ctx) }

func (v *listView[T]) retry(ctx context.Context) error { return v.ctrl.Retry(ctx) }

func (v *listView[T]) descriptor() query.Descriptor { return v.ctrl.Descriptor() }

func (v *listView[T]) release() { v.sess.Release(v.ctrl) }

func (v *listView[T]) response(id string) ViewResponse {
	vm := v.ctrl.View()
	resp := ViewResponse{
		ID:               id,
		Kind:             v.kind,
		State:            vm.State.String(),
		Query:            queryResponse(vm.Query),
		Items:            vm.Items,
		IsInitialLoading: vm.IsInitialLoading,
		IsLoadingMore:    vm.IsLoadingMore,
		HasMore:          vm.HasMore,
	}
	if vm.Error != nil {
		resp.Error = errorResponse(vm.Error)
	}
	return resp
}

// ViewResponse is the JSON form of a list view model.
type ViewResponse struct {
	ID               string         `json:"id"`
	Kind             string         `json:"kind"`
	State            string         `json:"state"`
	Query            QueryResponse  `json:"query"`
	Items            any            `json:"items"`
	IsInitialLoading bool           `json:"is_initial_loading"`
	IsLoadingMore    bool           `json:"is_loading_more"`
	HasMore          bool           `json:"has_more"`
	Error            *ErrorResponse `json:"error,omitempty"`
}

// QueryResponse describes the chain a view is showing.
type QueryResponse struct {
	Operation string            `json:"operation"`
	Scope     []string          `json:"scope,omitempty"`
	Filters   map[string]string `json:"filters,omitempty"`
	Sort      SortRequest       `json:"sort"`
	PageSize  int               `json:"page_size"`
}

func queryResponse(d query.Descriptor) QueryResponse {
	return QueryResponse{
		Operation: string(d.Operation),
		Scope:     d.Scope,
		Filters:   d.Filters,
		Sort: SortRequest{
			Field:     d.Sort.Field,
			Direction: string(d.Sort.Direction),
		},
		PageSize: d.PageSize,
	}
}
