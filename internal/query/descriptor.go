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

// Package query describes remote list requests. A Descriptor names the
// operation, its scope, the selected filters and sort order, the page size and
// the pagination cursor. Everything except the cursor identifies a page chain;
// DeriveKey turns that identity into a stable Key.
package query

import (
	"fmt"
	"maps"
	"strings"
)

// Operation identifies a remote list query.
type Operation string

const (
	// ListRepositories lists the viewer's repositories.
	ListRepositories Operation = "list-repositories"
	// ListPullRequests lists the pull requests of one repository.
	ListPullRequests Operation = "list-pull-requests"
)

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "ASC"
	Desc Direction = "DESC"
)

// Toggle returns the opposite direction.
func (d Direction) Toggle() Direction {
	if d == Asc {
		return Desc
	}
	return Asc
}

// ParseDirection accepts asc/desc in any case.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ASC", "ASCENDING":
		return Asc, nil
	case "DESC", "DESCENDING":
		return Desc, nil
	default:
		return "", fmt.Errorf("invalid sort direction %q. Expected: asc or desc", s)
	}
}

// Sort is a (field, direction) pair.
type Sort struct {
	Field     string
	Direction Direction
}

func (s Sort) String() string {
	return s.Field + " " + string(s.Direction)
}

// Scope is the ordered tuple of scoping parameters, e.g. (owner, name).
// Viewer-scoped operations use an empty scope.
type Scope []string

// Equal reports whether two scopes hold the same parameters in order.
func (s Scope) Equal(other Scope) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

func (s Scope) String() string {
	return strings.Join(s, "/")
}

// Descriptor is an immutable description of one page request.
// Use the With* methods to derive modified copies.
type Descriptor struct {
	Operation Operation
	Scope     Scope
	Filters   map[string]string
	Sort      Sort
	PageSize  int

	// Cursor is the opaque pagination token; empty means the first page.
	Cursor string
}

// New builds a first-page descriptor.
func New(op Operation, scope Scope, filters map[string]string, sort Sort, pageSize int) Descriptor {
	return Descriptor{
		Operation: op,
		Scope:     append(Scope(nil), scope...),
		Filters:   maps.Clone(filters),
		Sort:      sort,
		PageSize:  pageSize,
	}
}

// Key derives the page chain key of the descriptor.
func (d Descriptor) Key() Key {
	return DeriveKey(d)
}

// Filter returns the value of a filter, or "" when unset.
func (d Descriptor) Filter(name string) string {
	return d.Filters[name]
}

// WithFilter returns a copy with the filter set and the cursor reset.
// An empty value removes the filter.
func (d Descriptor) WithFilter(name, value string) Descriptor {
	out := d.clone()
	if value == "" {
		delete(out.Filters, name)
	} else {
		if out.Filters == nil {
			out.Filters = make(map[string]string)
		}
		out.Filters[name] = value
	}
	out.Cursor = ""
	return out
}

// WithSort returns a copy with the sort replaced and the cursor reset.
func (d Descriptor) WithSort(sort Sort) Descriptor {
	out := d.clone()
	out.Sort = sort
	out.Cursor = ""
	return out
}

// WithScope returns a copy for another scope with the cursor reset.
func (d Descriptor) WithScope(scope Scope) Descriptor {
	out := d.clone()
	out.Scope = append(Scope(nil), scope...)
	out.Cursor = ""
	return out
}

// WithCursor returns a copy positioned at cursor within the same chain.
func (d Descriptor) WithCursor(cursor string) Descriptor {
	out := d.clone()
	out.Cursor = cursor
	return out
}

// Validate checks that the descriptor can be sent.
func (d Descriptor) Validate() error {
	if d.Operation == "" {
		return fmt.Errorf("descriptor has no operation")
	}
	if d.PageSize <= 0 {
		return fmt.Errorf("page size must be positive, got: %d", d.PageSize)
	}
	if d.PageSize > 100 {
		return fmt.Errorf("page size %d exceeds GitHub API limit of 100", d.PageSize)
	}
	return nil
}

func (d Descriptor) clone() Descriptor {
	out := d
	out.Scope = append(Scope(nil), d.Scope...)
	out.Filters = maps.Clone(d.Filters)
	return out
}
