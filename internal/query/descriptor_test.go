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

package query

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pullsDescriptor() Descriptor {
	return New(ListPullRequests, Scope{"test", "test-repo"},
		map[string]string{"state": "OPEN"},
		Sort{Field: "CREATED_AT", Direction: Desc}, 10)
}

func TestDeriveKey_IgnoresCursor(t *testing.T) {
	d := pullsDescriptor()
	assert.Equal(t, d.Key(), d.WithCursor("cursor2").Key())
}

func TestDeriveKey_FilterInsertionOrder(t *testing.T) {
	a := map[string]string{}
	a["state"] = "OPEN"
	a["label"] = "bug"

	b := map[string]string{}
	b["label"] = "bug"
	b["state"] = "OPEN"

	sort := Sort{Field: "CREATED_AT", Direction: Desc}
	ka := New(ListPullRequests, Scope{"o", "r"}, a, sort, 10).Key()
	kb := New(ListPullRequests, Scope{"o", "r"}, b, sort, 10).Key()
	assert.Equal(t, ka, kb)
}

func TestDeriveKey_Stable(t *testing.T) {
	// Keys must survive process restarts, so the value is pinned by format.
	k := pullsDescriptor().Key()
	require.True(t, strings.HasPrefix(string(k), "list-pull-requests:"))
	assert.Len(t, strings.TrimPrefix(string(k), "list-pull-requests:"), 32)
	assert.Equal(t, k, pullsDescriptor().Key())
	assert.Equal(t, ListPullRequests, k.Operation())
}

func TestDeriveKey_Distinct(t *testing.T) {
	base := pullsDescriptor()

	tests := []struct {
		name  string
		other Descriptor
	}{
		{"filter value", base.WithFilter("state", "CLOSED_OR_MERGED")},
		{"extra filter", base.WithFilter("label", "bug")},
		{"removed filter", base.WithFilter("state", "")},
		{"sort field", base.WithSort(Sort{Field: "UPDATED_AT", Direction: Desc})},
		{"sort direction", base.WithSort(Sort{Field: "CREATED_AT", Direction: Asc})},
		{"scope", base.WithScope(Scope{"test", "other"})},
		{"operation", New(ListRepositories, base.Scope, base.Filters, base.Sort, 10)},
		// Length prefixes keep ("ab","c") and ("a","bc") apart.
		{"scope boundary", base.WithScope(Scope{"tes", "ttest-repo"})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotEqual(t, base.Key(), tt.other.Key())
		})
	}
}

func TestWithFilter_ResetsCursor(t *testing.T) {
	d := pullsDescriptor().WithCursor("cursor2")

	changed := d.WithFilter("state", "CLOSED_OR_MERGED")
	assert.Empty(t, changed.Cursor)
	assert.Equal(t, "CLOSED_OR_MERGED", changed.Filter("state"))

	// The original is untouched.
	assert.Equal(t, "cursor2", d.Cursor)
	assert.Equal(t, "OPEN", d.Filter("state"))
}

func TestWithSort_ResetsCursor(t *testing.T) {
	d := pullsDescriptor().WithCursor("cursor2")
	changed := d.WithSort(Sort{Field: "UPDATED_AT", Direction: Asc})
	assert.Empty(t, changed.Cursor)
	assert.Equal(t, Desc, d.Sort.Direction)
}

func TestNew_CopiesInputs(t *testing.T) {
	filters := map[string]string{"state": "OPEN"}
	scope := Scope{"o", "r"}
	d := New(ListPullRequests, scope, filters, Sort{}, 10)

	filters["state"] = "CLOSED_OR_MERGED"
	scope[0] = "x"

	assert.Equal(t, "OPEN", d.Filter("state"))
	assert.Equal(t, "o", d.Scope[0])
}

func TestDescriptor_Validate(t *testing.T) {
	tests := []struct {
		name    string
		d       Descriptor
		wantErr bool
	}{
		{"valid", pullsDescriptor(), false},
		{"no operation", Descriptor{PageSize: 10}, true},
		{"zero page size", Descriptor{Operation: ListRepositories}, true},
		{"page size over limit", Descriptor{Operation: ListRepositories, PageSize: 101}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.d.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseDirection(t *testing.T) {
	tests := []struct {
		input   string
		want    Direction
		wantErr bool
	}{
		{"asc", Asc, false},
		{"DESC", Desc, false},
		{" Descending ", Desc, false},
		{"sideways", "", true},
	}

	for _, tt := range tests {
		got, err := ParseDirection(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDirection(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseDirection(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
	assert.Equal(t, Asc, Desc.Toggle())
	assert.Equal(t, Desc, Asc.Toggle())
}

func TestMatch(t *testing.T) {
	m := Match{Operation: ListPullRequests, Scope: Scope{"test", "test-repo"}}
	d := pullsDescriptor()

	assert.True(t, m.Matches(d))
	assert.True(t, m.Matches(d.WithFilter("state", "CLOSED_OR_MERGED")))
	assert.False(t, m.Matches(d.WithScope(Scope{"test", "other"})))
	assert.False(t, Match{Operation: ListRepositories}.Matches(d))
}
