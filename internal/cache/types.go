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

package cache

import "github.com/sirseerhq/sirseer-lens/internal/query"

// Status is the load status of a page chain.
type Status int

const (
	Idle Status = iota
	Loading
	LoadingMore
	Ready
	Failed
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case LoadingMore:
		return "loading-more"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// InFlight reports whether a fetch is outstanding.
func (s Status) InFlight() bool {
	return s == Loading || s == LoadingMore
}

// Snapshot is a read-only copy of a page chain. Callers may keep it; later
// cache updates do not change it.
type Snapshot struct {
	Key    query.Key
	Items  []any
	Status Status

	// NextCursor is the cursor for the next page; empty when the chain is
	// exhausted or not yet loaded.
	NextCursor string

	// Err is set iff Status is Failed.
	Err error

	// Issued is the last request sequence number handed out for the key.
	Issued uint64
	// Applied is the sequence number of the last applied response.
	Applied uint64
}

// HasMore reports whether another page can be requested.
func (s Snapshot) HasMore() bool {
	return s.NextCursor != ""
}
