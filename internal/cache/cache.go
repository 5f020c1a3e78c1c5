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

import (
	"fmt"
	"slices"
	"sync"

	relaierrors "github.com/sirseerhq/sirseer-lens/internal/errors"
	"github.com/sirseerhq/sirseer-lens/internal/query"
)

// Cache maps chain keys to page chain state. It is safe for concurrent use
// and may be shared by any number of list controllers; chains never affect
// each other.
type Cache struct {
	mu     sync.Mutex
	chains map[query.Key]*chain

	// issued survives Invalidate and Remove so that responses to requests
	// issued before either call can never be applied afterwards.
	issued map[query.Key]uint64
}

type chain struct {
	desc    *query.Descriptor
	items   []any
	status  Status
	cursor  string
	err     error
	applied uint64

	// state before the in-flight load, restored by Abandon
	prevStatus Status
	prevErr    error
}

// New creates an empty cache.
func New() *Cache {
	return &Cache{
		chains: make(map[query.Key]*chain),
		issued: make(map[query.Key]uint64),
	}
}

func (c *Cache) lookup(key query.Key) *chain {
	ch, ok := c.chains[key]
	if !ok {
		ch = &chain{status: Idle}
		c.chains[key] = ch
	}
	return ch
}

// GetOrCreate returns the state of the chain, creating an Idle chain when
// the key is new.
func (c *Cache) GetOrCreate(key query.Key) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lookup(key).snapshot(key, c.issued[key])
}

// Bind creates the chain for d if needed and records its descriptor so that
// InvalidateMatching can find it. It returns the chain key.
func (c *Cache) Bind(d query.Descriptor) query.Key {
	key := d.Key()
	first := d.WithCursor("")

	c.mu.Lock()
	defer c.mu.Unlock()
	c.lookup(key).desc = &first
	return key
}

// Peek returns the state of the chain without creating it.
func (c *Cache) Peek(key query.Key) (Snapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ch, ok := c.chains[key]
	if !ok {
		return Snapshot{}, false
	}
	return ch.snapshot(key, c.issued[key]), true
}

// BeginLoad marks the chain as loading and returns the sequence number that
// must accompany the matching CommitPage, CommitFailure or Abandon. It is the single
// serialization point for fetches: when a load is already in flight for the
// key it returns ErrLoadInFlight and the caller must not fetch.
func (c *Cache) BeginLoad(key query.Key, firstPage bool) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch := c.lookup(key)
	if ch.status.InFlight() {
		return 0, fmt.Errorf("chain %s is %s: %w", key, ch.status, relaierrors.ErrLoadInFlight)
	}
	if !firstPage && ch.cursor == "" {
		return 0, fmt.Errorf("chain %s has no next cursor: %w", key, relaierrors.ErrNoMorePages)
	}

	ch.prevStatus, ch.prevErr = ch.status, ch.err
	if firstPage {
		ch.status = Loading
	} else {
		ch.status = LoadingMore
	}
	ch.err = nil

	c.issued[key]++
	return c.issued[key], nil
}

// CommitPage applies a fetched page. A first-page load replaces the items; a
// later page is appended after the existing items. The page is discarded,
// and false returned, when seq is not the latest sequence issued for the key.
func (c *Cache) CommitPage(key query.Key, seq uint64, items []any, nextCursor string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch, ok := c.chains[key]
	if !ok || !ch.status.InFlight() || seq != c.issued[key] || seq <= ch.applied {
		return false
	}

	if ch.status == Loading {
		ch.items = slices.Clone(items)
	} else {
		ch.items = append(ch.items, items...)
	}
	ch.cursor = nextCursor
	ch.status = Ready
	ch.err = nil
	ch.applied = seq
	return true
}

// CommitFailure records a failed fetch. Previously loaded items stay visible.
// Stale sequence numbers are discarded as in CommitPage.
func (c *Cache) CommitFailure(key query.Key, seq uint64, err error) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch, ok := c.chains[key]
	if !ok || !ch.status.InFlight() || seq != c.issued[key] || seq <= ch.applied {
		return false
	}

	ch.status = Failed
	ch.err = err
	ch.applied = seq
	return true
}

// Abandon withdraws the in-flight load issued as seq and restores the
// status the chain had before BeginLoad, so the next Load or LoadMore starts
// over. It returns false when seq is no longer current.
func (c *Cache) Abandon(key query.Key, seq uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch, ok := c.chains[key]
	if !ok || !ch.status.InFlight() || seq != c.issued[key] || seq <= ch.applied {
		return false
	}

	ch.status = ch.prevStatus
	ch.err = ch.prevErr
	ch.applied = seq
	return true
}

// Invalidate resets the chain to Idle with no items and no cursor. Any fetch
// in flight for the key is abandoned: its response will be discarded.
func (c *Cache) Invalidate(key query.Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidateLocked(key)
}

func (c *Cache) invalidateLocked(key query.Key) {
	ch := c.lookup(key)
	ch.items = nil
	ch.status = Idle
	ch.cursor = ""
	ch.err = nil
	c.issued[key]++
	ch.applied = c.issued[key]
}

// InvalidateMatching invalidates every bound chain selected by m and returns
// their keys in sorted order.
func (c *Cache) InvalidateMatching(m query.Match) []query.Key {
	c.mu.Lock()
	defer c.mu.Unlock()

	var keys []query.Key
	for key, ch := range c.chains {
		if ch.desc != nil && m.Matches(*ch.desc) {
			keys = append(keys, key)
		}
	}
	slices.Sort(keys)
	for _, key := range keys {
		c.invalidateLocked(key)
	}
	return keys
}

// Remove drops the chain entirely.
func (c *Cache) Remove(key query.Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.chains[key]; ok {
		delete(c.chains, key)
		c.issued[key]++
	}
}

// Clear drops every chain.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.chains {
		c.issued[key]++
	}
	clear(c.chains)
}

// Keys returns the keys of all chains in sorted order.
func (c *Cache) Keys() []query.Key {
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := make([]query.Key, 0, len(c.chains))
	for key := range c.chains {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}

// Len returns the number of chains.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.chains)
}

func (ch *chain) snapshot(key query.Key, issued uint64) Snapshot {
	return Snapshot{
		Key:        key,
		Items:      slices.Clone(ch.items),
		Status:     ch.status,
		NextCursor: ch.cursor,
		Err:        ch.err,
		Issued:     issued,
		Applied:    ch.applied,
	}
}
