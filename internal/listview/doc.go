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

// Package listview implements the list controller: a per-view state machine
// that turns intent events (filter and sort changes, load-more, retry,
// invalidation) into fetches against a shared cache.Cache, and derives a
// ViewModel from the cached page chain.
//
// A controller never owns items. It holds the key of its current chain and
// reads through the cache, so any number of controllers can show the same
// chain. Chains are never evicted by a controller; switching back to an
// earlier filter reuses its cached pages.
//
// Fetches run in the calling goroutine without holding the controller lock.
// Responses that arrive after the chain was invalidated, or after a newer
// request for the same chain was issued, are dropped by the cache.
package listview
