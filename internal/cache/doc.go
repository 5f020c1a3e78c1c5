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

// Package cache holds the fetch result cache: the last known items, cursor
// and load status of every page chain, keyed by query.Key.
//
// The cache is the only owner of chain state. Readers receive Snapshot
// copies; writers go through a strict protocol:
//
//	seq, err := c.BeginLoad(key, true)
//	if err != nil {
//	    // a load is already in flight for this chain; do not fetch
//	}
//	page, err := fetch(ctx, desc)
//	switch {
//	case ctx.Err() != nil:
//	    c.Abandon(key, seq) // the caller gave up; restore the previous state
//	case err != nil:
//	    c.CommitFailure(key, seq, err)
//	default:
//	    c.CommitPage(key, seq, page.Items, page.EndCursor)
//	}
//
// BeginLoad allows at most one outstanding request per chain. Every request
// is tagged with a sequence number, and a response whose number is not the
// latest issued for its chain is dropped. Invalidate, Remove and Clear also
// advance the sequence, so responses that were in flight at that moment can
// never resurrect old data.
package cache
