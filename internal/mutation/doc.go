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

// Package mutation runs write operations against GitHub and keeps the list
// caches consistent with them.
//
// Execute validates a mutation locally, dispatches it through the transport
// and, on success, invalidates every cached chain in the mutation's static
// affect-list before asking the watching list controllers to refetch. The
// returned Result resolves only after those refetches have finished, so a
// caller that reads a view after Execute never sees pre-mutation data.
// Failed mutations never touch the cache.
package mutation
