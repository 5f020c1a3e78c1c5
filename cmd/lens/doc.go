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

// Package main implements the sirseer-lens command-line interface.
// It browses the authenticated viewer's GitHub repositories and the pull
// requests of any repository through paginated, cached list views, and runs
// repository mutations that refresh the affected lists.
//
// The CLI supports:
//   - Listing repositories and pull requests one page at a time or in full
//   - Sorting and filtering, with results rendered as text, NDJSON or YAML
//   - Creating, editing and deleting repositories
//   - An interactive browser driven by short commands (more, sort, closed, ...)
//   - Serving the same views over HTTP
//
// Usage:
//
//	sirseer-lens repos list [flags]
//	sirseer-lens pulls <owner>/<repo> [flags]
//	sirseer-lens browse [<owner>/<repo>]
//	sirseer-lens serve [--addr host:port]
//
// Example:
//
//	export GITHUB_TOKEN=your_token
//	sirseer-lens pulls golang/go --state closed --sort updated --format yaml
//
// Exit codes:
//   - 0: Success
//   - 1: General error
//   - 2: Authentication, not found, rate limit or validation error
//   - 3: Network error
package main
