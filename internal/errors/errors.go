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

// Package errors defines sentinel errors and the error taxonomy shared by the
// list controllers, the mutation coordinator and the GitHub transport.
// Sentinels map to specific exit codes in the CLI for proper scripting support.
package errors

import "errors"

var (
	// ErrInvalidToken indicates GitHub authentication failed.
	// Maps to exit code 2.
	ErrInvalidToken = errors.New("invalid github token")

	// ErrRepoNotFound indicates the specified repository does not exist or is not accessible.
	// Maps to exit code 2.
	ErrRepoNotFound = errors.New("repository not found")

	// ErrNetworkFailure indicates a network connection problem.
	// Maps to exit code 3.
	ErrNetworkFailure = errors.New("network connection failed")

	// ErrRateLimit indicates GitHub API rate limit has been exceeded.
	// Maps to exit code 2.
	ErrRateLimit = errors.New("github rate limit exceeded")

	// ErrQueryComplexity indicates the GraphQL query exceeded GitHub's complexity budget.
	ErrQueryComplexity = errors.New("graphql query complexity exceeded")

	// ErrValidation indicates input was rejected locally before any request was sent.
	// Maps to exit code 2.
	ErrValidation = errors.New("validation failed")

	// ErrLoadInFlight is returned when a page chain already has an outstanding fetch.
	ErrLoadInFlight = errors.New("load already in flight")

	// ErrNoMorePages is returned when a next page is requested for an exhausted chain.
	ErrNoMorePages = errors.New("no more pages")

	// ErrControllerDisposed is returned by list controllers after Dispose.
	ErrControllerDisposed = errors.New("list controller disposed")
)
