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

package github

import "context"

// Client defines the interface for interacting with GitHub's API.
// This interface allows for easy mocking in tests.
type Client interface {
	// ListRepositories retrieves a page of the authenticated viewer's repositories.
	// Pass RepositoryPage.EndCursor as opts.After to fetch the next page.
	ListRepositories(ctx context.Context, opts RepositoryListOptions) (*RepositoryPage, error)

	// ListPullRequests retrieves a page of pull requests from the specified repository.
	ListPullRequests(ctx context.Context, owner, name string, opts PullRequestListOptions) (*PullRequestPage, error)

	// CreateRepository creates a repository owned by the viewer.
	CreateRepository(ctx context.Context, req CreateRepositoryRequest) (*Repository, error)

	// UpdateRepository changes a repository's mutable fields.
	UpdateRepository(ctx context.Context, req UpdateRepositoryRequest) (*Repository, error)

	// DeleteRepository deletes the repository with the given node ID.
	DeleteRepository(ctx context.Context, repositoryID string) error
}
