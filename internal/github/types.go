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

// Package github provides types and interfaces for interacting with the GitHub API.
package github

import (
	"time"

	"github.com/shurcooL/githubv4"
)

// Repository is a repository owned by the authenticated viewer.
// Description is nil when GitHub reports no description.
type Repository struct {
	ID             string    `json:"id" yaml:"id"`
	Name           string    `json:"name" yaml:"name"`
	Description    *string   `json:"description" yaml:"description"`
	URL            string    `json:"url" yaml:"url"`
	StargazerCount int       `json:"stargazer_count" yaml:"stargazer_count"`
	ForkCount      int       `json:"fork_count" yaml:"fork_count"`
	UpdatedAt      time.Time `json:"updated_at" yaml:"updated_at"`
	Visibility     string    `json:"visibility,omitempty" yaml:"visibility,omitempty"`
	Owner          string    `json:"owner" yaml:"owner"`
}

// PullRequest represents a GitHub pull request as shown in a list row.
// Nullable GraphQL fields are pointers: Author is nil for deleted
// accounts and ReviewDecision is nil when no review is required.
type PullRequest struct {
	ID             string     `json:"id" yaml:"id"`
	Number         int        `json:"number" yaml:"number"`
	Title          string     `json:"title" yaml:"title"`
	State          string     `json:"state" yaml:"state"`
	CreatedAt      time.Time  `json:"created_at" yaml:"created_at"`
	ClosedAt       *time.Time `json:"closed_at,omitempty" yaml:"closed_at,omitempty"`
	URL            string     `json:"url" yaml:"url"`
	Author         *Author    `json:"author,omitempty" yaml:"author,omitempty"`
	ReviewDecision *string    `json:"review_decision,omitempty" yaml:"review_decision,omitempty"`
	Comments       int        `json:"comments" yaml:"comments"`
	Commits        int        `json:"commits" yaml:"commits"`
}

// Author represents the author of a pull request.
type Author struct {
	Login     string `json:"login" yaml:"login"`
	AvatarURL string `json:"avatar_url,omitempty" yaml:"avatar_url,omitempty"`
}

// RepositoryPage is one page of the viewer's repositories.
type RepositoryPage struct {
	Repositories []Repository
	HasNextPage  bool
	EndCursor    string
}

// PullRequestPage represents a page of pull requests from a GraphQL query.
// EndCursor is only meaningful when HasNextPage is true.
type PullRequestPage struct {
	PullRequests []PullRequest
	HasNextPage  bool
	EndCursor    string
}

// RepositoryListOptions configures viewer.repositories.
type RepositoryListOptions struct {
	// PageSize controls how many repositories to fetch per page.
	// Defaults to 20. Maximum is 100 per GitHub's API limits.
	PageSize int

	// After is the cursor for pagination. Empty fetches the first page.
	After string

	// OrderBy is sent as-is; nil leaves ordering to GitHub.
	OrderBy *githubv4.RepositoryOrder
}

// PullRequestListOptions configures repository.pullRequests.
type PullRequestListOptions struct {
	// PageSize controls how many PRs to fetch per page.
	// Defaults to 10. Maximum is 100 per GitHub's API limits.
	PageSize int

	// After is the cursor for pagination. Empty fetches the first page.
	After string

	// States restricts the result; empty means every state.
	States []githubv4.PullRequestState

	// OrderBy is sent as-is; nil leaves ordering to GitHub.
	OrderBy *githubv4.IssueOrder
}

// CreateRepositoryRequest describes a repository to create for the viewer.
type CreateRepositoryRequest struct {
	Name        string
	Description string
	Visibility  githubv4.RepositoryVisibility
}

// UpdateRepositoryRequest changes mutable repository fields.
// A nil Description leaves the description unchanged.
type UpdateRepositoryRequest struct {
	RepositoryID string
	Description  *string
}

// Default values for fetch operations
const (
	defaultRepositoryPageSize  = 20
	defaultPullRequestPageSize = 10
	maxPageSize                = 100
)

// clampPageSize applies the default and GitHub's upper bound.
func clampPageSize(size, def int) int {
	if size <= 0 {
		return def
	}
	if size > maxPageSize {
		return maxPageSize
	}
	return size
}
