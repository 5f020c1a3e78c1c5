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

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shurcooL/githubv4"
	"github.com/shurcooL/graphql"

	relaierrors "github.com/sirseerhq/sirseer-lens/internal/errors"
	"github.com/sirseerhq/sirseer-lens/internal/giterror"
)

// Operation names used in error messages and logs.
const (
	opListRepositories = "list-repositories"
	opListPullRequests = "list-pull-requests"
	opCreateRepository = "create-repository"
	opUpdateRepository = "update-repository"
	opDeleteRepository = "delete-repository"
)

// GraphQLClient implements the GitHub Client interface using GraphQL API.
// Responses are decoded into typed structs at this boundary; callers never
// see raw JSON.
type GraphQLClient struct {
	client    *graphql.Client
	inspector giterror.Inspector
}

// NewGraphQLClient creates a new GitHub GraphQL client with the provided token and endpoint.
// The client is configured with:
//   - Authentication via the provided token
//   - Custom GraphQL endpoint URL (e.g., for GitHub Enterprise)
//   - Response size limiting to prevent memory issues
//   - User-Agent header for API compliance
func NewGraphQLClient(token, endpoint string, options ...ClientOption) *GraphQLClient {
	var opts clientOptions
	for _, o := range options {
		o(&opts)
	}

	return &GraphQLClient{
		client:    graphql.NewClient(endpoint, newHTTPClient(token, opts)),
		inspector: giterror.NewInspector(),
	}
}

// pageInfo is the Relay connection cursor block.
type pageInfo struct {
	HasNextPage graphql.Boolean
	EndCursor   graphql.String
}

type repositoryNode struct {
	ID             graphql.String
	Name           graphql.String
	Description    *graphql.String
	URL            graphql.String
	StargazerCount graphql.Int
	ForkCount      graphql.Int
	UpdatedAt      time.Time
	Visibility     graphql.String
	Owner          struct {
		Login graphql.String
	}
}

type pullRequestNode struct {
	ID        graphql.String
	Number    graphql.Int
	Title     graphql.String
	State     graphql.String
	CreatedAt time.Time
	ClosedAt  *time.Time
	URL       graphql.String
	Author    *struct {
		Login     graphql.String
		AvatarURL graphql.String
	}
	ReviewDecision *graphql.String
	Comments       struct {
		TotalCount graphql.Int
	}
	Commits struct {
		TotalCount graphql.Int
	}
}

// DeleteRepositoryInput is the input of the deleteRepository mutation,
// which githubv4 does not generate.
type DeleteRepositoryInput struct {
	RepositoryID     githubv4.ID      `json:"repositoryId"`
	ClientMutationID *githubv4.String `json:"clientMutationId,omitempty"`
}

// cursor returns the $after variable; nil requests the first page.
func cursor(after string) *graphql.String {
	if after == "" {
		return nil
	}
	return graphql.NewString(graphql.String(after))
}

// ListRepositories fetches one page of viewer.repositories.
func (c *GraphQLClient) ListRepositories(ctx context.Context, opts RepositoryListOptions) (*RepositoryPage, error) {
	var query struct {
		Viewer struct {
			Repositories struct {
				Nodes    []repositoryNode
				PageInfo pageInfo
			} `graphql:"repositories(first: $first, after: $after, orderBy: $orderBy)"`
		}
	}

	variables := map[string]interface{}{
		"first":   graphql.Int(clampPageSize(opts.PageSize, defaultRepositoryPageSize)),
		"after":   cursor(opts.After),
		"orderBy": opts.OrderBy,
	}

	if err := c.client.Query(ctx, &query, variables); err != nil {
		return nil, c.mapError(opListRepositories, "viewer repositories", err)
	}

	conn := query.Viewer.Repositories
	page := &RepositoryPage{
		Repositories: make([]Repository, 0, len(conn.Nodes)),
		HasNextPage:  bool(conn.PageInfo.HasNextPage),
		EndCursor:    string(conn.PageInfo.EndCursor),
	}
	for i := range conn.Nodes {
		page.Repositories = append(page.Repositories, convertRepository(&conn.Nodes[i]))
	}

	return page, nil
}

// ListPullRequests fetches one page of repository.pullRequests.
func (c *GraphQLClient) ListPullRequests(ctx context.Context, owner, name string, opts PullRequestListOptions) (*PullRequestPage, error) {
	var query struct {
		Repository struct {
			PullRequests struct {
				Nodes    []pullRequestNode
				PageInfo pageInfo
			} `graphql:"pullRequests(first: $first, after: $after, states: $states, orderBy: $orderBy)"`
		} `graphql:"repository(owner: $owner, name: $name)"`
	}

	var states *[]githubv4.PullRequestState
	if len(opts.States) > 0 {
		s := append([]githubv4.PullRequestState(nil), opts.States...)
		states = &s
	}

	variables := map[string]interface{}{
		"owner":   graphql.String(owner),
		"name":    graphql.String(name),
		"first":   graphql.Int(clampPageSize(opts.PageSize, defaultPullRequestPageSize)),
		"after":   cursor(opts.After),
		"states":  states,
		"orderBy": opts.OrderBy,
	}

	if err := c.client.Query(ctx, &query, variables); err != nil {
		return nil, c.mapError(opListPullRequests, fmt.Sprintf("repository '%s/%s'", owner, name), err)
	}

	conn := query.Repository.PullRequests
	page := &PullRequestPage{
		PullRequests: make([]PullRequest, 0, len(conn.Nodes)),
		HasNextPage:  bool(conn.PageInfo.HasNextPage),
		EndCursor:    string(conn.PageInfo.EndCursor),
	}
	for i := range conn.Nodes {
		page.PullRequests = append(page.PullRequests, convertPullRequest(&conn.Nodes[i]))
	}

	return page, nil
}

// CreateRepository runs the createRepository mutation.
func (c *GraphQLClient) CreateRepository(ctx context.Context, req CreateRepositoryRequest) (*Repository, error) {
	var mutation struct {
		CreateRepository struct {
			Repository repositoryNode
		} `graphql:"createRepository(input: $input)"`
	}

	visibility := req.Visibility
	if visibility == "" {
		visibility = githubv4.RepositoryVisibilityPublic
	}
	input := githubv4.CreateRepositoryInput{
		Name:       githubv4.String(req.Name),
		Visibility: visibility,
	}
	if req.Description != "" {
		input.Description = githubv4.NewString(githubv4.String(req.Description))
	}

	if err := c.client.Mutate(ctx, &mutation, map[string]interface{}{"input": input}); err != nil {
		return nil, c.mapError(opCreateRepository, fmt.Sprintf("repository '%s'", req.Name), err)
	}

	repo := convertRepository(&mutation.CreateRepository.Repository)
	return &repo, nil
}

// UpdateRepository runs the updateRepository mutation.
func (c *GraphQLClient) UpdateRepository(ctx context.Context, req UpdateRepositoryRequest) (*Repository, error) {
	var mutation struct {
		UpdateRepository struct {
			Repository repositoryNode
		} `graphql:"updateRepository(input: $input)"`
	}

	input := githubv4.UpdateRepositoryInput{
		RepositoryID: githubv4.ID(req.RepositoryID),
	}
	if req.Description != nil {
		input.Description = githubv4.NewString(githubv4.String(*req.Description))
	}

	if err := c.client.Mutate(ctx, &mutation, map[string]interface{}{"input": input}); err != nil {
		return nil, c.mapError(opUpdateRepository, fmt.Sprintf("repository %s", req.RepositoryID), err)
	}

	repo := convertRepository(&mutation.UpdateRepository.Repository)
	return &repo, nil
}

// DeleteRepository runs the deleteRepository mutation.
func (c *GraphQLClient) DeleteRepository(ctx context.Context, repositoryID string) error {
	var mutation struct {
		DeleteRepository struct {
			ClientMutationID *graphql.String
		} `graphql:"deleteRepository(input: $input)"`
	}

	input := DeleteRepositoryInput{RepositoryID: githubv4.ID(repositoryID)}
	if err := c.client.Mutate(ctx, &mutation, map[string]interface{}{"input": input}); err != nil {
		return c.mapError(opDeleteRepository, fmt.Sprintf("repository %s", repositoryID), err)
	}
	return nil
}

// mapError maps GraphQL errors to our domain errors with actionable messages,
// wrapped in the transport or remote taxonomy type.
func (c *GraphQLClient) mapError(operation, subject string, err error) error {
	if err == nil {
		return nil
	}

	var mapped error
	switch {
	case errors.Is(err, context.Canceled):
		mapped = err

	// Check rate limit first, as 403 can be both auth and rate limit
	case c.inspector.IsRateLimitError(err):
		mapped = fmt.Errorf("GitHub API rate limit exceeded. Please wait before retrying: %w", relaierrors.ErrRateLimit)

	case c.inspector.IsAuthError(err):
		mapped = fmt.Errorf("GitHub API authentication failed. Please provide a valid token via --token flag or GITHUB_TOKEN environment variable: %w", relaierrors.ErrInvalidToken)

	case c.inspector.IsNotFoundError(err):
		mapped = fmt.Errorf("%s not found. Please check the name and your access permissions: %w", subject, relaierrors.ErrRepoNotFound)

	case c.inspector.IsComplexityError(err):
		mapped = fmt.Errorf("GraphQL query complexity exceeded. Reducing page size may help: %w", relaierrors.ErrQueryComplexity)

	case c.inspector.IsNetworkError(err):
		mapped = fmt.Errorf("network error connecting to GitHub API. Please check your internet connection and try again: %w: %w", relaierrors.ErrNetworkFailure, err)

	case c.inspector.IsServerError(err):
		mapped = fmt.Errorf("GitHub API unavailable (status %d): %w", giterror.StatusCode(err), relaierrors.ErrNetworkFailure)

	default:
		mapped = err
	}

	if giterror.Classify(c.inspector, err) == relaierrors.KindTransport {
		return &relaierrors.TransportError{Operation: operation, Err: mapped}
	}
	return &relaierrors.RemoteError{Operation: operation, Err: mapped}
}

func convertRepository(n *repositoryNode) Repository {
	repo := Repository{
		ID:             string(n.ID),
		Name:           string(n.Name),
		URL:            string(n.URL),
		StargazerCount: int(n.StargazerCount),
		ForkCount:      int(n.ForkCount),
		UpdatedAt:      n.UpdatedAt,
		Visibility:     string(n.Visibility),
		Owner:          string(n.Owner.Login),
	}
	if n.Description != nil {
		d := string(*n.Description)
		repo.Description = &d
	}
	return repo
}

func convertPullRequest(n *pullRequestNode) PullRequest {
	pr := PullRequest{
		ID:        string(n.ID),
		Number:    int(n.Number),
		Title:     string(n.Title),
		State:     string(n.State),
		CreatedAt: n.CreatedAt,
		ClosedAt:  n.ClosedAt,
		URL:       string(n.URL),
		Comments:  int(n.Comments.TotalCount),
		Commits:   int(n.Commits.TotalCount),
	}
	if n.Author != nil {
		pr.Author = &Author{
			Login:     string(n.Author.Login),
			AvatarURL: string(n.Author.AvatarURL),
		}
	}
	if n.ReviewDecision != nil {
		d := string(*n.ReviewDecision)
		pr.ReviewDecision = &d
	}
	return pr
}
