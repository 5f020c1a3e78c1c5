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
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shurcooL/githubv4"

	relaierrors "github.com/sirseerhq/sirseer-lens/internal/errors"
)

// MockCall records one invocation of the mock client.
type MockCall struct {
	Method   string
	Owner    string
	Name     string
	PageSize int
	After    string
	States   []githubv4.PullRequestState
}

// MockClient is an in-memory implementation of the GitHub Client interface
// for tests. Lists are served in pages whose cursors are "cursor<offset>".
// It is safe for concurrent use.
type MockClient struct {
	mu sync.Mutex

	// Repositories owned by the viewer.
	Repositories []Repository

	// PullRequests keyed by "owner/name".
	PullRequests map[string][]PullRequest

	// Error to return from every call
	Error error

	// Behavior flags
	ShouldFailAuth    bool
	ShouldFailNetwork bool

	// Hook runs before every call is served; a non-nil error is returned
	// as-is. Tests use it to block or to fail selected calls.
	Hook func(ctx context.Context, call MockCall) error

	calls  []MockCall
	nextID int
}

// NewMockClient creates a new mock client with default test data
func NewMockClient() *MockClient {
	return &MockClient{
		Repositories: generateTestRepositories(),
		PullRequests: map[string][]PullRequest{
			"octocat/hello-world": generateTestPRs(),
		},
	}
}

// MockClientOption allows configuring the mock client
type MockClientOption func(*MockClient)

// WithRepositories sets the viewer's repositories
func WithRepositories(repos []Repository) MockClientOption {
	return func(m *MockClient) {
		m.Repositories = repos
	}
}

// WithPullRequests sets the pull requests of one repository
func WithPullRequests(owner, name string, prs []PullRequest) MockClientOption {
	return func(m *MockClient) {
		if m.PullRequests == nil {
			m.PullRequests = make(map[string][]PullRequest)
		}
		m.PullRequests[owner+"/"+name] = prs
	}
}

// WithError makes the client return a specific error
func WithError(err error) MockClientOption {
	return func(m *MockClient) {
		m.Error = err
	}
}

// WithAuthFailure makes the client simulate authentication failure
func WithAuthFailure() MockClientOption {
	return func(m *MockClient) {
		m.ShouldFailAuth = true
	}
}

// WithHook installs a hook that runs before every call
func WithHook(hook func(ctx context.Context, call MockCall) error) MockClientOption {
	return func(m *MockClient) {
		m.Hook = hook
	}
}

// NewMockClientWithOptions creates a mock client with options
func NewMockClientWithOptions(opts ...MockClientOption) *MockClient {
	mock := NewMockClient()
	for _, opt := range opts {
		opt(mock)
	}
	return mock
}

// Calls returns a copy of the recorded calls.
func (m *MockClient) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]MockCall(nil), m.calls...)
}

// CallsTo returns the recorded calls of one method.
func (m *MockClient) CallsTo(method string) []MockCall {
	var out []MockCall
	for _, c := range m.Calls() {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

// begin records the call and runs the failure simulation.
func (m *MockClient) begin(ctx context.Context, call MockCall) error {
	m.mu.Lock()
	m.calls = append(m.calls, call)
	hook := m.Hook
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return &relaierrors.TransportError{Operation: call.Method, Err: err}
	}
	if hook != nil {
		if err := hook(ctx, call); err != nil {
			return err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	switch {
	case m.ShouldFailAuth:
		return &relaierrors.RemoteError{Operation: call.Method, Err: fmt.Errorf("authentication failed: %w", relaierrors.ErrInvalidToken)}
	case m.ShouldFailNetwork:
		return &relaierrors.TransportError{Operation: call.Method, Err: fmt.Errorf("network timeout: %w", relaierrors.ErrNetworkFailure)}
	case m.Error != nil:
		return m.Error
	}
	return nil
}

// window returns the [start, end) slice bounds for a page and its next cursor.
func window(total int, after string, pageSize, def int) (start, end int, next string, err error) {
	pageSize = clampPageSize(pageSize, def)
	if after != "" {
		start, err = strconv.Atoi(strings.TrimPrefix(after, "cursor"))
		if err != nil || start < 0 || start > total {
			return 0, 0, "", fmt.Errorf("invalid cursor %q", after)
		}
	}
	end = start + pageSize
	if end >= total {
		return start, total, "", nil
	}
	return start, end, fmt.Sprintf("cursor%d", end), nil
}

// ListRepositories implements the Client interface
func (m *MockClient) ListRepositories(ctx context.Context, opts RepositoryListOptions) (*RepositoryPage, error) {
	call := MockCall{Method: opListRepositories, PageSize: opts.PageSize, After: opts.After}
	if err := m.begin(ctx, call); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	start, end, next, err := window(len(m.Repositories), opts.After, opts.PageSize, defaultRepositoryPageSize)
	if err != nil {
		return nil, &relaierrors.RemoteError{Operation: call.Method, Err: err}
	}

	return &RepositoryPage{
		Repositories: append([]Repository(nil), m.Repositories[start:end]...),
		HasNextPage:  next != "",
		EndCursor:    next,
	}, nil
}

// ListPullRequests implements the Client interface
func (m *MockClient) ListPullRequests(ctx context.Context, owner, name string, opts PullRequestListOptions) (*PullRequestPage, error) {
	call := MockCall{
		Method:   opListPullRequests,
		Owner:    owner,
		Name:     name,
		PageSize: opts.PageSize,
		After:    opts.After,
		States:   opts.States,
	}
	if err := m.begin(ctx, call); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	all, ok := m.PullRequests[owner+"/"+name]
	if !ok {
		return nil, &relaierrors.RemoteError{
			Operation: call.Method,
			Err:       fmt.Errorf("repository '%s/%s' not found: %w", owner, name, relaierrors.ErrRepoNotFound),
		}
	}

	var filtered []PullRequest
	for _, pr := range all {
		if matchesState(pr.State, opts.States) {
			filtered = append(filtered, pr)
		}
	}

	start, end, next, err := window(len(filtered), opts.After, opts.PageSize, defaultPullRequestPageSize)
	if err != nil {
		return nil, &relaierrors.RemoteError{Operation: call.Method, Err: err}
	}

	return &PullRequestPage{
		PullRequests: append([]PullRequest(nil), filtered[start:end]...),
		HasNextPage:  next != "",
		EndCursor:    next,
	}, nil
}

func matchesState(state string, states []githubv4.PullRequestState) bool {
	if len(states) == 0 {
		return true
	}
	for _, s := range states {
		if strings.EqualFold(string(s), state) {
			return true
		}
	}
	return false
}

// CreateRepository implements the Client interface
func (m *MockClient) CreateRepository(ctx context.Context, req CreateRepositoryRequest) (*Repository, error) {
	if err := m.begin(ctx, MockCall{Method: opCreateRepository, Name: req.Name}); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	repo := Repository{
		ID:         fmt.Sprintf("R_mock%d", m.nextID),
		Name:       req.Name,
		URL:        "https://github.com/octocat/" + req.Name,
		UpdatedAt:  time.Now().UTC(),
		Visibility: string(req.Visibility),
		Owner:      "octocat",
	}
	if req.Description != "" {
		d := req.Description
		repo.Description = &d
	}
	m.Repositories = append([]Repository{repo}, m.Repositories...)
	return &repo, nil
}

// UpdateRepository implements the Client interface
func (m *MockClient) UpdateRepository(ctx context.Context, req UpdateRepositoryRequest) (*Repository, error) {
	if err := m.begin(ctx, MockCall{Method: opUpdateRepository, Name: req.RepositoryID}); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.Repositories {
		if m.Repositories[i].ID != req.RepositoryID {
			continue
		}
		if req.Description != nil {
			d := *req.Description
			m.Repositories[i].Description = &d
		}
		repo := m.Repositories[i]
		return &repo, nil
	}
	return nil, m.notFound(opUpdateRepository, req.RepositoryID)
}

// DeleteRepository implements the Client interface
func (m *MockClient) DeleteRepository(ctx context.Context, repositoryID string) error {
	if err := m.begin(ctx, MockCall{Method: opDeleteRepository, Name: repositoryID}); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.Repositories {
		if m.Repositories[i].ID == repositoryID {
			m.Repositories = append(m.Repositories[:i], m.Repositories[i+1:]...)
			return nil
		}
	}
	return m.notFound(opDeleteRepository, repositoryID)
}

func (m *MockClient) notFound(op, id string) error {
	return &relaierrors.RemoteError{
		Operation: op,
		Err:       fmt.Errorf("Could not resolve to a node with the global id of '%s': %w", id, relaierrors.ErrRepoNotFound),
	}
}

func generateTestRepositories() []Repository {
	now := time.Now().UTC()
	desc := "My first repository on GitHub!"

	return []Repository{
		{
			ID:             "R_kgDOAAAAAQ",
			Name:           "hello-world",
			Description:    &desc,
			URL:            "https://github.com/octocat/hello-world",
			StargazerCount: 42,
			ForkCount:      7,
			UpdatedAt:      now,
			Visibility:     "PUBLIC",
			Owner:          "octocat",
		},
		{
			ID:             "R_kgDOAAAAAg",
			Name:           "spoon-knife",
			URL:            "https://github.com/octocat/spoon-knife",
			StargazerCount: 12,
			ForkCount:      100,
			UpdatedAt:      now.Add(-24 * time.Hour),
			Visibility:     "PUBLIC",
			Owner:          "octocat",
		},
	}
}

// generateTestPRs creates sample pull request data for testing
func generateTestPRs() []PullRequest {
	now := time.Now().UTC()
	yesterday := now.Add(-24 * time.Hour)
	lastWeek := now.Add(-7 * 24 * time.Hour)
	approved := "APPROVED"

	return []PullRequest{
		{
			ID:             "PR_1234",
			Number:         1234,
			Title:          "Add new feature for data processing",
			State:          "OPEN",
			CreatedAt:      lastWeek,
			URL:            "https://github.com/octocat/hello-world/pull/1234",
			Author:         &Author{Login: "alice"},
			ReviewDecision: &approved,
			Comments:       3,
			Commits:        5,
		},
		{
			ID:        "PR_1233",
			Number:    1233,
			Title:     "Fix memory leak in parser",
			State:     "MERGED",
			CreatedAt: lastWeek,
			ClosedAt:  &yesterday,
			URL:       "https://github.com/octocat/hello-world/pull/1233",
			Author:    &Author{Login: "bob"},
			Comments:  1,
			Commits:   2,
		},
		{
			ID:        "PR_1232",
			Number:    1232,
			Title:     "Update documentation",
			State:     "CLOSED",
			CreatedAt: yesterday,
			ClosedAt:  &now,
			URL:       "https://github.com/octocat/hello-world/pull/1232",
			Author:    &Author{Login: "charlie"},
		},
	}
}
