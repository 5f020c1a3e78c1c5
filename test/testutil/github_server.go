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

// Package testutil provides common test helpers for sirseer-lens
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"
)

// Request kinds recognized by GitHubServer.
const (
	KindRepositories     = "repositories"
	KindPullRequests     = "pullRequests"
	KindCreateRepository = "createRepository"
	KindUpdateRepository = "updateRepository"
	KindDeleteRepository = "deleteRepository"
)

// GraphQLRequest is one decoded request body.
type GraphQLRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables"`
}

// Kind reports which list or mutation the request targets.
func (r GraphQLRequest) Kind() string {
	switch {
	case strings.Contains(r.Query, "createRepository("):
		return KindCreateRepository
	case strings.Contains(r.Query, "updateRepository("):
		return KindUpdateRepository
	case strings.Contains(r.Query, "deleteRepository("):
		return KindDeleteRepository
	case strings.Contains(r.Query, "pullRequests("):
		return KindPullRequests
	case strings.Contains(r.Query, "viewer"):
		return KindRepositories
	default:
		return ""
	}
}

// First returns the page size variable.
func (r GraphQLRequest) First() int {
	f, _ := r.Variables["first"].(float64)
	return int(f)
}

// After returns the cursor variable, or "" for the first page.
func (r GraphQLRequest) After() string {
	s, _ := r.Variables["after"].(string)
	return s
}

// FailureFunc decides whether a request fails. A zero status lets the
// request through.
type FailureFunc func(req GraphQLRequest) (status int, body interface{})

// GitHubServer is an in-memory GitHub GraphQL endpoint serving the viewer's
// repositories, repository pull requests and the repository mutations.
// Pages use "cursor<offset>" cursors.
type GitHubServer struct {
	*httptest.Server

	mu       sync.Mutex
	repos    []map[string]interface{}
	pulls    map[string][]map[string]interface{}
	requests []GraphQLRequest
	failure  FailureFunc
	nextID   int
}

// NewGitHubServer starts an empty server that is closed with the test.
func NewGitHubServer(t *testing.T) *GitHubServer {
	t.Helper()

	s := &GitHubServer{pulls: make(map[string][]map[string]interface{})}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

// Endpoint returns the GraphQL URL to hand to the client.
func (s *GitHubServer) Endpoint() string {
	return s.URL + "/graphql"
}

// AddRepositories appends viewer repositories.
func (s *GitHubServer) AddRepositories(repos ...*RepositoryBuilder) *GitHubServer {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range repos {
		s.repos = append(s.repos, r.Build())
	}
	return s
}

// AddPullRequests appends pull requests to owner/name, creating the
// repository if needed.
func (s *GitHubServer) AddPullRequests(owner, name string, prs ...*PullRequestBuilder) *GitHubServer {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := owner + "/" + name
	if _, ok := s.pulls[key]; !ok {
		s.pulls[key] = nil
	}
	for _, pr := range prs {
		s.pulls[key] = append(s.pulls[key], pr.Build(owner, name))
	}
	return s
}

// SetFailure installs a failure policy consulted before every request.
func (s *GitHubServer) SetFailure(fn FailureFunc) {
	s.mu.Lock()
	s.failure = fn
	s.mu.Unlock()
}

// Requests returns a copy of every request served so far.
func (s *GitHubServer) Requests() []GraphQLRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]GraphQLRequest(nil), s.requests...)
}

// RequestsFor returns the requests of one kind.
func (s *GitHubServer) RequestsFor(kind string) []GraphQLRequest {
	var out []GraphQLRequest
	for _, r := range s.Requests() {
		if r.Kind() == kind {
			out = append(out, r)
		}
	}
	return out
}

// RepositoryNames returns the names of the viewer repositories in order.
func (s *GitHubServer) RepositoryNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.repos))
	for _, r := range s.repos {
		names = append(names, r["name"].(string))
	}
	return names
}

// GraphQLErrors builds a 200 response body carrying GraphQL errors.
func GraphQLErrors(messages ...string) map[string]interface{} {
	errs := make([]interface{}, 0, len(messages))
	for _, m := range messages {
		errs = append(errs, map[string]interface{}{"message": m})
	}
	return map[string]interface{}{"errors": errs}
}

func (s *GitHubServer) serve(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/graphql" || r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req GraphQLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"message": "Problems parsing JSON"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, req)

	if s.failure != nil {
		if status, body := s.failure(req); status != 0 {
			writeJSON(w, status, body)
			return
		}
	}

	var body interface{}
	switch req.Kind() {
	case KindRepositories:
		body = s.repositoriesPage(req)
	case KindPullRequests:
		body = s.pullRequestsPage(req)
	case KindCreateRepository:
		body = s.createRepository(req)
	case KindUpdateRepository:
		body = s.updateRepository(req)
	case KindDeleteRepository:
		body = s.deleteRepository(req)
	default:
		body = GraphQLErrors("unsupported query")
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *GitHubServer) repositoriesPage(req GraphQLRequest) interface{} {
	nodes, info, err := page(s.repos, req)
	if err != nil {
		return GraphQLErrors(err.Error())
	}
	return data(map[string]interface{}{
		"viewer": map[string]interface{}{
			"repositories": map[string]interface{}{"nodes": nodes, "pageInfo": info},
		},
	})
}

func (s *GitHubServer) pullRequestsPage(req GraphQLRequest) interface{} {
	owner, _ := req.Variables["owner"].(string)
	name, _ := req.Variables["name"].(string)

	all, ok := s.pulls[owner+"/"+name]
	if !ok {
		return GraphQLErrors(fmt.Sprintf("Could not resolve to a Repository with the name '%s/%s'.", owner, name))
	}

	states := map[string]bool{}
	if list, ok := req.Variables["states"].([]interface{}); ok {
		for _, st := range list {
			states[fmt.Sprint(st)] = true
		}
	}
	var filtered []map[string]interface{}
	for _, pr := range all {
		if len(states) == 0 || states[pr["state"].(string)] {
			filtered = append(filtered, pr)
		}
	}

	nodes, info, err := page(filtered, req)
	if err != nil {
		return GraphQLErrors(err.Error())
	}
	return data(map[string]interface{}{
		"repository": map[string]interface{}{
			"pullRequests": map[string]interface{}{"nodes": nodes, "pageInfo": info},
		},
	})
}

func (s *GitHubServer) createRepository(req GraphQLRequest) interface{} {
	input := inputOf(req)
	name, _ := input["name"].(string)

	s.nextID++
	b := NewRepositoryBuilder(name).
		WithID(fmt.Sprintf("R_new%d", s.nextID)).
		WithUpdatedAt(time.Now().UTC())
	if d, ok := input["description"].(string); ok && d != "" {
		b.WithDescription(d)
	}
	if v, ok := input["visibility"].(string); ok {
		b.WithVisibility(v)
	}
	repo := b.Build()
	s.repos = append([]map[string]interface{}{repo}, s.repos...)

	return data(map[string]interface{}{
		"createRepository": map[string]interface{}{"repository": repo},
	})
}

func (s *GitHubServer) updateRepository(req GraphQLRequest) interface{} {
	input := inputOf(req)
	id, _ := input["repositoryId"].(string)

	for _, repo := range s.repos {
		if repo["id"] != id {
			continue
		}
		if d, ok := input["description"]; ok {
			repo["description"] = d
		}
		return data(map[string]interface{}{
			"updateRepository": map[string]interface{}{"repository": repo},
		})
	}
	return nodeNotFound(id)
}

func (s *GitHubServer) deleteRepository(req GraphQLRequest) interface{} {
	id, _ := inputOf(req)["repositoryId"].(string)

	for i, repo := range s.repos {
		if repo["id"] == id {
			s.repos = append(s.repos[:i], s.repos[i+1:]...)
			return data(map[string]interface{}{
				"deleteRepository": map[string]interface{}{"clientMutationId": nil},
			})
		}
	}
	return nodeNotFound(id)
}

func page(all []map[string]interface{}, req GraphQLRequest) ([]map[string]interface{}, map[string]interface{}, error) {
	start := 0
	if after := req.After(); after != "" {
		n, err := strconv.Atoi(strings.TrimPrefix(after, "cursor"))
		if err != nil || n < 0 || n > len(all) {
			return nil, nil, fmt.Errorf("invalid cursor %q", after)
		}
		start = n
	}

	size := req.First()
	if size <= 0 {
		size = 20
	}
	end := start + size
	hasNext := end < len(all)
	if !hasNext {
		end = len(all)
	}

	var cursor interface{}
	if hasNext {
		cursor = fmt.Sprintf("cursor%d", end)
	}

	nodes := append([]map[string]interface{}{}, all[start:end]...)
	return nodes, map[string]interface{}{"hasNextPage": hasNext, "endCursor": cursor}, nil
}

func inputOf(req GraphQLRequest) map[string]interface{} {
	input, _ := req.Variables["input"].(map[string]interface{})
	return input
}

func data(v map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{"data": v}
}

func nodeNotFound(id string) map[string]interface{} {
	return GraphQLErrors(fmt.Sprintf("Could not resolve to a node with the global id of '%s'", id))
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
