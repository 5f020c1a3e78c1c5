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

package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func post(t *testing.T, s *GitHubServer, query string, variables map[string]interface{}) (int, map[string]interface{}) {
	t.Helper()

	body, err := json.Marshal(GraphQLRequest{Query: query, Variables: variables})
	require.NoError(t, err)

	resp, err := http.Post(s.Endpoint(), "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func path(m map[string]interface{}, keys ...string) interface{} {
	var cur interface{} = m
	for _, k := range keys {
		cur = cur.(map[string]interface{})[k]
	}
	return cur
}

const (
	reposQuery = "query($first:Int!$after:String){viewer{repositories(first: $first, after: $after){nodes{id}}}}"
	pullsQuery = "query($owner:String!$name:String!){repository(owner: $owner, name: $name){pullRequests(first: $first, after: $after, states: $states){nodes{id}}}}"
)

func TestGitHubServer_RepositoryPages(t *testing.T) {
	s := NewGitHubServer(t).AddRepositories(
		NewRepositoryBuilder("one").WithDescription("first"),
		NewRepositoryBuilder("two"),
		NewRepositoryBuilder("three"),
	)

	status, body := post(t, s, reposQuery, map[string]interface{}{"first": 2})
	require.Equal(t, http.StatusOK, status)

	conn := path(body, "data", "viewer", "repositories").(map[string]interface{})
	nodes := conn["nodes"].([]interface{})
	require.Len(t, nodes, 2)
	assert.Equal(t, "first", nodes[0].(map[string]interface{})["description"])
	assert.Nil(t, nodes[1].(map[string]interface{})["description"])
	assert.Equal(t, map[string]interface{}{"hasNextPage": true, "endCursor": "cursor2"}, conn["pageInfo"])

	_, body = post(t, s, reposQuery, map[string]interface{}{"first": 2, "after": "cursor2"})
	conn = path(body, "data", "viewer", "repositories").(map[string]interface{})
	assert.Len(t, conn["nodes"], 1)
	assert.Equal(t, map[string]interface{}{"hasNextPage": false, "endCursor": nil}, conn["pageInfo"])

	assert.Len(t, s.RequestsFor(KindRepositories), 2)
	assert.Equal(t, "cursor2", s.RequestsFor(KindRepositories)[1].After())
}

func TestGitHubServer_PullRequestStates(t *testing.T) {
	s := NewGitHubServer(t).AddPullRequests("octocat", "hello-world",
		NewPullRequestBuilder(3),
		NewPullRequestBuilder(2).WithState("MERGED").WithClosedAt(BaseTime),
		NewPullRequestBuilder(1).WithState("CLOSED").WithAuthor(""),
	)

	_, body := post(t, s, pullsQuery, map[string]interface{}{
		"owner": "octocat", "name": "hello-world", "first": 10,
		"states": []string{"CLOSED", "MERGED"},
	})
	nodes := path(body, "data", "repository", "pullRequests", "nodes").([]interface{})
	require.Len(t, nodes, 2)
	assert.Nil(t, nodes[1].(map[string]interface{})["author"])

	_, body = post(t, s, pullsQuery, map[string]interface{}{"owner": "octocat", "name": "hello-world", "first": 10})
	assert.Len(t, path(body, "data", "repository", "pullRequests", "nodes"), 3)

	_, body = post(t, s, pullsQuery, map[string]interface{}{"owner": "octocat", "name": "missing", "first": 10})
	assert.Contains(t, body, "errors")
}

func TestGitHubServer_Mutations(t *testing.T) {
	s := NewGitHubServer(t).AddRepositories(NewRepositoryBuilder("existing"))

	_, body := post(t, s, "mutation($input:CreateRepositoryInput!){createRepository(input: $input){repository{id}}}",
		map[string]interface{}{"input": map[string]interface{}{"name": "fresh", "visibility": "PRIVATE"}})
	assert.Equal(t, "R_new1", path(body, "data", "createRepository", "repository", "id"))
	assert.Equal(t, []string{"fresh", "existing"}, s.RepositoryNames())

	_, body = post(t, s, "mutation($input:UpdateRepositoryInput!){updateRepository(input: $input){repository{id}}}",
		map[string]interface{}{"input": map[string]interface{}{"repositoryId": "R_existing", "description": "now described"}})
	assert.Equal(t, "now described", path(body, "data", "updateRepository", "repository", "description"))

	_, body = post(t, s, "mutation($input:DeleteRepositoryInput!){deleteRepository(input: $input){clientMutationId}}",
		map[string]interface{}{"input": map[string]interface{}{"repositoryId": "R_new1"}})
	assert.Contains(t, body, "data")
	assert.Equal(t, []string{"existing"}, s.RepositoryNames())

	_, body = post(t, s, "mutation($input:DeleteRepositoryInput!){deleteRepository(input: $input){clientMutationId}}",
		map[string]interface{}{"input": map[string]interface{}{"repositoryId": "R_new1"}})
	assert.Contains(t, body, "errors")
}

func TestGitHubServer_Failure(t *testing.T) {
	s := NewGitHubServer(t).AddRepositories(NewRepositoryBuilder("one"))
	s.SetFailure(func(req GraphQLRequest) (int, interface{}) {
		if req.First() > 1 {
			return http.StatusBadGateway, map[string]interface{}{"message": "upstream"}
		}
		return 0, nil
	})

	status, _ := post(t, s, reposQuery, map[string]interface{}{"first": 5})
	assert.Equal(t, http.StatusBadGateway, status)

	status, _ = post(t, s, reposQuery, map[string]interface{}{"first": 1})
	assert.Equal(t, http.StatusOK, status)
	assert.Len(t, s.Requests(), 2)
}
