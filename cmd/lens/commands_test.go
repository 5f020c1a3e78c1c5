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

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	relaierrors "github.com/sirseerhq/sirseer-lens/internal/errors"
	"github.com/sirseerhq/sirseer-lens/internal/github"
)

type testApp struct {
	*app
	out    *bytes.Buffer
	mock   *github.MockClient
	config string
}

func newTestApp(t *testing.T, mock *github.MockClient) *testApp {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("GITHUB_TOKEN", "test-token")

	var out, errOut bytes.Buffer
	a := newApp(&out, &errOut)
	a.newClient = func(token, endpoint string) github.Client { return mock }
	return &testApp{app: a, out: &out, mock: mock}
}

func (ta *testApp) run(args ...string) error {
	cmd := newRootCommand(ta.app)
	if ta.config != "" {
		args = append([]string{"--config", ta.config}, args...)
	}
	cmd.SetArgs(args)
	cmd.SetOut(ta.stdout)
	cmd.SetErr(ta.stderr)
	return cmd.ExecuteContext(context.Background())
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lens.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReposList_Text(t *testing.T) {
	ta := newTestApp(t, github.NewMockClient())

	require.NoError(t, ta.run("repos", "list"))

	out := ta.out.String()
	assert.Contains(t, out, "hello-world")
	assert.Contains(t, out, "My first repository on GitHub!")
	assert.Contains(t, out, "spoon-knife")
	assert.Contains(t, out, "No description")
	assert.NotContains(t, out, "[Load More]")
}

func TestReposList_NDJSON(t *testing.T) {
	ta := newTestApp(t, github.NewMockClient())

	require.NoError(t, ta.run("repos", "list", "--format", "ndjson"))

	lines := strings.Split(strings.TrimSpace(ta.out.String()), "\n")
	require.Len(t, lines, 2)

	var repo github.Repository
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &repo))
	assert.Equal(t, "hello-world", repo.Name)
	assert.Equal(t, 42, repo.StargazerCount)
}

func TestReposList_YAMLFile(t *testing.T) {
	ta := newTestApp(t, github.NewMockClient())
	path := filepath.Join(t.TempDir(), "repos.yaml")

	require.NoError(t, ta.run("repos", "list", "--format", "yaml", "--output", path))
	assert.Empty(t, ta.out.String())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var names []string
	dec := yaml.NewDecoder(f)
	for {
		var repo github.Repository
		if err := dec.Decode(&repo); errors.Is(err, io.EOF) {
			break
		} else {
			require.NoError(t, err)
		}
		names = append(names, repo.Name)
	}
	assert.Equal(t, []string{"hello-world", "spoon-knife"}, names)
}

func TestReposList_AllPages(t *testing.T) {
	ta := newTestApp(t, github.NewMockClient())
	ta.config = writeConfig(t, "lists:\n  repository_page_size: 1\n")

	require.NoError(t, ta.run("repos", "list", "--all", "--format", "ndjson"))

	lines := strings.Split(strings.TrimSpace(ta.out.String()), "\n")
	assert.Len(t, lines, 2)
	assert.Len(t, ta.mock.CallsTo("list-repositories"), 2)
}

func TestReposList_FirstPageOnly(t *testing.T) {
	ta := newTestApp(t, github.NewMockClient())
	ta.config = writeConfig(t, "lists:\n  repository_page_size: 1\n")

	require.NoError(t, ta.run("repos", "list"))

	assert.Contains(t, ta.out.String(), "hello-world")
	assert.NotContains(t, ta.out.String(), "spoon-knife")
	assert.Contains(t, ta.out.String(), "[Load More]")
}

func TestReposList_FlagErrors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"unknown sort", []string{"repos", "list", "--sort", "forks"}, `invalid sort "forks"`},
		{"unknown direction", []string{"repos", "list", "--direction", "up"}, "up"},
		{"unknown format", []string{"repos", "list", "--format", "csv"}, "csv"},
		{"output needs a file format", []string{"repos", "list", "--output", "x.txt"}, "--output requires"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ta := newTestApp(t, github.NewMockClient())

			err := ta.run(tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Empty(t, ta.mock.Calls())
		})
	}
}

func TestReposList_MissingToken(t *testing.T) {
	ta := newTestApp(t, github.NewMockClient())
	t.Setenv("GITHUB_TOKEN", "")

	err := ta.run("repos", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GitHub token not found")
}

func TestReposList_AuthFailure(t *testing.T) {
	ta := newTestApp(t, github.NewMockClientWithOptions(github.WithAuthFailure()))

	err := ta.run("repos", "list")
	require.Error(t, err)
	assert.ErrorIs(t, err, relaierrors.ErrInvalidToken)
	assert.Equal(t, 2, mapErrorToExitCode(err))
}

func TestReposList_ReducesPageSizeOnComplexity(t *testing.T) {
	mock := github.NewMockClientWithOptions(github.WithHook(func(ctx context.Context, call github.MockCall) error {
		if call.PageSize > 5 {
			return &relaierrors.RemoteError{
				Operation: call.Method,
				Err:       fmt.Errorf("query too large: %w", relaierrors.ErrQueryComplexity),
			}
		}
		return nil
	}))
	ta := newTestApp(t, mock)

	require.NoError(t, ta.run("repos", "list", "--format", "ndjson"))

	var sizes []int
	for _, c := range mock.CallsTo("list-repositories") {
		sizes = append(sizes, c.PageSize)
	}
	assert.Equal(t, []int{20, 10, 5}, sizes)
	assert.Len(t, strings.Split(strings.TrimSpace(ta.out.String()), "\n"), 2)
}

func TestPulls_States(t *testing.T) {
	tests := []struct {
		state   string
		want    []string
		notWant []string
	}{
		{"open", []string{"#1234"}, []string{"#1233"}},
		{"closed", []string{"#1233"}, []string{"#1234"}},
		{"all", []string{"#1234", "#1233"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.state, func(t *testing.T) {
			ta := newTestApp(t, github.NewMockClient())

			require.NoError(t, ta.run("pulls", "octocat/hello-world", "--state", tt.state))

			out := ta.out.String()
			assert.True(t, strings.HasPrefix(out, "octocat/hello-world - Pull Requests\n"))
			for _, s := range tt.want {
				assert.Contains(t, out, s)
			}
			for _, s := range tt.notWant {
				assert.NotContains(t, out, s)
			}
		})
	}
}

func TestPulls_RepositoryPageSizeOverride(t *testing.T) {
	ta := newTestApp(t, github.NewMockClient())
	ta.config = writeConfig(t, `
repositories:
  octocat/hello-world:
    pull_request_page_size: 1
`)

	require.NoError(t, ta.run("pulls", "octocat/hello-world", "--state", "all"))

	calls := ta.mock.CallsTo("list-pull-requests")
	require.Len(t, calls, 1)
	assert.Equal(t, 1, calls[0].PageSize)
	assert.Contains(t, ta.out.String(), "[Load More]")
}

func TestPulls_Errors(t *testing.T) {
	ta := newTestApp(t, github.NewMockClient())

	err := ta.run("pulls", "nobody/nothing")
	require.Error(t, err)
	assert.ErrorIs(t, err, relaierrors.ErrRepoNotFound)
	assert.Equal(t, 2, mapErrorToExitCode(err))

	err = ta.run("pulls", "not-a-repo")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid repository format")

	err = ta.run("pulls", "octocat/hello-world", "--state", "merged")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid state "merged"`)
}

func TestRepos_Mutations(t *testing.T) {
	ta := newTestApp(t, github.NewMockClient())

	require.NoError(t, ta.run("repos", "create", "new-repo", "--description", "fresh", "--private"))
	assert.Contains(t, ta.out.String(), "Created repository new-repo (R_mock1)")
	created := ta.mock.CallsTo("create-repository")
	require.Len(t, created, 1)
	assert.Equal(t, "new-repo", created[0].Name)
	require.NotEmpty(t, ta.mock.Repositories)
	assert.Equal(t, "PRIVATE", ta.mock.Repositories[0].Visibility)

	ta.out.Reset()
	require.NoError(t, ta.run("repos", "edit", "R_mock1", "--description", "updated"))
	assert.Equal(t, "Updated new-repo: updated\n", ta.out.String())

	ta.out.Reset()
	require.NoError(t, ta.run("repos", "edit", "R_mock1", "--description", ""))
	assert.Equal(t, "Updated new-repo: (no description)\n", ta.out.String())

	ta.out.Reset()
	require.NoError(t, ta.run("repos", "delete", "R_mock1"))
	assert.Equal(t, "Deleted repository R_mock1\n", ta.out.String())

	err := ta.run("repos", "delete", "R_mock1")
	require.Error(t, err)
	assert.ErrorIs(t, err, relaierrors.ErrRepoNotFound)
}

func TestRepos_CreateValidation(t *testing.T) {
	ta := newTestApp(t, github.NewMockClient())

	err := ta.run("repos", "create", "bad name!")
	require.Error(t, err)
	assert.ErrorIs(t, err, relaierrors.ErrValidation)
	assert.Equal(t, 2, mapErrorToExitCode(err))
	assert.Empty(t, ta.mock.CallsTo("create-repository"))
}

func TestRepos_EditRequiresDescription(t *testing.T) {
	ta := newTestApp(t, github.NewMockClient())

	err := ta.run("repos", "edit", "R_kgDOAAAAAQ")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "description")
}

func TestSaveMetadata(t *testing.T) {
	ta := newTestApp(t, github.NewMockClient())
	dir := t.TempDir()
	ta.config = writeConfig(t, fmt.Sprintf("defaults:\n  metadata_dir: %s\n", dir))

	require.NoError(t, ta.run("--save-metadata", "repos", "list"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.NotEmpty(t, entries)
}

func TestInvalidConfig(t *testing.T) {
	ta := newTestApp(t, github.NewMockClient())
	ta.config = writeConfig(t, "lists:\n  repository_page_size: 500\n")

	err := ta.run("repos", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
	assert.Empty(t, ta.mock.Calls())
}
