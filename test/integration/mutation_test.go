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

package integration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sirseerhq/sirseer-lens/test/testutil"
)

func TestMutations_CreateEditDelete(t *testing.T) {
	server := testutil.NewGitHubServer(t).AddRepositories(testutil.NewRepositoryBuilder("existing"))

	result := testutil.RunWithServer(t, server.Endpoint(), "repos", "create", "fresh", "--description", "brand new", "--private")
	testutil.RequireSuccess(t, result)
	assert.Contains(t, result.Stdout, "Created repository fresh (R_new1)")

	creates := server.RequestsFor(testutil.KindCreateRepository)
	require.Len(t, creates, 1)
	assert.Equal(t, map[string]interface{}{
		"name":        "fresh",
		"description": "brand new",
		"visibility":  "PRIVATE",
	}, creates[0].Variables["input"])

	result = testutil.RunWithServer(t, server.Endpoint(), "repos", "edit", "R_existing", "--description", "described")
	testutil.RequireSuccess(t, result)
	assert.Equal(t, "Updated existing: described\n", result.Stdout)

	result = testutil.RunWithServer(t, server.Endpoint(), "repos", "delete", "R_new1")
	testutil.RequireSuccess(t, result)
	assert.Equal(t, "Deleted repository R_new1\n", result.Stdout)
	assert.Equal(t, []string{"existing"}, server.RepositoryNames())

	result = testutil.RunWithServer(t, server.Endpoint(), "repos", "list")
	testutil.RequireSuccess(t, result)
	assert.Contains(t, result.Stdout, "described")
	assert.NotContains(t, result.Stdout, "fresh")
}

func TestMutations_ValidationHappensLocally(t *testing.T) {
	server := testutil.NewGitHubServer(t)

	result := testutil.RunWithServer(t, server.Endpoint(), "repos", "create", "not valid!")
	testutil.RequireExit(t, result, 2, "Repository name can only contain letters, numbers, hyphens, and underscores")
	assert.Empty(t, server.Requests())
}

func TestMutations_DeleteUnknown(t *testing.T) {
	server := testutil.NewGitHubServer(t)

	result := testutil.RunWithServer(t, server.Endpoint(), "repos", "delete", "R_missing")
	testutil.RequireExit(t, result, 2, "R_missing")
}
