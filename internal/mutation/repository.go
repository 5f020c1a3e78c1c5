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

package mutation

import (
	"context"
	"strings"

	"github.com/shurcooL/githubv4"

	"github.com/sirseerhq/sirseer-lens/internal/github"
	"github.com/sirseerhq/sirseer-lens/internal/query"
	"github.com/sirseerhq/sirseer-lens/internal/validate"
)

// viewerRepositories is the affect-list shared by every repository mutation:
// all chains of the viewer's repository list, whatever their sort.
func viewerRepositories() []query.Match {
	return []query.Match{{Operation: query.ListRepositories}}
}

// CreateRepository creates a repository owned by the viewer.
type CreateRepository struct {
	Name        string
	Description string
	// Visibility defaults to PUBLIC.
	Visibility githubv4.RepositoryVisibility
}

// Operation implements Mutation.
func (CreateRepository) Operation() string { return "create-repository" }

// Validate implements Mutation.
func (m CreateRepository) Validate() error {
	return validate.Check(m.Operation(),
		validate.Field{Name: "name", Value: m.Name, Rules: validate.RepositoryName()},
		validate.Field{Name: "description", Value: m.Description, Rules: validate.RepositoryDescription()},
		validate.Field{Name: "visibility", Value: strings.ToUpper(string(m.Visibility)), Rules: validate.RepositoryVisibility()},
	)
}

// Affects implements Mutation.
func (CreateRepository) Affects() []query.Match { return viewerRepositories() }

// Do implements Mutation.
func (m CreateRepository) Do(ctx context.Context, client github.Client) (*github.Repository, error) {
	visibility := githubv4.RepositoryVisibility(strings.ToUpper(string(m.Visibility)))
	if visibility == "" {
		visibility = githubv4.RepositoryVisibilityPublic
	}
	return client.CreateRepository(ctx, github.CreateRepositoryRequest{
		Name:        m.Name,
		Description: m.Description,
		Visibility:  visibility,
	})
}

// UpdateRepositoryDescription replaces a repository's description.
// An empty description clears it.
type UpdateRepositoryDescription struct {
	RepositoryID string
	Description  string
}

// Operation implements Mutation.
func (UpdateRepositoryDescription) Operation() string { return "update-repository" }

// Validate implements Mutation.
func (m UpdateRepositoryDescription) Validate() error {
	return validate.Check(m.Operation(),
		validate.Field{Name: "id", Value: m.RepositoryID, Rules: validate.RepositoryID()},
		validate.Field{Name: "description", Value: m.Description, Rules: validate.RepositoryDescription()},
	)
}

// Affects implements Mutation.
func (UpdateRepositoryDescription) Affects() []query.Match { return viewerRepositories() }

// Do implements Mutation.
func (m UpdateRepositoryDescription) Do(ctx context.Context, client github.Client) (*github.Repository, error) {
	desc := m.Description
	return client.UpdateRepository(ctx, github.UpdateRepositoryRequest{
		RepositoryID: m.RepositoryID,
		Description:  &desc,
	})
}

// DeleteRepository deletes a repository. The result value is the deleted ID.
type DeleteRepository struct {
	RepositoryID string
}

// Operation implements Mutation.
func (DeleteRepository) Operation() string { return "delete-repository" }

// Validate implements Mutation.
func (m DeleteRepository) Validate() error {
	return validate.Check(m.Operation(),
		validate.Field{Name: "id", Value: m.RepositoryID, Rules: validate.RepositoryID()},
	)
}

// Affects implements Mutation.
func (DeleteRepository) Affects() []query.Match { return viewerRepositories() }

// Do implements Mutation.
func (m DeleteRepository) Do(ctx context.Context, client github.Client) (string, error) {
	if err := client.DeleteRepository(ctx, m.RepositoryID); err != nil {
		return "", err
	}
	return m.RepositoryID, nil
}
