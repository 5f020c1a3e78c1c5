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
	"fmt"
	"time"
)

// BaseTime is the timestamp builders start from.
var BaseTime = time.Date(2024, 1, 2, 15, 4, 5, 0, time.UTC)

// RepositoryBuilder helps build repository nodes for GraphQL responses
type RepositoryBuilder struct {
	id          string
	name        string
	owner       string
	description *string
	stars       int
	forks       int
	updatedAt   time.Time
	visibility  string
}

// NewRepositoryBuilder creates a new repository builder with sensible defaults
func NewRepositoryBuilder(name string) *RepositoryBuilder {
	return &RepositoryBuilder{
		id:         "R_" + name,
		name:       name,
		owner:      "octocat",
		updatedAt:  BaseTime,
		visibility: "PUBLIC",
	}
}

// WithID sets the node ID
func (b *RepositoryBuilder) WithID(id string) *RepositoryBuilder {
	b.id = id
	return b
}

// WithDescription sets the description
func (b *RepositoryBuilder) WithDescription(description string) *RepositoryBuilder {
	b.description = &description
	return b
}

// WithStats sets the star and fork counts
func (b *RepositoryBuilder) WithStats(stars, forks int) *RepositoryBuilder {
	b.stars = stars
	b.forks = forks
	return b
}

// WithUpdatedAt sets the last update time
func (b *RepositoryBuilder) WithUpdatedAt(t time.Time) *RepositoryBuilder {
	b.updatedAt = t
	return b
}

// WithVisibility sets the visibility
func (b *RepositoryBuilder) WithVisibility(visibility string) *RepositoryBuilder {
	b.visibility = visibility
	return b
}

// Build creates the repository node map
func (b *RepositoryBuilder) Build() map[string]interface{} {
	var description interface{}
	if b.description != nil {
		description = *b.description
	}

	return map[string]interface{}{
		"id":             b.id,
		"name":           b.name,
		"description":    description,
		"url":            fmt.Sprintf("https://github.com/%s/%s", b.owner, b.name),
		"stargazerCount": b.stars,
		"forkCount":      b.forks,
		"updatedAt":      b.updatedAt.Format(time.RFC3339),
		"visibility":     b.visibility,
		"owner":          map[string]interface{}{"login": b.owner},
	}
}

// PullRequestBuilder helps build pull request nodes for GraphQL responses
type PullRequestBuilder struct {
	number         int
	title          string
	state          string
	author         string
	createdAt      time.Time
	closedAt       *time.Time
	reviewDecision string
	comments       int
	commits        int
}

// NewPullRequestBuilder creates a new PR builder with sensible defaults
func NewPullRequestBuilder(number int) *PullRequestBuilder {
	return &PullRequestBuilder{
		number:    number,
		title:     fmt.Sprintf("PR %d", number),
		state:     "OPEN",
		author:    fmt.Sprintf("user%d", number),
		createdAt: BaseTime.Add(-time.Duration(number) * time.Hour),
		commits:   1,
	}
}

// WithTitle sets the PR title
func (b *PullRequestBuilder) WithTitle(title string) *PullRequestBuilder {
	b.title = title
	return b
}

// WithState sets the PR state
func (b *PullRequestBuilder) WithState(state string) *PullRequestBuilder {
	b.state = state
	return b
}

// WithAuthor sets the PR author. An empty login builds a deleted account.
func (b *PullRequestBuilder) WithAuthor(author string) *PullRequestBuilder {
	b.author = author
	return b
}

// WithCreatedAt sets the creation time
func (b *PullRequestBuilder) WithCreatedAt(t time.Time) *PullRequestBuilder {
	b.createdAt = t
	return b
}

// WithClosedAt sets the closed time
func (b *PullRequestBuilder) WithClosedAt(t time.Time) *PullRequestBuilder {
	b.closedAt = &t
	return b
}

// WithReviewDecision sets the review decision
func (b *PullRequestBuilder) WithReviewDecision(decision string) *PullRequestBuilder {
	b.reviewDecision = decision
	return b
}

// WithCounts sets the comment and commit counts
func (b *PullRequestBuilder) WithCounts(comments, commits int) *PullRequestBuilder {
	b.comments = comments
	b.commits = commits
	return b
}

// Build creates the PR node map
func (b *PullRequestBuilder) Build(owner, name string) map[string]interface{} {
	pr := map[string]interface{}{
		"id":             fmt.Sprintf("PR_%d", b.number),
		"number":         b.number,
		"title":          b.title,
		"state":          b.state,
		"createdAt":      b.createdAt.Format(time.RFC3339),
		"closedAt":       nil,
		"url":            fmt.Sprintf("https://github.com/%s/%s/pull/%d", owner, name, b.number),
		"author":         nil,
		"reviewDecision": nil,
		"comments":       map[string]interface{}{"totalCount": b.comments},
		"commits":        map[string]interface{}{"totalCount": b.commits},
	}

	if b.closedAt != nil {
		pr["closedAt"] = b.closedAt.Format(time.RFC3339)
	}
	if b.author != "" {
		pr["author"] = map[string]interface{}{
			"login":     b.author,
			"avatarUrl": "https://avatars.githubusercontent.com/" + b.author,
		}
	}
	if b.reviewDecision != "" {
		pr["reviewDecision"] = b.reviewDecision
	}

	return pr
}
