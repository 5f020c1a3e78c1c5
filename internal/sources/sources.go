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

// Package sources adapts github.Client to listview.Source for the two list
// operations, translating descriptor filters, sort and cursor into GraphQL
// list options.
package sources

import (
	"context"
	"fmt"
	"strings"

	"github.com/shurcooL/githubv4"

	"github.com/sirseerhq/sirseer-lens/internal/github"
	"github.com/sirseerhq/sirseer-lens/internal/listview"
	"github.com/sirseerhq/sirseer-lens/internal/query"
	"github.com/sirseerhq/sirseer-lens/internal/validate"
)

// FilterState is the pull request state filter.
const FilterState = "state"

// Values of FilterState.
const (
	StateOpen           = "OPEN"
	StateClosedOrMerged = "CLOSED_OR_MERGED"
)

// Default page sizes and sorts.
const (
	DefaultRepositoryPageSize  = 20
	DefaultPullRequestPageSize = 10
)

var (
	// RepositorySortFields are the accepted repository sort fields.
	RepositorySortFields = []string{"UPDATED_AT", "CREATED_AT", "NAME", "STARGAZERS", "PUSHED_AT"}

	// PullRequestSortFields are the accepted pull request sort fields.
	PullRequestSortFields = []string{"CREATED_AT", "UPDATED_AT"}
)

// RepositoriesQuery returns the first-page descriptor of the viewer's
// repositories, most recently updated first.
func RepositoriesQuery(pageSize int) query.Descriptor {
	if pageSize <= 0 {
		pageSize = DefaultRepositoryPageSize
	}
	return query.New(query.ListRepositories, nil, nil,
		query.Sort{Field: "UPDATED_AT", Direction: query.Desc}, pageSize)
}

// PullRequestsQuery returns the first-page descriptor of a repository's open
// pull requests, newest first.
func PullRequestsQuery(owner, name string, pageSize int) query.Descriptor {
	if pageSize <= 0 {
		pageSize = DefaultPullRequestPageSize
	}
	return query.New(query.ListPullRequests, query.Scope{owner, name},
		map[string]string{FilterState: StateOpen},
		query.Sort{Field: "CREATED_AT", Direction: query.Desc}, pageSize)
}

// CanonicalState returns the canonical spelling of a state filter value.
// Case is ignored and CLOSED is an alias of CLOSED_OR_MERGED. Unknown values
// are upper-cased and left for validation to reject.
func CanonicalState(value string) string {
	switch v := strings.ToUpper(strings.TrimSpace(value)); v {
	case "CLOSED", StateClosedOrMerged:
		return StateClosedOrMerged
	default:
		return v
	}
}

// Normalize rewrites the filters of a pull request descriptor to their
// canonical values. Other descriptors are returned unchanged.
func Normalize(d query.Descriptor) query.Descriptor {
	if d.Operation != query.ListPullRequests {
		return d
	}
	if state := d.Filter(FilterState); state != "" {
		if canonical := CanonicalState(state); canonical != state {
			return d.WithFilter(FilterState, canonical)
		}
	}
	return d
}

// States maps the state filter to GraphQL pull request states.
// An empty filter selects every state.
func States(filter string) ([]githubv4.PullRequestState, error) {
	switch CanonicalState(filter) {
	case "":
		return nil, nil
	case StateOpen:
		return []githubv4.PullRequestState{githubv4.PullRequestStateOpen}, nil
	case StateClosedOrMerged:
		return []githubv4.PullRequestState{githubv4.PullRequestStateClosed, githubv4.PullRequestStateMerged}, nil
	default:
		return nil, fmt.Errorf("invalid state filter %q. Expected: %s or %s", filter, StateOpen, StateClosedOrMerged)
	}
}

// CheckQuery validates the sort and filters of d against what the
// operation's source accepts. It returns a *errors.ValidationError so
// callers can reject a query before a chain is created for it.
func CheckQuery(d query.Descriptor) error {
	var sortFields []string
	var fields []validate.Field
	switch d.Operation {
	case query.ListRepositories:
		sortFields = RepositorySortFields
	case query.ListPullRequests:
		sortFields = PullRequestSortFields
		fields = append(fields, validate.Field{
			Name:  FilterState,
			Value: CanonicalState(d.Filter(FilterState)),
			Rules: []validate.Rule{validate.OneOf(
				[]string{StateOpen, StateClosedOrMerged},
				fmt.Sprintf("State must be %s or %s", StateOpen, StateClosedOrMerged))},
		})
	default:
		return fmt.Errorf("unknown operation %q", d.Operation)
	}

	fields = append(fields,
		validate.Field{
			Name:  "sort",
			Value: d.Sort.Field,
			Rules: []validate.Rule{validate.OneOf(sortFields,
				"Sort field must be one of: "+strings.Join(sortFields, ", "))},
		},
		validate.Field{
			Name:  "direction",
			Value: string(d.Sort.Direction),
			Rules: []validate.Rule{validate.OneOf(
				[]string{string(query.Asc), string(query.Desc)},
				"Direction must be ASC or DESC")},
		},
	)
	return validate.Check(string(d.Operation), fields...)
}

// Repositories lists the viewer's repositories.
type Repositories struct {
	client github.Client
}

// NewRepositories creates a repository source.
func NewRepositories(client github.Client) *Repositories {
	return &Repositories{client: client}
}

// Fetch implements listview.Source.
func (s *Repositories) Fetch(ctx context.Context, d query.Descriptor) (listview.Page[github.Repository], error) {
	if d.Operation != query.ListRepositories {
		return listview.Page[github.Repository]{}, fmt.Errorf("repository source cannot serve %s", d.Operation)
	}

	if err := CheckQuery(d); err != nil {
		return listview.Page[github.Repository]{}, err
	}

	opts := github.RepositoryListOptions{
		PageSize: d.PageSize,
		After:    d.Cursor,
	}
	if d.Sort.Field != "" {
		opts.OrderBy = &githubv4.RepositoryOrder{
			Field:     githubv4.RepositoryOrderField(d.Sort.Field),
			Direction: githubv4.OrderDirection(d.Sort.Direction),
		}
	}

	page, err := s.client.ListRepositories(ctx, opts)
	if err != nil {
		return listview.Page[github.Repository]{}, err
	}
	return listview.Page[github.Repository]{
		Items:      page.Repositories,
		NextCursor: nextCursor(page.HasNextPage, page.EndCursor),
	}, nil
}

// PullRequests lists the pull requests of the repository in the descriptor scope.
type PullRequests struct {
	client github.Client
}

// NewPullRequests creates a pull request source.
func NewPullRequests(client github.Client) *PullRequests {
	return &PullRequests{client: client}
}

// Fetch implements listview.Source.
func (s *PullRequests) Fetch(ctx context.Context, d query.Descriptor) (listview.Page[github.PullRequest], error) {
	if d.Operation != query.ListPullRequests {
		return listview.Page[github.PullRequest]{}, fmt.Errorf("pull request source cannot serve %s", d.Operation)
	}
	if len(d.Scope) != 2 || d.Scope[0] == "" || d.Scope[1] == "" {
		return listview.Page[github.PullRequest]{}, fmt.Errorf("pull request query needs an owner/name scope, got %q", d.Scope.String())
	}

	if err := CheckQuery(d); err != nil {
		return listview.Page[github.PullRequest]{}, err
	}
	states, err := States(d.Filter(FilterState))
	if err != nil {
		return listview.Page[github.PullRequest]{}, err
	}

	opts := github.PullRequestListOptions{
		PageSize: d.PageSize,
		After:    d.Cursor,
		States:   states,
	}
	if d.Sort.Field != "" {
		opts.OrderBy = &githubv4.IssueOrder{
			Field:     githubv4.IssueOrderField(d.Sort.Field),
			Direction: githubv4.OrderDirection(d.Sort.Direction),
		}
	}

	page, err := s.client.ListPullRequests(ctx, d.Scope[0], d.Scope[1], opts)
	if err != nil {
		return listview.Page[github.PullRequest]{}, err
	}
	return listview.Page[github.PullRequest]{
		Items:      page.PullRequests,
		NextCursor: nextCursor(page.HasNextPage, page.EndCursor),
	}, nil
}

// nextCursor treats the end cursor as absent when GitHub reports no next page.
func nextCursor(hasNext bool, end string) string {
	if !hasNext {
		return ""
	}
	return end
}
