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

// Package github provides a client for GitHub's GraphQL API covering the
// viewer's repositories, a repository's pull requests and the repository
// mutations (create, update, delete). It hides GraphQL query construction
// and decodes responses into typed structs.
//
// The package includes:
//   - A Client interface used by the list sources and the mutation coordinator
//   - A GraphQL implementation using shurcooL/graphql with githubv4 enums and inputs
//   - An authenticated transport with a response size limit
//   - Mock client for testing
//
// Basic usage:
//
//	client := github.NewGraphQLClient("your-github-token", "https://api.github.com/graphql")
//	page, err := client.ListPullRequests(ctx, "golang", "go", github.PullRequestListOptions{
//	    PageSize: 10,
//	    States:   []githubv4.PullRequestState{githubv4.PullRequestStateOpen},
//	})
//	if err != nil {
//	    // Handle error
//	}
//	for _, pr := range page.PullRequests {
//	    // Process pull request
//	}
package github
