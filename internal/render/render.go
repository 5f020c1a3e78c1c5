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

// Package render turns list view models into the text the CLI prints. The
// wording mirrors the web front-end the lists were first built for, so the
// same fixtures read the same in both places.
package render

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/sirseerhq/sirseer-lens/internal/github"
	"github.com/sirseerhq/sirseer-lens/internal/listview"
)

// DateLayout renders timestamps as "Jan 2, 2024, 03:04 PM".
const DateLayout = "Jan 2, 2006, 03:04 PM"

const (
	NoDescription         = "No description"
	NoRepositories        = "No repositories found."
	NoPullRequests        = "No pull requests found for this repository."
	GhostLogin            = "ghost"
	loadMoreHint          = "[Load More]"
	loadingText           = "Loading..."
	loadingMoreText       = "Loading more..."
	pullRequestErrorTitle = "Error loading pull requests"
)

// Renderer formats rows and whole views. The zero value prints dates in UTC
// without color.
type Renderer struct {
	// Location is used for every rendered date. Nil means UTC.
	Location *time.Location

	// Color enables ANSI colors on state labels.
	Color bool
}

// Date formats t in the renderer's location.
func (r Renderer) Date(t time.Time) string {
	loc := r.Location
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(DateLayout)
}

// Description returns the repository description or NoDescription when it
// is nil or empty.
func Description(repo github.Repository) string {
	if repo.Description == nil || *repo.Description == "" {
		return NoDescription
	}
	return *repo.Description
}

// Stats renders the star and fork counters of a repository.
func Stats(repo github.Repository) string {
	return fmt.Sprintf("⭐ %d | Forks: %d", repo.StargazerCount, repo.ForkCount)
}

// Title renders "#<number> <title>".
func Title(pr github.PullRequest) string {
	return fmt.Sprintf("#%d %s", pr.Number, pr.Title)
}

// ReviewDecision returns the lower-cased review decision, or "" when GitHub
// reported none.
func ReviewDecision(pr github.PullRequest) string {
	if pr.ReviewDecision == nil {
		return ""
	}
	return strings.ToLower(*pr.ReviewDecision)
}

// Login returns the author login. Deleted accounts have no author and are
// shown the way GitHub shows them.
func Login(pr github.PullRequest) string {
	if pr.Author == nil || pr.Author.Login == "" {
		return GhostLogin
	}
	return pr.Author.Login
}

// Byline renders "Created by <login> on <date>".
func (r Renderer) Byline(pr github.PullRequest) string {
	return fmt.Sprintf("Created by %s on %s", Login(pr), r.Date(pr.CreatedAt))
}

// Counts renders the comment and commit counters.
func Counts(pr github.PullRequest) string {
	return fmt.Sprintf("💬 %d comments  🔄 %d commits", pr.Comments, pr.Commits)
}

// Closed renders "Closed on <date>" for closed or merged pull requests and
// "" otherwise.
func (r Renderer) Closed(pr github.PullRequest) string {
	if pr.ClosedAt == nil || pr.State == "OPEN" {
		return ""
	}
	return "Closed on " + r.Date(*pr.ClosedAt)
}

// PullRequestsHeader renders the title shown above a repository's pull requests.
func PullRequestsHeader(owner, name string) string {
	return fmt.Sprintf("%s/%s - Pull Requests", owner, name)
}

// State renders a pull request state label.
func (r Renderer) State(state string) string {
	c := color.New(stateColor(state))
	if r.Color {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c.Sprint(state)
}

func stateColor(state string) color.Attribute {
	switch state {
	case "OPEN":
		return color.FgGreen
	case "MERGED":
		return color.FgMagenta
	case "CLOSED":
		return color.FgRed
	default:
		return color.Reset
	}
}

// RepositoryRow renders one repository as a three-line block.
func (r Renderer) RepositoryRow(repo github.Repository) string {
	return fmt.Sprintf("%s\n  %s\n  %s\n", repo.Name, Description(repo), Stats(repo))
}

// PullRequestRow renders one pull request as a block of up to three lines.
func (r Renderer) PullRequestRow(pr github.PullRequest) string {
	var b strings.Builder
	b.WriteString(Title(pr))
	b.WriteString(" [")
	b.WriteString(r.State(pr.State))
	b.WriteString("]")
	if decision := ReviewDecision(pr); decision != "" {
		b.WriteString(" (")
		b.WriteString(decision)
		b.WriteString(")")
	}
	b.WriteString("\n  ")
	b.WriteString(r.Byline(pr))
	b.WriteString("\n  ")
	b.WriteString(Counts(pr))
	if closed := r.Closed(pr); closed != "" {
		b.WriteString("  ")
		b.WriteString(closed)
	}
	b.WriteString("\n")
	return b.String()
}

// WriteRepositories renders a repository list view to w.
func (r Renderer) WriteRepositories(w io.Writer, vm listview.ViewModel[github.Repository]) error {
	return writeView(w, vm, viewText[github.Repository]{
		errorTitle: "Error",
		empty:      NoRepositories,
		row:        r.RepositoryRow,
	})
}

// WritePullRequests renders a pull request list view to w under the
// repository header.
func (r Renderer) WritePullRequests(w io.Writer, owner, name string, vm listview.ViewModel[github.PullRequest]) error {
	if _, err := fmt.Fprintf(w, "%s\n\n", PullRequestsHeader(owner, name)); err != nil {
		return err
	}
	return writeView(w, vm, viewText[github.PullRequest]{
		errorTitle: pullRequestErrorTitle,
		empty:      NoPullRequests,
		row:        r.PullRequestRow,
	})
}

type viewText[T any] struct {
	errorTitle string
	empty      string
	row        func(T) string
}

// writeView prints loading, error, rows and the load-more hint in that
// order. Stale rows stay visible under an error banner.
func writeView[T any](w io.Writer, vm listview.ViewModel[T], text viewText[T]) error {
	var b strings.Builder

	if vm.IsInitialLoading {
		b.WriteString(loadingText)
		b.WriteString("\n")
	}
	if vm.Error != nil {
		fmt.Fprintf(&b, "%s: %s\n", text.errorTitle, vm.Error.Error())
	}
	for _, item := range vm.Items {
		b.WriteString(text.row(item))
	}
	if len(vm.Items) == 0 && vm.State == listview.Ready {
		b.WriteString(text.empty)
		b.WriteString("\n")
	}
	switch {
	case vm.IsLoadingMore:
		b.WriteString(loadingMoreText)
		b.WriteString("\n")
	case vm.HasMore:
		b.WriteString(loadMoreHint)
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}
