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
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/sirseerhq/sirseer-lens/internal/github"
	"github.com/sirseerhq/sirseer-lens/internal/listview"
	"github.com/sirseerhq/sirseer-lens/internal/mutation"
	"github.com/sirseerhq/sirseer-lens/internal/query"
	"github.com/sirseerhq/sirseer-lens/internal/render"
	"github.com/sirseerhq/sirseer-lens/internal/session"
	"github.com/sirseerhq/sirseer-lens/internal/sources"
)

var browseCommands = []string{
	"repos", "pulls", "more", "open", "closed", "all",
	"sort", "asc", "desc", "refresh", "retry",
	"create", "edit", "delete", "help", "quit", "exit",
}

func newBrowseCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "browse [<owner>/<repo>]",
		Short: "Browse repositories and pull requests interactively",
		Long: `Start an interactive session over your repositories and their pull requests.

Lists stay cached for the whole session: switching back to an earlier sort or
filter shows the pages already fetched, and repository changes refresh the
repository list. Given <owner>/<repo>, the session opens on that
repository's pull requests. Type 'help' at the prompt for the available
commands.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			start := ""
			if len(args) == 1 {
				if _, _, err := parseRepository(args[0]); err != nil {
					return err
				}
				start = args[0]
			}

			sess, err := a.openSession()
			if err != nil {
				return err
			}
			defer a.closeSession(sess)

			line := liner.NewLiner()
			defer line.Close()
			line.SetCtrlCAborts(true)
			line.SetCompleter(completeCommand)

			history := historyFile()
			if f, err := os.Open(history); err == nil {
				line.ReadHistory(f)
				f.Close()
			}
			defer func() {
				if history == "" {
					return
				}
				if f, err := os.Create(history); err == nil {
					line.WriteHistory(f)
					f.Close()
				}
			}()

			return newBrowser(a, sess, line).run(cmd.Context(), start)
		},
	}
}

func historyFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".sirseer", "lens_history")
}

func completeCommand(line string) []string {
	var completions []string
	lower := strings.ToLower(line)
	for _, cmd := range browseCommands {
		if strings.HasPrefix(cmd, lower) {
			completions = append(completions, cmd)
		}
	}
	return completions
}

// prompter reads one command line at a time.
type prompter interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
}

// listing is the part of a list controller the browser drives.
type listing interface {
	Load(ctx context.Context) error
	LoadMore(ctx context.Context) error
	Retry(ctx context.Context) error
	SetFilter(ctx context.Context, name, value string) error
	SetSort(ctx context.Context, sort query.Sort) error
	Descriptor() query.Descriptor
}

type browser struct {
	a      *app
	sess   *session.Session
	in     prompter
	out    io.Writer
	render render.Renderer

	repos       *listview.Controller[github.Repository]
	pulls       *listview.Controller[github.PullRequest]
	owner, name string
	showPulls   bool
}

func newBrowser(a *app, sess *session.Session, in prompter) *browser {
	return &browser{a: a, sess: sess, in: in, out: a.stdout, render: a.renderer()}
}

// run shows the repository list, or the pull requests of start when it is
// set, then executes commands until quit or end of input.
func (b *browser) run(ctx context.Context, start string) error {
	fmt.Fprintln(b.out, "sirseer-lens - type 'help' for available commands.")
	if start != "" {
		b.report(b.showPullRequests(ctx, start))
	} else {
		b.report(b.showRepositories(ctx))
	}

	for {
		line, err := b.in.Prompt("lens> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				fmt.Fprintln(b.out, "Bye!")
				return nil
			}
			return fmt.Errorf("reading input: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		b.in.AppendHistory(line)

		parts := strings.Fields(line)
		cmd, args := strings.ToLower(parts[0]), parts[1:]
		if cmd == "quit" || cmd == "exit" || cmd == "q" {
			fmt.Fprintln(b.out, "Bye!")
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		b.report(b.dispatch(ctx, cmd, args))
	}
}

func (b *browser) dispatch(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "help", "?":
		b.printHelp()
		return nil
	case "repos":
		return b.showRepositories(ctx)
	case "pulls":
		if len(args) != 1 {
			return fmt.Errorf("usage: pulls <owner>/<repo>")
		}
		return b.showPullRequests(ctx, args[0])
	case "more":
		view, err := b.current()
		if err != nil {
			return err
		}
		return view.LoadMore(ctx)
	case "open", "closed", "all":
		if !b.showPulls {
			return fmt.Errorf("%s only applies to pull request lists", cmd)
		}
		state, _ := parseState(cmd)
		return b.pulls.SetFilter(ctx, sources.FilterState, state)
	case "sort":
		if len(args) == 0 || len(args) > 2 {
			return fmt.Errorf("usage: sort <field> [asc|desc]")
		}
		direction := ""
		if len(args) == 2 {
			direction = args[1]
		}
		return b.sortBy(ctx, args[0], direction)
	case "asc", "desc":
		return b.sortBy(ctx, "", cmd)
	case "refresh", "retry":
		view, err := b.current()
		if err != nil {
			return err
		}
		return view.Retry(ctx)
	case "create":
		if len(args) == 0 {
			return fmt.Errorf("usage: create <name> [description]")
		}
		m := mutation.CreateRepository{Name: args[0], Description: strings.Join(args[1:], " ")}
		repo, err := b.sess.CreateRepository(ctx, m).Unwrap()
		if err != nil {
			return err
		}
		fmt.Fprintf(b.out, "Created repository %s (%s)\n", repo.Name, repo.ID)
		return b.showRepositories(ctx)
	case "edit":
		if len(args) == 0 {
			return fmt.Errorf("usage: edit <repository-id> [description]")
		}
		m := mutation.UpdateRepositoryDescription{RepositoryID: args[0], Description: strings.Join(args[1:], " ")}
		if _, err := b.sess.UpdateRepositoryDescription(ctx, m).Unwrap(); err != nil {
			return err
		}
		return b.showRepositories(ctx)
	case "delete":
		if len(args) != 1 {
			return fmt.Errorf("usage: delete <repository-id>")
		}
		id, err := b.sess.DeleteRepository(ctx, mutation.DeleteRepository{RepositoryID: args[0]}).Unwrap()
		if err != nil {
			return err
		}
		fmt.Fprintf(b.out, "Deleted repository %s\n", id)
		return b.showRepositories(ctx)
	default:
		return fmt.Errorf("unknown command: %s (type 'help' for commands)", cmd)
	}
}

func (b *browser) current() (listing, error) {
	switch {
	case b.showPulls:
		return b.pulls, nil
	case b.repos != nil:
		return b.repos, nil
	default:
		return nil, fmt.Errorf("no list is open")
	}
}

func (b *browser) showRepositories(ctx context.Context) error {
	b.showPulls = false
	if b.repos == nil {
		ctrl, err := b.sess.RepositoryList()
		if err != nil {
			return err
		}
		b.repos = ctrl
	}
	return b.repos.Load(ctx)
}

func (b *browser) showPullRequests(ctx context.Context, arg string) error {
	owner, name, err := parseRepository(arg)
	if err != nil {
		return err
	}
	if b.pulls == nil || owner != b.owner || name != b.name {
		if b.pulls != nil {
			b.sess.Release(b.pulls)
			b.pulls = nil
		}
		ctrl, err := b.sess.PullRequestList(owner, name,
			session.WithPageSize(b.a.cfg.PullRequestPageSize(owner+"/"+name)))
		if err != nil {
			return err
		}
		b.pulls, b.owner, b.name = ctrl, owner, name
	}
	b.showPulls = true
	return b.pulls.Load(ctx)
}

func (b *browser) sortBy(ctx context.Context, field, direction string) error {
	names := repositorySortNames
	if b.showPulls {
		names = pullRequestSortNames
	}
	view, err := b.current()
	if err != nil {
		return err
	}
	sort, err := parseSort(names, field, direction, view.Descriptor().Sort)
	if err != nil {
		return err
	}
	return view.SetSort(ctx, sort)
}

// report renders the current list, then any error the list itself does not
// already show.
func (b *browser) report(err error) {
	var shown error
	if b.showPulls && b.pulls != nil {
		view := b.pulls.View()
		shown = view.Error
		b.render.WritePullRequests(b.out, b.owner, b.name, view)
	} else if b.repos != nil {
		view := b.repos.View()
		shown = view.Error
		b.render.WriteRepositories(b.out, view)
	}
	if err != nil && !errors.Is(err, shown) {
		fmt.Fprintf(b.out, "Error: %v\n", err)
	}
}

func (b *browser) printHelp() {
	fmt.Fprintln(b.out, `Commands:
  repos                     Show your repositories
  pulls <owner>/<repo>      Show the pull requests of a repository
  more                      Load the next page
  open | closed | all       Filter pull requests by state
  sort <field> [asc|desc]   Sort the current list
  asc | desc                Change the sort direction
  refresh                   Refetch the current list
  create <name> [desc]      Create a repository
  edit <id> [desc]          Change a repository description
  delete <id>               Delete a repository
  help                      Show this help
  quit                      Leave the browser`)
}
