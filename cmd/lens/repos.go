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
	"fmt"

	"github.com/shurcooL/githubv4"
	"github.com/spf13/cobra"

	"github.com/sirseerhq/sirseer-lens/internal/github"
	"github.com/sirseerhq/sirseer-lens/internal/mutation"
	"github.com/sirseerhq/sirseer-lens/internal/output"
	"github.com/sirseerhq/sirseer-lens/internal/session"
	"github.com/sirseerhq/sirseer-lens/internal/sources"
)

func newReposCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repos",
		Short: "List and manage your repositories",
	}
	cmd.AddCommand(
		newReposListCommand(a),
		newReposCreateCommand(a),
		newReposEditCommand(a),
		newReposDeleteCommand(a),
	)
	return cmd
}

type listFlags struct {
	all       bool
	sort      string
	direction string
	format    string
	output    string
}

func (f *listFlags) register(cmd *cobra.Command, sortHelp string) {
	cmd.Flags().BoolVar(&f.all, "all", false, "Fetch every page instead of the first")
	cmd.Flags().StringVar(&f.sort, "sort", "", sortHelp)
	cmd.Flags().StringVar(&f.direction, "direction", "", "Sort direction: asc or desc")
	cmd.Flags().StringVar(&f.format, "format", "", "Output format: text, ndjson or yaml")
	cmd.Flags().StringVar(&f.output, "output", "", "Output file path (default: stdout)")
}

func newReposListCommand(a *app) *cobra.Command {
	var flags listFlags

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the repositories of the authenticated user",
		Long: `List the repositories of the authenticated user, most recently updated first.

Only the first page is fetched unless --all is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReposList(cmd.Context(), a, flags)
		},
	}
	flags.register(cmd, "Sort field: updated, created, name, stars or pushed")
	return cmd
}

func runReposList(ctx context.Context, a *app, flags listFlags) error {
	format, err := a.outputFormat(flags.format, flags.output)
	if err != nil {
		return err
	}
	sort, err := parseSort(repositorySortNames, flags.sort, flags.direction, sources.RepositoriesQuery(0).Sort)
	if err != nil {
		return err
	}

	sess, err := a.openSession()
	if err != nil {
		return err
	}
	defer a.closeSession(sess)

	ctrl, err := openAndLoad[github.Repository](ctx, a, sess, sess.RepositoryList,
		a.cfg.Lists.RepositoryPageSize, flags.all, session.WithSort(sort))
	if err != nil {
		return err
	}

	view := ctrl.View()
	if format == output.FormatText {
		return a.renderer().WriteRepositories(a.stdout, view)
	}
	return writeRecords(a, format, flags.output, view.Items)
}

func newReposCreateCommand(a *app) *cobra.Command {
	var (
		description string
		private     bool
	)

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a repository",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			visibility := githubv4.RepositoryVisibilityPublic
			if private {
				visibility = githubv4.RepositoryVisibilityPrivate
			}
			m := mutation.CreateRepository{Name: args[0], Description: description, Visibility: visibility}

			return withSession(a, func(sess *session.Session) error {
				repo, err := sess.CreateRepository(cmd.Context(), m).Unwrap()
				if err != nil {
					return err
				}
				fmt.Fprintf(a.stdout, "Created repository %s (%s)\n", repo.Name, repo.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&description, "description", "", "Repository description")
	cmd.Flags().BoolVar(&private, "private", false, "Create a private repository")
	return cmd
}

func newReposEditCommand(a *app) *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "edit <repository-id>",
		Short: "Change the description of a repository",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m := mutation.UpdateRepositoryDescription{RepositoryID: args[0], Description: description}

			return withSession(a, func(sess *session.Session) error {
				repo, err := sess.UpdateRepositoryDescription(cmd.Context(), m).Unwrap()
				if err != nil {
					return err
				}
				fmt.Fprintf(a.stdout, "Updated %s: %s\n", repo.Name, descriptionText(repo))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&description, "description", "", "New description (empty clears it)")
	_ = cmd.MarkFlagRequired("description")
	return cmd
}

func newReposDeleteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <repository-id>",
		Short: "Delete a repository",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(a, func(sess *session.Session) error {
				id, err := sess.DeleteRepository(cmd.Context(), mutation.DeleteRepository{RepositoryID: args[0]}).Unwrap()
				if err != nil {
					return err
				}
				fmt.Fprintf(a.stdout, "Deleted repository %s\n", id)
				return nil
			})
		},
	}
}

func withSession(a *app, fn func(*session.Session) error) error {
	sess, err := a.openSession()
	if err != nil {
		return err
	}
	defer a.closeSession(sess)
	return fn(sess)
}

func descriptionText(repo *github.Repository) string {
	if repo.Description == nil || *repo.Description == "" {
		return "(no description)"
	}
	return *repo.Description
}
