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

	"github.com/spf13/cobra"

	"github.com/sirseerhq/sirseer-lens/internal/github"
	"github.com/sirseerhq/sirseer-lens/internal/listview"
	"github.com/sirseerhq/sirseer-lens/internal/output"
	"github.com/sirseerhq/sirseer-lens/internal/session"
	"github.com/sirseerhq/sirseer-lens/internal/sources"
)

func newPullsCommand(a *app) *cobra.Command {
	var (
		flags listFlags
		state string
	)

	cmd := &cobra.Command{
		Use:   "pulls <owner>/<repo>",
		Short: "List the pull requests of a repository",
		Long: `List the pull requests of a repository, newest first.

The repository must be specified in the format: <owner>/<repo>
For example: golang/go, kubernetes/kubernetes

--state open shows open pull requests (the default); --state closed shows
closed and merged ones; --state all shows every pull request.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPulls(cmd.Context(), a, args[0], state, flags)
		},
	}
	flags.register(cmd, "Sort field: created or updated")
	cmd.Flags().StringVar(&state, "state", "open", "Pull request state: open, closed or all")
	return cmd
}

func runPulls(ctx context.Context, a *app, repoArg, stateFlag string, flags listFlags) error {
	owner, name, err := parseRepository(repoArg)
	if err != nil {
		return err
	}
	state, err := parseState(stateFlag)
	if err != nil {
		return err
	}
	format, err := a.outputFormat(flags.format, flags.output)
	if err != nil {
		return err
	}
	sort, err := parseSort(pullRequestSortNames, flags.sort, flags.direction, sources.PullRequestsQuery(owner, name, 0).Sort)
	if err != nil {
		return err
	}

	sess, err := a.openSession()
	if err != nil {
		return err
	}
	defer a.closeSession(sess)

	open := func(opts ...session.ViewOption) (*listview.Controller[github.PullRequest], error) {
		return sess.PullRequestList(owner, name, opts...)
	}
	ctrl, err := openAndLoad[github.PullRequest](ctx, a, sess, open,
		a.cfg.PullRequestPageSize(owner+"/"+name), flags.all,
		session.WithFilter(sources.FilterState, state), session.WithSort(sort))
	if err != nil {
		return err
	}

	view := ctrl.View()
	if format == output.FormatText {
		return a.renderer().WritePullRequests(a.stdout, owner, name, view)
	}
	return writeRecords(a, format, flags.output, view.Items)
}
