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
	"sort"
	"strings"

	relaierrors "github.com/sirseerhq/sirseer-lens/internal/errors"
	"github.com/sirseerhq/sirseer-lens/internal/listview"
	"github.com/sirseerhq/sirseer-lens/internal/output"
	"github.com/sirseerhq/sirseer-lens/internal/query"
	"github.com/sirseerhq/sirseer-lens/internal/session"
	"github.com/sirseerhq/sirseer-lens/internal/sources"
)

// minPageSize is the smallest page size tried after complexity errors.
const minPageSize = 5

var (
	repositorySortNames = map[string]string{
		"updated": "UPDATED_AT",
		"created": "CREATED_AT",
		"name":    "NAME",
		"stars":   "STARGAZERS",
		"pushed":  "PUSHED_AT",
	}
	pullRequestSortNames = map[string]string{
		"created": "CREATED_AT",
		"updated": "UPDATED_AT",
	}
	pullRequestStates = map[string]string{
		"open":   sources.StateOpen,
		"closed": sources.StateClosedOrMerged,
		"all":    "",
	}
)

// parseSort resolves the --sort and --direction flags against def. Empty
// flags keep the default.
func parseSort(names map[string]string, field, direction string, def query.Sort) (query.Sort, error) {
	s := def
	if field != "" {
		f, ok := names[strings.ToLower(field)]
		if !ok {
			return s, fmt.Errorf("invalid sort %q. Expected one of: %s", field, strings.Join(keys(names), ", "))
		}
		s.Field = f
	}
	if direction != "" {
		d, err := query.ParseDirection(direction)
		if err != nil {
			return s, err
		}
		s.Direction = d
	}
	return s, nil
}

// parseState maps the --state flag to the pull request state filter.
func parseState(state string) (string, error) {
	v, ok := pullRequestStates[strings.ToLower(state)]
	if !ok {
		return "", fmt.Errorf("invalid state %q. Expected one of: %s", state, strings.Join(keys(pullRequestStates), ", "))
	}
	return v, nil
}

func keys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

type opener[T any] func(opts ...session.ViewOption) (*listview.Controller[T], error)

// openAndLoad opens a view and loads its first page, or every page when all
// is set. When GitHub rejects the query as too complex, the view is reopened
// with half the page size until minPageSize is reached.
func openAndLoad[T any](ctx context.Context, a *app, sess *session.Session, open opener[T], pageSize int, all bool, opts ...session.ViewOption) (*listview.Controller[T], error) {
	for {
		viewOpts := append([]session.ViewOption{session.WithPageSize(pageSize)}, opts...)
		ctrl, err := open(viewOpts...)
		if err != nil {
			return nil, err
		}

		err = load(ctx, ctrl, all)
		if err == nil {
			return ctrl, nil
		}
		if !errors.Is(err, relaierrors.ErrQueryComplexity) || pageSize <= minPageSize {
			return ctrl, err
		}

		sess.Release(ctrl)
		pageSize = max(pageSize/2, minPageSize)
		a.log.Warn().Int("page_size", pageSize).Msg("query complexity limit hit, reducing page size")
	}
}

func load[T any](ctx context.Context, ctrl *listview.Controller[T], all bool) error {
	if err := ctrl.Load(ctx); err != nil {
		return err
	}
	for all && ctrl.View().HasMore {
		if err := ctrl.LoadMore(ctx); err != nil {
			return err
		}
	}
	return nil
}

// writeRecords writes items as NDJSON or YAML to stdout, or atomically to
// path when set.
func writeRecords[T any](a *app, format output.Format, path string, items []T) error {
	var (
		w   output.OutputWriter
		err error
	)
	if path == "" {
		w, err = output.NewWriter(format, a.stdout)
	} else {
		w, err = output.Create(format, path)
	}
	if err != nil {
		return err
	}

	for _, item := range items {
		if err := w.Write(item); err != nil {
			w.Close()
			return err
		}
	}
	if err := w.Close(); err != nil {
		return err
	}
	if path != "" {
		a.log.Info().Int("records", w.Count()).Str("path", path).Msg("export written")
	}
	return nil
}

// outputFormat resolves --format, falling back to the configured default.
func (a *app) outputFormat(flag, path string) (output.Format, error) {
	name := flag
	if name == "" {
		name = a.cfg.Defaults.OutputFormat
	}
	format, err := output.ParseFormat(name)
	if err != nil {
		return "", err
	}
	if format == output.FormatText && path != "" {
		return "", fmt.Errorf("--output requires --format ndjson or yaml")
	}
	return format, nil
}
