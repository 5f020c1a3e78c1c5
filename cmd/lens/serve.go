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
	"github.com/spf13/cobra"

	"github.com/sirseerhq/sirseer-lens/internal/server"
)

func newServeCommand(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve list views over HTTP",
		Long: `Serve the repository and pull request list views as a JSON API.

Each client opens a view, then drives it with filter, sort, load-more and
retry requests. Views share one cache, so repository changes made through the
API refresh every open repository view. Prometheus metrics are exposed at
/metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = a.cfg.Server.Addr
			}

			sess, err := a.openSession()
			if err != nil {
				return err
			}
			defer a.closeSession(sess)

			srv := server.New(sess, server.Options{
				Logger:         a.log,
				AllowedOrigins: a.cfg.Server.AllowedOrigins,
				Gatherer:       a.registry,
				PageSizeFor: func(owner, name string) int {
					return a.cfg.PullRequestPageSize(owner + "/" + name)
				},
			})
			return srv.Run(cmd.Context(), addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config)")
	return cmd
}
