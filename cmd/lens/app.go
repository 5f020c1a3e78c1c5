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
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/sirseerhq/sirseer-lens/internal/config"
	"github.com/sirseerhq/sirseer-lens/internal/github"
	"github.com/sirseerhq/sirseer-lens/internal/metadata"
	"github.com/sirseerhq/sirseer-lens/internal/render"
	"github.com/sirseerhq/sirseer-lens/internal/session"
	"github.com/sirseerhq/sirseer-lens/pkg/version"
)

// requestTimeout bounds every GitHub request made by the CLI.
const requestTimeout = 30 * time.Second

// app carries the state shared by every command: the loaded configuration,
// the logger and the factory for GitHub clients.
type app struct {
	stdout io.Writer
	stderr io.Writer

	// Persistent flags.
	configPath   string
	tokenFlag    string
	logLevel     string
	logFormat    string
	saveMetadata bool

	cfg      *config.Config
	log      zerolog.Logger
	registry *prometheus.Registry

	// newClient builds the GitHub client; tests replace it with a mock.
	newClient func(token, endpoint string) github.Client
}

func newApp(stdout, stderr io.Writer) *app {
	return &app{
		stdout: stdout,
		stderr: stderr,
		log:    zerolog.Nop(),
		newClient: func(token, endpoint string) github.Client {
			return github.NewGraphQLClient(token, endpoint, github.WithTimeout(requestTimeout))
		},
	}
}

func newRootCommand(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "sirseer-lens",
		Short: "Browse GitHub repositories and pull requests",
		Long: `SirSeer Lens browses the repositories of the authenticated GitHub user and
the pull requests of any repository through cached, paginated list views.
Lists can be sorted, filtered and paged, and repository changes made through
the tool refresh every affected list.`,
		Version:           version.Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return a.setup(cmd) },
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "Config file (default: .sirseer-lens.yaml or ~/.sirseer/lens.yaml)")
	flags.StringVar(&a.tokenFlag, "token", "", "GitHub personal access token (overrides the token environment variable)")
	flags.StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	flags.StringVar(&a.logFormat, "log-format", "", "Log format: console or json")
	flags.BoolVar(&a.saveMetadata, "save-metadata", false, "Write session statistics to the metadata directory on exit")

	rootCmd.AddCommand(
		newReposCommand(a),
		newPullsCommand(a),
		newBrowseCommand(a),
		newServeCommand(a),
	)
	return rootCmd
}

// setup loads configuration, applies flags on top and builds the logger.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.LoadConfig(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if a.logFormat != "" {
		cfg.Log.Format = a.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	level, _ := cfg.LogLevel()
	a.cfg = cfg
	a.log = newLogger(a.stderr, cfg.Log.Format, level, cfg.Log.Color && isTerminal(a.stderr))
	a.log.Debug().Str("command", cmd.CommandPath()).Str("endpoint", cfg.GitHub.GraphQLEndpoint).Msg("configuration loaded")
	return nil
}

func newLogger(w io.Writer, format string, level zerolog.Level, color bool) zerolog.Logger {
	if format == "json" {
		return zerolog.New(w).Level(level).With().Timestamp().Logger()
	}
	cw := zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen, NoColor: !color}
	return zerolog.New(cw).Level(level).With().Timestamp().Logger()
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

// openSession builds a session over a fresh GitHub client. The tracker
// mirrors into a Prometheus registry so "serve" can expose it.
func (a *app) openSession() (*session.Session, error) {
	token := getToken(a.tokenFlag, a.cfg.GitHub.TokenEnv)
	if token == "" {
		return nil, fmt.Errorf("GitHub token not found. Set %s or use --token flag", a.cfg.GitHub.TokenEnv)
	}

	a.registry = prometheus.NewRegistry()
	a.registry.MustRegister(collectors.NewGoCollector())
	tracker, err := metadata.NewWithRegisterer(a.registry)
	if err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	client := a.newClient(token, a.cfg.GitHub.GraphQLEndpoint)
	return session.New(client, session.Options{
		Logger:              a.log,
		Tracker:             tracker,
		RepositoryPageSize:  a.cfg.Lists.RepositoryPageSize,
		PullRequestPageSize: a.cfg.Lists.PullRequestPageSize,
	}), nil
}

// closeSession disposes the session and, when asked, saves its statistics.
func (a *app) closeSession(sess *session.Session) {
	sess.Close()
	if !a.saveMetadata {
		return
	}

	meta := sess.Tracker().GenerateMetadata(version.Version)
	path, err := metadata.SaveMetadata(meta, a.cfg.Defaults.MetadataDir)
	if err != nil {
		a.log.Warn().Err(err).Msg("failed to save session metadata")
		return
	}
	a.log.Info().Str("path", path).Msg("session metadata saved")
}

func (a *app) renderer() render.Renderer {
	return render.Renderer{
		Location: time.Local,
		Color:    a.cfg.Log.Color && isTerminal(a.stdout),
	}
}
