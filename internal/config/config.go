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

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// MaxPageSize is GitHub's per-connection limit.
const MaxPageSize = 100

// LoadConfig loads configuration with the following precedence (highest first):
// 1. Environment variables, including those loaded from .env
// 2. Config file (if exists)
// 3. Default values
//
// Command-line flags are applied on top by the caller.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		if err := loadConfigFile(configPath, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	} else {
		home := homeDir()
		defaultPaths := []string{
			".sirseer-lens.yaml",
			".sirseer-lens.yml",
			filepath.Join(home, ".sirseer", "lens.yaml"),
			filepath.Join(home, ".sirseer", "lens.yml"),
		}

		for _, path := range defaultPaths {
			if _, err := os.Stat(path); err == nil {
				if err := loadConfigFile(path, cfg); err != nil {
					return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
				}
				break
			}
		}
	}

	if err := LoadDotEnv(".env"); err != nil {
		return nil, err
	}
	applyEnvOverrides(cfg)

	cfg.Defaults.MetadataDir = expandPath(cfg.Defaults.MetadataDir)

	return cfg, nil
}

// LoadDotEnv loads variables from the given .env files into the process
// environment. Missing files are skipped and variables that are already set
// are never overwritten.
func LoadDotEnv(paths ...string) error {
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
	}
	return nil
}

// loadConfigFile reads and parses a YAML configuration file.
func loadConfigFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
// Malformed numbers are ignored.
func applyEnvOverrides(cfg *Config) {
	if endpoint := os.Getenv("GITHUB_GRAPHQL_ENDPOINT"); endpoint != "" {
		cfg.GitHub.GraphQLEndpoint = endpoint
	}

	if size := os.Getenv("SIRSEER_LENS_REPO_PAGE_SIZE"); size != "" {
		if n, err := parsePositiveInt(size); err == nil {
			cfg.Lists.RepositoryPageSize = n
		}
	}
	if size := os.Getenv("SIRSEER_LENS_PULL_PAGE_SIZE"); size != "" {
		if n, err := parsePositiveInt(size); err == nil {
			cfg.Lists.PullRequestPageSize = n
		}
	}

	if level := os.Getenv("SIRSEER_LENS_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if format := os.Getenv("SIRSEER_LENS_LOG_FORMAT"); format != "" {
		cfg.Log.Format = format
	}
	if c := os.Getenv("SIRSEER_LENS_COLOR"); c != "" {
		cfg.Log.Color = parseBool(c)
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		cfg.Log.Color = false
	}

	if addr := os.Getenv("SIRSEER_LENS_ADDR"); addr != "" {
		cfg.Server.Addr = addr
	}
	if dir := os.Getenv("SIRSEER_LENS_METADATA_DIR"); dir != "" {
		cfg.Defaults.MetadataDir = dir
	}
}

func homeDir() string {
	home := os.Getenv("HOME")
	if home == "" {
		home = os.Getenv("USERPROFILE") // Windows
	}
	return home
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		path = filepath.Join(homeDir(), path[2:])
	}
	return os.ExpandEnv(path)
}

// parsePositiveInt parses a string as a positive integer.
func parsePositiveInt(s string) (int, error) {
	var i int
	_, err := fmt.Sscanf(s, "%d", &i)
	if err != nil {
		return 0, fmt.Errorf("failed to parse integer from '%s': %w", s, err)
	}
	if i <= 0 {
		return 0, fmt.Errorf("value must be positive, got: %d", i)
	}
	return i, nil
}

// parseBool parses a string as a boolean value.
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "yes" || s == "1" || s == "on"
}

// Token returns the GitHub token from the environment variable named by
// github.token_env.
func (c *Config) Token() string {
	name := c.GitHub.TokenEnv
	if name == "" {
		name = "GITHUB_TOKEN"
	}
	return os.Getenv(name)
}

// PullRequestPageSize returns the page size for a repository's pull
// requests, honoring per-repository overrides.
func (c *Config) PullRequestPageSize(repo string) int {
	if repoConfig, ok := c.Repositories[repo]; ok && repoConfig.PullRequestPageSize > 0 {
		return repoConfig.PullRequestPageSize
	}
	return c.Lists.PullRequestPageSize
}

// LogLevel parses log.level.
func (c *Config) LogLevel() (zerolog.Level, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(c.Log.Level))
	if err != nil {
		return zerolog.InfoLevel, fmt.Errorf("invalid log level %q: %w", c.Log.Level, err)
	}
	return level, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := checkPageSize("repository page size", c.Lists.RepositoryPageSize); err != nil {
		return err
	}
	if err := checkPageSize("pull request page size", c.Lists.PullRequestPageSize); err != nil {
		return err
	}
	for repo, rc := range c.Repositories {
		if rc.PullRequestPageSize == 0 {
			continue
		}
		if err := checkPageSize("pull request page size for "+repo, rc.PullRequestPageSize); err != nil {
			return err
		}
	}
	if c.GitHub.GraphQLEndpoint == "" {
		return fmt.Errorf("GitHub GraphQL endpoint cannot be empty")
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	switch c.Log.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("invalid log format %q (expected console or json)", c.Log.Format)
	}
	return nil
}

func checkPageSize(name string, size int) error {
	if size <= 0 {
		return fmt.Errorf("%s must be positive, got: %d", name, size)
	}
	if size > MaxPageSize {
		return fmt.Errorf("%s %d exceeds GitHub API limit of %d", name, size, MaxPageSize)
	}
	return nil
}
