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

// Package config loads sirseer-lens settings from YAML files, .env files and
// environment variables.
package config

// Config represents the complete configuration for sirseer-lens.
type Config struct {
	GitHub       GitHubConfig          `yaml:"github"`
	Lists        ListsConfig           `yaml:"lists"`
	Repositories map[string]RepoConfig `yaml:"repositories"`
	Defaults     DefaultsConfig        `yaml:"defaults"`
	Log          LogConfig             `yaml:"log"`
	Server       ServerConfig          `yaml:"server"`
}

// GitHubConfig contains GitHub API settings.
type GitHubConfig struct {
	GraphQLEndpoint string `yaml:"graphql_endpoint"`
	TokenEnv        string `yaml:"token_env"`
}

// ListsConfig sets the page size of each list.
type ListsConfig struct {
	RepositoryPageSize  int `yaml:"repository_page_size"`
	PullRequestPageSize int `yaml:"pull_request_page_size"`
}

// RepoConfig contains repository-specific overrides, keyed by "owner/name".
type RepoConfig struct {
	PullRequestPageSize int `yaml:"pull_request_page_size"`
}

// DefaultsConfig holds defaults for command flags.
type DefaultsConfig struct {
	OutputFormat string `yaml:"output_format"`
	MetadataDir  string `yaml:"metadata_dir"`
}

// LogConfig configures the zerolog logger built by the CLI.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Color  bool   `yaml:"color"`
}

// ServerConfig configures the HTTP adapter started by "serve".
type ServerConfig struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		GitHub: GitHubConfig{
			GraphQLEndpoint: "https://api.github.com/graphql",
			TokenEnv:        "GITHUB_TOKEN",
		},
		Lists: ListsConfig{
			RepositoryPageSize:  20,
			PullRequestPageSize: 10,
		},
		Repositories: make(map[string]RepoConfig),
		Defaults: DefaultsConfig{
			OutputFormat: "text",
			MetadataDir:  "~/.sirseer/lens",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
			Color:  true,
		},
		Server: ServerConfig{
			Addr:           "127.0.0.1:8080",
			AllowedOrigins: []string{"http://localhost:3000"},
		},
	}
}
