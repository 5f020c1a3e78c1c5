package main

import (
	"errors"
	"fmt"
	"os"
	"testing"

	relaierrors "github.com/sirseerhq/sirseer-lens/internal/errors"
	"github.com/sirseerhq/sirseer-lens/internal/query"
	"github.com/sirseerhq/sirseer-lens/internal/sources"
)

func TestParseRepository(t *testing.T) {
	tests := []struct {
		input     string
		wantOwner string
		wantRepo  string
		wantErr   bool
	}{
		{
			input:     "golang/go",
			wantOwner: "golang",
			wantRepo:  "go",
			wantErr:   false,
		},
		{
			input:     "octocat/hello-world",
			wantOwner: "octocat",
			wantRepo:  "hello-world",
			wantErr:   false,
		},
		{
			input:   "invalid",
			wantErr: true,
		},
		{
			input:   "too/many/slashes",
			wantErr: true,
		},
		{
			input:   "/repo",
			wantErr: true,
		},
		{
			input:   "owner/",
			wantErr: true,
		},
		{
			input:   "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		owner, repo, err := parseRepository(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseRepository(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if !tt.wantErr {
			if owner != tt.wantOwner {
				t.Errorf("parseRepository(%q) owner = %q, want %q", tt.input, owner, tt.wantOwner)
			}
			if repo != tt.wantRepo {
				t.Errorf("parseRepository(%q) repo = %q, want %q", tt.input, repo, tt.wantRepo)
			}
		}
	}
}

func TestGetToken(t *testing.T) {
	tests := []struct {
		name      string
		flagToken string
		envVar    string
		envValue  string
		want      string
	}{
		{
			name:      "flag takes precedence",
			flagToken: "flag-token",
			envVar:    "GITHUB_TOKEN",
			envValue:  "env-token",
			want:      "flag-token",
		},
		{
			name:     "env var fallback",
			envVar:   "GITHUB_TOKEN",
			envValue: "env-token",
			want:     "env-token",
		},
		{
			name:     "custom env var",
			envVar:   "CUSTOM_TOKEN",
			envValue: "custom-token",
			want:     "custom-token",
		},
		{
			name:   "no token",
			envVar: "NONEXISTENT_LENS_TOKEN",
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.envVar, tt.envValue)
			got := getToken(tt.flagToken, tt.envVar)
			if got != tt.want {
				t.Errorf("getToken(%q, %q) = %q, want %q", tt.flagToken, tt.envVar, got, tt.want)
			}
		})
	}
}

func TestGetToken_DefaultEnvVar(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "default-token")
	if got := getToken("", ""); got != "default-token" {
		t.Errorf("getToken with empty env var name = %q, want default-token", got)
	}
}

func TestMapErrorToExitCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{
			name:     "nil error",
			err:      nil,
			wantCode: 0,
		},
		{
			name:     "general error",
			err:      os.ErrClosed,
			wantCode: 1,
		},
		{
			name:     "invalid token",
			err:      &relaierrors.RemoteError{Operation: "list-repositories", Err: relaierrors.ErrInvalidToken},
			wantCode: 2,
		},
		{
			name:     "repository not found",
			err:      fmt.Errorf("pulls: %w", relaierrors.ErrRepoNotFound),
			wantCode: 2,
		},
		{
			name:     "validation",
			err:      &relaierrors.ValidationError{Operation: "create-repository", Err: errors.New("name: required")},
			wantCode: 2,
		},
		{
			name:     "rate limit",
			err:      relaierrors.ErrRateLimit,
			wantCode: 2,
		},
		{
			name:     "transport",
			err:      &relaierrors.TransportError{Operation: "list-repositories", Err: errors.New("connection reset")},
			wantCode: 3,
		},
		{
			name:     "network failure",
			err:      relaierrors.ErrNetworkFailure,
			wantCode: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapErrorToExitCode(tt.err)
			if got != tt.wantCode {
				t.Errorf("mapErrorToExitCode(%v) = %d, want %d", tt.err, got, tt.wantCode)
			}
		})
	}
}

func TestParseSort(t *testing.T) {
	def := sources.RepositoriesQuery(0).Sort

	got, err := parseSort(repositorySortNames, "stars", "asc", def)
	if err != nil {
		t.Fatalf("parseSort: %v", err)
	}
	if got.Field != "STARGAZERS" || got.Direction != query.Asc {
		t.Errorf("parseSort(stars, asc) = %+v", got)
	}

	got, err = parseSort(repositorySortNames, "", "", def)
	if err != nil || got != def {
		t.Errorf("parseSort with no flags = %+v, %v; want default %+v", got, err, def)
	}

	if _, err := parseSort(pullRequestSortNames, "stars", "", def); err == nil {
		t.Error("expected error for a repository-only sort on pull requests")
	}
	if _, err := parseSort(repositorySortNames, "", "sideways", def); err == nil {
		t.Error("expected error for an unknown direction")
	}
}

func TestParseState(t *testing.T) {
	tests := map[string]string{
		"open":   sources.StateOpen,
		"OPEN":   sources.StateOpen,
		"closed": sources.StateClosedOrMerged,
		"all":    "",
	}
	for in, want := range tests {
		got, err := parseState(in)
		if err != nil || got != want {
			t.Errorf("parseState(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := parseState("merged"); err == nil {
		t.Error("expected error for unknown state")
	}
}
