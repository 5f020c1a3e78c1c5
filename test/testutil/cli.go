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


package testutil

import (
	"bytes"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

var lens struct {
	once sync.Once
	path string
	err  error
	out  []byte
}

// moduleRoot is two directories above this file.
func moduleRoot() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..")
}

// BuildBinary compiles cmd/lens into a temp directory the first time it is
// called and returns the same path afterwards.
func BuildBinary(t *testing.T) string {
	t.Helper()

	lens.once.Do(func() {
		dir, err := os.MkdirTemp("", "lens-bin")
		if err != nil {
			lens.err = err
			return
		}
		lens.path = filepath.Join(dir, "sirseer-lens")

		build := exec.Command("go", "build", "-o", lens.path, "./cmd/lens")
		build.Dir = moduleRoot()
		lens.out, lens.err = build.CombinedOutput()
	})

	require.NoError(t, lens.err, "building sirseer-lens:\n%s", lens.out)
	return lens.path
}

// Result is one finished CLI run.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// RunCLI runs sirseer-lens with args. Each run gets its own HOME and
// working directory so no user config or history is picked up.
func RunCLI(t *testing.T, args []string, env map[string]string) Result {
	t.Helper()

	cmd := exec.Command(BuildBinary(t), args...)
	cmd.Dir = t.TempDir()
	cmd.Env = append(os.Environ(), "HOME="+t.TempDir(), "NO_COLOR=1")
	for k, v := range env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout, cmd.Stderr = &stdout, &stderr

	res := Result{}
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		require.True(t, errors.As(err, &exitErr), "running sirseer-lens: %v", err)
		res.ExitCode = exitErr.ExitCode()
	}
	res.Stdout, res.Stderr = stdout.String(), stderr.String()
	return res
}

// RunWithServer points the CLI at a fake GraphQL endpoint with a test token.
func RunWithServer(t *testing.T, endpoint string, args ...string) Result {
	t.Helper()
	return RunCLI(t, args, map[string]string{
		"GITHUB_TOKEN":            "test-token",
		"GITHUB_GRAPHQL_ENDPOINT": endpoint,
	})
}

// RequireSuccess stops the test unless the run exited 0.
func RequireSuccess(t *testing.T, res Result) {
	t.Helper()
	require.Zero(t, res.ExitCode, "stderr:\n%s", res.Stderr)
}

// RequireExit stops the test unless the run exited with code and, when
// stderrContains is set, reported it on stderr.
func RequireExit(t *testing.T, res Result, code int, stderrContains string) {
	t.Helper()
	require.Equal(t, code, res.ExitCode, "stderr:\n%s", res.Stderr)
	if stderrContains != "" {
		require.Contains(t, res.Stderr, stderrContains)
	}
}
