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

package giterror

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"

	relaierrors "github.com/sirseerhq/sirseer-lens/internal/errors"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"graphql client status", errors.New(`non-200 OK status code: 401 Unauthorized body: "{}"`), 401},
		{"wrapped", fmt.Errorf("query: %w", errors.New("non-200 OK status code: 502 Bad Gateway body: \"\"")), 502},
		{"no status", errors.New("something"), 0},
		{"nil", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusCode(tt.err))
		})
	}
}

func TestGitHubErrorInspector(t *testing.T) {
	inspector := NewInspector()

	tests := []struct {
		name   string
		err    error
		method func(error) bool
		want   bool
	}{
		{"401 status", errors.New("non-200 OK status code: 401 Unauthorized body: \"\""), inspector.IsAuthError, true},
		{"bad credentials", errors.New("Bad credentials"), inspector.IsAuthError, true},
		{"token sentinel", fmt.Errorf("x: %w", relaierrors.ErrInvalidToken), inspector.IsAuthError, true},
		{"not auth", errors.New("something went wrong"), inspector.IsAuthError, false},
		{"nil auth", nil, inspector.IsAuthError, false},

		{"could not resolve", errors.New("Could not resolve to a Repository with the name 'org/repo'."), inspector.IsNotFoundError, true},
		{"404 status", errors.New("non-200 OK status code: 404 Not Found body: \"\""), inspector.IsNotFoundError, true},
		{"node id", errors.New("Could not resolve to a node with the global id of 'R_x'"), inspector.IsNotFoundError, true},
		{"not not-found", errors.New("internal server error"), inspector.IsNotFoundError, false},

		{"rate limit text", errors.New("API rate limit exceeded"), inspector.IsRateLimitError, true},
		{"429 status", errors.New("non-200 OK status code: 429 Too Many Requests body: \"\""), inspector.IsRateLimitError, true},
		{"secondary", errors.New("You have exceeded a secondary rate limit"), inspector.IsRateLimitError, true},
		{"not rate limit", errors.New("timeout occurred"), inspector.IsRateLimitError, false},

		{"complexity", errors.New("Query has complexity 120001, which exceeds max complexity of 120000"), inspector.IsComplexityError, true},
		{"not complexity", errors.New("invalid query syntax"), inspector.IsComplexityError, false},

		{"connection refused", errors.New("dial tcp 127.0.0.1:443: connection refused"), inspector.IsNetworkError, true},
		{"deadline", fmt.Errorf("post: %w", context.DeadlineExceeded), inspector.IsNetworkError, true},
		{"net.Error", &net.DNSError{Err: "no such host", Name: "api.github.com"}, inspector.IsNetworkError, true},
		{"size limit", errors.New("response size exceeded limit of 10 bytes"), inspector.IsNetworkError, true},
		{"not network", errors.New("invalid json response"), inspector.IsNetworkError, false},

		{"502", errors.New("non-200 OK status code: 502 Bad Gateway body: \"\""), inspector.IsServerError, true},
		{"401 is not server", errors.New("non-200 OK status code: 401 Unauthorized body: \"\""), inspector.IsServerError, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.method(tt.err))
		})
	}
}

func TestClassify(t *testing.T) {
	inspector := NewInspector()

	tests := []struct {
		name string
		err  error
		want relaierrors.Kind
	}{
		{"nil", nil, relaierrors.KindUnknown},
		{"network", errors.New("dial tcp: connection refused"), relaierrors.KindTransport},
		{"canceled", context.Canceled, relaierrors.KindTransport},
		{"gateway", errors.New("non-200 OK status code: 503 Service Unavailable body: \"\""), relaierrors.KindTransport},
		{"graphql error payload", errors.New("Could not resolve to a Repository with the name 'a/b'."), relaierrors.KindRemote},
		{"auth", errors.New("non-200 OK status code: 401 Unauthorized body: \"\""), relaierrors.KindRemote},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(inspector, tt.err))
		})
	}
}
