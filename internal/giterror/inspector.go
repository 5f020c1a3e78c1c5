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
	"net"
	"regexp"
	"strconv"
	"strings"

	relaierrors "github.com/sirseerhq/sirseer-lens/internal/errors"
)

// Inspector provides methods for analyzing GitHub API errors.
type Inspector interface {
	// IsAuthError returns true if the error represents an authentication or authorization failure.
	IsAuthError(err error) bool

	// IsNotFoundError returns true if the error represents a resource not found error.
	IsNotFoundError(err error) bool

	// IsRateLimitError returns true if the error represents a rate limit error.
	IsRateLimitError(err error) bool

	// IsComplexityError returns true if the error represents a query complexity error.
	IsComplexityError(err error) bool

	// IsNetworkError returns true if the error represents a network connectivity error.
	IsNetworkError(err error) bool

	// IsServerError returns true if GitHub answered with a 5xx status.
	IsServerError(err error) bool
}

// GitHubErrorInspector implements the Inspector interface for errors produced
// by the shurcooL/graphql client and the net/http stack beneath it.
type GitHubErrorInspector struct{}

// NewInspector creates a new GitHubErrorInspector.
func NewInspector() Inspector {
	return &GitHubErrorInspector{}
}

// statusPattern matches the status line the graphql client embeds in
// non-200 responses, e.g. "non-200 OK status code: 401 Unauthorized body: ...".
var statusPattern = regexp.MustCompile(`status code: (\d{3})`)

// StatusCode extracts the HTTP status code embedded in err, or 0.
func StatusCode(err error) int {
	if err == nil {
		return 0
	}
	m := statusPattern.FindStringSubmatch(err.Error())
	if m == nil {
		return 0
	}
	code, _ := strconv.Atoi(m[1])
	return code
}

// IsAuthError checks if the error is an authentication or authorization error.
func (i *GitHubErrorInspector) IsAuthError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, relaierrors.ErrInvalidToken) {
		return true
	}
	if code := StatusCode(err); code == 401 || code == 403 {
		return true
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "401") ||
		strings.Contains(errStr, "unauthorized") ||
		strings.Contains(errStr, "forbidden") ||
		strings.Contains(errStr, "bad credentials") ||
		strings.Contains(errStr, "authentication")
}

// IsNotFoundError checks if the error is a not found error.
func (i *GitHubErrorInspector) IsNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, relaierrors.ErrRepoNotFound) || StatusCode(err) == 404 {
		return true
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "not found") ||
		strings.Contains(errStr, "could not resolve to a repository") ||
		strings.Contains(errStr, "could not resolve to a node")
}

// IsRateLimitError checks if the error is a rate limit error.
func (i *GitHubErrorInspector) IsRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, relaierrors.ErrRateLimit) || StatusCode(err) == 429 {
		return true
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "rate limit")
}

// IsComplexityError checks if the error is a query complexity error.
func (i *GitHubErrorInspector) IsComplexityError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "complexity") ||
		strings.Contains(errStr, "exceeds maximum")
}

// IsNetworkError checks if the error is a network connectivity error,
// including deadlines set on the request context.
func (i *GitHubErrorInspector) IsNetworkError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, relaierrors.ErrNetworkFailure) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "temporary failure") ||
		strings.Contains(errStr, "dial tcp") ||
		strings.Contains(errStr, "tls handshake") ||
		strings.Contains(errStr, "network is unreachable") ||
		strings.Contains(errStr, "response size exceeded")
}

// IsServerError checks if GitHub answered with a 5xx status.
func (i *GitHubErrorInspector) IsServerError(err error) bool {
	code := StatusCode(err)
	return code >= 500 && code <= 599
}

// Classify sorts a raw client error into the transport or remote kind.
// Errors that never produced a well-formed GitHub answer (network failures,
// deadlines, cancellations, 5xx gateways) are transport errors; everything
// else came back from GitHub and is remote.
func Classify(inspector Inspector, err error) relaierrors.Kind {
	switch {
	case err == nil:
		return relaierrors.KindUnknown
	case errors.Is(err, context.Canceled),
		inspector.IsNetworkError(err),
		inspector.IsServerError(err):
		return relaierrors.KindTransport
	default:
		return relaierrors.KindRemote
	}
}
