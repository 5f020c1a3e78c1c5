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

package github

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirseerhq/sirseer-lens/pkg/version"
)

// defaultMaxResponseBytes caps a single GraphQL response body.
const defaultMaxResponseBytes = 10 * 1024 * 1024

// ClientOption configures a GraphQLClient.
type ClientOption func(*clientOptions)

type clientOptions struct {
	timeout          time.Duration
	base             http.RoundTripper
	maxResponseBytes int64
}

// WithTimeout bounds every request, including reading the response body.
// Zero leaves requests bounded only by their context.
func WithTimeout(d time.Duration) ClientOption {
	return func(o *clientOptions) { o.timeout = d }
}

// WithBaseTransport replaces the pooled HTTP transport beneath authentication.
func WithBaseTransport(rt http.RoundTripper) ClientOption {
	return func(o *clientOptions) { o.base = rt }
}

// WithMaxResponseBytes overrides the 10MB response size limit.
func WithMaxResponseBytes(n int64) ClientOption {
	return func(o *clientOptions) { o.maxResponseBytes = n }
}

// newHTTPClient builds the authenticated HTTP client used by the GraphQL client.
func newHTTPClient(token string, opts clientOptions) *http.Client {
	base := opts.base
	if base == nil {
		base = &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 10,
			MaxConnsPerHost:     10,
			IdleConnTimeout:     90 * time.Second,
			ForceAttemptHTTP2:   true,
		}
	}

	limit := opts.maxResponseBytes
	if limit <= 0 {
		limit = defaultMaxResponseBytes
	}

	return &http.Client{
		Timeout: opts.timeout,
		Transport: &authTransport{
			token:     token,
			userAgent: version.UserAgent(),
			limit:     limit,
			base:      base,
		},
	}
}

// authTransport adds authentication header and safety limits to HTTP requests
type authTransport struct {
	token     string
	userAgent string
	limit     int64
	base      http.RoundTripper
}

// RoundTrip implements http.RoundTripper
func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// Clone the request to avoid modifying the original
	req = req.Clone(req.Context())

	if t.token != "" {
		req.Header.Set("Authorization", "Bearer "+t.token)
	}
	req.Header.Set("User-Agent", t.userAgent)

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	if resp.Body != nil {
		resp.Body = &limitedReader{
			ReadCloser: resp.Body,
			limit:      t.limit,
		}
	}

	return resp, nil
}

// limitedReader wraps a ReadCloser with a size limit to prevent excessive memory usage.
type limitedReader struct {
	io.ReadCloser
	limit int64
	read  int64
}

// Read implements io.Reader with size limit enforcement.
func (lr *limitedReader) Read(p []byte) (n int, err error) {
	if lr.read >= lr.limit {
		return 0, fmt.Errorf("response size exceeded limit of %d bytes", lr.limit)
	}

	remaining := lr.limit - lr.read
	if int64(len(p)) > remaining {
		p = p[:remaining]
	}

	n, err = lr.ReadCloser.Read(p)
	lr.read += int64(n)

	return n, err
}
