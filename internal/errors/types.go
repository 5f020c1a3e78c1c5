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

package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Kind classifies an error for the presentation layer.
type Kind int

const (
	// KindUnknown covers errors that carry no taxonomy information.
	KindUnknown Kind = iota
	// KindValidation is a local, pre-dispatch rejection.
	KindValidation
	// KindTransport is a network or transport-collaborator failure.
	KindTransport
	// KindRemote is a well-formed error payload returned by GitHub.
	KindRemote
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindTransport:
		return "transport"
	case KindRemote:
		return "remote"
	default:
		return "unknown"
	}
}

// ValidationError reports every field that failed local validation.
// It never reaches the fetch cache.
type ValidationError struct {
	// Operation names the mutation that was rejected.
	Operation string
	// Fields maps a field name to its failure message.
	Fields map[string]string
	// Err carries the aggregated rule failures.
	Err error
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", name, e.Fields[name]))
	}
	if e.Operation == "" {
		return fmt.Sprintf("validation failed: %s", strings.Join(parts, "; "))
	}
	return fmt.Sprintf("%s: validation failed: %s", e.Operation, strings.Join(parts, "; "))
}

// Unwrap exposes both the sentinel and the aggregated rule errors.
func (e *ValidationError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrValidation}
	}
	return []error{ErrValidation, e.Err}
}

// TransportError wraps a failure to reach GitHub or to read its response.
type TransportError struct {
	Operation string
	Err       error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: transport error: %v", e.Operation, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// RemoteError wraps an error payload returned by the GitHub API.
type RemoteError struct {
	Operation string
	Err       error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: remote error: %v", e.Operation, e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }

// KindOf returns the taxonomy kind found in err's chain.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}

	var validationErr *ValidationError
	if errors.As(err, &validationErr) || errors.Is(err, ErrValidation) {
		return KindValidation
	}

	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		return KindTransport
	}

	var remoteErr *RemoteError
	if errors.As(err, &remoteErr) {
		return KindRemote
	}

	return KindUnknown
}
