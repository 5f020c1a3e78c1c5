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

package output

import (
	"fmt"
	"io"
	"strings"
)

// OutputWriter is implemented by every record writer in this package.
type OutputWriter interface {
	// Write encodes a single record.
	Write(record interface{}) error

	// Count returns the number of records written so far.
	Count() int

	// Close flushes pending output and releases the destination.
	Close() error
}

// Format names an output encoding.
type Format string

const (
	FormatText   Format = "text"
	FormatNDJSON Format = "ndjson"
	FormatYAML   Format = "yaml"
)

// ParseFormat accepts a format name as typed on the command line.
// "json" is accepted as an alias for NDJSON.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text":
		return FormatText, nil
	case "ndjson", "json":
		return FormatNDJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown output format %q (expected text, ndjson or yaml)", s)
	}
}

// NewWriter returns a streaming writer for format. Text output is rendered
// by the caller and has no record writer.
func NewWriter(format Format, w io.Writer) (OutputWriter, error) {
	switch format {
	case FormatNDJSON:
		return NewNDJSONWriter(w), nil
	case FormatYAML:
		return NewYAMLWriter(w), nil
	default:
		return nil, fmt.Errorf("format %q has no record writer", format)
	}
}
