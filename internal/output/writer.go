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
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sync"
)

// NDJSONWriter writes records as newline-delimited JSON. It is safe for
// concurrent use.
type NDJSONWriter struct {
	mu        sync.Mutex
	output    io.Writer
	encoder   *json.Encoder
	count     int
	closeFunc func() error
}

// NewNDJSONWriter creates a new NDJSON writer that writes to the specified output.
func NewNDJSONWriter(w io.Writer) *NDJSONWriter {
	return &NDJSONWriter{
		output:  w,
		encoder: json.NewEncoder(w),
	}
}

// Write writes a single record as one line.
func (w *NDJSONWriter) Write(record interface{}) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.encoder.Encode(record); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}

	w.count++
	return nil
}

// Count returns the number of records written.
func (w *NDJSONWriter) Count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.count
}

// Close runs the destination's close hook, if any.
func (w *NDJSONWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closeFunc != nil {
		fn := w.closeFunc
		w.closeFunc = nil
		return fn()
	}
	return nil
}

// Create returns a writer for format that replaces path atomically when
// closed. Nothing is written to disk until Close.
func Create(format Format, path string) (OutputWriter, error) {
	if path == "" {
		return nil, fmt.Errorf("output path is required")
	}
	buf := &bytes.Buffer{}
	commit := func() error { return writeFileAtomic(path, buf) }

	switch format {
	case FormatNDJSON:
		w := NewNDJSONWriter(buf)
		w.closeFunc = commit
		return w, nil
	case FormatYAML:
		w := NewYAMLWriter(buf)
		w.closeFunc = commit
		return w, nil
	default:
		return nil, fmt.Errorf("format %q cannot be exported to a file", format)
	}
}
