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

// Package output writes fetched list items as machine-readable records.
// Two formats are supported: NDJSON, one JSON object per line, and YAML, one
// document per record.
//
// Writers created with NewWriter stream to any io.Writer. Writers created
// with Create buffer records and replace the target file atomically on
// Close, so a failed or interrupted export never leaves a partial file.
//
// Example usage:
//
//	w, err := output.Create(output.FormatYAML, "repos.yaml")
//	if err != nil {
//	    return err
//	}
//	for _, repo := range view.Items {
//	    if err := w.Write(repo); err != nil {
//	        return err
//	    }
//	}
//	return w.Close()
package output
