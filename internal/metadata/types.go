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

package metadata

import (
	"time"
)

// SessionMetadata is the summary of one session.
type SessionMetadata struct {
	LensVersion string           `json:"lens_version"`
	SessionID   string           `json:"session_id"`
	StartedAt   time.Time        `json:"started_at"`
	CompletedAt time.Time        `json:"completed_at"`
	Duration    string           `json:"duration"`
	Fetches     []OperationStats `json:"fetches"`
	Mutations   []OperationStats `json:"mutations"`
}

// OperationStats aggregates the calls of one operation. Items counts only
// successful fetches.
type OperationStats struct {
	Operation string        `json:"operation"`
	Calls     int           `json:"calls"`
	Failures  int           `json:"failures"`
	Items     int           `json:"items,omitempty"`
	Duration  time.Duration `json:"duration_ns"`
}
