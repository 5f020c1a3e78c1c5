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

// Package metadata tracks statistics about a session: how many pages each
// list operation fetched, how many items they carried, how mutations fared
// and how long all of it took.
//
// The tracker serves several purposes:
//   - Gives the CLI a summary to print or save after a run
//   - Feeds the Prometheus collectors exposed by the HTTP adapter
//   - Records latency for troubleshooting slow GitHub responses
package metadata

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/natefinch/atomic"
	"github.com/prometheus/client_golang/prometheus"
)

// Tracker collects statistics during a session. It implements
// listview.Recorder and mutation.Recorder and is safe for concurrent use.
type Tracker struct {
	mu        sync.Mutex
	startTime time.Time
	fetches   map[string]*OperationStats
	mutations map[string]*OperationStats

	metrics *collectors
}

type collectors struct {
	fetches       *prometheus.CounterVec
	items         *prometheus.CounterVec
	fetchDuration *prometheus.HistogramVec
	mutations     *prometheus.CounterVec
}

// New creates a new metadata tracker and initializes it with the current time.
func New() *Tracker {
	return &Tracker{
		startTime: time.Now(),
		fetches:   make(map[string]*OperationStats),
		mutations: make(map[string]*OperationStats),
	}
}

// NewWithRegisterer creates a tracker that also mirrors every record into
// Prometheus collectors registered with reg.
func NewWithRegisterer(reg prometheus.Registerer) (*Tracker, error) {
	t := New()
	c := &collectors{
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sirseer_lens",
			Name:      "fetches_total",
			Help:      "Page fetches by list operation and result.",
		}, []string{"operation", "result"}),
		items: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sirseer_lens",
			Name:      "fetched_items_total",
			Help:      "Items received by list operation.",
		}, []string{"operation"}),
		fetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "sirseer_lens",
			Name:      "fetch_duration_seconds",
			Help:      "Page fetch latency by list operation.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sirseer_lens",
			Name:      "mutations_total",
			Help:      "Dispatched mutations by operation and result.",
		}, []string{"operation", "result"}),
	}

	for _, col := range []prometheus.Collector{c.fetches, c.items, c.fetchDuration, c.mutations} {
		if err := reg.Register(col); err != nil {
			return nil, fmt.Errorf("failed to register metrics: %w", err)
		}
	}
	t.metrics = c
	return t, nil
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func stats(m map[string]*OperationStats, op string) *OperationStats {
	s, ok := m[op]
	if !ok {
		s = &OperationStats{Operation: op}
		m[op] = s
	}
	return s
}

// RecordFetch records one completed page fetch.
func (t *Tracker) RecordFetch(operation string, items int, duration time.Duration, err error) {
	t.mu.Lock()
	s := stats(t.fetches, operation)
	s.Calls++
	s.Duration += duration
	if err != nil {
		s.Failures++
	} else {
		s.Items += items
	}
	t.mu.Unlock()

	if t.metrics != nil {
		t.metrics.fetches.WithLabelValues(operation, result(err)).Inc()
		t.metrics.fetchDuration.WithLabelValues(operation).Observe(duration.Seconds())
		if err == nil {
			t.metrics.items.WithLabelValues(operation).Add(float64(items))
		}
	}
}

// RecordMutation records one dispatched mutation.
func (t *Tracker) RecordMutation(operation string, duration time.Duration, err error) {
	t.mu.Lock()
	s := stats(t.mutations, operation)
	s.Calls++
	s.Duration += duration
	if err != nil {
		s.Failures++
	}
	t.mu.Unlock()

	if t.metrics != nil {
		t.metrics.mutations.WithLabelValues(operation, result(err)).Inc()
	}
}

// Fetches returns the fetch statistics of one operation.
func (t *Tracker) Fetches(operation string) OperationStats {
	t.mu.Lock()
	defer t.mu.Unlock()
	if s, ok := t.fetches[operation]; ok {
		return *s
	}
	return OperationStats{Operation: operation}
}

// GenerateMetadata creates a SessionMetadata record of everything tracked so far.
func (t *Tracker) GenerateMetadata(lensVersion string) *SessionMetadata {
	t.mu.Lock()
	defer t.mu.Unlock()

	completedAt := time.Now()
	return &SessionMetadata{
		LensVersion: lensVersion,
		SessionID:   fmt.Sprintf("session-%d", t.startTime.Unix()),
		StartedAt:   t.startTime,
		CompletedAt: completedAt,
		Duration:    completedAt.Sub(t.startTime).String(),
		Fetches:     sortedStats(t.fetches),
		Mutations:   sortedStats(t.mutations),
	}
}

func sortedStats(m map[string]*OperationStats) []OperationStats {
	out := make([]OperationStats, 0, len(m))
	for _, s := range m {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Operation < out[j].Operation })
	return out
}

// SaveMetadata persists a SessionMetadata record as JSON in dir. The file is
// replaced atomically and named session-metadata-{timestamp}.json.
// It returns the path written.
func SaveMetadata(metadata *SessionMetadata, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create metadata directory: %w", err)
	}

	data, err := json.MarshalIndent(metadata, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode metadata: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("session-metadata-%d.json", metadata.StartedAt.Unix()))
	if err := atomic.WriteFile(path, bytes.NewReader(append(data, '\n'))); err != nil {
		return "", fmt.Errorf("failed to save metadata file: %w", err)
	}
	return path, nil
}

// WriteMetadataToWriter serializes metadata to JSON and writes it to the
// provided io.Writer. The output is formatted with indentation for readability.
func WriteMetadataToWriter(metadata *SessionMetadata, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(metadata)
}
