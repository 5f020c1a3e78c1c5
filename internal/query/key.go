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

package query

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"slices"
	"strings"
)

// Key identifies a page chain. It is derived from the operation, scope,
// filters and sort of a descriptor; the cursor never contributes.
type Key string

// Operation returns the operation prefix of the key.
func (k Key) Operation() Operation {
	op, _, _ := strings.Cut(string(k), ":")
	return Operation(op)
}

// DeriveKey returns the chain key for d. The encoding is canonical: filters
// are ordered by name and every component is length-prefixed, so semantically
// identical descriptors always yield the same key across processes.
func DeriveKey(d Descriptor) Key {
	h := sha256.New()

	writeField(h, string(d.Operation))

	writeCount(h, len(d.Scope))
	for _, part := range d.Scope {
		writeField(h, part)
	}

	names := make([]string, 0, len(d.Filters))
	for name := range d.Filters {
		names = append(names, name)
	}
	slices.Sort(names)
	writeCount(h, len(names))
	for _, name := range names {
		writeField(h, name)
		writeField(h, d.Filters[name])
	}

	writeField(h, d.Sort.Field)
	writeField(h, string(d.Sort.Direction))

	sum := h.Sum(nil)
	return Key(string(d.Operation) + ":" + hex.EncodeToString(sum[:16]))
}

type byteWriter interface {
	Write(p []byte) (int, error)
}

func writeCount(w byteWriter, n int) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(n)) // #nosec G115 - n is a slice length
	_, _ = w.Write(buf[:])
}

func writeField(w byteWriter, s string) {
	writeCount(w, len(s))
	_, _ = w.Write([]byte(s))
}

// Match selects every chain of an operation within a scope, whatever its
// filters and sort. Mutations declare their affect-lists as matches.
type Match struct {
	Operation Operation
	Scope     Scope
}

// Matches reports whether d belongs to the matched chains.
func (m Match) Matches(d Descriptor) bool {
	return d.Operation == m.Operation && d.Scope.Equal(m.Scope)
}
