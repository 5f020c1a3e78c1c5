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

package mutation

// Result is the outcome of a mutation: Ok with a value or Failed with an error.
type Result[T any] struct {
	value T
	err   error
}

// Ok returns a successful result.
func Ok[T any](value T) Result[T] {
	return Result[T]{value: value}
}

// Failed returns a failed result.
func Failed[T any](err error) Result[T] {
	return Result[T]{err: err}
}

// IsOk reports whether the mutation succeeded.
func (r Result[T]) IsOk() bool { return r.err == nil }

// Value returns the mutation value; the zero value when failed.
func (r Result[T]) Value() T { return r.value }

// Err returns the failure, or nil.
func (r Result[T]) Err() error { return r.err }

// Unwrap returns the value and error in Go's usual form.
func (r Result[T]) Unwrap() (T, error) { return r.value, r.err }
