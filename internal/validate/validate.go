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

// Package validate runs local, synchronous field rules before a mutation is
// dispatched. Every failing field is reported, not only the first.
package validate

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/hashicorp/go-multierror"

	relaierrors "github.com/sirseerhq/sirseer-lens/internal/errors"
)

// Rule checks a single field value and returns a message on failure.
type Rule interface {
	Check(value string) (message string, ok bool)
}

// RuleFunc adapts a function to Rule.
type RuleFunc func(value string) (string, bool)

// Check implements Rule.
func (f RuleFunc) Check(value string) (string, bool) { return f(value) }

// Required rejects empty or whitespace-only values.
func Required(message string) Rule {
	return RuleFunc(func(value string) (string, bool) {
		return message, strings.TrimSpace(value) != ""
	})
}

// Pattern rejects non-empty values that do not match re.
func Pattern(re *regexp.Regexp, message string) Rule {
	return RuleFunc(func(value string) (string, bool) {
		return message, value == "" || re.MatchString(value)
	})
}

// MaxLength rejects values longer than n characters.
func MaxLength(n int, message string) Rule {
	return RuleFunc(func(value string) (string, bool) {
		return message, utf8.RuneCountInString(value) <= n
	})
}

// OneOf rejects non-empty values outside allowed.
func OneOf(allowed []string, message string) Rule {
	return RuleFunc(func(value string) (string, bool) {
		if value == "" {
			return message, true
		}
		for _, a := range allowed {
			if value == a {
				return message, true
			}
		}
		return message, false
	})
}

// Field pairs a value with its rules. Rules run in order and the first
// failure is the field's message.
type Field struct {
	Name  string
	Value string
	Rules []Rule
}

// Check runs all fields and returns a *errors.ValidationError describing
// every failing field, or nil.
func Check(operation string, fields ...Field) error {
	var (
		result   *multierror.Error
		messages = make(map[string]string)
	)

	for _, f := range fields {
		for _, rule := range f.Rules {
			if msg, ok := rule.Check(f.Value); !ok {
				messages[f.Name] = msg
				result = multierror.Append(result, fmt.Errorf("%s: %s", f.Name, msg))
				break
			}
		}
	}

	if result == nil {
		return nil
	}
	return &relaierrors.ValidationError{
		Operation: operation,
		Fields:    messages,
		Err:       result.ErrorOrNil(),
	}
}

// Repository field rules shared by the create and update mutations.
var (
	RepositoryNamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

	MaxRepositoryNameLength        = 100
	MaxRepositoryDescriptionLength = 350
)

// RepositoryName returns the rules for a repository name.
func RepositoryName() []Rule {
	return []Rule{
		Required("Repository name is required"),
		Pattern(RepositoryNamePattern, "Repository name can only contain letters, numbers, hyphens, and underscores"),
		MaxLength(MaxRepositoryNameLength, fmt.Sprintf("Repository name must be at most %d characters", MaxRepositoryNameLength)),
	}
}

// RepositoryVisibility returns the rules for a visibility value.
func RepositoryVisibility() []Rule {
	return []Rule{
		OneOf([]string{"PUBLIC", "PRIVATE", "INTERNAL"}, "Visibility must be PUBLIC, PRIVATE or INTERNAL"),
	}
}

// RepositoryID returns the rules for a repository node ID.
func RepositoryID() []Rule {
	return []Rule{Required("Repository ID is required")}
}

// RepositoryDescription returns the rules for a free-text description.
func RepositoryDescription() []Rule {
	return []Rule{
		MaxLength(MaxRepositoryDescriptionLength, fmt.Sprintf("Description must be at most %d characters", MaxRepositoryDescriptionLength)),
	}
}
