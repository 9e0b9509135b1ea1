// Copyright 2025 The Nestgo Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package container

import (
	"fmt"
	"strings"
)

// ProviderNotFoundError is raised when a token is requested without a
// matching registration.
type ProviderNotFoundError struct {
	Token *Token
}

func (e *ProviderNotFoundError) Error() string {
	return fmt.Sprintf("container: no provider registered for token %q", e.Token.String())
}

// CircularDependencyError names both ends of a dependency cycle detected
// during resolution.
type CircularDependencyError struct {
	Chain []*Token
}

func (e *CircularDependencyError) Error() string {
	names := make([]string, len(e.Chain))
	for i, t := range e.Chain {
		names[i] = t.String()
	}
	return fmt.Sprintf("container: circular dependency: %s", strings.Join(names, " -> "))
}

// AmbiguousProviderError is raised when two providers claim the same
// token.
type AmbiguousProviderError struct {
	Token *Token
}

func (e *AmbiguousProviderError) Error() string {
	return fmt.Sprintf("container: ambiguous provider for token %q: already registered", e.Token.String())
}

// InvalidProviderError is raised when a Provider violates its invariants
// at registration time.
type InvalidProviderError struct {
	Token  *Token
	Reason string
}

func (e *InvalidProviderError) Error() string {
	if e.Token == nil {
		return fmt.Sprintf("container: invalid provider: %s", e.Reason)
	}
	return fmt.Sprintf("container: invalid provider for token %q: %s", e.Token.String(), e.Reason)
}
