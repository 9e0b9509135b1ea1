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

// Package container implements the dependency-injection container: provider
// registration, constructor-based resolution, cycle detection, and scope
// bubbling for the request-lifecycle engine.
package container

import (
	"reflect"
	"sync"
)

// Token is the opaque identity under which a provider is registered and
// resolved. Tokens are compared by reference (pointer identity), never by
// value, so two tokens built from the same name are still distinct.
//
// Example:
//
//	var UserServiceToken = container.NewToken("UserService")
type Token struct {
	name string
}

// NewToken allocates a fresh token. The name is used only for diagnostics
// (error messages, debug dumps) and plays no role in identity or lookup.
func NewToken(name string) *Token {
	return &Token{name: name}
}

// String returns the token's diagnostic name.
func (t *Token) String() string {
	if t == nil {
		return "<nil token>"
	}
	return t.name
}

var (
	typeTokensMu sync.Mutex
	typeTokens   = make(map[reflect.Type]*Token)
)

// TokenForType returns the stable token associated with a Go type, creating
// it on first use. Constructor-injection (§4.2) reads parameter types off a
// controller's constructor metadata and must resolve the same token every
// time it sees the same type, so tokens derived this way are cached
// process-wide rather than allocated per call.
func TokenForType(t reflect.Type) *Token {
	typeTokensMu.Lock()
	defer typeTokensMu.Unlock()

	if tok, ok := typeTokens[t]; ok {
		return tok
	}
	tok := NewToken(t.String())
	typeTokens[t] = tok
	return tok
}
