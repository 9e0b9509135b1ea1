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

package kernel

import (
	"sync"

	"github.com/nestgo/nestgo/container"
)

// LocalsContainer is the per-request mapping from token to instance:
// created at request entry when the route needs
// one, always holding at least the Context entry, destroyed when the
// response is produced. It implements container.RequestLocals so the DI
// container can cache REQUEST-scoped providers here.
type LocalsContainer struct {
	mu     sync.Mutex
	values map[*container.Token]any
	named  map[string]any
}

// NewLocalsContainer creates a LocalsContainer seeded with ctx under
// ContextToken, and attaches itself back onto ctx.
func NewLocalsContainer(ctx *Context) *LocalsContainer {
	l := &LocalsContainer{values: map[*container.Token]any{ContextToken: ctx}}
	ctx.AttachLocals(l)
	return l
}

// Get implements container.RequestLocals.
func (l *LocalsContainer) Get(token *container.Token) (any, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	v, ok := l.values[token]
	return v, ok
}

// Set implements container.RequestLocals.
func (l *LocalsContainer) Set(token *container.Token, value any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.values[token] = value
}

// SetNamed stores a value under a string key, the request-scoped bag a
// Locals-bound handler parameter reads from. It is a plain name-to-value
// map, distinct from the token-keyed DI cache above and untouched by the
// scope-bubbling machinery.
func (l *LocalsContainer) SetNamed(key string, value any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.named == nil {
		l.named = make(map[string]any)
	}
	l.named[key] = value
}

// GetNamed retrieves a value set by SetNamed.
func (l *LocalsContainer) GetNamed(key string) (any, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	v, ok := l.named[key]
	return v, ok
}
