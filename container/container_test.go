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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memLocals is a minimal RequestLocals used only by these tests; the real
// implementation is kernel.LocalsContainer.
type memLocals struct {
	m map[*Token]any
}

func newMemLocals() *memLocals { return &memLocals{m: make(map[*Token]any)} }

func (l *memLocals) Get(token *Token) (any, bool) { v, ok := l.m[token]; return v, ok }
func (l *memLocals) Set(token *Token, value any)  { l.m[token] = value }

func TestValueProviderResolvesToStoredInstance(t *testing.T) {
	c := New()
	tok := NewToken("config")
	require.NoError(t, c.Register(&Provider{Token: tok, Kind: ValueFactory, Value: 42}))

	v, err := c.Get(tok)
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestClassProviderSingletonCachedAcrossResolutions(t *testing.T) {
	c := New()
	tok := NewToken("svc")
	calls := 0
	require.NoError(t, c.Register(&Provider{
		Token: tok,
		Kind:  ClassFactory,
		Scope: Singleton,
		NewInstance: func(deps []any) (any, error) {
			calls++
			return &struct{ N int }{N: calls}, nil
		},
	}))

	a, err := c.Get(tok)
	require.NoError(t, err)
	b, err := c.Get(tok)
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.Equal(t, 1, calls)
}

func TestProviderNotFound(t *testing.T) {
	c := New()
	_, err := c.Get(NewToken("missing"))
	require.Error(t, err)
	var notFound *ProviderNotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestAmbiguousProvider(t *testing.T) {
	c := New()
	tok := NewToken("dup")
	require.NoError(t, c.Register(&Provider{Token: tok, Kind: ValueFactory, Value: 1}))
	err := c.Register(&Provider{Token: tok, Kind: ValueFactory, Value: 2})
	require.Error(t, err)
	var amb *AmbiguousProviderError
	assert.ErrorAs(t, err, &amb)
}

func TestCircularDependencyDetected(t *testing.T) {
	c := New()
	a := NewToken("A")
	b := NewToken("B")
	require.NoError(t, c.Register(&Provider{
		Token: a, Kind: ClassFactory, Scope: Singleton, Deps: []*Token{b},
		NewInstance: func(deps []any) (any, error) { return "a", nil },
	}))
	require.NoError(t, c.Register(&Provider{
		Token: b, Kind: ClassFactory, Scope: Singleton, Deps: []*Token{a},
		NewInstance: func(deps []any) (any, error) { return "b", nil },
	}))

	_, err := c.Get(a)
	require.Error(t, err)
	var circ *CircularDependencyError
	assert.ErrorAs(t, err, &circ)
}

// TestScopeBubblingProducesDistinctInstancesPerRequest: a SINGLETON
// provider A that transitively depends on a
// REQUEST provider B must never be cached as a singleton; two requests
// resolving A must observe distinct instances.
func TestScopeBubblingProducesDistinctInstancesPerRequest(t *testing.T) {
	c := New()
	tokB := NewToken("B")
	tokA := NewToken("A")

	require.NoError(t, c.Register(&Provider{
		Token: tokB, Kind: ClassFactory, Scope: Request,
		NewInstance: func(deps []any) (any, error) { return &struct{ Tag string }{Tag: "b"}, nil },
	}))
	require.NoError(t, c.Register(&Provider{
		Token: tokA, Kind: ClassFactory, Scope: Singleton, Deps: []*Token{tokB},
		NewInstance: func(deps []any) (any, error) { return &struct{ B any }{B: deps[0]}, nil },
	}))

	effScope, err := c.EffectiveScope(tokA)
	require.NoError(t, err)
	assert.Equal(t, Request, effScope, "A must bubble to REQUEST because B is REQUEST-scoped")

	locals1 := newMemLocals()
	locals2 := newMemLocals()

	a1, scope1, err := c.ResolveInternal(tokA, locals1)
	require.NoError(t, err)
	assert.Equal(t, Request, scope1)

	a2, scope2, err := c.ResolveInternal(tokA, locals2)
	require.NoError(t, err)
	assert.Equal(t, Request, scope2)

	assert.NotSame(t, a1, a2, "bubbled singleton must not be cached across requests")

	// Resolving a REQUEST-effective token without locals must fail cleanly
	// rather than silently caching it as a process-wide singleton.
	_, _, err = c.ResolveInternal(tokA, nil)
	require.Error(t, err)
	var reqErr *RequestScopeOutsideRequestError
	assert.ErrorAs(t, err, &reqErr)
}

func TestInstanceScopeNeverCaches(t *testing.T) {
	c := New()
	tok := NewToken("transient")
	calls := 0
	require.NoError(t, c.Register(&Provider{
		Token: tok, Kind: ClassFactory, Scope: Instance,
		NewInstance: func(deps []any) (any, error) {
			calls++
			return calls, nil
		},
	}))

	v1, err := c.Get(tok)
	require.NoError(t, err)
	v2, err := c.Get(tok)
	require.NoError(t, err)
	assert.NotEqual(t, v1, v2)
	assert.Equal(t, 2, calls)
}

func TestInstanceDependencyDoesNotBubbleByDefault(t *testing.T) {
	c := New()
	tokInst := NewToken("inst")
	tokSingleton := NewToken("singleton")

	require.NoError(t, c.Register(&Provider{
		Token: tokInst, Kind: ClassFactory, Scope: Instance,
		NewInstance: func(deps []any) (any, error) { return struct{}{}, nil },
	}))
	require.NoError(t, c.Register(&Provider{
		Token: tokSingleton, Kind: ClassFactory, Scope: Singleton, Deps: []*Token{tokInst},
		NewInstance: func(deps []any) (any, error) { return struct{}{}, nil },
	}))

	scope, err := c.EffectiveScope(tokSingleton)
	require.NoError(t, err)
	assert.Equal(t, Singleton, scope)
}
