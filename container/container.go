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
	"sync"
)

// RequestLocals is the narrow view of a per-request LocalsContainer that
// the container needs: get/set a single REQUEST-scoped instance by token.
// The concrete implementation lives in package kernel; container does not
// import it, to keep the dependency graph request-kernel -> container, not
// the other way around.
type RequestLocals interface {
	Get(token *Token) (any, bool)
	Set(token *Token, value any)
}

// RequestScopeOutsideRequestError is returned when a REQUEST-effective
// token is resolved without a LocalsContainer, e.g. during application
// boot or ahead-of-time route compilation.
type RequestScopeOutsideRequestError struct {
	Token *Token
}

func (e *RequestScopeOutsideRequestError) Error() string {
	return fmt.Sprintf("container: token %q is request-scoped and cannot be resolved outside a request", e.Token.String())
}

// Container stores providers by token, resolves instances with
// constructor injection, detects cycles, and maintains the singleton
// cache.
//
// Registration happens during a single-threaded configuration phase;
// resolution is safe for concurrent use once registration is complete.
type Container struct {
	mu        sync.RWMutex
	providers map[*Token]*Provider

	scopeMu    sync.Mutex
	scopeCache map[*Token]Scope

	// instanceBubbling controls whether an INSTANCE-scoped dependency
	// also bubbles a SINGLETON parent's effective scope to REQUEST.
	// Default: does not bubble.
	instanceBubbling bool
}

// New creates an empty Container.
func New(opts ...Option) *Container {
	c := &Container{
		providers:  make(map[*Token]*Provider),
		scopeCache: make(map[*Token]Scope),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Option configures a Container at construction time.
type Option func(*Container)

// WithInstanceBubbling controls whether an INSTANCE-scoped dependency
// bubbles a SINGLETON ancestor's effective scope to REQUEST, for
// runtimes that need the non-default behavior.
func WithInstanceBubbling(enabled bool) Option {
	return func(c *Container) {
		c.instanceBubbling = enabled
	}
}

// Register adds a provider to the container. It fails with
// AmbiguousProviderError if a provider is already registered for the same
// token.
func (c *Container) Register(p *Provider) error {
	if err := p.validate(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.providers[p.Token]; exists {
		return &AmbiguousProviderError{Token: p.Token}
	}
	c.providers[p.Token] = p
	return nil
}

// Has reports whether a provider is registered for token.
func (c *Container) Has(token *Token) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.providers[token]
	return ok
}

func (c *Container) lookup(token *Token) (*Provider, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.providers[token]
	return p, ok
}

// Get resolves a token outside of any request context. It fails with
// RequestScopeOutsideRequestError if the token's effective scope is
// REQUEST.
func (c *Container) Get(token *Token) (any, error) {
	instance, _, err := c.resolveInternal(token, nil, nil)
	return instance, err
}

// GetWithLocals resolves a token, honoring a request's LocalsContainer for
// REQUEST-scoped providers. This is the entry point the request executor
// uses for DI parameter bindings and for resolving a STANDARD/COMPLEX
// route's controller.
func (c *Container) GetWithLocals(token *Token, locals RequestLocals) (any, error) {
	instance, _, err := c.resolveInternal(token, locals, nil)
	return instance, err
}

// ResolveInternal is the recursive, cycle-detecting resolver. It
// returns the instance together with the *effective*
// scope observed for this resolution, so callers (the route compiler, in
// particular) can tell a true SINGLETON apart from one that bubbled to
// REQUEST for this dependency graph.
func (c *Container) ResolveInternal(token *Token, locals RequestLocals) (instance any, effectiveScope Scope, err error) {
	return c.resolveInternal(token, locals, nil)
}

func (c *Container) resolveInternal(token *Token, locals RequestLocals, stack []*Token) (any, Scope, error) {
	for _, t := range stack {
		if t == token {
			chain := append(append([]*Token{}, stack...), token)
			return nil, 0, &CircularDependencyError{Chain: chain}
		}
	}

	provider, ok := c.lookup(token)
	if !ok {
		return nil, 0, &ProviderNotFoundError{Token: token}
	}

	if provider.Kind == ValueFactory {
		return provider.Value, Singleton, nil
	}

	effScope, err := c.EffectiveScope(token)
	if err != nil {
		return nil, 0, err
	}

	childStack := make([]*Token, len(stack)+1)
	copy(childStack, stack)
	childStack[len(stack)] = token

	switch effScope {
	case Request:
		if locals == nil {
			return nil, 0, &RequestScopeOutsideRequestError{Token: token}
		}
		if v, ok := locals.Get(token); ok {
			return v, Request, nil
		}
		deps, err := c.resolveDeps(provider, locals, childStack)
		if err != nil {
			return nil, 0, err
		}
		inst, err := provider.NewInstance(deps)
		if err != nil {
			return nil, 0, err
		}
		locals.Set(token, inst)
		return inst, Request, nil

	case Instance:
		deps, err := c.resolveDeps(provider, locals, childStack)
		if err != nil {
			return nil, 0, err
		}
		inst, err := provider.NewInstance(deps)
		if err != nil {
			return nil, 0, err
		}
		return inst, Instance, nil

	default: // Singleton
		provider.mu.Lock()
		if provider.resolved {
			inst := provider.instance
			provider.mu.Unlock()
			return inst, Singleton, nil
		}
		provider.mu.Unlock()

		deps, err := c.resolveDeps(provider, locals, childStack)
		if err != nil {
			return nil, 0, err
		}
		inst, err := provider.NewInstance(deps)
		if err != nil {
			return nil, 0, err
		}

		provider.mu.Lock()
		if !provider.resolved {
			provider.instance = inst
			provider.resolved = true
		}
		cached := provider.instance
		provider.mu.Unlock()
		return cached, Singleton, nil
	}
}

func (c *Container) resolveDeps(p *Provider, locals RequestLocals, stack []*Token) ([]any, error) {
	if len(p.Deps) == 0 {
		return nil, nil
	}
	deps := make([]any, len(p.Deps))
	for i, d := range p.Deps {
		v, _, err := c.resolveInternal(d, locals, stack)
		if err != nil {
			return nil, err
		}
		deps[i] = v
	}
	return deps, nil
}

// EffectiveScope performs the static scope-bubbling analysis: a
// SINGLETON provider whose dependency graph transitively reaches a
// REQUEST-scoped provider has effective scope REQUEST. Results are
// memoized, since the provider graph is read-only once application
// init completes.
func (c *Container) EffectiveScope(token *Token) (Scope, error) {
	c.scopeMu.Lock()
	defer c.scopeMu.Unlock()
	return c.effectiveScopeLocked(token, nil)
}

func (c *Container) effectiveScopeLocked(token *Token, stack []*Token) (Scope, error) {
	if s, ok := c.scopeCache[token]; ok {
		return s, nil
	}

	for _, t := range stack {
		if t == token {
			chain := append(append([]*Token{}, stack...), token)
			return 0, &CircularDependencyError{Chain: chain}
		}
	}

	provider, ok := c.lookup(token)
	if !ok {
		return 0, &ProviderNotFoundError{Token: token}
	}

	var scope Scope
	switch {
	case provider.Kind == ValueFactory:
		scope = Singleton
	case provider.Scope == Request:
		scope = Request
	case provider.Scope == Instance:
		scope = Instance
	default: // declared Singleton: bubble if a dependency resolves REQUEST
		childStack := make([]*Token, len(stack)+1)
		copy(childStack, stack)
		childStack[len(stack)] = token

		bubbled := false
		for _, dep := range provider.Deps {
			depScope, err := c.effectiveScopeLocked(dep, childStack)
			if err != nil {
				return 0, err
			}
			if depScope == Request {
				bubbled = true
			}
			if c.instanceBubbling && depScope == Instance {
				bubbled = true
			}
		}
		if bubbled {
			scope = Request
		} else {
			scope = Singleton
		}
	}

	c.scopeCache[token] = scope
	return scope, nil
}
