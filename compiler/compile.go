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

package compiler

import (
	"errors"

	"github.com/nestgo/nestgo/binder"
	"github.com/nestgo/nestgo/container"
	"github.com/nestgo/nestgo/hooks"
	"github.com/nestgo/nestgo/kernel"
	"github.com/nestgo/nestgo/middleware"
	"github.com/nestgo/nestgo/registry"
)

// ParamInfo is a pre-computed per-argument plan: the binding itself, plus
// whether the compiler determined (at compile time, once) that this
// argument's declared type carries validation rules.
type ParamInfo struct {
	Binding       registry.ParamBinding
	NeedsValidate bool
}

// BoundInvoker is the specialized per-route function built for SIMPLE
// routes: given only a Context, it extracts every
// argument, invokes the method, and returns its raw result.
type BoundInvoker func(ctx *kernel.Context) (any, error)

// CompiledRoute is the per-route ahead-of-time specialization record.
// Fields not used by a given Tier are left at their zero value; see the
// Tier-specific invariants on each field's comment.
type CompiledRoute struct {
	Tier Tier

	// Route is the record this CompiledRoute was produced from
	//.
	Route *registry.RouteMeta

	// ControllerInstance is non-nil only when the controller's effective
	// scope is SINGLETON (pre-instantiated at compile time).
	ControllerInstance any

	// BoundHandler is non-nil only for Tier == Simple.
	BoundHandler BoundInvoker

	ParamInfos []ParamInfo

	// NeedsLocals is true whenever the handler may touch request-scoped
	// providers or middleware state; false only for Simple.
	NeedsLocals bool

	// HasMiddlewares reports whether any middleware (global, inherited
	// group/controller, or route-level) applies to this route.
	HasMiddlewares bool

	// HasValidation is true when at least one ParamInfo needs validation.
	HasValidation bool

	// ValidationIndices lists the argument indices that need validation,
	// in ascending order.
	ValidationIndices []int

	// NeedsBody is true when any ParamBinding is registry.Body, the one
	// point on the Simple path that may block on I/O (body
	// materialization). Go's goroutine-per-request model has no separate
	// async/sync split, so the flag is informational rather than a code
	// path selector.
	NeedsBody bool

	// Middlewares is this route's full ordered chain (controller, then
	// route) excluding any app-global middleware, which the executor
	// always prepends.
	Middlewares []middleware.Func
}

// MissingProviderFallback records why a route could not be resolved to a
// SINGLETON controller at compile time. It is not itself an error:
// Compile still succeeds, producing a Complex-tier route.
type MissingProviderFallback struct {
	Token string
}

func (e *MissingProviderFallback) Error() string {
	return "compiler: no provider registered for controller token " + e.Token + ", falling back to COMPLEX"
}

// Compile classifies route and pre-computes everything the executor
// needs at request time. hasGlobalMiddleware reflects whether the
// application has any middleware registered ahead of every controller;
// it is not visible to an individual RouteMeta, so the caller (the
// application's Compile-all-routes pass) supplies it.
func Compile(route *registry.RouteMeta, c *container.Container, dispatcher *hooks.Dispatcher, validator binder.ValidatorAdapter, hasGlobalMiddleware bool) (*CompiledRoute, error) {
	token := route.Controller.Token

	cr := &CompiledRoute{
		Tier:  Complex,
		Route: route,
	}

	providerExists := c.Has(token)
	var scope container.Scope
	if providerExists {
		s, err := c.EffectiveScope(token)
		if err != nil {
			var notFound *container.ProviderNotFoundError
			if errors.As(err, &notFound) {
				providerExists = false
			} else {
				return nil, err
			}
		} else {
			scope = s
		}
	}

	if providerExists && scope == container.Singleton {
		instance, err := c.Get(token)
		if err != nil {
			return nil, err
		}
		cr.ControllerInstance = instance
	}

	paramInfos := make([]ParamInfo, route.ArgCount())
	var validationIndices []int
	hasDIParam := false
	needsBody := false
	for i := 0; i < route.ArgCount(); i++ {
		binding, explicit := route.ParamBindings[i]
		if !explicit {
			binding = registry.Param(i, registry.DI, "", route.ArgTypes[i])
		}

		needsValidate := false
		if binding.Kind == registry.Body && binding.DeclaredType != nil && validator != nil {
			elemType := derefType(binding.DeclaredType)
			if elemType != nil && validator.HasValidation(elemType) {
				needsValidate = true
				validationIndices = append(validationIndices, i)
			}
		}
		if binding.Kind == registry.DI {
			hasDIParam = true
		}
		if binding.Kind == registry.Body {
			needsBody = true
		}

		paramInfos[i] = ParamInfo{Binding: binding, NeedsValidate: needsValidate}
	}

	allMiddlewares := route.AllMiddlewares()
	hasMiddlewares := hasGlobalMiddleware || len(allMiddlewares) > 0
	hasHooks := dispatcher != nil && (dispatcher.HasOnRequest() || dispatcher.HasOnResponse())

	switch {
	case !providerExists || scope != container.Singleton:
		cr.Tier = Complex
	case hasMiddlewares || hasDIParam || hasHooks:
		cr.Tier = Standard
	default:
		cr.Tier = Simple
	}

	cr.ParamInfos = paramInfos
	cr.HasMiddlewares = hasMiddlewares
	cr.HasValidation = len(validationIndices) > 0
	cr.ValidationIndices = validationIndices
	cr.NeedsBody = needsBody
	cr.Middlewares = allMiddlewares
	cr.NeedsLocals = cr.Tier != Simple

	if cr.Tier == Simple {
		cr.BoundHandler = buildBoundInvoker(route, cr.ControllerInstance, paramInfos, validator)
	}

	return cr, nil
}

// buildBoundInvoker builds the Simple-tier fast path: a closure that
// extracts every argument from ctx (no container lookups are possible on
// this tier, by construction, since Simple routes have no DI parameters)
// and invokes the method.
func buildBoundInvoker(route *registry.RouteMeta, instance any, paramInfos []ParamInfo, validator binder.ValidatorAdapter) BoundInvoker {
	return func(ctx *kernel.Context) (any, error) {
		args := make([]any, len(paramInfos))
		for i, pi := range paramInfos {
			v, httpErr, err := ExtractArg(ctx, pi.Binding, nil, validator)
			if err != nil {
				return nil, err
			}
			if httpErr != nil {
				return httpErr, nil
			}
			args[i] = v
		}
		return route.Handler(instance, ctx, args)
	}
}
