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

package registry

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/nestgo/nestgo/container"
	"github.com/nestgo/nestgo/kernel"
	"github.com/nestgo/nestgo/middleware"
)

// Constraint restricts a path parameter's captured value. A failed
// constraint is a 404: a route whose constraint rejects behaves exactly
// like a route that never matched.
type Constraint struct {
	Param   string
	Pattern *regexp.Regexp
}

// HandlerFunc is the generic method invoker: given the resolved
// controller instance, the request
// Context, and the already-extracted (and, where declared, validated)
// positional arguments in ParamBinding order, it performs the actual
// typed call and returns its result.
type HandlerFunc func(instance any, ctx *kernel.Context, args []any) (any, error)

// ControllerMeta is the per-controller metadata record: basePath, the
// provider token, controller-level middlewares, and routes.
type ControllerMeta struct {
	BasePath    string
	Token       *container.Token
	Middlewares []middleware.Func
	Routes      []*RouteMeta
}

// ControllerOption configures a ControllerMeta at construction time.
type ControllerOption func(*ControllerMeta)

// WithControllerMiddlewares appends controller-level middlewares, applied
// after any inherited group/global middlewares and before route-level
// ones.
func WithControllerMiddlewares(mws ...middleware.Func) ControllerOption {
	return func(c *ControllerMeta) { c.Middlewares = append(c.Middlewares, mws...) }
}

// Controller registers a controller's metadata: basePath normalized to
// begin with "/" and never end with "/" (except root), and token
// identifying its provider in the container.
func Controller(basePath string, token *container.Token, opts ...ControllerOption) *ControllerMeta {
	c := &ControllerMeta{BasePath: normalizePath(basePath), Token: token}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RouteOption configures a RouteMeta at construction time.
type RouteOption func(*RouteMeta)

// WithName assigns a route name for URLFor.
func WithName(name string) RouteOption {
	return func(r *RouteMeta) { r.Name = name }
}

// WithParam declares the binding for the handler argument at index i.
// A route argument index never given a WithParam call defaults to DI.
func WithParam(binding ParamBinding) RouteOption {
	return func(r *RouteMeta) {
		if r.ParamBindings == nil {
			r.ParamBindings = make(map[int]ParamBinding)
		}
		r.ParamBindings[binding.Index] = binding
	}
}

// WithRouteMiddlewares appends route-level middlewares, the innermost
// layer of the onion.
func WithRouteMiddlewares(mws ...middleware.Func) RouteOption {
	return func(r *RouteMeta) { r.Middlewares = append(r.Middlewares, mws...) }
}

// WithConstraint attaches a parameter constraint.
func WithConstraint(param string, pattern *regexp.Regexp) RouteOption {
	return func(r *RouteMeta) {
		r.Constraints = append(r.Constraints, Constraint{Param: param, Pattern: pattern})
	}
}

// RouteMeta is the per-route metadata record: HTTP method, sub-path,
// handler, parameter bindings, constraints, and middlewares.
type RouteMeta struct {
	HTTPMethod    string
	SubPath       string
	Name          string
	HandlerName   string
	Handler       HandlerFunc
	ArgTypes      []reflect.Type
	ParamBindings map[int]ParamBinding
	Middlewares   []middleware.Func
	Constraints   []Constraint

	// Controller back-reference, set by Route; the compiler needs it to
	// resolve the controller's token/scope/middlewares for this route.
	Controller *ControllerMeta
}

// ArgCount returns the handler's declared argument count.
func (r *RouteMeta) ArgCount() int { return len(r.ArgTypes) }

// SatisfiesConstraints reports whether every declared Constraint matches
// the value get returns for its parameter name. A missing parameter
// fails the constraint. The executor treats a failed constraint as a
// 404.
func (r *RouteMeta) SatisfiesConstraints(get func(name string) (string, bool)) bool {
	for _, c := range r.Constraints {
		v, ok := get(c.Param)
		if !ok || !c.Pattern.MatchString(v) {
			return false
		}
	}
	return true
}

// Route appends a route to controller and returns it for further
// RouteOption application or inspection. argTypes declares the Go type of
// every handler argument, in order; an argument index with no explicit
// WithParam call defaults to a DI binding resolved from argTypes[index]
// (the implicit case still needs a declared type, since there is no
// constructor reflection to fall back on).
func Route(controller *ControllerMeta, httpMethod, subPath, handlerName string, argTypes []reflect.Type, handler HandlerFunc, opts ...RouteOption) *RouteMeta {
	r := &RouteMeta{
		HTTPMethod:  strings.ToUpper(httpMethod),
		SubPath:     normalizePath(subPath),
		HandlerName: handlerName,
		Handler:     handler,
		ArgTypes:    argTypes,
		Controller:  controller,
	}
	for _, opt := range opts {
		opt(r)
	}
	controller.Routes = append(controller.Routes, r)
	return r
}

// FullPath joins the controller's basePath with the route's subPath,
// normalizing the result.
func (r *RouteMeta) FullPath() string {
	return joinPath(r.Controller.BasePath, r.SubPath)
}

// AllMiddlewares returns this route's full middleware list in dispatch
// order: controller, then route (global and group middlewares are
// prepended by the caller composing the app-wide chain, since they are
// not known to an individual controller).
func (r *RouteMeta) AllMiddlewares() []middleware.Func {
	all := make([]middleware.Func, 0, len(r.Controller.Middlewares)+len(r.Middlewares))
	all = append(all, r.Controller.Middlewares...)
	all = append(all, r.Middlewares...)
	return all
}

// normalizePath enforces the path invariant: begins with "/", never
// ends with "/" except the root path itself.
func normalizePath(p string) string {
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 {
		p = strings.TrimRight(p, "/")
	}
	if p == "" {
		p = "/"
	}
	return p
}

// joinPath concatenates a basePath and a subPath, each already
// normalized, producing a single normalized path.
func joinPath(base, sub string) string {
	if sub == "/" {
		return base
	}
	if base == "/" {
		return sub
	}
	return normalizePath(base + sub)
}
