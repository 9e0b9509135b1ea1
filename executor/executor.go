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

// Package executor is the per-request orchestrator: it
// builds the Context, dispatches to the compiled route's tier, composes
// hooks, middleware, and the method invoker, shapes the response, and
// maps every failure mode to its wire representation.
package executor

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/nestgo/nestgo/binder"
	"github.com/nestgo/nestgo/compiler"
	"github.com/nestgo/nestgo/container"
	"github.com/nestgo/nestgo/errorfmt"
	"github.com/nestgo/nestgo/hooks"
	"github.com/nestgo/nestgo/kernel"
	"github.com/nestgo/nestgo/middleware"
	"github.com/nestgo/nestgo/obslog"
	"github.com/nestgo/nestgo/obsmetrics"
	"github.com/nestgo/nestgo/obstrace"
	"github.com/nestgo/nestgo/registry"
	"github.com/nestgo/nestgo/router"
)

// unmatchedRouteLabel is the fixed metrics label recorded for a request
// that never reached a compiled route (404, or a constraint rejection).
// Using the raw request path instead would hand an unbounded,
// attacker-controlled string straight to a Prometheus label, the exact
// cardinality blow-up router.Canonical exists to avoid.
const unmatchedRouteLabel = "unmatched"

// Executor is the top-level request dispatcher and implements
// http.Handler. It owns no per-request state; everything it touches
// (router, container, hooks, collaborators) is read-only after
// application init.
type Executor struct {
	router     *router.Router
	container  *container.Container
	hooks      *hooks.Dispatcher
	bodyReader kernel.BodyReader
	validator  binder.ValidatorAdapter
	cors       middleware.CorsPolicy
	logger     *slog.Logger
	errorFmt   errorfmt.Formatter
	metrics    *obsmetrics.Recorder
	tracer     *obstrace.Tracer

	globalMiddlewares []middleware.Func

	defaultStatus     int
	stringContentType string
}

// Option configures an Executor at construction time.
type Option func(*Executor)

// WithCors installs the out-of-core CORS collaborator:
// invoked before routing for preflight, and after response shaping to
// decorate the final response.
func WithCors(policy middleware.CorsPolicy) Option {
	return func(e *Executor) { e.cors = policy }
}

// WithLogger installs the logger used for 500s and other unclassified
// failures.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Executor) { e.logger = logger }
}

// WithGlobalMiddlewares installs the application-wide middleware layer
// that precedes every controller's own chain.
func WithGlobalMiddlewares(mws ...middleware.Func) Option {
	return func(e *Executor) { e.globalMiddlewares = append(e.globalMiddlewares, mws...) }
}

// WithErrorFormatter installs a custom errorfmt.Formatter for
// unclassified errors (anything that is not a *kernel.HttpException).
// The default produces the {message, statusCode} shape.
func WithErrorFormatter(f errorfmt.Formatter) Option {
	return func(e *Executor) { e.errorFmt = f }
}

// WithStringContentType overrides the Content-Type used for string/
// number/boolean returns (default text/html).
func WithStringContentType(contentType string) Option {
	return func(e *Executor) { e.stringContentType = contentType }
}

// WithMetrics installs the optional request counter/latency collaborator
//. Every dispatched request, matched or not, is
// observed once handling completes.
func WithMetrics(recorder *obsmetrics.Recorder) Option {
	return func(e *Executor) { e.metrics = recorder }
}

// WithTracer installs the optional span collaborator.
// A span covers the full dispatch, from router lookup through response
// shaping, and records the final status (or error).
func WithTracer(tracer *obstrace.Tracer) Option {
	return func(e *Executor) { e.tracer = tracer }
}

// New builds an Executor wired to the given router, container, hook
// dispatcher, body reader, and validator adapter.
func New(r *router.Router, c *container.Container, dispatcher *hooks.Dispatcher, bodyReader kernel.BodyReader, validator binder.ValidatorAdapter, opts ...Option) *Executor {
	e := &Executor{
		router:        r,
		container:     c,
		hooks:         dispatcher,
		bodyReader:    bodyReader,
		validator:     validator,
		logger:        obslog.NoOp().Logger(),
		errorFmt:      errorfmt.DefaultFormatter{},
		defaultStatus: http.StatusOK,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ServeHTTP implements http.Handler: the single entry point every
// incoming request passes through.
func (e *Executor) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if e.cors != nil && e.cors.IsPreflight(r) {
		e.write(w, e.cors.HandlePreflight(r))
		return
	}

	// A route may be mounted as a plain http.Handler instead of a
	// compiled controller route (e.g. obsmetrics.Recorder.Handler()),
	// an ordinary out-of-core collaborator endpoint, not a controller
	// dispatch, so it bypasses tiering, hooks, and response shaping
	// entirely.
	if res, ok := e.router.Find(r.Method, r.URL.Path); ok {
		if h, ok := res.Store.(http.Handler); ok {
			h.ServeHTTP(w, r)
			return
		}
	}

	resp := e.handle(r)

	if e.cors != nil {
		resp = e.cors.Apply(resp, r.Header.Get("Origin"))
	}
	e.write(w, resp)
}

// handle runs the full per-request state machine and returns the shaped
// response. It never panics: a recovered panic is logged and mapped to
// 500 for the dispatch scaffolding itself (middleware.Recovery covers
// the same rule inside the Standard/Complex middleware chain).
func (e *Executor) handle(r *http.Request) (resp *kernel.Response) {
	start := time.Now()

	// The span name/attribute may carry the raw request path: it is
	// per-request, not an aggregated label, so it does not explode any
	// cardinality. The metrics label is the opposite: Recorder.Observe
	// aggregates by it, so it must never be an attacker-controlled,
	// unbounded string (router/router.go's Canonical doc). It starts at
	// a fixed sentinel and is only replaced by the route's own
	// canonicalized template once a route actually matches.
	metricsRoute := unmatchedRouteLabel
	var endSpan func(status int, err error)
	if e.tracer != nil {
		_, endSpan = e.tracer.StartRequest(r.Context(), r.Method, r.URL.Path)
	}

	var handleErr error
	defer func() {
		if rec := recover(); rec != nil {
			e.logger.Error("panic recovered in executor", "panic", rec, "path", r.URL.Path)
			resp, _ = kernel.Shape(kernel.NewHttpException(http.StatusInternalServerError, "internal server error"), e.defaultStatus, e.stringContentType)
			handleErr = fmt.Errorf("panic: %v", rec)
		}
		e.observe(r.Method, metricsRoute, resp, start, handleErr, endSpan)
	}()

	result, route, ctx, err := e.dispatch(r)
	if route != nil {
		metricsRoute = router.Canonical(route.FullPath())
	}
	if err != nil {
		handleErr = err
		resp = e.shapeError(err, ctx)
		return resp
	}

	shaped, shapeErr := kernel.Shape(result, statusFor(ctx, route), e.stringContentType)
	if shapeErr != nil {
		e.logger.Error("failed to shape response", "error", shapeErr, "path", r.URL.Path)
		shaped, _ = kernel.Shape(kernel.NewHttpException(http.StatusInternalServerError, "internal server error"), e.defaultStatus, e.stringContentType)
		handleErr = shapeErr
	}
	resp = shaped
	return resp
}

// observe reports the completed request to the metrics and tracing
// collaborators, when installed. Both are optional and never affect
// dispatch outcome.
func (e *Executor) observe(method, route string, resp *kernel.Response, start time.Time, err error, endSpan func(status int, err error)) {
	status := e.defaultStatus
	if resp != nil && resp.StatusCode != 0 {
		status = resp.StatusCode
	}
	if e.metrics != nil {
		e.metrics.Observe(method, route, status, time.Since(start))
	}
	if endSpan != nil {
		endSpan(status, err)
	}
}

// dispatch performs router lookup, tier branching, and method invocation,
// returning the raw handler result (not yet shaped into a Response).
func (e *Executor) dispatch(r *http.Request) (any, *registry.RouteMeta, *kernel.Context, error) {
	res, ok := e.router.Find(r.Method, r.URL.Path)
	if !ok {
		return nil, nil, nil, &kernel.NoMatchingRouteError{Method: r.Method, Path: r.URL.Path}
	}

	cr, ok := res.Store.(*compiler.CompiledRoute)
	if !ok {
		return nil, nil, nil, &UncompiledRouteError{Method: r.Method, Path: r.URL.Path}
	}

	if !cr.Route.SatisfiesConstraints(res.Params.Get) {
		return nil, nil, nil, &kernel.NoMatchingRouteError{Method: r.Method, Path: r.URL.Path}
	}

	ctx := kernel.NewContext(r, res.Params.ToMap(), e.bodyReader)

	if cr.Tier == compiler.Simple {
		result, err := cr.BoundHandler(ctx)
		return result, cr.Route, ctx, err
	}

	result, err := e.runStandardOrComplex(cr, ctx)
	return result, cr.Route, ctx, err
}

// runStandardOrComplex implements the Standard/Complex branch of
// dispatch: build locals if needed, run onRequest hooks,
// resolve the controller, run the middleware chain, then the generic
// method invoker; onResponse fires once a result (or short-circuit) is
// available.
func (e *Executor) runStandardOrComplex(cr *compiler.CompiledRoute, ctx *kernel.Context) (any, error) {
	if cr.NeedsLocals {
		kernel.NewLocalsContainer(ctx)
	}

	if e.hooks != nil && e.hooks.HasOnRequest() {
		if err := e.hooks.RunOnRequest(ctx); err != nil {
			return nil, err
		}
	}

	terminal := e.methodInvoker(cr)

	links := make([]middleware.Func, 0, len(e.globalMiddlewares)+len(cr.Middlewares))
	links = append(links, e.globalMiddlewares...)
	links = append(links, cr.Middlewares...)
	chain := middleware.NewChain(links...)

	result, err := chain.Then(terminal)(ctx)
	if err != nil {
		return nil, err
	}

	if e.hooks != nil && e.hooks.HasOnResponse() {
		if hookErr := e.hooks.RunOnResponse(ctx, result); hookErr != nil {
			return nil, hookErr
		}
	}
	return result, nil
}

// methodInvoker is the generic method invoker: it lazily resolves the
// controller (skipped when the compiler already
// pre-bound a singleton instance), resolves every parameter binding
// (validating annotated ones), and calls the method.
func (e *Executor) methodInvoker(cr *compiler.CompiledRoute) middleware.Next {
	return func(ctx *kernel.Context) (any, error) {
		instance := cr.ControllerInstance
		if instance == nil {
			var locals container.RequestLocals
			if l := ctx.Locals(); l != nil {
				locals = l
			}
			resolved, err := e.container.GetWithLocals(cr.Route.Controller.Token, locals)
			if err != nil {
				return nil, err
			}
			instance = resolved
		}

		args := make([]any, len(cr.ParamInfos))
		for i, pi := range cr.ParamInfos {
			v, httpErr, err := compiler.ExtractArg(ctx, pi.Binding, e.container, e.validator)
			if err != nil {
				return nil, err
			}
			if httpErr != nil {
				return httpErr, nil
			}
			args[i] = v
		}
		return cr.Route.Handler(instance, ctx, args)
	}
}

// shapeError maps a dispatch-time error to its wire response: a
// NoMatchingRouteError is a 404; an HttpException (from a
// handler, middleware, validator, or hook) is serialized verbatim; any
// other error is an opaque 500, logged.
func (e *Executor) shapeError(err error, ctx *kernel.Context) *kernel.Response {
	var noMatch *kernel.NoMatchingRouteError
	if errors.As(err, &noMatch) {
		resp, _ := kernel.Shape(kernel.NewHttpException(http.StatusNotFound, "not found"), e.defaultStatus, e.stringContentType)
		return resp
	}

	var httpErr *kernel.HttpException
	if errors.As(err, &httpErr) {
		resp, _ := kernel.Shape(httpErr, e.defaultStatus, e.stringContentType)
		return resp
	}

	path := ""
	if ctx != nil {
		path = ctx.Pathname
	}
	e.logger.Error("unhandled error", "error", err, "path", path)

	formatted := e.errorFmt.Format(err)
	body, marshalErr := json.Marshal(formatted.Body)
	if marshalErr != nil {
		return &kernel.Response{StatusCode: http.StatusInternalServerError, ContentType: kernel.ContentTypeJSON}
	}
	return &kernel.Response{StatusCode: formatted.Status, ContentType: formatted.ContentType, Body: body}
}

func statusFor(ctx *kernel.Context, route *registry.RouteMeta) int {
	if ctx != nil && ctx.ResponseStatus != 0 {
		return ctx.ResponseStatus
	}
	return http.StatusOK
}

func (e *Executor) write(w http.ResponseWriter, resp *kernel.Response) {
	if resp == nil {
		w.WriteHeader(http.StatusOK)
		return
	}
	for k, values := range resp.Header {
		for _, v := range values {
			w.Header().Add(k, v)
		}
	}
	if resp.ContentType != "" {
		w.Header().Set("Content-Type", resp.ContentType)
	}
	status := resp.StatusCode
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	if len(resp.Body) > 0 {
		_, _ = w.Write(resp.Body)
	}
}

// UncompiledRouteError is returned when the router yields a store that
// is not a *compiler.CompiledRoute, a wiring error in the embedding
// application (it registered a route but never ran Compile on it).
type UncompiledRouteError struct {
	Method string
	Path   string
}

func (e *UncompiledRouteError) Error() string {
	return "executor: route " + e.Method + " " + e.Path + " was never compiled"
}
