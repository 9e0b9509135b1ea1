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

// Package nestgo is the top-level framework: it wires the router,
// container, registry, compiler, hook dispatcher, and executor into one
// application object.
package nestgo

import (
	"fmt"
	"log/slog"

	"github.com/nestgo/nestgo/binder"
	"github.com/nestgo/nestgo/compiler"
	"github.com/nestgo/nestgo/container"
	"github.com/nestgo/nestgo/errorfmt"
	"github.com/nestgo/nestgo/executor"
	"github.com/nestgo/nestgo/hooks"
	"github.com/nestgo/nestgo/kernel"
	"github.com/nestgo/nestgo/middleware"
	"github.com/nestgo/nestgo/obslog"
	"github.com/nestgo/nestgo/obsmetrics"
	"github.com/nestgo/nestgo/obstrace"
	"github.com/nestgo/nestgo/registry"
	"github.com/nestgo/nestgo/router"
)

// App is the application object a caller builds, registers controllers
// on, compiles, and starts. It owns no request-time state beyond what it
// hands to the Executor; registration-time state (controllers, hooks)
// is only mutated before Compile.
type App struct {
	router     *router.Router
	container  *container.Container
	dispatcher *hooks.Dispatcher
	validator  binder.ValidatorAdapter
	bodyReader kernel.BodyReader
	logger     *obslog.Logger
	readiness  *ReadinessManager
	metrics    *obsmetrics.Recorder
	tracer     *obstrace.Tracer
	server     serverConfig

	cors              middleware.CorsPolicy
	globalMiddlewares []middleware.Func
	errorFmt          errorfmt.Formatter
	stringContentType string
	recoveryEnabled   bool

	controllers []*registry.ControllerMeta
	exec        *executor.Executor
}

// Option configures an App at construction time.
type Option func(*App)

// WithContainer installs a pre-built container (e.g. one with providers
// already registered). When omitted, New builds an empty one.
func WithContainer(c *container.Container) Option {
	return func(a *App) { a.container = c }
}

// WithValidator overrides the default go-playground/validator adapter.
func WithValidator(v binder.ValidatorAdapter) Option {
	return func(a *App) { a.validator = v }
}

// WithBodyReader overrides the default multi-format body reader.
func WithBodyReader(b kernel.BodyReader) Option {
	return func(a *App) { a.bodyReader = b }
}

// WithLogger installs the application logger, used for 500s and failed
// lifecycle hooks.
func WithLogger(l *obslog.Logger) Option {
	return func(a *App) { a.logger = l }
}

// WithCors installs the CORS collaborator.
func WithCors(policy middleware.CorsPolicy) Option {
	return func(a *App) { a.cors = policy }
}

// WithGlobalMiddlewares installs application-wide middleware, run before
// every controller's own chain.
func WithGlobalMiddlewares(mws ...middleware.Func) Option {
	return func(a *App) { a.globalMiddlewares = append(a.globalMiddlewares, mws...) }
}

// WithErrorFormatter installs a custom errorfmt.Formatter for
// unclassified errors.
func WithErrorFormatter(f errorfmt.Formatter) Option {
	return func(a *App) { a.errorFmt = f }
}

// WithStringContentType overrides the default text/html content type for
// string/number/boolean handler returns.
func WithStringContentType(contentType string) Option {
	return func(a *App) { a.stringContentType = contentType }
}

// WithRecovery toggles the onion-style panic-recovery middleware
// installed ahead of every controller's chain (default: enabled).
// This is on top of, not instead of, the Executor's own top-level
// recover (executor.go's handle()), which already catches a panic on
// every tier including Simple; the middleware only adds request-context
// (tracking id, path) to the log line for routes that already run a
// middleware chain. It is therefore tracked independently of route
// classification: see Compile's hasGlobalMiddleware computation below.
func WithRecovery(enabled bool) Option {
	return func(a *App) { a.recoveryEnabled = enabled }
}

// WithMetrics installs the Prometheus request counter/latency
// collaborator.
func WithMetrics(recorder *obsmetrics.Recorder) Option {
	return func(a *App) { a.metrics = recorder }
}

// WithTracer installs the OpenTelemetry span collaborator.
func WithTracer(tracer *obstrace.Tracer) Option {
	return func(a *App) { a.tracer = tracer }
}

// New builds an App ready for controller registration.
func New(opts ...Option) *App {
	a := &App{
		router:          router.New(),
		dispatcher:      hooks.New(),
		validator:       binder.NewDefaultValidatorAdapter(),
		bodyReader:      binder.NewDefaultBodyReader(),
		logger:          obslog.NoOp(),
		readiness:       newReadinessManager(),
		errorFmt:        errorfmt.DefaultFormatter{},
		recoveryEnabled: true,
		server:          defaultServerConfig(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.container == nil {
		a.container = container.New()
	}
	return a
}

// Router exposes the underlying router, e.g. for a caller that wants to
// mount a raw http.Handler (metrics endpoint, static files) alongside
// compiled controller routes.
func (a *App) Router() *router.Router { return a.router }

// Container exposes the underlying DI container for provider
// registration (container.Register) ahead of Compile.
func (a *App) Container() *container.Container { return a.container }

// Hooks exposes the lifecycle/per-request hook dispatcher
// (OnBoot/OnInit/OnShutdown, OnRequest/OnResponse).
func (a *App) Hooks() *hooks.Dispatcher { return a.dispatcher }

// Readiness exposes the readiness gate registry for a /readyz-style
// check.
func (a *App) Readiness() *ReadinessManager { return a.readiness }

// RegisterController adds a controller's routes to the application.
// Controllers must be registered before Compile; Compile freezes the
// router as its last step.
func (a *App) RegisterController(c *registry.ControllerMeta) {
	a.controllers = append(a.controllers, c)
}

// Compile runs the ahead-of-time route compiler over every registered
// controller's routes, installs each CompiledRoute into
// the router, builds the Executor, and freezes the router: the point of
// no return after which no further routes may be added.
func (a *App) Compile() error {
	// The default recovery wrapper is deliberately excluded here: it is
	// redundant panic protection (the Executor's handle() already
	// recovers every tier, Simple included) rather than a real
	// correctness requirement, so it must not by itself demote every
	// route off the Simple fast path. Only middleware a
	// caller actually registered counts toward this route's tier.
	hasGlobalMiddleware := len(a.globalMiddlewares) > 0

	for _, c := range a.controllers {
		for _, route := range c.Routes {
			cr, err := compiler.Compile(route, a.container, a.dispatcher, a.validator, hasGlobalMiddleware)
			if err != nil {
				return fmt.Errorf("nestgo: compiling %s %s: %w", route.HTTPMethod, route.FullPath(), err)
			}
			if err := a.router.Add(route.HTTPMethod, route.FullPath(), cr, false); err != nil {
				return fmt.Errorf("nestgo: registering %s %s: %w", route.HTTPMethod, route.FullPath(), err)
			}
			if route.Name != "" {
				if err := a.router.Name(route.Name, route.FullPath()); err != nil {
					return fmt.Errorf("nestgo: naming route %q: %w", route.Name, err)
				}
			}
		}
	}

	globalMiddlewares := a.globalMiddlewares
	if a.recoveryEnabled {
		globalMiddlewares = append([]middleware.Func{middleware.Recovery(a.logger.Logger())}, globalMiddlewares...)
	}

	execOpts := []executor.Option{
		executor.WithLogger(a.logger.Logger()),
		executor.WithGlobalMiddlewares(globalMiddlewares...),
		executor.WithErrorFormatter(a.errorFmt),
	}
	if a.cors != nil {
		execOpts = append(execOpts, executor.WithCors(a.cors))
	}
	if a.stringContentType != "" {
		execOpts = append(execOpts, executor.WithStringContentType(a.stringContentType))
	}
	if a.metrics != nil {
		execOpts = append(execOpts, executor.WithMetrics(a.metrics))
	}
	if a.tracer != nil {
		execOpts = append(execOpts, executor.WithTracer(a.tracer))
	}
	a.exec = executor.New(a.router, a.container, a.dispatcher, a.bodyReader, a.validator, execOpts...)

	a.router.Freeze()
	return nil
}

// Executor returns the compiled request executor. It is nil until
// Compile has run successfully.
func (a *App) Executor() *executor.Executor { return a.exec }

// Logger returns the underlying *slog.Logger, for callers that want to
// log outside the request path with the same configuration.
func (a *App) Logger() *slog.Logger { return a.logger.Logger() }

// URLFor rebuilds a concrete path for a named route.
func (a *App) URLFor(name string, params map[string]string) (string, error) {
	return a.router.URLFor(name, params)
}
