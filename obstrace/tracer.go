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

// Package obstrace is the narrow tracing collaborator: a span wrapped
// around dispatch, consumed by the executor exactly like the CORS and
// body-reader collaborators, never baked into its decision-making. It
// does the one thing the executor needs: start a span per request and
// record its outcome.
package obstrace

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

// Tracer starts one span per dispatched request and nothing more.
type Tracer struct {
	tracer         trace.Tracer
	provider       *sdktrace.TracerProvider
	registerGlobal bool
}

// Option configures a Tracer at construction time.
type Option func(*config)

type config struct {
	serviceName    string
	serviceVersion string
	exporter       sdktrace.SpanExporter
	registerGlobal bool
}

// WithServiceName sets the resource's service.name attribute.
func WithServiceName(name string) Option {
	return func(c *config) { c.serviceName = name }
}

// WithServiceVersion sets the resource's service.version attribute.
func WithServiceVersion(version string) Option {
	return func(c *config) { c.serviceVersion = version }
}

// WithExporter overrides the span exporter; the default is a stdout
// exporter.
func WithExporter(exp sdktrace.SpanExporter) Option {
	return func(c *config) { c.exporter = exp }
}

// WithGlobalRegistration installs the constructed provider as the
// process-wide otel.SetTracerProvider, for libraries that pull the
// tracer from the global rather than taking one explicitly.
func WithGlobalRegistration() Option {
	return func(c *config) { c.registerGlobal = true }
}

// New builds a Tracer backed by an SDK TracerProvider. Construction fails
// if the default stdout exporter cannot be built or if merging the
// service attributes into the default resource fails.
func New(ctx context.Context, opts ...Option) (*Tracer, error) {
	cfg := &config{serviceName: "nestgo-app", serviceVersion: "0.0.0"}
	for _, opt := range opts {
		opt(cfg)
	}

	exp := cfg.exporter
	if exp == nil {
		var err error
		exp, err = stdouttrace.New(stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, fmt.Errorf("obstrace: build default exporter: %w", err)
		}
	}

	res, err := resource.Merge(resource.Default(), resource.NewSchemaless(
		semconv.ServiceName(cfg.serviceName),
		semconv.ServiceVersion(cfg.serviceVersion),
	))
	if err != nil {
		return nil, fmt.Errorf("obstrace: merge resource: %w", err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
	)

	if cfg.registerGlobal {
		otel.SetTracerProvider(provider)
	}

	return &Tracer{
		tracer:         provider.Tracer("github.com/nestgo/nestgo"),
		provider:       provider,
		registerGlobal: cfg.registerGlobal,
	}, nil
}

// StartRequest opens a span named "<method> <route>" and returns the
// derived context (unused by the executor today, since kernel.Context
// does not thread a context.Context, but returned for callers that
// propagate it into downstream calls) and an End func the executor
// defers to close the span and record its outcome.
func (t *Tracer) StartRequest(ctx context.Context, method, route string) (context.Context, func(status int, err error)) {
	spanCtx, span := t.tracer.Start(ctx, method+" "+route,
		trace.WithAttributes(
			semconv.HTTPRequestMethodKey.String(method),
			attribute.String("http.route", route),
		),
	)
	return spanCtx, func(status int, err error) {
		span.SetAttributes(semconv.HTTPResponseStatusCode(status))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else if status >= 500 {
			span.SetStatus(codes.Error, "")
		}
		span.End()
	}
}

// Shutdown flushes and stops the underlying provider, called once at
// application shutdown.
func (t *Tracer) Shutdown(ctx context.Context) error {
	return t.provider.Shutdown(ctx)
}
