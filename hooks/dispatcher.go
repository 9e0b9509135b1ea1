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

// Package hooks implements the lifecycle and per-request hook
// dispatcher: onApplicationBoot/Init/Shutdown run once, ordered by
// priority (higher first); onRequest/onResponse run per
// request, and only when at least one is registered.
package hooks

import (
	"context"
	"log/slog"
	"sort"

	"github.com/nestgo/nestgo/kernel"
)

// LifecycleFunc is an onApplicationBoot/Init/Shutdown hook.
type LifecycleFunc func(ctx context.Context) error

// RequestFunc is an onRequest hook.
type RequestFunc func(ctx *kernel.Context) error

// ResponseFunc is an onResponse hook; result is whatever the handler (or
// short-circuiting middleware) produced before response shaping.
type ResponseFunc func(ctx *kernel.Context, result any) error

type lifecycleHook struct {
	priority int
	fn       LifecycleFunc
}

type requestHook struct {
	priority int
	fn       RequestFunc
}

type responseHook struct {
	priority int
	fn       ResponseFunc
}

// Dispatcher collects hooks for one application instance. Registries are
// per-instance: multiple applications in one process never share hook
// state.
type Dispatcher struct {
	boot       []lifecycleHook
	init       []lifecycleHook
	shutdown   []lifecycleHook
	onRequest  []requestHook
	onResponse []responseHook
}

// New creates an empty Dispatcher.
func New() *Dispatcher {
	return &Dispatcher{}
}

// OnBoot registers an onApplicationBoot hook at the given priority.
func (d *Dispatcher) OnBoot(priority int, fn LifecycleFunc) {
	d.boot = append(d.boot, lifecycleHook{priority, fn})
	sortLifecycle(d.boot)
}

// OnInit registers an onApplicationInit hook.
func (d *Dispatcher) OnInit(priority int, fn LifecycleFunc) {
	d.init = append(d.init, lifecycleHook{priority, fn})
	sortLifecycle(d.init)
}

// OnShutdown registers an onApplicationShutdown hook.
func (d *Dispatcher) OnShutdown(priority int, fn LifecycleFunc) {
	d.shutdown = append(d.shutdown, lifecycleHook{priority, fn})
	sortLifecycle(d.shutdown)
}

// OnRequest registers a per-request onRequest hook.
func (d *Dispatcher) OnRequest(priority int, fn RequestFunc) {
	d.onRequest = append(d.onRequest, requestHook{priority, fn})
	sort.SliceStable(d.onRequest, func(i, j int) bool { return d.onRequest[i].priority > d.onRequest[j].priority })
}

// OnResponse registers a per-request onResponse hook.
func (d *Dispatcher) OnResponse(priority int, fn ResponseFunc) {
	d.onResponse = append(d.onResponse, responseHook{priority, fn})
	sort.SliceStable(d.onResponse, func(i, j int) bool { return d.onResponse[i].priority > d.onResponse[j].priority })
}

// HasOnRequest reports whether any onRequest hook is registered, so the
// compiler/executor can skip building the dispatch entirely.
func (d *Dispatcher) HasOnRequest() bool { return len(d.onRequest) > 0 }

// HasOnResponse reports whether any onResponse hook is registered.
func (d *Dispatcher) HasOnResponse() bool { return len(d.onResponse) > 0 }

func sortLifecycle(hooks []lifecycleHook) {
	sort.SliceStable(hooks, func(i, j int) bool { return hooks[i].priority > hooks[j].priority })
}

// RunBoot runs every onApplicationBoot hook in priority order. Failures
// are logged and do not prevent the transition.
func (d *Dispatcher) RunBoot(ctx context.Context, logger *slog.Logger) {
	for _, h := range d.boot {
		if err := h.fn(ctx); err != nil {
			logger.Error("onApplicationBoot hook failed", "error", err)
		}
	}
}

// RunInit runs every onApplicationInit hook in priority order. The first
// failure aborts startup.
func (d *Dispatcher) RunInit(ctx context.Context) error {
	for _, h := range d.init {
		if err := h.fn(ctx); err != nil {
			return err
		}
	}
	return nil
}

// RunShutdown runs every onApplicationShutdown hook in priority order.
// Failures are logged and do not prevent the transition.
func (d *Dispatcher) RunShutdown(ctx context.Context, logger *slog.Logger) {
	for _, h := range d.shutdown {
		if err := h.fn(ctx); err != nil {
			logger.Error("onApplicationShutdown hook failed", "error", err)
		}
	}
}

// RunOnRequest runs every onRequest hook in priority order. A failure
// propagates immediately and becomes an error response.
func (d *Dispatcher) RunOnRequest(ctx *kernel.Context) error {
	for _, h := range d.onRequest {
		if err := h.fn(ctx); err != nil {
			return err
		}
	}
	return nil
}

// RunOnResponse runs every onResponse hook in priority order with the
// handler's (possibly short-circuited) result.
func (d *Dispatcher) RunOnResponse(ctx *kernel.Context, result any) error {
	for _, h := range d.onResponse {
		if err := h.fn(ctx, result); err != nil {
			return err
		}
	}
	return nil
}
