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

package executor

import (
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/nestgo/nestgo/binder"
	"github.com/nestgo/nestgo/compiler"
	"github.com/nestgo/nestgo/container"
	"github.com/nestgo/nestgo/hooks"
	"github.com/nestgo/nestgo/kernel"
	"github.com/nestgo/nestgo/middleware"
	"github.com/nestgo/nestgo/obsmetrics"
	"github.com/nestgo/nestgo/registry"
	"github.com/nestgo/nestgo/router"
)

type greeter struct{}

func newExecutor(t *testing.T, r *router.Router, c *container.Container, d *hooks.Dispatcher, opts ...Option) *Executor {
	t.Helper()
	return New(r, c, d, binder.NewDefaultBodyReader(), binder.NewDefaultValidatorAdapter(), opts...)
}

// TestSimpleGetReturnsStringAsTextHTML: a singleton controller, no
// middleware, no DI params, classified SIMPLE.
func TestSimpleGetReturnsStringAsTextHTML(t *testing.T) {
	c := container.New()
	tok := container.NewToken("RootController")
	require.NoError(t, c.Register(&container.Provider{
		Token: tok, Kind: container.ClassFactory, Scope: container.Singleton,
		NewInstance: func(deps []any) (any, error) { return &greeter{}, nil },
	}))

	ctrl := registry.Controller("/", tok)
	route := registry.Route(ctrl, "GET", "/", "Index", nil,
		func(instance any, ctx *kernel.Context, args []any) (any, error) { return "ok", nil })

	cr, err := compiler.Compile(route, c, hooks.New(), binder.NewDefaultValidatorAdapter(), false)
	require.NoError(t, err)
	require.Equal(t, compiler.Simple, cr.Tier)

	r := router.New()
	require.NoError(t, r.Add("GET", "/", cr, false))

	e := newExecutor(t, r, c, hooks.New())

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html", rec.Header().Get("Content-Type"))
	assert.Equal(t, "ok", rec.Body.String())
}

// TestPathParamSiblingNamingDoesNotLeak: routes sharing a param edge
// must each recover their own declared parameter name.
func TestPathParamSiblingNamingDoesNotLeak(t *testing.T) {
	c := container.New()
	tok := container.NewToken("CoursesController")
	require.NoError(t, c.Register(&container.Provider{
		Token: tok, Kind: container.ClassFactory, Scope: container.Singleton,
		NewInstance: func(deps []any) (any, error) { return &greeter{}, nil },
	}))

	ctrl := registry.Controller("/courses", tok)
	byID := registry.Route(ctrl, "GET", "/:id", "ByID",
		[]reflect.Type{reflect.TypeOf("")},
		func(instance any, ctx *kernel.Context, args []any) (any, error) {
			return map[string]any{"id": args[0]}, nil
		},
		registry.WithParam(registry.Param(0, registry.PathParam, "id", reflect.TypeOf(""))))
	stats := registry.Route(ctrl, "GET", "/:courseId/stats", "Stats",
		[]reflect.Type{reflect.TypeOf("")},
		func(instance any, ctx *kernel.Context, args []any) (any, error) {
			return map[string]any{"courseId": args[0]}, nil
		},
		registry.WithParam(registry.Param(0, registry.PathParam, "courseId", reflect.TypeOf(""))))

	r := router.New()
	crByID, err := compiler.Compile(byID, c, hooks.New(), binder.NewDefaultValidatorAdapter(), false)
	require.NoError(t, err)
	require.NoError(t, r.Add("GET", byID.FullPath(), crByID, false))
	crStats, err := compiler.Compile(stats, c, hooks.New(), binder.NewDefaultValidatorAdapter(), false)
	require.NoError(t, err)
	require.NoError(t, r.Add("GET", stats.FullPath(), crStats, false))

	e := newExecutor(t, r, c, hooks.New())

	rec1 := httptest.NewRecorder()
	e.ServeHTTP(rec1, httptest.NewRequest(http.MethodGet, "/courses/42", nil))
	assert.JSONEq(t, `{"id":"42"}`, rec1.Body.String())

	rec2 := httptest.NewRecorder()
	e.ServeHTTP(rec2, httptest.NewRequest(http.MethodGet, "/courses/77/stats", nil))
	assert.JSONEq(t, `{"courseId":"77"}`, rec2.Body.String())
}

// A middleware short-circuit skips the handler but onResponse still
// fires with the short-circuit result.
func TestMiddlewareShortCircuitSkipsHandlerButFiresOnResponse(t *testing.T) {
	c := container.New()
	tok := container.NewToken("GatedController")
	require.NoError(t, c.Register(&container.Provider{
		Token: tok, Kind: container.ClassFactory, Scope: container.Singleton,
		NewInstance: func(deps []any) (any, error) { return &greeter{}, nil },
	}))

	handlerCalled := false
	ctrl := registry.Controller("/gated", tok)
	route := registry.Route(ctrl, "GET", "/", "Index", nil,
		func(instance any, ctx *kernel.Context, args []any) (any, error) {
			handlerCalled = true
			return "never", nil
		})

	d := hooks.New()
	onResponseFired := false
	var onResponseResult any
	d.OnResponse(0, func(ctx *kernel.Context, result any) error {
		onResponseFired = true
		onResponseResult = result
		return nil
	})

	cr, err := compiler.Compile(route, c, d, binder.NewDefaultValidatorAdapter(), false)
	require.NoError(t, err)
	require.Equal(t, compiler.Standard, cr.Tier, "hook registration forces Standard tier")

	r := router.New()
	require.NoError(t, r.Add("GET", "/gated", cr, false))

	forbidden := func(ctx *kernel.Context, next middleware.Next) (any, error) {
		return kernel.NewHttpException(http.StatusForbidden, "nope"), nil
	}

	e := newExecutor(t, r, c, d, WithGlobalMiddlewares(forbidden))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/gated", nil))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, handlerCalled, "handler must never run after a middleware short-circuit")
	assert.True(t, onResponseFired, "onResponse must still fire with the short-circuit result")
	require.NotNil(t, onResponseResult)
}

func TestUnmatchedRouteReturns404(t *testing.T) {
	e := newExecutor(t, router.New(), container.New(), hooks.New())
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// TestUnmatchedRouteRecordsFixedMetricsLabelNotRawPath guards against an
// attacker-controlled path ever reaching a Prometheus label: every 404
// must report the same "unmatched" route label regardless of how many
// distinct paths were requested, not the raw incoming path.
func TestUnmatchedRouteRecordsFixedMetricsLabelNotRawPath(t *testing.T) {
	reg := prometheus.NewRegistry()
	recorder := obsmetrics.New(obsmetrics.WithRegisterer(reg))
	e := newExecutor(t, router.New(), container.New(), hooks.New(), WithMetrics(recorder))

	for _, path := range []string{"/nope", "/also/not/a/route", "/yet-another"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	}

	count, err := testutil.GatherAndCount(reg, "http_requests_total")
	require.NoError(t, err)
	require.Equal(t, 1, count, "every unmatched path must collapse onto a single metrics series")
}

func TestHandlerHttpExceptionSerializedVerbatim(t *testing.T) {
	c := container.New()
	tok := container.NewToken("FailingController")
	require.NoError(t, c.Register(&container.Provider{
		Token: tok, Kind: container.ClassFactory, Scope: container.Singleton,
		NewInstance: func(deps []any) (any, error) { return &greeter{}, nil },
	}))

	ctrl := registry.Controller("/fail", tok)
	route := registry.Route(ctrl, "GET", "/", "Index", nil,
		func(instance any, ctx *kernel.Context, args []any) (any, error) {
			return nil, kernel.NewHttpException(http.StatusTeapot, "short and stout")
		})

	cr, err := compiler.Compile(route, c, hooks.New(), binder.NewDefaultValidatorAdapter(), false)
	require.NoError(t, err)

	r := router.New()
	require.NoError(t, r.Add("GET", "/fail", cr, false))

	e := newExecutor(t, r, c, hooks.New())
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/fail", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Contains(t, rec.Body.String(), "short and stout")
}

func TestTrackingIDPropagatesFromHeader(t *testing.T) {
	c := container.New()
	tok := container.NewToken("TrackingController")
	require.NoError(t, c.Register(&container.Provider{
		Token: tok, Kind: container.ClassFactory, Scope: container.Singleton,
		NewInstance: func(deps []any) (any, error) { return &greeter{}, nil },
	}))

	var seen string
	ctrl := registry.Controller("/track", tok)
	route := registry.Route(ctrl, "GET", "/", "Index", nil,
		func(instance any, ctx *kernel.Context, args []any) (any, error) {
			seen = ctx.TrackingID
			return "ok", nil
		})

	cr, err := compiler.Compile(route, c, hooks.New(), binder.NewDefaultValidatorAdapter(), false)
	require.NoError(t, err)

	r := router.New()
	require.NoError(t, r.Add("GET", "/track", cr, false))

	e := newExecutor(t, r, c, hooks.New())

	req := httptest.NewRequest(http.MethodGet, "/track", nil)
	req.Header.Set("x-tracking-id", "abc-123")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", seen)
}

func TestTrackingIDGeneratedWhenHeaderAbsent(t *testing.T) {
	c := container.New()
	tok := container.NewToken("TrackingController2")
	require.NoError(t, c.Register(&container.Provider{
		Token: tok, Kind: container.ClassFactory, Scope: container.Singleton,
		NewInstance: func(deps []any) (any, error) { return &greeter{}, nil },
	}))

	var seen string
	ctrl := registry.Controller("/track2", tok)
	route := registry.Route(ctrl, "GET", "/", "Index", nil,
		func(instance any, ctx *kernel.Context, args []any) (any, error) {
			seen = ctx.TrackingID
			return "ok", nil
		})

	cr, err := compiler.Compile(route, c, hooks.New(), binder.NewDefaultValidatorAdapter(), false)
	require.NoError(t, err)

	r := router.New()
	require.NoError(t, r.Add("GET", "/track2", cr, false))

	e := newExecutor(t, r, c, hooks.New())
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/track2", nil))

	assert.Regexp(t, `^[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`, seen)
}
