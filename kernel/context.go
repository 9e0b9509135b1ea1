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

// Package kernel holds the per-request types shared by every tier of the
// request executor: Context, LocalsContainer, HttpException, and response
// shaping. These types have no dependency on the router, container
// registration machinery, or the executor itself, so router, binder,
// middleware, and hooks can all depend on kernel without a cycle.
package kernel

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/nestgo/nestgo/container"
)

// BodyReader materializes a request's body into parsed form on demand.
// It is a narrow, out-of-core collaborator: the executor and
// compiler never parse bodies themselves, they call this interface only
// when a binding actually needs it.
type BodyReader interface {
	// Read parses r's body into a value of target's shape (target is a
	// pointer the reader may populate, or nil if the caller only wants the
	// raw bytes). It returns the parsed value, the raw bytes, and any error.
	Read(r *http.Request, target any) (parsed any, raw []byte, err error)
}

// ContextToken is the well-known token under which every LocalsContainer
// stores its owning Context; LocalsContainer.Get(ContextToken) returns it.
// The DI container does not resolve it: a DI-bound parameter is looked up
// by container.TokenForType of its declared type, and no provider is
// registered for *Context.
var ContextToken = container.NewToken("kernel.Context")

// Context is the per-request state bag: method, pathname, query, path
// params, headers, lazily-materialized body, the
// underlying *http.Request, locals, tracking id, and response status.
type Context struct {
	Method   string
	Pathname string
	Query    map[string]string
	Params   map[string]string
	Header   http.Header
	Request  *http.Request

	TrackingID     string
	ResponseStatus int // 0 means "unset"; the executor defaults to 200.

	locals *LocalsContainer

	bodyReader BodyReader
	bodyLoaded bool
	body       any
	rawBody    []byte
	bodyErr    error
}

// NewContext builds a Context for an incoming request. The tracking id is
// taken from the x-tracking-id header when present, else freshly
// generated (UUID v4).
func NewContext(r *http.Request, params map[string]string, bodyReader BodyReader) *Context {
	query := make(map[string]string, len(r.URL.Query()))
	for k, v := range r.URL.Query() {
		if len(v) > 0 {
			query[k] = v[0]
		}
	}

	trackingID := r.Header.Get("x-tracking-id")
	if trackingID == "" {
		trackingID = uuid.NewString()
	}

	return &Context{
		Method:     r.Method,
		Pathname:   r.URL.Path,
		Query:      query,
		Params:     params,
		Header:     r.Header,
		Request:    r,
		TrackingID: trackingID,
		bodyReader: bodyReader,
	}
}

// AttachLocals binds this Context to a LocalsContainer, completing the
// circular-but-intentional relationship: the container always resolves
// ContextToken back to this exact Context instance for the lifetime of
// the request.
func (c *Context) AttachLocals(locals *LocalsContainer) {
	c.locals = locals
}

// Locals returns the request's LocalsContainer, or nil if the compiled
// route did not need one.
func (c *Context) Locals() *LocalsContainer {
	return c.locals
}

// Body lazily materializes the request body through the configured
// BodyReader, exactly once. target, when non-nil, is the pointer the
// reader should populate; subsequent calls return the cached result
// regardless of target. The body is never touched unless some binding
// asks for it.
func (c *Context) Body(target any) (any, error) {
	if c.bodyLoaded {
		return c.body, c.bodyErr
	}
	c.bodyLoaded = true
	if c.bodyReader == nil {
		c.bodyErr = &NoBodyReaderError{}
		return nil, c.bodyErr
	}
	parsed, raw, err := c.bodyReader.Read(c.Request, target)
	c.body = parsed
	c.rawBody = raw
	c.bodyErr = err
	return c.body, c.bodyErr
}

// RawBody returns the raw bytes captured the first time Body was called,
// materializing the body with a nil target if it has not been read yet.
func (c *Context) RawBody() ([]byte, error) {
	if !c.bodyLoaded {
		if _, err := c.Body(nil); err != nil {
			return nil, err
		}
	}
	return c.rawBody, c.bodyErr
}

// NoBodyReaderError is returned by Body when a route needs the request
// body but no BodyReader collaborator was configured.
type NoBodyReaderError struct{}

func (e *NoBodyReaderError) Error() string {
	return "kernel: route requires a request body but no BodyReader is configured"
}
