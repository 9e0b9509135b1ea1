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

package middleware

import (
	"net/http"
	"strings"

	"github.com/nestgo/nestgo/kernel"
)

// CorsPolicy is the narrow CORS collaborator interface:
// invoked by the executor before routing (preflight) and after response
// shaping (apply). CORS policy itself is out of core scope;
// DefaultCors below is a convenience implementation, not a requirement.
type CorsPolicy interface {
	IsPreflight(r *http.Request) bool
	HandlePreflight(r *http.Request) *kernel.Response
	Apply(resp *kernel.Response, origin string) *kernel.Response
	IsOriginAllowed(origin string) bool
}

// DefaultCors is an allow-list CORS policy configured through options
// (WithAllowedOrigins, WithAllowedMethods, WithAllowCredentials), with
// "*" as the allow-any wildcard.
type DefaultCors struct {
	allowedOrigins   map[string]bool
	allowAnyOrigin   bool
	allowedMethods   string
	allowedHeaders   string
	allowCredentials bool
}

// CorsOption configures a DefaultCors.
type CorsOption func(*DefaultCors)

// WithAllowedOrigins restricts matching origins; "*" allows any origin.
func WithAllowedOrigins(origins ...string) CorsOption {
	return func(c *DefaultCors) {
		for _, o := range origins {
			if o == "*" {
				c.allowAnyOrigin = true
				continue
			}
			c.allowedOrigins[o] = true
		}
	}
}

// WithAllowedMethods sets the Access-Control-Allow-Methods value.
func WithAllowedMethods(methods ...string) CorsOption {
	return func(c *DefaultCors) { c.allowedMethods = strings.Join(methods, ", ") }
}

// WithAllowedHeaders sets the Access-Control-Allow-Headers value.
func WithAllowedHeaders(headers ...string) CorsOption {
	return func(c *DefaultCors) { c.allowedHeaders = strings.Join(headers, ", ") }
}

// WithAllowCredentials toggles Access-Control-Allow-Credentials.
func WithAllowCredentials(allow bool) CorsOption {
	return func(c *DefaultCors) { c.allowCredentials = allow }
}

// NewDefaultCors builds a DefaultCors from options.
func NewDefaultCors(opts ...CorsOption) *DefaultCors {
	c := &DefaultCors{
		allowedOrigins: make(map[string]bool),
		allowedMethods: "GET, POST, PUT, DELETE, PATCH, OPTIONS, HEAD",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *DefaultCors) IsPreflight(r *http.Request) bool {
	return r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != ""
}

func (c *DefaultCors) HandlePreflight(r *http.Request) *kernel.Response {
	origin := r.Header.Get("Origin")
	resp := &kernel.Response{StatusCode: http.StatusNoContent}
	if c.IsOriginAllowed(origin) {
		resp.SetHeader("Access-Control-Allow-Origin", originValue(origin, c.allowAnyOrigin))
		resp.SetHeader("Access-Control-Allow-Methods", c.allowedMethods)
		if c.allowedHeaders != "" {
			resp.SetHeader("Access-Control-Allow-Headers", c.allowedHeaders)
		}
		if c.allowCredentials {
			resp.SetHeader("Access-Control-Allow-Credentials", "true")
		}
	}
	return resp
}

func (c *DefaultCors) Apply(resp *kernel.Response, origin string) *kernel.Response {
	if resp == nil || !c.IsOriginAllowed(origin) {
		return resp
	}
	resp.SetHeader("Access-Control-Allow-Origin", originValue(origin, c.allowAnyOrigin))
	if c.allowCredentials {
		resp.SetHeader("Access-Control-Allow-Credentials", "true")
	}
	return resp
}

func (c *DefaultCors) IsOriginAllowed(origin string) bool {
	if c.allowAnyOrigin {
		return true
	}
	return c.allowedOrigins[origin]
}

func originValue(origin string, allowAny bool) string {
	if allowAny {
		return "*"
	}
	return origin
}
