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

// Package middleware implements the onion-model chain: global, then
// parent-controller, then controller, then
// route middlewares, each able to short-circuit by returning a response
// instead of calling next.
package middleware

import "github.com/nestgo/nestgo/kernel"

// Next invokes the rest of the chain (or the final handler, for the last
// middleware) and returns its result.
type Next func(ctx *kernel.Context) (any, error)

// Func is a single middleware: it must either call next (optionally
// inspecting or wrapping its result) or return its own value to
// short-circuit the chain.
type Func func(ctx *kernel.Context, next Next) (any, error)

// Chain composes an ordered list of middlewares into a single Next. A
// Chain is built fresh per request, never shared across requests.
// The next passed to the last middleware is terminal itself, so there is
// no link past the end for a middleware to run into.
type Chain struct {
	links []Func
}

// NewChain orders links exactly as given: global..., parentController...,
// controller..., route.... Callers are responsible for
// concatenating in that order before calling NewChain.
func NewChain(links ...Func) *Chain {
	return &Chain{links: links}
}

// Then binds terminal (typically the method invoker) as what runs once
// every middleware has called next, and returns the composed entry point.
func (c *Chain) Then(terminal Next) Next {
	next := terminal
	for i := len(c.links) - 1; i >= 0; i-- {
		link := c.links[i]
		captured := next
		next = func(ctx *kernel.Context) (any, error) {
			return link(ctx, captured)
		}
	}
	return next
}
