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

// Package registry is the metadata registry: it collects
// controller/route/param/middleware information keyed by target (hooks
// are registered separately on a hooks.Dispatcher). The source framework
// populates this through runtime annotations; here it is populated
// through explicit builder calls (Controller, Route, Param, the
// middleware options, NewGroup), which the compiler then consumes
// exactly like it would a decorator-derived side table.
package registry

import "reflect"

// ParamKind identifies how one handler argument is produced.
type ParamKind int

const (
	// Body binds the parsed request body.
	Body ParamKind = iota
	// Query binds a single query-string value by key.
	Query
	// PathParam binds a single path parameter by key.
	PathParam
	// Headers binds a single header value by key, or the full header set
	// when Key is empty.
	Headers
	// Req binds the raw *kernel.Context (or, by convention, *http.Request
	// extracted from it) directly, with no further extraction.
	Req
	// Locals binds a value stored in the request's LocalsContainer by key.
	Locals
	// DI binds a dependency resolved from the container. This is the
	// fallback: any parameter without an explicit binding annotation is DI.
	DI
)

func (k ParamKind) String() string {
	switch k {
	case Body:
		return "body"
	case Query:
		return "query"
	case PathParam:
		return "param"
	case Headers:
		return "headers"
	case Req:
		return "req"
	case Locals:
		return "locals"
	case DI:
		return "di"
	default:
		return "unknown"
	}
}

// ParamBinding describes how to produce argument Index of a route's
// handler method.
type ParamBinding struct {
	Index        int
	Kind         ParamKind
	Key          string
	DeclaredType reflect.Type
}

// Param declares an explicit binding for parameter index i of a route's
// handler. Routes built without a Param call for a given index default
// that index to DI.
func Param(index int, kind ParamKind, key string, declaredType reflect.Type) ParamBinding {
	return ParamBinding{Index: index, Kind: kind, Key: key, DeclaredType: declaredType}
}
