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

package router

import "fmt"

// DuplicateRoute is returned by Add when a (method, canonical path) pair
// already owns a terminal store and the caller did not ask to overwrite it.
type DuplicateRoute struct {
	Method string
	Path   string
}

func (e *DuplicateRoute) Error() string {
	return fmt.Sprintf("router: route %s %s already registered", e.Method, e.Path)
}

// ParamNameConflict is returned by Add when a route resolves to a terminal
// that already exists for a structurally identical path (same literal and
// parameter layout) but declares different parameter names.
type ParamNameConflict struct {
	Method   string
	Path     string
	Existing []string
	Incoming []string
}

func (e *ParamNameConflict) Error() string {
	return fmt.Sprintf("router: route %s %s reuses a terminal already bound to parameter names %v, cannot rebind to %v",
		e.Method, e.Path, e.Existing, e.Incoming)
}
