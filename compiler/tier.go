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

// Package compiler is the ahead-of-time route compiler: it
// runs once, after providers are loaded, classifying every registered
// route into one of three tiers and pre-computing everything the request
// executor needs to avoid repeating that work on every request.
package compiler

// Tier is the three-way hot-path classification of a compiled route.
type Tier int

const (
	// Simple routes have a singleton controller, no middleware, no DI
	// parameters, and no onRequest/onResponse hooks: the fastest path.
	Simple Tier = iota
	// Standard routes have a singleton controller but need middleware,
	// DI parameters, or hooks.
	Standard
	// Complex routes have a controller that is not a singleton, or was
	// not resolvable at compile time.
	Complex
)

func (t Tier) String() string {
	switch t {
	case Simple:
		return "SIMPLE"
	case Standard:
		return "STANDARD"
	case Complex:
		return "COMPLEX"
	default:
		return "UNKNOWN"
	}
}
