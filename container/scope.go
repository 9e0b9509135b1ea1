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

package container

// Scope is the lifetime policy declared for a provider.
type Scope int

const (
	// Singleton providers are instantiated once and cached in the
	// container for the lifetime of the process, unless scope bubbling
	// (see ResolveInternal) forces a given resolution to REQUEST.
	Singleton Scope = iota
	// Request providers are instantiated once per request and cached in
	// that request's LocalsContainer only.
	Request
	// Instance providers are never cached; every resolution constructs a
	// fresh value.
	Instance
)

// String renders the scope for diagnostics.
func (s Scope) String() string {
	switch s {
	case Singleton:
		return "SINGLETON"
	case Request:
		return "REQUEST"
	case Instance:
		return "INSTANCE"
	default:
		return "UNKNOWN"
	}
}
