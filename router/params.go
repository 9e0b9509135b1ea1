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

// Params holds the path parameters extracted for a matched route, in
// declaration order. Lookup is linear: route path parameter counts are
// small in practice, and avoiding a map keeps the hot path allocation-free
// when paired with emptyParams.
type Params struct {
	keys   []string
	values []string
}

// emptyParams is returned by Find when a route declares no parameters, so
// the common case allocates nothing.
var emptyParams = Params{}

// Get returns the value bound to name, and whether it was present.
func (p Params) Get(name string) (string, bool) {
	for i, k := range p.keys {
		if k == name {
			return p.values[i], true
		}
	}
	return "", false
}

// Len reports how many parameters were captured.
func (p Params) Len() int { return len(p.keys) }

// Each calls fn for every captured parameter, in declaration order.
func (p Params) Each(fn func(name, value string)) {
	for i, k := range p.keys {
		fn(k, p.values[i])
	}
}

// ToMap copies the captured parameters into a map, for collaborators
// (kernel.Context) that expect a map rather than Params' allocation-free
// slice pair.
func (p Params) ToMap() map[string]string {
	if len(p.keys) == 0 {
		return nil
	}
	m := make(map[string]string, len(p.keys))
	for i, k := range p.keys {
		m[k] = p.values[i]
	}
	return m
}
