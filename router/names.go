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

import "strings"

// Name records path as the URL template reachable under name, so a
// caller can later rebuild a concrete path with URLFor without having
// the original route metadata at hand.
func (r *Router) Name(name, path string) error {
	if r.Frozen() {
		return &FrozenError{Path: path}
	}
	r.namesMu.Lock()
	defer r.namesMu.Unlock()
	if _, exists := r.names[name]; exists {
		return &DuplicateRouteName{Name: name}
	}
	r.names[name] = path
	return nil
}

// DuplicateRouteName is returned by Name when two routes claim the same
// name.
type DuplicateRouteName struct {
	Name string
}

func (e *DuplicateRouteName) Error() string {
	return "router: route name " + e.Name + " already registered"
}

// UnknownRouteName is returned by URLFor when name was never registered.
type UnknownRouteName struct {
	Name string
}

func (e *UnknownRouteName) Error() string {
	return "router: no route named " + e.Name
}

// MissingURLParam is returned by URLFor when params does not supply a
// value for every ":name" segment (or the trailing "*") in the named
// route's template.
type MissingURLParam struct {
	Name  string
	Param string
}

func (e *MissingURLParam) Error() string {
	return "router: URLFor(" + e.Name + "): missing value for parameter " + e.Param
}

// URLFor rebuilds a concrete path for the route registered under name,
// substituting each ":param" segment (and a trailing "*") with the
// corresponding entry in params.
func (r *Router) URLFor(name string, params map[string]string) (string, error) {
	r.namesMu.RLock()
	template, ok := r.names[name]
	r.namesMu.RUnlock()
	if !ok {
		return "", &UnknownRouteName{Name: name}
	}

	var b strings.Builder
	i := 0
	for i < len(template) {
		switch template[i] {
		case ':':
			j := i + 1
			for j < len(template) && template[j] != '/' {
				j++
			}
			key := template[i+1 : j]
			v, ok := params[key]
			if !ok {
				return "", &MissingURLParam{Name: name, Param: key}
			}
			b.WriteString(v)
			i = j
		case '*':
			v, ok := params["*"]
			if !ok {
				return "", &MissingURLParam{Name: name, Param: "*"}
			}
			b.WriteString(v)
			i = len(template)
		default:
			j := i
			for j < len(template) && template[j] != ':' && template[j] != '*' {
				j++
			}
			b.WriteString(template[i:j])
			i = j
		}
	}
	return b.String(), nil
}
