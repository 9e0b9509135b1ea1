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

package registry

import (
	"github.com/nestgo/nestgo/container"
	"github.com/nestgo/nestgo/middleware"
)

// Group composes a basePath prefix and a middleware prefix recursively:
// a child Group inherits its parent's basePath and middleware prefix.
type Group struct {
	basePath    string
	middlewares []middleware.Func
	parent      *Group
}

// NewGroup creates a root group.
func NewGroup(basePath string, mws ...middleware.Func) *Group {
	return &Group{basePath: normalizePath(basePath), middlewares: mws}
}

// Child creates a nested group whose path and middleware prefix extend
// this one's.
func (g *Group) Child(subPath string, mws ...middleware.Func) *Group {
	return &Group{
		basePath:    joinPath(g.basePath, normalizePath(subPath)),
		middlewares: mws,
		parent:      g,
	}
}

// BasePath returns the group's fully-resolved path prefix.
func (g *Group) BasePath() string { return g.basePath }

// Middlewares returns the group's inherited middleware chain, outermost
// (root ancestor) first.
func (g *Group) Middlewares() []middleware.Func {
	var chain []*Group
	for n := g; n != nil; n = n.parent {
		chain = append(chain, n)
	}
	var all []middleware.Func
	for i := len(chain) - 1; i >= 0; i-- {
		all = append(all, chain[i].middlewares...)
	}
	return all
}

// Controller registers a controller scoped under this group: its
// basePath is the group's basePath joined with localPath, and it
// inherits the group's middleware chain ahead of any controller-level
// middlewares given in opts.
func (g *Group) Controller(localPath string, token *container.Token, opts ...ControllerOption) *ControllerMeta {
	c := Controller(joinPath(g.basePath, normalizePath(localPath)), token)
	c.Middlewares = append(append([]middleware.Func{}, g.Middlewares()...), c.Middlewares...)
	for _, opt := range opts {
		opt(c)
	}
	return c
}
