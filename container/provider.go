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

import "sync"

// FactoryKind distinguishes how a provider produces its instance.
type FactoryKind int

const (
	// ClassFactory providers call NewInstance with resolved dependencies.
	ClassFactory FactoryKind = iota
	// ValueFactory providers already hold their instance at registration.
	ValueFactory
)

// Constructor builds an instance given the already-resolved dependencies,
// supplied positionally in the same order as Provider.Deps. It mirrors the
// source framework's constructor-injection: there is no reflection magic
// here, the dependency list is declared explicitly at registration time.
type Constructor func(deps []any) (any, error)

// Provider describes how to obtain an instance for a Token.
//
// Invariants:
//   - a ValueFactory provider has Value set at registration time.
//   - a Singleton ClassFactory provider populates its cached instance on
//     first resolution.
//   - a Request-scoped ClassFactory provider never populates a global
//     cached instance; its instance lives only in a request's
//     LocalsContainer.
type Provider struct {
	Token       *Token
	Kind        FactoryKind
	Scope       Scope
	Deps        []*Token    // constructor parameter tokens, in order (ClassFactory only)
	NewInstance Constructor // ClassFactory only
	Value       any         // ValueFactory only

	// singleton cache, populated lazily and serialized so a late
	// (non-pre-instantiated) singleton resolution is a one-shot guard
	// rather than a race.
	mu       sync.Mutex
	resolved bool
	instance any
}

// validate checks the invariants a Provider must satisfy before it can be
// registered.
func (p *Provider) validate() error {
	if p.Token == nil {
		return &InvalidProviderError{Reason: "token must not be nil"}
	}
	switch p.Kind {
	case ValueFactory:
		if p.Value == nil {
			return &InvalidProviderError{Token: p.Token, Reason: "value provider requires a non-nil Value"}
		}
	case ClassFactory:
		if p.NewInstance == nil {
			return &InvalidProviderError{Token: p.Token, Reason: "class provider requires NewInstance"}
		}
	default:
		return &InvalidProviderError{Token: p.Token, Reason: "unknown factory kind"}
	}
	return nil
}
