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

package compiler

import (
	"reflect"

	"github.com/nestgo/nestgo/binder"
	"github.com/nestgo/nestgo/container"
	"github.com/nestgo/nestgo/kernel"
	"github.com/nestgo/nestgo/registry"
)

// ExtractArg produces the value for one handler argument from ctx,
// translating a ParamBinding's kind into the corresponding Context
// access. The container is consulted only for DI bindings.
func ExtractArg(ctx *kernel.Context, binding registry.ParamBinding, c *container.Container, validator binder.ValidatorAdapter) (any, *kernel.HttpException, error) {
	switch binding.Kind {
	case registry.PathParam:
		v := ctx.Params[binding.Key]
		return v, nil, nil

	case registry.Query:
		v := ctx.Query[binding.Key]
		return v, nil, nil

	case registry.Headers:
		if binding.Key == "" {
			return ctx.Header, nil, nil
		}
		return ctx.Header.Get(binding.Key), nil, nil

	case registry.Req:
		return ctx, nil, nil

	case registry.Locals:
		locals := ctx.Locals()
		if locals == nil {
			return nil, nil, nil
		}
		v, _ := locals.GetNamed(binding.Key)
		return v, nil, nil

	case registry.Body:
		return extractBody(ctx, binding, validator)

	case registry.DI:
		if binding.DeclaredType == nil {
			return nil, nil, &MissingDeclaredTypeError{Index: binding.Index}
		}
		tok := container.TokenForType(binding.DeclaredType)
		var locals container.RequestLocals
		if l := ctx.Locals(); l != nil {
			locals = l
		}
		instance, err := c.GetWithLocals(tok, locals)
		if err != nil {
			return nil, nil, err
		}
		return instance, nil, nil

	default:
		return nil, nil, &MissingDeclaredTypeError{Index: binding.Index}
	}
}

func extractBody(ctx *kernel.Context, binding registry.ParamBinding, validator binder.ValidatorAdapter) (any, *kernel.HttpException, error) {
	elemType := derefType(binding.DeclaredType)

	var target any
	if elemType != nil {
		target = reflect.New(elemType).Interface()
	}

	parsed, err := ctx.Body(target)
	if err != nil {
		if httpErr, ok := err.(*kernel.HttpException); ok {
			return nil, httpErr, nil
		}
		return nil, nil, err
	}

	if elemType == nil || validator == nil || !validator.HasValidation(elemType) {
		return parsed, nil, nil
	}

	transformed, httpErr := validator.ValidateAndTransform(elemType, parsed)
	if httpErr != nil {
		return nil, httpErr, nil
	}
	return transformed, nil, nil
}

func derefType(t reflect.Type) reflect.Type {
	if t == nil {
		return nil
	}
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t
}

// MissingDeclaredTypeError is raised when a DI-defaulted or unrecognized
// parameter binding has no declared type to resolve a token from: Go has
// no implicit constructor reflection, so the builder call site must
// always declare argument types.
type MissingDeclaredTypeError struct {
	Index int
}

func (e *MissingDeclaredTypeError) Error() string {
	return "compiler: parameter has no declared type for DI resolution"
}
