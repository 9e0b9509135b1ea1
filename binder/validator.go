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

// Package binder implements the body-materialization and validation
// collaborators the compiler and executor call through: ValidatorAdapter
// and BodyReader.
package binder

import (
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/nestgo/nestgo/kernel"
)

// ValidatorAdapter is the narrow collaborator the compiler consults for
// every Body-bound parameter: HasValidation tells
// the compiler whether a type carries validation rules at all (so a plain
// DTO with no tags skips validation entirely), and ValidateAndTransform
// performs the actual check, returning a ready-to-use *kernel.HttpException
// on failure.
type ValidatorAdapter interface {
	HasValidation(t reflect.Type) bool
	ValidateAndTransform(t reflect.Type, raw any) (any, *kernel.HttpException)
}

// DefaultValidatorAdapter wraps github.com/go-playground/validator/v10:
// a lazily-initialized, per-adapter *validator.Validate configured to
// read field names from
// the `json` tag (so error paths match the wire format rather than Go
// field names), plus a per-type cache of "does this struct declare any
// `validate` tag" so HasValidation is cheap to call on every bound route.
type DefaultValidatorAdapter struct {
	once sync.Once
	v    *validator.Validate

	hasValidationCache sync.Map // map[reflect.Type]bool
}

// NewDefaultValidatorAdapter constructs an adapter. The underlying
// *validator.Validate is built lazily on first use.
func NewDefaultValidatorAdapter() *DefaultValidatorAdapter {
	return &DefaultValidatorAdapter{}
}

func (a *DefaultValidatorAdapter) validator() *validator.Validate {
	a.once.Do(func() {
		a.v = validator.New(validator.WithRequiredStructEnabled())
		a.v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := fld.Tag.Get("json")
			if name == "-" {
				return ""
			}
			if idx := strings.Index(name, ","); idx != -1 {
				name = name[:idx]
			}
			if name == "" {
				return fld.Name
			}
			return name
		})
	})
	return a.v
}

// HasValidation reports whether t (after dereferencing any pointer)
// declares at least one `validate` struct tag. Types with none are never
// sent through ValidateAndTransform.
func (a *DefaultValidatorAdapter) HasValidation(t reflect.Type) bool {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return false
	}
	if cached, ok := a.hasValidationCache.Load(t); ok {
		return cached.(bool)
	}
	found := false
	for i := 0; i < t.NumField(); i++ {
		if _, ok := t.Field(i).Tag.Lookup("validate"); ok {
			found = true
			break
		}
	}
	actual, _ := a.hasValidationCache.LoadOrStore(t, found)
	return actual.(bool)
}

// ValidateAndTransform runs struct-tag validation against raw (already
// unmarshaled into t's shape) and, on failure, packages every violated
// field into a single 400 *kernel.HttpException.
func (a *DefaultValidatorAdapter) ValidateAndTransform(t reflect.Type, raw any) (any, *kernel.HttpException) {
	if err := a.validator().Struct(raw); err != nil {
		var verrs validator.ValidationErrors
		if !asValidationErrors(err, &verrs) {
			return nil, kernel.NewHttpException(400, map[string]any{
				"message": err.Error(),
			})
		}
		fields := make([]map[string]any, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, map[string]any{
				"path":    fe.Field(),
				"tag":     fe.Tag(),
				"message": fe.Error(),
			})
		}
		return nil, kernel.NewHttpException(400, map[string]any{
			"message": "validation failed",
			"errors":  fields,
		})
	}
	return raw, nil
}

func asValidationErrors(err error, target *validator.ValidationErrors) bool {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return false
	}
	*target = verrs
	return true
}
