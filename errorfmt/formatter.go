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

// Package errorfmt turns an arbitrary error into the (status, content
// type, body) triple the executor writes to the wire, for errors that
// are not a *kernel.HttpException. It is a pluggable extension point:
// the ErrorType / ErrorDetails / ErrorCode interfaces let domain errors
// opt into a custom status/detail/code without the executor importing
// any concrete error type.
package errorfmt

import "net/http"

// Response is what a Formatter produces for one error.
type Response struct {
	Status      int
	ContentType string
	Body        any
}

// Formatter converts an error into an HTTP response. DefaultFormatter
// produces the standard {message, statusCode} shape; callers may supply
// their own (e.g. an RFC 9457 problem-details formatter) via
// executor.WithErrorFormatter.
type Formatter interface {
	Format(err error) Response
}

// ErrorType lets a domain error declare its own HTTP status, without the
// executor knowing the concrete type.
type ErrorType interface {
	error
	HTTPStatus() int
}

// ErrorDetails lets a domain error expose structured detail (e.g.
// per-field validation issues) beyond its message.
type ErrorDetails interface {
	error
	Details() any
}

// ErrorCode lets a domain error declare a stable machine-readable code.
type ErrorCode interface {
	error
	Code() string
}

// DefaultFormatter produces the default wire shape for any error that
// is not a *kernel.HttpException (the executor handles that type before
// ever reaching a Formatter): {message, statusCode}, plus "details" and
// "code" when the error opts into ErrorDetails/ErrorCode. An error that
// implements ErrorType carries its own message; any other error becomes
// a 500 whose message is the generic status text, never err.Error().
type DefaultFormatter struct{}

// Format implements Formatter.
func (DefaultFormatter) Format(err error) Response {
	status := http.StatusInternalServerError
	message := http.StatusText(http.StatusInternalServerError)
	if typed, ok := err.(ErrorType); ok {
		status = typed.HTTPStatus()
		message = err.Error()
	}

	body := map[string]any{
		"message":    message,
		"statusCode": status,
	}
	if typed, ok := err.(ErrorDetails); ok {
		body["details"] = typed.Details()
	}
	if typed, ok := err.(ErrorCode); ok {
		body["code"] = typed.Code()
	}

	return Response{Status: status, ContentType: "application/json", Body: body}
}
