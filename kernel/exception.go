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

package kernel

import "fmt"

// HttpException is the one recoverable error type the executor special-
// cases: any handler, middleware, or validator may raise one
// to short-circuit with a specific status and payload. Everything else
// bubbles to the top-level catcher and becomes a 500.
type HttpException struct {
	StatusCode int
	Payload    any // serialized verbatim into the "message" field
}

// NewHttpException constructs an HttpException. payload may be a plain
// string message or a structured value (e.g. validation issues); it is
// carried as-is into the wire body's "message" field.
func NewHttpException(statusCode int, payload any) *HttpException {
	return &HttpException{StatusCode: statusCode, Payload: payload}
}

func (e *HttpException) Error() string {
	return fmt.Sprintf("http exception %d: %v", e.StatusCode, e.Payload)
}

// Body renders the wire shape: {"message": <payload>,
// "statusCode": <status>}.
func (e *HttpException) Body() responseBody {
	return responseBody{Message: e.Payload, StatusCode: e.StatusCode}
}

type responseBody struct {
	Message    any `json:"message"`
	StatusCode int `json:"statusCode"`
}

// NoMatchingRouteError is the routing failure mode: a router miss is
// not an error at the router layer, but the executor raises this to
// drive the top-level catcher's 404 mapping.
type NoMatchingRouteError struct {
	Method string
	Path   string
}

func (e *NoMatchingRouteError) Error() string {
	return fmt.Sprintf("kernel: no route matches %s %s", e.Method, e.Path)
}
