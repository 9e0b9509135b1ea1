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

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// ContentTypeHTML and ContentTypeText are the two content types the
// default response-shaping rule can choose between for a
// string/number/boolean return value. HTML is the default; Text is the
// opt-in override.
const (
	ContentTypeHTML = "text/html"
	ContentTypeText = "text/plain"
	ContentTypeJSON = "application/json"
)

// Response is a pre-built response: a handler, middleware, or hook may
// return one directly to bypass shaping entirely, preserving its
// status, content type, body, and headers as-is.
type Response struct {
	StatusCode  int
	ContentType string
	Body        []byte
	Header      http.Header
}

// SetHeader lazily allocates Header and sets key to value, so callers
// (CORS application, custom middleware) do not need to nil-check before
// every mutation.
func (r *Response) SetHeader(key, value string) {
	if r.Header == nil {
		r.Header = make(http.Header)
	}
	r.Header.Set(key, value)
}

// Shape dispatches on the runtime kind of value and produces the
// (status, content-type, body)
// triple the executor writes to the wire. defaultStatus is used unless
// value itself (an HttpException or a pre-built Response) carries its own
// status. stringContentType lets a deployment opt into text/plain instead
// of the spec-mandated text/html default for scalar returns.
func Shape(value any, defaultStatus int, stringContentType string) (*Response, error) {
	if defaultStatus == 0 {
		defaultStatus = 200
	}
	if stringContentType == "" {
		stringContentType = ContentTypeHTML
	}

	switch v := value.(type) {
	case *Response:
		return v, nil

	case *HttpException:
		body, err := json.Marshal(v.Body())
		if err != nil {
			return nil, err
		}
		return &Response{StatusCode: v.StatusCode, ContentType: ContentTypeJSON, Body: body}, nil

	case nil:
		return &Response{StatusCode: defaultStatus, ContentType: stringContentType, Body: nil}, nil

	case string:
		return &Response{StatusCode: defaultStatus, ContentType: stringContentType, Body: []byte(v)}, nil

	case []byte:
		return &Response{StatusCode: defaultStatus, ContentType: "", Body: v}, nil

	case bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return &Response{StatusCode: defaultStatus, ContentType: stringContentType, Body: []byte(fmt.Sprint(v))}, nil

	default:
		body, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		return &Response{StatusCode: defaultStatus, ContentType: ContentTypeJSON, Body: body}, nil
	}
}
