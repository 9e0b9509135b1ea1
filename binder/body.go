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

package binder

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/vmihailenco/msgpack/v5"
	"google.golang.org/protobuf/proto"
	"gopkg.in/yaml.v3"

	"github.com/nestgo/nestgo/kernel"
)

// DefaultBodyReader implements kernel.BodyReader, dispatching on the
// request's Content-Type: one decoding library per wire format, picked
// by media type.
type DefaultBodyReader struct{}

// NewDefaultBodyReader constructs a DefaultBodyReader.
func NewDefaultBodyReader() *DefaultBodyReader { return &DefaultBodyReader{} }

// Read consumes r.Body once, returning the raw bytes alongside the
// unmarshaled target (or target itself, populated in place). A nil
// target means the caller only wants the raw bytes.
func (b *DefaultBodyReader) Read(r *http.Request, target any) (any, []byte, error) {
	if r.Body == nil || r.Body == http.NoBody {
		return target, nil, nil
	}
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, nil, err
	}
	if target == nil || len(raw) == 0 {
		return target, raw, nil
	}

	switch mediaType(r.Header.Get("Content-Type")) {
	case "", "application/json":
		err = json.Unmarshal(raw, target)
	case "application/yaml", "application/x-yaml", "text/yaml":
		err = yaml.Unmarshal(raw, target)
	case "application/toml", "application/x-toml":
		err = toml.Unmarshal(raw, target)
	case "application/msgpack", "application/x-msgpack":
		err = msgpack.Unmarshal(raw, target)
	case "application/protobuf", "application/x-protobuf", "application/vnd.google.protobuf":
		msg, ok := target.(proto.Message)
		if !ok {
			return nil, raw, &UnsupportedContentTypeError{ContentType: "application/x-protobuf"}
		}
		err = proto.Unmarshal(raw, msg)
	default:
		return nil, raw, &UnsupportedContentTypeError{ContentType: r.Header.Get("Content-Type")}
	}
	if err != nil {
		return nil, raw, kernel.NewHttpException(http.StatusBadRequest, map[string]any{
			"message": "malformed request body: " + err.Error(),
		})
	}
	return target, raw, nil
}

func mediaType(contentType string) string {
	if idx := strings.IndexByte(contentType, ';'); idx != -1 {
		contentType = contentType[:idx]
	}
	return strings.TrimSpace(strings.ToLower(contentType))
}

// UnsupportedContentTypeError is returned when the request's Content-Type
// has no registered decoder, or declares protobuf against a target that
// does not implement proto.Message.
type UnsupportedContentTypeError struct {
	ContentType string
}

func (e *UnsupportedContentTypeError) Error() string {
	return "binder: unsupported content type " + e.ContentType
}
