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

package obstrace

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// recordingExporter is an in-memory sdktrace.SpanExporter used to make span
// outcomes observable without a real collector.
type recordingExporter struct {
	mu    sync.Mutex
	spans []sdktrace.ReadOnlySpan
}

func (e *recordingExporter) ExportSpans(ctx context.Context, spans []sdktrace.ReadOnlySpan) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.spans = append(e.spans, spans...)
	return nil
}

func (e *recordingExporter) Shutdown(ctx context.Context) error { return nil }

func (e *recordingExporter) all() []sdktrace.ReadOnlySpan {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]sdktrace.ReadOnlySpan(nil), e.spans...)
}

func TestStartRequestRecordsSuccessfulSpan(t *testing.T) {
	exp := &recordingExporter{}
	tr, err := New(context.Background(), WithServiceName("svc"), WithExporter(exp))
	require.NoError(t, err)

	_, end := tr.StartRequest(context.Background(), http.MethodGet, "/courses/:id")
	end(http.StatusOK, nil)

	require.NoError(t, tr.Shutdown(context.Background()))

	spans := exp.all()
	require.Len(t, spans, 1)
	assert.Equal(t, "GET /courses/:id", spans[0].Name())
	assert.Equal(t, codes.Unset, spans[0].Status().Code)
}

func TestStartRequestRecordsErrorSpan(t *testing.T) {
	exp := &recordingExporter{}
	tr, err := New(context.Background(), WithExporter(exp))
	require.NoError(t, err)

	_, end := tr.StartRequest(context.Background(), http.MethodPost, "/courses")
	end(http.StatusInternalServerError, errors.New("boom"))

	require.NoError(t, tr.Shutdown(context.Background()))

	spans := exp.all()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "boom", spans[0].Status().Description)
}

func TestStartRequestMarksServerErrorStatusWithoutExplicitErr(t *testing.T) {
	exp := &recordingExporter{}
	tr, err := New(context.Background(), WithExporter(exp))
	require.NoError(t, err)

	_, end := tr.StartRequest(context.Background(), http.MethodGet, "/fail")
	end(http.StatusInternalServerError, nil)

	require.NoError(t, tr.Shutdown(context.Background()))

	spans := exp.all()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
}

func TestNewDefaultsToStdoutExporterWithoutError(t *testing.T) {
	tr, err := New(context.Background())
	require.NoError(t, err)
	require.NotNil(t, tr)
	assert.NoError(t, tr.Shutdown(context.Background()))
}
