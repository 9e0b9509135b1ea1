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

package obslog

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewAttachesServiceAndEnvironmentFields(t *testing.T) {
	var buf bytes.Buffer
	l := New(WithServiceName("nestgo-app"), WithEnvironment("test"), WithOutput(&buf), WithJSONHandler())
	l.Logger().Info("hello")

	out := buf.String()
	assert.Contains(t, out, `"service_name":"nestgo-app"`)
	assert.Contains(t, out, `"environment":"test"`)
	assert.Contains(t, out, `"msg":"hello"`)
}

func TestWithLevelFiltersBelowThreshold(t *testing.T) {
	var buf bytes.Buffer
	l := New(WithOutput(&buf), WithLevel(slog.LevelWarn))
	l.Logger().Info("should be filtered")
	l.Logger().Warn("should appear")

	out := buf.String()
	assert.False(t, strings.Contains(out, "should be filtered"))
	assert.True(t, strings.Contains(out, "should appear"))
}

func TestNoOpDiscardsOutput(t *testing.T) {
	l := NoOp()
	assert.NotNil(t, l.Logger())
	// NoOp must never panic even though no output writer was configured.
	l.Logger().Error("discarded", "key", "value")
}

func TestZeroValueLoggerFallsBackToDiscard(t *testing.T) {
	var l Logger
	assert.NotNil(t, l.Logger())
}
