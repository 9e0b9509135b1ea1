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

package hooks

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nestgo/nestgo/kernel"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestContext() *kernel.Context {
	r := httptest.NewRequest(http.MethodGet, "/x", nil)
	return kernel.NewContext(r, nil, nil)
}

func TestLifecycleHooksRunInPriorityOrderHighFirst(t *testing.T) {
	d := New()
	var order []string
	d.OnBoot(1, func(ctx context.Context) error { order = append(order, "low"); return nil })
	d.OnBoot(10, func(ctx context.Context) error { order = append(order, "high"); return nil })
	d.OnBoot(5, func(ctx context.Context) error { order = append(order, "mid"); return nil })

	d.RunBoot(context.Background(), discardLogger())
	assert.Equal(t, []string{"high", "mid", "low"}, order)
}

func TestBootFailureIsLoggedNotFatal(t *testing.T) {
	d := New()
	ran := false
	d.OnBoot(10, func(ctx context.Context) error { return errors.New("boom") })
	d.OnBoot(1, func(ctx context.Context) error { ran = true; return nil })

	d.RunBoot(context.Background(), discardLogger())
	assert.True(t, ran, "later boot hooks must still run after an earlier one fails")
}

func TestInitFailureAbortsStartup(t *testing.T) {
	d := New()
	ran := false
	d.OnInit(10, func(ctx context.Context) error { return errors.New("boom") })
	d.OnInit(1, func(ctx context.Context) error { ran = true; return nil })

	err := d.RunInit(context.Background())
	require.Error(t, err)
	assert.False(t, ran, "init failure must abort remaining hooks")
}

func TestOnRequestHooksRunOnlyWhenRegistered(t *testing.T) {
	d := New()
	assert.False(t, d.HasOnRequest())

	d.OnRequest(0, func(ctx *kernel.Context) error { return nil })
	assert.True(t, d.HasOnRequest())
}

func TestOnRequestFailurePropagates(t *testing.T) {
	d := New()
	d.OnRequest(0, func(ctx *kernel.Context) error { return errors.New("denied") })
	err := d.RunOnRequest(newTestContext())
	require.Error(t, err)
	assert.Equal(t, "denied", err.Error())
}

func TestOnResponseReceivesResult(t *testing.T) {
	d := New()
	var seen any
	d.OnResponse(0, func(ctx *kernel.Context, result any) error {
		seen = result
		return nil
	})
	require.NoError(t, d.RunOnResponse(newTestContext(), "the-result"))
	assert.Equal(t, "the-result", seen)
}
