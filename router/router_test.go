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

package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddAndFindStaticRoute(t *testing.T) {
	r := New()
	require.NoError(t, r.Add("GET", "/health", "health-store", false))

	res, ok := r.Find("GET", "/health")
	require.True(t, ok)
	assert.Equal(t, "health-store", res.Store)
	assert.Equal(t, 0, res.Params.Len())
}

func TestFindMissReturnsFalseNotError(t *testing.T) {
	r := New()
	require.NoError(t, r.Add("GET", "/health", "store", false))

	_, ok := r.Find("GET", "/nope")
	assert.False(t, ok)

	_, ok = r.Find("POST", "/health")
	assert.False(t, ok)
}

func TestParamExtraction(t *testing.T) {
	r := New()
	require.NoError(t, r.Add("GET", "/courses/:id", "course-by-id", false))

	res, ok := r.Find("GET", "/courses/cs101")
	require.True(t, ok)
	assert.Equal(t, "course-by-id", res.Store)
	v, found := res.Params.Get("id")
	require.True(t, found)
	assert.Equal(t, "cs101", v)
}

func TestSiblingParamNamesCoexist(t *testing.T) {
	r := New()
	require.NoError(t, r.Add("GET", "/courses/:id", "by-id", false))
	require.NoError(t, r.Add("GET", "/courses/:courseId/stats", "stats", false))

	res1, ok := r.Find("GET", "/courses/cs101")
	require.True(t, ok)
	assert.Equal(t, "by-id", res1.Store)
	v, _ := res1.Params.Get("id")
	assert.Equal(t, "cs101", v)

	res2, ok := r.Find("GET", "/courses/cs101/stats")
	require.True(t, ok)
	assert.Equal(t, "stats", res2.Store)
	v2, found := res2.Params.Get("courseId")
	require.True(t, found)
	assert.Equal(t, "cs101", v2)
}

func TestWildcardCapturesRemainder(t *testing.T) {
	r := New()
	require.NoError(t, r.Add("GET", "/assets/*", "assets", false))

	res, ok := r.Find("GET", "/assets/css/app.css")
	require.True(t, ok)
	v, found := res.Params.Get("*")
	require.True(t, found)
	assert.Equal(t, "css/app.css", v)

	// Zero-segment capture: the empty remainder still matches.
	res, ok = r.Find("GET", "/assets/")
	require.True(t, ok)
	v, found = res.Params.Get("*")
	require.True(t, found)
	assert.Equal(t, "", v)
}

func TestDuplicateRouteRejectedWithoutOverwrite(t *testing.T) {
	r := New()
	require.NoError(t, r.Add("GET", "/users/:id", "v1", false))
	err := r.Add("GET", "/users/:id", "v2", false)
	require.Error(t, err)
	var dup *DuplicateRoute
	assert.ErrorAs(t, err, &dup)
}

func TestParamNameConflictOnStructurallyIdenticalPath(t *testing.T) {
	r := New()
	require.NoError(t, r.Add("GET", "/users/:id", "v1", false))
	err := r.Add("GET", "/users/:userId", "v2", false)
	require.Error(t, err)
	var conflict *ParamNameConflict
	assert.ErrorAs(t, err, &conflict)
}

func TestUpdateStoreSwapsInPlaceAndInvalidatesCache(t *testing.T) {
	r := New()
	require.NoError(t, r.Add("GET", "/widgets", "raw", false))

	res, ok := r.Find("GET", "/widgets") // warms the cache
	require.True(t, ok)
	assert.Equal(t, "raw", res.Store)

	ok = r.UpdateStore("GET", "/widgets", "raw", "compiled")
	require.True(t, ok)

	res, ok = r.Find("GET", "/widgets")
	require.True(t, ok)
	assert.Equal(t, "compiled", res.Store)
}

func TestUpdateStoreFailsWhenOldDoesNotMatch(t *testing.T) {
	r := New()
	require.NoError(t, r.Add("GET", "/widgets", "raw", false))
	ok := r.UpdateStore("GET", "/widgets", "not-the-current-store", "compiled")
	assert.False(t, ok)
}

func TestLiteralPrefixSplitting(t *testing.T) {
	r := New()
	require.NoError(t, r.Add("GET", "/app", "app", false))
	require.NoError(t, r.Add("GET", "/apple", "apple", false))
	require.NoError(t, r.Add("GET", "/application/status", "status", false))

	res, ok := r.Find("GET", "/app")
	require.True(t, ok)
	assert.Equal(t, "app", res.Store)

	res, ok = r.Find("GET", "/apple")
	require.True(t, ok)
	assert.Equal(t, "apple", res.Store)

	res, ok = r.Find("GET", "/application/status")
	require.True(t, ok)
	assert.Equal(t, "status", res.Store)

	_, ok = r.Find("GET", "/app2")
	assert.False(t, ok)
}

func TestCanonicalCollapsesParamNames(t *testing.T) {
	assert.Equal(t, "/courses/:param/stats", Canonical("/courses/:courseId/stats"))
	assert.Equal(t, "/health", Canonical("/health"))
}
