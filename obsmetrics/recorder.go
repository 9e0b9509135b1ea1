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

// Package obsmetrics is the narrow metrics collaborator: request counts
// and latency histograms wrapping
// github.com/prometheus/client_golang. Metrics are an out-of-core
// concern: the executor calls Observe once per completed
// dispatch, and the /metrics endpoint itself is mounted as an ordinary
// route by the embedding application, never baked into the request
// executor.
package obsmetrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder records one counter and one histogram per (method, route,
// status) triple.
type Recorder struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

// Option configures a Recorder at construction time.
type Option func(*recorderConfig)

type recorderConfig struct {
	namespace string
	buckets   []float64
	registry  prometheus.Registerer
}

// WithNamespace prefixes every metric name ("<namespace>_http_requests_total").
func WithNamespace(ns string) Option {
	return func(c *recorderConfig) { c.namespace = ns }
}

// WithBuckets overrides the latency histogram's bucket boundaries.
func WithBuckets(buckets ...float64) Option {
	return func(c *recorderConfig) { c.buckets = buckets }
}

// WithRegisterer registers against a specific prometheus.Registerer
// instead of the default global registry, for test isolation.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(c *recorderConfig) { c.registry = reg }
}

// New builds a Recorder, registering its collectors.
func New(opts ...Option) *Recorder {
	cfg := &recorderConfig{buckets: prometheus.DefBuckets, registry: prometheus.DefaultRegisterer}
	for _, opt := range opts {
		opt(cfg)
	}

	factory := promauto.With(cfg.registry)

	return &Recorder{
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests handled by the request executor.",
		}, []string{"method", "route", "status"}),
		latency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: cfg.namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Request latency in seconds, labeled by method, route, and status.",
			Buckets:   cfg.buckets,
		}, []string{"method", "route", "status"}),
	}
}

// Observe records one completed request. route should already be the
// canonical path (router.Canonical) so captured parameter values never
// explode the label cardinality.
func (r *Recorder) Observe(method, route string, status int, duration time.Duration) {
	labels := prometheus.Labels{"method": method, "route": route, "status": strconv.Itoa(status)}
	r.requests.With(labels).Inc()
	r.latency.With(labels).Observe(duration.Seconds())
}

// Handler returns the promhttp handler an application mounts at a path
// of its choosing (e.g. "/metrics") as an ordinary route.
func (r *Recorder) Handler() http.Handler {
	return promhttp.Handler()
}
