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

// Package obslog wraps log/slog: a small Logger built from functional
// options, defaulting to a
// no-op handler so an unconfigured application never nil-derefs when the
// executor logs a 500 or a failed lifecycle hook.
package obslog

import (
	"io"
	"log/slog"
	"os"
)

// Logger wraps an *slog.Logger with service/environment attributes
// attached to every entry.
type Logger struct {
	serviceName string
	environment string
	level       slog.Level
	json        bool
	output      io.Writer

	logger *slog.Logger
}

// Option configures a Logger at construction time.
type Option func(*Logger)

// WithServiceName attaches service_name to every log entry.
func WithServiceName(name string) Option {
	return func(l *Logger) { l.serviceName = name }
}

// WithEnvironment attaches environment to every log entry.
func WithEnvironment(env string) Option {
	return func(l *Logger) { l.environment = env }
}

// WithJSONHandler selects slog.NewJSONHandler (default is text).
func WithJSONHandler() Option {
	return func(l *Logger) { l.json = true }
}

// WithLevel sets the minimum log level.
func WithLevel(level slog.Level) Option {
	return func(l *Logger) { l.level = level }
}

// WithOutput sets the output writer; defaults to os.Stderr.
func WithOutput(w io.Writer) Option {
	return func(l *Logger) { l.output = w }
}

// New builds a Logger from options.
func New(opts ...Option) *Logger {
	l := &Logger{output: os.Stderr}
	for _, opt := range opts {
		opt(l)
	}

	handlerOpts := &slog.HandlerOptions{Level: l.level}
	var handler slog.Handler
	if l.json {
		handler = slog.NewJSONHandler(l.output, handlerOpts)
	} else {
		handler = slog.NewTextHandler(l.output, handlerOpts)
	}

	logger := slog.New(handler)
	if l.serviceName != "" {
		logger = logger.With("service_name", l.serviceName)
	}
	if l.environment != "" {
		logger = logger.With("environment", l.environment)
	}
	l.logger = logger
	return l
}

// NoOp returns a Logger that discards everything, so nestgo.New never
// requires a configured logger.
func NoOp() *Logger {
	return &Logger{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

// Logger exposes the underlying *slog.Logger.
func (l *Logger) Logger() *slog.Logger {
	if l.logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return l.logger
}
