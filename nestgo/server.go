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

package nestgo

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Default server timeouts.
const (
	DefaultReadTimeout       = 10 * time.Second
	DefaultWriteTimeout      = 10 * time.Second
	DefaultIdleTimeout       = 60 * time.Second
	DefaultReadHeaderTimeout = 2 * time.Second
	DefaultMaxHeaderBytes    = 1 << 20
	DefaultShutdownTimeout   = 30 * time.Second
)

type serverConfig struct {
	readTimeout       time.Duration
	writeTimeout      time.Duration
	idleTimeout       time.Duration
	readHeaderTimeout time.Duration
	maxHeaderBytes    int
	shutdownTimeout   time.Duration
}

func defaultServerConfig() serverConfig {
	return serverConfig{
		readTimeout:       DefaultReadTimeout,
		writeTimeout:      DefaultWriteTimeout,
		idleTimeout:       DefaultIdleTimeout,
		readHeaderTimeout: DefaultReadHeaderTimeout,
		maxHeaderBytes:    DefaultMaxHeaderBytes,
		shutdownTimeout:   DefaultShutdownTimeout,
	}
}

// WithReadTimeout overrides the server's read timeout.
func WithReadTimeout(d time.Duration) Option {
	return func(a *App) { a.server.readTimeout = d }
}

// WithWriteTimeout overrides the server's write timeout.
func WithWriteTimeout(d time.Duration) Option {
	return func(a *App) { a.server.writeTimeout = d }
}

// WithShutdownTimeout overrides how long Start waits for in-flight
// requests to drain during graceful shutdown.
func WithShutdownTimeout(d time.Duration) Option {
	return func(a *App) { a.server.shutdownTimeout = d }
}

// Start runs Compile (if it has not already run), then serves HTTP on
// addr until ctx is canceled, at which point it drains in-flight
// requests and shuts down gracefully: a goroutine serving, a ready
// signal, a select on the server's error channel vs ctx.Done(), then a
// fresh context.WithTimeout for the shutdown sequence (the original ctx is
// already canceled by the time shutdown starts, so it cannot bound how
// long shutdown itself may take).
//
// Lifecycle ordering: onApplicationBoot failures are
// logged and do not block startup; onApplicationInit failures abort it;
// onApplicationShutdown runs before the server stops accepting and drains
// in-flight requests, and its failures are logged but do not block the
// transition to EXITED.
func (a *App) Start(ctx context.Context, addr string) error {
	if a.exec == nil {
		if err := a.Compile(); err != nil {
			return err
		}
	}

	logger := a.Logger()
	a.dispatcher.RunBoot(ctx, logger)
	if err := a.dispatcher.RunInit(ctx); err != nil {
		return fmt.Errorf("nestgo: init failed: %w", err)
	}

	server := &http.Server{
		Addr:              addr,
		Handler:           a.exec,
		ReadTimeout:       a.server.readTimeout,
		WriteTimeout:      a.server.writeTimeout,
		IdleTimeout:       a.server.idleTimeout,
		ReadHeaderTimeout: a.server.readHeaderTimeout,
		MaxHeaderBytes:    a.server.maxHeaderBytes,
	}

	serverErr := make(chan error, 1)
	serverReady := make(chan struct{})
	go func() {
		close(serverReady)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- fmt.Errorf("nestgo: server failed: %w", err)
		}
	}()

	<-serverReady
	logger.Info("server starting", "address", addr)

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		logger.Info("server shutting down", "reason", ctx.Err())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.server.shutdownTimeout)
	defer cancel()

	a.dispatcher.RunShutdown(shutdownCtx, logger)

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("nestgo: forced shutdown: %w", err)
	}

	if a.tracer != nil {
		if err := a.tracer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("tracer shutdown failed", "error", err)
		}
	}

	logger.Info("server exited")
	return nil
}
