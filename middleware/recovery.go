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

package middleware

import (
	"log/slog"
	"net/http"

	"github.com/nestgo/nestgo/kernel"
)

// Recovery wraps the rest of the chain, recovers a panic, logs it, and
// turns it into a 500 HttpException rather than crashing the server:
// the unclassified-error-to-500 rule, extended to cover panics as well
// as returned errors.
func Recovery(logger *slog.Logger) Func {
	return func(ctx *kernel.Context, next Next) (result any, err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered", "panic", r, "path", ctx.Pathname, "tracking_id", ctx.TrackingID)
				result = kernel.NewHttpException(http.StatusInternalServerError, "internal server error")
				err = nil
			}
		}()
		return next(ctx)
	}
}
