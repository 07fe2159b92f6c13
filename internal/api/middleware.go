// Activestreams - Unified Now Playing for Plex, Emby, and Jellyfin
// Copyright 2026 gthrift
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gthrift/activestreams-unraid

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/gthrift/activestreams-unraid/internal/logging"
	"github.com/gthrift/activestreams-unraid/internal/metrics"
)

// RequestID generates a unique ID for each request, honoring an existing
// X-Request-ID from an upstream proxy, and threads it through the response
// header and the logging context.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		w.Header().Set("X-Request-ID", requestID)
		ctx := logging.ContextWithRequestID(r.Context(), requestID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// statusRecorder captures the response status for metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

// durationMiddleware records request latency and status per path.
func durationMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		metrics.APIRequestDuration.
			WithLabelValues(r.URL.Path, strconv.Itoa(rec.status)).
			Observe(time.Since(start).Seconds())
	})
}
