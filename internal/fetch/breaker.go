// Activestreams - Unified Now Playing for Plex, Emby, and Jellyfin
// Copyright 2026 gthrift
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gthrift/activestreams-unraid

package fetch

import (
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/gthrift/activestreams-unraid/internal/logging"
	"github.com/gthrift/activestreams-unraid/internal/metrics"
	"github.com/gthrift/activestreams-unraid/internal/models"
)

// serverBreaker wraps one server's fetches with a circuit breaker. A wall
// of consecutive failures (server down, stale credentials) opens the
// circuit so subsequent cycles skip the dead server immediately instead of
// burning a full timeout on it; after the open interval one probe request
// is allowed through. This is failure isolation, not retry logic: within a
// cycle each server still gets at most one attempt.
type serverBreaker struct {
	cb *gobreaker.CircuitBreaker[[]models.Stream]
}

// breakerTrips is the consecutive-failure count that opens the circuit.
// With the default 10s refresh that tolerates ~50s of flapping before a
// server is benched.
const breakerTrips = 5

func newServerBreaker(name string) *serverBreaker {
	metrics.BreakerState.WithLabelValues(name).Set(0)

	cb := gobreaker.NewCircuitBreaker[[]models.Stream](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,               // one probe in half-open state
		Interval:    2 * time.Minute, // reset counts while closed
		Timeout:     time.Minute,     // open -> half-open after 1 minute

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerTrips
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().
				Str("server", name).
				Str("from", stateName(from)).
				Str("to", stateName(to)).
				Msg("circuit breaker state change")
			metrics.BreakerState.WithLabelValues(name).Set(stateValue(to))
		},
	})

	return &serverBreaker{cb: cb}
}

// Execute runs fn through the breaker.
func (b *serverBreaker) Execute(fn func() ([]models.Stream, error)) ([]models.Stream, error) {
	return b.cb.Execute(fn)
}

func stateName(s gobreaker.State) string {
	switch s {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
