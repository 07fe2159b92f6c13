// Activestreams - Unified Now Playing for Plex, Emby, and Jellyfin
// Copyright 2026 gthrift
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gthrift/activestreams-unraid

package fetch

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/gthrift/activestreams-unraid/internal/logging"
	"github.com/gthrift/activestreams-unraid/internal/metrics"
	"github.com/gthrift/activestreams-unraid/internal/models"
)

// maxResponseBytes caps session payload reads. Session lists are small;
// anything larger is a misbehaving server.
const maxResponseBytes = 8 << 20

// Config tunes the coordinator.
type Config struct {
	// ConnectTimeout bounds TCP connect and TLS handshake (default 5s).
	ConnectTimeout time.Duration

	// RequestTimeout bounds one whole request (default 10s).
	RequestTimeout time.Duration

	// BreakerEnabled adds a per-server circuit breaker: while open, the
	// server's slot degrades to a FetchError without a request.
	BreakerEnabled bool
}

// Coordinator runs fetch cycles: one concurrent HTTP GET per configured
// server, joined before the FetchResult is produced. A failing or slow
// server degrades to its own FetchError and never blocks the others.
//
// Results are collected into indexed slots so ordering follows the registry
// snapshot deterministically, not completion time, and concurrent writers
// never share a slot.
type Coordinator struct {
	cfg Config

	// verifyClient and insecureClient are shared across servers; the
	// insecure one skips certificate and hostname checks for servers
	// that opted out of TLS verification.
	verifyClient   *http.Client
	insecureClient *http.Client

	mu       sync.Mutex
	breakers map[string]*serverBreaker
}

// NewCoordinator builds a Coordinator, applying the 5s/10s defaults for
// unset timeouts.
func NewCoordinator(cfg Config) *Coordinator {
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 5 * time.Second
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 10 * time.Second
	}

	return &Coordinator{
		cfg:            cfg,
		verifyClient:   newHTTPClient(cfg, false),
		insecureClient: newHTTPClient(cfg, true),
		breakers:       make(map[string]*serverBreaker),
	}
}

func newHTTPClient(cfg Config, insecureSkipVerify bool) *http.Client {
	return &http.Client{
		Timeout: cfg.RequestTimeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout: cfg.ConnectTimeout,
			}).DialContext,
			TLSHandshakeTimeout: cfg.ConnectTimeout,
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: insecureSkipVerify, //nolint:gosec // per-server opt-in for self-signed servers
			},
			MaxIdleConnsPerHost: 2,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

// Fetch runs one cycle over the given registry snapshot. All requests are
// dispatched in parallel and joined; wall clock is roughly the slowest
// single server, bounded by RequestTimeout. The caller's context supplies
// logging values only: once dispatched, requests run to completion or
// per-request timeout regardless of caller cancellation.
func (c *Coordinator) Fetch(ctx context.Context, servers []models.ServerDescriptor, opts Options) models.FetchResult {
	streamSlots := make([][]models.Stream, len(servers))
	errorSlots := make([]*models.FetchError, len(servers))

	var wg sync.WaitGroup
	for i := range servers {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			streamSlots[idx], errorSlots[idx] = c.fetchOne(ctx, &servers[idx], opts)
		}(i)
	}
	wg.Wait()

	result := models.FetchResult{
		Streams: make([]models.Stream, 0),
		Errors:  make([]models.FetchError, 0),
	}
	for i := range servers {
		result.Streams = append(result.Streams, streamSlots[i]...)
		if errorSlots[i] != nil {
			result.Errors = append(result.Errors, *errorSlots[i])
		}
		updateStreamGauges(&servers[i], streamSlots[i])
	}

	metrics.FetchCycles.Inc()
	return result
}

// fetchOne fetches and normalizes a single server. All failure modes
// degrade to a FetchError for this server only.
func (c *Coordinator) fetchOne(ctx context.Context, server *models.ServerDescriptor, opts Options) ([]models.Stream, *models.FetchError) {
	adapter, ok := ForType(server.Type)
	if !ok {
		metrics.ObserveFetch(string(server.Type), 0, "unknown_type")
		return nil, &models.FetchError{ServerName: server.Name, Message: "Unknown server type"}
	}

	start := time.Now()
	streams, reason, err := c.execute(ctx, adapter, server, opts)
	metrics.ObserveFetch(string(server.Type), time.Since(start), reason)

	if err != nil {
		logger := logging.Ctx(ctx)
		logger.Warn().
			Str("server", server.Name).
			Str("type", string(server.Type)).
			Str("reason", reason).
			Err(errors.New(scrubCredential(err.Error(), server.Credential))).
			Msg("server fetch failed")
		return nil, &models.FetchError{
			ServerName: server.Name,
			Message:    scrubCredential(err.Error(), server.Credential),
		}
	}

	return streams, nil
}

// execute performs the request/normalize pair, optionally through the
// server's circuit breaker. The reason tags the failure class for metrics;
// it is empty on success.
func (c *Coordinator) execute(ctx context.Context, adapter Adapter, server *models.ServerDescriptor, opts Options) (streams []models.Stream, reason string, err error) {
	do := func() ([]models.Stream, error) {
		var innerErr error
		streams, reason, innerErr = c.doFetch(ctx, adapter, server, opts)
		return streams, innerErr
	}

	if !c.cfg.BreakerEnabled {
		streams, err = do()
		return streams, reason, err
	}

	streams, err = c.breakerFor(server.Name).Execute(do)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, "breaker_open", errors.New("request skipped: too many recent failures")
	}
	return streams, reason, err
}

func (c *Coordinator) doFetch(ctx context.Context, adapter Adapter, server *models.ServerDescriptor, opts Options) ([]models.Stream, string, error) {
	// Detach from caller cancellation: a dispatched request runs to
	// completion or its own timeout, never aborted by siblings or caller.
	reqCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.cfg.RequestTimeout)
	defer cancel()

	req, err := adapter.BuildRequest(reqCtx, server)
	if err != nil {
		return nil, "transport", err
	}

	resp, err := c.clientFor(server).Do(req)
	if err != nil {
		return nil, "transport", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, "status", fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, "transport", fmt.Errorf("read response: %w", err)
	}

	streams, err := adapter.Normalize(server, body, opts)
	if err != nil {
		return nil, "parse", fmt.Errorf("parse response: %w", err)
	}
	return streams, "", nil
}

func (c *Coordinator) clientFor(server *models.ServerDescriptor) *http.Client {
	if server.UseTLS && !server.VerifyTLS {
		return c.insecureClient
	}
	return c.verifyClient
}

func (c *Coordinator) breakerFor(name string) *serverBreaker {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.breakers[name]
	if !ok {
		b = newServerBreaker(name)
		c.breakers[name] = b
	}
	return b
}

func updateStreamGauges(server *models.ServerDescriptor, streams []models.Stream) {
	transcoding := 0
	for i := range streams {
		if streams[i].IsTranscoding {
			transcoding++
		}
	}
	metrics.ActiveStreams.WithLabelValues(server.Name, string(server.Type)).Set(float64(len(streams)))
	metrics.TranscodingStreams.WithLabelValues(server.Name, string(server.Type)).Set(float64(transcoding))
}

// scrubCredential removes a server credential from error text. Transport
// errors embed the full request URL, which carries the token as a query
// parameter for Plex and Emby.
func scrubCredential(msg, credential string) string {
	if credential == "" {
		return msg
	}
	return strings.ReplaceAll(msg, credential, "[redacted]")
}
