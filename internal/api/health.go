package api

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/MJE43/pf-casino-engine/internal/seeds"
)

const healthPingTimeout = 2 * time.Second

// HealthStatus orders from best to worst.
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusDegraded  HealthStatus = "degraded"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

func (h HealthStatus) rank() int {
	switch h {
	case HealthStatusDegraded:
		return 1
	case HealthStatusUnhealthy:
		return 2
	}
	return 0
}

type HealthCheckResponse struct {
	Status        HealthStatus           `json:"status"`
	Timestamp     string                 `json:"timestamp"`
	EngineVersion string                 `json:"engine_version"`
	Uptime        string                 `json:"uptime"`
	Checks        map[string]HealthCheck `json:"checks"`
	Runtime       RuntimeStats           `json:"runtime"`
	RequestID     string                 `json:"request_id,omitempty"`
}

type HealthCheck struct {
	Status   HealthStatus `json:"status"`
	Message  string       `json:"message,omitempty"`
	Duration string       `json:"duration"`
}

type RuntimeStats struct {
	GoVersion      string `json:"go_version"`
	Goroutines     int    `json:"goroutines"`
	HeapBytes      uint64 `json:"heap_bytes"`
	ActiveSessions int    `json:"active_sessions"`
}

// probe inspects one dependency and reports its status.
type probe func(ctx context.Context) (HealthStatus, string)

func (s *Server) probes() map[string]probe {
	return map[string]probe{
		"database": s.probeDatabase,
		"seeds":    s.probeSeeds,
	}
}

func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	resp := HealthCheckResponse{
		Status:        HealthStatusHealthy,
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		EngineVersion: EngineVersion,
		Uptime:        time.Since(s.startTime).Round(time.Second).String(),
		Checks:        make(map[string]HealthCheck),
		Runtime:       s.runtimeStats(),
		RequestID:     middleware.GetReqID(r.Context()),
	}
	for name, p := range s.probes() {
		start := time.Now()
		status, msg := p(r.Context())
		resp.Checks[name] = HealthCheck{Status: status, Message: msg, Duration: time.Since(start).String()}
		if status.rank() > resp.Status.rank() {
			resp.Status = status
		}
	}

	code := http.StatusOK
	if resp.Status == HealthStatusUnhealthy {
		code = http.StatusServiceUnavailable
	}
	s.writeJSON(w, code, resp)
}

func (s *Server) handleLiveness(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"alive":      true,
		"uptime":     time.Since(s.startTime).Round(time.Second).String(),
		"request_id": middleware.GetReqID(r.Context()),
	})
}

func (s *Server) probeDatabase(ctx context.Context) (HealthStatus, string) {
	ctx, cancel := context.WithTimeout(ctx, healthPingTimeout)
	defer cancel()
	if err := s.players.Ping(ctx); err != nil {
		return HealthStatusUnhealthy, "ping: " + err.Error()
	}
	return HealthStatusHealthy, ""
}

// probeSeeds degrades when rotation has fallen behind the clock.
func (s *Server) probeSeeds(context.Context) (HealthStatus, string) {
	cur := s.seeds.Current()
	if cur.IsZero() {
		return HealthStatusUnhealthy, "no active server seed"
	}
	if now := seeds.EpochAt(time.Now(), s.seeds.Period()); cur.Epoch < now {
		return HealthStatusDegraded, fmt.Sprintf("epoch %d active, clock is at %d", cur.Epoch, now)
	}
	return HealthStatusHealthy, fmt.Sprintf("epoch %d active", cur.Epoch)
}

func (s *Server) runtimeStats() RuntimeStats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return RuntimeStats{
		GoVersion:      runtime.Version(),
		Goroutines:     runtime.NumGoroutine(),
		HeapBytes:      m.HeapAlloc,
		ActiveSessions: s.casino.Registry().Len(),
	}
}
