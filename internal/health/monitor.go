package health

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/terra-clan/box-office/internal/sources"
)

// Status is the outcome of the last health check round
type Status struct {
	Healthy   bool              `json:"healthy"`
	Sources   map[string]string `json:"sources"`
	CheckedAt time.Time         `json:"checked_at"`
}

// Monitor periodically checks the registered data sources
type Monitor struct {
	registry *sources.Registry
	interval time.Duration
	timeout  time.Duration

	mu   sync.RWMutex
	last *Status
}

// NewMonitor creates a new health monitor
func NewMonitor(registry *sources.Registry, interval time.Duration) *Monitor {
	if interval <= 0 {
		interval = 30 * time.Second
	}

	return &Monitor{
		registry: registry,
		interval: interval,
		timeout:  5 * time.Second,
	}
}

// Start begins the health worker in a goroutine
func (m *Monitor) Start(ctx context.Context) {
	go m.run(ctx)
}

// run is the main loop for the health worker
func (m *Monitor) run(ctx context.Context) {
	slog.Info("health monitor started", "interval", m.interval)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	// Run immediately on start
	m.Check(ctx)

	for {
		select {
		case <-ctx.Done():
			slog.Info("health monitor stopped")
			return
		case <-ticker.C:
			m.Check(ctx)
		}
	}
}

// Check runs one round of source health checks and records the result
func (m *Monitor) Check(ctx context.Context) Status {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	status := Status{
		Healthy:   true,
		Sources:   make(map[string]string),
		CheckedAt: time.Now().UTC(),
	}

	for name, err := range m.registry.HealthCheckAll(ctx) {
		if err != nil {
			status.Healthy = false
			status.Sources[name] = err.Error()
			slog.Warn("source health check failed", "source", name, "error", err)
			continue
		}
		status.Sources[name] = "ok"
	}

	m.mu.Lock()
	prev := m.last
	m.last = &status
	m.mu.Unlock()

	if prev != nil && prev.Healthy != status.Healthy {
		slog.Info("source health changed", "healthy", status.Healthy)
	}
	return status
}

// Status returns the last recorded result, checking now if there is none
func (m *Monitor) Status(ctx context.Context) Status {
	m.mu.RLock()
	last := m.last
	m.mu.RUnlock()

	if last != nil {
		return *last
	}
	return m.Check(ctx)
}
