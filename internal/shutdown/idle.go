// Package shutdown provides idle monitoring for scale-to-zero deployments.
package shutdown

import (
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// BackgroundWorkChecker returns true while background work is in progress.
// Used to hold off idle shutdown while notification sends are running.
type BackgroundWorkChecker func() bool

// IdleMonitor tracks request activity and signals when the server has been
// idle for a configurable duration, so hosting platforms can stop the
// machine between link visits.
type IdleMonitor struct {
	timeout             time.Duration
	logger              *slog.Logger
	activeRequests      int64
	lastActivity        time.Time
	mu                  sync.RWMutex
	shutdownChan        chan struct{}
	stopChan            chan struct{}
	excludePaths        []string
	backgroundWorkCheck BackgroundWorkChecker
}

// IdleMonitorConfig holds configuration for the idle monitor.
type IdleMonitorConfig struct {
	Timeout             time.Duration // how long to wait before considering idle
	Logger              *slog.Logger
	ExcludePaths        []string // URL paths that don't count as activity (e.g., probes)
	BackgroundWorkCheck BackgroundWorkChecker
}

// NewIdleMonitor creates a new idle monitor.
// If timeout is 0, the monitor is effectively disabled.
func NewIdleMonitor(cfg IdleMonitorConfig) *IdleMonitor {
	return &IdleMonitor{
		timeout:             cfg.Timeout,
		logger:              cfg.Logger,
		lastActivity:        time.Now(),
		shutdownChan:        make(chan struct{}),
		stopChan:            make(chan struct{}),
		excludePaths:        cfg.ExcludePaths,
		backgroundWorkCheck: cfg.BackgroundWorkCheck,
	}
}

// Start begins monitoring for idle periods.
func (m *IdleMonitor) Start() {
	if m.timeout <= 0 {
		m.logger.Debug("idle monitoring disabled (timeout=0)")
		return
	}

	m.logger.Info("idle monitoring started", "timeout", m.timeout, "exclude_paths", m.excludePaths)

	go m.run()
}

// Stop stops the idle monitor.
func (m *IdleMonitor) Stop() {
	if m.timeout <= 0 {
		return
	}
	close(m.stopChan)
}

// ShutdownChan returns a channel that is closed when idle timeout is reached.
func (m *IdleMonitor) ShutdownChan() <-chan struct{} {
	return m.shutdownChan
}

// Middleware returns an HTTP middleware that tracks request activity.
// Excluded paths (like health probes) do not count as activity.
func (m *IdleMonitor) Middleware(next http.Handler) http.Handler {
	if m.timeout <= 0 {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		excluded := false
		for _, excludePath := range m.excludePaths {
			if strings.HasPrefix(r.URL.Path, excludePath) {
				excluded = true
				break
			}
		}

		if !excluded {
			m.requestStart()
			defer m.requestEnd()
		}

		next.ServeHTTP(w, r)
	})
}

func (m *IdleMonitor) requestStart() {
	atomic.AddInt64(&m.activeRequests, 1)
	m.touch()
}

func (m *IdleMonitor) requestEnd() {
	atomic.AddInt64(&m.activeRequests, -1)
	m.touch()
}

func (m *IdleMonitor) touch() {
	m.mu.Lock()
	m.lastActivity = time.Now()
	m.mu.Unlock()
}

// run is the main monitoring loop.
func (m *IdleMonitor) run() {
	// Check more frequently than the timeout to be responsive
	checkInterval := m.timeout / 6
	if checkInterval < 5*time.Second {
		checkInterval = 5 * time.Second
	}
	if checkInterval > 30*time.Second {
		checkInterval = 30 * time.Second
	}

	ticker := time.NewTicker(checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stopChan:
			return
		case <-ticker.C:
			active := atomic.LoadInt64(&m.activeRequests)
			m.mu.RLock()
			idleTime := time.Since(m.lastActivity)
			m.mu.RUnlock()

			backgroundBusy := false
			if m.backgroundWorkCheck != nil {
				backgroundBusy = m.backgroundWorkCheck()
			}

			// Active requests or in-flight notifications reset the idle
			// timer so there is a full grace period after they finish.
			if active > 0 || backgroundBusy {
				m.touch()
				idleTime = 0
			}

			if active == 0 && !backgroundBusy && idleTime >= m.timeout {
				m.logger.Info("idle timeout reached, signaling graceful shutdown",
					"idle_time", idleTime,
					"timeout", m.timeout,
				)
				close(m.shutdownChan)
				return
			}

			m.logger.Debug("idle check",
				"idle_time", idleTime,
				"active_requests", active,
				"background_busy", backgroundBusy,
				"timeout", m.timeout,
			)
		}
	}
}
