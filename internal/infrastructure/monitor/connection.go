package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Probe checks a single dependency.
type Probe struct {
	Name    string
	Timeout time.Duration
	Check   func(ctx context.Context) error
}

// Monitor probes its dependencies on a cron schedule and caches the result.
type Monitor struct {
	probes []Probe
	cron   *cron.Cron
	logger *zap.Logger

	mu     sync.RWMutex
	status Status
}

func New(interval time.Duration, logger *zap.Logger, probes ...Probe) *Monitor {
	if interval < time.Second {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Monitor{
		probes: probes,
		cron:   cron.New(cron.WithSeconds()),
		logger: logger,
		status: Status{Services: map[string]bool{}},
	}
	schedule := fmt.Sprintf("@every %ds", int(interval.Seconds()))
	if _, err := m.cron.AddFunc(schedule, m.Refresh); err != nil {
		logger.Error("failed to schedule health probes", zap.Error(err))
	}
	return m
}

// Start runs one probe round synchronously, then starts the schedule.
func (m *Monitor) Start() {
	m.Refresh()
	m.cron.Start()
}

// Stop halts the schedule and waits for a running round or ctx.
func (m *Monitor) Stop(ctx context.Context) {
	stopCtx := m.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
}

// IsOnline reports whether every probe passed in the last round.
func (m *Monitor) IsOnline() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.status.Services) >= len(m.probes) && len(m.status.Down()) == 0
}

func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status.clone()
}

// Refresh runs every probe once.
func (m *Monitor) Refresh() {
	services := make(map[string]bool, len(m.probes))
	for _, p := range m.probes {
		services[p.Name] = m.run(p)
	}

	m.mu.Lock()
	m.status = Status{Services: services, LastCheck: time.Now().UTC()}
	m.mu.Unlock()
}

func (m *Monitor) run(p Probe) bool {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := p.Check(ctx); err != nil {
		m.logger.Warn("health probe failed", zap.String("service", p.Name), zap.Error(err))
		return false
	}
	return true
}
