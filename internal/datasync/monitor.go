package datasync

import (
	"context"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/avast/retry-go"
	"golang.org/x/time/rate"

	"github.com/at-ishikawa/studytrack/internal/store"
)

// NetworkSignal is the runtime's view of whether the device has a network.
type NetworkSignal interface {
	Online(ctx context.Context) bool
}

// ResolverSignal reports online when Host resolves. An empty Host is always online.
type ResolverSignal struct {
	Host     string
	Resolver *net.Resolver
}

func (s ResolverSignal) Online(ctx context.Context) bool {
	if s.Host == "" {
		return true
	}
	resolver := s.Resolver
	if resolver == nil {
		resolver = net.DefaultResolver
	}
	_, err := resolver.LookupHost(ctx, s.Host)
	return err == nil
}

type connectivityTarget interface {
	SetOnline(online bool) bool
	PendingOperationsCount(ctx context.Context) (int, error)
	SyncAll(ctx context.Context) (*SyncResult, error)
}

type MonitorConfig struct {
	Interval   time.Duration
	Attempts   uint
	RetryDelay time.Duration
	// MinCheckInterval throttles on-demand checks.
	MinCheckInterval time.Duration
}

func DefaultMonitorConfig() MonitorConfig {
	return MonitorConfig{
		Interval:         30 * time.Second,
		Attempts:         3,
		RetryDelay:       200 * time.Millisecond,
		MinCheckInterval: time.Second,
	}
}

// Monitor combines the network signal with a liveness probe of the remote store
// and replays the queue when connectivity comes back.
type Monitor struct {
	signal  NetworkSignal
	remote  store.Pinger
	target  connectivityTarget
	config  MonitorConfig
	limiter *rate.Limiter

	mu   sync.Mutex
	last bool
	// reached is set by the first probe that found the remote store reachable.
	reached bool
}

func NewMonitor(signal NetworkSignal, remote store.Pinger, target connectivityTarget, config MonitorConfig) *Monitor {
	defaults := DefaultMonitorConfig()
	if config.Interval <= 0 {
		config.Interval = defaults.Interval
	}
	if config.Attempts == 0 {
		config.Attempts = defaults.Attempts
	}
	if config.MinCheckInterval <= 0 {
		config.MinCheckInterval = defaults.MinCheckInterval
	}
	if signal == nil {
		signal = ResolverSignal{}
	}
	return &Monitor{
		signal:  signal,
		remote:  remote,
		target:  target,
		config:  config,
		limiter: rate.NewLimiter(rate.Every(config.MinCheckInterval), 1),
	}
}

// Check probes connectivity unless a check ran within MinCheckInterval,
// in which case the previous answer is returned.
func (m *Monitor) Check(ctx context.Context) (bool, error) {
	if !m.limiter.Allow() {
		m.mu.Lock()
		defer m.mu.Unlock()
		return m.last, nil
	}
	return m.probe(ctx)
}

// Run probes on every interval until ctx is done.
func (m *Monitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.config.Interval)
	defer ticker.Stop()

	for {
		if _, err := m.probe(ctx); err != nil {
			slog.Default().Warn("sync after reconnect failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// Probe reports whether the remote store is reachable and records it on the target,
// without replaying the queue.
func (m *Monitor) Probe(ctx context.Context) bool {
	online := m.reachable(ctx)
	m.target.SetOnline(online)
	return online
}

// probe records the connectivity and replays the queue when the target went online,
// or when the first reachable probe finds operations left by an earlier run.
func (m *Monitor) probe(ctx context.Context) (bool, error) {
	online := m.reachable(ctx)
	wentOnline := m.target.SetOnline(online)

	m.mu.Lock()
	first := online && !m.reached
	m.reached = m.reached || online
	m.mu.Unlock()

	if !wentOnline {
		if !first {
			return online, nil
		}
		pending, err := m.target.PendingOperationsCount(ctx)
		if err != nil {
			return online, err
		}
		if pending == 0 {
			return online, nil
		}
	}
	result, err := m.target.SyncAll(ctx)
	if err != nil {
		return online, err
	}
	slog.Default().Info("synchronized pending operations",
		"synced", result.Synced, "failed", result.Failed, "skipped", result.Skipped)
	return online, nil
}

func (m *Monitor) reachable(ctx context.Context) bool {
	online := m.signal.Online(ctx)
	if online {
		if err := retry.Do(
			func() error {
				return m.remote.Ping(ctx)
			},
			retry.Context(ctx),
			retry.Attempts(m.config.Attempts),
			retry.Delay(m.config.RetryDelay),
			retry.DelayType(retry.BackOffDelay),
			retry.LastErrorOnly(true),
		); err != nil {
			slog.Default().Debug("remote store is not reachable", "error", err)
			online = false
		}
	}

	m.mu.Lock()
	m.last = online
	m.mu.Unlock()
	return online
}
