package rate

import (
	"context"
	"sync"

	xrate "golang.org/x/time/rate"
)

// Config defines rate limiting parameters for one external service.
// RequestsPerSecond <= 0 disables limiting.
type Config struct {
	RequestsPerSecond float64
	Burst             int
}

func (c Config) limiter() *xrate.Limiter {
	if c.RequestsPerSecond <= 0 {
		return xrate.NewLimiter(xrate.Inf, 0)
	}
	burst := c.Burst
	if burst < 1 {
		burst = 1
	}
	return xrate.NewLimiter(xrate.Limit(c.RequestsPerSecond), burst)
}

// Manager holds one limiter per service key. Keys without an explicit
// configuration use the defaults.
type Manager struct {
	mu       sync.RWMutex
	limiters map[string]*xrate.Limiter
	configs  map[string]Config
	defaults Config
}

func NewManager(defaults Config) *Manager {
	return &Manager{
		limiters: make(map[string]*xrate.Limiter),
		configs:  make(map[string]Config),
		defaults: defaults,
	}
}

// Configure sets the limits for key, replacing any limiter already created.
func (m *Manager) Configure(key string, cfg Config) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.configs[key] = cfg
	delete(m.limiters, key)
}

func (m *Manager) GetLimiter(key string) *xrate.Limiter {
	m.mu.RLock()
	if lim, ok := m.limiters[key]; ok {
		m.mu.RUnlock()
		return lim
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()
	if lim, ok := m.limiters[key]; ok {
		return lim
	}
	cfg, ok := m.configs[key]
	if !ok {
		cfg = m.defaults
	}
	lim := cfg.limiter()
	m.limiters[key] = lim
	return lim
}

// Wait blocks until key may send a request or ctx is done.
func (m *Manager) Wait(ctx context.Context, key string) error {
	return m.GetLimiter(key).Wait(ctx)
}
