package cache

import (
	"context"
	"sync"
	"time"
)

// Probe produces one fact for the store. Run executes off the foreground
// loop; its error is recorded as the value so failures are visible in the
// dashboard instead of silent.
type Probe struct {
	Key string
	TTL time.Duration
	Run func(ctx context.Context) (string, error)
}

// Manager drives the registered probes on a poll interval and publishes
// their results into the store. The foreground never waits on it.
type Manager struct {
	store  *Store
	poll   time.Duration
	probes []Probe

	mu       sync.Mutex
	running  bool
	lastTick time.Time
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewManager builds a manager over the store with the given poll interval.
func NewManager(store *Store, poll time.Duration, probes []Probe) *Manager {
	return &Manager{store: store, poll: poll, probes: probes}
}

// Start launches the poll loop. Starting an already-running manager is a
// no-op. The first sweep runs immediately so the dashboard is not blank
// for a full poll interval after launch.
func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.done = make(chan struct{})
	m.running = true
	go m.loop(ctx)
}

// Stop halts the poll loop and waits for any in-flight sweep to finish.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	cancel, done := m.cancel, m.done
	m.mu.Unlock()

	cancel()
	<-done

	m.mu.Lock()
	m.running = false
	m.mu.Unlock()
}

// ForceRefresh invalidates every probe key and runs one sweep synchronously.
// Reads in between see Checking, which is exactly the feedback a forced
// refresh should give.
func (m *Manager) ForceRefresh(ctx context.Context) {
	for _, p := range m.probes {
		m.store.Invalidate(p.Key)
	}
	m.sweep(ctx)
}

// Status reports whether the loop is running and when it last swept.
func (m *Manager) Status() (running bool, lastTick time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running, m.lastTick
}

func (m *Manager) loop(ctx context.Context) {
	defer close(m.done)

	m.sweep(ctx)

	ticker := time.NewTicker(m.poll)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.sweep(ctx)
		}
	}
}

func (m *Manager) sweep(ctx context.Context) {
	for _, p := range m.probes {
		if ctx.Err() != nil {
			return
		}
		value, err := p.Run(ctx)
		if err != nil {
			value = "error: " + err.Error()
		}
		// Publish even on error; an error fact is fresher than a stale
		// success.
		_ = m.store.Put(p.Key, value, p.TTL)
	}
	m.mu.Lock()
	m.lastTick = time.Now()
	m.mu.Unlock()
}
