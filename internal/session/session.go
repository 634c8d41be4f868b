// Package session keeps per-phone conversation scratch data between
// messages: answers collected along a flow before they are persisted.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/m3rciful/iptvbot/core/logger"
)

// Data holds the in-flight answers of one conversation flow.
type Data struct {
	Name         string
	City         string
	Device       string
	Plan         string
	PlanLabel    string
	Price        float64
	Months       int
	CurrentLogin string
	RequestID    int64
}

type entry struct {
	data    Data
	touched time.Time
}

// Options tunes sweep cadence and retention of idle sessions.
type Options struct {
	SweepInterval time.Duration
	Retention     time.Duration
}

func (o Options) withDefaults() Options {
	if o.SweepInterval <= 0 {
		o.SweepInterval = time.Hour
	}
	if o.Retention <= 0 {
		o.Retention = 2 * time.Hour
	}
	return o
}

// Manager owns all live sessions keyed by phone.
type Manager struct {
	opts Options

	mu       sync.Mutex
	sessions map[string]*entry
	now      func() time.Time
}

// NewManager creates an empty session store.
func NewManager(opts Options) *Manager {
	return &Manager{
		opts:     opts.withDefaults(),
		sessions: make(map[string]*entry),
		now:      time.Now,
	}
}

// Begin resets the session for a phone to a fresh scratchpad.
func (m *Manager) Begin(phone string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[phone] = &entry{touched: m.now()}
}

// Get returns a copy of the session data. The second result reports whether a
// session exists; reading also refreshes the touch stamp.
func (m *Manager) Get(phone string) (Data, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.sessions[phone]
	if !ok {
		return Data{}, false
	}
	e.touched = m.now()
	return e.data, true
}

// Update mutates the session data in place, creating the session if absent.
func (m *Manager) Update(phone string, fn func(*Data)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.sessions[phone]
	if !ok {
		e = &entry{}
		m.sessions[phone] = e
	}
	fn(&e.data)
	e.touched = m.now()
}

// Clear drops the session for a phone.
func (m *Manager) Clear(phone string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, phone)
}

// Len reports how many sessions are live.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Run sweeps idle sessions until the context is canceled.
func (m *Manager) Run(ctx context.Context) {
	ticker := time.NewTicker(m.opts.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.sweep(); n > 0 {
				logger.Info(ctx, "session", "sweep", slog.Int("count", n))
			}
		}
	}
}

func (m *Manager) sweep() int {
	cutoff := m.now().Add(-m.opts.Retention)
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for phone, e := range m.sessions {
		if e.touched.Before(cutoff) {
			delete(m.sessions, phone)
			removed++
		}
	}
	return removed
}
