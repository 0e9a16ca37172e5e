package auth

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/Agromercado-api/internal/application/ports"
)

// MemoryThrottle implementación de ports.LoginThrottle en memoria del proceso.
// Se usa cuando no hay Redis configurado (una sola instancia) y en tests.
type MemoryThrottle struct {
	mu     sync.Mutex
	policy ports.LockoutPolicy
	now    func() time.Time
	state  map[string]*throttleState
	swept  time.Time
}

type throttleState struct {
	failures    int
	windowStart time.Time
	locks       int
	lastLock    time.Time
	lockedUntil time.Time
}

// NewMemoryThrottle construye el contador en memoria.
func NewMemoryThrottle(policy ports.LockoutPolicy) *MemoryThrottle {
	return &MemoryThrottle{policy: policy, now: time.Now, state: map[string]*throttleState{}}
}

func (m *MemoryThrottle) LockedUntil(_ context.Context, key string) (time.Time, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.state[key]
	if !ok || !m.now().Before(st.lockedUntil) {
		return time.Time{}, false, nil
	}
	return st.lockedUntil, true, nil
}

func (m *MemoryThrottle) RegisterFailure(_ context.Context, key string) (time.Time, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	if now.Sub(m.swept) >= m.policy.Window {
		m.prune(now)
	}
	st, ok := m.state[key]
	if !ok {
		st = &throttleState{}
		m.state[key] = st
	}
	if st.locks > 0 && now.Sub(st.lastLock) > m.policy.LockHistoryTTL() {
		st.locks = 0
	}
	if st.failures == 0 || now.Sub(st.windowStart) > m.policy.Window {
		st.failures = 0
		st.windowStart = now
	}
	st.failures++
	if st.failures < m.policy.MaxAttempts {
		return time.Time{}, false, nil
	}
	st.failures = 0
	st.locks++
	st.lastLock = now
	st.lockedUntil = now.Add(m.policy.LockDuration(st.locks))
	return st.lockedUntil, true, nil
}

func (m *MemoryThrottle) Reset(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.state, key)
	return nil
}

// prune descarta las claves sin ventana activa, sin bloqueo vigente y sin historial de bloqueos.
func (m *MemoryThrottle) prune(now time.Time) {
	for key, st := range m.state {
		windowOpen := st.failures > 0 && now.Sub(st.windowStart) <= m.policy.Window
		locked := now.Before(st.lockedUntil)
		history := st.locks > 0 && now.Sub(st.lastLock) <= m.policy.LockHistoryTTL()
		if !windowOpen && !locked && !history {
			delete(m.state, key)
		}
	}
	m.swept = now
}
