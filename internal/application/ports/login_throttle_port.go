package ports

import (
	"context"
	"time"
)

// LoginThrottle cuenta intentos fallidos de login y bloquea la cuenta con duración escalonada.
// key identifica la cuenta (email normalizado).
type LoginThrottle interface {
	// LockedUntil devuelve hasta cuándo está bloqueada la cuenta; ok=false si no lo está.
	LockedUntil(ctx context.Context, key string) (until time.Time, ok bool, err error)
	// RegisterFailure suma un fallo; si alcanza el máximo de la ventana bloquea y devuelve el vencimiento.
	RegisterFailure(ctx context.Context, key string) (until time.Time, locked bool, err error)
	// Reset limpia fallos y escalamiento tras un login exitoso.
	Reset(ctx context.Context, key string) error
}

// LockoutPolicy parámetros del bloqueo escalonado.
type LockoutPolicy struct {
	MaxAttempts int
	Window      time.Duration
	BaseLock    time.Duration
	MaxLock     time.Duration
}

// LockDuration duración del n-ésimo bloqueo consecutivo (n >= 1): BaseLock * 2^(n-1), con tope MaxLock.
func (p LockoutPolicy) LockDuration(n int) time.Duration {
	if n < 1 {
		n = 1
	}
	d := p.BaseLock
	for i := 1; i < n; i++ {
		d *= 2
		if p.MaxLock > 0 && d >= p.MaxLock {
			return p.MaxLock
		}
	}
	if p.MaxLock > 0 && d > p.MaxLock {
		return p.MaxLock
	}
	return d
}

// LockHistoryTTL cuánto se recuerda el número de bloqueos consecutivos.
func (p LockoutPolicy) LockHistoryTTL() time.Duration {
	return 24 * time.Hour
}
