package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/Agromercado-api/internal/application/ports"
)

var _ ports.LoginThrottle = (*LoginThrottle)(nil)

// LoginThrottle implementación de ports.LoginThrottle sobre Redis.
//
//	agro:login:fail:<cuenta>   fallos en la ventana actual (TTL = ventana)
//	agro:login:lock:<cuenta>   vencimiento del bloqueo en ms unix (TTL = duración del bloqueo)
//	agro:login:locks:<cuenta>  bloqueos consecutivos (TTL = 24h)
type LoginThrottle struct {
	store  cmdable
	policy ports.LockoutPolicy
	now    func() time.Time
}

// NewLoginThrottle construye el contador sobre un cliente go-redis.
func NewLoginThrottle(client *redis.Client, policy ports.LockoutPolicy) *LoginThrottle {
	return &LoginThrottle{store: client, policy: policy, now: time.Now}
}

func failKey(account string) string  { return buildKey("login", "fail", account) }
func lockKey(account string) string  { return buildKey("login", "lock", account) }
func locksKey(account string) string { return buildKey("login", "locks", account) }

// LockedUntil lee el vencimiento del bloqueo vigente.
func (t *LoginThrottle) LockedUntil(ctx context.Context, account string) (time.Time, bool, error) {
	raw, err := t.store.Get(ctx, lockKey(account)).Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("get login lock: %w", err)
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parse login lock %q: %w", raw, err)
	}
	until := time.UnixMilli(ms)
	if !t.now().Before(until) {
		return time.Time{}, false, nil
	}
	return until, true, nil
}

// RegisterFailure suma un fallo en la ventana; al llegar al máximo bloquea con la duración
// escalonada según los bloqueos consecutivos previos.
func (t *LoginThrottle) RegisterFailure(ctx context.Context, account string) (time.Time, bool, error) {
	fk := failKey(account)
	count, err := t.store.Incr(ctx, fk).Result()
	if err != nil {
		return time.Time{}, false, fmt.Errorf("incr login failures: %w", err)
	}
	if count == 1 {
		if err := t.store.Expire(ctx, fk, t.policy.Window).Err(); err != nil {
			return time.Time{}, false, fmt.Errorf("expire login failures: %w", err)
		}
	}
	if count < int64(t.policy.MaxAttempts) {
		return time.Time{}, false, nil
	}

	if err := t.store.Del(ctx, fk).Err(); err != nil {
		return time.Time{}, false, fmt.Errorf("reset login failures: %w", err)
	}
	lk := locksKey(account)
	locks, err := t.store.Incr(ctx, lk).Result()
	if err != nil {
		return time.Time{}, false, fmt.Errorf("incr login locks: %w", err)
	}
	if err := t.store.Expire(ctx, lk, t.policy.LockHistoryTTL()).Err(); err != nil {
		return time.Time{}, false, fmt.Errorf("expire login locks: %w", err)
	}

	d := t.policy.LockDuration(int(locks))
	until := t.now().Add(d)
	if err := t.store.Set(ctx, lockKey(account), strconv.FormatInt(until.UnixMilli(), 10), d).Err(); err != nil {
		return time.Time{}, false, fmt.Errorf("set login lock: %w", err)
	}
	return until, true, nil
}

// Reset borra fallos, bloqueo y escalamiento de la cuenta.
func (t *LoginThrottle) Reset(ctx context.Context, account string) error {
	if err := t.store.Del(ctx, failKey(account), lockKey(account), locksKey(account)).Err(); err != nil {
		return fmt.Errorf("reset login throttle: %w", err)
	}
	return nil
}
