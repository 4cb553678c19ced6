package adapter

import (
	"context"
	"time"
)

// Locker is a best-effort distributed mutex used to keep Calculate
// non-reentrant per submission.
type Locker interface {
	// TryLock acquires key for at most ttl and returns an unlock token, or
	// domain.ErrCalculationLocked when the key is held.
	TryLock(ctx context.Context, key string, ttl time.Duration) (token string, err error)
	Unlock(ctx context.Context, key, token string) error
}
