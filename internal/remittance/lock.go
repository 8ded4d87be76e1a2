package remittance

import (
	"context"
	"time"

	"github.com/google/uuid"

	pkgerrors "github.com/pondokdigital/pondok-backend/pkg/errors"
	"github.com/pondokdigital/pondok-backend/pkg/logger"
	"github.com/pondokdigital/pondok-backend/pkg/redis"
)

// Locker serializes remittances per unit. Two clerks remitting the same
// unit's cash box at once would both pass the balance check; the lock makes
// one of them wait for a CONFLICT instead.
type Locker interface {
	TryLock(ctx context.Context, unitLedgerID string) (release func(context.Context), acquired bool, err error)
}

type redisLocker struct {
	client *redis.Client
	ttl    time.Duration
	logg   *logger.Logger
}

// NewLocker builds a Redis-backed per-unit lock with the given TTL. The TTL
// caps how long a crashed holder can block the unit.
func NewLocker(client *redis.Client, ttl time.Duration, logg *logger.Logger) Locker {
	return &redisLocker{client: client, ttl: ttl, logg: logg}
}

func (l *redisLocker) TryLock(ctx context.Context, unitLedgerID string) (func(context.Context), bool, error) {
	if l.client == nil {
		return nil, false, pkgerrors.New(pkgerrors.CodeDependency, "lock store unavailable")
	}

	key := l.client.RemitLockKey(unitLedgerID)
	owner := uuid.NewString()
	acquired, err := l.client.SetNX(ctx, key, owner, l.ttl)
	if err != nil {
		return nil, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acquire unit lock")
	}
	if !acquired {
		return nil, false, nil
	}

	release := func(releaseCtx context.Context) {
		current, err := l.client.Get(releaseCtx, key)
		if err != nil || current != owner {
			// Expired and possibly re-acquired by someone else; deleting now
			// would release their lock.
			return
		}
		if err := l.client.Del(releaseCtx, key); err != nil && l.logg != nil {
			logCtx := l.logg.WithField(releaseCtx, "unit_ledger_id", unitLedgerID)
			l.logg.Warn(logCtx, "failed to release unit lock; TTL will reclaim it")
		}
	}
	return release, true, nil
}
