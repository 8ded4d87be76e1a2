package rentals

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pondokdigital/pondok-backend/pkg/db/models"
	"github.com/pondokdigital/pondok-backend/pkg/logger"
	"github.com/pondokdigital/pondok-backend/pkg/redis"
)

// Mirror keeps a read-only copy of live sessions in Redis so kiosk clients
// can poll without hitting the database. The database row stays authoritative;
// mirror writes are best effort and never fail a session operation.
type Mirror interface {
	Put(ctx context.Context, session *models.RentalSession)
	Drop(ctx context.Context, stationID string)
}

type mirrorPayload struct {
	StationID  string    `json:"stationId"`
	RenterName string    `json:"renterName"`
	Status     string    `json:"status"`
	StartedAt  time.Time `json:"startedAt"`
}

type redisMirror struct {
	client *redis.Client
	ttl    time.Duration
	logg   *logger.Logger
}

// NewMirror builds a Redis-backed session mirror with the given TTL.
func NewMirror(client *redis.Client, ttl time.Duration, logg *logger.Logger) Mirror {
	return &redisMirror{client: client, ttl: ttl, logg: logg}
}

func (m *redisMirror) Put(ctx context.Context, session *models.RentalSession) {
	if m.client == nil || session == nil {
		return
	}
	payload, err := json.Marshal(mirrorPayload{
		StationID:  session.StationID,
		RenterName: session.RenterName,
		Status:     string(session.Status),
		StartedAt:  session.StartedAt,
	})
	if err != nil {
		m.warn(ctx, session.StationID, "marshal session mirror", err)
		return
	}
	key := m.client.RentalMirrorKey(session.StationID)
	if err := m.client.Set(ctx, key, payload, m.ttl); err != nil {
		m.warn(ctx, session.StationID, "write session mirror", err)
	}
}

func (m *redisMirror) Drop(ctx context.Context, stationID string) {
	if m.client == nil {
		return
	}
	key := m.client.RentalMirrorKey(stationID)
	if err := m.client.Del(ctx, key); err != nil {
		m.warn(ctx, stationID, "drop session mirror", err)
	}
}

func (m *redisMirror) warn(ctx context.Context, stationID, action string, err error) {
	if m.logg == nil {
		return
	}
	logCtx := m.logg.WithFields(ctx, map[string]any{
		"station_id": stationID,
		"error":      err.Error(),
	})
	m.logg.Warn(logCtx, "session mirror degraded: "+action)
}
