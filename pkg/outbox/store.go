package outbox

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Store interface {
	LockBatch(ctx context.Context, relayID string, batchSize int, lease time.Duration) ([]Event, error)
	MarkSent(ctx context.Context, ids []uint64) error
	MarkFailed(ctx context.Context, id uint64, errMsg string) error
	// Release returns claimed events to pending without counting an attempt.
	Release(ctx context.Context, ids []uint64) error
}

// GormStore claims events with a conditional UPDATE instead of row locks so
// the same code runs on Postgres and SQLite. An in-progress event whose lease
// expired is claimable again.
type GormStore struct {
	DB          *gorm.DB
	MaxAttempts int
	Now         func() time.Time
}

func Append(ctx context.Context, db *gorm.DB, e *Event) error {
	if e.Status == "" {
		e.Status = StatusPending
	}
	return db.WithContext(ctx).Create(e).Error
}

func (s *GormStore) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *GormStore) LockBatch(ctx context.Context, relayID string, batchSize int, lease time.Duration) ([]Event, error) {
	now := s.now()
	claim := relayID + ":" + uuid.NewString()
	claimable := "status = ? OR (status = ? AND locked_until < ?)"

	candidates := s.DB.Model(&Event{}).
		Select("id").
		Where(claimable, StatusPending, StatusInProgress, now).
		Order("id ASC").
		Limit(batchSize)

	res := s.DB.WithContext(ctx).Model(&Event{}).
		Where("id IN (?)", candidates).
		Where(claimable, StatusPending, StatusInProgress, now).
		Updates(map[string]any{
			"status":       StatusInProgress,
			"claim_token":  claim,
			"locked_until": now.Add(lease),
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}

	var events []Event
	if err := s.DB.WithContext(ctx).
		Where("claim_token = ?", claim).
		Order("id ASC").
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

func (s *GormStore) MarkSent(ctx context.Context, ids []uint64) error {
	if len(ids) == 0 {
		return nil
	}
	return s.DB.WithContext(ctx).Model(&Event{}).
		Where("id IN ?", ids).
		Updates(map[string]any{
			"status":       StatusSent,
			"sent_at":      s.now(),
			"claim_token":  "",
			"locked_until": nil,
		}).Error
}

// MarkFailed returns the event to pending until it has been attempted
// MaxAttempts times, then parks it as failed.
func (s *GormStore) MarkFailed(ctx context.Context, id uint64, errMsg string) error {
	maxAttempts := s.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	return s.DB.WithContext(ctx).Model(&Event{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"attempts":     gorm.Expr("attempts + 1"),
			"status":       gorm.Expr("CASE WHEN attempts + 1 >= ? THEN ? ELSE ? END", maxAttempts, StatusFailed, StatusPending),
			"last_error":   errMsg,
			"claim_token":  "",
			"locked_until": nil,
		}).Error
}

func (s *GormStore) Release(ctx context.Context, ids []uint64) error {
	if len(ids) == 0 {
		return nil
	}
	return s.DB.WithContext(ctx).Model(&Event{}).
		Where("id IN ? AND status = ?", ids, StatusInProgress).
		Updates(map[string]any{
			"status":       StatusPending,
			"claim_token":  "",
			"locked_until": nil,
		}).Error
}
