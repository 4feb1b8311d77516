package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgUniqueViolation      = "23505"
)

// GormTransactor runs fn inside one database transaction and retries it when
// Postgres aborts the transaction with a serialization failure or deadlock.
// Isolation is nil for the driver default.
type GormTransactor struct {
	DB         *gorm.DB
	Isolation  *sql.IsolationLevel
	MaxRetries int
}

func (t *GormTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context, s service.Stores) error) error {
	var opts []*sql.TxOptions
	if t.Isolation != nil {
		opts = append(opts, &sql.TxOptions{Isolation: *t.Isolation})
	}

	attempts := t.MaxRetries + 1
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 1; ; attempt++ {
		err := t.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			r := &GormRepo{DB: tx}
			return fn(ctx, r.Stores())
		}, opts...)
		if err == nil {
			return nil
		}
		if !IsSerializationFailure(err) {
			return err
		}
		if attempt >= attempts {
			return fmt.Errorf("%w: transaction aborted after %d attempts: %v", service.ErrConflict, attempt, err)
		}

		logging.FromContext(ctx).Warn("tx_retry", "attempt", attempt, "error", err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * 10 * time.Millisecond):
		}
	}
}

func IsSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgSerializationFailure || pgErr.Code == pgDeadlockDetected
	}
	return false
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
