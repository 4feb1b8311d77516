package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Pool sizes the connection pool. Zero fields take the defaults.
type Pool struct {
	MaxOpen     int
	MaxIdle     int
	MaxLifetime time.Duration
	MaxIdleTime time.Duration
}

func (p Pool) withDefaults() Pool {
	if p.MaxOpen <= 0 {
		p.MaxOpen = 20
	}
	if p.MaxIdle <= 0 || p.MaxIdle > p.MaxOpen {
		p.MaxIdle = p.MaxOpen / 2
	}
	if p.MaxLifetime <= 0 {
		p.MaxLifetime = 30 * time.Minute
	}
	if p.MaxIdleTime <= 0 {
		p.MaxIdleTime = 5 * time.Minute
	}
	return p
}

func (p Pool) apply(sqlDB *sql.DB) {
	sqlDB.SetMaxOpenConns(p.MaxOpen)
	sqlDB.SetMaxIdleConns(p.MaxIdle)
	sqlDB.SetConnMaxLifetime(p.MaxLifetime)
	sqlDB.SetConnMaxIdleTime(p.MaxIdleTime)
}

// Open connects to Postgres and pings before returning.
func Open(ctx context.Context, dsn string, pool Pool) (*gorm.DB, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("db: empty DSN")
	}

	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		PrepareStmt: true,
		NowFunc:     func() time.Time { return time.Now().UTC() },
		Logger: logger.New(log.New(os.Stderr, "", log.LstdFlags), logger.Config{
			SlowThreshold:             250 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("db: open: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("db: handle: %w", err)
	}
	pool.withDefaults().apply(sqlDB)

	if err := Ping(ctx, gdb); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return gdb, nil
}

func Ping(ctx context.Context, gdb *gorm.DB) error {
	sqlDB, err := gdb.DB()
	if err != nil {
		return fmt.Errorf("db: handle: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("db: ping: %w", err)
	}
	return nil
}

// ParseIsolation maps TX_ISOLATION values to sql isolation levels.
// An empty or "default" value returns nil so the driver default applies.
func ParseIsolation(v string) (*sql.IsolationLevel, error) {
	var lvl sql.IsolationLevel
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "default":
		return nil, nil
	case "read_committed", "read committed":
		lvl = sql.LevelReadCommitted
	case "repeatable_read", "repeatable read":
		lvl = sql.LevelRepeatableRead
	case "serializable":
		lvl = sql.LevelSerializable
	default:
		return nil, fmt.Errorf("unknown isolation level %q", v)
	}
	return &lvl, nil
}
