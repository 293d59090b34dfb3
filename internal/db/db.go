package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/BruksfildServices01/barber-loyalty/internal/config"
	apdomain "github.com/BruksfildServices01/barber-loyalty/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-loyalty/internal/models"
)

// Conn owns the pgx pool backing the gorm handle.
type Conn struct {
	DB   *gorm.DB
	pool *pgxpool.Pool
}

func (c *Conn) Close() {
	if sqlDB, err := c.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
	c.pool.Close()
}

func Open(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Conn, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DBUrl)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	poolCfg.MaxConns = 10
	poolCfg.MinConns = 2
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 10 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("open pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	level := gormlogger.Warn
	if cfg.IsProduction() {
		level = gormlogger.Error
	}

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn: stdlib.OpenDBFromPool(pool),
	}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(level),
	})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("open gorm: %w", err)
	}

	if err := Migrate(db); err != nil {
		pool.Close()
		return nil, err
	}

	log.Info("database ready", zap.Int32("max_conns", poolCfg.MaxConns))
	return &Conn{DB: db, pool: pool}, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Service{},
		&models.Barber{},
		&models.Product{},
		&models.WorkingHours{},
		&models.BlockedSlot{},
		&models.Appointment{},
		&models.AuditLog{},
		&models.AdminMessage{},
		&models.PushSubscription{},
	); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	for _, stmt := range constraints() {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migrate constraints: %w", err)
		}
	}
	return nil
}

// constraints keeps two active appointments of one barber from
// overlapping, even when both transactions saw the slot free.
func constraints() []string {
	active := "'" + strings.Join(apdomain.ActiveStatusStrings(), "','") + "'"

	return []string{
		`CREATE EXTENSION IF NOT EXISTS btree_gist`,
		`DO $$
BEGIN
	IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'appointments_no_overlap') THEN
		ALTER TABLE appointments ADD CONSTRAINT appointments_no_overlap
			EXCLUDE USING gist (barber_id WITH =, tstzrange(start_time, end_time) WITH &&)
			WHERE (status IN (` + active + `));
	END IF;
END $$`,
	}
}
