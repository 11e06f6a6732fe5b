package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/DoyleJ11/battleship-backend/internal/engine"
)

var ErrNotConcluded = errors.New("match has not concluded")

// Recorder writes concluded matches to postgres through gorm.
type Recorder struct {
	db  *gorm.DB
	log *zap.Logger
	now func() time.Time
}

// Open connects to dsn, checks the connection and migrates the schema.
func Open(ctx context.Context, dsn string, log *zap.Logger) (*Recorder, error) {
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("database handle: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	sqlDB.SetMaxIdleConns(2)
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return NewRecorder(ctx, db, log)
}

// NewRecorder wraps an open gorm handle and migrates the schema.
func NewRecorder(ctx context.Context, db *gorm.DB, log *zap.Logger) (*Recorder, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := db.WithContext(ctx).AutoMigrate(&MatchResult{}, &SeatResult{}); err != nil {
		return nil, fmt.Errorf("auto migration failed: %w", err)
	}
	return &Recorder{db: db, log: log, now: time.Now}, nil
}

func (r *Recorder) Record(ctx context.Context, v engine.View) error {
	if v.Phase != engine.PhaseConcluded {
		return fmt.Errorf("%w: %s", ErrNotConcluded, v.ID)
	}
	res := FromView(v, r.now().UTC())
	if err := r.db.WithContext(ctx).Create(&res).Error; err != nil {
		return fmt.Errorf("save result of %s: %w", v.ID, err)
	}
	r.log.Info("match result recorded",
		zap.String("game_id", v.ID),
		zap.String("winner", res.Winner),
		zap.Int("turns", res.Turns))
	return nil
}

func (r *Recorder) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
