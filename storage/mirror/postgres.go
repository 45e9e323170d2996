package mirror

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yongseopkim/workrecap/errs"
	"github.com/yongseopkim/workrecap/model"
)

// DailyStatsRow is the GORM model a Postgres mirror upserts into, matching
// SPEC_FULL §B.1.
type DailyStatsRow struct {
	Date        string `gorm:"primaryKey"`
	ReposJSON   string
	StatsJSON   string
	UpdatedAt   time.Time
}

func (DailyStatsRow) TableName() string { return "workrecap_daily_stats" }

// CheckpointRow mirrors the checkpoint map as a single-row table.
type CheckpointRow struct {
	ID            int `gorm:"primaryKey"`
	CheckpointJSON string
	UpdatedAt     time.Time
}

func (CheckpointRow) TableName() string { return "workrecap_checkpoints" }

// Postgres is a best-effort relational mirror over gorm.io/driver/postgres.
type Postgres struct {
	db *gorm.DB
}

// NewPostgres opens a GORM connection against dsn and auto-migrates the
// mirror's two tables.
func NewPostgres(dsn string) (*Postgres, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("mirror: open postgres: %w", err)
	}
	if err := db.AutoMigrate(&DailyStatsRow{}, &CheckpointRow{}); err != nil {
		return nil, fmt.Errorf("mirror: migrate postgres: %w", err)
	}
	return &Postgres{db: db}, nil
}

// Name identifies this mirror in logs.
func (p *Postgres) Name() string { return "postgres" }

// MirrorDailyStats upserts date's stats row.
func (p *Postgres) MirrorDailyStats(ctx context.Context, date string, stats model.DailyStats) error {
	statsJSON, err := json.Marshal(stats)
	if err != nil {
		return &errs.StorageError{Backend: "postgres", Op: "marshal daily stats", Cause: err}
	}
	reposJSON, err := json.Marshal(stats.GitHub.ReposTouched)
	if err != nil {
		return &errs.StorageError{Backend: "postgres", Op: "marshal repos touched", Cause: err}
	}
	row := DailyStatsRow{Date: date, ReposJSON: string(reposJSON), StatsJSON: string(statsJSON), UpdatedAt: time.Now()}
	result := p.db.WithContext(ctx).Save(&row)
	if result.Error != nil {
		return &errs.StorageError{Backend: "postgres", Op: "upsert daily stats", Cause: result.Error}
	}
	return nil
}

// MirrorCheckpoint upserts the single checkpoint row.
func (p *Postgres) MirrorCheckpoint(ctx context.Context, cp model.Checkpoint) error {
	cpJSON, err := json.Marshal(cp)
	if err != nil {
		return &errs.StorageError{Backend: "postgres", Op: "marshal checkpoint", Cause: err}
	}
	row := CheckpointRow{ID: 1, CheckpointJSON: string(cpJSON), UpdatedAt: time.Now()}
	result := p.db.WithContext(ctx).Save(&row)
	if result.Error != nil {
		return &errs.StorageError{Backend: "postgres", Op: "upsert checkpoint", Cause: result.Error}
	}
	return nil
}
