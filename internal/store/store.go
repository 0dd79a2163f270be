// Package store archives finished rounds. It is write-mostly: nothing is
// read back to rebuild rooms.
package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type RoundResult struct {
	ID          uint      `gorm:"primaryKey" json:"-"`
	RoomID      string    `gorm:"index;size:128" json:"roomId"`
	Word        string    `gorm:"size:64" json:"word"`
	Reason      string    `gorm:"size:8" json:"reason"`
	Attempts    int       `json:"attempts"`
	MaxAttempts int       `json:"maxAttempts"`
	Giver       string    `gorm:"size:64" json:"giver,omitempty"`
	Guesser     string    `gorm:"size:64" json:"guesser,omitempty"`
	EndedAt     time.Time `gorm:"index" json:"endedAt"`
}

// Recorder accepts finished rounds without blocking the caller.
type Recorder interface {
	Record(res RoundResult)
}

// Discard drops every result.
type Discard struct{}

func (Discard) Record(RoundResult) {}

// Archive is the Postgres-backed round history.
type Archive struct {
	db *gorm.DB
}

func Open(dsn string) (*Archive, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.AutoMigrate(&RoundResult{}); err != nil {
		return nil, fmt.Errorf("migrating round_results: %w", err)
	}
	return &Archive{db: db}, nil
}

func (a *Archive) Save(ctx context.Context, res RoundResult) error {
	if err := a.db.WithContext(ctx).Create(&res).Error; err != nil {
		return fmt.Errorf("saving round for %s: %w", res.RoomID, err)
	}
	return nil
}

// Recent returns the latest rounds, newest first.
func (a *Archive) Recent(ctx context.Context, limit int) ([]RoundResult, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var out []RoundResult
	err := a.db.WithContext(ctx).Order("ended_at desc").Limit(limit).Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("listing rounds: %w", err)
	}
	return out, nil
}

func (a *Archive) Close() error {
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
