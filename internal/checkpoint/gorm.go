package checkpoint

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DefaultKey identifies the checkpoint row when none is configured.
const DefaultKey = "default"

// Record is the database row of a checkpoint. The full state is kept in
// Payload; the other columns make it queryable.
type Record struct {
	Key              string `gorm:"primaryKey;size:128"`
	ReconciliationID string `gorm:"index;size:128"`
	Status           string `gorm:"index;size:32"`
	Progress         int
	StartTime        time.Time
	EndTime          *time.Time
	Payload          datatypes.JSON
	UpdatedAt        time.Time
}

// TableName sets the table used for checkpoints.
func (Record) TableName() string {
	return "reconciliation_checkpoints"
}

// GormStore keeps the checkpoint in a SQL table, one row per key, so several
// workers can each follow their own job.
type GormStore struct {
	db  *gorm.DB
	key string
}

// OpenPostgres connects to dsn and migrates the checkpoint table.
func OpenPostgres(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	if err := db.AutoMigrate(&Record{}); err != nil {
		return nil, fmt.Errorf("migrating checkpoint table: %w", err)
	}
	return db, nil
}

// NewGormStore returns a store over db. The table must exist.
func NewGormStore(db *gorm.DB, key string) *GormStore {
	if key == "" {
		key = DefaultKey
	}
	return &GormStore{db: db, key: key}
}

// Load reads the row for the store's key.
func (s *GormStore) Load(ctx context.Context) (*State, error) {
	var rec Record
	err := s.db.WithContext(ctx).First(&rec, "key = ?", s.key).Error
	return stateFromRecord(s.key, rec, err)
}

// Save upserts the row for the store's key.
func (s *GormStore) Save(ctx context.Context, state State) error {
	rec, err := recordFromState(s.key, state)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Save(&rec).Error; err != nil {
		return fmt.Errorf("saving checkpoint %s: %w", s.key, err)
	}
	return nil
}

// recordFromState builds the row stored for state under key.
func recordFromState(key string, state State) (Record, error) {
	payload, err := json.Marshal(state)
	if err != nil {
		return Record{}, fmt.Errorf("encoding checkpoint: %w", err)
	}
	return Record{
		Key:              key,
		ReconciliationID: state.ReconciliationID,
		Status:           string(state.Status),
		Progress:         state.Progress,
		StartTime:        state.StartTime,
		EndTime:          state.EndTime,
		Payload:          datatypes.JSON(payload),
	}, nil
}

// stateFromRecord decodes the result of a row lookup. A missing row or an
// empty payload is no checkpoint.
func stateFromRecord(key string, rec Record, err error) (*State, error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading checkpoint %s: %w", key, err)
	}
	if len(rec.Payload) == 0 {
		return nil, nil
	}

	var state State
	if err := json.Unmarshal(rec.Payload, &state); err != nil {
		return nil, fmt.Errorf("decoding checkpoint %s: %w", key, err)
	}
	return &state, nil
}

// Clear deletes the row for the store's key.
func (s *GormStore) Clear(ctx context.Context) error {
	if err := s.db.WithContext(ctx).Delete(&Record{}, "key = ?", s.key).Error; err != nil {
		return fmt.Errorf("clearing checkpoint %s: %w", s.key, err)
	}
	return nil
}
