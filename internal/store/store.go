// Package store persists completed backtest Results records to a
// sqlite database, grounded on RyanLisse-go-crypto-bot-clean's
// EventDrivenEngine.saveBacktestResult (gorm.Create over a
// database/sql-backed model) and AutoMigrate-on-open convention.
package store

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"riskwave/internal/event"
	"riskwave/internal/logger"
	"riskwave/internal/pipeline"
)

// Record is the gorm model one completed backtest is persisted as.
// Outputs is stored as a JSON blob rather than a normalized table: the
// event stream is write-once and read back in bulk by report-rendering
// tooling, never queried event-by-event.
type Record struct {
	ID      string `gorm:"primaryKey"`
	StartTS int64
	EndTS   int64
	Outputs string `gorm:"type:text"`
}

// Store wraps a gorm.DB opened against a sqlite file.
type Store struct {
	db  *gorm.DB
	log *zap.Logger
}

// Open opens (creating if necessary) the sqlite database at path and
// runs AutoMigrate for Record.
func Open(path string, log *zap.Logger) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	if err := db.AutoMigrate(&Record{}); err != nil {
		return nil, fmt.Errorf("store: migrate: %w", err)
	}
	return &Store{db: db, log: logger.OrDefault(log)}, nil
}

// Save persists a completed Results record under a fresh identifier,
// returning that identifier.
func (s *Store) Save(results *pipeline.Results) (string, error) {
	outputs, err := json.Marshal(results.Outputs)
	if err != nil {
		return "", fmt.Errorf("store: marshal outputs: %w", err)
	}

	record := Record{
		ID:      uuid.New().String(),
		StartTS: results.StartTS,
		EndTS:   results.EndTS,
		Outputs: string(outputs),
	}

	if err := s.db.Create(&record).Error; err != nil {
		return "", fmt.Errorf("store: create record: %w", err)
	}

	s.log.Info("saved backtest result", zap.String("id", record.ID), zap.Int("outputs", len(results.Outputs)))
	return record.ID, nil
}

// Load retrieves a previously saved Results record by identifier.
func (s *Store) Load(id string) (*pipeline.Results, error) {
	var record Record
	if err := s.db.First(&record, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("store: load %s: %w", id, err)
	}

	var outputs []event.Event
	if err := json.Unmarshal([]byte(record.Outputs), &outputs); err != nil {
		return nil, fmt.Errorf("store: unmarshal outputs: %w", err)
	}

	return &pipeline.Results{StartTS: record.StartTS, EndTS: record.EndTS, Outputs: outputs}, nil
}

// Close releases the underlying database connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
