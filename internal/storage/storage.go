// Package storage records nightly status runs using GORM and SQLite
package storage

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Sentinel errors following Dave Cheney's principle: define errors as values
var (
	ErrNilRun       = errors.New("run cannot be nil")
	ErrNotFound     = errors.New("run not found")
	ErrEmptyVersion = errors.New("version cannot be empty")
)

// Run is one invocation that was recorded.
type Run struct {
	ID           uint          `gorm:"primaryKey"`
	RunAt        time.Time     `gorm:"not null;index"`
	Stream       string        `gorm:"not null"`
	Observations []Observation `gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time
}

// Observation is the state of one release line during a run.
type Observation struct {
	ID          uint      `gorm:"primaryKey"`
	RunID       uint      `gorm:"not null;index"`
	Version     string    `gorm:"not null;index:idx_observation_version"`
	Stream      string    `gorm:"not null;index:idx_observation_version"`
	Available   bool      `gorm:"not null;default:false"`
	ObservedAt  time.Time `gorm:"not null;index"`
	Tag         string
	Phase       string
	Age         string
	PullSpec    string
	DownloadURL string
}

// Store defines the interface for history storage operations
type Store interface {
	Close() error
	RecordRun(*Run) error
	GetRun(id uint) (*Run, error)
	ListRuns(limit int) ([]*Run, error)
	ListObservations(version, stream string, limit int) ([]*Observation, error)
}

// DB wraps gorm.DB with our history operations
type DB struct {
	db *gorm.DB
}

// Config holds database configuration
type Config struct {
	DatabasePath string
	LogLevel     string // silent, error, warn, info
}

// InitDB initializes the database connection and runs migrations
func InitDB(cfg Config) (*DB, error) {
	logLevel := logger.Silent
	switch cfg.LogLevel {
	case "error":
		logLevel = logger.Error
	case "warn":
		logLevel = logger.Warn
	case "info":
		logLevel = logger.Info
	}

	db, err := gorm.Open(sqlite.Open(cfg.DatabasePath), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&Run{}, &Observation{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection
func (d *DB) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying SQL DB: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database connection: %w", err)
	}
	return nil
}

// RecordRun creates a run together with its observations
func (d *DB) RecordRun(run *Run) error {
	if run == nil {
		return ErrNilRun
	}
	if err := d.db.Create(run).Error; err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	return nil
}

// GetRun retrieves a run and its observations by ID
func (d *DB) GetRun(id uint) (*Run, error) {
	var run Run
	err := d.db.Preload("Observations", func(db *gorm.DB) *gorm.DB {
		return db.Order("version")
	}).First(&run, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run %d: %w", id, err)
	}
	return &run, nil
}

// ListRuns returns the most recent runs, newest first. A limit of zero or
// less returns every run.
func (d *DB) ListRuns(limit int) ([]*Run, error) {
	var runs []*Run
	q := d.db.Order("run_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&runs).Error; err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}

// ListObservations returns the recorded observations of one release line,
// newest first. An empty stream matches every stream.
func (d *DB) ListObservations(version, stream string, limit int) ([]*Observation, error) {
	if version == "" {
		return nil, ErrEmptyVersion
	}

	var observations []*Observation
	q := d.db.Where("version = ?", version)
	if stream != "" {
		q = q.Where("stream = ?", stream)
	}
	q = q.Order("observed_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&observations).Error; err != nil {
		return nil, fmt.Errorf("failed to list observations for %s: %w", version, err)
	}
	return observations, nil
}
