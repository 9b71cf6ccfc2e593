package store

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Store owns the database handle. It is opened once at startup and passed
// to the repositories that need it; nothing reaches for a package-level
// connection.
type Store struct {
	db     *gorm.DB
	logger *zap.Logger
}

// Open opens (or creates) the sqlite database at path and migrates the
// schema.
func Open(path string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening database at %s: %w", path, err)
	}

	if err := db.AutoMigrate(&CVHistoryEntry{}, &QAReview{}, &Task{}); err != nil {
		return nil, fmt.Errorf("migrating schema: %w", err)
	}

	logger.Info("database ready", zap.String("path", path))

	return &Store{db: db, logger: logger}, nil
}

func (s *Store) History() *HistoryRepo { return &HistoryRepo{db: s.db} }
func (s *Store) QA() *QARepo           { return &QARepo{db: s.db} }
func (s *Store) Tasks() *TaskRepo      { return &TaskRepo{db: s.db} }
