package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

type cacheRecord struct {
	Key       string `gorm:"primaryKey;size:256"`
	Payload   []byte
	WrittenAt time.Time
	TTLMillis int64
	UpdatedAt time.Time
}

func (cacheRecord) TableName() string { return "cache_entries" }

// SQLiteStore is the default persistent tier: a single-file database that
// survives restarts without any external service.
type SQLiteStore struct {
	db *gorm.DB
}

// NewSQLiteStore opens (or creates) the cache database at path, creating
// parent directories as needed.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, errors.New("sqlite cache path is required")
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&cacheRecord{}); err != nil {
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Read(ctx context.Context, key string) (*Entry, error) {
	var record cacheRecord
	err := s.db.WithContext(ctx).First(&record, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &Entry{
		Payload:   record.Payload,
		WrittenAt: record.WrittenAt,
		TTL:       time.Duration(record.TTLMillis) * time.Millisecond,
	}, nil
}

func (s *SQLiteStore) Write(ctx context.Context, key string, entry Entry) error {
	record := cacheRecord{
		Key:       key,
		Payload:   entry.Payload,
		WrittenAt: entry.WrittenAt,
		TTLMillis: entry.TTL.Milliseconds(),
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"payload", "written_at", "ttl_millis", "updated_at"}),
		}).
		Create(&record).Error
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	return s.db.WithContext(ctx).Where("1 = 1").Delete(&cacheRecord{}).Error
}

func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
