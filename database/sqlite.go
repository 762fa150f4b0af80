package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

// Credential is one row of the device-local credential table.
type Credential struct {
	DeviceID  string `gorm:"primaryKey;size:64"`
	Name      string `gorm:"primaryKey;size:64"`
	Value     string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

// SQLiteCredentialStore persists credentials in a local SQLite file.
type SQLiteCredentialStore struct {
	db       *gorm.DB
	deviceID string
}

// OpenSQLiteCredentialStore opens (or creates) the database at path and
// migrates the credentials table. ":memory:" is accepted.
func OpenSQLiteCredentialStore(path, deviceID string) (*SQLiteCredentialStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// one connection: serialises writers and keeps ":memory:" a single database
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&Credential{}); err != nil {
		return nil, fmt.Errorf("migrate credentials: %w", err)
	}
	return NewSQLiteCredentialStore(db, deviceID), nil
}

// NewSQLiteCredentialStore scopes every row to deviceID.
func NewSQLiteCredentialStore(db *gorm.DB, deviceID string) *SQLiteCredentialStore {
	return &SQLiteCredentialStore{db: db, deviceID: deviceID}
}

func (s *SQLiteCredentialStore) Get(ctx context.Context, key string) (string, bool, error) {
	var c Credential
	err := s.db.WithContext(ctx).
		Where("device_id = ? AND name = ?", s.deviceID, key).
		First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return c.Value, true, nil
}

func (s *SQLiteCredentialStore) Set(ctx context.Context, key, value string) error {
	c := Credential{DeviceID: s.deviceID, Name: key, Value: value}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "device_id"}, {Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&c).Error
}

func (s *SQLiteCredentialStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).
		Where("device_id = ? AND name IN ?", s.deviceID, keys).
		Delete(&Credential{}).Error
}

func (s *SQLiteCredentialStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
