package session

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"kgportal/internal/models"
)

// GormStore keeps sessions in the session_entries table.
type GormStore struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormStore creates a store on top of a migrated database.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db, now: time.Now}
}

func (s *GormStore) Get(ctx context.Context, sid, key string) (string, bool, error) {
	var entry models.SessionEntry
	err := s.db.WithContext(ctx).
		Where("session_id = ? AND entry_key = ?", sid, key).
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	if entry.Expired(s.now()) {
		return "", false, nil
	}
	return entry.Value, true, nil
}

func (s *GormStore) Set(ctx context.Context, sid, key, value string, ttl time.Duration) error {
	entry := models.SessionEntry{SessionID: sid, Key: key, Value: value}
	if ttl > 0 {
		exp := s.now().Add(ttl)
		entry.ExpiresAt = &exp
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}, {Name: "entry_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "expires_at", "updated_at"}),
	}).Create(&entry).Error
}

func (s *GormStore) Delete(ctx context.Context, sid, key string) error {
	return s.db.WithContext(ctx).
		Where("session_id = ? AND entry_key = ?", sid, key).
		Delete(&models.SessionEntry{}).Error
}

// Sweep deletes entries expired at now and returns how many were removed.
func (s *GormStore) Sweep(ctx context.Context, now time.Time) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("expires_at IS NOT NULL AND expires_at <= ?", now).
		Delete(&models.SessionEntry{})
	return res.RowsAffected, res.Error
}
