package cache

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/saaskit-io/saaskit/internal/models"
)

// DatabaseStore implements Store on the cache_entries table. It is the
// fallback when Redis is not configured; correctness matters more than speed.
type DatabaseStore struct {
	db  *gorm.DB
	now func() time.Time
}

// NewDatabaseStore builds a database-backed cache store.
func NewDatabaseStore(db *gorm.DB) *DatabaseStore {
	if db == nil {
		return nil
	}
	return &DatabaseStore{db: db, now: time.Now}
}

// IncrementWithTTL increments the counter stored under key inside a
// transaction, resetting it when the previous window has lapsed.
func (s *DatabaseStore) IncrementWithTTL(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	var count int64
	var expiresAt time.Time

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := s.now()

		var entry models.CacheEntry
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&entry, "key = ?", key).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && entry.ExpiresAt.Before(now)):
			entry = models.CacheEntry{
				Key:       key,
				Value:     []byte("1"),
				ExpiresAt: now.Add(window),
			}
			if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&entry).Error; err != nil {
				return err
			}
			count = 1
		case err != nil:
			return err
		default:
			count = parseCount(entry.Value) + 1
			entry.Value = formatCount(count)
			if err := tx.Save(&entry).Error; err != nil {
				return err
			}
		}

		expiresAt = entry.ExpiresAt
		return nil
	})
	if err != nil {
		return 0, 0, err
	}

	return count, time.Until(expiresAt), nil
}

// Set stores a value under key with the provided TTL.
func (s *DatabaseStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	entry := models.CacheEntry{
		Key:       key,
		Value:     value,
		ExpiresAt: s.now().Add(ttl),
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&entry).Error
}

// Get retrieves the value stored under key, treating lapsed entries as misses.
func (s *DatabaseStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var entry models.CacheEntry
	err := s.db.WithContext(ctx).First(&entry, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if entry.ExpiresAt.Before(s.now()) {
		return nil, false, nil
	}
	return entry.Value, true, nil
}

// Delete removes the given keys.
func (s *DatabaseStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).
		Where("key IN ?", keys).
		Delete(&models.CacheEntry{}).Error
}

// PurgeExpired removes lapsed entries; called by the maintenance scheduler.
func (s *DatabaseStore) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("expires_at < ?", now).
		Delete(&models.CacheEntry{})
	return res.RowsAffected, res.Error
}

func parseCount(value []byte) int64 {
	var n int64
	for _, b := range value {
		if b < '0' || b > '9' {
			return 0
		}
		n = n*10 + int64(b-'0')
	}
	return n
}

func formatCount(n int64) []byte {
	if n <= 0 {
		return []byte("0")
	}
	var buf [20]byte
	pos := len(buf)
	for n > 0 {
		pos--
		buf[pos] = byte('0' + n%10)
		n /= 10
	}
	return append([]byte(nil), buf[pos:]...)
}
