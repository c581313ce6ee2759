package progression

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sproutlog/sproutlog/models"
)

// GormStore implements RecordStore on a relational database. Each Update
// runs in one transaction holding a row lock on the user's record, so
// concurrent awards to the same user serialize while different users stay
// fully independent. Deadlocks and lock timeouts are retried a few times
// before the error is surfaced.
type GormStore struct {
	db         *gorm.DB
	maxRetries int
}

// NewGormStore wraps db as a RecordStore.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db, maxRetries: 3}
}

// Update implements RecordStore.
func (s *GormStore) Update(ctx context.Context, userID uint, mutate func(rec *models.ProgressionRecord) error) error {
	var lastErr error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * 20 * time.Millisecond):
			}
		}

		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var rec models.ProgressionRecord
			missing := false
			err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("user_id = ?", userID).
				First(&rec).Error
			switch {
			case err == nil:
			case errors.Is(err, gorm.ErrRecordNotFound):
				// First activity: the record starts at level 1 with no XP.
				rec = models.ProgressionRecord{UserID: userID, Level: 1}
				missing = true
			default:
				return err
			}

			if err := mutate(&rec); err != nil {
				return err
			}

			if missing {
				// Two first awards can race here; the duplicate-key loser
				// retries and takes the locked-read path.
				return tx.Create(&rec).Error
			}
			return tx.Save(&rec).Error
		})
		if err == nil {
			return nil
		}
		if !retryableTxError(err) {
			return err
		}
		lastErr = err
	}
	return lastErr
}

// retryableTxError reports whether the transaction hit a transient conflict
// worth re-running: MySQL deadlock (1213), lock wait timeout (1205), or the
// duplicate-key race between two first awards (1062).
func retryableTxError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "Deadlock found") ||
		strings.Contains(msg, "Lock wait timeout") ||
		strings.Contains(msg, "Duplicate entry") ||
		strings.Contains(msg, "Error 1213") ||
		strings.Contains(msg, "Error 1205") ||
		strings.Contains(msg, "Error 1062")
}
