package countersRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bookly/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCounterStore keeps counters in the daily_booking_counts and
// chat_rate_limits tables.
type GormCounterStore struct {
	db *gorm.DB
}

func NewGormCounterStore(db *gorm.DB) *GormCounterStore {
	return &GormCounterStore{db: db}
}

func (s *GormCounterStore) DailyCount(ctx context.Context, email, date string) (int, error) {
	var row models.DailyBookingCount
	err := s.db.WithContext(ctx).
		Where("email = ? AND booking_date = ?", email, date).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read daily count: %w", err)
	}
	return row.BookingCount, nil
}

func (s *GormCounterStore) IncrementDaily(ctx context.Context, email, date string) (int, error) {
	db := s.db.WithContext(ctx)
	row := models.DailyBookingCount{Email: email, BookingDate: date, BookingCount: 1}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}, {Name: "booking_date"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"booking_count": gorm.Expr("daily_booking_counts.booking_count + 1")}),
	}).Create(&row).Error
	if err != nil {
		return 0, fmt.Errorf("increment daily count: %w", err)
	}
	return s.DailyCount(ctx, email, date)
}

func (s *GormCounterStore) TouchRateLimit(ctx context.Context, clientID string, now time.Time) (models.RateLimitRecord, error) {
	rec := models.RateLimitRecord{IPAddress: clientID}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("ip_address = ?", clientID).First(&rec).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		rec = rec.Touch(now.UTC())
		return tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&rec).Error
	})
	if err != nil {
		return rec, fmt.Errorf("touch rate limit: %w", err)
	}
	return rec, nil
}

// Prune drops rate-limit records idle for longer than the reset window and
// daily counters for dates before now. The day is taken in now's location.
func (s *GormCounterStore) Prune(ctx context.Context, now time.Time) (int64, error) {
	db := s.db.WithContext(ctx)
	stale := db.Where("last_request < ?", now.UTC().Add(-models.RateLimitWindow)).Delete(&models.RateLimitRecord{})
	if stale.Error != nil {
		return 0, fmt.Errorf("prune rate limits: %w", stale.Error)
	}
	old := db.Where("booking_date < ?", now.Format("2006-01-02")).Delete(&models.DailyBookingCount{})
	if old.Error != nil {
		return stale.RowsAffected, fmt.Errorf("prune daily counts: %w", old.Error)
	}
	return stale.RowsAffected + old.RowsAffected, nil
}
