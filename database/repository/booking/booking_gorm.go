package bookingRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bookly/models"

	"gorm.io/gorm"
)

type gormBookingRepo struct {
	db *gorm.DB
}

// NewGormBookingRepo constructs a BookingRepository over a GORM connection.
// The calendar_bookings table must carry the idx_booking_window unique index
// (created by database.AutoMigrate).
func NewGormBookingRepo(db *gorm.DB) BookingRepository {
	return &gormBookingRepo{db: db}
}

func (r *gormBookingRepo) Create(ctx context.Context, booking *models.Booking) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	row := *booking
	row.StartTime = row.StartTime.UTC()
	row.EndTime = row.EndTime.UTC()
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrSlotTaken
		}
		return fmt.Errorf("error creating booking: %w", err)
	}
	return nil
}

func (r *gormBookingRepo) ExistsOverlapping(ctx context.Context, start, end time.Time) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var n int64
	err := r.db.WithContext(ctx).Model(&models.Booking{}).
		Where("start_time < ? AND end_time > ?", end.UTC(), start.UTC()).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("error checking overlapping bookings: %w", err)
	}
	return n > 0, nil
}

func (r *gormBookingRepo) ListBetween(ctx context.Context, from, to time.Time) ([]models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var bookings []models.Booking
	err := r.db.WithContext(ctx).
		Where("start_time < ? AND end_time > ?", to.UTC(), from.UTC()).
		Order("start_time ASC").
		Find(&bookings).Error
	if err != nil {
		return nil, fmt.Errorf("error listing bookings: %w", err)
	}
	return bookings, nil
}
