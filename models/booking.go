package models

import "time"

// Booking statuses.
const (
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
)

// SlotDuration is the fixed length of every bookable slot.
const SlotDuration = time.Hour

// Booking represents a persisted appointment.
type Booking struct {
	ID           string    `bson:"id" json:"id" gorm:"primaryKey;size:36"`
	Title        string    `bson:"title" json:"title" gorm:"not null"`
	Description  string    `bson:"description,omitempty" json:"description,omitempty"`
	StartTime    time.Time `bson:"start_time" json:"start_time" gorm:"not null;uniqueIndex:idx_booking_window,priority:1"`
	EndTime      time.Time `bson:"end_time" json:"end_time" gorm:"not null;uniqueIndex:idx_booking_window,priority:2"`
	BookerEmail  string    `bson:"booker_email" json:"booker_email" gorm:"not null;index"`
	CustomerName string    `bson:"customer_name,omitempty" json:"customer_name,omitempty"`
	PhoneNumber  string    `bson:"phone_number,omitempty" json:"phone_number,omitempty"`
	Status       string    `bson:"status" json:"status"` // "pending" or "confirmed"
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
}

// TableName keeps the relational table aligned with the document collection.
func (Booking) TableName() string { return "calendar_bookings" }

// Overlaps reports whether the booking window intersects [start, end).
func (b Booking) Overlaps(start, end time.Time) bool {
	return b.StartTime.Before(end) && b.EndTime.After(start)
}
