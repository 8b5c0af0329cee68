package models

import "time"

// DailyBookingCount caps how many bookings one sender may create per day.
type DailyBookingCount struct {
	Email        string `bson:"email" json:"email" gorm:"primaryKey;size:320"`
	BookingDate  string `bson:"booking_date" json:"booking_date" gorm:"primaryKey;size:10"` // YYYY-MM-DD
	BookingCount int    `bson:"booking_count" json:"booking_count" gorm:"not null;default:0"`
}

func (DailyBookingCount) TableName() string { return "daily_booking_counts" }

// RateLimitRecord tracks chat requests per client address.
type RateLimitRecord struct {
	IPAddress    string    `bson:"ip_address" json:"ip_address" gorm:"primaryKey;size:64"`
	RequestCount int       `bson:"request_count" json:"request_count" gorm:"not null;default:0"`
	LastRequest  time.Time `bson:"last_request" json:"last_request" gorm:"index"`
}

func (RateLimitRecord) TableName() string { return "chat_rate_limits" }

// RateLimitWindow is the idle period after which a client's count resets.
const RateLimitWindow = time.Minute

// Touch applies one request at now and returns the updated record.
func (r RateLimitRecord) Touch(now time.Time) RateLimitRecord {
	if r.LastRequest.IsZero() || now.Sub(r.LastRequest) > RateLimitWindow {
		r.RequestCount = 1
	} else {
		r.RequestCount++
	}
	r.LastRequest = now
	return r
}
