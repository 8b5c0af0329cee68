// Package availability computes the bookable slots of a day.
package availability

import (
	"context"
	"fmt"
	"sort"
	"time"

	bookingRepo "bookly/database/repository/booking"
	"bookly/models"
)

const (
	// DateLayout is the canonical date form used in conversation state.
	DateLayout = "2006-01-02"
	// SlotLayout is the wire form of a slot start.
	SlotLayout = "15:04"
)

// Resolver filters the fixed slot catalog against existing bookings and the clock.
type Resolver struct {
	repo    bookingRepo.BookingRepository
	catalog []string
	loc     *time.Location
	now     func() time.Time
}

// NewResolver validates catalog entries as HH:MM and keeps them in ascending
// order. A nil loc means UTC; a nil now means time.Now.
func NewResolver(repo bookingRepo.BookingRepository, catalog []string, loc *time.Location, now func() time.Time) (*Resolver, error) {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	if len(catalog) == 0 {
		return nil, fmt.Errorf("availability: empty slot catalog")
	}

	seen := make(map[string]bool, len(catalog))
	slots := make([]string, 0, len(catalog))
	for _, s := range catalog {
		t, err := time.Parse(SlotLayout, s)
		if err != nil {
			return nil, fmt.Errorf("availability: invalid slot %q: %w", s, err)
		}
		norm := t.Format(SlotLayout)
		if seen[norm] {
			continue
		}
		seen[norm] = true
		slots = append(slots, norm)
	}
	sort.Strings(slots)

	return &Resolver{repo: repo, catalog: slots, loc: loc, now: now}, nil
}

// Catalog returns a copy of the configured slots.
func (r *Resolver) Catalog() []string {
	return append([]string(nil), r.catalog...)
}

// Now returns the current instant in the booking location.
func (r *Resolver) Now() time.Time {
	return r.now().In(r.loc)
}

// Today returns the current date in the booking location.
func (r *Resolver) Today() time.Time {
	n := r.Now()
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, r.loc)
}

// Location is the zone slot times are interpreted in.
func (r *Resolver) Location() *time.Location {
	return r.loc
}

// ParseDate parses a canonical YYYY-MM-DD date in the booking location.
func (r *Resolver) ParseDate(date string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, date, r.loc)
}

// SlotWindow returns the absolute [start, end) of slot on date.
func (r *Resolver) SlotWindow(date, slot string) (time.Time, time.Time, error) {
	day, err := r.ParseDate(date)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("availability: invalid date %q: %w", date, err)
	}
	clock, err := time.Parse(SlotLayout, slot)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("availability: invalid slot %q: %w", slot, err)
	}
	start := time.Date(day.Year(), day.Month(), day.Day(), clock.Hour(), clock.Minute(), 0, 0, r.loc)
	return start, start.Add(models.SlotDuration), nil
}

// AvailableSlots returns the catalog slots of date that overlap no booking
// and, when date is today, start strictly after now. An empty result means
// the day is fully booked.
func (r *Resolver) AvailableSlots(ctx context.Context, date string) ([]string, error) {
	day, err := r.ParseDate(date)
	if err != nil {
		return nil, fmt.Errorf("availability: invalid date %q: %w", date, err)
	}

	bookings, err := r.repo.ListBetween(ctx, day, day.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("availability: load bookings for %s: %w", date, err)
	}

	now := r.Now()
	isToday := day.Equal(r.Today())

	slots := make([]string, 0, len(r.catalog))
	for _, slot := range r.catalog {
		start, end, err := r.SlotWindow(date, slot)
		if err != nil {
			return nil, err
		}
		if isToday && !start.After(now) {
			continue
		}
		if overlapsAny(bookings, start, end) {
			continue
		}
		slots = append(slots, slot)
	}
	return slots, nil
}

// HasStarted reports whether slot on date no longer starts in the future.
func (r *Resolver) HasStarted(date, slot string) (bool, error) {
	start, _, err := r.SlotWindow(date, slot)
	if err != nil {
		return false, err
	}
	return !start.After(r.Now()), nil
}

func overlapsAny(bookings []models.Booking, start, end time.Time) bool {
	for _, b := range bookings {
		if b.Overlaps(start, end) {
			return true
		}
	}
	return false
}
