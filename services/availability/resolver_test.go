package availability

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"bookly/models"
)

type fakeRepo struct {
	bookings []models.Booking
	err      error
}

func (f *fakeRepo) Create(_ context.Context, b *models.Booking) error {
	f.bookings = append(f.bookings, *b)
	return nil
}

func (f *fakeRepo) ExistsOverlapping(_ context.Context, start, end time.Time) (bool, error) {
	return overlapsAny(f.bookings, start, end), f.err
}

func (f *fakeRepo) ListBetween(_ context.Context, from, to time.Time) ([]models.Booking, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.Booking
	for _, b := range f.bookings {
		if b.Overlaps(from, to) {
			out = append(out, b)
		}
	}
	return out, nil
}

var testNow = time.Date(2026, 10, 19, 10, 30, 0, 0, time.UTC)

func newTestResolver(t *testing.T, repo *fakeRepo, loc *time.Location) *Resolver {
	t.Helper()
	r, err := NewResolver(repo, []string{"13:00", "09:00", "10:00", "11:00", "09:00"}, loc, func() time.Time { return testNow })
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}
	return r
}

func TestNewResolverNormalizesCatalog(t *testing.T) {
	r := newTestResolver(t, &fakeRepo{}, nil)
	want := []string{"09:00", "10:00", "11:00", "13:00"}
	if got := r.Catalog(); !reflect.DeepEqual(got, want) {
		t.Errorf("Catalog() = %v, want %v", got, want)
	}
	if r.Location() != time.UTC {
		t.Errorf("nil location should default to UTC")
	}
}

func TestNewResolverRejectsBadCatalog(t *testing.T) {
	if _, err := NewResolver(&fakeRepo{}, nil, nil, nil); err == nil {
		t.Error("expected error for empty catalog")
	}
	if _, err := NewResolver(&fakeRepo{}, []string{"9am"}, nil, nil); err == nil {
		t.Error("expected error for malformed slot")
	}
}

func TestAvailableSlots(t *testing.T) {
	booked := models.Booking{
		StartTime: time.Date(2026, 10, 20, 10, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2026, 10, 20, 11, 0, 0, 0, time.UTC),
	}
	tests := []struct {
		name string
		date string
		want []string
	}{
		{"today drops started slots", "2026-10-19", []string{"11:00", "13:00"}},
		{"booked slot hidden", "2026-10-20", []string{"09:00", "11:00", "13:00"}},
		{"free day", "2026-10-21", []string{"09:00", "10:00", "11:00", "13:00"}},
	}
	r := newTestResolver(t, &fakeRepo{bookings: []models.Booking{booked}}, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.AvailableSlots(context.Background(), tt.date)
			if err != nil {
				t.Fatalf("AvailableSlots: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAvailableSlotsFullyBooked(t *testing.T) {
	repo := &fakeRepo{}
	r := newTestResolver(t, repo, nil)
	for _, slot := range r.Catalog() {
		start, end, _ := r.SlotWindow("2026-10-22", slot)
		repo.bookings = append(repo.bookings, models.Booking{StartTime: start, EndTime: end})
	}

	got, err := r.AvailableSlots(context.Background(), "2026-10-22")
	if err != nil {
		t.Fatalf("AvailableSlots: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected a fully booked day, got %v", got)
	}
}

func TestAvailableSlotsErrors(t *testing.T) {
	r := newTestResolver(t, &fakeRepo{err: errors.New("down")}, nil)
	if _, err := r.AvailableSlots(context.Background(), "2026-10-20"); err == nil {
		t.Error("expected repository error")
	}
	if _, err := r.AvailableSlots(context.Background(), "20/10/2026"); err == nil {
		t.Error("expected invalid date error")
	}
}

func TestSlotWindowUsesLocation(t *testing.T) {
	loc := time.FixedZone("EAT", 3*60*60)
	r := newTestResolver(t, &fakeRepo{}, loc)

	start, end, err := r.SlotWindow("2026-10-20", "09:00")
	if err != nil {
		t.Fatalf("SlotWindow: %v", err)
	}
	if want := time.Date(2026, 10, 20, 6, 0, 0, 0, time.UTC); !start.Equal(want) {
		t.Errorf("start = %v, want %v", start.UTC(), want)
	}
	if end.Sub(start) != models.SlotDuration {
		t.Errorf("window length = %v", end.Sub(start))
	}
}

func TestHasStarted(t *testing.T) {
	r := newTestResolver(t, &fakeRepo{}, nil)
	tests := []struct {
		date, slot string
		want       bool
	}{
		{"2026-10-19", "10:00", true},
		{"2026-10-19", "11:00", false},
		{"2026-10-18", "13:00", true},
		{"2026-10-20", "09:00", false},
	}
	for _, tt := range tests {
		got, err := r.HasStarted(tt.date, tt.slot)
		if err != nil {
			t.Fatalf("HasStarted(%s %s): %v", tt.date, tt.slot, err)
		}
		if got != tt.want {
			t.Errorf("HasStarted(%s %s) = %v, want %v", tt.date, tt.slot, got, tt.want)
		}
	}
}

func TestToday(t *testing.T) {
	loc := time.FixedZone("late", 14*60*60)
	r := newTestResolver(t, &fakeRepo{}, loc)
	if got := r.Today().Format(DateLayout); got != "2026-10-20" {
		t.Errorf("Today() = %s, want the booking location's date", got)
	}
}
