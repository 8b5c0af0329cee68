package conversation

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"bookly/database"
	bookingRepo "bookly/database/repository/booking"
	countersRepo "bookly/database/repository/counters"
	"bookly/models"
	"bookly/services/availability"
	"bookly/services/extraction"

	"gorm.io/gorm"
)

var testCatalog = []string{"09:00", "10:00", "11:00", "13:00", "14:00", "15:00", "16:00"}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

type recordingDispatcher struct {
	mu       sync.Mutex
	bookings []models.Booking
}

func (d *recordingDispatcher) Dispatch(_ context.Context, b models.Booking) {
	d.mu.Lock()
	d.bookings = append(d.bookings, b)
	d.mu.Unlock()
}

func (d *recordingDispatcher) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.bookings)
}

type failingExtractor struct{}

func (failingExtractor) Extract(context.Context, extraction.Request) (extraction.Result, error) {
	return extraction.Result{}, errors.New("model unavailable")
}

type brokenCounters struct{ countersRepo.CounterStore }

func (brokenCounters) DailyCount(context.Context, string, string) (int, error) {
	return 0, errors.New("connection refused")
}

type fixture struct {
	db       *gorm.DB
	clock    *fakeClock
	bookings bookingRepo.BookingRepository
	counters *countersRepo.GormCounterStore
	hooks    *recordingDispatcher
	resolver *availability.Resolver
	machine  *Machine
}

// 2026-10-19 10:30 UTC.
var testNow = time.Date(2026, 10, 19, 10, 30, 0, 0, time.UTC)

const (
	testToday    = "2026-10-19"
	testTomorrow = "2026-10-20"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenSQL("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()
	f := &fixture{
		db:    testDB(t),
		clock: &fakeClock{now: testNow},
		hooks: &recordingDispatcher{},
	}
	f.bookings = bookingRepo.NewGormBookingRepo(f.db)
	f.counters = countersRepo.NewGormCounterStore(f.db)

	resolver, err := availability.NewResolver(f.bookings, testCatalog, time.UTC, f.clock.Now)
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}
	f.resolver = resolver
	f.machine = NewMachine(Deps{
		Extractor: extraction.NewPatternExtractor(),
		Resolver:  resolver,
		Bookings:  f.bookings,
		Counters:  f.counters,
		Hooks:     f.hooks,
	}, opts)
	return f
}

func (f *fixture) book(t *testing.T, date, slot, email string) {
	t.Helper()
	start, end, err := f.resolver.SlotWindow(date, slot)
	if err != nil {
		t.Fatalf("SlotWindow: %v", err)
	}
	b := models.Booking{
		ID:          date + "-" + slot,
		Title:       DefaultBookingTitle,
		StartTime:   start,
		EndTime:     end,
		BookerEmail: email,
		Status:      models.BookingStatusConfirmed,
		CreatedAt:   testNow,
	}
	if err := f.bookings.Create(context.Background(), &b); err != nil {
		t.Fatalf("seed booking: %v", err)
	}
}

func (f *fixture) countBookings(t *testing.T) int64 {
	t.Helper()
	var n int64
	if err := f.db.Model(&models.Booking{}).Count(&n).Error; err != nil {
		t.Fatalf("count bookings: %v", err)
	}
	return n
}

// run feeds messages in order starting from state and returns every reply.
func (f *fixture) run(state models.ConversationState, messages ...string) ([]string, models.ConversationState) {
	replies := make([]string, 0, len(messages))
	for _, msg := range messages {
		var reply string
		reply, state = f.machine.Advance(context.Background(), msg, state)
		replies = append(replies, reply)
	}
	return replies, state
}

func confirmState(date, slot string) models.ConversationState {
	return models.ConversationState{
		Step:           models.StepConfirm,
		CustomerName:   "Jane Doe",
		Email:          "jane@example.com",
		Date:           date,
		Time:           slot,
		AvailableSlots: append([]string(nil), testCatalog...),
	}
}

func TestScenarioHappyPath(t *testing.T) {
	f := newFixture(t, Options{})

	replies, final := f.run(models.NewConversationState(),
		"I'd like to book", "Jane Doe", "jane@example.com", "tomorrow", "10:00", "yes")

	if final.Step != models.StepComplete {
		t.Fatalf("final step = %q, want complete", final.Step)
	}
	if !strings.Contains(replies[5], testTomorrow) || !strings.Contains(replies[5], "10:00") || !strings.Contains(replies[5], "Jane Doe") {
		t.Errorf("confirmation reply = %q", replies[5])
	}

	list, err := f.bookings.ListBetween(context.Background(),
		time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC), time.Date(2026, 10, 21, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("ListBetween: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("bookings = %d, want 1", len(list))
	}
	b := list[0]
	if b.BookerEmail != "jane@example.com" || b.CustomerName != "Jane Doe" {
		t.Errorf("booking identity = %q/%q", b.BookerEmail, b.CustomerName)
	}
	wantStart := time.Date(2026, 10, 20, 10, 0, 0, 0, time.UTC)
	if !b.StartTime.Equal(wantStart) || !b.EndTime.Equal(wantStart.Add(time.Hour)) {
		t.Errorf("window = %v-%v", b.StartTime, b.EndTime)
	}
	if b.Title != DefaultBookingTitle || b.Description != DefaultBookingDescription {
		t.Errorf("title/description = %q/%q", b.Title, b.Description)
	}
	if b.Status != models.BookingStatusConfirmed {
		t.Errorf("status = %q", b.Status)
	}

	n, err := f.counters.DailyCount(context.Background(), "jane@example.com", testToday)
	if err != nil || n != 1 {
		t.Errorf("daily count = %d, %v; want 1", n, err)
	}
	if f.hooks.count() != 1 {
		t.Errorf("hooks dispatched = %d, want 1", f.hooks.count())
	}
}

func TestScenarioBookedSlotHidden(t *testing.T) {
	f := newFixture(t, Options{})
	f.book(t, testTomorrow, "10:00", "other@example.com")

	replies, state := f.run(models.NewConversationState(),
		"I'd like to book", "Jane Doe", "jane@example.com", "tomorrow", "10:00")

	if strings.Contains(replies[3], "10:00") {
		t.Errorf("slot list still offers 10:00: %q", replies[3])
	}
	if strings.Contains(replies[4], "10:00") {
		t.Errorf("time reply still offers 10:00: %q", replies[4])
	}
	if state.Step != models.StepTime {
		t.Errorf("step = %q, want time", state.Step)
	}
	if state.HasSlot("10:00") {
		t.Errorf("snapshot contains booked slot: %v", state.AvailableSlots)
	}
}

func TestScenarioDailyQuota(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := f.counters.IncrementDaily(ctx, "jane@example.com", testToday); err != nil {
			t.Fatalf("IncrementDaily: %v", err)
		}
	}

	reply, next := f.machine.Advance(ctx, "yes", confirmState(testTomorrow, "10:00"))

	if reply != replyQuotaExceeded {
		t.Errorf("reply = %q", reply)
	}
	if next.Step != models.StepComplete {
		t.Errorf("step = %q, want complete", next.Step)
	}
	if n := f.countBookings(t); n != 0 {
		t.Errorf("bookings = %d, want 0", n)
	}
	if n, _ := f.counters.DailyCount(ctx, "jane@example.com", testToday); n != 3 {
		t.Errorf("daily count = %d, want 3", n)
	}
	if f.hooks.count() != 0 {
		t.Errorf("hooks dispatched on quota rejection")
	}
}

func TestScenarioConcurrentConfirmations(t *testing.T) {
	f := newFixture(t, Options{})
	state := confirmState(testTomorrow, "10:00")

	var wg sync.WaitGroup
	replies := make([]string, 2)
	states := make([]models.ConversationState, 2)
	for i := range replies {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s := state.Clone()
			s.Email = []string{"jane@example.com", "john@example.com"}[i]
			replies[i], states[i] = f.machine.Advance(context.Background(), "yes", s)
		}(i)
	}
	wg.Wait()

	if n := f.countBookings(t); n != 1 {
		t.Fatalf("bookings = %d, want exactly 1", n)
	}
	completed := 0
	for i, s := range states {
		switch s.Step {
		case models.StepComplete:
			completed++
		case models.StepTime:
			if s.HasSlot("10:00") {
				t.Errorf("loser %d offered the taken slot again: %v", i, s.AvailableSlots)
			}
		default:
			t.Errorf("state %d step = %q, reply %q", i, s.Step, replies[i])
		}
	}
	if completed != 1 {
		t.Errorf("completed = %d, want 1", completed)
	}
}

func TestConfirmRequiresAllFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.ConversationState)
		want   models.Step
	}{
		{"no name", func(s *models.ConversationState) { s.CustomerName = "" }, models.StepName},
		{"no email", func(s *models.ConversationState) { s.Email = "" }, models.StepEmail},
		{"no date", func(s *models.ConversationState) { s.Date = "" }, models.StepDate},
		{"no time", func(s *models.ConversationState) { s.Time = "" }, models.StepTime},
		{"no slots", func(s *models.ConversationState) { s.AvailableSlots = nil }, models.StepDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, Options{})
			state := confirmState(testTomorrow, "10:00")
			tt.mutate(&state)

			_, next := f.machine.Advance(context.Background(), "yes", state)

			if next.Step != tt.want {
				t.Errorf("step = %q, want %q", next.Step, tt.want)
			}
			if n := f.countBookings(t); n != 0 {
				t.Errorf("bookings = %d, want 0", n)
			}
		})
	}
}

func TestEveryStepRejectsInvalidInput(t *testing.T) {
	base := confirmState(testTomorrow, "10:00")
	tests := []struct {
		name    string
		state   models.ConversationState
		message string
	}{
		{"initial", models.NewConversationState(), "what's the weather"},
		{"name", models.ConversationState{Step: models.StepName}, "12345"},
		{"email", base.WithStep(models.StepEmail), "not-an-email"},
		{"date", base.WithStep(models.StepDate), "whenever"},
		{"past date", base.WithStep(models.StepDate), "2026-10-01"},
		{"time", base.WithStep(models.StepTime), "midnight"},
		{"time outside catalog", base.WithStep(models.StepTime), "12:00"},
		{"title", base.WithStep(models.StepTitle), "   "},
		{"description", base.WithStep(models.StepDescription), ""},
		{"confirm", base, "maybe later"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, Options{CollectDetails: true})
			reply, next := f.machine.Advance(context.Background(), tt.message, tt.state)
			if reply == "" {
				t.Error("empty reply")
			}
			if !reflect.DeepEqual(next, tt.state) {
				t.Errorf("state changed:\n got %+v\nwant %+v", next, tt.state)
			}
		})
	}
}

func TestInvalidEmailIsIdempotent(t *testing.T) {
	f := newFixture(t, Options{})
	start := models.ConversationState{Step: models.StepEmail, CustomerName: "Jane Doe"}

	r1, s1 := f.machine.Advance(context.Background(), "jane at example", start)
	r2, s2 := f.machine.Advance(context.Background(), "jane at example", s1)

	if r1 != r2 {
		t.Errorf("replies differ: %q vs %q", r1, r2)
	}
	if !reflect.DeepEqual(s1, s2) || !reflect.DeepEqual(s1, start) {
		t.Errorf("states differ: %+v / %+v", s1, s2)
	}
}

func TestEmailIsLowerCased(t *testing.T) {
	f := newFixture(t, Options{})
	_, next := f.machine.Advance(context.Background(), "It's Jane.Doe@Example.COM",
		models.ConversationState{Step: models.StepEmail, CustomerName: "Jane"})
	if next.Email != "jane.doe@example.com" || next.Step != models.StepDate {
		t.Errorf("got %+v", next)
	}
}

func TestDateResolution(t *testing.T) {
	tests := []struct {
		message string
		want    string
	}{
		{"today please", testToday},
		{"tomorrow", testTomorrow},
		{"sometime next week", "2026-10-26"},
		{"2026-11-02", "2026-11-02"},
	}
	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			f := newFixture(t, Options{})
			state := models.ConversationState{Step: models.StepDate, CustomerName: "Jane", Email: "jane@example.com"}
			_, next := f.machine.Advance(context.Background(), tt.message, state)
			if next.Date != tt.want || next.Step != models.StepTime {
				t.Errorf("got date %q step %q, want %q", next.Date, next.Step, tt.want)
			}
		})
	}
}

func TestTodayExcludesPastSlots(t *testing.T) {
	f := newFixture(t, Options{})
	state := models.ConversationState{Step: models.StepDate, CustomerName: "Jane", Email: "jane@example.com"}

	_, next := f.machine.Advance(context.Background(), "today", state)

	want := []string{"11:00", "13:00", "14:00", "15:00", "16:00"}
	if !reflect.DeepEqual(next.AvailableSlots, want) {
		t.Errorf("slots = %v, want %v", next.AvailableSlots, want)
	}
}

func TestFullyBookedDateStays(t *testing.T) {
	f := newFixture(t, Options{})
	for _, slot := range testCatalog {
		f.book(t, testTomorrow, slot, "other@example.com")
	}
	state := models.ConversationState{Step: models.StepDate, CustomerName: "Jane", Email: "jane@example.com"}

	reply, next := f.machine.Advance(context.Background(), "tomorrow", state)

	if !strings.Contains(reply, "fully booked") {
		t.Errorf("reply = %q", reply)
	}
	if !reflect.DeepEqual(next, state) {
		t.Errorf("state changed: %+v", next)
	}
}

func TestSlotStartedWhileChoosing(t *testing.T) {
	f := newFixture(t, Options{})
	state := models.ConversationState{
		Step: models.StepTime, CustomerName: "Jane", Email: "jane@example.com",
		Date: testToday, AvailableSlots: []string{"11:00", "13:00"},
	}
	f.clock.Set(time.Date(2026, 10, 19, 11, 5, 0, 0, time.UTC))

	_, next := f.machine.Advance(context.Background(), "11:00", state)

	if next.Step != models.StepTime || next.Time != "" {
		t.Fatalf("got %+v", next)
	}
	if !reflect.DeepEqual(next.AvailableSlots, []string{"13:00"}) {
		t.Errorf("slots = %v", next.AvailableSlots)
	}

	f.clock.Set(time.Date(2026, 10, 19, 13, 30, 0, 0, time.UTC))
	_, next = f.machine.Advance(context.Background(), "13:00", next)
	if next.Step != models.StepDate || next.Date != "" || next.AvailableSlots != nil {
		t.Errorf("day over should reset to date, got %+v", next)
	}
}

func TestDeclineResetsSchedule(t *testing.T) {
	f := newFixture(t, Options{})

	reply, next := f.machine.Advance(context.Background(), "no, that's wrong", confirmState(testTomorrow, "10:00"))

	if reply != replyDeclined {
		t.Errorf("reply = %q", reply)
	}
	want := models.ConversationState{Step: models.StepDate, CustomerName: "Jane Doe", Email: "jane@example.com"}
	if !reflect.DeepEqual(next, want) {
		t.Errorf("got %+v, want %+v", next, want)
	}
}

func TestCollectDetails(t *testing.T) {
	f := newFixture(t, Options{CollectDetails: true})
	state := confirmState(testTomorrow, "")
	state.Step = models.StepTime

	replies, final := f.run(state, "2pm", "Dental check", "Yearly cleaning", "yes")

	if final.Step != models.StepComplete {
		t.Fatalf("final = %+v, replies %q", final, replies)
	}
	list, err := f.bookings.ListBetween(context.Background(), testNow, testNow.AddDate(0, 0, 2))
	if err != nil || len(list) != 1 {
		t.Fatalf("ListBetween = %v, %v", list, err)
	}
	if list[0].Title != "Dental check" || list[0].Description != "Yearly cleaning" {
		t.Errorf("got %q/%q", list[0].Title, list[0].Description)
	}
	if list[0].StartTime.Hour() != 14 {
		t.Errorf("start = %v", list[0].StartTime)
	}
}

func TestCompleteStartsOver(t *testing.T) {
	f := newFixture(t, Options{})
	done := models.ConversationState{Step: models.StepComplete}

	reply, next := f.machine.Advance(context.Background(), "can I book another appointment?", done)
	if reply != replyAskName || next.Step != models.StepName {
		t.Errorf("got %q %+v", reply, next)
	}

	reply, next = f.machine.Advance(context.Background(), "thanks", done)
	if reply != replyOffer || next.Step != models.StepInitial {
		t.Errorf("got %q %+v", reply, next)
	}
}

func TestUnknownStepStartsOver(t *testing.T) {
	f := newFixture(t, Options{})
	_, next := f.machine.Advance(context.Background(), "hello", models.ConversationState{Step: "payment"})
	if next.Step != models.StepInitial {
		t.Errorf("step = %q", next.Step)
	}
}

func TestExtractionErrorIsNoInput(t *testing.T) {
	f := newFixture(t, Options{})
	f.machine.deps.Extractor = failingExtractor{}
	state := models.ConversationState{Step: models.StepName}

	reply, next := f.machine.Advance(context.Background(), "Jane", state)

	if reply != replyNameMissing || !reflect.DeepEqual(next, state) {
		t.Errorf("got %q %+v", reply, next)
	}
}

func TestStoreFailureRollsBackToTime(t *testing.T) {
	f := newFixture(t, Options{})
	f.machine.deps.Counters = brokenCounters{}
	state := confirmState(testTomorrow, "10:00")

	reply, next := f.machine.Advance(context.Background(), "yes", state)

	if next.Step != models.StepTime || next.Time != "" {
		t.Errorf("got %+v", next)
	}
	if !reflect.DeepEqual(next.AvailableSlots, state.AvailableSlots) {
		t.Errorf("snapshot changed: %v", next.AvailableSlots)
	}
	if strings.Contains(reply, "connection refused") {
		t.Errorf("internal error leaked: %q", reply)
	}
	if n := f.countBookings(t); n != 0 {
		t.Errorf("bookings = %d, want 0", n)
	}
}

func TestTakenAtConfirmOffersRefreshedSlots(t *testing.T) {
	f := newFixture(t, Options{})
	f.book(t, testTomorrow, "10:00", "other@example.com")

	reply, next := f.machine.Advance(context.Background(), "yes", confirmState(testTomorrow, "10:00"))

	if next.Step != models.StepTime || next.HasSlot("10:00") {
		t.Errorf("got %+v", next)
	}
	if !strings.Contains(reply, "just booked") {
		t.Errorf("reply = %q", reply)
	}
	if n := f.countBookings(t); n != 1 {
		t.Errorf("bookings = %d, want 1", n)
	}
}

func TestAdvanceDoesNotMutateInput(t *testing.T) {
	f := newFixture(t, Options{})
	state := models.ConversationState{
		Step: models.StepTime, CustomerName: "Jane", Email: "jane@example.com",
		Date: testToday, AvailableSlots: []string{"11:00", "13:00"},
	}
	f.clock.Set(time.Date(2026, 10, 19, 11, 5, 0, 0, time.UTC))

	f.machine.Advance(context.Background(), "11:00", state)

	if !reflect.DeepEqual(state.AvailableSlots, []string{"11:00", "13:00"}) {
		t.Errorf("input snapshot mutated: %v", state.AvailableSlots)
	}
}

func TestConfirmRejectsUnbookableSchedule(t *testing.T) {
	tests := []struct {
		name     string
		date     string
		slot     string
		snapshot []string
		wantStep models.Step
	}{
		{"time outside snapshot", testTomorrow, "12:00", []string{"09:00"}, models.StepTime},
		{"time outside catalog", testTomorrow, "12:00", []string{"09:00", "12:00"}, models.StepTime},
		{"past date", "2020-01-01", "09:00", []string{"09:00"}, models.StepDate},
		{"non canonical date", "tomorrow", "09:00", []string{"09:00"}, models.StepDate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, Options{})
			state := confirmState(tt.date, tt.slot)
			state.AvailableSlots = tt.snapshot

			reply, next := f.machine.Advance(context.Background(), "yes", state)

			if strings.Contains(reply, "has been booked") {
				t.Fatalf("unbookable state was committed: %q", reply)
			}
			if next.Step != tt.wantStep || next.Time != "" {
				t.Errorf("next = %+v, want step %q without a time", next, tt.wantStep)
			}
			if tt.wantStep == models.StepTime && !reflect.DeepEqual(next.AvailableSlots, testCatalog) {
				t.Errorf("slots = %v, want a fresh snapshot", next.AvailableSlots)
			}
			if n := f.countBookings(t); n != 0 {
				t.Errorf("bookings = %d, want 0", n)
			}
		})
	}
}

func TestSlotStartedWhileConfirming(t *testing.T) {
	f := newFixture(t, Options{})

	reply, next := f.machine.Advance(context.Background(), "yes", confirmState(testToday, "09:00"))

	if next.Step != models.StepTime || next.Time != "" {
		t.Fatalf("got %q %+v", reply, next)
	}
	if want := []string{"11:00", "13:00", "14:00", "15:00", "16:00"}; !reflect.DeepEqual(next.AvailableSlots, want) {
		t.Errorf("slots = %v, want %v", next.AvailableSlots, want)
	}

	f.clock.Set(time.Date(2026, 10, 19, 16, 30, 0, 0, time.UTC))
	_, next = f.machine.Advance(context.Background(), "yes", confirmState(testToday, "16:00"))
	if next.Step != models.StepDate || next.Date != "" {
		t.Errorf("day over should reset to date, got %+v", next)
	}
	if n := f.countBookings(t); n != 0 {
		t.Errorf("bookings = %d, want 0", n)
	}
}
