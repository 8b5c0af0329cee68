package conversation

import (
	"errors"
	"time"

	"bookly/services/availability"
	"bookly/services/extraction"
)

var (
	errDateInvalid = errors.New("unrecognised date")
	errDatePast    = errors.New("date is in the past")
)

// resolveDate turns a normalised date candidate into a canonical YYYY-MM-DD
// that is today or later in the booking location.
func (m *Machine) resolveDate(value string) (string, error) {
	today := m.deps.Resolver.Today()

	var day time.Time
	switch value {
	case "":
		return "", errDateInvalid
	case extraction.DateToday:
		day = today
	case extraction.DateTomorrow:
		day = today.AddDate(0, 0, 1)
	case extraction.DateNext:
		day = today.AddDate(0, 0, 7)
	default:
		parsed, err := m.deps.Resolver.ParseDate(value)
		if err != nil {
			return "", errDateInvalid
		}
		day = parsed
	}

	if day.Before(today) {
		return "", errDatePast
	}
	return day.Format(availability.DateLayout), nil
}
