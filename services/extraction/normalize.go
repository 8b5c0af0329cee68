package extraction

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Relative date keywords understood by the conversation.
const (
	DateToday    = "today"
	DateTomorrow = "tomorrow"
	DateNext     = "next"
)

var (
	isoDateRe    = regexp.MustCompile(`\b(\d{4}-\d{2}-\d{2})\b`)
	nextRe       = regexp.MustCompile(`\bnext\b`)
	emailRe      = regexp.MustCompile(`[^\s@<>(),;:"']+@[^\s@<>(),;:"']+\.[^\s@<>(),;:"']+`)
	timeRe       = regexp.MustCompile(`(?i)\b(\d{1,2})(?:[:.h](\d{2}))?\s*(a\.?m\.?|p\.?m\.?)?(?:\s|$|[,.!?])`)
	intentRe     = regexp.MustCompile(`(?i)\b(book|booking|appointment|appt|schedule|reserve|reservation|meeting|slot)s?\b`)
	namePrefixRe = regexp.MustCompile(`(?i)^(?:hi|hello|hey)?[,!.\s]*(?:my name is|my name's|name is|name:|i am|i'm|im|it's|it is|this is|call me)\s+`)
)

var (
	yesWords = map[string]bool{
		"yes": true, "y": true, "yeah": true, "yep": true, "yup": true, "sure": true,
		"ok": true, "okay": true, "correct": true, "confirm": true, "confirmed": true,
		"absolutely": true, "right": true, "perfect": true, "great": true,
	}
	noWords = map[string]bool{
		"no": true, "n": true, "nope": true, "nah": true, "cancel": true,
		"wrong": true, "incorrect": true, "not": true, "don't": true, "dont": true,
	}
)

// DetectIntent returns IntentBook when text asks for an appointment.
func DetectIntent(text string) string {
	if intentRe.MatchString(text) {
		return IntentBook
	}
	return ""
}

// CleanName strips introductions and punctuation. Text containing digits or
// an at sign, or longer than six words, is not a name.
func CleanName(text string) string {
	s := strings.TrimSpace(text)
	s = namePrefixRe.ReplaceAllString(s, "")
	s = strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r)
	})
	if s == "" || len(s) > 100 || strings.ContainsAny(s, "@0123456789") {
		return ""
	}
	words := strings.Fields(s)
	if len(words) > 6 {
		return ""
	}
	hasLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			hasLetter = true
			break
		}
	}
	if !hasLetter {
		return ""
	}
	return strings.Join(words, " ")
}

// FindEmail returns the first email-shaped token of text, lower-cased.
func FindEmail(text string) string {
	m := emailRe.FindString(text)
	m = strings.TrimRight(m, ".!?")
	return strings.ToLower(m)
}

// NormalizeDate reduces text to a relative keyword or a YYYY-MM-DD literal.
// Anything else yields "".
func NormalizeDate(text string) string {
	lower := strings.ToLower(text)
	if m := isoDateRe.FindStringSubmatch(lower); m != nil {
		return m[1]
	}
	switch {
	case strings.Contains(lower, DateToday):
		return DateToday
	case strings.Contains(lower, DateTomorrow):
		return DateTomorrow
	case nextRe.MatchString(lower):
		return DateNext
	}
	return ""
}

// NormalizeTime reduces text such as "10", "10am", "2 pm" or "14:00" to
// 24-hour HH:MM. A bare hour from 1 to 7 is read as afternoon.
func NormalizeTime(text string) string {
	for _, m := range timeRe.FindAllStringSubmatch(strings.TrimSpace(text)+" ", -1) {
		if v, ok := clockValue(m[1], m[2], m[3]); ok {
			return v
		}
	}
	return ""
}

func clockValue(hourStr, minStr, meridiem string) (string, bool) {
	hour, err := strconv.Atoi(hourStr)
	if err != nil {
		return "", false
	}
	minute := 0
	if minStr != "" {
		if minute, err = strconv.Atoi(minStr); err != nil || minute > 59 {
			return "", false
		}
	}

	mer := strings.ToLower(strings.ReplaceAll(meridiem, ".", ""))
	switch mer {
	case "am", "pm":
		if hour < 1 || hour > 12 {
			return "", false
		}
		if mer == "am" && hour == 12 {
			hour = 0
		} else if mer == "pm" && hour != 12 {
			hour += 12
		}
	default:
		if hour > 23 {
			return "", false
		}
		if minStr == "" && hour >= 1 && hour <= 7 {
			hour += 12
		}
	}
	return fmt.Sprintf("%02d:%02d", hour, minute), true
}

// ClassifyConfirmation returns ConfirmYes, ConfirmNo or "" for text. Any
// negative word makes the answer no, so "absolutely not" never confirms.
func ClassifyConfirmation(text string) string {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return unicode.IsSpace(r) || (unicode.IsPunct(r) && r != '\'')
	})
	yes := false
	for _, w := range words {
		if noWords[w] {
			return ConfirmNo
		}
		yes = yes || yesWords[w]
	}
	if yes {
		return ConfirmYes
	}
	return ""
}

// maxFreeText caps titles and descriptions, in runes.
const maxFreeText = 500

// CleanText collapses whitespace in free text used for titles and
// descriptions and cuts it to maxFreeText runes. The result is valid UTF-8.
func CleanText(text string) string {
	s := strings.Join(strings.Fields(strings.ToValidUTF8(text, "")), " ")
	if utf8.RuneCountInString(s) > maxFreeText {
		s = string([]rune(s)[:maxFreeText])
	}
	return s
}

// normalize applies the per-field normalisation both extractors share.
func normalize(field Field, value string) string {
	switch field {
	case FieldIntent:
		return DetectIntent(value)
	case FieldName:
		return CleanName(value)
	case FieldEmail:
		return FindEmail(value)
	case FieldDate:
		return NormalizeDate(value)
	case FieldTime:
		return NormalizeTime(value)
	case FieldConfirmation:
		return ClassifyConfirmation(value)
	case FieldTitle, FieldDescription:
		return CleanText(value)
	}
	return ""
}
