package conversation

import (
	"fmt"
	"strings"
)

const (
	replyOffer            = "Hi! I can help you book an appointment. Just let me know when you'd like to book one."
	replyAskName          = "I'd be happy to help you book an appointment! Could you tell me your name?"
	replyNameMissing      = "I didn't quite catch your name. Could you please tell me again?"
	replyEmailInvalid     = "That doesn't look like a valid email address. I need one to send you the booking confirmation, something like name@example.com."
	replyAskDate          = "Perfect! What date would you like to book? (You can say something like 'tomorrow' or give me a date as YYYY-MM-DD)"
	replyDateInvalid      = "I couldn't understand that date. Please say 'today', 'tomorrow', or give me a date as YYYY-MM-DD."
	replyDatePast         = "That date is already in the past. Could you please choose today or a later date?"
	replyAvailabilityDown = "I'm having trouble checking availability right now. Please try again in a moment."
	replyAskTitle         = "What should I call this appointment?"
	replyAskDescription   = "Thanks! Could you add a short description of what the appointment is about?"
	replyDeclined         = "No problem! Let's start over. What date would you like to book?"
	replyQuotaExceeded    = "I'm sorry, but you've reached the maximum number of bookings for today. Please try again tomorrow."
)

func replyThanksName(name string) string {
	return fmt.Sprintf("Thanks %s! What's your email address so I can send you the booking confirmation?", name)
}

func replyFullyBooked(date string) string {
	return fmt.Sprintf("I'm sorry, but %s is fully booked. Could you please choose another date?", date)
}

func replySlots(date string, slots []string) string {
	return fmt.Sprintf("Great! Here are the available time slots for %s: %s. What time would you prefer?", date, strings.Join(slots, ", "))
}

func replyTimeUnavailable(slots []string) string {
	return fmt.Sprintf("I'm sorry, but that time isn't available. Please choose from these times: %s", strings.Join(slots, ", "))
}

func replyDayPassed(date string) string {
	return fmt.Sprintf("I'm sorry, all remaining times on %s have passed. What other date would you like?", date)
}

func replyConfirm(date, slot, name, title string) string {
	if title != "" {
		return fmt.Sprintf("Perfect! Just to confirm: You want to book %q for %s at %s under the name %s. Is this correct? (Yes/No)", title, date, slot, name)
	}
	return fmt.Sprintf("Perfect! Just to confirm: You want to book an appointment for %s at %s under the name %s. Is this correct? (Yes/No)", date, slot, name)
}

func replyConfirmAgain(date, slot string) string {
	return fmt.Sprintf("Sorry, I didn't catch that. Please reply Yes to confirm your booking for %s at %s, or No to choose another date.", date, slot)
}

func replyBooked(date, slot, name string) string {
	return fmt.Sprintf("Great! Your appointment has been booked for %s at %s under the name %s. Is there anything else I can help you with?", date, slot, name)
}

func replySlotTaken(date string, slots []string) string {
	return fmt.Sprintf("I'm sorry, that time was just booked by someone else. Here are the remaining times for %s: %s. Which would you prefer?", date, strings.Join(slots, ", "))
}

func replySlotTakenDayFull(date string) string {
	return fmt.Sprintf("I'm sorry, that time was just booked by someone else and %s is now fully booked. What other date would you like?", date)
}

func replySaveFailed(slots []string) string {
	return fmt.Sprintf("I'm sorry, something went wrong while saving your booking. Please choose a time again: %s", strings.Join(slots, ", "))
}
