package extraction

import (
	"encoding/json"
	"fmt"
	"strings"
)

const systemPrompt = `You are a friendly booking assistant. Extract booking information from the user's message.
Extract information even from messages with typos.
Answer with exactly one tagged line for the requested field, in the form TAG: value, followed by an optional short friendly sentence.
If the message does not contain the requested information write TAG: none.
Formats:
- INTENT: book, when the user wants to make an appointment
- NAME: the person's name
- EMAIL: the email address
- DATE: YYYY-MM-DD, or today, tomorrow, next
- TIME: HH:MM in 24-hour format, only one of the available slots
- CONFIRM: yes or no
- TITLE: a short title for the appointment
- DESCRIPTION: a one-sentence description
Do not mention that you are an AI.`

func buildPrompt(req Request, tag Tag) string {
	state, err := json.Marshal(req.State)
	if err != nil {
		state = []byte("{}")
	}

	var b strings.Builder
	b.WriteString(systemPrompt)
	fmt.Fprintf(&b, "\n\nCurrent state: %s\n", state)
	if len(req.State.AvailableSlots) > 0 {
		fmt.Fprintf(&b, "Available time slots: %s\n", strings.Join(req.State.AvailableSlots, ", "))
	}
	fmt.Fprintf(&b, "Requested field: %s\n\nUser message: %s\n", tag, req.Text)
	return b.String()
}
