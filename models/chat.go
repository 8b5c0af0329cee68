package models

import "time"

// TranscriptMessage is one entry of the chat history the widget sends along.
type TranscriptMessage struct {
	Text      string    `json:"text"`
	IsBot     bool      `json:"isBot"`
	Timestamp time.Time `json:"timestamp"`
}

// ChatRequest is the payload accepted by /api/chat.
type ChatRequest struct {
	Message  string              `json:"message" binding:"required"`
	State    *ConversationState  `json:"state"`
	Messages []TranscriptMessage `json:"messages,omitempty"`
}

// ChatResponse is returned for every handled turn.
type ChatResponse struct {
	Reply string            `json:"reply"`
	State ConversationState `json:"state"`
}

// LastUserMessage returns the most recent non-bot entry of the transcript.
func LastUserMessage(transcript []TranscriptMessage) (string, bool) {
	for i := len(transcript) - 1; i >= 0; i-- {
		if !transcript[i].IsBot {
			return transcript[i].Text, true
		}
	}
	return "", false
}
