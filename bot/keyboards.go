package bot

import (
	"bookly/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const slotsPerRow = 3

// keyboardFor offers the choices the next step accepts.
func keyboardFor(state models.ConversationState) interface{} {
	switch state.Step {
	case models.StepTime:
		return slotKeyboard(state.AvailableSlots)
	case models.StepConfirm:
		return tgbotapi.NewOneTimeReplyKeyboard(
			tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton("Yes"), tgbotapi.NewKeyboardButton("No")),
		)
	case models.StepDate:
		return tgbotapi.NewOneTimeReplyKeyboard(
			tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton("Today"), tgbotapi.NewKeyboardButton("Tomorrow")),
		)
	}
	return removeKeyboard()
}

func slotKeyboard(slots []string) interface{} {
	if len(slots) == 0 {
		return removeKeyboard()
	}
	var rows [][]tgbotapi.KeyboardButton
	var row []tgbotapi.KeyboardButton
	for _, slot := range slots {
		row = append(row, tgbotapi.NewKeyboardButton(slot))
		if len(row) == slotsPerRow {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	kb := tgbotapi.NewReplyKeyboard(rows...)
	kb.OneTimeKeyboard = true
	return kb
}

func removeKeyboard() tgbotapi.ReplyKeyboardRemove {
	return tgbotapi.NewRemoveKeyboard(true)
}
