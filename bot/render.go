package bot

import (
	"renovabot/survey"
	tghelpers "renovabot/telegram/helpers"
	"renovabot/telegram/keyboard"

	tele "gopkg.in/telebot.v4"
)

// sendReply delivers every message of an engine reply through the async
// sender, translating keyboard hints into telebot markup.
func sendReply(c tele.Context, skipToken string, r survey.Reply) error {
	for _, msg := range r.Messages {
		var markup *tele.ReplyMarkup
		switch msg.Keyboard {
		case survey.KeyboardSkip:
			markup = keyboard.ReplyButtons([]string{skipToken})
		case survey.KeyboardRemove:
			markup = keyboard.RemoveKeyboard()
		}

		opts := &tele.SendOptions{ReplyMarkup: markup}
		if msg.Markdown {
			opts.ParseMode = tele.ModeMarkdown
		}
		if err := tghelpers.SendText(c, msg.Text, opts); err != nil {
			return err
		}
	}
	return nil
}
