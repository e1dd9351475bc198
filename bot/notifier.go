package bot

import (
	"context"
	"fmt"
	"sync/atomic"

	tghelpers "renovabot/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// adminNotifier forwards submission notifications to the admin chat. The bot
// instance only exists after the Telegram runtime starts, so it is injected
// late via SetBot.
type adminNotifier struct {
	chatID int64
	bot    atomic.Pointer[tele.Bot]
}

func newAdminNotifier(chatID int64) *adminNotifier {
	return &adminNotifier{chatID: chatID}
}

func (n *adminNotifier) SetBot(b *tele.Bot) {
	n.bot.Store(b)
}

func (n *adminNotifier) Notify(ctx context.Context, text string) error {
	if n.chatID == 0 {
		return nil
	}
	b := n.bot.Load()
	if b == nil {
		return fmt.Errorf("notifier: bot not started")
	}
	return tghelpers.SendTo(b, tele.ChatID(n.chatID), text)
}
