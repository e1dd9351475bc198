package middleware

import (
	"fmt"
	"log/slog"

	"renovabot/logger"
	tghelpers "renovabot/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// AccessOptions defines how allow-list and admin-only checks behave.
type AccessOptions struct {
	// AllowedUserIDs lists Telegram user IDs permitted to use the bot.
	// An empty list means open mode: every user is allowed.
	AllowedUserIDs []int64
	AdminID        int64
}

// Allowed reports whether the given user ID passes the allow-list.
func (o AccessOptions) Allowed(userID int64) bool {
	if len(o.AllowedUserIDs) == 0 {
		return true
	}
	for _, id := range o.AllowedUserIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// AllowListMiddleware rejects updates from users outside the allow-list
// before any downstream handler runs. Callback queries are acked first so
// the client does not keep a spinner for a denied user.
func AllowListMiddleware(opts AccessOptions) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			sender := c.Sender()
			if sender == nil {
				return nil
			}
			if opts.Allowed(sender.ID) {
				return next(c)
			}

			ctx := tghelpers.BuildContext(c)
			logger.Warn(ctx, "tg", "access.denied",
				slog.String("outcome", "denied"),
				slog.Int64("user_id", sender.ID),
			)

			if c.Callback() != nil {
				_ = c.Respond(&tele.CallbackResponse{Text: "Access denied"})
			}
			return tghelpers.SendText(c, fmt.Sprintf(
				"⛔ You do not have access to this bot.\nYour ID: %d", sender.ID))
		}
	}
}

// WithAdminCheck wraps a command handler enforcing admin-only execution.
// Without a configured admin ID the handler stays unreachable.
func WithAdminCheck(opts AccessOptions, h tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		if opts.AdminID == 0 || c.Sender().ID != opts.AdminID {
			return nil
		}
		return h(c)
	}
}
