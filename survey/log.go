package survey

import (
	"context"
	"log/slog"

	"renovabot/logger"
)

const logComponent = "service.survey"

func logSurvey(ctx context.Context, level slog.Level, event string, attrs ...slog.Attr) {
	logger.Event(ctx, logComponent, level, event, attrs...)
}

func logStoreFailure(ctx context.Context, event string, userID int64, err error) {
	logger.Error(ctx, logComponent, event,
		slog.String("status", "fail"),
		slog.Int64("user_id", userID),
		slog.String("err", err.Error()),
		slog.String("cause", "session_store"),
	)
}
