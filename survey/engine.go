// Package survey implements the intake questionnaire state machine: one
// session per user, one answer per inbound message, completion fan-out to
// the configured sinks.
package survey

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"context"
	"log/slog"

	"renovabot/session"
)

// NotSpecified is the sentinel recorded when a skippable question is skipped.
const NotSpecified = "Not specified"

const (
	guidanceText    = "No survey in progress. Send /start to begin a new submission."
	unavailableText = "⚠️ The service is temporarily unavailable. Please try again in a few minutes."
	corruptedText   = "⚠️ Your survey progress could not be restored. Send /start to begin again."
)

// Options wires an Engine.
type Options struct {
	Store       session.Store
	Questions   []Question
	SkipToken   string
	SessionTTL  time.Duration
	SinkTimeout time.Duration

	Rows     RowAppender
	Folders  FolderCreator // nil disables folder creation
	Notifier Notifier      // nil disables admin notifications
}

// Engine owns the question sequence and per-user progress. It keeps no
// session state in process; every operation reads the store fresh.
type Engine struct {
	store       session.Store
	questions   []Question
	skipToken   string
	ttl         time.Duration
	sinkTimeout time.Duration

	rows     RowAppender
	folders  FolderCreator
	notifier Notifier
}

// New validates options and builds an Engine.
func New(opts Options) (*Engine, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("survey: store is required")
	}
	if err := ValidateQuestions(opts.Questions); err != nil {
		return nil, fmt.Errorf("survey: %w", err)
	}
	if opts.Rows == nil {
		return nil, fmt.Errorf("survey: row appender is required")
	}
	if strings.TrimSpace(opts.SkipToken) == "" {
		return nil, fmt.Errorf("survey: skip token is required")
	}
	if opts.SessionTTL <= 0 {
		return nil, fmt.Errorf("survey: session ttl must be positive")
	}
	if opts.SinkTimeout <= 0 {
		return nil, fmt.Errorf("survey: sink timeout must be positive")
	}
	return &Engine{
		store:       opts.Store,
		questions:   opts.Questions,
		skipToken:   opts.SkipToken,
		ttl:         opts.SessionTTL,
		sinkTimeout: opts.SinkTimeout,
		rows:        opts.Rows,
		folders:     opts.Folders,
		notifier:    opts.Notifier,
	}, nil
}

// QuestionCount reports the configured number of steps.
func (e *Engine) QuestionCount() int {
	return len(e.questions)
}

// SkipToken returns the reserved skip input.
func (e *Engine) SkipToken() string {
	return e.skipToken
}

// Start creates a fresh session at step 0 and returns the first prompt.
// An existing unfinished session is discarded.
func (e *Engine) Start(ctx context.Context, userID int64) (Reply, error) {
	sess := &session.Session{UserID: userID, Step: 0, Answers: []string{}}
	if err := e.store.Set(ctx, userID, sess, e.ttl); err != nil {
		logStoreFailure(ctx, "survey.start", userID, err)
		return reply(textMsg(unavailableText, KeyboardRemove)), err
	}
	logSurvey(ctx, slog.LevelInfo, "survey.start",
		slog.Int64("user_id", userID),
		slog.Int("steps_total", len(e.questions)),
	)
	return reply(e.prompt(0)), nil
}

// Cancel deletes the user's session, if any, and acknowledges.
func (e *Engine) Cancel(ctx context.Context, userID int64) (Reply, error) {
	_, err := e.store.Get(ctx, userID)
	switch {
	case errors.Is(err, session.ErrNotFound):
		return reply(textMsg(guidanceText, KeyboardRemove)), nil
	case errors.Is(err, session.ErrUnavailable):
		logStoreFailure(ctx, "survey.cancel", userID, err)
		return reply(textMsg(unavailableText, KeyboardRemove)), err
	}
	// corrupted sessions are deleted on cancel as well

	if err := e.store.Delete(ctx, userID); err != nil {
		logStoreFailure(ctx, "survey.cancel", userID, err)
		return reply(textMsg(unavailableText, KeyboardRemove)), err
	}
	logSurvey(ctx, slog.LevelInfo, "survey.cancel", slog.Int64("user_id", userID))
	return reply(textMsg("Survey cancelled. Use /start to begin a new survey.", KeyboardRemove)), nil
}

// Status reports the user's current position in the questionnaire.
func (e *Engine) Status(ctx context.Context, userID int64) (Reply, error) {
	sess, err := e.store.Get(ctx, userID)
	switch {
	case errors.Is(err, session.ErrNotFound):
		return reply(textMsg(guidanceText, KeyboardNone)), nil
	case errors.Is(err, session.ErrCorrupted):
		return e.recoverCorrupted(ctx, userID, err)
	case err != nil:
		logStoreFailure(ctx, "survey.status", userID, err)
		return reply(textMsg(unavailableText, KeyboardNone)), err
	}

	if sess.Step < 0 || sess.Step >= len(e.questions) {
		// same rule as HandleText: a step outside the configured sequence
		// (e.g. a stale row after the questionnaire was shortened) is corrupted
		return e.recoverCorrupted(ctx, userID, fmt.Errorf("%w: step %d out of range", session.ErrCorrupted, sess.Step))
	}

	q := e.questions[sess.Step]
	text := fmt.Sprintf("Survey in progress: question %d of %d (%s). Send /cancel to abort.",
		sess.Step+1, len(e.questions), q.Field)
	return reply(textMsg(text, KeyboardNone)), nil
}

// HandleText consumes one free-text message for the user's active session:
// it validates the input against the current question, advances the step,
// and triggers completion after the last accepted answer. Without a session
// it returns the generic guidance message.
func (e *Engine) HandleText(ctx context.Context, userID int64, text string) (Reply, error) {
	sess, err := e.store.Get(ctx, userID)
	switch {
	case errors.Is(err, session.ErrNotFound):
		return reply(textMsg(guidanceText, KeyboardNone)), nil
	case errors.Is(err, session.ErrCorrupted):
		return e.recoverCorrupted(ctx, userID, err)
	case err != nil:
		logStoreFailure(ctx, "survey.answer", userID, err)
		return reply(textMsg(unavailableText, KeyboardNone)), err
	}

	if sess.Step < 0 || sess.Step >= len(e.questions) {
		// a session past the last question should have been finalized and
		// deleted already; treat the leftover as corrupted
		return e.recoverCorrupted(ctx, userID, fmt.Errorf("%w: step %d out of range", session.ErrCorrupted, sess.Step))
	}
	if len(sess.Answers) != sess.Step {
		return e.recoverCorrupted(ctx, userID, fmt.Errorf("%w: %d answers at step %d", session.ErrCorrupted, len(sess.Answers), sess.Step))
	}

	q := e.questions[sess.Step]
	answer, rejection := e.resolveAnswer(q, text)
	if rejection != "" {
		logSurvey(ctx, slog.LevelDebug, "survey.answer.rejected",
			slog.Int64("user_id", userID),
			slog.Int("step", sess.Step),
			slog.String("field", q.Field),
		)
		return reply(textMsg(rejection, KeyboardNone), e.prompt(sess.Step)), nil
	}

	sess.Answers = append(sess.Answers, answer)
	sess.Step++

	logSurvey(ctx, slog.LevelDebug, "survey.answer.accepted",
		slog.Int64("user_id", userID),
		slog.Int("step", sess.Step),
		slog.Int("steps_total", len(e.questions)),
		slog.String("field", q.Field),
		slog.Int("answer_len", utf8.RuneCountInString(answer)),
	)

	if sess.Step == len(e.questions) {
		return e.finalize(ctx, userID, sess.Answers)
	}

	if err := e.store.Set(ctx, userID, sess, e.ttl); err != nil {
		logStoreFailure(ctx, "survey.answer", userID, err)
		return reply(textMsg(unavailableText, KeyboardNone)), err
	}
	return reply(e.prompt(sess.Step)), nil
}

// InProgress reports whether the user currently has a live session.
// Store errors count as "no session" so routing can fall through safely.
func (e *Engine) InProgress(ctx context.Context, userID int64) bool {
	_, err := e.store.Get(ctx, userID)
	return err == nil
}

// resolveAnswer applies skip semantics and validation in the fixed order:
// skip first, then required/empty, then length. It returns the accepted
// value or a non-empty rejection message.
func (e *Engine) resolveAnswer(q Question, text string) (string, string) {
	if text == e.skipToken {
		if q.Required {
			return "", fmt.Sprintf("⚠️ %s is required and cannot be skipped.", q.Field)
		}
		return NotSpecified, ""
	}

	answer := strings.TrimSpace(text)
	if answer == "" {
		if q.Required {
			return "", fmt.Sprintf("⚠️ %s cannot be empty.", q.Field)
		}
		return NotSpecified, ""
	}

	if limit := q.Limit(); limit > 0 {
		if got := utf8.RuneCountInString(answer); got > limit {
			return "", fmt.Sprintf("⚠️ %s is too long: %d characters, the limit is %d.", q.Field, got, limit)
		}
	}
	return answer, ""
}

// prompt builds the outbound message for a question. Skippable questions get
// the one-button skip keyboard; required questions clear it.
func (e *Engine) prompt(step int) Message {
	q := e.questions[step]
	kb := KeyboardRemove
	if !q.Required {
		kb = KeyboardSkip
	}
	return mdMsg(q.Text, kb)
}

// recoverCorrupted drops a malformed session and asks the user to restart.
// No partial recovery is attempted.
func (e *Engine) recoverCorrupted(ctx context.Context, userID int64, cause error) (Reply, error) {
	logSurvey(ctx, slog.LevelWarn, "survey.session.corrupted",
		slog.Int64("user_id", userID),
		slog.String("err", cause.Error()),
	)
	if err := e.store.Delete(ctx, userID); err != nil {
		logStoreFailure(ctx, "survey.session.corrupted", userID, err)
	}
	return reply(textMsg(corruptedText, KeyboardRemove)), nil
}
