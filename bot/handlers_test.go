package bot

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	"renovabot/session"
	"renovabot/survey"
)

// recordingContext captures outbound texts; the embedded interface covers
// the methods the handlers never touch.
type recordingContext struct {
	tele.Context
	sender *tele.User
	values map[string]any
	sent   []string
}

func newRecordingContext(userID int64) *recordingContext {
	return &recordingContext{
		sender: &tele.User{ID: userID},
		values: make(map[string]any),
	}
}

func (c *recordingContext) Sender() *tele.User  { return c.sender }
func (c *recordingContext) Chat() *tele.Chat    { return &tele.Chat{ID: c.sender.ID} }
func (c *recordingContext) Update() tele.Update { return tele.Update{ID: 1} }
func (c *recordingContext) Get(key string) any  { return c.values[key] }
func (c *recordingContext) Set(key string, v any) {
	c.values[key] = v
}

func (c *recordingContext) Send(what any, _ ...any) error {
	if s, ok := what.(string); ok {
		c.sent = append(c.sent, s)
	}
	return nil
}

type nopRows struct{}

func (nopRows) AppendRow(context.Context, survey.Submission) error { return nil }

type downStore struct{}

func (downStore) Get(context.Context, int64) (*session.Session, error) {
	return nil, fmt.Errorf("%w: down", session.ErrUnavailable)
}

func (downStore) Set(context.Context, int64, *session.Session, time.Duration) error {
	return fmt.Errorf("%w: down", session.ErrUnavailable)
}

func (downStore) Delete(context.Context, int64) error {
	return fmt.Errorf("%w: down", session.ErrUnavailable)
}

func newTestApp(t *testing.T, store session.Store) *App {
	t.Helper()
	if store == nil {
		store = session.NewMemoryStore()
	}
	engine, err := survey.New(survey.Options{
		Store:       store,
		Questions:   survey.DefaultQuestions(),
		SkipToken:   "Skip this question ⏭️",
		SessionTTL:  time.Minute,
		SinkTimeout: time.Second,
		Rows:        nopRows{},
	})
	require.NoError(t, err)
	return &App{engine: engine, notifier: newAdminNotifier(0)}
}

func TestStartGreetsBeforeFirstQuestion(t *testing.T) {
	app := newTestApp(t, nil)
	c := newRecordingContext(7)

	require.NoError(t, app.handleStart(c))
	require.Len(t, c.sent, 2)
	require.Equal(t, welcomeText, c.sent[0])
	require.Equal(t, survey.DefaultQuestions()[0].Text, c.sent[1])
}

func TestStartCallbackGreetsLikeCommand(t *testing.T) {
	app := newTestApp(t, nil)
	c := newRecordingContext(8)

	require.NoError(t, app.handleStartCallback(c))
	require.Len(t, c.sent, 2)
	require.Equal(t, welcomeText, c.sent[0])
}

func TestStartSkipsGreetingWhenStoreDown(t *testing.T) {
	app := newTestApp(t, downStore{})
	c := newRecordingContext(9)

	require.NoError(t, app.handleStart(c))
	require.Len(t, c.sent, 1)
	require.NotEqual(t, welcomeText, c.sent[0])
}
