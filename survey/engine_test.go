package survey

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"renovabot/session"
)

const testSkipToken = "Skip this question ⏭️"

func testQuestions() []Question {
	return []Question{
		{Field: "Client Name", Text: "name?", Required: true, MaxLength: intPtr(10)},
		{Field: "Room Type", Text: "room?", Required: true},
		{Field: "Location", Text: "location?"},
	}
}

type fakeRows struct {
	mu   sync.Mutex
	subs []Submission
	err  error
}

func (f *fakeRows) AppendRow(_ context.Context, sub Submission) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.subs = append(f.subs, sub)
	return nil
}

type fakeFolders struct {
	mu        sync.Mutex
	folder    ProjectFolder
	createErr error
	fileErr   error
	files     []string
	created   int
}

func (f *fakeFolders) CreateProjectFolder(_ context.Context, _, _, _ string) (ProjectFolder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return ProjectFolder{}, f.createErr
	}
	f.created++
	return f.folder, nil
}

func (f *fakeFolders) CreateTextFile(_ context.Context, _, name, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fileErr != nil {
		return f.fileErr
	}
	f.files = append(f.files, name)
	return nil
}

type fakeNotifier struct {
	mu    sync.Mutex
	texts []string
	err   error
}

func (f *fakeNotifier) Notify(_ context.Context, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.texts = append(f.texts, text)
	return nil
}

type engineFixture struct {
	engine   *Engine
	store    *session.MemoryStore
	rows     *fakeRows
	folders  *fakeFolders
	notifier *fakeNotifier
}

func newFixture(t *testing.T, mutate func(*Options)) *engineFixture {
	t.Helper()
	fx := &engineFixture{
		store: session.NewMemoryStore(),
		rows:  &fakeRows{},
		folders: &fakeFolders{
			folder: ProjectFolder{ID: "folder-1", URL: "https://drive.google.com/folder-1"},
		},
		notifier: &fakeNotifier{},
	}
	opts := Options{
		Store:       fx.store,
		Questions:   testQuestions(),
		SkipToken:   testSkipToken,
		SessionTTL:  time.Minute,
		SinkTimeout: time.Second,
		Rows:        fx.rows,
		Folders:     fx.folders,
		Notifier:    fx.notifier,
	}
	if mutate != nil {
		mutate(&opts)
	}
	engine, err := New(opts)
	require.NoError(t, err)
	fx.engine = engine
	return fx
}

// runToLastQuestion answers everything except the final question.
func (fx *engineFixture) runToLastQuestion(t *testing.T, userID int64) {
	t.Helper()
	ctx := context.Background()
	_, err := fx.engine.Start(ctx, userID)
	require.NoError(t, err)
	_, err = fx.engine.HandleText(ctx, userID, "Alice")
	require.NoError(t, err)
	_, err = fx.engine.HandleText(ctx, userID, "Kitchen")
	require.NoError(t, err)
}

func TestStartCreatesFreshSession(t *testing.T) {
	fx := newFixture(t, nil)
	ctx := context.Background()

	r, err := fx.engine.Start(ctx, 42)
	require.NoError(t, err)
	require.Len(t, r.Messages, 1)
	require.Equal(t, "name?", r.Messages[0].Text)
	require.True(t, r.Messages[0].Markdown)
	require.Equal(t, KeyboardRemove, r.Messages[0].Keyboard)

	sess, err := fx.store.Get(ctx, 42)
	require.NoError(t, err)
	require.Equal(t, 0, sess.Step)
	require.Empty(t, sess.Answers)
}

func TestStartDiscardsUnfinishedSession(t *testing.T) {
	fx := newFixture(t, nil)
	ctx := context.Background()

	_, err := fx.engine.Start(ctx, 42)
	require.NoError(t, err)
	_, err = fx.engine.HandleText(ctx, 42, "Alice")
	require.NoError(t, err)

	_, err = fx.engine.Start(ctx, 42)
	require.NoError(t, err)

	sess, err := fx.store.Get(ctx, 42)
	require.NoError(t, err)
	require.Equal(t, 0, sess.Step)
	require.Empty(t, sess.Answers)
}

func TestRequiredQuestionRejectsSkipAndEmpty(t *testing.T) {
	fx := newFixture(t, nil)
	ctx := context.Background()

	_, err := fx.engine.Start(ctx, 7)
	require.NoError(t, err)

	r, err := fx.engine.HandleText(ctx, 7, testSkipToken)
	require.NoError(t, err)
	require.Len(t, r.Messages, 2)
	require.Contains(t, r.Messages[0].Text, "Client Name")
	require.Contains(t, r.Messages[0].Text, "cannot be skipped")
	require.Equal(t, "name?", r.Messages[1].Text)

	r, err = fx.engine.HandleText(ctx, 7, "   ")
	require.NoError(t, err)
	require.Contains(t, r.Messages[0].Text, "cannot be empty")

	sess, err := fx.store.Get(ctx, 7)
	require.NoError(t, err)
	require.Equal(t, 0, sess.Step)
}

func TestAnswerLengthLimitNamesBothNumbers(t *testing.T) {
	fx := newFixture(t, nil)
	ctx := context.Background()

	_, err := fx.engine.Start(ctx, 7)
	require.NoError(t, err)

	r, err := fx.engine.HandleText(ctx, 7, strings.Repeat("x", 12))
	require.NoError(t, err)
	require.Contains(t, r.Messages[0].Text, "12")
	require.Contains(t, r.Messages[0].Text, "10")

	sess, err := fx.store.Get(ctx, 7)
	require.NoError(t, err)
	require.Equal(t, 0, sess.Step)
	require.Empty(t, sess.Answers)
}

func TestSkippedOptionalAnswerRecordsSentinel(t *testing.T) {
	fx := newFixture(t, nil)
	ctx := context.Background()
	fx.runToLastQuestion(t, 99)

	r, err := fx.engine.HandleText(ctx, 99, testSkipToken)
	require.NoError(t, err)

	require.Len(t, fx.rows.subs, 1)
	sub := fx.rows.subs[0]
	require.Equal(t, int64(99), sub.UserID)
	require.NotEmpty(t, sub.ID)
	require.Equal(t, []FieldValue{
		{Field: "Client Name", Value: "Alice"},
		{Field: "Room Type", Value: "Kitchen"},
		{Field: "Location", Value: NotSpecified},
	}, sub.Fields)
	require.Equal(t, "https://drive.google.com/folder-1", sub.FolderURL)

	last := r.Messages[len(r.Messages)-1].Text
	require.Contains(t, last, "successfully saved")
	require.Contains(t, last, "https://drive.google.com/folder-1")

	_, err = fx.store.Get(ctx, 99)
	require.ErrorIs(t, err, session.ErrNotFound)
}

func TestCompletionRunsSoftSinks(t *testing.T) {
	fx := newFixture(t, nil)
	fx.runToLastQuestion(t, 5)

	_, err := fx.engine.HandleText(context.Background(), 5, "Springfield")
	require.NoError(t, err)

	require.Equal(t, []string{"project-summary.txt"}, fx.folders.files)
	require.Len(t, fx.notifier.texts, 1)
	require.Contains(t, fx.notifier.texts[0], "📢 New Project Submitted!")
	require.Contains(t, fx.notifier.texts[0], "Alice")
	require.Contains(t, fx.notifier.texts[0], "https://drive.google.com/folder-1")
}

func TestRowAppendFailureStillDeletesSession(t *testing.T) {
	fx := newFixture(t, nil)
	fx.rows.err = errors.New("quota exceeded")
	ctx := context.Background()
	fx.runToLastQuestion(t, 11)

	r, err := fx.engine.HandleText(ctx, 11, "Springfield")
	require.Error(t, err)
	last := r.Messages[len(r.Messages)-1].Text
	require.Contains(t, last, "error occurred while saving")

	_, err = fx.store.Get(ctx, 11)
	require.ErrorIs(t, err, session.ErrNotFound)
}

func TestFolderCreationFailureAbortsSubmission(t *testing.T) {
	fx := newFixture(t, nil)
	fx.folders.createErr = errors.New("permission denied")
	ctx := context.Background()
	fx.runToLastQuestion(t, 12)

	r, err := fx.engine.HandleText(ctx, 12, "Springfield")
	require.Error(t, err)
	last := r.Messages[len(r.Messages)-1].Text
	require.Contains(t, last, "Could not create the project folder")

	require.Empty(t, fx.rows.subs)
	_, err = fx.store.Get(ctx, 12)
	require.ErrorIs(t, err, session.ErrNotFound)
}

func TestSoftSinkFailuresDoNotFailSubmission(t *testing.T) {
	fx := newFixture(t, nil)
	fx.folders.fileErr = errors.New("upload failed")
	fx.notifier.err = errors.New("chat not found")
	ctx := context.Background()
	fx.runToLastQuestion(t, 13)

	r, err := fx.engine.HandleText(ctx, 13, "Springfield")
	require.NoError(t, err)
	require.Contains(t, r.Messages[len(r.Messages)-1].Text, "successfully saved")
	require.Len(t, fx.rows.subs, 1)
}

func TestDisabledFolderSinkLeavesURLEmpty(t *testing.T) {
	fx := newFixture(t, func(o *Options) {
		o.Folders = nil
	})
	ctx := context.Background()
	fx.runToLastQuestion(t, 14)

	r, err := fx.engine.HandleText(ctx, 14, "Springfield")
	require.NoError(t, err)
	require.Len(t, fx.rows.subs, 1)
	require.Empty(t, fx.rows.subs[0].FolderURL)
	require.NotContains(t, r.Messages[len(r.Messages)-1].Text, "Project folder:")
}

func TestCancelDeletesSessionAndGuides(t *testing.T) {
	fx := newFixture(t, nil)
	ctx := context.Background()

	_, err := fx.engine.Start(ctx, 21)
	require.NoError(t, err)

	r, err := fx.engine.Cancel(ctx, 21)
	require.NoError(t, err)
	require.Contains(t, r.Messages[0].Text, "Survey cancelled")

	r, err = fx.engine.HandleText(ctx, 21, "stray text")
	require.NoError(t, err)
	require.Equal(t, guidanceText, r.Messages[0].Text)
	require.Empty(t, fx.rows.subs)
}

func TestCancelWithoutSessionGuides(t *testing.T) {
	fx := newFixture(t, nil)

	r, err := fx.engine.Cancel(context.Background(), 22)
	require.NoError(t, err)
	require.Equal(t, guidanceText, r.Messages[0].Text)
}

func TestStatusReportsProgress(t *testing.T) {
	fx := newFixture(t, nil)
	ctx := context.Background()

	r, err := fx.engine.Status(ctx, 31)
	require.NoError(t, err)
	require.Equal(t, guidanceText, r.Messages[0].Text)

	_, err = fx.engine.Start(ctx, 31)
	require.NoError(t, err)
	_, err = fx.engine.HandleText(ctx, 31, "Alice")
	require.NoError(t, err)

	r, err = fx.engine.Status(ctx, 31)
	require.NoError(t, err)
	require.Contains(t, r.Messages[0].Text, "question 2 of 3")
	require.Contains(t, r.Messages[0].Text, "Room Type")
}

func TestCorruptedSessionIsDroppedAndReported(t *testing.T) {
	fx := newFixture(t, nil)
	ctx := context.Background()

	bad := &session.Session{UserID: 41, Step: 1, Answers: []string{"a", "b", "c"}}
	require.NoError(t, fx.store.Set(ctx, 41, bad, time.Minute))

	r, err := fx.engine.HandleText(ctx, 41, "hello")
	require.NoError(t, err)
	require.Equal(t, corruptedText, r.Messages[0].Text)

	_, err = fx.store.Get(ctx, 41)
	require.ErrorIs(t, err, session.ErrNotFound)
}

func TestStatusDropsSessionPastLastQuestion(t *testing.T) {
	fx := newFixture(t, nil)
	ctx := context.Background()

	// leftover row from a longer questionnaire than the engine now runs
	stale := &session.Session{UserID: 42, Step: 3, Answers: []string{"a", "b", "c"}}
	require.NoError(t, fx.store.Set(ctx, 42, stale, time.Minute))

	r, err := fx.engine.Status(ctx, 42)
	require.NoError(t, err)
	require.Equal(t, corruptedText, r.Messages[0].Text)

	_, err = fx.store.Get(ctx, 42)
	require.ErrorIs(t, err, session.ErrNotFound)
}

func TestOptionalEmptyAnswerBecomesSentinel(t *testing.T) {
	fx := newFixture(t, nil)
	ctx := context.Background()
	fx.runToLastQuestion(t, 51)

	_, err := fx.engine.HandleText(ctx, 51, "   ")
	require.NoError(t, err)
	require.Len(t, fx.rows.subs, 1)
	require.Equal(t, NotSpecified, fx.rows.subs[0].Fields[2].Value)
}

func TestSkipTokenAnswerIsNeverStoredVerbatim(t *testing.T) {
	fx := newFixture(t, nil)
	ctx := context.Background()
	fx.runToLastQuestion(t, 52)

	_, err := fx.engine.HandleText(ctx, 52, testSkipToken)
	require.NoError(t, err)
	require.Len(t, fx.rows.subs, 1)
	for _, fv := range fx.rows.subs[0].Fields {
		require.NotEqual(t, testSkipToken, fv.Value)
	}
}

func TestSummaryPrecedesOutcomeMessage(t *testing.T) {
	fx := newFixture(t, nil)
	ctx := context.Background()
	fx.runToLastQuestion(t, 61)

	r, err := fx.engine.HandleText(ctx, 61, "Springfield")
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(r.Messages), 2)
	require.Contains(t, r.Messages[0].Text, "Summary of the submitted project")
	require.Contains(t, r.Messages[0].Text, "Springfield")
}

func TestUnavailableStoreSurfacesRetryMessage(t *testing.T) {
	fx := newFixture(t, func(o *Options) {
		o.Store = failingStore{}
	})

	r, err := fx.engine.HandleText(context.Background(), 71, "hello")
	require.Error(t, err)
	require.Equal(t, unavailableText, r.Messages[0].Text)
}

type failingStore struct{}

func (failingStore) Get(context.Context, int64) (*session.Session, error) {
	return nil, fmt.Errorf("%w: connection refused", session.ErrUnavailable)
}

func (failingStore) Set(context.Context, int64, *session.Session, time.Duration) error {
	return fmt.Errorf("%w: connection refused", session.ErrUnavailable)
}

func (failingStore) Delete(context.Context, int64) error {
	return fmt.Errorf("%w: connection refused", session.ErrUnavailable)
}
