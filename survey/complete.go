package survey

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"renovabot/telegram/format"
)

// finalize runs the completion fan-out for a finished answer set. The session
// is deleted no matter how the sinks behave: a failed submission never leaves
// the user stuck mid-survey.
func (e *Engine) finalize(ctx context.Context, userID int64, answers []string) (Reply, error) {
	defer e.deleteSession(ctx, userID)

	msgs := []Message{
		mdMsg(e.summaryText(answers)+"\n\nProcessing your data…", KeyboardRemove),
	}

	var folder ProjectFolder
	if e.folders != nil {
		fctx, cancel := e.sinkContext(ctx)
		f, err := e.folders.CreateProjectFolder(fctx,
			e.fieldValue(answers, 0), e.fieldValue(answers, 1), e.fieldValue(answers, 2))
		cancel()
		if err != nil {
			// folder creation is the anchor for everything else; give up here
			logSurvey(ctx, slog.LevelError, "survey.finalize.folder",
				slog.String("status", "fail"),
				slog.Int64("user_id", userID),
				slog.String("err", err.Error()),
			)
			msgs = append(msgs, textMsg(fmt.Sprintf(
				"❌ Could not create the project folder: %s. Please try again later or contact support.",
				err), KeyboardRemove))
			return reply(msgs...), fmt.Errorf("survey: create folder: %w", err)
		}
		folder = f
	}

	sub := Submission{
		ID:          uuid.NewString(),
		UserID:      userID,
		SubmittedAt: time.Now(),
		Fields:      e.fields(answers),
		FolderURL:   folder.URL,
	}

	// the remaining sinks are independent of each other; run them together
	var (
		wg     sync.WaitGroup
		rowErr error
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		rctx, cancel := e.sinkContext(ctx)
		defer cancel()
		rowErr = e.rows.AppendRow(rctx, sub)
	}()

	if e.folders != nil && folder.ID != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sctx, cancel := e.sinkContext(ctx)
			defer cancel()
			if err := e.folders.CreateTextFile(sctx, folder.ID, "project-summary.txt", e.summaryFileContent(sub)); err != nil {
				logSurvey(ctx, slog.LevelWarn, "survey.finalize.summary_file",
					slog.String("status", "fail"),
					slog.Int64("user_id", userID),
					slog.String("err", err.Error()),
				)
			}
		}()
	}

	if e.notifier != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			nctx, cancel := e.sinkContext(ctx)
			defer cancel()
			if err := e.notifier.Notify(nctx, e.adminNotification(sub)); err != nil {
				logSurvey(ctx, slog.LevelWarn, "survey.finalize.notify",
					slog.String("status", "fail"),
					slog.Int64("user_id", userID),
					slog.String("err", err.Error()),
				)
			}
		}()
	}

	wg.Wait()

	if rowErr != nil {
		logSurvey(ctx, slog.LevelError, "survey.finalize.row",
			slog.String("status", "fail"),
			slog.Int64("user_id", userID),
			slog.String("submission_id", sub.ID),
			slog.String("err", rowErr.Error()),
		)
		msgs = append(msgs, textMsg(fmt.Sprintf(
			"❌ An error occurred while saving your data: %s. Please try again later or contact support.",
			rowErr), KeyboardRemove))
		return reply(msgs...), fmt.Errorf("survey: append row: %w", rowErr)
	}

	logSurvey(ctx, slog.LevelInfo, "survey.finalize",
		slog.String("status", "ok"),
		slog.Int64("user_id", userID),
		slog.String("submission_id", sub.ID),
		slog.String("folder_url", folder.URL),
	)

	confirm := "✅ Project data has been successfully saved! Thank you for your submission."
	if folder.URL != "" {
		confirm += "\n📂 Project folder: " + folder.URL
	}
	msgs = append(msgs, textMsg(confirm, KeyboardRemove))
	return reply(msgs...), nil
}

// deleteSession removes the session on its own deadline so that a cancelled
// inbound context cannot leave a completed-but-undeleted session behind.
func (e *Engine) deleteSession(ctx context.Context, userID int64) {
	dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.sinkTimeout)
	defer cancel()
	if err := e.store.Delete(dctx, userID); err != nil {
		logStoreFailure(ctx, "survey.finalize.delete", userID, err)
	}
}

func (e *Engine) sinkContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), e.sinkTimeout)
}

func (e *Engine) fields(answers []string) []FieldValue {
	out := make([]FieldValue, len(e.questions))
	for i, q := range e.questions {
		out[i] = FieldValue{Field: q.Field, Value: answers[i]}
	}
	return out
}

func (e *Engine) fieldValue(answers []string, idx int) string {
	if idx < 0 || idx >= len(answers) {
		return NotSpecified
	}
	return answers[idx]
}

func (e *Engine) summaryText(answers []string) string {
	var b strings.Builder
	b.WriteString("*Summary of the submitted project:*")
	for i, q := range e.questions {
		b.WriteString("\n")
		b.WriteString(q.Field)
		b.WriteString(": ")
		escaped, err := format.EscapeMarkdown(answers[i], format.MarkdownV1)
		if err != nil {
			escaped = answers[i]
		}
		b.WriteString(escaped)
	}
	return b.String()
}

func (e *Engine) summaryFileContent(sub Submission) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Submission %s\n", sub.ID)
	fmt.Fprintf(&b, "Submitted at: %s\n\n", sub.SubmittedAt.Format(time.RFC3339))
	for _, fv := range sub.Fields {
		fmt.Fprintf(&b, "%s: %s\n", fv.Field, fv.Value)
	}
	return b.String()
}

func (e *Engine) adminNotification(sub Submission) string {
	var b strings.Builder
	b.WriteString("📢 New Project Submitted!")
	for _, fv := range sub.Fields {
		b.WriteString("\n")
		b.WriteString(fv.Field)
		b.WriteString(": ")
		b.WriteString(fv.Value)
	}
	if sub.FolderURL != "" {
		b.WriteString("\n📂 Folder: ")
		b.WriteString(sub.FolderURL)
	}
	return b.String()
}
