package bot

import (
	"context"
	"fmt"

	"renovabot/buildinfo"
	tg "renovabot/telegram"
	"renovabot/telegram/commands"
	tghelpers "renovabot/telegram/helpers"
	"renovabot/telegram/keyboard"

	tele "gopkg.in/telebot.v4"
)

const startSurveyCallback = "start_survey"

const welcomeText = "👋 Welcome to the Renovation Project Bot! I will guide you through the process of submitting information about completed renovation projects."

const helpText = `🏗️ *Renovation project intake*

I collect project details question by question and file them for the team.

/start — begin a new submission
/status — show your current question
/cancel — abort the current submission
/help — show this message

Optional questions offer a skip button; required ones do not.`

// registerHandlers fills the registry with survey commands and callbacks.
func (a *App) registerHandlers(reg *tg.Registry) {
	reg.RegisterCommand("/start", commands.Command{
		Handler:     a.handleStart,
		Description: "Begin a new project submission",
		Aliases:     []string{"survey"},
	})
	reg.RegisterCommand("/help", commands.Command{
		Handler:     a.handleHelp,
		Description: "How to use this bot",
	})
	reg.RegisterCommand("/cancel", commands.Command{
		Handler:     a.handleCancel,
		Description: "Abort the current submission",
	})
	reg.RegisterCommand("/status", commands.Command{
		Handler:     a.handleStatus,
		Description: "Show survey progress",
	})
	reg.RegisterCommand("/version", commands.Command{
		Handler:     a.handleVersion,
		Description: "Build information",
		AdminOnly:   true,
		Hidden:      true,
	})

	_ = reg.RegisterCallback(startSurveyCallback, a.handleStartCallback)
}

func (a *App) handleStart(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "start")
	return a.startSurvey(ctx, c)
}

func (a *App) handleStartCallback(c tele.Context) error {
	// same flow as /start, reached from the help inline button
	ctx := tghelpers.WithHandler(c, "start_callback")
	return a.startSurvey(ctx, c)
}

// startSurvey greets the user, then opens a fresh session and sends the first
// question. The greeting is skipped when the session store is down so the
// failure message stands alone.
func (a *App) startSurvey(ctx context.Context, c tele.Context) error {
	r, err := a.engine.Start(ctx, c.Sender().ID)
	if err == nil {
		_ = tghelpers.SendText(c, welcomeText, &tele.SendOptions{
			ReplyMarkup: keyboard.RemoveKeyboard(),
		})
	}
	return sendReply(c, a.engine.SkipToken(), r)
}

func (a *App) handleHelp(c tele.Context) error {
	markup := keyboard.InlineButtons([]keyboard.InlineBtn{
		{Text: "🚀 Start survey", Unique: startSurveyCallback},
	})
	return tghelpers.SendMD(c, helpText, markup)
}

func (a *App) handleCancel(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "cancel")
	r, _ := a.engine.Cancel(ctx, c.Sender().ID)
	return sendReply(c, a.engine.SkipToken(), r)
}

func (a *App) handleStatus(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "status")
	r, _ := a.engine.Status(ctx, c.Sender().ID)
	return sendReply(c, a.engine.SkipToken(), r)
}

func (a *App) handleVersion(c tele.Context) error {
	text := fmt.Sprintf("renovabot %s (%s)", buildinfo.Version, buildinfo.Commit)
	if buildinfo.Date != "" {
		text += " built " + buildinfo.Date
	}
	return tghelpers.SendText(c, text)
}

// handleSurveyText feeds non-command text into the survey engine.
func (a *App) handleSurveyText(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "survey_text")
	r, _ := a.engine.HandleText(ctx, c.Sender().ID, c.Text())
	return sendReply(c, a.engine.SkipToken(), r)
}

// handleDocument rejects attachments: answers are text only.
func (a *App) handleDocument(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "document")
	if !a.engine.InProgress(ctx, c.Sender().ID) {
		return nil
	}
	return tghelpers.SendText(c, "Please answer with text. Files can go into the project folder after submission.")
}
