// Package bot wires the survey engine, its sinks and the Telegram transport
// into a runnable application.
package bot

import (
	"context"
	"fmt"
	"time"

	"renovabot/bootstrap"
	"renovabot/config"
	"renovabot/drive"
	"renovabot/session"
	"renovabot/sheets"
	"renovabot/survey"
	tg "renovabot/telegram"
	"renovabot/telegram/router"
)

// App holds the assembled application.
type App struct {
	cfg      *config.Config
	engine   *survey.Engine
	notifier *adminNotifier
}

// Bootstrap initializes infrastructure (logger, Postgres, migrations),
// the Google sinks and the survey engine.
func Bootstrap(cfg *config.Config) (*App, error) {
	res, err := bootstrap.Run(bootstrap.Options{Config: cfg})
	if err != nil {
		return nil, err
	}

	questions, err := loadQuestions(cfg.Survey.QuestionsPath)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()

	rows, err := sheets.New(ctx, sheets.Options{
		CredentialsFile: cfg.Google.CredentialsFile,
		SpreadsheetID:   cfg.Google.SpreadsheetID,
		SheetName:       cfg.Google.SheetName,
		Questions:       questions,
	})
	if err != nil {
		return nil, fmt.Errorf("bot: sheets init: %w", err)
	}

	var folders survey.FolderCreator
	if !cfg.Google.DriveDisabled {
		dc, err := drive.New(ctx, drive.Options{
			CredentialsFile: cfg.Google.CredentialsFile,
			ParentFolderID:  cfg.Google.DriveParentFolderID,
		})
		if err != nil {
			return nil, fmt.Errorf("bot: drive init: %w", err)
		}
		folders = dc
	}

	notifier := newAdminNotifier(cfg.Telegram.AdminChatID)

	engine, err := survey.New(survey.Options{
		Store:       session.NewPostgresStore(res.DB),
		Questions:   questions,
		SkipToken:   cfg.Survey.SkipToken,
		SessionTTL:  time.Duration(cfg.Survey.SessionTTLSeconds) * time.Second,
		SinkTimeout: time.Duration(cfg.Survey.SinkTimeoutSeconds) * time.Second,
		Rows:        rows,
		Folders:     folders,
		Notifier:    notifier,
	})
	if err != nil {
		return nil, err
	}

	return &App{cfg: cfg, engine: engine, notifier: notifier}, nil
}

// loadQuestions reads the questionnaire file, falling back to the built-in
// sequence when no path is configured.
func loadQuestions(path string) ([]survey.Question, error) {
	if path == "" {
		return survey.DefaultQuestions(), nil
	}
	qs, err := survey.LoadQuestions(path)
	if err != nil {
		return nil, fmt.Errorf("bot: questions load: %w", err)
	}
	return qs, nil
}

// TelegramRunOptions assembles registry, middleware chain and routes for the
// Telegram runtime.
func (a *App) TelegramRunOptions() (tg.RunOptions, error) {
	reg := tg.NewRegistry()
	a.registerHandlers(reg)

	routes := router.CommandRoutes(reg, router.CommandRouteOptions{
		AdminID: a.cfg.Telegram.AdminChatID,
	})
	routes = append(routes, router.TextRoutes(reg, router.TextOptions{
		SurveyText:      a.handleSurveyText,
		UnknownDocument: a.handleDocument,
	})...)
	routes = append(routes, router.CallbackRoute(reg, router.CallbackOptions{}))

	return tg.RunOptions{
		Config:      a.cfg,
		Registry:    reg,
		Middlewares: tg.DefaultMiddlewares(a.cfg, nil),
		Routes:      routes,
		OnStart: func(ctx context.Context, rt tg.Runtime) error {
			a.notifier.SetBot(rt.Bot)
			return nil
		},
		OnStop: func(ctx context.Context, rt tg.Runtime) error {
			return nil
		},
	}, nil
}
