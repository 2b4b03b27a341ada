// Package main contains the entrypoint for the Telegram bot application.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbot "github.com/go-telegram/bot"

	"scopebot/internal/ai"
	"scopebot/internal/auth"
	"scopebot/internal/bot"
	"scopebot/internal/bot/handlers"
	"scopebot/internal/bot/tasks"
	"scopebot/internal/command"
	"scopebot/internal/config"
	"scopebot/internal/database"
	"scopebot/internal/history"
	"scopebot/internal/logger"
	"scopebot/internal/scope"
	"scopebot/internal/telegram"
	"scopebot/internal/usage"
	"scopebot/internal/userconfig"
	"scopebot/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop()
	os.Exit(exitCode)
}

// run initializes all application components, starts the bot, and returns an
// exit code (0 for success, 1 for failure).
func run(ctx context.Context) int {
	configPath := flag.String("config", "./config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", *configPath, "error", err)
		return 1
	}

	log := logger.NewLogger(cfg.Logger.Level, cfg.Logger.JSON)
	slog.SetDefault(log)
	log.Info("Logger initialized", "level", cfg.Logger.Level, "json", cfg.Logger.JSON)

	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		log.Error("Failed to connect to database", "path", cfg.Database.Path, "error", err)
		return 1
	}
	defer database.CloseDB(db)
	store := database.NewStore(db, log)

	aiClient, err := ai.NewClient(ctx, cfg.Gemini, log)
	if err != nil {
		log.Error("Failed to initialize AI client", "error", err)
		return 1
	}

	tg, err := telegram.NewTelegramBot(cfg.Telegram.Token, log,
		tgbot.WithMiddlewares(logger.Middleware(log)))
	if err != nil {
		log.Error("Failed to create Telegram bot", "error", err)
		return 1
	}

	cfg.Telegram.BotInfo, err = tg.GetMe(ctx)
	if err != nil {
		log.Error("Failed to get bot info", "error", err)
		return 1
	}
	log.Info("Retrieved bot info", "bot_id", cfg.Telegram.BotInfo.ID, "bot_username", cfg.Telegram.BotInfo.Username)

	ident := scope.BotIdentity{
		ID:    cfg.Telegram.BotInfo.ID,
		Token: cfg.Telegram.Token,
		Name:  cfg.Telegram.BotInfo.Username,
	}

	defaults := &userconfig.Config{
		InitMessage: cfg.Bot.DefaultInitMessage,
		Model:       cfg.Gemini.Model,
		Temperature: cfg.Gemini.Temperature,
	}

	deps := handlers.HandlerDeps{
		Logger:    log,
		Config:    cfg,
		KV:        store,
		Configs:   userconfig.NewStore(store, defaults, log),
		Histories: history.NewStore(store, log),
		Usage:     usage.NewTracker(store, log),
		AI:        aiClient,
		Replier:   telegram.NewSender(tg, log),
		Versions:  version.NewChecker(cfg.Update.BaseURL, cfg.Update.Branch, cfg.Update.Timeout),
	}

	registry, err := handlers.RegisterAll(deps)
	if err != nil {
		log.Error("Failed to build command registry", "error", err)
		return 1
	}

	resolver := auth.NewTelegramResolver(tg, store, log)
	authorizer := auth.NewAuthorizer(resolver, cfg.Bot.GroupShareMode, log)
	dispatcher := command.NewDispatcher(registry, authorizer, deps.Replier, log)

	tg.RegisterHandler(tgbot.HandlerTypeMessageText, "", tgbot.MatchTypePrefix,
		handlers.NewChatHandler(deps, dispatcher, ident))

	// Initial menu publish; the menu_sync task repairs later failures.
	for menuScope, syncErr := range command.SyncMenu(ctx, tg, registry, cfg.Bot.HideCommands, log) {
		if syncErr != nil {
			log.Warn("Initial menu sync failed", "scope", menuScope, "error", syncErr)
		}
	}

	taskMap := tasks.RegisterAllTasks(tasks.TaskDeps{
		Logger:   log,
		Store:    store,
		Registry: registry,
		Menu:     tg,
		Config:   cfg,
	})
	sched, err := bot.NewScheduler(log, &cfg.Scheduler, taskMap)
	if err != nil {
		log.Error("Failed to create scheduler", "error", err)
		return 1
	}

	app := bot.NewBot(log, cfg, db, store, tg, sched)

	log.Info("Starting bot...")
	runErr := app.Run(ctx)
	log.Info("Bot run loop finished. Initiating shutdown...")

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error("Bot stopped due to error", "error", runErr)
		time.Sleep(time.Second)
		return 1
	}

	log.Info("Bot stopped gracefully.")
	time.Sleep(time.Second)
	return 0
}
