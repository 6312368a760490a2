package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/mkfrx/desk/config"
	"github.com/mkfrx/desk/internal"
	"github.com/mkfrx/desk/internal/clients"
	"github.com/mkfrx/desk/internal/services/auth"
	"github.com/mkfrx/desk/internal/setup"
)

const generatedConfigPath = "config.gen.yaml"

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.Get()
	var creds setup.Credentials
	if err != nil {
		// No usable config yet: walk through the first-run wizard.
		cfg, creds, err = setup.Run(generatedConfigPath)
		if err != nil {
			logger.Fatal("setup aborted", zap.Error(err))
		}
	}

	client := clients.NewMkfrxClient(cfg.BackendURL, cfg.PollInterval)
	sessions := auth.NewManager(client, cfg.SessionFile, logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if !sessions.Restore() {
		switch creds.Mode {
		case setup.ModeSignup:
			err = sessions.Signup(ctx, creds.Name, creds.Email, creds.Password)
		case setup.ModeLogin:
			err = sessions.Login(ctx, creds.Email, creds.Password)
		default:
			logger.Fatal("no cached session; rerun without a config file to go through setup")
		}
		if err != nil {
			logger.Fatal("authentication failed", zap.Error(err))
		}
	}

	app, err := internal.NewApp(cfg, client, sessions.Session(), logger)
	if err != nil {
		logger.Fatal("failed to build desk client", zap.Error(err))
	}
	defer app.Close()

	logger.Info("desk client started",
		zap.String("backend", cfg.BackendURL),
		zap.String("view", "http://"+cfg.ListenAddr))

	if err := app.Run(ctx); err != nil {
		logger.Error("desk client stopped", zap.Error(err))
	}
}
