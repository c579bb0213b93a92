package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"

	"github.com/roman-kulish/wifi-survey/cmd/collector/app"
)

func main() {
	var logLevel slog.LevelVar
	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: &logLevel, TimeFormat: time.TimeOnly}))

	config, err := app.NewConfigFromCLI()
	if err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}

	if err = logLevel.UnmarshalText([]byte(config.Settings.LogLevel)); err != nil {
		logger.Warn("invalid log level, using info", slog.String("logLevel", config.Settings.LogLevel))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err = app.Run(ctx, config, os.Stdin, os.Stdout, logger); err != nil {
		logger.Error(err.Error())

		cancel()
		os.Exit(1)
	}
}
