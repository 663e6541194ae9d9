// Точка входа docctl — консольный клиент doc-console.
// Читает YAML-конфигурацию, восстанавливает сессию из файла и выполняет
// команду; Ctrl-C отменяет запрос к backend.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/aventuscto/doc-console/internal/cli"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	var (
		configPath  string
		docsURL     string
		usersURL    string
		logLevel    string
		sessionFile string
	)

	fs := pflag.NewFlagSet("docctl", pflag.ContinueOnError)
	fs.SetInterspersed(false)
	fs.StringVar(&configPath, "config", cli.DefaultConfigPath(), "path to the YAML config")
	fs.StringVar(&docsURL, "document-service", "", "document service base URL (overrides config)")
	fs.StringVar(&usersURL, "user-service", "", "user service base URL (overrides config)")
	fs.StringVar(&sessionFile, "session-file", "", "session file path (overrides config)")
	fs.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (overrides config)")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "docctl: %v\n", err)
		return 2
	}

	cfg, err := cli.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "docctl: %v\n", err)
		return 1
	}
	if docsURL != "" {
		cfg.DocumentServiceURL = docsURL
	}
	if usersURL != "" {
		cfg.UserServiceURL = usersURL
	}
	if sessionFile != "" {
		cfg.SessionFile = sessionFile
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		fmt.Fprintf(os.Stderr, "docctl: log level: %v\n", err)
		return 2
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	app, err := cli.Build(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "docctl: %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, fs.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "docctl: %v\n", err)
		if errors.Is(err, cli.ErrUsage) {
			return 2
		}
		return 1
	}
	return 0
}
