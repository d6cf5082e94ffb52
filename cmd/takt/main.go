// Command takt extracts calendar events from pasted or OCR-derived text
// and manages them in a local SQLite database.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/deadjay/takt-sub000/internal/config"
)

const version = "0.2.0"

func main() {
	// Load .env first, but don't error if it doesn't exist.
	_ = godotenv.Load()

	app := &cli.App{
		Name:    "takt",
		Usage:   "Extract calendar events from free text, offline.",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Usage: "Path to the config file."},
			&cli.StringFlag{Name: "db", Usage: "Path to the events database."},
			&cli.StringFlag{Name: "log-level", Usage: "Log level: debug, info, warn, error."},
		},
		Commands: []*cli.Command{
			extractCommand(),
			listCommand(),
			searchCommand(),
			doneCommand(),
			rmCommand(),
			exportCommand(),
			importCommand(),
			statsCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("takt failed", "error", err)
		os.Exit(1)
	}
}

// resolveConfig applies the global flags and builds the logger.
func resolveConfig(c *cli.Context) (*config.Resolved, *slog.Logger, error) {
	cfg, err := config.Resolve(config.ResolveOptions{
		ConfigPath:  c.String("config"),
		CLIDBPath:   c.String("db"),
		CLILogLevel: c.String("log-level"),
	})
	if err != nil {
		return nil, nil, err
	}
	return cfg, setupLogger(cfg.LogLevel.Value), nil
}

func setupLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

func printEventLine(w *os.File, id, name, date, deadline string, done bool) {
	mark := " "
	if done {
		mark = "x"
	}
	if len(id) > 8 {
		id = id[:8]
	}
	if deadline != "" {
		fmt.Fprintf(w, "[%s] %s  %s  %s (due %s)\n", mark, id, date, name, deadline)
		return
	}
	fmt.Fprintf(w, "[%s] %s  %s  %s\n", mark, id, date, name)
}
