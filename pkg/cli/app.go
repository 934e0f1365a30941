package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mchmarny/schedscore/pkg/config"
	"github.com/mchmarny/schedscore/pkg/logging"
	urfave "github.com/urfave/cli/v3"
)

const (
	appName      = "schedscore"
	appConfigKey = "app-config"

	usageText = `Processes a CSV file with columns Submission,Schedule,Average and prints a mark for every submission in the scheduling competition.

Usage: %s [--debug] [--format text|json|yaml] [--config FILE] FILE [SCORE]
Where:
  FILE is a CSV that contains Submission,Schedule,Average
  SCORE is the maximum mark for the competition (defaults to %d)
`
)

var (
	version = "v0.0.1-default"
	commit  = ""
	date    = ""

	// ErrUsage is returned when the command line is malformed.
	ErrUsage = errors.New("invalid usage")

	logLevel slog.LevelVar

	debugFlag = &urfave.BoolFlag{
		Name:  "debug",
		Usage: "Prints verbose logs to stderr (optional, default: false)",
	}

	formatFlag = &urfave.StringFlag{
		Name:  "format",
		Usage: "Output format [text, json, yaml]",
		Value: config.FormatText,
	}

	configFlag = &urfave.StringFlag{
		Name:  "config",
		Usage: "Path to a YAML config file (optional)",
	}
)

// Execute creates and runs the CLI application.
func Execute() {
	os.Exit(Run(context.Background(), os.Args, os.Stdout, os.Stderr))
}

// Run executes the CLI with args and returns the process exit code.
// Results go to stdout, logs to stderr.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	initLogging(stderr, false)

	app := newApp(stdout, stderr)
	if err := app.Run(ctx, args); err != nil {
		if errors.Is(err, ErrUsage) {
			slog.Debug("usage error", "error", err)
			fmt.Fprintf(stdout, usageText, appName, config.ScoreDefault)
			return 1
		}
		slog.Error("fatal error", "error", err)
		return 1
	}
	return 0
}

func getConfig(cmd *urfave.Command) *config.Config {
	if c, ok := cmd.Root().Metadata[appConfigKey].(*config.Config); ok {
		return c
	}
	return config.Default()
}

func newApp(stdout, stderr io.Writer) *urfave.Command {
	return &urfave.Command{
		Name:            appName,
		Version:         fmt.Sprintf("%s (%s - %s)", version, commit, date),
		Usage:           "Ranks competition submissions per schedule and prints their marks",
		ArgsUsage:       "FILE [SCORE]",
		HideHelpCommand: true,
		Writer:          stdout,
		ErrWriter:       stderr,
		Metadata:        map[string]any{},
		Flags: []urfave.Flag{
			debugFlag,
			formatFlag,
			configFlag,
		},
		Before: func(ctx context.Context, cmd *urfave.Command) (context.Context, error) {
			cfg, err := config.Load(cmd.String(configFlag.Name))
			if err != nil {
				return ctx, fmt.Errorf("loading config: %w", err)
			}

			if cmd.Bool(debugFlag.Name) {
				cfg.Debug = true
			}
			if cfg.Debug {
				logLevel.Set(slog.LevelDebug)
			}

			if cmd.IsSet(formatFlag.Name) {
				f, err := config.ParseFormat(cmd.String(formatFlag.Name))
				if err != nil {
					return ctx, fmt.Errorf("%w: %w", ErrUsage, err)
				}
				cfg.Format = f
			}

			cmd.Metadata[appConfigKey] = cfg
			return ctx, nil
		},
		OnUsageError: func(_ context.Context, _ *urfave.Command, err error, _ bool) error {
			return fmt.Errorf("%w: %w", ErrUsage, err)
		},
		Action: cmdScore,
	}
}

func initLogging(w io.Writer, debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	logLevel.Set(level)
	slog.SetDefault(slog.New(logging.NewCLIHandler(w, &logLevel)))
}
