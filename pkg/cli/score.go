package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/mchmarny/schedscore/pkg/config"
	"github.com/mchmarny/schedscore/pkg/data"
	urfave "github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

func cmdScore(ctx context.Context, cmd *urfave.Command) error {
	args := cmd.Args()
	if n := args.Len(); n < 1 || n > 2 {
		return fmt.Errorf("%w: expected FILE [SCORE], got %d arguments", ErrUsage, n)
	}

	cfg := getConfig(cmd)
	if args.Len() == 2 {
		score, err := parseScore(args.Get(1))
		if err != nil {
			return err
		}
		cfg.Score = score
	}

	path := args.First()
	slog.Debug("scoring", "file", path, "score", cfg.Score, "format", cfg.Format)

	list, err := data.IngestFile(path, cfg.Columns)
	if err != nil {
		return err
	}

	report, err := data.Run(ctx, list, cfg.Score)
	if err != nil {
		return fmt.Errorf("scoring %s: %w", path, err)
	}

	return encode(cmd.Root().Writer, cfg.Format, report)
}

func parseScore(v string) (int, error) {
	score, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("%w: SCORE must be an integer: %s", ErrUsage, v)
	}
	if score < 0 {
		return 0, fmt.Errorf("%w: SCORE must be non-negative: %d", ErrUsage, score)
	}
	return score, nil
}

func encode(w io.Writer, format string, r *data.Report) error {
	switch format {
	case config.FormatJSON:
		e := json.NewEncoder(w)
		e.SetIndent("", "  ")
		return e.Encode(r)
	case config.FormatYAML:
		e := yaml.NewEncoder(w)
		defer e.Close()
		return e.Encode(r)
	default:
		for _, m := range r.Marks {
			if _, err := fmt.Fprintf(w, "%s %.1f\n", m.Submission, m.Mark); err != nil {
				return fmt.Errorf("error writing mark for %s: %w", m.Submission, err)
			}
		}
		return nil
	}
}
