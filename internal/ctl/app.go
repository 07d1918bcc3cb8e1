// Package ctl implements parleyctl, the operator tool that scores a fixture
// offline or reads a running parley server.
package ctl

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/urfave/cli/v2"

	service "github.com/okian/parley/internal/app"
	"github.com/okian/parley/pkg/logger"
)

// Default configuration constants.
const (
	defaultTimeout  = 30 * time.Second
	defaultLogLevel = "warn"
	filePermission  = 0o600
)

// NewApp builds the parleyctl command tree.
func NewApp() *cli.App {
	return &cli.App{
		Name:  "parleyctl",
		Usage: "score negotiation rounds from a fixture or a running server",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "fixture", Aliases: []string{"f"}, Usage: "JSON fixture to score locally", EnvVars: []string{"PARLEY_FIXTURE_PATH"}},
			&cli.StringFlag{Name: "url", Usage: "base URL of a parley server"},
			&cli.StringFlag{Name: "now", Usage: "RFC3339 instant to score a fixture at (default: current time)"},
			&cli.DurationFlag{Name: "timeout", Value: defaultTimeout, Usage: "request timeout"},
			&cli.Float64Flag{Name: "sub-weight", Value: 1, Usage: "weight of the substantive z-score"},
			&cli.Float64Flag{Name: "rel-weight", Value: 1, Usage: "weight of the relational z-score"},
			&cli.StringFlag{Name: "log-level", Value: defaultLogLevel, Usage: "debug, info, warn or error"},
		},
		Before: func(c *cli.Context) error {
			if err := logger.InitWith(c.App.ErrWriter, "text"); err != nil {
				return err
			}
			return logger.SetLevelString(c.String("log-level"))
		},
		Commands: []*cli.Command{
			{
				Name:      "state",
				Usage:     "project an event's rounds",
				ArgsUsage: "EVENT",
				Action: withBackend(1, func(c *cli.Context, b Backend) error {
					v, err := b.State(c.Context, c.Args().Get(0))
					return printJSON(c.App.Writer, v, err)
				}),
			},
			{
				Name:      "report",
				Usage:     "derive a round report",
				ArgsUsage: "EVENT ROUND",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "xlsx", Usage: "write the report workbook to this file instead of printing JSON"},
				},
				Action: withBackend(2, func(c *cli.Context, b Backend) error {
					round, err := roundArg(c)
					if err != nil {
						return err
					}
					if path := c.String("xlsx"); path != "" {
						return writeWorkbook(c.Context, b, c.Args().Get(0), round, path)
					}
					v, err := b.Report(c.Context, c.Args().Get(0), round)
					return printJSON(c.App.Writer, v, err)
				}),
			},
			{
				Name:      "leaderboard",
				Usage:     "sum total z-scores over finished rounds",
				ArgsUsage: "EVENT",
				Action: withBackend(1, func(c *cli.Context, b Backend) error {
					v, err := b.Leaderboard(c.Context, c.Args().Get(0))
					return printJSON(c.App.Writer, v, err)
				}),
			},
			{
				Name:      "range",
				Usage:     "compute the achievable score range of a case",
				ArgsUsage: "CASE",
				Action: withBackend(1, func(c *cli.Context, b Backend) error {
					v, err := b.CaseRange(c.Context, c.Args().Get(0))
					return printJSON(c.App.Writer, v, err)
				}),
			},
			{
				Name:      "verify",
				Usage:     "check the ordering rules of every visible round report",
				ArgsUsage: "EVENT",
				Action: withBackend(1, func(c *cli.Context, b Backend) error {
					local, ok := b.(*LocalBackend)
					if !ok {
						return ErrLocalOnly
					}
					checks, err := local.Verify(c.Context, c.Args().Get(0))
					if err := printJSON(c.App.Writer, checks, err); err != nil {
						return err
					}
					for _, ch := range checks {
						if len(ch.Problems) > 0 {
							return fmt.Errorf("%w: round %d", ErrInvariant, ch.Round)
						}
					}
					return nil
				}),
			},
		},
	}
}

// withBackend checks the argument count and opens the backend named by the
// global flags around action.
func withBackend(nargs int, action func(*cli.Context, Backend) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		if c.NArg() != nargs {
			return fmt.Errorf("%w: %s %s %s", ErrUsage, c.App.Name, c.Command.Name, c.Command.ArgsUsage)
		}
		b, err := openBackend(c)
		if err != nil {
			return err
		}
		defer b.Close(context.WithoutCancel(c.Context))
		return action(c, b)
	}
}

func openBackend(c *cli.Context) (Backend, error) {
	switch {
	case c.String("fixture") != "":
		now, err := clock(c.String("now"))
		if err != nil {
			return nil, err
		}
		return NewLocalBackend(c.Context, c.String("fixture"), now,
			service.WithFetchTimeout(c.Duration("timeout")),
			service.WithWeights(c.Float64("sub-weight"), c.Float64("rel-weight")),
		)
	case c.String("url") != "":
		return NewRemoteBackend(c.String("url"), c.Duration("timeout")), nil
	default:
		return nil, ErrNoSource
	}
}

// clock returns a fixed clock for an RFC3339 instant, or the wall clock.
func clock(at string) (func() time.Time, error) {
	if at == "" {
		return time.Now, nil
	}
	t, err := time.Parse(time.RFC3339, at)
	if err != nil {
		return nil, fmt.Errorf("%w: --now must be RFC3339: %w", ErrUsage, err)
	}
	return func() time.Time { return t }, nil
}

func roundArg(c *cli.Context) (int, error) {
	round, err := strconv.Atoi(c.Args().Get(1))
	if err != nil || round < 1 {
		return 0, fmt.Errorf("%w: ROUND must be a positive integer", ErrUsage)
	}
	return round, nil
}

func writeWorkbook(ctx context.Context, b Backend, eventID string, round int, path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, filePermission)
	if err != nil {
		return fmt.Errorf("create workbook: %w", err)
	}
	if err := b.Workbook(ctx, eventID, round, f); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return err
	}
	return f.Close()
}

func printJSON(w io.Writer, v any, err error) error {
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
