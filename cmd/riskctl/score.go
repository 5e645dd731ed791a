package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/okian/partyrisk/internal/adapters/artifact"
	"github.com/okian/partyrisk/internal/adapters/http/client"
	"github.com/okian/partyrisk/internal/adapters/tabular"
	service "github.com/okian/partyrisk/internal/app"
	"github.com/okian/partyrisk/internal/domain/model"
	"github.com/okian/partyrisk/pkg/logger"
)

func scoreCommand() *cli.Command {
	return &cli.Command{
		Name:      "score",
		Usage:     "Score a CSV or JSON transaction file",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			modelDirFlagDef(),
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   "Output file (default: stdout)",
			},
			&cli.StringFlag{
				Name:  "format",
				Usage: "Output format [csv, json]",
				Value: tabular.FormatCSV,
			},
			&cli.StringFlag{
				Name:  "server",
				Usage: "Score on a running server instead of locally, e.g. http://localhost:9080",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Parties scored concurrently",
				Value: runtime.NumCPU(),
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Batch timeout",
				Value: 5 * time.Minute,
			},
			&cli.BoolFlag{
				Name:  "dedupe",
				Usage: "Reject repeated (party, invoice) rows",
			},
		},
		Action: runScore,
	}
}

type scoreOutcome struct {
	table     []model.ResultRow
	skipped   []model.Skip
	rowIssues []model.RowIssue
}

func runScore(ctx context.Context, cmd *cli.Command) error {
	path := cmd.Args().First()
	if path == "" {
		return errors.New("missing input file")
	}
	inFormat, err := tabular.FormatFromPath(path)
	if err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	rows, err := tabular.Read(f, inFormat)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	var out *scoreOutcome
	if server := cmd.String("server"); server != "" {
		out, err = scoreRemote(ctx, server, cmd.Duration("timeout"), rows)
	} else {
		out, err = scoreLocal(ctx, cmd, rows)
	}
	if err != nil {
		return err
	}

	log := logger.Get()
	for _, s := range out.skipped {
		log.Warn(ctx, "party skipped", logger.String("party", s.PartyID), logger.String("kind", s.Kind), logger.String("reason", s.Reason))
	}
	for _, ri := range out.rowIssues {
		log.Warn(ctx, "row rejected", logger.Int("row", ri.Row), logger.String("party", ri.PartyID), logger.String("kind", ri.Kind), logger.String("message", ri.Message))
	}

	var w io.Writer = os.Stdout
	if p := cmd.String("out"); p != "" {
		of, err := os.Create(p)
		if err != nil {
			return err
		}
		defer of.Close()
		w = of
	}
	return tabular.Write(w, out.table, cmd.String("format"))
}

func scoreLocal(ctx context.Context, cmd *cli.Command, rows []model.RawTransaction) (*scoreOutcome, error) {
	log := logger.Get()
	reg, err := artifact.NewLoader(cmd.String(modelDirFlag), artifact.WithLogger(log)).Load(ctx, service.ModelIDs())
	if err != nil {
		return nil, err
	}
	svc := service.New(
		service.WithRegistry(reg),
		service.WithLogger(log),
		service.WithWorkerCount(int(cmd.Int("workers"))),
		service.WithBatchTimeout(cmd.Duration("timeout")),
		service.WithDedupe(cmd.Bool("dedupe"), 0),
	)
	res, err := svc.ScoreBatch(ctx, rows)
	if err != nil {
		return nil, err
	}
	return &scoreOutcome{table: service.ResultTable(res), skipped: res.Skipped, rowIssues: res.RowIssues}, nil
}

func scoreRemote(ctx context.Context, server string, timeout time.Duration, rows []model.RawTransaction) (*scoreOutcome, error) {
	res, err := client.New(server, client.WithTimeout(timeout)).ScoreBatch(ctx, rows)
	if err != nil {
		return nil, err
	}
	return &scoreOutcome{table: res.Table, skipped: res.Skipped, rowIssues: res.RowIssues}, nil
}
