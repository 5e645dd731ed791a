// Command riskctl scores transaction files, generates synthetic data and
// reports model status from the command line.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/okian/partyrisk/pkg/logger"
)

var version = "v0.0.1-default"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		os.Stderr.WriteString("riskctl: " + err.Error() + "\n")
		os.Exit(1)
	}
}

const (
	debugFlag     = "debug"
	logFormatFlag = "log-format"
	modelDirFlag  = "model-dir"
)

// Built per newApp call: parsed flag values live on the command.
func modelDirFlagDef() cli.Flag {
	return &cli.StringFlag{
		Name:    modelDirFlag,
		Usage:   "Directory holding model artifact files",
		Value:   "models",
		Sources: cli.EnvVars("RISK_MODEL_DIR"),
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:    "riskctl",
		Version: version,
		Usage:   "Party risk scoring from the command line",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  debugFlag,
				Usage: "Prints verbose logs",
			},
			&cli.StringFlag{
				Name:  logFormatFlag,
				Usage: "Log format [text, json]",
				Value: logger.FormatText,
			},
		},
		Commands: []*cli.Command{
			scoreCommand(),
			generateCommand(),
			modelsCommand(),
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if err := logger.Init(logger.WithFormat(cmd.String(logFormatFlag)), logger.WithWriter(os.Stderr)); err != nil {
				return ctx, err
			}
			level := "warn"
			if cmd.Bool(debugFlag) {
				level = "debug"
			}
			return ctx, logger.SetLevelString(level)
		},
	}
}
