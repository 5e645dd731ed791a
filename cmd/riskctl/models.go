package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/okian/partyrisk/internal/adapters/artifact"
	service "github.com/okian/partyrisk/internal/app"
	"github.com/okian/partyrisk/pkg/logger"
)

func modelsCommand() *cli.Command {
	return &cli.Command{
		Name:   "models",
		Usage:  "Load the model artifacts and report their status",
		Flags:  []cli.Flag{modelDirFlagDef()},
		Action: runModels,
	}
}

func runModels(ctx context.Context, cmd *cli.Command) error {
	reg, err := artifact.NewLoader(cmd.String(modelDirFlag), artifact.WithLogger(logger.Get())).Load(ctx, service.ModelIDs())
	if err != nil {
		return err
	}
	svc := service.New(service.WithRegistry(reg), service.WithLogger(logger.Get()))

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "MODEL SET\tROLE\tMODEL\tKIND\tREQUIRED\tSTATUS")
	for _, set := range service.ModelSets() {
		info, err := svc.ModelInfo(set.ID)
		if err != nil {
			return err
		}
		for _, r := range info.Roles {
			status := "loaded"
			if !r.Available {
				status = "unavailable: " + r.Error
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%t\t%s\n", info.ID, r.Role, r.ModelID, r.Kind, r.Required, status)
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	for set, h := range svc.Health() {
		if h.State != "loaded" {
			fmt.Fprintf(os.Stderr, "%s: %s (missing %v)\n", set, h.State, h.Unavailable)
		}
	}
	return nil
}
