package cmd

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/tinovyatkin/pinscan/internal/audit"
	"github.com/tinovyatkin/pinscan/internal/config"
	"github.com/tinovyatkin/pinscan/internal/discovery"
	"github.com/tinovyatkin/pinscan/internal/extract"
	"github.com/tinovyatkin/pinscan/internal/reporter"
	"github.com/tinovyatkin/pinscan/internal/version"
)

func auditAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := configFrom(ctx)
	if err != nil {
		return err
	}

	files, err := discovery.Discover(inputs(cmd), discovery.Options{Exclude: cfg.Exclude})
	if err != nil {
		return err
	}

	rep := newReporter(cmd, cfg)

	if cmd.Bool("only-parse") {
		dumps := make([]*audit.Dump, 0, len(files))
		for _, file := range files {
			dump, err := audit.ParseOnly(ctx, file)
			if err != nil {
				return err
			}
			dumps = append(dumps, dump)
		}
		return rep.Dumps(dumps)
	}

	opts := auditOptions(cfg)
	results := make([]*audit.Result, 0, len(files))
	for _, file := range files {
		res, err := audit.Run(ctx, file, opts)
		if err != nil {
			return err
		}
		results = append(results, res)
	}
	return rep.URLs(results)
}

func commandsCommand() *cli.Command {
	return &cli.Command{
		Name:      "commands",
		Usage:     "Print the command invoked by every RUN instruction",
		ArgsUsage: "[DOCKERFILE|DIR...]",
		// Flags may follow the subcommand name, so load config again.
		Before: setup,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := configFrom(ctx)
			if err != nil {
				return err
			}

			files, err := discovery.Discover(inputs(cmd), discovery.Options{Exclude: cfg.Exclude})
			if err != nil {
				return err
			}

			rep := newReporter(cmd, cfg)
			opts := auditOptions(cfg)
			for _, file := range files {
				cmds, err := audit.Commands(ctx, file, opts)
				if err != nil {
					return err
				}
				if err := rep.Commands(file, cmds); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func auditOptions(cfg *config.Config) audit.Options {
	return audit.Options{
		BuildArgs: cfg.BuildArgs,
		Extract: extract.Options{
			Triggers:  cfg.Download.Commands,
			URLPrefix: cfg.Download.URLPrefix,
		},
	}
}

func newReporter(cmd *cli.Command, cfg *config.Config) *reporter.Reporter {
	w := outWriter(cmd)
	return reporter.New(w, reporter.Options{
		Format:      cfg.Format,
		Profile:     colorProfile(w, cfg.Color),
		ShowSource:  cmd.Bool("show-source"),
		ToolVersion: version.GetInfo().Version,
	})
}
