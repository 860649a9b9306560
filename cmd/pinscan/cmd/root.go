package cmd

import (
	"context"
	"errors"
	"io"
	"maps"
	"os"

	"github.com/muesli/termenv"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"

	"github.com/tinovyatkin/pinscan/internal/config"
	"github.com/tinovyatkin/pinscan/internal/version"
)

// NewApp creates the CLI application
func NewApp() *cli.Command {
	return &cli.Command{
		Name:      "pinscan",
		Usage:     "List the URLs a Dockerfile downloads with curl or wget",
		ArgsUsage: "[DOCKERFILE|DIR...]",
		Version:   version.Version(),
		Description: `pinscan resolves ENV and ARG variables in Dockerfiles and Containerfiles
and prints every URL fetched by curl or wget in a RUN instruction, one per
line. Use it to spot downloads that are not pinned to a checksum.

Examples:
  pinscan
  pinscan build/app.Dockerfile
  pinscan --format sarif --build-arg VERSION=2.0 .
  pinscan --only-parse Dockerfile
  pinscan commands Dockerfile`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a config file (default: " + config.FileName + " in the working directory)",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: text, json, sarif",
			},
			&cli.StringFlag{
				Name:  "color",
				Usage: "Colorize text output: auto, on, off",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Diagnostics written to stderr: debug, info, warn, error",
			},
			&cli.StringSliceFlag{
				Name:  "exclude",
				Usage: "Pattern of files to skip inside directory arguments (repeatable)",
			},
			&cli.StringSliceFlag{
				Name:  "build-arg",
				Usage: "Override an ARG value, NAME=VALUE (repeatable)",
			},
			&cli.StringSliceFlag{
				Name:  "download-command",
				Usage: "Command that starts a download (repeatable, default: curl, wget)",
			},
			&cli.StringFlag{
				Name:  "url-prefix",
				Usage: "Prefix a word must have to be reported as a URL",
			},
			&cli.BoolFlag{
				Name:  "only-parse",
				Usage: "Print the parsed instructions and shell trees instead of URLs",
			},
			&cli.BoolFlag{
				Name:  "show-source",
				Usage: "Show the Dockerfile lines around each URL (text format)",
			},
		},
		Before: setup,
		Action: auditAction,
		Commands: []*cli.Command{
			commandsCommand(),
			versionCommand(),
		},
	}
}

// Execute runs the CLI application
func Execute() error {
	return NewApp().Run(context.Background(), os.Args)
}

type configKey struct{}

// setup loads the configuration and configures logging before any action.
func setup(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	overrides := make(map[string]any)
	for _, name := range []string{"format", "color", "log-level"} {
		if cmd.IsSet(name) {
			overrides[name] = cmd.String(name)
		}
	}
	if cmd.IsSet("exclude") {
		overrides["exclude"] = cmd.StringSlice("exclude")
	}
	if cmd.IsSet("download-command") {
		overrides["download.commands"] = cmd.StringSlice("download-command")
	}
	if cmd.IsSet("url-prefix") {
		overrides["download.url-prefix"] = cmd.String("url-prefix")
	}

	buildArgs, err := config.ParseBuildArgs(cmd.StringSlice("build-arg"))
	if err != nil {
		return ctx, err
	}

	cfg, err := config.Load(config.LoadOptions{
		Path:      cmd.String("config"),
		Overrides: overrides,
	})
	if err != nil {
		return ctx, err
	}
	if len(buildArgs) > 0 {
		if cfg.BuildArgs == nil {
			cfg.BuildArgs = make(map[string]string, len(buildArgs))
		}
		maps.Copy(cfg.BuildArgs, buildArgs)
	}

	logrus.SetOutput(errWriter(cmd))
	logrus.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	logrus.SetLevel(cfg.Level())
	if ci := config.CIName(); ci != "" {
		logrus.WithField("ci", ci).Debug("running in CI, color disabled by default")
	}

	return context.WithValue(ctx, configKey{}, cfg), nil
}

func configFrom(ctx context.Context) (*config.Config, error) {
	cfg, ok := ctx.Value(configKey{}).(*config.Config)
	if !ok {
		return nil, errors.New("configuration not loaded")
	}
	return cfg, nil
}

func outWriter(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

func errWriter(cmd *cli.Command) io.Writer {
	if w := cmd.Root().ErrWriter; w != nil {
		return w
	}
	return os.Stderr
}

// colorProfile picks the text styling for w: forced on, off, or detected
// from the terminal when auto and not in CI.
func colorProfile(w io.Writer, mode string) termenv.Profile {
	switch {
	case mode == "on":
		return termenv.ANSI256
	case !config.ColorEnabled(mode):
		return termenv.Ascii
	default:
		return termenv.NewOutput(w).EnvColorProfile()
	}
}

// inputs returns the positional arguments, defaulting to ./Dockerfile.
func inputs(cmd *cli.Command) []string {
	if args := cmd.Args().Slice(); len(args) > 0 {
		return args
	}
	return []string{"Dockerfile"}
}
