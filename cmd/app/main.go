package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/tgaquery/internal"
	pkgconfig "github.com/starford/tgaquery/pkg/config"
)

const defaultConfigPath = "config/config.yaml"

func run(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	if configPath == defaultConfigPath {
		if _, err := pkgconfig.LoadOptional(configPath, cfg); err != nil {
			return fmt.Errorf("failed to parse config: %w", err)
		}
	} else if err := pkgconfig.Load(configPath, cfg); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	if cmd.IsSet("input") {
		cfg.Report.Input = cmd.String("input")
	}
	if cmd.IsSet("output") {
		cfg.Report.Output = cmd.String("output")
	}
	if cmd.IsSet("watch") {
		cfg.Watch.Enabled = cmd.Bool("watch")
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	opts := []internal.Option{
		internal.WithConfig(cfg),
	}

	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}

	return nil
}

func main() {
	cmd := &cli.Command{
		Name:   "tgaquery",
		Usage:  "Run the fixed Game Awards SPARQL queries and write a plain-text report",
		Action: run,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: defaultConfigPath,
				Value:       defaultConfigPath,
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
			&cli.StringFlag{
				Name:    "input",
				Aliases: []string{"i"},
				Usage:   "Ontology document to load",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Report file to write",
			},
			&cli.BoolFlag{
				Name:  "watch",
				Usage: "Regenerate the report whenever the input changes",
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
