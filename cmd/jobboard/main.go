package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/cuongbtq/jobboard/cmd/jobboard/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	defaultConfigPath := os.Getenv("JOBBOARD_CONFIG_PATH")
	if defaultConfigPath == "" {
		defaultConfigPath = "configs/jobboard/config.yaml"
	}

	app := &cli.Command{
		Name:  "jobboard",
		Usage: "Operator tools for the job board search and alert scheduler",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "Path to configuration file",
				Value: defaultConfigPath,
			},
			&cli.StringFlag{
				Name:  "env",
				Usage: "Path to .env file",
				Value: ".env",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "search",
				Usage: "Rank active postings against a query",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "q", Usage: "Free-text query"},
					&cli.StringFlag{Name: "department", Usage: "Exact department"},
					&cli.StringFlag{Name: "category", Usage: "Posting category"},
					&cli.StringFlag{Name: "sort", Usage: "created_at, title, deadline, department, compensation or relevance"},
					&cli.StringFlag{Name: "order", Usage: "asc or desc"},
					&cli.BoolFlag{Name: "has-compensation", Usage: "Only postings that list compensation"},
					&cli.IntFlag{Name: "limit", Usage: "Maximum rows to print", Value: 20},
				},
				Action: commands.SearchAction,
			},
			{
				Name:  "suggest",
				Usage: "Complete a partial search query",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "q", Usage: "Partial query", Required: true},
					&cli.IntFlag{Name: "limit", Usage: "Maximum suggestions, up to 5", Value: 5},
				},
				Action: commands.SuggestAction,
			},
			{
				Name:      "pass",
				Usage:     "Run one scheduler pass in-process",
				ArgsUsage: "deadline-reminders|saved-search-alerts|close-expired",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "dry-run",
						Usage: "Log notifications instead of publishing them; use an in-process lease",
					},
				},
				Action: commands.PassAction,
			},
		},
	}

	if err := app.Run(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}
