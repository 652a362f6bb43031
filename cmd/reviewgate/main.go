package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/tildaslashalef/reviewgate/internal/app"
	"github.com/tildaslashalef/reviewgate/internal/commands"
)

// Version information - populated at build time
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	cliApp := &cli.App{
		Name:  "reviewgate",
		Usage: "LLM-powered pull request review gate",
		Description: "Reviewgate sends a sanitized diff to Claude, posts the review as an\n" +
			"idempotent pull request comment, and fails the run when blocking\n" +
			"findings are present.\n\n" +
			"When run without subcommands it reviews the staged changes of the\n" +
			"current repository.",
		Version: Version,
		Compiled: func() time.Time {
			t, err := time.Parse(time.RFC3339, BuildTime)
			if err != nil {
				return time.Now()
			}
			return t
		}(),
		Before: func(c *cli.Context) error {
			application, err := app.New()
			if err != nil {
				return fmt.Errorf("failed to initialize application: %w", err)
			}

			c.App.Metadata = map[string]interface{}{
				"app": application,
			}
			return nil
		},
		After: func(c *cli.Context) error {
			if application, ok := c.App.Metadata["app"].(*app.App); ok {
				return application.Shutdown()
			}
			return nil
		},
		Commands: []*cli.Command{
			commands.ReviewCommand(),
			commands.HistoryCommand(),
			commands.MigrateCommand(),
		},
		Action: func(c *cli.Context) error {
			return commands.ReviewCommand().Action(c)
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
