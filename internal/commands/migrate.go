package commands

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/tildaslashalef/reviewgate/internal/database"
	"github.com/tildaslashalef/reviewgate/internal/utils"
)

// MigrateCommand returns the CLI command for audit store migrations.
// Schema migrations run automatically on startup; this exists for
// explicit rollbacks.
func MigrateCommand() *cli.Command {
	return &cli.Command{
		Name:   "migrate",
		Usage:  "Manage audit store migrations",
		Hidden: true,
		Subcommands: []*cli.Command{
			{
				Name:  "down",
				Usage: "Revert the last migration",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "steps",
						Usage: "Number of migrations to revert",
						Value: 1,
					},
				},
				Action: func(c *cli.Context) error {
					steps := c.Int("steps")
					utils.PrintWarning(fmt.Sprintf("Reverting %d migration(s)", steps))

					if err := database.RevertMigrations(steps); err != nil {
						return fmt.Errorf("reverting migrations: %w", err)
					}

					utils.PrintSuccess("Migration(s) reverted")
					return nil
				},
			},
		},
	}
}
