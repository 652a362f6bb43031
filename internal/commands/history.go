package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/tildaslashalef/reviewgate/internal/app"
	"github.com/tildaslashalef/reviewgate/internal/utils"
)

// HistoryCommand returns the CLI command for browsing audit artifacts.
func HistoryCommand() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Inspect stored review artifacts",
		Subcommands: []*cli.Command{
			{
				Name:      "list",
				Usage:     "List review artifacts for a subject",
				ArgsUsage: "<subject>",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of artifacts to show",
						Value: 10,
					},
				},
				Action: historyListAction,
			},
			{
				Name:      "show",
				Usage:     "Show the raw model response for an artifact",
				ArgsUsage: "<audit-id>",
				Action:    historyShowAction,
			},
		},
	}
}

func historyListAction(c *cli.Context) error {
	application, err := app.FromContext(c)
	if err != nil {
		return err
	}

	subject := c.Args().First()
	if subject == "" {
		return fmt.Errorf("subject argument is required, e.g. owner/repo#42")
	}

	results, err := application.Audits.ListBySubject(c.Context, subject, c.Int("limit"))
	if err != nil {
		return fmt.Errorf("listing artifacts: %w", err)
	}
	if len(results) == 0 {
		utils.PrintWarning(fmt.Sprintf("No review artifacts for %s", subject))
		return nil
	}

	var sb strings.Builder
	sb.WriteString("| Artifact | Created | Risk | Findings | Gate |\n")
	sb.WriteString("|---|---|---|---|---|\n")
	for _, r := range results {
		gateCol := "passed"
		if r.Blocked {
			gateCol = "blocked"
		}
		fmt.Fprintf(&sb, "| `%s` | %s | %s | %d | %s |\n",
			r.ID, r.CreatedAt.Format("2006-01-02 15:04"),
			r.Review.Risk, len(r.Review.Findings), gateCol)
	}

	fmt.Fprintln(os.Stdout, utils.RenderMarkdown(sb.String()))
	return nil
}

func historyShowAction(c *cli.Context) error {
	application, err := app.FromContext(c)
	if err != nil {
		return err
	}

	id := c.Args().First()
	if id == "" {
		return fmt.Errorf("audit-id argument is required")
	}

	result, err := application.Audits.GetResult(c.Context, id)
	if err != nil {
		return err
	}

	utils.PrintInfo(fmt.Sprintf("%s reviewed by %s at %s",
		result.Subject, result.Model, result.CreatedAt.Format("2006-01-02 15:04:05")))
	if result.RawResponse == "" {
		utils.PrintWarning("Artifact carries no raw response (nothing was sent to the model)")
		return nil
	}

	fmt.Fprintln(os.Stdout, result.RawResponse)
	return nil
}
