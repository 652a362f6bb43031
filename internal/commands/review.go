package commands

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/tildaslashalef/reviewgate/internal/app"
	"github.com/tildaslashalef/reviewgate/internal/reconcile"
	"github.com/tildaslashalef/reviewgate/internal/review"
	"github.com/tildaslashalef/reviewgate/internal/utils"
)

// ReviewCommand returns the CLI command that reviews a pull request or
// the locally staged changes.
func ReviewCommand() *cli.Command {
	return &cli.Command{
		Name:        "review",
		Usage:       "Review a pull request or staged changes",
		Description: "Reviews a GitHub pull request when --owner, --repo and --pr are given, otherwise reviews the staged changes of the local repository.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "owner",
				Aliases: []string{"o"},
				Usage:   "GitHub repository owner",
			},
			&cli.StringFlag{
				Name:    "repo",
				Aliases: []string{"r"},
				Usage:   "GitHub repository name",
			},
			&cli.IntFlag{
				Name:    "pr",
				Aliases: []string{"p"},
				Usage:   "Pull request number",
			},
			&cli.StringFlag{
				Name:  "path",
				Usage: "Path to the local repository (default: current directory)",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Do not post the review comment, print it instead",
			},
		},
		Action: reviewAction,
	}
}

func reviewAction(c *cli.Context) error {
	application, err := app.FromContext(c)
	if err != nil {
		return err
	}

	if c.String("owner") != "" || c.String("repo") != "" || c.Int("pr") != 0 {
		return reviewPullRequest(c, application)
	}
	return reviewStaged(c, application)
}

// reviewPullRequest runs the pipeline against a pull request and
// reconciles the review comment.
func reviewPullRequest(c *cli.Context, application *app.App) error {
	owner := c.String("owner")
	repo := c.String("repo")
	number := c.Int("pr")
	if owner == "" || repo == "" || number == 0 {
		return fmt.Errorf("--owner, --repo and --pr are all required for pull request review")
	}

	gh, err := application.GitHub()
	if err != nil {
		return err
	}

	subject := fmt.Sprintf("%s/%s#%d", owner, repo, number)

	title, err := gh.PullRequestTitle(c.Context, owner, repo, number)
	if err != nil {
		return fmt.Errorf("fetching pull request: %w", err)
	}
	utils.PrintInfo(fmt.Sprintf("Reviewing %s: %s", subject, title))

	files, err := gh.ChangedFiles(c.Context, owner, repo, number)
	if err != nil {
		return fmt.Errorf("fetching changed files: %w", err)
	}

	pipe, err := application.Pipeline()
	if err != nil {
		return err
	}

	result, err := pipe.Run(c.Context, subject, files)
	if err != nil {
		return err
	}

	marker := reconcile.Marker(subject)
	body := reconcile.Render(result.Review, marker, result.ID,
		application.Config.Review.MaxCommentChars)

	if c.Bool("dry-run") {
		fmt.Fprintln(os.Stdout, body)
	} else if err := gh.UpsertReviewComment(c.Context, owner, repo, number, marker, body); err != nil {
		return fmt.Errorf("reconciling review comment: %w", err)
	}

	return printOutcome(result)
}

// reviewStaged runs the pipeline against the staged changes of a local
// repository and renders the result in the terminal.
func reviewStaged(c *cli.Context, application *app.App) error {
	path := c.String("path")
	if path == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getting current working directory: %w", err)
		}
		path = cwd
	}

	if err := application.Git.Open(path); err != nil {
		return err
	}

	subject, err := application.Git.Subject()
	if err != nil {
		return err
	}

	files, err := application.Git.StagedFiles()
	if err != nil {
		return fmt.Errorf("collecting staged changes: %w", err)
	}
	if len(files) == 0 {
		utils.PrintWarning("No staged changes to review")
		return nil
	}

	utils.PrintInfo(fmt.Sprintf("Reviewing %d staged file(s) in %s", len(files), path))

	pipe, err := application.Pipeline()
	if err != nil {
		return err
	}

	result, err := pipe.Run(c.Context, subject, files)
	if err != nil {
		return err
	}

	body := reconcile.Render(result.Review, "", result.ID,
		application.Config.Review.MaxCommentChars)
	fmt.Fprintln(os.Stdout, utils.RenderMarkdown(body))

	return printOutcome(result)
}

// printOutcome prints the verdict line and converts a blocked review
// into a non-zero exit code for CI.
func printOutcome(result *review.Result) error {
	utils.PrintVerdict(result.Blocked, result.Review.Risk)
	utils.PrintSubtle(fmt.Sprintf("audit artifact: %s", result.ID))

	if result.Review.IsParseFailure() {
		utils.PrintWarning("The model response could not be interpreted; see the raw response in the audit store")
	}

	if result.Blocked {
		return cli.Exit("review gate: blocking findings present", 1)
	}
	return nil
}
