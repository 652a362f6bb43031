// Package github wraps the GitHub API surface the pipeline needs:
// pull-request metadata, changed files, and conversation comments.
package github

import (
	"context"
	"fmt"
	"time"

	"github.com/google/go-github/v59/github"
	"golang.org/x/oauth2"

	"github.com/tildaslashalef/reviewgate/internal/config"
)

// Client represents a GitHub API client
type Client struct {
	client *github.Client
	config *config.GitHubConfig
}

// NewClient creates a new GitHub API client from config
func NewClient(cfg *config.GitHubConfig) (*Client, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("no GitHub token configured")
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})
	tc := oauth2.NewClient(context.Background(), ts)

	timeout := cfg.RequestTimeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	tc.Timeout = timeout

	var client *github.Client
	if cfg.APIURL != "" && cfg.APIURL != "https://api.github.com" {
		var err error
		client, err = github.NewClient(tc).WithEnterpriseURLs(cfg.APIURL, cfg.APIURL)
		if err != nil {
			return nil, fmt.Errorf("creating enterprise client: %w", err)
		}
	} else {
		client = github.NewClient(tc)
	}

	return &Client{client: client, config: cfg}, nil
}

// GetPullRequest gets a pull request by number
func (c *Client) GetPullRequest(ctx context.Context, owner, repo string, number int) (*github.PullRequest, error) {
	pr, _, err := c.client.PullRequests.Get(ctx, owner, repo, number)
	if err != nil {
		return nil, fmt.Errorf("getting pull request #%d: %w", number, err)
	}
	return pr, nil
}

// ListFiles returns every changed file in the pull request. Pagination
// is fully drained: classification and budgeting need the complete set
// before any size-ceiling decision is made.
func (c *Client) ListFiles(ctx context.Context, owner, repo string, number int) ([]*github.CommitFile, error) {
	opts := &github.ListOptions{PerPage: 100}
	var all []*github.CommitFile
	for {
		files, resp, err := c.client.PullRequests.ListFiles(ctx, owner, repo, number, opts)
		if err != nil {
			return nil, fmt.Errorf("listing files for pull request #%d: %w", number, err)
		}
		all = append(all, files...)
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return all, nil
}

// ListComments returns every conversation comment on the pull request,
// draining pagination.
func (c *Client) ListComments(ctx context.Context, owner, repo string, number int) ([]*github.IssueComment, error) {
	opts := &github.IssueListCommentsOptions{ListOptions: github.ListOptions{PerPage: 100}}
	var all []*github.IssueComment
	for {
		comments, resp, err := c.client.Issues.ListComments(ctx, owner, repo, number, opts)
		if err != nil {
			return nil, fmt.Errorf("listing comments for pull request #%d: %w", number, err)
		}
		all = append(all, comments...)
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return all, nil
}

// CreateComment posts a new conversation comment
func (c *Client) CreateComment(ctx context.Context, owner, repo string, number int, body string) error {
	_, _, err := c.client.Issues.CreateComment(ctx, owner, repo, number,
		&github.IssueComment{Body: github.String(body)})
	if err != nil {
		return fmt.Errorf("creating comment on pull request #%d: %w", number, err)
	}
	return nil
}

// UpdateComment replaces an existing comment's body in place
func (c *Client) UpdateComment(ctx context.Context, owner, repo string, commentID int64, body string) error {
	_, _, err := c.client.Issues.EditComment(ctx, owner, repo, commentID,
		&github.IssueComment{Body: github.String(body)})
	if err != nil {
		return fmt.Errorf("updating comment %d: %w", commentID, err)
	}
	return nil
}
