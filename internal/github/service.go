package github

import (
	"context"
	"fmt"

	"github.com/tildaslashalef/reviewgate/internal/loggy"
	"github.com/tildaslashalef/reviewgate/internal/patch"
	"github.com/tildaslashalef/reviewgate/internal/reconcile"
)

// Service provides GitHub integration for the review pipeline
type Service struct {
	client *Client
	logger *loggy.Logger
}

// NewService creates a new GitHub service
func NewService(client *Client, logger *loggy.Logger) *Service {
	return &Service{client: client, logger: logger}
}

// PullRequestTitle fetches the pull request title, confirming the PR
// exists before any review work starts.
func (s *Service) PullRequestTitle(ctx context.Context, owner, repo string, number int) (string, error) {
	pr, err := s.client.GetPullRequest(ctx, owner, repo, number)
	if err != nil {
		return "", err
	}
	return pr.GetTitle(), nil
}

// ChangedFiles fetches the complete, ordered changed-file list of a
// pull request as (path, patch) pairs.
func (s *Service) ChangedFiles(ctx context.Context, owner, repo string, number int) ([]patch.File, error) {
	commitFiles, err := s.client.ListFiles(ctx, owner, repo, number)
	if err != nil {
		return nil, err
	}

	files := make([]patch.File, 0, len(commitFiles))
	for _, cf := range commitFiles {
		// Binary files and very large patches come back without a
		// patch body; the classifier and budgeter still see the path.
		files = append(files, patch.File{
			Path:  cf.GetFilename(),
			Patch: cf.GetPatch(),
		})
	}

	s.logger.Debug("fetched changed files",
		"pr", fmt.Sprintf("%s/%s#%d", owner, repo, number),
		"count", len(files))
	return files, nil
}

// UpsertReviewComment presents the rendered review exactly once per
// pull request: an existing marker-tagged comment is replaced in
// place, otherwise a new one is created.
func (s *Service) UpsertReviewComment(ctx context.Context, owner, repo string, number int, marker, body string) error {
	comments, err := s.client.ListComments(ctx, owner, repo, number)
	if err != nil {
		return err
	}

	existing := make([]reconcile.Comment, 0, len(comments))
	for _, c := range comments {
		existing = append(existing, reconcile.Comment{
			ID:   c.GetID(),
			Body: c.GetBody(),
		})
	}

	decision := reconcile.Decide(existing, marker)
	switch decision.Action {
	case reconcile.ActionUpdate:
		s.logger.Info("updating existing review comment",
			"comment_id", decision.CommentID)
		return s.client.UpdateComment(ctx, owner, repo, decision.CommentID, body)
	default:
		s.logger.Info("creating review comment")
		return s.client.CreateComment(ctx, owner, repo, number, body)
	}
}
