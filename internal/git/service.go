// Package git reads staged changes from a local repository so they can
// be reviewed without a pull request.
package git

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/tildaslashalef/reviewgate/internal/loggy"
	"github.com/tildaslashalef/reviewgate/internal/patch"
)

// Service provides read-only access to a local Git repository.
type Service struct {
	logger *loggy.Logger
	repo   *git.Repository
	path   string
}

// NewService creates a Git service. Open must be called before any
// other operation.
func NewService(logger *loggy.Logger) *Service {
	return &Service{logger: logger}
}

// Open opens the repository at the given path.
func (s *Service) Open(repoPath string) error {
	repo, err := git.PlainOpen(repoPath)
	if err != nil {
		return fmt.Errorf("opening git repo: %w", err)
	}

	s.repo = repo
	s.path = repoPath
	return nil
}

// IsRepo reports whether path contains a valid Git repository.
func (s *Service) IsRepo(path string) bool {
	_, err := git.PlainOpen(path)
	if err != nil {
		s.logger.Debug("not a git repository", "path", path, "error", err)
		return false
	}
	return true
}

func (s *Service) ensureOpen() error {
	if s.repo == nil {
		return fmt.Errorf("git repository not opened")
	}
	return nil
}

// Subject returns a stable identifier for the working copy, used to tag
// audit artifacts from local reviews.
func (s *Service) Subject() (string, error) {
	if err := s.ensureOpen(); err != nil {
		return "", err
	}

	name := filepath.Base(s.path)
	headRef, err := s.repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return fmt.Sprintf("local:%s", name), nil
		}
		return "", fmt.Errorf("getting HEAD: %w", err)
	}

	return fmt.Sprintf("local:%s@%s", name, headRef.Hash().String()[:8]), nil
}

// StagedFiles returns the staged changes as review inputs. Each file
// carries a unified patch against HEAD, or the full content marked as
// added lines when the file is new.
func (s *Service) StagedFiles() ([]patch.File, error) {
	if err := s.ensureOpen(); err != nil {
		return nil, err
	}

	worktree, err := s.repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("getting worktree: %w", err)
	}

	status, err := worktree.Status()
	if err != nil {
		return nil, fmt.Errorf("getting worktree status: %w", err)
	}

	var files []patch.File
	for filePath, fileStatus := range status {
		if !isStaged(fileStatus.Staging) {
			continue
		}

		if fileStatus.Staging == git.Deleted {
			s.logger.Debug("skipping deleted file", "path", filePath)
			continue
		}

		p, err := s.stagedPatch(worktree, filePath)
		if err != nil {
			s.logger.Warn("failed to read staged file", "path", filePath, "error", err)
			continue
		}

		files = append(files, patch.File{
			Path:  filepath.ToSlash(filepath.Clean(filePath)),
			Patch: p,
		})
	}

	s.logger.Debug("collected staged files", "count", len(files))
	return files, nil
}

func isStaged(code git.StatusCode) bool {
	switch code {
	case git.Added, git.Modified, git.Deleted, git.Renamed, git.Copied:
		return true
	default:
		return false
	}
}

// stagedPatch diffs the working copy of filePath against its HEAD
// version.
func (s *Service) stagedPatch(worktree *git.Worktree, filePath string) (string, error) {
	content, err := readWorktreeFile(worktree, filePath)
	if err != nil {
		return "", err
	}

	headContent, found, err := s.headContent(filePath)
	if err != nil {
		return "", err
	}
	if !found {
		return renderPatch(filePath, "", content), nil
	}

	return renderPatch(filePath, headContent, content), nil
}

func readWorktreeFile(worktree *git.Worktree, filePath string) (string, error) {
	file, err := worktree.Filesystem.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("opening file: %w", err)
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return "", fmt.Errorf("reading file: %w", err)
	}

	return string(content), nil
}

// headContent returns the committed content of filePath, or found=false
// when the file does not exist at HEAD (new file or empty repo).
func (s *Service) headContent(filePath string) (string, bool, error) {
	headRef, err := s.repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("getting HEAD: %w", err)
	}

	headCommit, err := s.repo.CommitObject(headRef.Hash())
	if err != nil {
		return "", false, fmt.Errorf("getting HEAD commit: %w", err)
	}

	headTree, err := headCommit.Tree()
	if err != nil {
		return "", false, fmt.Errorf("getting HEAD tree: %w", err)
	}

	headFile, err := headTree.File(filePath)
	if err != nil {
		if errors.Is(err, object.ErrFileNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("getting file from HEAD: %w", err)
	}

	content, err := headFile.Contents()
	if err != nil {
		return "", false, fmt.Errorf("getting HEAD file content: %w", err)
	}

	return content, true, nil
}

// renderPatch produces a minimal unified diff. Unchanged leading and
// trailing lines are trimmed so the model sees the edited region with
// correct line numbers, without a full diff algorithm in the middle.
func renderPatch(filePath, oldContent, newContent string) string {
	oldLines := splitLines(oldContent)
	newLines := splitLines(newContent)

	// Trim the common prefix and suffix.
	prefix := 0
	for prefix < len(oldLines) && prefix < len(newLines) && oldLines[prefix] == newLines[prefix] {
		prefix++
	}
	suffix := 0
	for suffix < len(oldLines)-prefix && suffix < len(newLines)-prefix &&
		oldLines[len(oldLines)-1-suffix] == newLines[len(newLines)-1-suffix] {
		suffix++
	}

	oldHunk := oldLines[prefix : len(oldLines)-suffix]
	newHunk := newLines[prefix : len(newLines)-suffix]

	var buf strings.Builder
	fmt.Fprintf(&buf, "--- a/%s\n", filePath)
	fmt.Fprintf(&buf, "+++ b/%s\n", filePath)
	fmt.Fprintf(&buf, "@@ -%d,%d +%d,%d @@\n", prefix+1, len(oldHunk), prefix+1, len(newHunk))
	for _, line := range oldHunk {
		buf.WriteString("-" + line + "\n")
	}
	for _, line := range newHunk {
		buf.WriteString("+" + line + "\n")
	}

	return buf.String()
}

func splitLines(content string) []string {
	if content == "" {
		return nil
	}
	content = strings.TrimSuffix(content, "\n")
	return strings.Split(content, "\n")
}
