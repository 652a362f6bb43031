package git

import (
	"os"
	"path/filepath"
	"testing"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tildaslashalef/reviewgate/internal/loggy"
)

func setupTempRepo(t *testing.T) (string, *gogit.Repository) {
	t.Helper()

	dir := t.TempDir()
	repo, err := gogit.PlainInit(dir, false)
	require.NoError(t, err, "Failed to initialize repository")

	writeFile(t, dir, "README.md", "# Test Repository\n")
	stageAndCommit(t, repo, "README.md", "Initial commit")

	return dir, repo
}

func writeFile(t *testing.T, repoPath, filename, content string) {
	t.Helper()
	err := os.WriteFile(filepath.Join(repoPath, filename), []byte(content), 0644)
	require.NoError(t, err, "Failed to write file")
}

func stageAndCommit(t *testing.T, repo *gogit.Repository, filename, message string) {
	t.Helper()

	worktree, err := repo.Worktree()
	require.NoError(t, err)

	_, err = worktree.Add(filename)
	require.NoError(t, err, "Failed to stage file")

	_, err = worktree.Commit(message, &gogit.CommitOptions{
		Author: &object.Signature{Name: "Test User", Email: "test@example.com"},
	})
	require.NoError(t, err, "Failed to commit")
}

func stage(t *testing.T, repo *gogit.Repository, filename string) {
	t.Helper()

	worktree, err := repo.Worktree()
	require.NoError(t, err)

	_, err = worktree.Add(filename)
	require.NoError(t, err, "Failed to stage file")
}

func TestIsRepo(t *testing.T) {
	svc := NewService(loggy.NewNoopLogger())

	dir, _ := setupTempRepo(t)
	assert.True(t, svc.IsRepo(dir))
	assert.False(t, svc.IsRepo(t.TempDir()))
}

func TestStagedFiles(t *testing.T) {
	svc := NewService(loggy.NewNoopLogger())

	t.Run("not opened", func(t *testing.T) {
		_, err := NewService(loggy.NewNoopLogger()).StagedFiles()
		require.Error(t, err)
	})

	t.Run("new staged file", func(t *testing.T) {
		dir, repo := setupTempRepo(t)
		writeFile(t, dir, "main.go", "package main\n")
		stage(t, repo, "main.go")

		require.NoError(t, svc.Open(dir))
		files, err := svc.StagedFiles()
		require.NoError(t, err)
		require.Len(t, files, 1)

		assert.Equal(t, "main.go", files[0].Path)
		assert.Contains(t, files[0].Patch, "+++ b/main.go")
		assert.Contains(t, files[0].Patch, "+package main")
	})

	t.Run("modified staged file", func(t *testing.T) {
		dir, repo := setupTempRepo(t)
		writeFile(t, dir, "README.md", "# Test Repository\n\nUpdated.\n")
		stage(t, repo, "README.md")

		require.NoError(t, svc.Open(dir))
		files, err := svc.StagedFiles()
		require.NoError(t, err)
		require.Len(t, files, 1)

		assert.Contains(t, files[0].Patch, "+Updated.")
		assert.NotContains(t, files[0].Patch, "-# Test Repository")
	})
}

func TestSubject(t *testing.T) {
	svc := NewService(loggy.NewNoopLogger())

	dir, _ := setupTempRepo(t)
	require.NoError(t, svc.Open(dir))

	subject, err := svc.Subject()
	require.NoError(t, err)
	assert.Contains(t, subject, "local:"+filepath.Base(dir)+"@")
}

func TestRenderPatch(t *testing.T) {
	t.Run("trims common prefix and suffix", func(t *testing.T) {
		got := renderPatch("a.txt", "one\ntwo\nthree\n", "one\nTWO\nthree\n")

		assert.Contains(t, got, "--- a/a.txt")
		assert.Contains(t, got, "@@ -2,1 +2,1 @@")
		assert.Contains(t, got, "-two\n")
		assert.Contains(t, got, "+TWO\n")
		assert.NotContains(t, got, "-one")
		assert.NotContains(t, got, "-three")
	})

	t.Run("new file shows only additions", func(t *testing.T) {
		got := renderPatch("b.txt", "", "hello\nworld\n")

		assert.Contains(t, got, "@@ -1,0 +1,2 @@")
		assert.Contains(t, got, "+hello\n+world\n")
		assert.NotContains(t, got, "\n-")
	})
}
