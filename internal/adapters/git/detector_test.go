package git

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// initRepo creates a repository with a single commit and returns its path
// and the commit hash.
func initRepo(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()

	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("Failed to init git repo: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("focus"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		t.Fatalf("Failed to get worktree: %v", err)
	}
	if _, err := worktree.Add("notes.txt"); err != nil {
		t.Fatalf("Failed to add file: %v", err)
	}

	commit, err := worktree.Commit("Initial commit", &git.CommitOptions{
		Author: &object.Signature{
			Name:  "Test User",
			Email: "test@example.com",
		},
	})
	if err != nil {
		t.Fatalf("Failed to create commit: %v", err)
	}

	return dir, commit.String()
}

func TestDetector_Detect(t *testing.T) {
	dir, commit := initRepo(t)

	info, err := NewDetector("").Detect(context.Background(), dir)
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}

	if info.Commit != commit {
		t.Errorf("Expected commit %s, got %s", commit, info.Commit)
	}

	// go-git defaults to master
	if info.Branch != "master" && info.Branch != "main" {
		t.Errorf("Unexpected branch: %s", info.Branch)
	}

	if info.Repository != filepath.Base(dir) {
		t.Errorf("Repository without remote = %q, want %q", info.Repository, filepath.Base(dir))
	}
}

func TestDetector_Detect_WithRemote(t *testing.T) {
	dir, _ := initRepo(t)

	repo, err := git.PlainOpen(dir)
	if err != nil {
		t.Fatalf("Failed to open repo: %v", err)
	}
	_, err = repo.CreateRemote(&config.RemoteConfig{
		Name: "origin",
		URLs: []string{"git@github.com:xvierd/forest-cli.git"},
	})
	if err != nil {
		t.Fatalf("Failed to create remote: %v", err)
	}

	info, err := NewDetector(dir).Detect(context.Background(), "")
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if info.Repository != "xvierd/forest-cli" {
		t.Errorf("Repository = %q, want xvierd/forest-cli", info.Repository)
	}
}

func TestDetector_Detect_FromSubdirectory(t *testing.T) {
	dir, _ := initRepo(t)
	sub := filepath.Join(dir, "a", "b")
	if err := os.MkdirAll(sub, 0755); err != nil {
		t.Fatalf("Failed to create subdir: %v", err)
	}

	if _, err := NewDetector("").Detect(context.Background(), sub); err != nil {
		t.Errorf("Detect() from subdirectory error = %v", err)
	}
}

func TestDetector_Detect_NoGitRepo(t *testing.T) {
	_, err := NewDetector("").Detect(context.Background(), t.TempDir())
	if err == nil {
		t.Error("Expected error when no git repo exists")
	}
}

func TestDetector_Detect_CancelledContext(t *testing.T) {
	dir, _ := initRepo(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewDetector("").Detect(ctx, dir); err == nil {
		t.Error("Expected error for cancelled context")
	}
}

func TestDetector_IsAvailable(t *testing.T) {
	dir, _ := initRepo(t)

	if !NewDetector(dir).IsAvailable() {
		t.Error("IsAvailable() = false inside a repository")
	}
	if NewDetector(t.TempDir()).IsAvailable() {
		t.Error("IsAvailable() = true outside a repository")
	}
}

func TestFindGitRepo(t *testing.T) {
	tmpDir := t.TempDir()

	subDir := filepath.Join(tmpDir, "level1", "level2")
	if err := os.MkdirAll(subDir, 0755); err != nil {
		t.Fatalf("Failed to create subdir: %v", err)
	}

	if _, err := git.PlainInit(tmpDir, false); err != nil {
		t.Fatalf("Failed to init git repo: %v", err)
	}

	found, err := findGitRepo(subDir)
	if err != nil {
		t.Fatalf("findGitRepo() error = %v", err)
	}
	if found != tmpDir {
		t.Errorf("Expected repo at %s, found at %s", tmpDir, found)
	}
}

func TestFindGitRepo_Worktree(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(tmpDir, ".git"), []byte("gitdir: /elsewhere/.git/worktrees/x\n"), 0644); err != nil {
		t.Fatalf("Failed to write .git file: %v", err)
	}

	found, err := findGitRepo(tmpDir)
	if err != nil {
		t.Fatalf("findGitRepo() error = %v", err)
	}
	if found != tmpDir {
		t.Errorf("Expected repo at %s, found at %s", tmpDir, found)
	}
}

func TestExtractRepoName(t *testing.T) {
	tests := []struct {
		url      string
		expected string
	}{
		{"git@github.com:user/repo.git", "user/repo"},
		{"https://github.com/user/repo.git", "user/repo"},
		{"https://gitlab.com/org/project/", "org/project"},
		{"git@bitbucket.org:team/repo.git", "team/repo"},
		{"/path/to/repo", "/path/to/repo"},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			result := extractRepoName(tt.url)
			if result != tt.expected {
				t.Errorf("extractRepoName(%q) = %q, want %q", tt.url, result, tt.expected)
			}
		})
	}
}
