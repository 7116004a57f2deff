// Package git records which branch a tree was grown on, using go-git.
package git

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/xvierd/forest-cli/internal/ports"
)

// Detector implements the ports.GitDetector interface using go-git.
type Detector struct {
	dir string
}

// NewDetector creates a detector rooted at dir. An empty dir means the
// process working directory.
func NewDetector(dir string) *Detector {
	return &Detector{dir: dir}
}

// Ensure Detector implements ports.GitDetector.
var _ ports.GitDetector = (*Detector)(nil)

// Detect resolves the branch, HEAD commit and repository name for the
// repository containing workingDir.
func (d *Detector) Detect(ctx context.Context, workingDir string) (*ports.GitInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	workingDir, err := d.resolveDir(workingDir)
	if err != nil {
		return nil, err
	}

	// Find the git repository by traversing up the directory tree
	repoPath, err := findGitRepo(workingDir)
	if err != nil {
		return nil, fmt.Errorf("git repository not found: %w", err)
	}

	repo, err := git.PlainOpenWithOptions(repoPath, &git.PlainOpenOptions{EnableDotGitCommonDir: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open git repository: %w", err)
	}

	head, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("failed to get HEAD: %w", err)
	}

	branch := head.Name().Short()
	if branch == "HEAD" {
		branch = "HEAD detached"
	}

	// Prefer the origin URL, then any remote, then the directory name
	repoName := filepath.Base(repoPath)
	if remote, err := repo.Remote("origin"); err == nil {
		if urls := remote.Config().URLs; len(urls) > 0 {
			repoName = extractRepoName(urls[0])
		}
	} else if remotes, err := repo.Remotes(); err == nil && len(remotes) > 0 {
		if urls := remotes[0].Config().URLs; len(urls) > 0 {
			repoName = extractRepoName(urls[0])
		}
	}

	return &ports.GitInfo{
		Branch:     branch,
		Commit:     head.Hash().String(),
		Repository: repoName,
	}, nil
}

// IsAvailable reports whether the detector directory is inside a git
// repository.
func (d *Detector) IsAvailable() bool {
	dir, err := d.resolveDir("")
	if err != nil {
		return false
	}
	_, err = findGitRepo(dir)
	return err == nil
}

func (d *Detector) resolveDir(workingDir string) (string, error) {
	if workingDir != "" {
		return workingDir, nil
	}
	if d.dir != "" {
		return d.dir, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}
	return cwd, nil
}

// findGitRepo traverses up the directory tree to find a .git directory.
func findGitRepo(startPath string) (string, error) {
	currentPath := startPath

	for {
		gitPath := filepath.Join(currentPath, ".git")
		info, err := os.Stat(gitPath)
		if err == nil && info.IsDir() {
			return currentPath, nil
		}

		// A .git file points at the real git dir of a worktree
		if err == nil && !info.IsDir() {
			content, err := os.ReadFile(gitPath)
			if err == nil && strings.HasPrefix(string(content), "gitdir: ") {
				return currentPath, nil
			}
		}

		parent := filepath.Dir(currentPath)
		if parent == currentPath {
			break
		}
		currentPath = parent
	}

	return "", fmt.Errorf("no .git directory found")
}

// extractRepoName extracts the owner/name pair from a git URL.
func extractRepoName(url string) string {
	// SSH URLs like git@github.com:user/repo.git
	if strings.HasPrefix(url, "git@") {
		parts := strings.Split(url, ":")
		if len(parts) >= 2 {
			return strings.TrimSuffix(parts[len(parts)-1], ".git")
		}
	}

	// HTTPS URLs like https://github.com/user/repo.git
	if strings.HasPrefix(url, "http") {
		parts := strings.Split(strings.TrimSuffix(url, "/"), "/")
		if len(parts) >= 2 {
			repo := strings.TrimSuffix(parts[len(parts)-1], ".git")
			return parts[len(parts)-2] + "/" + repo
		}
	}

	return url
}
