package ports

import "context"

// GitInfo is the repository a tree was grown in.
type GitInfo struct {
	Branch     string
	Commit     string
	Repository string
}

// GitDetector looks up repository context when a tree is planted. Lookups
// are best effort; a failed lookup plants an untagged tree.
type GitDetector interface {
	Detect(ctx context.Context, workingDir string) (*GitInfo, error)

	// IsAvailable reports whether the detector's directory is inside a
	// repository at all.
	IsAvailable() bool
}
