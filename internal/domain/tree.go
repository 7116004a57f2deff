package domain

import (
	"iter"
	"slices"
	"time"
)

// Tree is a forest entry, planted once per successful session.
type Tree struct {
	ID        string
	PlantedAt time.Time

	// Branch and Repository record the git context the session was grown
	// in, when one was detected.
	Branch     string
	Repository string
}

// NewTree creates a tree planted at the given instant.
func NewTree(plantedAt time.Time) Tree {
	return Tree{
		ID:        generateID(),
		PlantedAt: plantedAt,
	}
}

// SetGitContext stores git information for the tree.
func (t *Tree) SetGitContext(branch, repository string) {
	t.Branch = branch
	t.Repository = repository
}

// Forest is the append-only ledger of successfully grown trees, newest last.
// It is owned by a single session controller and is not safe for concurrent use.
type Forest struct {
	trees []Tree
}

// NewForest creates an empty forest.
func NewForest() *Forest {
	return &Forest{}
}

// Append plants a tree at the end of the forest.
func (f *Forest) Append(tree Tree) {
	f.trees = append(f.trees, tree)
}

// Size returns the number of trees planted.
func (f *Forest) Size() int {
	return len(f.trees)
}

// All returns a read-only view over the trees in planting order.
// The sequence can be ranged over any number of times.
func (f *Forest) All() iter.Seq[Tree] {
	trees := f.trees[:len(f.trees):len(f.trees)]
	return func(yield func(Tree) bool) {
		for _, t := range trees {
			if !yield(t) {
				return
			}
		}
	}
}

// Trees returns a copy of the planted trees.
func (f *Forest) Trees() []Tree {
	return slices.Clone(f.trees)
}
