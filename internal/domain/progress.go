package domain

import "fmt"

// GrowthStage is the visual stage of the tree being grown.
type GrowthStage string

const (
	StageSapling  GrowthStage = "sapling"
	StageFullTree GrowthStage = "full_tree"
)

// Tree sizes in display units, interpolated by progress.
const (
	TreeBaseSize = 48
	TreeMaxSize  = 120
)

// GrowthProgress returns the completion percentage in [0,100] for a
// session of durationSeconds with remainingSeconds left.
func GrowthProgress(durationSeconds, remainingSeconds int) float64 {
	if durationSeconds <= 0 {
		return 0
	}
	if remainingSeconds < 0 {
		remainingSeconds = 0
	}
	if remainingSeconds > durationSeconds {
		remainingSeconds = durationSeconds
	}
	return float64(durationSeconds-remainingSeconds) / float64(durationSeconds) * 100
}

// StageFor returns the growth stage for the given progress. Only a running
// session past the halfway mark shows a full tree.
func StageFor(progress float64, running bool) GrowthStage {
	if !running || progress < 50 {
		return StageSapling
	}
	return StageFullTree
}

// TreeSize returns the display size of a tree at the given progress.
func TreeSize(progress float64) float64 {
	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}
	return TreeBaseSize + progress/100*(TreeMaxSize-TreeBaseSize)
}

// FormatRemaining renders remaining seconds as M:SS.
func FormatRemaining(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
