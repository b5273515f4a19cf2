// Package reconcile infers a customer's packaging progress by matching
// its full panel-id roster against the truncated part identifiers reported
// by the external packing station.
package reconcile

import (
	"math"
	"sort"

	"pack-backend/internal/models"
)

// Result is the outcome of one reconciliation pass. StageSuggestion is
// only a suggestion: committing a stage change is the lifecycle service's
// decision, never the engine's.
type Result struct {
	PackedCount     int
	TotalParts      int
	PackProgress    int
	StageSuggestion models.PackStage
	PackSeqs        []int
}

// Reconcile computes packed-count/progress for one customer given its full
// panel roster and every currently known package scan record. A panel
// counts as packed when its suffix key was seen in any package; a package
// is associated with the customer when at least one of its reported ids
// matches a roster panel.
func Reconcile(panelIDs []string, packages []models.Package) Result {
	res := Result{TotalParts: len(panelIDs)}

	rosterSuffixes := make(map[string]bool, len(panelIDs))
	for _, id := range panelIDs {
		rosterSuffixes[SuffixKey(id)] = true
	}

	scanned := make(map[string]bool)
	seqSet := make(map[int]bool)
	for _, pkg := range packages {
		for _, partID := range pkg.PartIDs {
			key := SuffixKey(partID)
			scanned[key] = true
			if rosterSuffixes[key] {
				seqSet[pkg.PackSeq] = true
			}
		}
	}

	// Counted per roster panel, not per distinct suffix: two panels that
	// collide on a suffix are both considered packed once it is scanned.
	for _, id := range panelIDs {
		if scanned[SuffixKey(id)] {
			res.PackedCount++
		}
	}

	res.PackProgress = Progress(res.PackedCount, res.TotalParts)

	for seq := range seqSet {
		res.PackSeqs = append(res.PackSeqs, seq)
	}
	sort.Ints(res.PackSeqs)

	switch {
	case res.TotalParts == 0 || res.PackedCount == 0:
		res.StageSuggestion = models.PackStageNotPacked
	case res.PackProgress < 100:
		res.StageSuggestion = models.PackStageInProgress
	default:
		res.StageSuggestion = models.PackStagePacked
	}

	return res
}

// Progress returns round(packed/total*100), or 0 when the roster is empty.
func Progress(packed, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(packed) / float64(total) * 100))
}
