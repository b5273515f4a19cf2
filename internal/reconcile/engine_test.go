package reconcile

import (
	"testing"
	"time"

	"pack-backend/internal/models"

	"github.com/stretchr/testify/assert"
)

func pkg(seq int, partIDs ...string) models.Package {
	return models.Package{
		PackSeq:     seq,
		PartIDs:     partIDs,
		PackageInfo: models.PackageInfo{Quantity: len(partIDs)},
		Timestamp:   time.Now(),
	}
}

func TestSuffixKey(t *testing.T) {
	tests := []struct {
		name string
		id   string
		want string
	}{
		{"long id truncated to trailing chars", "58b2e383702249219bc6744e0419a9e6", "9a9e6"},
		{"exactly suffix length unchanged", "9a9e6", "9a9e6"},
		{"shorter than suffix length unchanged", "p1", "p1"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SuffixKey(tt.id))
		})
	}
}

func TestReconcileScannerTruncatedIDs(t *testing.T) {
	// Full manufacturing id vs 5-char scanner report must match.
	roster := []string{"58b2e383702249219bc6744e0419a9e6"}
	res := Reconcile(roster, []models.Package{pkg(7, "9a9e6")})

	assert.Equal(t, 1, res.PackedCount)
	assert.Equal(t, 100, res.PackProgress)
	assert.Equal(t, models.PackStagePacked, res.StageSuggestion)
	assert.Equal(t, []int{7}, res.PackSeqs)
}

func TestReconcileProgression(t *testing.T) {
	roster := []string{"panel-0001-p1", "panel-0002-p2", "panel-0003-p3"}

	// One package covering two of three panels.
	res := Reconcile(roster, []models.Package{pkg(11, "01-p1", "02-p2")})
	assert.Equal(t, 2, res.PackedCount)
	assert.Equal(t, 3, res.TotalParts)
	assert.Equal(t, 67, res.PackProgress)
	assert.Equal(t, models.PackStageInProgress, res.StageSuggestion)
	assert.Equal(t, []int{11}, res.PackSeqs)

	// A second package completes the roster.
	res = Reconcile(roster, []models.Package{
		pkg(11, "01-p1", "02-p2"),
		pkg(12, "03-p3"),
	})
	assert.Equal(t, 3, res.PackedCount)
	assert.Equal(t, 100, res.PackProgress)
	assert.Equal(t, models.PackStagePacked, res.StageSuggestion)
	assert.Equal(t, []int{11, 12}, res.PackSeqs)
}

func TestReconcileEmptyInputs(t *testing.T) {
	res := Reconcile(nil, nil)
	assert.Equal(t, 0, res.TotalParts)
	assert.Equal(t, 0, res.PackProgress)
	assert.Equal(t, models.PackStageNotPacked, res.StageSuggestion)
	assert.Empty(t, res.PackSeqs)

	// Packages with no matching panels leave the customer untouched.
	res = Reconcile([]string{"aaaaaaaaaa"}, []models.Package{pkg(1, "zzzzz")})
	assert.Equal(t, 0, res.PackedCount)
	assert.Equal(t, models.PackStageNotPacked, res.StageSuggestion)
	assert.Empty(t, res.PackSeqs)
}

func TestReconcileForeignPartsDoNotAssociatePackage(t *testing.T) {
	roster := []string{"cust-a-11111"}
	res := Reconcile(roster, []models.Package{
		pkg(1, "11111", "99999"), // one of ours, one foreign
		pkg(2, "88888"),          // entirely foreign
	})

	assert.Equal(t, 1, res.PackedCount)
	assert.Equal(t, []int{1}, res.PackSeqs)
}

func TestReconcileDuplicateScansCountOnce(t *testing.T) {
	roster := []string{"cust-a-11111", "cust-a-22222"}
	res := Reconcile(roster, []models.Package{
		pkg(1, "11111"),
		pkg(2, "11111"), // re-scan of the same panel
	})

	assert.Equal(t, 1, res.PackedCount)
	assert.Equal(t, 50, res.PackProgress)
	assert.Equal(t, []int{1, 2}, res.PackSeqs)
}

func TestProgressRounding(t *testing.T) {
	assert.Equal(t, 0, Progress(0, 0))
	assert.Equal(t, 0, Progress(0, 3))
	assert.Equal(t, 33, Progress(1, 3))
	assert.Equal(t, 67, Progress(2, 3))
	assert.Equal(t, 50, Progress(1, 2))
	assert.Equal(t, 100, Progress(3, 3))
}
