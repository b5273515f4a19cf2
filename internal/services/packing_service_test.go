package services

import (
	"context"
	"testing"
	"time"

	"pack-backend/internal/apperrors"
	"pack-backend/internal/locks"
	"pack-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var c0Time = time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

type packingFixture struct {
	svc       *PackingService
	customers *stubCustomerStore
	panels    *stubPanelStore
	scans     *stubScanSource
}

func newPackingFixture() *packingFixture {
	customers := newStubCustomerStore()
	panels := newStubPanelStore()
	scans := &stubScanSource{}
	customerLocks := locks.NewCustomerLocks()
	lifecycle := NewLifecycleService(customers, customerLocks)

	return &packingFixture{
		svc:       NewPackingService(customers, panels, scans, lifecycle, customerLocks),
		customers: customers,
		panels:    panels,
		scans:     scans,
	}
}

// Three-panel roster: full 32-char ids as the upstream ingester delivers
// them. The scan station reports only the last five characters.
var rosterPanels = []string{
	"58b2e383702249219bc6744e0419a9e6",
	"7c11d0a4e35a41b2a6a2c9f30aa41f2c",
	"0f93bd1c2e884d5e9d01a7b3cc277aa1",
}

func (f *packingFixture) seed(stage models.PackStage) *models.Customer {
	c := f.customers.add(&models.Customer{
		Name:             "acme",
		PackStage:        stage,
		ShipmentStage:    models.ShipmentNotShipped,
		WorkingDirectory: "/data/working/acme",
		StatusHistory:    []models.StatusHistoryEntry{InitialHistoryEntry(c0Time, len(rosterPanels))},
	})
	for _, id := range rosterPanels {
		f.panels.ids[c.ID] = append(f.panels.ids[c.ID], id)
	}
	return c
}

func TestCheckAndUpdateStatusPartial(t *testing.T) {
	f := newPackingFixture()
	c := f.seed(models.PackStageNotPacked)

	// Two of three panels scanned, truncated ids.
	f.scans.packages = []models.Package{
		{PackSeq: 1, PartIDs: []string{"9a9e6", "41f2c"}},
	}

	got, err := f.svc.CheckAndUpdateStatus(context.Background(), "acme", "system")
	require.NoError(t, err)

	assert.Equal(t, models.PackStageInProgress, got.PackStage)
	assert.Equal(t, 2, got.PackedCount)
	assert.Equal(t, 3, got.TotalParts)
	assert.Equal(t, 67, got.PackProgress)
	assert.Equal(t, []int{1}, got.PackSeqs)
	require.Len(t, f.customers.appendedEntries, 1)

	// Last panel arrives in a second package.
	f.scans.packages = append(f.scans.packages, models.Package{PackSeq: 2, PartIDs: []string{"77aa1"}})

	got, err = f.svc.CheckAndUpdateStatus(context.Background(), "acme", "system")
	require.NoError(t, err)

	assert.Equal(t, models.PackStagePacked, got.PackStage)
	assert.Equal(t, 100, got.PackProgress)
	assert.Equal(t, []int{1, 2}, got.PackSeqs)
	require.NotNil(t, c.PackDate)
	assert.Len(t, f.customers.appendedEntries, 2)
}

func TestCheckAndUpdateStatusNoScans(t *testing.T) {
	f := newPackingFixture()
	f.seed(models.PackStageNotPacked)

	got, err := f.svc.CheckAndUpdateStatus(context.Background(), "acme", "system")
	require.NoError(t, err)

	assert.Equal(t, models.PackStageNotPacked, got.PackStage)
	assert.Equal(t, 0, got.PackProgress)
	// No transition happened, so no history entry.
	assert.Empty(t, f.customers.appendedEntries)
}

func TestCheckAndUpdateStatusArchivedShortCircuits(t *testing.T) {
	f := newPackingFixture()
	c := f.seed(models.PackStageArchived)
	c.PackProgress = 100
	f.scans.packages = nil // working dir is gone

	got, err := f.svc.CheckAndUpdateStatus(context.Background(), "acme", "system")
	require.NoError(t, err)

	// Scan data never moves an ARCHIVED customer, nor resets its counters.
	assert.Equal(t, models.PackStageArchived, got.PackStage)
	assert.Equal(t, 100, got.PackProgress)
	assert.Equal(t, 0, f.customers.updateCalls)
}

func TestCheckAndUpdateStatusUnknownCustomer(t *testing.T) {
	f := newPackingFixture()

	_, err := f.svc.CheckAndUpdateStatus(context.Background(), "ghost", "system")
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestCheckAndUpdateStatusWhileBusy(t *testing.T) {
	f := newPackingFixture()
	c := f.seed(models.PackStageNotPacked)

	release, err := f.svc.Locks.Acquire(c.ID)
	require.NoError(t, err)
	defer release()

	_, err = f.svc.CheckAndUpdateStatus(context.Background(), "acme", "system")
	assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))
}

func TestGetCustomerBackfillsHistory(t *testing.T) {
	f := newPackingFixture()
	f.customers.add(&models.Customer{Name: "legacy", PackStage: models.PackStageNotPacked,
		ShipmentStage: models.ShipmentNotShipped, CreatedAt: c0Time})

	got, err := f.svc.GetCustomer(context.Background(), "legacy")
	require.NoError(t, err)

	require.Len(t, got.StatusHistory, 1)
	assert.Equal(t, models.PackStageNotPacked, got.StatusHistory[0].PackStage)
}

func TestGetCustomerNotFound(t *testing.T) {
	f := newPackingFixture()

	_, err := f.svc.GetCustomer(context.Background(), "ghost")
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}
