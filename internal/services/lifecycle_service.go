package services

import (
	"context"
	"time"

	"pack-backend/internal/apperrors"
	"pack-backend/internal/cache"
	"pack-backend/internal/locks"
	"pack-backend/internal/models"
	"pack-backend/internal/reconcile"
	"pack-backend/internal/repositories"
	"pack-backend/internal/timeutil"
)

// Shipment modes accepted by ShipCustomer.
const (
	ShipModePartial = "partial"
	ShipModeFull    = "full"
)

// LifecycleService owns the customer state machine: both lifecycle axes,
// the guarded transitions between them, the append-only status history
// and the set-once occurrence dates. No other component writes a stage.
type LifecycleService struct {
	Customers CustomerStore
	Locks     *locks.CustomerLocks

	now func() time.Time
}

func NewLifecycleService(customers CustomerStore, customerLocks *locks.CustomerLocks) *LifecycleService {
	return &LifecycleService{
		Customers: customers,
		Locks:     customerLocks,
		now:       timeutil.Now,
	}
}

// InitialHistoryEntry is the mandatory first entry of every customer's
// history: the initial state at creation time, on both axes.
func InitialHistoryEntry(at time.Time, totalParts int) models.StatusHistoryEntry {
	return models.StatusHistoryEntry{
		PackStage:             models.PackStageNotPacked,
		ShipmentStage:         models.ShipmentNotShipped,
		PreviousPackStage:     models.PackStageNotPacked,
		PreviousShipmentStage: models.ShipmentNotShipped,
		Timestamp:             at,
		Operator:              "system",
		Remark:                "customer created",
		TotalParts:            totalParts,
	}
}

// transition mutates the customer's stages, stamps the set-once dates and
// returns the single history entry recording the change. Both axes'
// before/after values are captured even when only one moved.
func (s *LifecycleService) transition(c *models.Customer, pack models.PackStage, ship models.ShipmentStage, operator, remark string) *models.StatusHistoryEntry {
	now := s.now()

	entry := &models.StatusHistoryEntry{
		PackStage:             pack,
		ShipmentStage:         ship,
		PreviousPackStage:     c.PackStage,
		PreviousShipmentStage: c.ShipmentStage,
		Timestamp:             now,
		Operator:              operator,
		Remark:                remark,
		PackProgress:          c.PackProgress,
		PackedCount:           c.PackedCount,
		TotalParts:            c.TotalParts,
	}

	c.PackStage = pack
	c.ShipmentStage = ship

	// First-occurrence dates are set exactly once. A customer cycling
	// PACKED -> ARCHIVED -> PACKED keeps the date of its first cycle.
	if pack == models.PackStagePacked && c.PackDate == nil {
		c.PackDate = &now
	}
	if pack == models.PackStageArchived && c.ArchiveDate == nil {
		c.ArchiveDate = &now
	}
	if (ship == models.ShipmentPartialShipped || ship == models.ShipmentFullShipped) && c.ShipmentDate == nil {
		c.ShipmentDate = &now
	}

	c.StatusHistory = append(c.StatusHistory, *entry)
	return entry
}

// ApplyReconcile commits a reconciliation result. The pack stage follows
// the engine's suggestion in either direction while the customer is in a
// packing stage; ARCHIVED is never changed by scan data, only by restore.
// The caller must already hold the customer's lock.
func (s *LifecycleService) ApplyReconcile(ctx context.Context, c *models.Customer, res reconcile.Result, operator string) error {
	c.PackedCount = res.PackedCount
	c.TotalParts = res.TotalParts
	c.PackProgress = res.PackProgress
	c.PackSeqs = res.PackSeqs

	var entry *models.StatusHistoryEntry
	if c.PackStage != models.PackStageArchived && res.StageSuggestion != c.PackStage {
		entry = s.transition(c, res.StageSuggestion, c.ShipmentStage, operator, "packing status recomputed from scan records")
	}

	if err := s.Customers.UpdateStatus(ctx, c, entry); err != nil {
		return s.wrapStoreErr(err, c.Name)
	}
	cache.InvalidateCustomer(ctx, c.Name)
	return nil
}

// MarkArchived moves an already-archived-on-disk customer to ARCHIVED.
// Guard and locking belong to the archive operation driving it.
func (s *LifecycleService) MarkArchived(ctx context.Context, c *models.Customer, operator, remark string) error {
	if c.PackStage != models.PackStagePacked {
		return apperrors.InvalidState("customer %s is %s, only PACKED customers can be archived", c.Name, c.PackStage)
	}

	entry := s.transition(c, models.PackStageArchived, c.ShipmentStage, operator, remark)
	if err := s.Customers.UpdateStatus(ctx, c, entry); err != nil {
		return s.wrapStoreErr(err, c.Name)
	}
	cache.InvalidateCustomer(ctx, c.Name)
	return nil
}

// MarkRestored returns an ARCHIVED customer to PACKED after its working
// directory was restored, starting a new pack/archive cycle. The archive
// date from the first cycle is kept.
func (s *LifecycleService) MarkRestored(ctx context.Context, c *models.Customer, operator string) error {
	if c.PackStage != models.PackStageArchived {
		return apperrors.InvalidState("customer %s is %s, only ARCHIVED customers can be restored", c.Name, c.PackStage)
	}

	entry := s.transition(c, models.PackStagePacked, c.ShipmentStage, operator, "restored from archive")
	if err := s.Customers.UpdateStatus(ctx, c, entry); err != nil {
		return s.wrapStoreErr(err, c.Name)
	}
	cache.InvalidateCustomer(ctx, c.Name)
	return nil
}

// ShipCustomer records a partial or full shipment. Shipping an unpacked
// customer is rejected: only PACKED or ARCHIVED customers leave the floor.
func (s *LifecycleService) ShipCustomer(ctx context.Context, name, mode, operator string) (*models.Customer, error) {
	var target models.ShipmentStage
	switch mode {
	case ShipModePartial:
		target = models.ShipmentPartialShipped
	case ShipModeFull:
		target = models.ShipmentFullShipped
	default:
		return nil, apperrors.InvalidState("unknown shipment mode %q", mode)
	}

	c, err := s.Customers.GetByName(ctx, name)
	if err != nil {
		return nil, s.wrapStoreErr(err, name)
	}

	release, err := s.Locks.Acquire(c.ID)
	if err != nil {
		return nil, err
	}
	defer release()

	// Re-read under the lock; the guard below must not run on a snapshot
	// taken before the lock was ours.
	c, err = s.Customers.GetByName(ctx, name)
	if err != nil {
		return nil, s.wrapStoreErr(err, name)
	}

	if c.PackStage != models.PackStagePacked && c.PackStage != models.PackStageArchived {
		return nil, apperrors.InvalidState("customer %s cannot ship before packing is complete (stage %s)", c.Name, c.PackStage)
	}

	entry := s.transition(c, c.PackStage, target, operator, "shipment recorded ("+mode+")")
	if err := s.Customers.UpdateStatus(ctx, c, entry); err != nil {
		return nil, s.wrapStoreErr(err, name)
	}
	cache.InvalidateCustomer(ctx, c.Name)
	return c, nil
}

// MarkNotShipped cancels a recorded shipment. Audit-only: no dates are
// cleared, the history entry is the whole effect.
func (s *LifecycleService) MarkNotShipped(ctx context.Context, name, operator string) (*models.Customer, error) {
	c, err := s.Customers.GetByName(ctx, name)
	if err != nil {
		return nil, s.wrapStoreErr(err, name)
	}

	release, err := s.Locks.Acquire(c.ID)
	if err != nil {
		return nil, err
	}
	defer release()

	c, err = s.Customers.GetByName(ctx, name)
	if err != nil {
		return nil, s.wrapStoreErr(err, name)
	}

	if c.ShipmentStage == models.ShipmentNotShipped {
		return nil, apperrors.InvalidState("customer %s has no shipment to cancel", c.Name)
	}

	entry := s.transition(c, c.PackStage, models.ShipmentNotShipped, operator, "shipment cancelled")
	if err := s.Customers.UpdateStatus(ctx, c, entry); err != nil {
		return nil, s.wrapStoreErr(err, name)
	}
	cache.InvalidateCustomer(ctx, c.Name)
	return c, nil
}

// EnsureInitialHistory backfills the mandatory first history entry for
// rows created before history support, so the invariant "first entry is
// the initial state" holds even when established on first read.
func (s *LifecycleService) EnsureInitialHistory(ctx context.Context, c *models.Customer) error {
	if len(c.StatusHistory) > 0 {
		return nil
	}
	entry := InitialHistoryEntry(c.CreatedAt, c.TotalParts)
	if err := s.Customers.AppendHistory(ctx, c.ID, &entry); err != nil {
		return s.wrapStoreErr(err, c.Name)
	}
	c.StatusHistory = append(c.StatusHistory, entry)
	return nil
}

func (s *LifecycleService) wrapStoreErr(err error, name string) error {
	if repositories.IsNotFound(err) {
		return apperrors.NotFound("customer %s not found", name)
	}
	return apperrors.IOFailure(err, "customer store failure for %s", name)
}
