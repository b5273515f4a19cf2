package services

import (
	"context"

	"pack-backend/internal/apperrors"
	"pack-backend/internal/cache"
	"pack-backend/internal/locks"
	"pack-backend/internal/metrics"
	"pack-backend/internal/models"
	"pack-backend/internal/reconcile"
	"pack-backend/internal/repositories"
)

// PackingService answers "how packed is this customer" by reconciling the
// panel roster against the scan records currently in the customer's
// working directory, and commits the outcome through the state machine.
type PackingService struct {
	Customers CustomerStore
	Panels    PanelStore
	Scans     ScanSource
	Lifecycle *LifecycleService
	Locks     *locks.CustomerLocks
}

func NewPackingService(customers CustomerStore, panels PanelStore, scans ScanSource, lifecycle *LifecycleService, customerLocks *locks.CustomerLocks) *PackingService {
	return &PackingService{
		Customers: customers,
		Panels:    panels,
		Scans:     scans,
		Lifecycle: lifecycle,
		Locks:     customerLocks,
	}
}

// GetCustomer returns a customer with its nested history, serving from
// cache when possible.
func (s *PackingService) GetCustomer(ctx context.Context, name string) (*models.Customer, error) {
	if c, ok := cache.GetCustomer(ctx, name); ok {
		return c, nil
	}

	c, err := s.Customers.GetByName(ctx, name)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, apperrors.NotFound("customer %s not found", name)
		}
		return nil, apperrors.IOFailure(err, "failed to load customer %s", name)
	}

	if err := s.Lifecycle.EnsureInitialHistory(ctx, c); err != nil {
		return nil, err
	}

	cache.SetCustomer(ctx, c)
	return c, nil
}

// CheckAndUpdateStatus recomputes a customer's packing status from the
// scan records on disk and persists the result. It holds the same
// per-customer lock as archive/restore/ship, so a recompute can never
// interleave with an archive reading the same working directory.
func (s *PackingService) CheckAndUpdateStatus(ctx context.Context, name, operator string) (*models.Customer, error) {
	c, err := s.Customers.GetByName(ctx, name)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, apperrors.NotFound("customer %s not found", name)
		}
		return nil, apperrors.IOFailure(err, "failed to load customer %s", name)
	}

	release, err := s.Locks.Acquire(c.ID)
	if err != nil {
		metrics.LockConflicts.Inc()
		return nil, err
	}
	defer release()

	// Re-read under the lock; the row may have changed since the lookup.
	c, err = s.Customers.GetByName(ctx, name)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, apperrors.NotFound("customer %s not found", name)
		}
		return nil, apperrors.IOFailure(err, "failed to load customer %s", name)
	}

	if err := s.Lifecycle.EnsureInitialHistory(ctx, c); err != nil {
		return nil, err
	}

	// An archived customer's working data is gone; scan records cannot
	// move it. Only a restore changes an ARCHIVED customer.
	if c.PackStage == models.PackStageArchived {
		return c, nil
	}

	panelIDs, err := s.Panels.ListIDsByCustomer(ctx, c.ID)
	if err != nil {
		return nil, apperrors.IOFailure(err, "failed to load panel roster for %s", name)
	}

	packages, err := s.Scans.ReadWorkingDir(c.WorkingDirectory)
	if err != nil {
		return nil, err
	}

	res := reconcile.Reconcile(panelIDs, packages)
	metrics.ReconcileRuns.Inc()

	if err := s.Lifecycle.ApplyReconcile(ctx, c, res, operator); err != nil {
		return nil, err
	}
	return c, nil
}
