package services

import (
	"context"
	"log"
	"os"
	"path/filepath"

	"pack-backend/internal/apperrors"
	"pack-backend/internal/cache"
	"pack-backend/internal/locks"
	"pack-backend/internal/models"
	"pack-backend/internal/repositories"
	"pack-backend/internal/timeutil"
)

// CustomerService handles customer intake and administrative removal.
// Lifecycle mutations live in LifecycleService; this service only creates
// and deletes the records themselves.
type CustomerService struct {
	Customers   CustomerStore
	Panels      PanelStore
	Locks       *locks.CustomerLocks
	WorkingRoot string
}

func NewCustomerService(customers CustomerStore, panels PanelStore, customerLocks *locks.CustomerLocks, workingRoot string) *CustomerService {
	return &CustomerService{
		Customers:   customers,
		Panels:      panels,
		Locks:       customerLocks,
		WorkingRoot: workingRoot,
	}
}

// CreateCustomer consumes a panel roster from the upstream ingester and
// creates the customer in its initial state, first history entry included.
func (s *CustomerService) CreateCustomer(ctx context.Context, req *models.CreateCustomerRequest) (*models.Customer, error) {
	if req.Name == "" {
		return nil, apperrors.InvalidState("customer name is required")
	}

	workingDir := req.WorkingDirectory
	if workingDir == "" {
		workingDir = filepath.Join(s.WorkingRoot, req.Name)
	}

	now := timeutil.Now()
	initial := InitialHistoryEntry(now, len(req.Panels))

	customer := &models.Customer{
		Name:             req.Name,
		Address:          req.Address,
		PackStage:        models.PackStageNotPacked,
		ShipmentStage:    models.ShipmentNotShipped,
		TotalParts:       len(req.Panels),
		StatusHistory:    []models.StatusHistoryEntry{initial},
		WorkingDirectory: workingDir,
	}

	if err := s.Customers.Create(ctx, customer); err != nil {
		return nil, apperrors.IOFailure(err, "failed to create customer %s", req.Name)
	}

	if len(req.Panels) > 0 {
		panels := make([]models.Panel, 0, len(req.Panels))
		for _, p := range req.Panels {
			panels = append(panels, models.Panel{
				CustomerID: customer.ID,
				PanelID:    p.PanelID,
				Width:      p.Width,
				Height:     p.Height,
				Thickness:  p.Thickness,
				Material:   p.Material,
			})
		}
		if err := s.Panels.CreateBatch(ctx, customer.ID, panels); err != nil {
			return nil, apperrors.IOFailure(err, "failed to store panel roster for %s", req.Name)
		}
	}

	if err := os.MkdirAll(workingDir, 0o755); err != nil {
		log.Printf("[Customer] Could not pre-create working directory %s: %v", workingDir, err)
	}

	return customer, nil
}

func (s *CustomerService) ListCustomers(ctx context.Context) ([]*models.Customer, error) {
	customers, err := s.Customers.List(ctx)
	if err != nil {
		return nil, apperrors.IOFailure(err, "failed to list customers")
	}
	return customers, nil
}

func (s *CustomerService) ListPanels(ctx context.Context, name string) ([]models.Panel, error) {
	c, err := s.Customers.GetByName(ctx, name)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, apperrors.NotFound("customer %s not found", name)
		}
		return nil, apperrors.IOFailure(err, "failed to load customer %s", name)
	}

	panels, err := s.Panels.ListByCustomer(ctx, c.ID)
	if err != nil {
		return nil, apperrors.IOFailure(err, "failed to load panels for %s", name)
	}
	return panels, nil
}

// DeleteCustomer is the administrative hard delete: removes the customer,
// its panels and its working directory. Archive records are audit history
// and stay.
func (s *CustomerService) DeleteCustomer(ctx context.Context, name string) error {
	c, err := s.Customers.GetByName(ctx, name)
	if err != nil {
		if repositories.IsNotFound(err) {
			return apperrors.NotFound("customer %s not found", name)
		}
		return apperrors.IOFailure(err, "failed to load customer %s", name)
	}

	release, err := s.Locks.Acquire(c.ID)
	if err != nil {
		return err
	}
	defer release()

	// Re-read under the lock so the working directory removed below is
	// the one currently on record.
	c, err = s.Customers.GetByName(ctx, name)
	if err != nil {
		if repositories.IsNotFound(err) {
			return apperrors.NotFound("customer %s not found", name)
		}
		return apperrors.IOFailure(err, "failed to load customer %s", name)
	}

	if err := s.Customers.Delete(ctx, c.ID); err != nil {
		return apperrors.IOFailure(err, "failed to delete customer %s", name)
	}

	if c.WorkingDirectory != "" {
		if err := os.RemoveAll(c.WorkingDirectory); err != nil {
			log.Printf("[Customer] Could not remove working directory %s: %v", c.WorkingDirectory, err)
		}
	}

	cache.InvalidateCustomer(ctx, name)
	return nil
}
