package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"pack-backend/internal/apperrors"
	"pack-backend/internal/locks"
	"pack-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCustomerFixture(t *testing.T) (*CustomerService, *stubCustomerStore, *stubPanelStore) {
	t.Helper()
	customers := newStubCustomerStore()
	panels := newStubPanelStore()
	svc := NewCustomerService(customers, panels, locks.NewCustomerLocks(), t.TempDir())
	return svc, customers, panels
}

func TestCreateCustomerWithRoster(t *testing.T) {
	svc, _, panels := newCustomerFixture(t)

	c, err := svc.CreateCustomer(context.Background(), &models.CreateCustomerRequest{
		Name:    "acme",
		Address: "12 Dock Rd",
		Panels: []models.CreatePanelRequest{
			{PanelID: "58b2e383702249219bc6744e0419a9e6", Width: 600, Height: 720, Material: "oak"},
			{PanelID: "7c11d0a4e35a41b2a6a2c9f30aa41f2c", Width: 450, Height: 300, Material: "oak"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, models.PackStageNotPacked, c.PackStage)
	assert.Equal(t, models.ShipmentNotShipped, c.ShipmentStage)
	assert.Equal(t, 2, c.TotalParts)
	assert.Len(t, panels.ids[c.ID], 2)

	// First history entry exists from the moment of creation.
	require.Len(t, c.StatusHistory, 1)
	assert.Equal(t, models.PackStageNotPacked, c.StatusHistory[0].PackStage)
	assert.Equal(t, 2, c.StatusHistory[0].TotalParts)

	// Working directory defaults under the root and is pre-created.
	assert.Equal(t, filepath.Join(svc.WorkingRoot, "acme"), c.WorkingDirectory)
	info, err := os.Stat(c.WorkingDirectory)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestCreateCustomerRequiresName(t *testing.T) {
	svc, _, _ := newCustomerFixture(t)

	_, err := svc.CreateCustomer(context.Background(), &models.CreateCustomerRequest{})
	assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidState))
}

func TestDeleteCustomerRemovesWorkingDir(t *testing.T) {
	svc, _, _ := newCustomerFixture(t)

	c, err := svc.CreateCustomer(context.Background(), &models.CreateCustomerRequest{Name: "acme"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteCustomer(context.Background(), "acme"))

	_, statErr := os.Stat(c.WorkingDirectory)
	assert.True(t, os.IsNotExist(statErr))
	err = svc.DeleteCustomer(context.Background(), "acme")
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestDeleteCustomerWhileBusy(t *testing.T) {
	svc, _, _ := newCustomerFixture(t)

	c, err := svc.CreateCustomer(context.Background(), &models.CreateCustomerRequest{Name: "acme"})
	require.NoError(t, err)

	release, err := svc.Locks.Acquire(c.ID)
	require.NoError(t, err)
	defer release()

	err = svc.DeleteCustomer(context.Background(), "acme")
	assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))
}

func TestListPanelsUnknownCustomer(t *testing.T) {
	svc, _, _ := newCustomerFixture(t)

	_, err := svc.ListPanels(context.Background(), "ghost")
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}
