package services

import (
	"context"

	"pack-backend/internal/models"
)

// CustomerStore is the customer-collection contract the services mutate
// through. Backed by repositories.CustomerRepository in production and by
// stubs in tests.
type CustomerStore interface {
	Create(ctx context.Context, c *models.Customer) error
	Get(ctx context.Context, id int) (*models.Customer, error)
	GetByName(ctx context.Context, name string) (*models.Customer, error)
	List(ctx context.Context) ([]*models.Customer, error)
	UpdateStatus(ctx context.Context, c *models.Customer, entry *models.StatusHistoryEntry) error
	AppendHistory(ctx context.Context, customerID int, entry *models.StatusHistoryEntry) error
	Delete(ctx context.Context, id int) error
}

// PanelStore provides the panel roster owned by a customer.
type PanelStore interface {
	CreateBatch(ctx context.Context, customerID int, panels []models.Panel) error
	ListByCustomer(ctx context.Context, customerID int) ([]models.Panel, error)
	ListIDsByCustomer(ctx context.Context, customerID int) ([]string, error)
}

// ArchiveStore is the append-mostly archive-record collection.
type ArchiveStore interface {
	Create(ctx context.Context, rec *models.ArchiveRecord) error
	Get(ctx context.Context, id int) (*models.ArchiveRecord, error)
	GetDetail(ctx context.Context, id int) (*models.ArchiveRecord, error)
	List(ctx context.Context, page, pageSize int) ([]*models.ArchiveRecord, int, error)
	Delete(ctx context.Context, id int) error
}

// ScanSource reads package scan records out of a working directory. The
// external packing station owns writing them.
type ScanSource interface {
	ReadWorkingDir(workingDir string) ([]models.Package, error)
}

// Compressor is the compression capability consumed by archive/restore.
// Both operations are atomic from this service's point of view.
type Compressor interface {
	Compress(srcDir, destZip string) error
	Extract(zipPath, destDir string) ([]string, error)
}

// ArtifactMirror is the optional off-site copy of backup artifacts.
type ArtifactMirror interface {
	Upload(ctx context.Context, artifactPath string) error
	Fetch(ctx context.Context, artifactPath string) error
}
