package services

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"pack-backend/internal/apperrors"
	"pack-backend/internal/locks"
	"pack-backend/internal/metrics"
	"pack-backend/internal/models"
	"pack-backend/internal/repositories"
	"pack-backend/internal/timeutil"

	"github.com/google/uuid"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// ArchiveService snapshots a PACKED customer's working directory into a
// compressed artifact plus an immutable archive record, and restores it
// back. Step order matters: the artifact is confirmed on disk before the
// record is written, the record before the working directory is removed,
// and the stage transition comes last. A crash anywhere in between leaves
// the customer re-archivable, never stage-inconsistent.
type ArchiveService struct {
	Customers CustomerStore
	Archives  ArchiveStore
	Scans     ScanSource
	Zipper    Compressor
	Mirror    ArtifactMirror // nil when mirroring is disabled
	Lifecycle *LifecycleService
	Locks     *locks.CustomerLocks

	BackupDir   string
	WorkingRoot string
}

func NewArchiveService(
	customers CustomerStore,
	archives ArchiveStore,
	scans ScanSource,
	zipper Compressor,
	mirror ArtifactMirror,
	lifecycle *LifecycleService,
	customerLocks *locks.CustomerLocks,
	backupDir, workingRoot string,
) *ArchiveService {
	return &ArchiveService{
		Customers:   customers,
		Archives:    archives,
		Scans:       scans,
		Zipper:      zipper,
		Mirror:      mirror,
		Lifecycle:   lifecycle,
		Locks:       customerLocks,
		BackupDir:   backupDir,
		WorkingRoot: workingRoot,
	}
}

// Archive snapshots and retires a customer's working data. Fails with
// InvalidState unless the customer is PACKED; any failure before the
// working directory is removed leaves stage, history and directory
// untouched and discards the partial artifact.
func (s *ArchiveService) Archive(ctx context.Context, name, operator, remark string) (*models.ArchiveRecord, error) {
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

	// Re-read under the lock: a recompute may have committed between the
	// lookup and the acquire, and the guard must see its result.
	c, err = s.Customers.GetByName(ctx, name)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, apperrors.NotFound("customer %s not found", name)
		}
		return nil, apperrors.IOFailure(err, "failed to load customer %s", name)
	}

	if c.PackStage != models.PackStagePacked {
		metrics.ArchiveOps.WithLabelValues("archive", "rejected").Inc()
		return nil, apperrors.InvalidState("customer %s is %s, only PACKED customers can be archived", c.Name, c.PackStage)
	}

	// Snapshot the scan records before anything is touched on disk.
	packages, err := s.Scans.ReadWorkingDir(c.WorkingDirectory)
	if err != nil {
		return nil, err
	}

	record := s.buildRecord(c, packages, operator, remark)

	artifact := s.artifactPath(c.Name)
	if err := s.Zipper.Compress(c.WorkingDirectory, artifact); err != nil {
		metrics.ArchiveOps.WithLabelValues("archive", "failed").Inc()
		return nil, apperrors.IOFailure(err, "failed to compress working directory for %s", name)
	}
	record.BackupArtifactPath = artifact

	// Only after the artifact is confirmed written: persist the record.
	if err := s.Archives.Create(ctx, record); err != nil {
		os.Remove(artifact)
		metrics.ArchiveOps.WithLabelValues("archive", "failed").Inc()
		return nil, apperrors.IOFailure(err, "failed to store archive record for %s", name)
	}

	// Best effort off-site copy; never fails the archive.
	if s.Mirror != nil {
		if err := s.Mirror.Upload(ctx, artifact); err != nil {
			log.Printf("[Archive] Mirror upload failed for %s: %v", filepath.Base(artifact), err)
		}
	}

	// The record is durable; now the live data may go.
	if err := os.RemoveAll(c.WorkingDirectory); err != nil {
		log.Printf("[Archive] Could not remove working directory %s: %v", c.WorkingDirectory, err)
	}

	if err := s.Lifecycle.MarkArchived(ctx, c, operator, remark); err != nil {
		return nil, err
	}

	metrics.ArchiveOps.WithLabelValues("archive", "ok").Inc()
	log.Printf("[Archive] Customer %s archived as record %d (%d packages, %d parts)",
		c.Name, record.ID, record.PackagesCount, record.TotalPartsCount)
	return record, nil
}

// Restore decompresses an archived snapshot into a fresh working
// directory and returns the customer to PACKED. The archive record itself
// is permanent audit history and is not touched.
func (s *ArchiveService) Restore(ctx context.Context, archiveID int, operator string) (*models.Customer, error) {
	record, err := s.Archives.Get(ctx, archiveID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, apperrors.NotFound("archive record %d not found", archiveID)
		}
		return nil, apperrors.IOFailure(err, "failed to load archive record %d", archiveID)
	}

	c, err := s.Customers.Get(ctx, record.CustomerID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, apperrors.NotFound("customer %s of archive %d no longer exists", record.CustomerName, archiveID)
		}
		return nil, apperrors.IOFailure(err, "failed to load customer for archive %d", archiveID)
	}

	release, err := s.Locks.Acquire(c.ID)
	if err != nil {
		metrics.LockConflicts.Inc()
		return nil, err
	}
	defer release()

	// Re-read under the lock; the row may have changed since the lookup.
	c, err = s.Customers.Get(ctx, record.CustomerID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, apperrors.NotFound("customer %s of archive %d no longer exists", record.CustomerName, archiveID)
		}
		return nil, apperrors.IOFailure(err, "failed to load customer for archive %d", archiveID)
	}

	// Guard before any filesystem work: restoring onto a non-ARCHIVED
	// customer would wipe its live working directory.
	if c.PackStage != models.PackStageArchived {
		metrics.ArchiveOps.WithLabelValues("restore", "rejected").Inc()
		return nil, apperrors.InvalidState("customer %s is %s, only ARCHIVED customers can be restored", c.Name, c.PackStage)
	}

	if err := s.ensureArtifact(ctx, record.BackupArtifactPath); err != nil {
		metrics.ArchiveOps.WithLabelValues("restore", "failed").Inc()
		return nil, err
	}

	workingDir := c.WorkingDirectory
	if workingDir == "" {
		workingDir = filepath.Join(s.WorkingRoot, c.Name)
	}

	// Recreated, never merged: stale leftovers must not survive a restore.
	if err := os.RemoveAll(workingDir); err != nil {
		metrics.ArchiveOps.WithLabelValues("restore", "failed").Inc()
		return nil, apperrors.IOFailure(err, "failed to clear working directory %s", workingDir)
	}
	if _, err := s.Zipper.Extract(record.BackupArtifactPath, workingDir); err != nil {
		metrics.ArchiveOps.WithLabelValues("restore", "failed").Inc()
		return nil, apperrors.IOFailure(err, "failed to decompress artifact for archive %d", archiveID)
	}

	c.WorkingDirectory = workingDir
	if err := s.Lifecycle.MarkRestored(ctx, c, operator); err != nil {
		return nil, err
	}

	metrics.ArchiveOps.WithLabelValues("restore", "ok").Inc()
	log.Printf("[Archive] Customer %s restored from record %d", c.Name, archiveID)
	return c, nil
}

// Delete permanently discards an archive record, its nested entries and
// its backup artifact. The only operation allowed to remove archive
// history.
func (s *ArchiveService) Delete(ctx context.Context, archiveID int) error {
	record, err := s.Archives.Get(ctx, archiveID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return apperrors.NotFound("archive record %d not found", archiveID)
		}
		return apperrors.IOFailure(err, "failed to load archive record %d", archiveID)
	}

	release, err := s.Locks.Acquire(record.CustomerID)
	if err != nil {
		metrics.LockConflicts.Inc()
		return err
	}
	defer release()

	if err := s.Archives.Delete(ctx, archiveID); err != nil {
		metrics.ArchiveOps.WithLabelValues("delete", "failed").Inc()
		return apperrors.IOFailure(err, "failed to delete archive record %d", archiveID)
	}

	if err := os.Remove(record.BackupArtifactPath); err != nil && !os.IsNotExist(err) {
		log.Printf("[Archive] Could not remove artifact %s: %v", record.BackupArtifactPath, err)
	}

	metrics.ArchiveOps.WithLabelValues("delete", "ok").Inc()
	return nil
}

// List returns one page of archive records plus the total count.
func (s *ArchiveService) List(ctx context.Context, page, pageSize int) ([]*models.ArchiveRecord, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	records, total, err := s.Archives.List(ctx, page, pageSize)
	if err != nil {
		return nil, 0, apperrors.IOFailure(err, "failed to list archive records")
	}
	return records, total, nil
}

// Detail returns one record with its nested package and part entries.
func (s *ArchiveService) Detail(ctx context.Context, archiveID int) (*models.ArchiveRecord, error) {
	record, err := s.Archives.GetDetail(ctx, archiveID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, apperrors.NotFound("archive record %d not found", archiveID)
		}
		return nil, apperrors.IOFailure(err, "failed to load archive record %d", archiveID)
	}
	return record, nil
}

func (s *ArchiveService) buildRecord(c *models.Customer, packages []models.Package, operator, remark string) *models.ArchiveRecord {
	record := &models.ArchiveRecord{
		CustomerID:      c.ID,
		CustomerName:    c.Name,
		CustomerAddress: c.Address,
		ArchiveDate:     timeutil.Now(),
		PackagesCount:   len(packages),
		ArchiveUser:     operator,
		Remark:          remark,
	}

	for _, pkg := range packages {
		entry := models.PackageArchiveEntry{
			PackSeq:  pkg.PackSeq,
			Quantity: pkg.PackageInfo.Quantity,
			Weight:   pkg.PackageInfo.Weight,
		}
		for _, partID := range pkg.PartIDs {
			entry.Parts = append(entry.Parts, models.PartArchiveEntry{PartID: partID})
			record.TotalPartsCount++
		}
		record.Packages = append(record.Packages, entry)
	}
	return record
}

// ensureArtifact verifies the backup artifact exists locally, pulling it
// back from the mirror when possible.
func (s *ArchiveService) ensureArtifact(ctx context.Context, artifactPath string) error {
	if _, err := os.Stat(artifactPath); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return apperrors.IOFailure(err, "cannot access artifact %s", artifactPath)
	}

	if s.Mirror != nil {
		log.Printf("[Archive] Local artifact %s missing, trying mirror", filepath.Base(artifactPath))
		if err := s.Mirror.Fetch(ctx, artifactPath); err == nil {
			return nil
		}
	}
	return apperrors.NotFound("backup artifact %s is missing", artifactPath)
}

// artifactPath builds a collision-free artifact name from the customer
// name, a monotonic timestamp and a short random token.
func (s *ArchiveService) artifactPath(customerName string) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, customerName)

	token := strings.Split(uuid.NewString(), "-")[0]
	return filepath.Join(s.BackupDir, fmt.Sprintf("%s_%d_%s.zip", safe, timeutil.Now().UnixNano(), token))
}
