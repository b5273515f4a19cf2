package repositories

import (
	"context"

	"pack-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type ArchiveRepository struct {
	DB *pgxpool.Pool
}

func NewArchiveRepository(db *pgxpool.Pool) *ArchiveRepository {
	return &ArchiveRepository{DB: db}
}

// Create inserts an archive record with all nested package and part
// entries in one transaction. Either the whole snapshot lands or none of
// it does; the record store is never left half-written.
func (r *ArchiveRepository) Create(ctx context.Context, rec *models.ArchiveRecord) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO archive_records(customer_id, customer_name, customer_address, archive_date,
             backup_artifact_path, packages_count, total_parts_count, archive_user, remark)
         VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9)
         RETURNING id, created_at`,
		rec.CustomerID, rec.CustomerName, rec.CustomerAddress, rec.ArchiveDate,
		rec.BackupArtifactPath, rec.PackagesCount, rec.TotalPartsCount, rec.ArchiveUser, rec.Remark,
	).Scan(&rec.ID, &rec.CreatedAt)
	if err != nil {
		return err
	}

	for i := range rec.Packages {
		pe := &rec.Packages[i]
		pe.ArchiveID = rec.ID

		err = tx.QueryRow(ctx,
			`INSERT INTO package_archive_entries(archive_id, pack_seq, quantity, weight)
             VALUES($1, $2, $3, $4) RETURNING id`,
			pe.ArchiveID, pe.PackSeq, pe.Quantity, pe.Weight,
		).Scan(&pe.ID)
		if err != nil {
			return err
		}

		for j := range pe.Parts {
			part := &pe.Parts[j]
			part.PackageEntryID = pe.ID

			err = tx.QueryRow(ctx,
				`INSERT INTO part_archive_entries(package_entry_id, part_id)
                 VALUES($1, $2) RETURNING id`,
				part.PackageEntryID, part.PartID,
			).Scan(&part.ID)
			if err != nil {
				return err
			}
		}
	}

	return tx.Commit(ctx)
}

func (r *ArchiveRepository) Get(ctx context.Context, id int) (*models.ArchiveRecord, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT id, customer_id, customer_name, customer_address, archive_date,
             backup_artifact_path, packages_count, total_parts_count, archive_user, remark, created_at
         FROM archive_records WHERE id=$1`, id)

	var rec models.ArchiveRecord
	err := row.Scan(&rec.ID, &rec.CustomerID, &rec.CustomerName, &rec.CustomerAddress, &rec.ArchiveDate,
		&rec.BackupArtifactPath, &rec.PackagesCount, &rec.TotalPartsCount, &rec.ArchiveUser,
		&rec.Remark, &rec.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// GetDetail returns the record with its nested package and part entries.
func (r *ArchiveRepository) GetDetail(ctx context.Context, id int) (*models.ArchiveRecord, error) {
	rec, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	rows, err := r.DB.Query(ctx,
		`SELECT id, archive_id, pack_seq, quantity, weight
         FROM package_archive_entries WHERE archive_id=$1 ORDER BY pack_seq`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var pe models.PackageArchiveEntry
		if err := rows.Scan(&pe.ID, &pe.ArchiveID, &pe.PackSeq, &pe.Quantity, &pe.Weight); err != nil {
			return nil, err
		}
		rec.Packages = append(rec.Packages, pe)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range rec.Packages {
		pe := &rec.Packages[i]
		partRows, err := r.DB.Query(ctx,
			`SELECT id, package_entry_id, part_id
             FROM part_archive_entries WHERE package_entry_id=$1 ORDER BY id`, pe.ID)
		if err != nil {
			return nil, err
		}
		for partRows.Next() {
			var part models.PartArchiveEntry
			if err := partRows.Scan(&part.ID, &part.PackageEntryID, &part.PartID); err != nil {
				partRows.Close()
				return nil, err
			}
			pe.Parts = append(pe.Parts, part)
		}
		if err := partRows.Err(); err != nil {
			partRows.Close()
			return nil, err
		}
		partRows.Close()
	}

	return rec, nil
}

// List returns one page of archive records, newest first, plus the total
// record count for the pager.
func (r *ArchiveRepository) List(ctx context.Context, page, pageSize int) ([]*models.ArchiveRecord, int, error) {
	var total int
	if err := r.DB.QueryRow(ctx, `SELECT COUNT(*) FROM archive_records`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.DB.Query(ctx,
		`SELECT id, customer_id, customer_name, customer_address, archive_date,
             backup_artifact_path, packages_count, total_parts_count, archive_user, remark, created_at
         FROM archive_records ORDER BY archive_date DESC, id DESC
         LIMIT $1 OFFSET $2`, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var records []*models.ArchiveRecord
	for rows.Next() {
		var rec models.ArchiveRecord
		err := rows.Scan(&rec.ID, &rec.CustomerID, &rec.CustomerName, &rec.CustomerAddress, &rec.ArchiveDate,
			&rec.BackupArtifactPath, &rec.PackagesCount, &rec.TotalPartsCount, &rec.ArchiveUser,
			&rec.Remark, &rec.CreatedAt)
		if err != nil {
			return nil, 0, err
		}
		records = append(records, &rec)
	}
	return records, total, rows.Err()
}

// Delete removes the record; nested entries go with it via FK cascade.
func (r *ArchiveRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM archive_records WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNoRows
	}
	return nil
}
