package models

import "time"

// ArchiveRecord is the immutable audit record of one archive operation.
// Restoring a customer never deletes or mutates its archive records, so
// repeated archive/restore cycles leave one record per cycle.
type ArchiveRecord struct {
	ID                 int                   `json:"id"`
	CustomerID         int                   `json:"customer_id"`
	CustomerName       string                `json:"customer_name"`
	CustomerAddress    string                `json:"customer_address"`
	ArchiveDate        time.Time             `json:"archive_date"`
	BackupArtifactPath string                `json:"backup_artifact_path"`
	PackagesCount      int                   `json:"packages_count"`
	TotalPartsCount    int                   `json:"total_parts_count"`
	ArchiveUser        string                `json:"archive_user"`
	Remark             string                `json:"remark"`
	Packages           []PackageArchiveEntry `json:"packages,omitempty"`
	CreatedAt          time.Time             `json:"created_at"`
}

// PackageArchiveEntry snapshots one scanned package at archive time.
type PackageArchiveEntry struct {
	ID        int                `json:"id"`
	ArchiveID int                `json:"archive_id"`
	PackSeq   int                `json:"pack_seq"`
	Quantity  int                `json:"quantity"`
	Weight    float64            `json:"weight"`
	Parts     []PartArchiveEntry `json:"parts,omitempty"`
}

// PartArchiveEntry snapshots one part identifier inside an archived package.
type PartArchiveEntry struct {
	ID             int    `json:"id"`
	PackageEntryID int    `json:"package_entry_id"`
	PartID         string `json:"part_id"`
}
