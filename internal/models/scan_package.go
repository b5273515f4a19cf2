package models

import "time"

// Package is a scan-station record bundling one or more panels into a
// physical packing unit. Packages are produced entirely outside this
// service and carry no customer reference; association with a customer
// is inferred by suffix matching against the panel roster. Live records
// exist only as files inside a customer's working directory.
type Package struct {
	PackSeq     int         `json:"pack_seq"`
	PartIDs     []string    `json:"part_ids"`
	PackageInfo PackageInfo `json:"package_info"`
	Timestamp   time.Time   `json:"timestamp"`
}

// PackageInfo is quantity/weight metadata reported by the scan station.
// Opaque to the lifecycle logic; snapshotted into archive entries.
type PackageInfo struct {
	Quantity int     `json:"quantity"`
	Weight   float64 `json:"weight"`
}
