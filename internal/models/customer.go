package models

import "time"

// PackStage is the packaging axis of the customer lifecycle.
type PackStage string

const (
	PackStageNotPacked  PackStage = "NOT_PACKED"
	PackStageInProgress PackStage = "IN_PROGRESS"
	PackStagePacked     PackStage = "PACKED"
	PackStageArchived   PackStage = "ARCHIVED"
)

// ShipmentStage is the shipping axis of the customer lifecycle.
// Shipping is guarded by the pack stage: only PACKED or ARCHIVED
// customers may ship.
type ShipmentStage string

const (
	ShipmentNotShipped     ShipmentStage = "NOT_SHIPPED"
	ShipmentPartialShipped ShipmentStage = "PARTIAL_SHIPPED"
	ShipmentFullShipped    ShipmentStage = "FULL_SHIPPED"
)

type Customer struct {
	ID               int                  `json:"id"`
	Name             string               `json:"name"`
	Address          string               `json:"address"`
	PackStage        PackStage            `json:"pack_stage"`
	ShipmentStage    ShipmentStage        `json:"shipment_stage"`
	PackedCount      int                  `json:"packed_count"`
	TotalParts       int                  `json:"total_parts"`
	PackProgress     int                  `json:"pack_progress"` // 0-100
	PackSeqs         []int                `json:"pack_seqs"`
	StatusHistory    []StatusHistoryEntry `json:"status_history"`
	PackDate         *time.Time           `json:"pack_date,omitempty"`
	ArchiveDate      *time.Time           `json:"archive_date,omitempty"`
	ShipmentDate     *time.Time           `json:"shipment_date,omitempty"`
	WorkingDirectory string               `json:"working_directory"`
	CreatedAt        time.Time            `json:"created_at"`
	UpdatedAt        time.Time            `json:"updated_at"`
}

// StatusHistoryEntry records one lifecycle transition. Entries are
// append-only: nothing ever rewrites or truncates a customer's history.
type StatusHistoryEntry struct {
	PackStage             PackStage     `json:"pack_stage"`
	ShipmentStage         ShipmentStage `json:"shipment_stage"`
	PreviousPackStage     PackStage     `json:"previous_pack_stage"`
	PreviousShipmentStage ShipmentStage `json:"previous_shipment_stage"`
	Timestamp             time.Time     `json:"timestamp"`
	Operator              string        `json:"operator"`
	Remark                string        `json:"remark"`
	PackProgress          int           `json:"pack_progress"`
	PackedCount           int           `json:"packed_count"`
	TotalParts            int           `json:"total_parts"`
}

// CreateCustomerRequest carries a panel roster handed over by the
// upstream ingester at customer intake.
type CreateCustomerRequest struct {
	Name             string               `json:"name"`
	Address          string               `json:"address"`
	WorkingDirectory string               `json:"working_directory"`
	Panels           []CreatePanelRequest `json:"panels"`
}

type CreatePanelRequest struct {
	PanelID   string  `json:"panel_id"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	Thickness float64 `json:"thickness"`
	Material  string  `json:"material"`
}

// ShipRequest selects the shipment mode for a ship command.
type ShipRequest struct {
	Mode string `json:"mode"` // "partial" or "full"
}

// ArchiveRequest carries the operator remark for an archive command.
type ArchiveRequest struct {
	Remark string `json:"remark"`
}
