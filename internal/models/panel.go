package models

import "time"

// Panel is a single manufactured item belonging to a customer. PanelID is
// the full manufacturing-side identifier assigned at intake; the packing
// station only ever reports its trailing suffix (see internal/reconcile).
type Panel struct {
	ID         int       `json:"id"`
	CustomerID int       `json:"customer_id"`
	PanelID    string    `json:"panel_id"`
	Width      float64   `json:"width"`
	Height     float64   `json:"height"`
	Thickness  float64   `json:"thickness"`
	Material   string    `json:"material"`
	CreatedAt  time.Time `json:"created_at"`
}
