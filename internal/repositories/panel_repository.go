package repositories

import (
	"context"

	"pack-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PanelRepository struct {
	DB *pgxpool.Pool
}

func NewPanelRepository(db *pgxpool.Pool) *PanelRepository {
	return &PanelRepository{DB: db}
}

// CreateBatch inserts a customer's panel roster in one transaction so a
// partially ingested roster never becomes visible.
func (r *PanelRepository) CreateBatch(ctx context.Context, customerID int, panels []models.Panel) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, p := range panels {
		batch.Queue(
			`INSERT INTO panels(customer_id, panel_id, width, height, thickness, material)
             VALUES($1, $2, $3, $4, $5, $6)
             ON CONFLICT (customer_id, panel_id) DO NOTHING`,
			customerID, p.PanelID, p.Width, p.Height, p.Thickness, p.Material)
	}

	br := tx.SendBatch(ctx, batch)
	for range panels {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return err
		}
	}
	if err := br.Close(); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *PanelRepository) ListByCustomer(ctx context.Context, customerID int) ([]models.Panel, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id, customer_id, panel_id, width, height, thickness, material, created_at
         FROM panels WHERE customer_id=$1 ORDER BY id`, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var panels []models.Panel
	for rows.Next() {
		var p models.Panel
		err := rows.Scan(&p.ID, &p.CustomerID, &p.PanelID, &p.Width, &p.Height,
			&p.Thickness, &p.Material, &p.CreatedAt)
		if err != nil {
			return nil, err
		}
		panels = append(panels, p)
	}
	return panels, rows.Err()
}

// ListIDsByCustomer returns just the full panel identifiers, the input
// the reconciliation engine needs.
func (r *PanelRepository) ListIDsByCustomer(ctx context.Context, customerID int) ([]string, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT panel_id FROM panels WHERE customer_id=$1 ORDER BY id`, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *PanelRepository) CountByCustomer(ctx context.Context, customerID int) (int, error) {
	var count int
	err := r.DB.QueryRow(ctx,
		`SELECT COUNT(*) FROM panels WHERE customer_id=$1`, customerID).Scan(&count)
	return count, err
}
