package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"pack-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNoRows is returned when a lookup finds no matching record.
var ErrNoRows = pgx.ErrNoRows

const customerColumns = `id, name, address, pack_stage, shipment_stage, packed_count, total_parts,
         pack_progress, pack_seqs, status_history, pack_date, archive_date, shipment_date,
         working_directory, created_at, updated_at`

type CustomerRepository struct {
	DB *pgxpool.Pool
}

func NewCustomerRepository(db *pgxpool.Pool) *CustomerRepository {
	return &CustomerRepository{DB: db}
}

// Create inserts a customer together with its initial history entry.
func (r *CustomerRepository) Create(ctx context.Context, c *models.Customer) error {
	history, err := json.Marshal(c.StatusHistory)
	if err != nil {
		return err
	}
	seqs, err := json.Marshal(emptyIfNil(c.PackSeqs))
	if err != nil {
		return err
	}

	return r.DB.QueryRow(ctx,
		`INSERT INTO customers(name, address, pack_stage, shipment_stage, total_parts,
             pack_seqs, status_history, working_directory)
         VALUES($1, $2, $3, $4, $5, $6, $7, $8)
         RETURNING id, created_at, updated_at`,
		c.Name, c.Address, c.PackStage, c.ShipmentStage, c.TotalParts,
		seqs, history, c.WorkingDirectory,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

func (r *CustomerRepository) Get(ctx context.Context, id int) (*models.Customer, error) {
	row := r.DB.QueryRow(ctx,
		fmt.Sprintf(`SELECT %s FROM customers WHERE id=$1`, customerColumns), id)
	return scanCustomer(row)
}

func (r *CustomerRepository) GetByName(ctx context.Context, name string) (*models.Customer, error) {
	row := r.DB.QueryRow(ctx,
		fmt.Sprintf(`SELECT %s FROM customers WHERE name=$1`, customerColumns), name)
	return scanCustomer(row)
}

func (r *CustomerRepository) List(ctx context.Context) ([]*models.Customer, error) {
	rows, err := r.DB.Query(ctx,
		fmt.Sprintf(`SELECT %s FROM customers ORDER BY created_at DESC`, customerColumns))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var customers []*models.Customer
	for rows.Next() {
		customer, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, customer)
	}
	return customers, rows.Err()
}

// UpdateStatus persists both lifecycle axes, the reconciliation counters
// and the first-occurrence dates in a single statement, appending the
// transition's history entry in the same write. entry may be nil when only
// the counters changed (no transition, no history growth).
func (r *CustomerRepository) UpdateStatus(ctx context.Context, c *models.Customer, entry *models.StatusHistoryEntry) error {
	seqs, err := json.Marshal(emptyIfNil(c.PackSeqs))
	if err != nil {
		return err
	}

	appended := []byte(`[]`)
	if entry != nil {
		if appended, err = json.Marshal([]models.StatusHistoryEntry{*entry}); err != nil {
			return err
		}
	}

	tag, err := r.DB.Exec(ctx,
		`UPDATE customers
         SET pack_stage=$1, shipment_stage=$2, packed_count=$3, total_parts=$4,
             pack_progress=$5, pack_seqs=$6, status_history=status_history || $7::jsonb,
             pack_date=$8, archive_date=$9, shipment_date=$10, working_directory=$11,
             updated_at=CURRENT_TIMESTAMP
         WHERE id=$12`,
		c.PackStage, c.ShipmentStage, c.PackedCount, c.TotalParts,
		c.PackProgress, seqs, appended,
		c.PackDate, c.ArchiveDate, c.ShipmentDate, c.WorkingDirectory, c.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNoRows
	}
	return nil
}

// AppendHistory grows the nested history without touching any other
// column. Used to seed the initial entry for rows that predate history.
func (r *CustomerRepository) AppendHistory(ctx context.Context, customerID int, entry *models.StatusHistoryEntry) error {
	appended, err := json.Marshal([]models.StatusHistoryEntry{*entry})
	if err != nil {
		return err
	}

	_, err = r.DB.Exec(ctx,
		`UPDATE customers SET status_history = status_history || $1::jsonb, updated_at=CURRENT_TIMESTAMP
         WHERE id=$2`, appended, customerID)
	return err
}

// Delete removes the customer; owned panels go with it via FK cascade.
func (r *CustomerRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM customers WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNoRows
	}
	return nil
}

func emptyIfNil(seqs []int) []int {
	if seqs == nil {
		return []int{}
	}
	return seqs
}

func scanCustomer(row pgx.Row) (*models.Customer, error) {
	var (
		customer models.Customer
		seqs     []byte
		history  []byte
	)
	err := row.Scan(&customer.ID, &customer.Name, &customer.Address,
		&customer.PackStage, &customer.ShipmentStage, &customer.PackedCount, &customer.TotalParts,
		&customer.PackProgress, &seqs, &history, &customer.PackDate, &customer.ArchiveDate,
		&customer.ShipmentDate, &customer.WorkingDirectory, &customer.CreatedAt, &customer.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(seqs, &customer.PackSeqs); err != nil {
		return nil, fmt.Errorf("corrupt pack_seqs for customer %d: %w", customer.ID, err)
	}
	if err := json.Unmarshal(history, &customer.StatusHistory); err != nil {
		return nil, fmt.Errorf("corrupt status_history for customer %d: %w", customer.ID, err)
	}
	return &customer, nil
}

// IsNotFound reports whether err is the repository's no-rows sentinel.
func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
