package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/goonthug/sport-kursach/internal/domain"
	"github.com/goonthug/sport-kursach/internal/repository"
)

type inventoryRepository struct {
	db *sql.DB
}

func NewInventoryRepository(db *sql.DB) repository.InventoryRepository {
	return &inventoryRepository{db: db}
}

func (r *inventoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Inventory, error) {
	inv := &domain.Inventory{}
	query := `SELECT inventory_id, owner_id, manager_id, category_id, name, description, brand, model,
	                 price_per_day, condition, status, min_rental_days, max_rental_days, deposit_amount,
	                 avg_rating, total_rentals, bank_account_id, rejection_reason, added_date
	          FROM inventory WHERE inventory_id = $1`
	err := q(ctx, r.db).QueryRowContext(ctx, query, id).Scan(
		&inv.ID, &inv.OwnerID, &inv.ManagerID, &inv.CategoryID, &inv.Name, &inv.Description, &inv.Brand, &inv.Model,
		&inv.PricePerDay, &inv.Condition, &inv.Status, &inv.MinRentalDays, &inv.MaxRentalDays, &inv.DepositAmount,
		&inv.AvgRating, &inv.TotalRentals, &inv.BankAccountID, &inv.RejectionReason, &inv.AddedDate)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return inv, nil
}

func (r *inventoryRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.InventoryStatus) error {
	_, err := q(ctx, r.db).ExecContext(ctx, `UPDATE inventory SET status = $1 WHERE inventory_id = $2`, status, id)
	return err
}

func (r *inventoryRepository) IncrementTotalRentals(ctx context.Context, id uuid.UUID) error {
	_, err := q(ctx, r.db).ExecContext(ctx, `UPDATE inventory SET total_rentals = total_rentals + 1 WHERE inventory_id = $1`, id)
	return err
}
