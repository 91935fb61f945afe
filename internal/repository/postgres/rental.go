package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/goonthug/sport-kursach/internal/domain"
	"github.com/goonthug/sport-kursach/internal/repository"
)

const rentalColumns = `rental_id, inventory_id, client_id, manager_id, start_date, end_date, actual_return_date,
	total_price, deposit_paid, additional_payment, status, payment_status, notes, rejection_reason, bank_account_id, created_date`

type rentalRepository struct {
	db *sql.DB
}

func NewRentalRepository(db *sql.DB) repository.RentalRepository {
	return &rentalRepository{db: db}
}

func (r *rentalRepository) Create(ctx context.Context, rt *domain.Rental) error {
	if rt.ID == uuid.Nil {
		rt.ID = uuid.New()
	}
	if rt.CreatedDate.IsZero() {
		rt.CreatedDate = time.Now()
	}
	query := `INSERT INTO rentals (` + rentalColumns + `)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	_, err := q(ctx, r.db).ExecContext(ctx, query,
		rt.ID, rt.InventoryID, rt.ClientID, rt.ManagerID, rt.StartDate, rt.EndDate, rt.ActualReturnDate,
		rt.TotalPrice, rt.DepositPaid, rt.AdditionalPayment, rt.Status, rt.PaymentStatus,
		rt.Notes, rt.RejectionReason, rt.BankAccountID, rt.CreatedDate)
	if err != nil {
		// The rentals_no_overlap exclusion constraint serializes
		// concurrent bookings the application-level check can miss.
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23P01" {
			return &domain.DateConflictError{Ranges: []domain.DateRange{{Start: rt.StartDate, End: rt.EndDate}}}
		}
		return fmt.Errorf("insert rental: %w", err)
	}
	return nil
}

func (r *rentalRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Rental, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals WHERE rental_id = $1`
	rt, err := scanRental(q(ctx, r.db).QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return rt, err
}

func (r *rentalRepository) Update(ctx context.Context, rt *domain.Rental) error {
	query := `UPDATE rentals
	          SET manager_id=$1, start_date=$2, end_date=$3, actual_return_date=$4, total_price=$5,
	              deposit_paid=$6, additional_payment=$7, status=$8, payment_status=$9, notes=$10,
	              rejection_reason=$11, bank_account_id=$12
	          WHERE rental_id=$13`
	_, err := q(ctx, r.db).ExecContext(ctx, query,
		rt.ManagerID, rt.StartDate, rt.EndDate, rt.ActualReturnDate, rt.TotalPrice,
		rt.DepositPaid, rt.AdditionalPayment, rt.Status, rt.PaymentStatus, rt.Notes,
		rt.RejectionReason, rt.BankAccountID, rt.ID)
	return err
}

func (r *rentalRepository) ListOverlapping(ctx context.Context, inventoryID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) ([]domain.Rental, error) {
	// Half-open overlap: existing.start < new.end AND existing.end > new.start.
	query := `SELECT ` + rentalColumns + ` FROM rentals
	          WHERE inventory_id = $1
	            AND status = ANY($2)
	            AND start_date < $3
	            AND end_date > $4
	            AND ($5::uuid IS NULL OR rental_id <> $5)
	          ORDER BY start_date`
	rows, err := q(ctx, r.db).QueryContext(ctx, query, inventoryID, pq.Array(blockingStatuses()), end, start, excludeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRentals(rows)
}

func (r *rentalRepository) ListByClient(ctx context.Context, clientID uuid.UUID, status domain.RentalStatus, page, pageSize int32) ([]domain.Rental, int32, error) {
	return r.list(ctx, "client_id", clientID, status, page, pageSize)
}

func (r *rentalRepository) ListByManager(ctx context.Context, managerID uuid.UUID, status domain.RentalStatus, page, pageSize int32) ([]domain.Rental, int32, error) {
	return r.list(ctx, "manager_id", managerID, status, page, pageSize)
}

func (r *rentalRepository) list(ctx context.Context, column string, id uuid.UUID, status domain.RentalStatus, page, pageSize int32) ([]domain.Rental, int32, error) {
	offset := (page - 1) * pageSize
	where := fmt.Sprintf("WHERE %s = $1 AND ($2 = '' OR status = $2)", column)

	var count int32
	countQuery := `SELECT count(*) FROM rentals ` + where
	if err := q(ctx, r.db).QueryRowContext(ctx, countQuery, id, string(status)).Scan(&count); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + rentalColumns + ` FROM rentals ` + where + ` ORDER BY created_date DESC LIMIT $3 OFFSET $4`
	rows, err := q(ctx, r.db).QueryContext(ctx, query, id, string(status), pageSize, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	rentals, err := collectRentals(rows)
	if err != nil {
		return nil, 0, err
	}
	return rentals, count, nil
}

func (r *rentalRepository) FindInquiry(ctx context.Context, inventoryID, clientID uuid.UUID) (*domain.Rental, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals
	          WHERE inventory_id = $1 AND client_id = $2 AND status = $3
	          ORDER BY created_date DESC LIMIT 1`
	rt, err := scanRental(q(ctx, r.db).QueryRowContext(ctx, query, inventoryID, clientID, domain.RentalStatusInquiry))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return rt, err
}

func (r *rentalRepository) ListStartedConfirmed(ctx context.Context, now time.Time) ([]domain.Rental, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals
	          WHERE status = $1 AND start_date <= $2 ORDER BY start_date`
	rows, err := q(ctx, r.db).QueryContext(ctx, query, domain.RentalStatusConfirmed, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRentals(rows)
}

func (r *rentalRepository) ListOverdueActive(ctx context.Context, now time.Time) ([]domain.Rental, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals
	          WHERE status = $1 AND actual_return_date IS NULL AND end_date < $2 ORDER BY end_date`
	rows, err := q(ctx, r.db).QueryContext(ctx, query, domain.RentalStatusActive, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRentals(rows)
}

func blockingStatuses() []string {
	out := make([]string, len(domain.BlockingRentalStatuses))
	for i, s := range domain.BlockingRentalStatuses {
		out[i] = string(s)
	}
	return out
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRental(row rowScanner) (*domain.Rental, error) {
	rt := &domain.Rental{}
	err := row.Scan(&rt.ID, &rt.InventoryID, &rt.ClientID, &rt.ManagerID, &rt.StartDate, &rt.EndDate,
		&rt.ActualReturnDate, &rt.TotalPrice, &rt.DepositPaid, &rt.AdditionalPayment,
		&rt.Status, &rt.PaymentStatus, &rt.Notes, &rt.RejectionReason, &rt.BankAccountID, &rt.CreatedDate)
	if err != nil {
		return nil, err
	}
	return rt, nil
}

func collectRentals(rows *sql.Rows) ([]domain.Rental, error) {
	var rentals []domain.Rental
	for rows.Next() {
		rt, err := scanRental(rows)
		if err != nil {
			return nil, err
		}
		rentals = append(rentals, *rt)
	}
	return rentals, rows.Err()
}
