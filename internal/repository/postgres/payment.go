package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/goonthug/sport-kursach/internal/domain"
	"github.com/goonthug/sport-kursach/internal/repository"
)

const paymentColumns = `payment_id, rental_id, amount, payment_method, transaction_id, status, payment_date`

type paymentRepository struct {
	db *sql.DB
}

func NewPaymentRepository(db *sql.DB) repository.PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, p *domain.Payment) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	query := `INSERT INTO payments (` + paymentColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := q(ctx, r.db).ExecContext(ctx, query,
		p.ID, p.RentalID, p.Amount, p.Method, nullString(p.TransactionID), p.Status, p.PaymentDate)
	return err
}

func (r *paymentRepository) FirstPendingByRental(ctx context.Context, rentalID uuid.UUID) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments
	          WHERE rental_id = $1 AND status = $2 ORDER BY payment_id LIMIT 1`
	p, err := scanPayment(q(ctx, r.db).QueryRowContext(ctx, query, rentalID, domain.PaymentStatusPending))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return p, err
}

func (r *paymentRepository) Update(ctx context.Context, p *domain.Payment) error {
	query := `UPDATE payments SET amount=$1, payment_method=$2, transaction_id=$3, status=$4, payment_date=$5 WHERE payment_id=$6`
	_, err := q(ctx, r.db).ExecContext(ctx, query, p.Amount, p.Method, nullString(p.TransactionID), p.Status, p.PaymentDate, p.ID)
	return err
}

func (r *paymentRepository) ListByRental(ctx context.Context, rentalID uuid.UUID) ([]domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE rental_id = $1 ORDER BY payment_date DESC NULLS LAST`
	rows, err := q(ctx, r.db).QueryContext(ctx, query, rentalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []domain.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, *p)
	}
	return payments, rows.Err()
}

func scanPayment(row rowScanner) (*domain.Payment, error) {
	p := &domain.Payment{}
	var txID sql.NullString
	err := row.Scan(&p.ID, &p.RentalID, &p.Amount, &p.Method, &txID, &p.Status, &p.PaymentDate)
	if err != nil {
		return nil, err
	}
	p.TransactionID = txID.String
	return p, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
