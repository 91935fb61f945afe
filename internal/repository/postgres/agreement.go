package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/goonthug/sport-kursach/internal/domain"
	"github.com/goonthug/sport-kursach/internal/repository"
)

type agreementRepository struct {
	db *sql.DB
}

func NewAgreementRepository(db *sql.DB) repository.AgreementRepository {
	return &agreementRepository{db: db}
}

func (r *agreementRepository) LatestAccepted(ctx context.Context, ownerID uuid.UUID) (*domain.OwnerAgreement, error) {
	a := &domain.OwnerAgreement{}
	query := `SELECT agreement_id, owner_id, owner_percentage, store_percentage, is_accepted, accepted_date, created_date
	          FROM owner_agreements
	          WHERE owner_id = $1 AND is_accepted = true
	          ORDER BY created_date DESC LIMIT 1`
	err := q(ctx, r.db).QueryRowContext(ctx, query, ownerID).Scan(
		&a.ID, &a.OwnerID, &a.OwnerPercentage, &a.StorePercentage, &a.IsAccepted, &a.AcceptedDate, &a.CreatedDate)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

type bankAccountRepository struct {
	db *sql.DB
}

func NewBankAccountRepository(db *sql.DB) repository.BankAccountRepository {
	return &bankAccountRepository{db: db}
}

func (r *bankAccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.BankAccount, error) {
	b := &domain.BankAccount{}
	query := `SELECT bank_account_id, owner_id, bank_name, account_number FROM bank_accounts WHERE bank_account_id = $1`
	err := q(ctx, r.db).QueryRowContext(ctx, query, id).Scan(&b.ID, &b.OwnerID, &b.BankName, &b.AccountNumber)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}
