package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/goonthug/sport-kursach/internal/repository"

	_ "github.com/lib/pq"
)

type Store struct {
	db *sql.DB
	repository.UserRepository
	repository.InventoryRepository
	repository.RentalRepository
	repository.PaymentRepository
	repository.AgreementRepository
	repository.BankAccountRepository
	repository.ChatMessageRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                    db,
		UserRepository:        NewUserRepository(db),
		InventoryRepository:   NewInventoryRepository(db),
		RentalRepository:      NewRentalRepository(db),
		PaymentRepository:     NewPaymentRepository(db),
		AgreementRepository:   NewAgreementRepository(db),
		BankAccountRepository: NewBankAccountRepository(db),
		ChatMessageRepository: NewChatMessageRepository(db),
	}
}

type txKey struct{}

// WithinTx opens a transaction, binds it to the context and commits
// when fn returns nil. Any error (or panic) rolls back every write the
// callback issued through the repositories.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// q resolves the active transaction from the context, falling back to
// the plain connection pool.
func q(ctx context.Context, db *sql.DB) querier {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return db
}
