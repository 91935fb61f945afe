package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/goonthug/sport-kursach/internal/domain"
)

var rentalColumnNames = []string{
	"rental_id", "inventory_id", "client_id", "manager_id", "start_date", "end_date", "actual_return_date",
	"total_price", "deposit_paid", "additional_payment", "status", "payment_status", "notes",
	"rejection_reason", "bank_account_id", "created_date",
}

func rentalRow(rt *domain.Rental) *sqlmock.Rows {
	return sqlmock.NewRows(rentalColumnNames).AddRow(
		rt.ID, rt.InventoryID, rt.ClientID, rt.ManagerID, rt.StartDate, rt.EndDate, rt.ActualReturnDate,
		rt.TotalPrice, rt.DepositPaid, rt.AdditionalPayment, rt.Status, rt.PaymentStatus, rt.Notes,
		rt.RejectionReason, rt.BankAccountID, rt.CreatedDate)
}

func testRental() *domain.Rental {
	return &domain.Rental{
		ID:                uuid.New(),
		InventoryID:       uuid.New(),
		ClientID:          uuid.New(),
		StartDate:         time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC),
		EndDate:           time.Date(2025, 6, 8, 0, 0, 0, 0, time.UTC),
		TotalPrice:        decimal.NewFromInt(150),
		DepositPaid:       decimal.NewFromInt(30),
		AdditionalPayment: decimal.Zero,
		Status:            domain.RentalStatusPending,
		PaymentStatus:     domain.PaymentStatePending,
		CreatedDate:       time.Now(),
	}
}

func TestRentalRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := NewRentalRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		rental := testRental()
		mock.ExpectExec("INSERT INTO rentals").
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Create(ctx, rental))
	})

	t.Run("AssignsIDWhenMissing", func(t *testing.T) {
		rental := testRental()
		rental.ID = uuid.Nil
		mock.ExpectExec("INSERT INTO rentals").
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Create(ctx, rental))
		assert.NotEqual(t, uuid.Nil, rental.ID)
	})

	t.Run("ExclusionViolationBecomesDateConflict", func(t *testing.T) {
		rental := testRental()
		mock.ExpectExec("INSERT INTO rentals").
			WillReturnError(&pq.Error{Code: "23P01", Constraint: "rentals_no_overlap"})

		err := repo.Create(ctx, rental)

		var conflict *domain.DateConflictError
		assert.ErrorAs(t, err, &conflict)
		assert.Contains(t, conflict.Error(), "2025-06-05")
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRentalRepository_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := NewRentalRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		rental := testRental()
		mock.ExpectQuery("SELECT (.+) FROM rentals WHERE rental_id").
			WithArgs(rental.ID).
			WillReturnRows(rentalRow(rental))

		got, err := repo.GetByID(ctx, rental.ID)
		assert.NoError(t, err)
		assert.Equal(t, rental.ID, got.ID)
		assert.True(t, got.TotalPrice.Equal(rental.TotalPrice))
	})

	t.Run("NotFound", func(t *testing.T) {
		id := uuid.New()
		mock.ExpectQuery("SELECT (.+) FROM rentals WHERE rental_id").
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows(rentalColumnNames))

		_, err := repo.GetByID(ctx, id)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRentalRepository_ListOverlapping(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := NewRentalRepository(db)
	ctx := context.Background()

	t.Run("ReturnsBlockingRentals", func(t *testing.T) {
		existing := testRental()
		start := time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC)
		end := time.Date(2025, 6, 6, 0, 0, 0, 0, time.UTC)

		mock.ExpectQuery("SELECT (.+) FROM rentals").
			WithArgs(existing.InventoryID, pq.Array([]string{"pending", "confirmed", "active"}), end, start, nil).
			WillReturnRows(rentalRow(existing))

		rentals, err := repo.ListOverlapping(ctx, existing.InventoryID, start, end, nil)
		assert.NoError(t, err)
		assert.Len(t, rentals, 1)
		assert.Equal(t, existing.ID, rentals[0].ID)
	})

	t.Run("EmptyWindow", func(t *testing.T) {
		inventoryID := uuid.New()
		start := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
		end := time.Date(2025, 7, 3, 0, 0, 0, 0, time.UTC)

		mock.ExpectQuery("SELECT (.+) FROM rentals").
			WillReturnRows(sqlmock.NewRows(rentalColumnNames))

		rentals, err := repo.ListOverlapping(ctx, inventoryID, start, end, nil)
		assert.NoError(t, err)
		assert.Empty(t, rentals)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRentalRepository_ListByClient(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := NewRentalRepository(db)
	ctx := context.Background()

	clientID := uuid.New()
	rental := testRental()
	rental.ClientID = clientID

	mock.ExpectQuery("SELECT count").
		WithArgs(clientID, "pending").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("SELECT (.+) FROM rentals").
		WithArgs(clientID, "pending", int32(10), int32(0)).
		WillReturnRows(rentalRow(rental))

	rentals, total, err := repo.ListByClient(ctx, clientID, domain.RentalStatusPending, 1, 10)
	assert.NoError(t, err)
	assert.Equal(t, int32(1), total)
	assert.Len(t, rentals, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRentalRepository_FindInquiry(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := NewRentalRepository(db)
	ctx := context.Background()

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM rentals").
			WillReturnRows(sqlmock.NewRows(rentalColumnNames))

		_, err := repo.FindInquiry(ctx, uuid.New(), uuid.New())
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_WithinTx(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	store := NewStore(db)
	ctx := context.Background()

	t.Run("CommitOnSuccess", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE inventory SET status").
			WithArgs(string(domain.InventoryStatusRented), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := store.WithinTx(ctx, func(ctx context.Context) error {
			return store.InventoryRepository.UpdateStatus(ctx, uuid.New(), domain.InventoryStatusRented)
		})
		assert.NoError(t, err)
	})

	t.Run("RollbackOnError", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE inventory SET status").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectRollback()

		err := store.WithinTx(ctx, func(ctx context.Context) error {
			if err := store.InventoryRepository.UpdateStatus(ctx, uuid.New(), domain.InventoryStatusRented); err != nil {
				return err
			}
			return assert.AnError
		})
		assert.ErrorIs(t, err, assert.AnError)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
