package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/goonthug/sport-kursach/internal/domain"
	"github.com/goonthug/sport-kursach/internal/repository"
)

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	u := &domain.User{}
	query := `SELECT user_id, email, full_name, role, is_active, created_on FROM users WHERE user_id = $1`
	err := q(ctx, r.db).QueryRowContext(ctx, query, id).Scan(&u.ID, &u.Email, &u.FullName, &u.Role, &u.IsActive, &u.CreatedOn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

const clientColumns = `client_id, user_id, full_name, phone, total_rentals, loyalty_points`

func (r *userRepository) GetClientByUserID(ctx context.Context, userID uuid.UUID) (*domain.Client, error) {
	return r.getClient(ctx, `SELECT `+clientColumns+` FROM clients WHERE user_id = $1`, userID)
}

func (r *userRepository) GetClientByID(ctx context.Context, id uuid.UUID) (*domain.Client, error) {
	return r.getClient(ctx, `SELECT `+clientColumns+` FROM clients WHERE client_id = $1`, id)
}

func (r *userRepository) getClient(ctx context.Context, query string, id uuid.UUID) (*domain.Client, error) {
	c := &domain.Client{}
	err := q(ctx, r.db).QueryRowContext(ctx, query, id).Scan(&c.ID, &c.UserID, &c.FullName, &c.Phone, &c.TotalRentals, &c.LoyaltyPoints)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

const ownerColumns = `owner_id, user_id, full_name, phone, total_earnings`

func (r *userRepository) GetOwnerByUserID(ctx context.Context, userID uuid.UUID) (*domain.Owner, error) {
	return r.getOwner(ctx, `SELECT `+ownerColumns+` FROM owners WHERE user_id = $1`, userID)
}

func (r *userRepository) GetOwnerByID(ctx context.Context, id uuid.UUID) (*domain.Owner, error) {
	return r.getOwner(ctx, `SELECT `+ownerColumns+` FROM owners WHERE owner_id = $1`, id)
}

func (r *userRepository) getOwner(ctx context.Context, query string, id uuid.UUID) (*domain.Owner, error) {
	o := &domain.Owner{}
	err := q(ctx, r.db).QueryRowContext(ctx, query, id).Scan(&o.ID, &o.UserID, &o.FullName, &o.Phone, &o.TotalEarnings)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return o, nil
}

const managerColumns = `manager_id, user_id, full_name, phone`

func (r *userRepository) GetManagerByUserID(ctx context.Context, userID uuid.UUID) (*domain.Manager, error) {
	return r.getManager(ctx, `SELECT `+managerColumns+` FROM managers WHERE user_id = $1`, userID)
}

func (r *userRepository) GetManagerByID(ctx context.Context, id uuid.UUID) (*domain.Manager, error) {
	return r.getManager(ctx, `SELECT `+managerColumns+` FROM managers WHERE manager_id = $1`, id)
}

func (r *userRepository) getManager(ctx context.Context, query string, id uuid.UUID) (*domain.Manager, error) {
	m := &domain.Manager{}
	err := q(ctx, r.db).QueryRowContext(ctx, query, id).Scan(&m.ID, &m.UserID, &m.FullName, &m.Phone)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *userRepository) IncrementClientStats(ctx context.Context, clientID uuid.UUID, rentals, loyaltyPoints int32) error {
	query := `UPDATE clients SET total_rentals = total_rentals + $1, loyalty_points = loyalty_points + $2 WHERE client_id = $3`
	_, err := q(ctx, r.db).ExecContext(ctx, query, rentals, loyaltyPoints, clientID)
	return err
}

func (r *userRepository) AddOwnerEarnings(ctx context.Context, ownerID uuid.UUID, amount decimal.Decimal) error {
	query := `UPDATE owners SET total_earnings = total_earnings + $1 WHERE owner_id = $2`
	_, err := q(ctx, r.db).ExecContext(ctx, query, amount, ownerID)
	return err
}
