package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Role string

const (
	RoleClient        Role = "client"
	RoleOwner         Role = "owner"
	RoleManager       Role = "manager"
	RoleAdministrator Role = "administrator"
)

type User struct {
	ID        uuid.UUID `json:"user_id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Role      Role      `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedOn time.Time `json:"created_on"`
}

// Client is the renter-side profile of a user.
type Client struct {
	ID            uuid.UUID `json:"client_id"`
	UserID        uuid.UUID `json:"user_id"`
	FullName      string    `json:"full_name"`
	Phone         string    `json:"phone"`
	TotalRentals  int32     `json:"total_rentals"`
	LoyaltyPoints int32     `json:"loyalty_points"`
}

// Owner is the profile of a user who lists inventory for rent.
type Owner struct {
	ID            uuid.UUID       `json:"owner_id"`
	UserID        uuid.UUID       `json:"user_id"`
	FullName      string          `json:"full_name"`
	Phone         string          `json:"phone"`
	TotalEarnings decimal.Decimal `json:"total_earnings"`
}

// Manager is the profile of a store employee who processes rentals.
type Manager struct {
	ID       uuid.UUID `json:"manager_id"`
	UserID   uuid.UUID `json:"user_id"`
	FullName string    `json:"full_name"`
	Phone    string    `json:"phone"`
}

// Identity is the resolved authenticated actor. Exactly one profile
// pointer is non-nil for client/owner/manager roles; administrators
// carry none. Access-control code switches on Role instead of probing
// which profile happens to be present.
type Identity struct {
	User    User
	Client  *Client
	Owner   *Owner
	Manager *Manager
}

func (id *Identity) IsClient() bool {
	return id.User.Role == RoleClient && id.Client != nil
}

func (id *Identity) IsOwner() bool {
	return id.User.Role == RoleOwner && id.Owner != nil
}

func (id *Identity) IsManager() bool {
	return id.User.Role == RoleManager && id.Manager != nil
}

func (id *Identity) IsAdministrator() bool {
	return id.User.Role == RoleAdministrator
}
