package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/goonthug/sport-kursach/internal/domain"
)

// fakeTxManager runs the callback directly; transactional behavior is
// covered by the repository tests.
type fakeTxManager struct{}

func (fakeTxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type recordedNotification struct {
	UserID uuid.UUID
	Title  string
	Body   string
	URL    string
}

type fakeNotifier struct {
	sent []recordedNotification
}

func (n *fakeNotifier) Notify(userID uuid.UUID, title, body, url string) {
	n.sent = append(n.sent, recordedNotification{UserID: userID, Title: title, Body: body, URL: url})
}

type fakeEmailService struct {
	confirmed []string
	rejected  []string
	cancelled []string
	completed []string
}

func (e *fakeEmailService) SendRentalConfirmed(ctx context.Context, email, inventoryName string) error {
	e.confirmed = append(e.confirmed, email)
	return nil
}

func (e *fakeEmailService) SendRentalRejected(ctx context.Context, email, inventoryName, reason string) error {
	e.rejected = append(e.rejected, email)
	return nil
}

func (e *fakeEmailService) SendRentalCancelled(ctx context.Context, email, inventoryName string) error {
	e.cancelled = append(e.cancelled, email)
	return nil
}

func (e *fakeEmailService) SendRentalCompleted(ctx context.Context, email, inventoryName string, total decimal.Decimal) error {
	e.completed = append(e.completed, email)
	return nil
}

// MockRentalRepo
type MockRentalRepo struct {
	mock.Mock
}

func (m *MockRentalRepo) Create(ctx context.Context, rental *domain.Rental) error {
	args := m.Called(ctx, rental)
	return args.Error(0)
}
func (m *MockRentalRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Rental, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rental), args.Error(1)
}
func (m *MockRentalRepo) Update(ctx context.Context, rental *domain.Rental) error {
	args := m.Called(ctx, rental)
	return args.Error(0)
}
func (m *MockRentalRepo) ListOverlapping(ctx context.Context, inventoryID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) ([]domain.Rental, error) {
	args := m.Called(ctx, inventoryID, start, end, excludeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Rental), args.Error(1)
}
func (m *MockRentalRepo) ListByClient(ctx context.Context, clientID uuid.UUID, status domain.RentalStatus, page, pageSize int32) ([]domain.Rental, int32, error) {
	args := m.Called(ctx, clientID, status, page, pageSize)
	return args.Get(0).([]domain.Rental), args.Get(1).(int32), args.Error(2)
}
func (m *MockRentalRepo) ListByManager(ctx context.Context, managerID uuid.UUID, status domain.RentalStatus, page, pageSize int32) ([]domain.Rental, int32, error) {
	args := m.Called(ctx, managerID, status, page, pageSize)
	return args.Get(0).([]domain.Rental), args.Get(1).(int32), args.Error(2)
}
func (m *MockRentalRepo) FindInquiry(ctx context.Context, inventoryID, clientID uuid.UUID) (*domain.Rental, error) {
	args := m.Called(ctx, inventoryID, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rental), args.Error(1)
}
func (m *MockRentalRepo) ListStartedConfirmed(ctx context.Context, now time.Time) ([]domain.Rental, error) {
	args := m.Called(ctx, now)
	return args.Get(0).([]domain.Rental), args.Error(1)
}
func (m *MockRentalRepo) ListOverdueActive(ctx context.Context, now time.Time) ([]domain.Rental, error) {
	args := m.Called(ctx, now)
	return args.Get(0).([]domain.Rental), args.Error(1)
}

// MockInventoryRepo
type MockInventoryRepo struct {
	mock.Mock
}

func (m *MockInventoryRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Inventory, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Inventory), args.Error(1)
}
func (m *MockInventoryRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.InventoryStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}
func (m *MockInventoryRepo) IncrementTotalRentals(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockPaymentRepo
type MockPaymentRepo struct {
	mock.Mock
}

func (m *MockPaymentRepo) Create(ctx context.Context, payment *domain.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}
func (m *MockPaymentRepo) FirstPendingByRental(ctx context.Context, rentalID uuid.UUID) (*domain.Payment, error) {
	args := m.Called(ctx, rentalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}
func (m *MockPaymentRepo) Update(ctx context.Context, payment *domain.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}
func (m *MockPaymentRepo) ListByRental(ctx context.Context, rentalID uuid.UUID) ([]domain.Payment, error) {
	args := m.Called(ctx, rentalID)
	return args.Get(0).([]domain.Payment), args.Error(1)
}

// MockUserRepo
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserRepo) GetClientByUserID(ctx context.Context, userID uuid.UUID) (*domain.Client, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Client), args.Error(1)
}
func (m *MockUserRepo) GetClientByID(ctx context.Context, id uuid.UUID) (*domain.Client, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Client), args.Error(1)
}
func (m *MockUserRepo) GetOwnerByUserID(ctx context.Context, userID uuid.UUID) (*domain.Owner, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Owner), args.Error(1)
}
func (m *MockUserRepo) GetOwnerByID(ctx context.Context, id uuid.UUID) (*domain.Owner, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Owner), args.Error(1)
}
func (m *MockUserRepo) GetManagerByUserID(ctx context.Context, userID uuid.UUID) (*domain.Manager, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Manager), args.Error(1)
}
func (m *MockUserRepo) GetManagerByID(ctx context.Context, id uuid.UUID) (*domain.Manager, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Manager), args.Error(1)
}
func (m *MockUserRepo) IncrementClientStats(ctx context.Context, clientID uuid.UUID, rentals, loyaltyPoints int32) error {
	args := m.Called(ctx, clientID, rentals, loyaltyPoints)
	return args.Error(0)
}
func (m *MockUserRepo) AddOwnerEarnings(ctx context.Context, ownerID uuid.UUID, amount decimal.Decimal) error {
	args := m.Called(ctx, ownerID, amount)
	return args.Error(0)
}

// MockAgreementRepo
type MockAgreementRepo struct {
	mock.Mock
}

func (m *MockAgreementRepo) LatestAccepted(ctx context.Context, ownerID uuid.UUID) (*domain.OwnerAgreement, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OwnerAgreement), args.Error(1)
}

// MockBankAccountRepo
type MockBankAccountRepo struct {
	mock.Mock
}

func (m *MockBankAccountRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.BankAccount, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BankAccount), args.Error(1)
}

// MockChatMessageRepo
type MockChatMessageRepo struct {
	mock.Mock
}

func (m *MockChatMessageRepo) Create(ctx context.Context, msg *domain.ChatMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}
func (m *MockChatMessageRepo) ListByRental(ctx context.Context, rentalID uuid.UUID) ([]domain.ChatMessage, error) {
	args := m.Called(ctx, rentalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ChatMessage), args.Error(1)
}
func (m *MockChatMessageRepo) MarkAllRead(ctx context.Context, rentalID, receiverID uuid.UUID, readAt time.Time) (int64, error) {
	args := m.Called(ctx, rentalID, receiverID, readAt)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockChatMessageRepo) CountUnread(ctx context.Context, rentalID, receiverID uuid.UUID) (int32, error) {
	args := m.Called(ctx, rentalID, receiverID)
	return args.Get(0).(int32), args.Error(1)
}
func (m *MockChatMessageRepo) ListThreads(ctx context.Context, userID uuid.UUID) ([]domain.ChatThread, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.ChatThread), args.Error(1)
}

// Shared identity fixtures.

func clientIdentity(clientID uuid.UUID) *domain.Identity {
	return &domain.Identity{
		User:   domain.User{ID: uuid.New(), Email: "client@example.com", FullName: "Test Client", Role: domain.RoleClient, IsActive: true},
		Client: &domain.Client{ID: clientID, UserID: uuid.New(), FullName: "Test Client"},
	}
}

func managerIdentity(managerID uuid.UUID) *domain.Identity {
	return &domain.Identity{
		User:    domain.User{ID: uuid.New(), Email: "manager@example.com", FullName: "Test Manager", Role: domain.RoleManager, IsActive: true},
		Manager: &domain.Manager{ID: managerID, UserID: uuid.New(), FullName: "Test Manager"},
	}
}

func adminIdentity() *domain.Identity {
	return &domain.Identity{
		User: domain.User{ID: uuid.New(), Email: "admin@example.com", FullName: "Test Admin", Role: domain.RoleAdministrator, IsActive: true},
	}
}
