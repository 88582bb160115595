package testhelpers

import (
	"context"
	"time"

	"sidebet/domain/entities"
	"sidebet/domain/events"

	"github.com/stretchr/testify/mock"
)

// MockWalletRepository is a mock implementation of WalletRepository
type MockWalletRepository struct {
	mock.Mock
}

func (m *MockWalletRepository) GetByUserID(ctx context.Context, userID string) (*entities.Wallet, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Wallet), args.Error(1)
}

func (m *MockWalletRepository) GetForUpdate(ctx context.Context, userID string) (*entities.Wallet, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Wallet), args.Error(1)
}

func (m *MockWalletRepository) Create(ctx context.Context, userID string) (*entities.Wallet, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Wallet), args.Error(1)
}

func (m *MockWalletRepository) UpdateBalances(ctx context.Context, wallet *entities.Wallet) error {
	args := m.Called(ctx, wallet)
	return args.Error(0)
}

// MockWagerRepository is a mock implementation of WagerRepository
type MockWagerRepository struct {
	mock.Mock
}

func (m *MockWagerRepository) Create(ctx context.Context, wager *entities.Wager) error {
	args := m.Called(ctx, wager)
	return args.Error(0)
}

func (m *MockWagerRepository) GetByID(ctx context.Context, id int64) (*entities.Wager, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Wager), args.Error(1)
}

func (m *MockWagerRepository) Update(ctx context.Context, wager *entities.Wager) error {
	args := m.Called(ctx, wager)
	return args.Error(0)
}

func (m *MockWagerRepository) UpdateStatusGuarded(ctx context.Context, wager *entities.Wager, allowed []entities.WagerStatus) (bool, error) {
	args := m.Called(ctx, wager, allowed)
	return args.Bool(0), args.Error(1)
}

func (m *MockWagerRepository) GetActiveByUser(ctx context.Context, userID string) ([]*entities.Wager, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Wager), args.Error(1)
}

func (m *MockWagerRepository) GetExpired(ctx context.Context, now time.Time, limit int) ([]*entities.Wager, error) {
	args := m.Called(ctx, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Wager), args.Error(1)
}

func (m *MockWagerRepository) GetResolvable(ctx context.Context, limit int) ([]*entities.Wager, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Wager), args.Error(1)
}

// MockEscrowRepository is a mock implementation of EscrowRepository
type MockEscrowRepository struct {
	mock.Mock
}

func (m *MockEscrowRepository) Create(ctx context.Context, record *entities.EscrowRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockEscrowRepository) GetByID(ctx context.Context, id int64) (*entities.EscrowRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.EscrowRecord), args.Error(1)
}

func (m *MockEscrowRepository) GetByWager(ctx context.Context, wagerID int64) ([]*entities.EscrowRecord, error) {
	args := m.Called(ctx, wagerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.EscrowRecord), args.Error(1)
}

func (m *MockEscrowRepository) GetByChallenge(ctx context.Context, challengeID int64) ([]*entities.EscrowRecord, error) {
	args := m.Called(ctx, challengeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.EscrowRecord), args.Error(1)
}

func (m *MockEscrowRepository) Release(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockEscrowRepository) Dispute(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// MockGroupChallengeRepository is a mock implementation of GroupChallengeRepository
type MockGroupChallengeRepository struct {
	mock.Mock
}

func (m *MockGroupChallengeRepository) Create(ctx context.Context, challenge *entities.GroupChallenge) error {
	args := m.Called(ctx, challenge)
	return args.Error(0)
}

func (m *MockGroupChallengeRepository) GetByID(ctx context.Context, id int64) (*entities.GroupChallenge, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.GroupChallenge), args.Error(1)
}

func (m *MockGroupChallengeRepository) GetForUpdate(ctx context.Context, id int64) (*entities.GroupChallenge, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.GroupChallenge), args.Error(1)
}

func (m *MockGroupChallengeRepository) Update(ctx context.Context, challenge *entities.GroupChallenge) error {
	args := m.Called(ctx, challenge)
	return args.Error(0)
}

func (m *MockGroupChallengeRepository) HasContribution(ctx context.Context, challengeID int64, userID string) (bool, error) {
	args := m.Called(ctx, challengeID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockGroupChallengeRepository) GetExpired(ctx context.Context, now time.Time, limit int) ([]*entities.GroupChallenge, error) {
	args := m.Called(ctx, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.GroupChallenge), args.Error(1)
}

// MockLedgerRepository is a mock implementation of LedgerRepository
type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) Record(ctx context.Context, entry *entities.LedgerEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockLedgerRepository) GetByUser(ctx context.Context, userID string, limit int) ([]*entities.LedgerEntry, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.LedgerEntry), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) error {
	args := m.Called(event)
	return args.Error(0)
}
