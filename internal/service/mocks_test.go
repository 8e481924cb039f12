// internal/service/mocks_test.go
package service

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"gigpay/internal/domain"
	"gigpay/internal/repository"
	"gigpay/internal/util"
)

// testLogger discards output; services only log operational noise.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// MockWalletRepository is a mock implementation of
// repository.WalletRepository.
type MockWalletRepository struct {
	mock.Mock
}

func (m *MockWalletRepository) CreateWallet(ctx context.Context, q repository.DBExecutor, wallet *domain.Wallet) error {
	args := m.Called(ctx, q, wallet)
	return args.Error(0)
}

func (m *MockWalletRepository) GetWalletByID(ctx context.Context, q repository.DBExecutor, id uuid.UUID) (*domain.Wallet, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wallet), args.Error(1)
}

func (m *MockWalletRepository) GetWalletByUserID(ctx context.Context, q repository.DBExecutor, userID uuid.UUID) (*domain.Wallet, error) {
	args := m.Called(ctx, q, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wallet), args.Error(1)
}

func (m *MockWalletRepository) ApplyDelta(ctx context.Context, q repository.DBExecutor, walletID uuid.UUID, delta domain.BalanceDelta) (bool, error) {
	args := m.Called(ctx, q, walletID, delta)
	return args.Bool(0), args.Error(1)
}

// MockTransactionRepository is a mock implementation of
// repository.TransactionRepository.
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) Append(ctx context.Context, q repository.DBExecutor, transaction *domain.Transaction) error {
	args := m.Called(ctx, q, transaction)
	return args.Error(0)
}

func (m *MockTransactionRepository) ListByWalletID(ctx context.Context, q repository.DBExecutor, walletID uuid.UUID, limit, offset int) ([]domain.Transaction, int64, error) {
	args := m.Called(ctx, q, walletID, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Transaction), args.Get(1).(int64), args.Error(2)
}

// MockGigRepository is a mock implementation of repository.GigRepository.
type MockGigRepository struct {
	mock.Mock
}

func (m *MockGigRepository) CreateGig(ctx context.Context, q repository.DBExecutor, gig *domain.Gig) error {
	args := m.Called(ctx, q, gig)
	return args.Error(0)
}

func (m *MockGigRepository) GetGigByID(ctx context.Context, q repository.DBExecutor, id uuid.UUID) (*domain.Gig, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Gig), args.Error(1)
}

func (m *MockGigRepository) ListGigs(ctx context.Context, q repository.DBExecutor, filter repository.GigFilter) ([]domain.Gig, error) {
	args := m.Called(ctx, q, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Gig), args.Error(1)
}

func (m *MockGigRepository) ListGigsByCreator(ctx context.Context, q repository.DBExecutor, creatorID uuid.UUID) ([]domain.Gig, error) {
	args := m.Called(ctx, q, creatorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Gig), args.Error(1)
}

func (m *MockGigRepository) UpdateStatus(ctx context.Context, q repository.DBExecutor, id uuid.UUID, from, to domain.GigStatus) (bool, error) {
	args := m.Called(ctx, q, id, from, to)
	return args.Bool(0), args.Error(1)
}

func (m *MockGigRepository) DeleteGig(ctx context.Context, q repository.DBExecutor, id uuid.UUID) error {
	args := m.Called(ctx, q, id)
	return args.Error(0)
}

// MockApplicationRepository is a mock implementation of
// repository.ApplicationRepository.
type MockApplicationRepository struct {
	mock.Mock
}

func (m *MockApplicationRepository) CreateApplication(ctx context.Context, q repository.DBExecutor, application *domain.Application) error {
	args := m.Called(ctx, q, application)
	return args.Error(0)
}

func (m *MockApplicationRepository) GetApplicationByID(ctx context.Context, q repository.DBExecutor, id uuid.UUID) (*domain.Application, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Application), args.Error(1)
}

func (m *MockApplicationRepository) ListApplicationsByGig(ctx context.Context, q repository.DBExecutor, gigID uuid.UUID) ([]domain.Application, error) {
	args := m.Called(ctx, q, gigID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Application), args.Error(1)
}

func (m *MockApplicationRepository) ListApplicationsByPlayer(ctx context.Context, q repository.DBExecutor, playerID uuid.UUID) ([]domain.Application, error) {
	args := m.Called(ctx, q, playerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Application), args.Error(1)
}

func (m *MockApplicationRepository) HasOpenApplication(ctx context.Context, q repository.DBExecutor, gigID, playerID uuid.UUID) (bool, error) {
	args := m.Called(ctx, q, gigID, playerID)
	return args.Bool(0), args.Error(1)
}

func (m *MockApplicationRepository) GetAcceptedByGig(ctx context.Context, q repository.DBExecutor, gigID uuid.UUID) (*domain.Application, error) {
	args := m.Called(ctx, q, gigID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Application), args.Error(1)
}

func (m *MockApplicationRepository) UpdateStatus(ctx context.Context, q repository.DBExecutor, id uuid.UUID, from, to domain.ApplicationStatus) (bool, error) {
	args := m.Called(ctx, q, id, from, to)
	return args.Bool(0), args.Error(1)
}

func (m *MockApplicationRepository) MarkPaid(ctx context.Context, q repository.DBExecutor, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, q, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockApplicationRepository) MarkCashedOut(ctx context.Context, q repository.DBExecutor, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, q, id)
	return args.Bool(0), args.Error(1)
}

// fakeWalletStore is an in-memory, thread-safe WalletRepository used to
// exercise the ledger under real concurrency. Its ApplyDelta honours the
// same single-writer conditional-update contract as the SQL implementation.
type fakeWalletStore struct {
	mu      sync.Mutex
	wallets map[uuid.UUID]*domain.Wallet
	byUser  map[uuid.UUID]uuid.UUID
}

func newFakeWalletStore() *fakeWalletStore {
	return &fakeWalletStore{
		wallets: make(map[uuid.UUID]*domain.Wallet),
		byUser:  make(map[uuid.UUID]uuid.UUID),
	}
}

func (f *fakeWalletStore) CreateWallet(ctx context.Context, q repository.DBExecutor, wallet *domain.Wallet) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.byUser[wallet.UserID]; exists {
		return util.ErrDuplicateEntry
	}
	copied := *wallet
	f.wallets[wallet.ID] = &copied
	f.byUser[wallet.UserID] = wallet.ID
	return nil
}

func (f *fakeWalletStore) GetWalletByID(ctx context.Context, q repository.DBExecutor, id uuid.UUID) (*domain.Wallet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	wallet, ok := f.wallets[id]
	if !ok {
		return nil, util.ErrNotFound
	}
	copied := *wallet
	return &copied, nil
}

func (f *fakeWalletStore) GetWalletByUserID(ctx context.Context, q repository.DBExecutor, userID uuid.UUID) (*domain.Wallet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.byUser[userID]
	if !ok {
		return nil, util.ErrNotFound
	}
	copied := *f.wallets[id]
	return &copied, nil
}

func (f *fakeWalletStore) ApplyDelta(ctx context.Context, q repository.DBExecutor, walletID uuid.UUID, delta domain.BalanceDelta) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	wallet, ok := f.wallets[walletID]
	if !ok {
		return false, nil
	}
	newBalance := wallet.Balance.Add(delta.Balance)
	newLocked := wallet.LockedBalance.Add(delta.Locked)
	if newBalance.IsNegative() || newLocked.IsNegative() {
		return false, nil
	}
	wallet.Balance = newBalance
	wallet.LockedBalance = newLocked
	wallet.TotalEarned = wallet.TotalEarned.Add(delta.Earned)
	wallet.TotalSpent = wallet.TotalSpent.Add(delta.Spent)
	return true, nil
}

// fakeTransactionStore is an in-memory, thread-safe append-only log.
type fakeTransactionStore struct {
	mu      sync.Mutex
	entries []domain.Transaction
}

func newFakeTransactionStore() *fakeTransactionStore {
	return &fakeTransactionStore{}
}

func (f *fakeTransactionStore) Append(ctx context.Context, q repository.DBExecutor, transaction *domain.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, *transaction)
	return nil
}

func (f *fakeTransactionStore) ListByWalletID(ctx context.Context, q repository.DBExecutor, walletID uuid.UUID, limit, offset int) ([]domain.Transaction, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	matched := []domain.Transaction{}
	for i := len(f.entries) - 1; i >= 0; i-- {
		if f.entries[i].WalletID == walletID {
			matched = append(matched, f.entries[i])
		}
	}
	total := int64(len(matched))
	if offset >= len(matched) {
		return []domain.Transaction{}, total, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

// byKind counts log entries of a given kind for a wallet.
func (f *fakeTransactionStore) byKind(walletID uuid.UUID, kind domain.TransactionKind) []domain.Transaction {
	f.mu.Lock()
	defer f.mu.Unlock()
	matched := []domain.Transaction{}
	for _, entry := range f.entries {
		if entry.WalletID == walletID && entry.Kind == kind {
			matched = append(matched, entry)
		}
	}
	return matched
}
