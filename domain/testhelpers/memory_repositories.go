package testhelpers

import (
	"context"
	"fmt"
	"sort"
	"time"

	"sidebet/domain/entities"
	"sidebet/domain/events"
)

// MemoryStore is an in-memory backing store shared by the memory
// repositories. It is not safe for concurrent use; it exists so service
// flows can be exercised end to end without a database.
type MemoryStore struct {
	Wallets    map[string]*entities.Wallet
	Wagers     map[int64]*entities.Wager
	Escrows    map[int64]*entities.EscrowRecord
	Challenges map[int64]*entities.GroupChallenge
	Ledger     []*entities.LedgerEntry

	nextWagerID     int64
	nextEscrowID    int64
	nextChallengeID int64
	nextLedgerID    int64
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		Wallets:    make(map[string]*entities.Wallet),
		Wagers:     make(map[int64]*entities.Wager),
		Escrows:    make(map[int64]*entities.EscrowRecord),
		Challenges: make(map[int64]*entities.GroupChallenge),
	}
}

// HeldEscrowTotal sums the held escrow amounts for a user
func (s *MemoryStore) HeldEscrowTotal(userID string) int64 {
	var total int64
	for _, record := range s.Escrows {
		if record.UserID == userID && record.IsHeld() {
			total += record.Amount
		}
	}
	return total
}

// ReleasedEscrowTotal sums the released escrow amounts for a user
func (s *MemoryStore) ReleasedEscrowTotal(userID string) int64 {
	var total int64
	for _, record := range s.Escrows {
		if record.UserID == userID && record.IsReleased() {
			total += record.Amount
		}
	}
	return total
}

// LedgerSum sums the ledger change amounts for a user
func (s *MemoryStore) LedgerSum(userID string) int64 {
	var total int64
	for _, entry := range s.Ledger {
		if entry.UserID == userID {
			total += entry.ChangeAmount
		}
	}
	return total
}

// MemoryWalletRepository is an in-memory WalletRepository
type MemoryWalletRepository struct {
	Store *MemoryStore
}

func (r *MemoryWalletRepository) GetByUserID(_ context.Context, userID string) (*entities.Wallet, error) {
	return r.Store.Wallets[userID], nil
}

func (r *MemoryWalletRepository) GetForUpdate(_ context.Context, userID string) (*entities.Wallet, error) {
	return r.Store.Wallets[userID], nil
}

func (r *MemoryWalletRepository) Create(_ context.Context, userID string) (*entities.Wallet, error) {
	if _, exists := r.Store.Wallets[userID]; exists {
		return nil, fmt.Errorf("wallet already exists for user %s", userID)
	}
	wallet := &entities.Wallet{UserID: userID, CreatedAt: time.Now()}
	r.Store.Wallets[userID] = wallet
	return wallet, nil
}

func (r *MemoryWalletRepository) UpdateBalances(_ context.Context, wallet *entities.Wallet) error {
	if _, exists := r.Store.Wallets[wallet.UserID]; !exists {
		return fmt.Errorf("wallet not found for user %s", wallet.UserID)
	}
	r.Store.Wallets[wallet.UserID] = wallet
	return nil
}

// MemoryWagerRepository is an in-memory WagerRepository. Reads return copies
// so the status guard sees the stored row, not the caller's mutation.
type MemoryWagerRepository struct {
	Store *MemoryStore
}

func (r *MemoryWagerRepository) Create(_ context.Context, wager *entities.Wager) error {
	r.Store.nextWagerID++
	wager.ID = r.Store.nextWagerID
	wager.CreatedAt = time.Now()
	stored := *wager
	r.Store.Wagers[wager.ID] = &stored
	return nil
}

func (r *MemoryWagerRepository) GetByID(_ context.Context, id int64) (*entities.Wager, error) {
	stored, ok := r.Store.Wagers[id]
	if !ok {
		return nil, nil
	}
	copied := *stored
	return &copied, nil
}

func (r *MemoryWagerRepository) Update(_ context.Context, wager *entities.Wager) error {
	if _, ok := r.Store.Wagers[wager.ID]; !ok {
		return fmt.Errorf("wager %d not found", wager.ID)
	}
	stored := *wager
	r.Store.Wagers[wager.ID] = &stored
	return nil
}

func (r *MemoryWagerRepository) UpdateStatusGuarded(_ context.Context, wager *entities.Wager, allowed []entities.WagerStatus) (bool, error) {
	stored, ok := r.Store.Wagers[wager.ID]
	if !ok {
		return false, fmt.Errorf("wager %d not found", wager.ID)
	}
	permitted := false
	for _, status := range allowed {
		if stored.Status == status {
			permitted = true
			break
		}
	}
	if !permitted {
		return false, nil
	}
	updated := *wager
	r.Store.Wagers[wager.ID] = &updated
	return true, nil
}

func (r *MemoryWagerRepository) GetActiveByUser(_ context.Context, userID string) ([]*entities.Wager, error) {
	var result []*entities.Wager
	for _, id := range r.sortedIDs() {
		stored := r.Store.Wagers[id]
		if stored.IsResolvable() && stored.IsParticipant(userID) {
			copied := *stored
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (r *MemoryWagerRepository) GetExpired(_ context.Context, now time.Time, limit int) ([]*entities.Wager, error) {
	var result []*entities.Wager
	for _, id := range r.sortedIDs() {
		if len(result) >= limit {
			break
		}
		stored := r.Store.Wagers[id]
		if stored.IsExpired(now) {
			copied := *stored
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (r *MemoryWagerRepository) GetResolvable(_ context.Context, limit int) ([]*entities.Wager, error) {
	var result []*entities.Wager
	for _, id := range r.sortedIDs() {
		if len(result) >= limit {
			break
		}
		stored := r.Store.Wagers[id]
		if stored.IsResolvable() {
			copied := *stored
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (r *MemoryWagerRepository) sortedIDs() []int64 {
	ids := make([]int64, 0, len(r.Store.Wagers))
	for id := range r.Store.Wagers {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// MemoryEscrowRepository is an in-memory EscrowRepository
type MemoryEscrowRepository struct {
	Store *MemoryStore
}

func (r *MemoryEscrowRepository) Create(_ context.Context, record *entities.EscrowRecord) error {
	r.Store.nextEscrowID++
	record.ID = r.Store.nextEscrowID
	record.CreatedAt = time.Now()
	stored := *record
	r.Store.Escrows[record.ID] = &stored
	return nil
}

func (r *MemoryEscrowRepository) GetByID(_ context.Context, id int64) (*entities.EscrowRecord, error) {
	stored, ok := r.Store.Escrows[id]
	if !ok {
		return nil, nil
	}
	copied := *stored
	return &copied, nil
}

func (r *MemoryEscrowRepository) GetByWager(_ context.Context, wagerID int64) ([]*entities.EscrowRecord, error) {
	var result []*entities.EscrowRecord
	for _, id := range r.sortedIDs() {
		stored := r.Store.Escrows[id]
		if stored.WagerID != nil && *stored.WagerID == wagerID {
			copied := *stored
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (r *MemoryEscrowRepository) GetByChallenge(_ context.Context, challengeID int64) ([]*entities.EscrowRecord, error) {
	var result []*entities.EscrowRecord
	for _, id := range r.sortedIDs() {
		stored := r.Store.Escrows[id]
		if stored.GroupChallengeID != nil && *stored.GroupChallengeID == challengeID {
			copied := *stored
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (r *MemoryEscrowRepository) Release(_ context.Context, id int64) error {
	stored, ok := r.Store.Escrows[id]
	if !ok {
		return fmt.Errorf("escrow %d not found", id)
	}
	stored.Release(time.Now())
	return nil
}

func (r *MemoryEscrowRepository) Dispute(_ context.Context, id int64) (bool, error) {
	stored, ok := r.Store.Escrows[id]
	if !ok {
		return false, fmt.Errorf("escrow %d not found", id)
	}
	return stored.Dispute(), nil
}

func (r *MemoryEscrowRepository) sortedIDs() []int64 {
	ids := make([]int64, 0, len(r.Store.Escrows))
	for id := range r.Store.Escrows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// MemoryGroupChallengeRepository is an in-memory GroupChallengeRepository
type MemoryGroupChallengeRepository struct {
	Store *MemoryStore
}

func (r *MemoryGroupChallengeRepository) Create(_ context.Context, challenge *entities.GroupChallenge) error {
	r.Store.nextChallengeID++
	challenge.ID = r.Store.nextChallengeID
	challenge.CreatedAt = time.Now()
	stored := *challenge
	r.Store.Challenges[challenge.ID] = &stored
	return nil
}

func (r *MemoryGroupChallengeRepository) GetByID(_ context.Context, id int64) (*entities.GroupChallenge, error) {
	stored, ok := r.Store.Challenges[id]
	if !ok {
		return nil, nil
	}
	copied := *stored
	return &copied, nil
}

func (r *MemoryGroupChallengeRepository) GetForUpdate(ctx context.Context, id int64) (*entities.GroupChallenge, error) {
	return r.GetByID(ctx, id)
}

func (r *MemoryGroupChallengeRepository) Update(_ context.Context, challenge *entities.GroupChallenge) error {
	if _, ok := r.Store.Challenges[challenge.ID]; !ok {
		return fmt.Errorf("group challenge %d not found", challenge.ID)
	}
	stored := *challenge
	r.Store.Challenges[challenge.ID] = &stored
	return nil
}

func (r *MemoryGroupChallengeRepository) HasContribution(_ context.Context, challengeID int64, userID string) (bool, error) {
	for _, record := range r.Store.Escrows {
		if record.GroupChallengeID != nil && *record.GroupChallengeID == challengeID && record.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (r *MemoryGroupChallengeRepository) GetExpired(_ context.Context, now time.Time, limit int) ([]*entities.GroupChallenge, error) {
	var result []*entities.GroupChallenge
	for _, stored := range r.Store.Challenges {
		if len(result) >= limit {
			break
		}
		if stored.IsExpired(now) {
			copied := *stored
			result = append(result, &copied)
		}
	}
	return result, nil
}

// MemoryLedgerRepository is an in-memory LedgerRepository. Entries are
// validated on write like the real repository does.
type MemoryLedgerRepository struct {
	Store *MemoryStore
}

func (r *MemoryLedgerRepository) Record(_ context.Context, entry *entities.LedgerEntry) error {
	if err := entry.Validate(); err != nil {
		return fmt.Errorf("invalid ledger entry: %w", err)
	}
	r.Store.nextLedgerID++
	entry.ID = r.Store.nextLedgerID
	entry.CreatedAt = time.Now()
	stored := *entry
	r.Store.Ledger = append(r.Store.Ledger, &stored)
	return nil
}

func (r *MemoryLedgerRepository) GetByUser(_ context.Context, userID string, limit int) ([]*entities.LedgerEntry, error) {
	var result []*entities.LedgerEntry
	for i := len(r.Store.Ledger) - 1; i >= 0 && len(result) < limit; i-- {
		if r.Store.Ledger[i].UserID == userID {
			copied := *r.Store.Ledger[i]
			result = append(result, &copied)
		}
	}
	return result, nil
}

// CapturingEventPublisher records published events for assertion
type CapturingEventPublisher struct {
	Events []events.Event
}

func (p *CapturingEventPublisher) Publish(event events.Event) error {
	p.Events = append(p.Events, event)
	return nil
}
