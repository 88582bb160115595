package services

import (
	"context"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"sidebet/domain/domainerrors"
	"sidebet/domain/entities"
	"sidebet/domain/interfaces"
	"sidebet/domain/testhelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type accountingFixture struct {
	store     *testhelpers.MemoryStore
	wallets   interfaces.WalletService
	wagers    interfaces.WagerService
	settler   interfaces.SettlementService
	deposited int64
}

func newAccountingFixture() *accountingFixture {
	store := testhelpers.NewMemoryStore()
	walletRepo := &testhelpers.MemoryWalletRepository{Store: store}
	wagerRepo := &testhelpers.MemoryWagerRepository{Store: store}
	escrowRepo := &testhelpers.MemoryEscrowRepository{Store: store}
	ledgerRepo := &testhelpers.MemoryLedgerRepository{Store: store}
	publisher := &testhelpers.CapturingEventPublisher{}

	walletSvc := NewWalletService(walletRepo, ledgerRepo, publisher)
	return &accountingFixture{
		store:   store,
		wallets: walletSvc,
		wagers:  NewWagerService(walletSvc, walletRepo, wagerRepo, escrowRepo, publisher),
		settler: NewSettlementService(walletSvc, wagerRepo, escrowRepo, publisher),
	}
}

// checkInvariants verifies the accounting identities that must hold after
// every operation, no matter the interleaving:
//
//  1. balances never go negative
//  2. a wallet's escrow balance equals its held escrow record amounts
//  3. a wallet's total value equals its ledger sum minus forfeited escrow,
//     because released escrow only re-enters through an explicit credit
func (f *accountingFixture) checkInvariants(t *testing.T, label string) {
	t.Helper()
	for userID, wallet := range f.store.Wallets {
		require.GreaterOrEqual(t, wallet.AvailableBalance, int64(0), "%s: negative available balance for %s", label, userID)
		require.GreaterOrEqual(t, wallet.EscrowBalance, int64(0), "%s: negative escrow balance for %s", label, userID)
		require.Equal(t, f.store.HeldEscrowTotal(userID), wallet.EscrowBalance,
			"%s: escrow balance out of sync with held records for %s", label, userID)
		require.Equal(t, f.store.LedgerSum(userID)-f.store.ReleasedEscrowTotal(userID), wallet.TotalBalance(),
			"%s: wallet total diverged from the ledger for %s", label, userID)
	}
}

// requireDomainOrNil fails the test on any error that is not a domain error.
// Domain rejections are expected outcomes of random operations.
func requireDomainOrNil(t *testing.T, err error) {
	t.Helper()
	if err != nil && domainerrors.CodeOf(err) == "" {
		t.Fatalf("unexpected non-domain error: %v", err)
	}
}

// TestAccounting_RandomWagerLifecycles drives a few hundred random operations
// through real service implementations over in-memory repositories and checks
// the accounting identities after each step. Even odds keep the platform's
// take non-negative, which pins down the end-state conservation check.
func TestAccounting_RandomWagerLifecycles(t *testing.T) {
	setResolverConfig(t)

	ctx := context.Background()
	rng := rand.New(rand.NewSource(42))
	f := newAccountingFixture()

	users := make([]string, 5)
	for i := range users {
		users[i] = fmt.Sprintf("user-%d", i+1)
		_, err := f.wallets.TopUp(ctx, users[i], 500_000)
		require.NoError(t, err)
		f.deposited += 500_000
	}

	evenOdds := []int{100, -100}
	outcomes := []entities.WagerOutcome{entities.WagerOutcomeWin, entities.WagerOutcomeLoss, entities.WagerOutcomePush}

	for step := 0; step < 400; step++ {
		label := fmt.Sprintf("step %d", step)
		switch rng.Intn(5) {
		case 0:
			creator := users[rng.Intn(len(users))]
			stake := int64(100 * (1 + rng.Intn(100)))
			_, err := f.wagers.Create(ctx, creator, stake, "coin flip", evenOdds[rng.Intn(2)], 0, time.Hour)
			requireDomainOrNil(t, err)
		case 1:
			if id := f.randomWager(rng, entities.WagerStatusOpen); id != 0 {
				_, err := f.wagers.Match(ctx, id, users[rng.Intn(len(users))])
				requireDomainOrNil(t, err)
			}
		case 2:
			if id := f.randomResolvable(rng); id != 0 {
				_, err := f.settler.Resolve(ctx, id, outcomes[rng.Intn(len(outcomes))], TestResolverID)
				requireDomainOrNil(t, err)
			}
		case 3:
			if id := f.randomWager(rng, entities.WagerStatusOpen); id != 0 {
				wager := f.store.Wagers[id]
				_, err := f.wagers.Cancel(ctx, id, wager.CreatorID)
				requireDomainOrNil(t, err)
			}
		case 4:
			_, err := f.wagers.ExpireDue(ctx, time.Now().Add(2*time.Hour), 3)
			requireDomainOrNil(t, err)
		}
		f.checkInvariants(t, label)
	}

	// Drain everything still in flight so escrow must come out empty
	for id, wager := range f.store.Wagers {
		if !wager.IsResolvable() {
			continue
		}
		outcome := entities.WagerOutcomeWin
		if wager.OpponentID != nil && rng.Intn(2) == 0 {
			outcome = entities.WagerOutcomeLoss
		}
		_, err := f.settler.Resolve(ctx, id, outcome, TestResolverID)
		require.NoError(t, err)
	}
	f.checkInvariants(t, "drained")

	var totalWealth int64
	for userID, wallet := range f.store.Wallets {
		assert.Zero(t, wallet.EscrowBalance, "escrow left over for %s", userID)
		totalWealth += wallet.TotalBalance()
	}
	for id, record := range f.store.Escrows {
		assert.True(t, record.IsReleased(), "escrow record %d never released", id)
	}

	// Fees only flow one way
	assert.LessOrEqual(t, totalWealth, f.deposited)
}

func (f *accountingFixture) randomWager(rng *rand.Rand, status entities.WagerStatus) int64 {
	var candidates []int64
	for id, wager := range f.store.Wagers {
		if wager.Status == status {
			candidates = append(candidates, id)
		}
	}
	if len(candidates) == 0 {
		return 0
	}
	return candidates[rng.Intn(len(candidates))]
}

func (f *accountingFixture) randomResolvable(rng *rand.Rand) int64 {
	var candidates []int64
	for id, wager := range f.store.Wagers {
		if wager.IsResolvable() {
			candidates = append(candidates, id)
		}
	}
	if len(candidates) == 0 {
		return 0
	}
	return candidates[rng.Intn(len(candidates))]
}
