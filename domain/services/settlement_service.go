package services

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"sidebet/config"
	"sidebet/domain/domainerrors"
	"sidebet/domain/entities"
	"sidebet/domain/events"
	"sidebet/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

type settlementService struct {
	walletSvc      interfaces.WalletService
	wagerRepo      interfaces.WagerRepository
	escrowRepo     interfaces.EscrowRepository
	eventPublisher interfaces.EventPublisher
	fees           FeePolicy
}

// NewSettlementService creates a new settlement service
func NewSettlementService(walletSvc interfaces.WalletService, wagerRepo interfaces.WagerRepository, escrowRepo interfaces.EscrowRepository, eventPublisher interfaces.EventPublisher) interfaces.SettlementService {
	return &settlementService{
		walletSvc:      walletSvc,
		wagerRepo:      wagerRepo,
		escrowRepo:     escrowRepo,
		eventPublisher: eventPublisher,
		fees:           NewFeePolicy(),
	}
}

// Resolve settles a wager. The outcome is from the creator's perspective:
// win credits the creator, loss credits the opponent, push refunds both
// sides minus the platform fee.
func (s *settlementService) Resolve(ctx context.Context, wagerID int64, outcome entities.WagerOutcome, resolvedBy string) (*entities.Wager, error) {
	if !config.Get().IsResolver(resolvedBy) {
		return nil, domainerrors.NewValidation("user is not authorized to resolve wagers")
	}
	switch outcome {
	case entities.WagerOutcomeWin, entities.WagerOutcomeLoss, entities.WagerOutcomePush:
	default:
		return nil, domainerrors.NewValidation(fmt.Sprintf("invalid outcome: %s", outcome))
	}

	wager, err := s.wagerRepo.GetByID(ctx, wagerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get wager: %w", err)
	}
	if wager == nil {
		return nil, domainerrors.NewNotFound("wager", wagerID)
	}
	if !wager.IsResolvable() {
		return nil, domainerrors.NewInvalidState(fmt.Sprintf("wager cannot be resolved (current status: %s)", wager.Status))
	}
	if outcome == entities.WagerOutcomeLoss && wager.OpponentID == nil {
		return nil, domainerrors.NewInvalidState("unmatched wager has no opponent to credit")
	}

	records, err := s.escrowRepo.GetByWager(ctx, wagerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get escrow records: %w", err)
	}
	for _, record := range records {
		if record.IsDisputed() {
			return nil, domainerrors.NewInvalidState(fmt.Sprintf("escrow %d is disputed; settlement is blocked", record.ID))
		}
	}

	winnerID := s.winnerFor(wager, outcome)

	// Claim the wager before touching any balance. Concurrent resolves race
	// on this guard and exactly one proceeds.
	allowed := []entities.WagerStatus{wager.Status}
	wager.Complete(outcome, winnerID, time.Now())
	ok, err := s.wagerRepo.UpdateStatusGuarded(ctx, wager, allowed)
	if err != nil {
		return nil, fmt.Errorf("failed to complete wager: %w", err)
	}
	if !ok {
		return nil, domainerrors.NewInvalidState("wager was already resolved")
	}

	var payout int64
	switch outcome {
	case entities.WagerOutcomePush:
		err = s.settlePush(ctx, wager, records)
	default:
		payout, err = s.settleDecided(ctx, wager, winnerID, records)
	}
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"wagerID":    wager.ID,
		"outcome":    outcome,
		"resolvedBy": resolvedBy,
		"payout":     payout,
	}).Info("Wager resolved")

	event := events.WagerResolvedEvent{
		WagerID: wager.ID,
		Outcome: string(outcome),
		Payout:  payout,
	}
	if winnerID != nil {
		event.WinnerID = *winnerID
	}
	if err := s.eventPublisher.Publish(event); err != nil {
		log.WithError(err).Error("Failed to publish wager resolved event")
	}

	return wager, nil
}

// DisputeEscrow marks a held escrow record as disputed, excluding it from
// automatic settlement
func (s *settlementService) DisputeEscrow(ctx context.Context, escrowID int64, raisedBy string) error {
	if !config.Get().IsResolver(raisedBy) {
		return domainerrors.NewValidation("user is not authorized to dispute escrows")
	}

	record, err := s.escrowRepo.GetByID(ctx, escrowID)
	if err != nil {
		return fmt.Errorf("failed to get escrow record: %w", err)
	}
	if record == nil {
		return domainerrors.NewNotFound("escrow record", escrowID)
	}

	ok, err := s.escrowRepo.Dispute(ctx, escrowID)
	if err != nil {
		return fmt.Errorf("failed to dispute escrow: %w", err)
	}
	if !ok {
		return domainerrors.NewInvalidState(fmt.Sprintf("escrow cannot be disputed (current status: %s)", record.Status))
	}

	log.WithFields(log.Fields{
		"escrowID": escrowID,
		"userID":   record.UserID,
		"raisedBy": raisedBy,
	}).Warn("Escrow disputed")

	if err := s.eventPublisher.Publish(events.EscrowDisputedEvent{
		EscrowID: escrowID,
		UserID:   record.UserID,
		RaisedBy: raisedBy,
	}); err != nil {
		log.WithError(err).Error("Failed to publish escrow disputed event")
	}

	return nil
}

// GenerateMockResults auto-resolves up to limit resolvable wagers with random
// outcomes. Refuses to run outside simulation mode.
func (s *settlementService) GenerateMockResults(ctx context.Context, limit int) (int, error) {
	cfg := config.Get()
	if !cfg.SimulationMode {
		return 0, domainerrors.NewValidation("mock results are only available in simulation mode")
	}
	if len(cfg.ResolverUserIDs) == 0 {
		return 0, domainerrors.NewValidation("no resolver configured for mock results")
	}
	resolver := cfg.ResolverUserIDs[0]

	wagers, err := s.wagerRepo.GetResolvable(ctx, limit)
	if err != nil {
		return 0, fmt.Errorf("failed to get resolvable wagers: %w", err)
	}

	outcomes := []entities.WagerOutcome{
		entities.WagerOutcomeWin,
		entities.WagerOutcomeLoss,
		entities.WagerOutcomePush,
	}

	resolved := 0
	for _, wager := range wagers {
		outcome := outcomes[rand.Intn(len(outcomes))]
		if wager.OpponentID == nil && outcome == entities.WagerOutcomeLoss {
			outcome = entities.WagerOutcomeWin
		}
		if _, err := s.Resolve(ctx, wager.ID, outcome, resolver); err != nil {
			if domainerrors.IsInvalidState(err) {
				continue
			}
			return resolved, err
		}
		resolved++
	}
	return resolved, nil
}

// winnerFor maps a creator-perspective outcome to the winning participant
func (s *settlementService) winnerFor(wager *entities.Wager, outcome entities.WagerOutcome) *string {
	switch outcome {
	case entities.WagerOutcomeWin:
		creator := wager.CreatorID
		return &creator
	case entities.WagerOutcomeLoss:
		return wager.OpponentID
	}
	return nil
}

// settleDecided credits the winner and finalizes every escrow record on both
// sides. The loser's release carries no credit, which is the forfeiture.
func (s *settlementService) settleDecided(ctx context.Context, wager *entities.Wager, winnerID *string, records []*entities.EscrowRecord) (int64, error) {
	payout := s.fees.Payout(wager.Stake, wager.Odds)

	if err := s.walletSvc.Credit(ctx, *winnerID, payout, entities.TransactionTypeWagerWin, &interfaces.LedgerRef{
		RelatedID:   wager.ID,
		RelatedType: entities.RelatedTypeWager,
		Metadata:    map[string]any{"stake": wager.Stake, "odds": wager.Odds},
	}); err != nil {
		return 0, err
	}

	if err := s.finalizeEscrows(ctx, records); err != nil {
		return 0, err
	}
	return payout, nil
}

// settlePush refunds each participant's stake minus the platform fee and
// finalizes every escrow record
func (s *settlementService) settlePush(ctx context.Context, wager *entities.Wager, records []*entities.EscrowRecord) error {
	refund := s.fees.PushRefund(wager.Stake)

	for _, record := range records {
		if !record.IsHeld() {
			continue
		}
		if err := s.walletSvc.Credit(ctx, record.UserID, refund, entities.TransactionTypeWagerPush, &interfaces.LedgerRef{
			RelatedID:   wager.ID,
			RelatedType: entities.RelatedTypeWager,
			Metadata:    map[string]any{"stake": wager.Stake},
		}); err != nil {
			return err
		}
	}

	return s.finalizeEscrows(ctx, records)
}

// finalizeEscrows releases every held record and its escrow-held balance
func (s *settlementService) finalizeEscrows(ctx context.Context, records []*entities.EscrowRecord) error {
	for _, record := range records {
		if !record.IsHeld() {
			continue
		}
		if err := s.walletSvc.ReleaseFromEscrow(ctx, record.UserID, record.Amount); err != nil {
			return err
		}
		if err := s.escrowRepo.Release(ctx, record.ID); err != nil {
			return fmt.Errorf("failed to release escrow %d: %w", record.ID, err)
		}

		if err := s.eventPublisher.Publish(events.EscrowReleasedEvent{
			EscrowID: record.ID,
			UserID:   record.UserID,
			Amount:   record.Amount,
		}); err != nil {
			log.WithError(err).Error("Failed to publish escrow released event")
		}
	}
	return nil
}
