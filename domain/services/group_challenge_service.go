package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"sidebet/config"
	"sidebet/domain/domainerrors"
	"sidebet/domain/entities"
	"sidebet/domain/events"
	"sidebet/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

type groupChallengeService struct {
	walletSvc      interfaces.WalletService
	walletRepo     interfaces.WalletRepository
	challengeRepo  interfaces.GroupChallengeRepository
	escrowRepo     interfaces.EscrowRepository
	eventPublisher interfaces.EventPublisher
	fees           FeePolicy
}

// NewGroupChallengeService creates a new group challenge service
func NewGroupChallengeService(walletSvc interfaces.WalletService, walletRepo interfaces.WalletRepository, challengeRepo interfaces.GroupChallengeRepository, escrowRepo interfaces.EscrowRepository, eventPublisher interfaces.EventPublisher) interfaces.GroupChallengeService {
	return &groupChallengeService{
		walletSvc:      walletSvc,
		walletRepo:     walletRepo,
		challengeRepo:  challengeRepo,
		escrowRepo:     escrowRepo,
		eventPublisher: eventPublisher,
		fees:           NewFeePolicy(),
	}
}

// Create opens a new challenge. The creator contributes the first entry fee
// immediately, so an open challenge always has at least one participant.
func (s *groupChallengeService) Create(ctx context.Context, creatorID, title, description string, entryFee, targetAmount int64, minParticipants, maxParticipants int, expiresIn time.Duration) (*entities.GroupChallenge, error) {
	if strings.TrimSpace(title) == "" {
		return nil, domainerrors.NewValidation("title cannot be empty")
	}
	if err := s.fees.ValidateStake(entryFee); err != nil {
		return nil, err
	}
	if targetAmount < entryFee {
		return nil, domainerrors.NewValidation("target amount must cover at least one entry fee")
	}
	if targetAmount%entryFee != 0 {
		return nil, domainerrors.NewValidation("target amount must be a whole number of entry fees")
	}
	if minParticipants < 2 {
		return nil, domainerrors.NewValidation("challenge needs at least two participants")
	}
	if maxParticipants > 0 && maxParticipants < minParticipants {
		return nil, domainerrors.NewValidation("max participants cannot be below the minimum")
	}
	if expiresIn <= 0 {
		return nil, domainerrors.NewValidation("expiry must be in the future")
	}

	challenge := &entities.GroupChallenge{
		CreatorID:       creatorID,
		Title:           title,
		Description:     description,
		EntryFee:        entryFee,
		TargetAmount:    targetAmount,
		MinParticipants: minParticipants,
		MaxParticipants: maxParticipants,
		Status:          entities.GroupChallengeStatusOpen,
		ExpiresAt:       time.Now().Add(expiresIn),
	}
	if err := s.challengeRepo.Create(ctx, challenge); err != nil {
		return nil, fmt.Errorf("failed to create group challenge: %w", err)
	}

	if err := s.contributeEntry(ctx, challenge, creatorID); err != nil {
		return nil, err
	}
	if err := s.challengeRepo.Update(ctx, challenge); err != nil {
		return nil, fmt.Errorf("failed to update group challenge: %w", err)
	}

	if err := s.eventPublisher.Publish(events.GroupChallengeCreatedEvent{
		ChallengeID:  challenge.ID,
		CreatorID:    creatorID,
		EntryFee:     entryFee,
		TargetAmount: targetAmount,
	}); err != nil {
		log.WithError(err).Error("Failed to publish group challenge created event")
	}

	return challenge, nil
}

// Contribute debits one entry fee plus fees for the user, escrowing the
// entry into the pot. The challenge row lock serializes concurrent
// contributions so the pot never overshoots its target or participant cap.
func (s *groupChallengeService) Contribute(ctx context.Context, challengeID int64, userID string) (*entities.GroupChallenge, error) {
	challenge, err := s.challengeRepo.GetForUpdate(ctx, challengeID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock group challenge: %w", err)
	}
	if challenge == nil {
		return nil, domainerrors.NewNotFound("group challenge", challengeID)
	}
	if !challenge.IsOpen() {
		return nil, domainerrors.NewInvalidState(fmt.Sprintf("challenge is not open (current status: %s)", challenge.Status))
	}
	if challenge.IsExpired(time.Now()) {
		return nil, domainerrors.NewInvalidState("challenge has expired")
	}
	if challenge.IsFull() {
		return nil, domainerrors.NewInvalidState("challenge is full")
	}

	already, err := s.challengeRepo.HasContribution(ctx, challengeID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check contribution: %w", err)
	}
	if already {
		return nil, domainerrors.NewValidation("user has already contributed to this challenge")
	}

	if err := s.contributeEntry(ctx, challenge, userID); err != nil {
		return nil, err
	}
	if err := s.challengeRepo.Update(ctx, challenge); err != nil {
		return nil, fmt.Errorf("failed to update group challenge: %w", err)
	}

	if challenge.IsFunded() {
		if err := s.eventPublisher.Publish(events.GroupChallengeFundedEvent{
			ChallengeID:  challenge.ID,
			Pot:          challenge.CurrentAmount,
			Contributors: challenge.ParticipantCount(),
		}); err != nil {
			log.WithError(err).Error("Failed to publish group challenge funded event")
		}
	}

	return challenge, nil
}

// Resolve pays the full pot to the winner and finalizes every contribution.
// Losing contributors forfeit their entry fees into the pot.
func (s *groupChallengeService) Resolve(ctx context.Context, challengeID int64, winnerID string, resolvedBy string) (*entities.GroupChallenge, error) {
	if !config.Get().IsResolver(resolvedBy) {
		return nil, domainerrors.NewValidation("user is not authorized to resolve challenges")
	}

	challenge, err := s.challengeRepo.GetForUpdate(ctx, challengeID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock group challenge: %w", err)
	}
	if challenge == nil {
		return nil, domainerrors.NewNotFound("group challenge", challengeID)
	}
	if !challenge.IsFunded() {
		return nil, domainerrors.NewInvalidState(fmt.Sprintf("challenge is not funded (current status: %s)", challenge.Status))
	}
	if challenge.ParticipantCount() < challenge.MinParticipants {
		return nil, domainerrors.NewInvalidState("challenge is below its participant minimum")
	}

	hasEntry, err := s.challengeRepo.HasContribution(ctx, challengeID, winnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to check contribution: %w", err)
	}
	if !hasEntry {
		return nil, domainerrors.NewValidation("winner must be a contributor")
	}

	records, err := s.escrowRepo.GetByChallenge(ctx, challengeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get escrow records: %w", err)
	}
	for _, record := range records {
		if record.IsDisputed() {
			return nil, domainerrors.NewInvalidState(fmt.Sprintf("escrow %d is disputed; settlement is blocked", record.ID))
		}
	}

	pot := challenge.CurrentAmount
	challenge.Complete(winnerID, time.Now())
	if err := s.challengeRepo.Update(ctx, challenge); err != nil {
		return nil, fmt.Errorf("failed to update group challenge: %w", err)
	}

	if err := s.walletSvc.Credit(ctx, winnerID, pot, entities.TransactionTypeChallengeWin, &interfaces.LedgerRef{
		RelatedID:   challenge.ID,
		RelatedType: entities.RelatedTypeGroupChallenge,
		Metadata:    map[string]any{"pot": pot, "contributors": challenge.ParticipantCount()},
	}); err != nil {
		return nil, err
	}

	if err := s.finalizeContributions(ctx, records); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"challengeID": challenge.ID,
		"winnerID":    winnerID,
		"pot":         pot,
		"resolvedBy":  resolvedBy,
	}).Info("Group challenge resolved")

	if err := s.eventPublisher.Publish(events.GroupChallengeResolvedEvent{
		ChallengeID: challenge.ID,
		WinnerID:    winnerID,
		Payout:      pot,
	}); err != nil {
		log.WithError(err).Error("Failed to publish group challenge resolved event")
	}

	return challenge, nil
}

// ExpireDue transitions open challenges past expiry, refunding every
// contributor's entry fee and fees in full
func (s *groupChallengeService) ExpireDue(ctx context.Context, now time.Time, limit int) (int, error) {
	due, err := s.challengeRepo.GetExpired(ctx, now, limit)
	if err != nil {
		return 0, fmt.Errorf("failed to get expired challenges: %w", err)
	}

	expired := 0
	for _, challenge := range due {
		locked, err := s.challengeRepo.GetForUpdate(ctx, challenge.ID)
		if err != nil {
			return expired, fmt.Errorf("failed to lock group challenge: %w", err)
		}
		if locked == nil || !locked.IsOpen() {
			// Funded or resolved since the sweep query ran
			continue
		}

		locked.Expire()
		if err := s.challengeRepo.Update(ctx, locked); err != nil {
			return expired, fmt.Errorf("failed to update group challenge: %w", err)
		}

		records, err := s.escrowRepo.GetByChallenge(ctx, locked.ID)
		if err != nil {
			return expired, fmt.Errorf("failed to get escrow records: %w", err)
		}

		refunded := 0
		for _, record := range records {
			if !record.IsHeld() {
				continue
			}
			refund := record.Amount + s.fees.Fees(record.Amount)
			if err := s.walletSvc.Credit(ctx, record.UserID, refund, entities.TransactionTypeChallengeRefund, &interfaces.LedgerRef{
				RelatedID:   locked.ID,
				RelatedType: entities.RelatedTypeGroupChallenge,
				Metadata:    map[string]any{"escrow_id": record.ID},
			}); err != nil {
				return expired, err
			}
			if err := s.walletSvc.ReleaseFromEscrow(ctx, record.UserID, record.Amount); err != nil {
				return expired, err
			}
			if err := s.escrowRepo.Release(ctx, record.ID); err != nil {
				return expired, fmt.Errorf("failed to release escrow %d: %w", record.ID, err)
			}
			refunded++
		}

		if err := s.eventPublisher.Publish(events.GroupChallengeExpiredEvent{
			ChallengeID: locked.ID,
			Refunded:    refunded,
		}); err != nil {
			log.WithError(err).Error("Failed to publish group challenge expired event")
		}

		expired++
	}

	return expired, nil
}

// GetByID retrieves a challenge
func (s *groupChallengeService) GetByID(ctx context.Context, challengeID int64) (*entities.GroupChallenge, error) {
	challenge, err := s.challengeRepo.GetByID(ctx, challengeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get group challenge: %w", err)
	}
	if challenge == nil {
		return nil, domainerrors.NewNotFound("group challenge", challengeID)
	}
	return challenge, nil
}

// contributeEntry debits entry fee plus fees, escrows the entry fee into the
// pot, and funds the challenge when the target or cap is reached. The fee
// portion is realized immediately, the same as with wager stakes.
func (s *groupChallengeService) contributeEntry(ctx context.Context, challenge *entities.GroupChallenge, userID string) error {
	wallet, err := s.walletRepo.GetForUpdate(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to lock wallet: %w", err)
	}
	if wallet == nil {
		return domainerrors.NewNotFound("wallet", userID)
	}
	if shortfall := wallet.Shortfall(s.fees.TotalDebit(challenge.EntryFee)); shortfall > 0 {
		return domainerrors.NewInsufficientFunds(shortfall)
	}

	if err := s.walletSvc.MoveToEscrow(ctx, userID, challenge.EntryFee); err != nil {
		return err
	}
	if fees := s.fees.Fees(challenge.EntryFee); fees > 0 {
		if err := s.walletSvc.Debit(ctx, userID, fees, entities.TransactionTypeChallengeEntry, &interfaces.LedgerRef{
			RelatedID:   challenge.ID,
			RelatedType: entities.RelatedTypeGroupChallenge,
			Metadata:    map[string]any{"entry_fee": challenge.EntryFee, "fees": fees},
		}); err != nil {
			return err
		}
	}

	record := &entities.EscrowRecord{
		UserID:           userID,
		GroupChallengeID: &challenge.ID,
		Amount:           challenge.EntryFee,
		Status:           entities.EscrowStatusHeld,
	}
	if err := s.escrowRepo.Create(ctx, record); err != nil {
		return fmt.Errorf("failed to open escrow: %w", err)
	}

	challenge.Contribute()
	if challenge.ShouldFund() {
		challenge.Fund()
	}
	return nil
}

// finalizeContributions releases every held contribution record and its
// escrow-held balance
func (s *groupChallengeService) finalizeContributions(ctx context.Context, records []*entities.EscrowRecord) error {
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
	}
	return nil
}
