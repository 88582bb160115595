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

type wagerService struct {
	walletSvc      interfaces.WalletService
	walletRepo     interfaces.WalletRepository
	wagerRepo      interfaces.WagerRepository
	escrowRepo     interfaces.EscrowRepository
	eventPublisher interfaces.EventPublisher
	fees           FeePolicy
}

// NewWagerService creates a new wager service
func NewWagerService(walletSvc interfaces.WalletService, walletRepo interfaces.WalletRepository, wagerRepo interfaces.WagerRepository, escrowRepo interfaces.EscrowRepository, eventPublisher interfaces.EventPublisher) interfaces.WagerService {
	return &wagerService{
		walletSvc:      walletSvc,
		walletRepo:     walletRepo,
		wagerRepo:      wagerRepo,
		escrowRepo:     escrowRepo,
		eventPublisher: eventPublisher,
		fees:           NewFeePolicy(),
	}
}

// Create validates the stake, debits the creator for stake plus fees,
// escrows the stake and opens the wager
func (s *wagerService) Create(ctx context.Context, creatorID string, stake int64, selection string, odds int, vigPercent float64, expiresIn time.Duration) (*entities.Wager, error) {
	if err := s.fees.ValidateStake(stake); err != nil {
		return nil, err
	}
	if err := s.fees.ValidateOdds(odds); err != nil {
		return nil, err
	}
	if strings.TrimSpace(selection) == "" {
		return nil, domainerrors.NewValidation("selection cannot be empty")
	}
	if vigPercent < 0 || vigPercent > 100 {
		return nil, domainerrors.NewValidation("vig percent must be between 0 and 100")
	}
	if expiresIn <= 0 {
		return nil, domainerrors.NewValidation("expiry must be in the future")
	}

	// The whole debit is checked upfront so the shortfall reported to the
	// user covers stake and fees together.
	if err := s.reserveStake(ctx, creatorID, stake, 0); err != nil {
		return nil, err
	}

	wager := &entities.Wager{
		CreatorID:  creatorID,
		Stake:      stake,
		Selection:  selection,
		Odds:       odds,
		VigPercent: vigPercent,
		Status:     entities.WagerStatusOpen,
		Outcome:    entities.WagerOutcomeUnset,
		ExpiresAt:  time.Now().Add(expiresIn),
	}
	if err := s.wagerRepo.Create(ctx, wager); err != nil {
		return nil, fmt.Errorf("failed to create wager: %w", err)
	}

	if err := s.openEscrow(ctx, creatorID, wager.ID, stake); err != nil {
		return nil, err
	}

	if err := s.eventPublisher.Publish(events.WagerCreatedEvent{
		WagerID:   wager.ID,
		CreatorID: creatorID,
		Stake:     stake,
		Odds:      odds,
		Selection: selection,
	}); err != nil {
		log.WithError(err).Error("Failed to publish wager created event")
	}

	return wager, nil
}

// Match accepts an open wager, debiting and escrowing the opponent with the
// same stake as the creator. Equal-stake symmetry is a platform rule.
func (s *wagerService) Match(ctx context.Context, wagerID int64, opponentID string) (*entities.Wager, error) {
	wager, err := s.wagerRepo.GetByID(ctx, wagerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get wager: %w", err)
	}
	if wager == nil {
		return nil, domainerrors.NewNotFound("wager", wagerID)
	}
	if wager.CreatorID == opponentID {
		return nil, domainerrors.NewValidation("cannot accept your own wager")
	}
	if !wager.IsOpen() {
		return nil, domainerrors.NewInvalidState(fmt.Sprintf("wager is not open (current status: %s)", wager.Status))
	}
	if wager.IsExpired(time.Now()) {
		return nil, domainerrors.NewInvalidState("wager has expired")
	}

	if err := s.reserveStake(ctx, opponentID, wager.Stake, wager.ID); err != nil {
		return nil, err
	}

	wager.Match(opponentID, time.Now())

	// The status guard loses gracefully if another opponent matched first.
	ok, err := s.wagerRepo.UpdateStatusGuarded(ctx, wager, []entities.WagerStatus{entities.WagerStatusOpen})
	if err != nil {
		return nil, fmt.Errorf("failed to update wager: %w", err)
	}
	if !ok {
		return nil, domainerrors.NewInvalidState("wager was matched by someone else")
	}

	if err := s.openEscrow(ctx, opponentID, wager.ID, wager.Stake); err != nil {
		return nil, err
	}

	if err := s.eventPublisher.Publish(events.WagerMatchedEvent{
		WagerID:    wager.ID,
		CreatorID:  wager.CreatorID,
		OpponentID: opponentID,
		Stake:      wager.Stake,
	}); err != nil {
		log.WithError(err).Error("Failed to publish wager matched event")
	}

	return wager, nil
}

// Cancel cancels an open wager (creator only) or a matched wager (operator
// only), refunding every participant's stake and fees in full
func (s *wagerService) Cancel(ctx context.Context, wagerID int64, cancelledBy string) (*entities.Wager, error) {
	wager, err := s.wagerRepo.GetByID(ctx, wagerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get wager: %w", err)
	}
	if wager == nil {
		return nil, domainerrors.NewNotFound("wager", wagerID)
	}

	isOperator := config.Get().IsResolver(cancelledBy)

	switch wager.Status {
	case entities.WagerStatusOpen:
		if wager.CreatorID != cancelledBy && !isOperator {
			return nil, domainerrors.NewValidation("only the creator can cancel an open wager")
		}
	case entities.WagerStatusMatched:
		if !isOperator {
			return nil, domainerrors.NewValidation("only an operator can cancel a matched wager")
		}
	default:
		return nil, domainerrors.NewInvalidState(fmt.Sprintf("wager cannot be cancelled (current status: %s)", wager.Status))
	}

	allowed := []entities.WagerStatus{wager.Status}
	prior := wager.Status
	wager.Status = entities.WagerStatusCancelled

	ok, err := s.wagerRepo.UpdateStatusGuarded(ctx, wager, allowed)
	if err != nil {
		return nil, fmt.Errorf("failed to update wager: %w", err)
	}
	if !ok {
		return nil, domainerrors.NewInvalidState("wager state changed concurrently")
	}

	if err := s.refundAllParticipants(ctx, wager, entities.TransactionTypeWagerRefund); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"wagerID":     wager.ID,
		"priorStatus": prior,
		"cancelledBy": cancelledBy,
	}).Info("Wager cancelled")

	if err := s.eventPublisher.Publish(events.WagerCancelledEvent{
		WagerID:     wager.ID,
		CancelledBy: cancelledBy,
	}); err != nil {
		log.WithError(err).Error("Failed to publish wager cancelled event")
	}

	return wager, nil
}

// ExpireDue transitions open wagers past expiry. The creator's full debit,
// fees included, is refunded: an unmatched wager never engaged the platform.
func (s *wagerService) ExpireDue(ctx context.Context, now time.Time, limit int) (int, error) {
	due, err := s.wagerRepo.GetExpired(ctx, now, limit)
	if err != nil {
		return 0, fmt.Errorf("failed to get expired wagers: %w", err)
	}

	expired := 0
	for _, wager := range due {
		wager.Status = entities.WagerStatusExpired

		ok, err := s.wagerRepo.UpdateStatusGuarded(ctx, wager, []entities.WagerStatus{entities.WagerStatusOpen})
		if err != nil {
			return expired, fmt.Errorf("failed to expire wager %d: %w", wager.ID, err)
		}
		if !ok {
			// Matched or resolved since the sweep query ran
			continue
		}

		if err := s.refundAllParticipants(ctx, wager, entities.TransactionTypeWagerRefund); err != nil {
			return expired, err
		}

		if err := s.eventPublisher.Publish(events.WagerExpiredEvent{
			WagerID:   wager.ID,
			CreatorID: wager.CreatorID,
			Refund:    s.fees.TotalDebit(wager.Stake),
		}); err != nil {
			log.WithError(err).Error("Failed to publish wager expired event")
		}

		expired++
	}

	return expired, nil
}

// GetByID retrieves a wager
func (s *wagerService) GetByID(ctx context.Context, wagerID int64) (*entities.Wager, error) {
	wager, err := s.wagerRepo.GetByID(ctx, wagerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get wager: %w", err)
	}
	if wager == nil {
		return nil, domainerrors.NewNotFound("wager", wagerID)
	}
	return wager, nil
}

// GetActiveByUser returns the user's open and matched wagers
func (s *wagerService) GetActiveByUser(ctx context.Context, userID string) ([]*entities.Wager, error) {
	wagers, err := s.wagerRepo.GetActiveByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get active wagers: %w", err)
	}
	return wagers, nil
}

// reserveStake checks the full debit against the wallet, then moves the
// stake to escrow and realizes the fees as platform revenue. wagerID is zero
// at create, where the wager row does not exist yet; the fee entry then
// carries the stake breakdown in its metadata only.
func (s *wagerService) reserveStake(ctx context.Context, userID string, stake, wagerID int64) error {
	wallet, err := s.walletRepo.GetForUpdate(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to lock wallet: %w", err)
	}
	if wallet == nil {
		return domainerrors.NewNotFound("wallet", userID)
	}
	if shortfall := wallet.Shortfall(s.fees.TotalDebit(stake)); shortfall > 0 {
		return domainerrors.NewInsufficientFunds(shortfall)
	}

	if err := s.walletSvc.MoveToEscrow(ctx, userID, stake); err != nil {
		return err
	}
	if fees := s.fees.Fees(stake); fees > 0 {
		ref := &interfaces.LedgerRef{Metadata: map[string]any{"stake": stake, "fees": fees}}
		if wagerID != 0 {
			ref.RelatedID = wagerID
			ref.RelatedType = entities.RelatedTypeWager
		}
		if err := s.walletSvc.Debit(ctx, userID, fees, entities.TransactionTypeWagerStake, ref); err != nil {
			return err
		}
	}
	return nil
}

// openEscrow creates the held escrow record backing a reserved stake
func (s *wagerService) openEscrow(ctx context.Context, userID string, wagerID, amount int64) error {
	record := &entities.EscrowRecord{
		UserID:  userID,
		WagerID: &wagerID,
		Amount:  amount,
		Status:  entities.EscrowStatusHeld,
	}
	if err := s.escrowRepo.Create(ctx, record); err != nil {
		return fmt.Errorf("failed to open escrow: %w", err)
	}
	return nil
}

// refundAllParticipants returns stake plus fees to every held escrow on the
// wager and releases the records. Used by cancellation and expiry.
func (s *wagerService) refundAllParticipants(ctx context.Context, wager *entities.Wager, txType entities.TransactionType) error {
	records, err := s.escrowRepo.GetByWager(ctx, wager.ID)
	if err != nil {
		return fmt.Errorf("failed to get escrow records: %w", err)
	}

	for _, record := range records {
		if !record.IsHeld() {
			continue
		}
		refund := record.Amount + s.fees.Fees(record.Amount)
		if err := s.walletSvc.Credit(ctx, record.UserID, refund, txType, &interfaces.LedgerRef{
			RelatedID:   wager.ID,
			RelatedType: entities.RelatedTypeWager,
			Metadata:    map[string]any{"escrow_id": record.ID},
		}); err != nil {
			return err
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
