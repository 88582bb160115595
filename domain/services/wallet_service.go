package services

import (
	"context"
	"fmt"

	"sidebet/domain/domainerrors"
	"sidebet/domain/entities"
	"sidebet/domain/events"
	"sidebet/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

type walletService struct {
	walletRepo     interfaces.WalletRepository
	ledgerRepo     interfaces.LedgerRepository
	eventPublisher interfaces.EventPublisher
}

// NewWalletService creates a new wallet service
func NewWalletService(walletRepo interfaces.WalletRepository, ledgerRepo interfaces.LedgerRepository, eventPublisher interfaces.EventPublisher) interfaces.WalletService {
	return &walletService{
		walletRepo:     walletRepo,
		ledgerRepo:     ledgerRepo,
		eventPublisher: eventPublisher,
	}
}

// GetOrCreate returns the user's wallet, creating an empty one on first touch
func (s *walletService) GetOrCreate(ctx context.Context, userID string) (*entities.Wallet, error) {
	wallet, err := s.walletRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	if wallet != nil {
		return wallet, nil
	}

	wallet, err = s.walletRepo.Create(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to create wallet: %w", err)
	}
	return wallet, nil
}

// TopUp credits funds arriving from the external checkout processor
func (s *walletService) TopUp(ctx context.Context, userID string, amount int64) (*entities.Wallet, error) {
	if amount <= 0 {
		return nil, domainerrors.NewValidation("top-up amount must be positive")
	}

	if _, err := s.GetOrCreate(ctx, userID); err != nil {
		return nil, err
	}

	if err := s.Credit(ctx, userID, amount, entities.TransactionTypeTopUp, nil); err != nil {
		return nil, err
	}

	wallet, err := s.walletRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload wallet: %w", err)
	}
	return wallet, nil
}

// Debit decreases the available balance and records a ledger entry
func (s *walletService) Debit(ctx context.Context, userID string, amount int64, txType entities.TransactionType, ref *interfaces.LedgerRef) error {
	if amount <= 0 {
		return domainerrors.NewValidation("debit amount must be positive")
	}

	wallet, err := s.walletRepo.GetForUpdate(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to lock wallet: %w", err)
	}
	if wallet == nil {
		return domainerrors.NewNotFound("wallet", userID)
	}
	if shortfall := wallet.Shortfall(amount); shortfall > 0 {
		return domainerrors.NewInsufficientFunds(shortfall)
	}

	before := wallet.AvailableBalance
	wallet.AvailableBalance -= amount

	if err := s.walletRepo.UpdateBalances(ctx, wallet); err != nil {
		return fmt.Errorf("failed to update wallet balances: %w", err)
	}

	return s.recordChange(ctx, userID, before, wallet.AvailableBalance, -amount, txType, ref)
}

// Credit increases the available balance and records a ledger entry
func (s *walletService) Credit(ctx context.Context, userID string, amount int64, txType entities.TransactionType, ref *interfaces.LedgerRef) error {
	if amount <= 0 {
		return domainerrors.NewValidation("credit amount must be positive")
	}

	wallet, err := s.walletRepo.GetForUpdate(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to lock wallet: %w", err)
	}
	if wallet == nil {
		return domainerrors.NewNotFound("wallet", userID)
	}

	before := wallet.AvailableBalance
	wallet.AvailableBalance += amount

	if err := s.walletRepo.UpdateBalances(ctx, wallet); err != nil {
		return fmt.Errorf("failed to update wallet balances: %w", err)
	}

	return s.recordChange(ctx, userID, before, wallet.AvailableBalance, amount, txType, ref)
}

// MoveToEscrow moves funds from available to escrow-held. The wallet's total
// value is unchanged, so no ledger entry is written; the escrow record is
// the audit trail.
func (s *walletService) MoveToEscrow(ctx context.Context, userID string, amount int64) error {
	if amount <= 0 {
		return domainerrors.NewValidation("escrow amount must be positive")
	}

	wallet, err := s.walletRepo.GetForUpdate(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to lock wallet: %w", err)
	}
	if wallet == nil {
		return domainerrors.NewNotFound("wallet", userID)
	}
	if shortfall := wallet.Shortfall(amount); shortfall > 0 {
		return domainerrors.NewInsufficientFunds(shortfall)
	}

	wallet.AvailableBalance -= amount
	wallet.EscrowBalance += amount

	if err := s.walletRepo.UpdateBalances(ctx, wallet); err != nil {
		return fmt.Errorf("failed to update wallet balances: %w", err)
	}
	return nil
}

// ReleaseFromEscrow decreases the escrow-held balance, floored at zero.
// Any credit owed to the user is a separate settlement step.
func (s *walletService) ReleaseFromEscrow(ctx context.Context, userID string, amount int64) error {
	if amount <= 0 {
		return domainerrors.NewValidation("escrow amount must be positive")
	}

	wallet, err := s.walletRepo.GetForUpdate(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to lock wallet: %w", err)
	}
	if wallet == nil {
		return domainerrors.NewNotFound("wallet", userID)
	}

	wallet.EscrowBalance -= amount
	if wallet.EscrowBalance < 0 {
		log.WithFields(log.Fields{
			"userID": userID,
			"amount": amount,
		}).Warn("Escrow release exceeded held balance, flooring at zero")
		wallet.EscrowBalance = 0
	}

	if err := s.walletRepo.UpdateBalances(ctx, wallet); err != nil {
		return fmt.Errorf("failed to update wallet balances: %w", err)
	}
	return nil
}

// History returns the user's ledger entries, newest first
func (s *walletService) History(ctx context.Context, userID string, limit int) ([]*entities.LedgerEntry, error) {
	entries, err := s.ledgerRepo.GetByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger entries: %w", err)
	}
	return entries, nil
}

// recordChange writes the ledger entry and emits a BalanceChanged event.
// This is the single entry point for all available-balance changes.
func (s *walletService) recordChange(ctx context.Context, userID string, before, after, change int64, txType entities.TransactionType, ref *interfaces.LedgerRef) error {
	entry := &entities.LedgerEntry{
		UserID:          userID,
		BalanceBefore:   before,
		BalanceAfter:    after,
		ChangeAmount:    change,
		TransactionType: txType,
	}
	if ref != nil {
		// A zero RelatedID means the causing entity has no row yet; the
		// metadata still carries the breakdown
		if ref.RelatedID != 0 {
			entry.RelatedID = &ref.RelatedID
			rt := ref.RelatedType
			entry.RelatedType = &rt
		}
		entry.TransactionMetadata = ref.Metadata
	}

	if err := s.ledgerRepo.Record(ctx, entry); err != nil {
		return fmt.Errorf("failed to record ledger entry: %w", err)
	}

	event := events.BalanceChangedEvent{
		UserID:          userID,
		OldBalance:      before,
		NewBalance:      after,
		ChangeAmount:    change,
		TransactionType: txType,
	}
	if err := s.eventPublisher.Publish(event); err != nil {
		log.WithError(err).Error("Failed to publish balance change event")
	}

	return nil
}
