package worker

import (
	"context"
	"time"

	"sidebet/domain/interfaces"
	"sidebet/domain/services"
	"sidebet/infrastructure/observability"

	log "github.com/sirupsen/logrus"
)

const (
	defaultSweepInterval = time.Minute
	sweepBatchSize       = 100
)

// ExpiryWorker periodically sweeps open wagers and group challenges past
// their expiry timestamps, refunding participants. Expiry is a first-class
// scheduled transition, not a read-path side effect.
type ExpiryWorker struct {
	uowFactory interfaces.UnitOfWorkFactory
	metrics    *observability.Metrics
	interval   time.Duration
}

// NewExpiryWorker creates a new expiry worker
func NewExpiryWorker(uowFactory interfaces.UnitOfWorkFactory, metrics *observability.Metrics) *ExpiryWorker {
	return &ExpiryWorker{
		uowFactory: uowFactory,
		metrics:    metrics,
		interval:   defaultSweepInterval,
	}
}

// Start runs the sweep loop until the context is cancelled
func (w *ExpiryWorker) Start(ctx context.Context) {
	go func() {
		log.WithField("interval", w.interval).Info("Expiry worker started")

		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Info("Expiry worker shutting down")
				return
			case <-ticker.C:
				w.sweep(ctx)
			}
		}
	}()
}

// sweep expires due wagers and challenges, each batch in its own transaction
func (w *ExpiryWorker) sweep(ctx context.Context) {
	now := time.Now()

	expiredWagers, err := w.sweepWagers(ctx, now)
	if err != nil {
		log.WithError(err).Error("Wager expiry sweep failed")
	}
	if expiredWagers > 0 {
		if w.metrics != nil {
			w.metrics.WagersExpired.Add(float64(expiredWagers))
		}
		log.WithField("count", expiredWagers).Info("Expired due wagers")
	}

	expiredChallenges, err := w.sweepChallenges(ctx, now)
	if err != nil {
		log.WithError(err).Error("Challenge expiry sweep failed")
	}
	if expiredChallenges > 0 {
		log.WithField("count", expiredChallenges).Info("Expired due challenges")
	}
}

func (w *ExpiryWorker) sweepWagers(ctx context.Context, now time.Time) (int, error) {
	uow := w.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, err
	}

	walletSvc := services.NewWalletService(uow.WalletRepository(), uow.LedgerRepository(), uow.EventBus())
	wagerSvc := services.NewWagerService(walletSvc, uow.WalletRepository(), uow.WagerRepository(), uow.EscrowRepository(), uow.EventBus())

	expired, err := wagerSvc.ExpireDue(ctx, now, sweepBatchSize)
	if err != nil {
		if rbErr := uow.Rollback(); rbErr != nil {
			log.WithError(rbErr).Error("Failed to rollback expiry transaction")
		}
		return 0, err
	}
	return expired, uow.Commit()
}

func (w *ExpiryWorker) sweepChallenges(ctx context.Context, now time.Time) (int, error) {
	uow := w.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, err
	}

	walletSvc := services.NewWalletService(uow.WalletRepository(), uow.LedgerRepository(), uow.EventBus())
	challengeSvc := services.NewGroupChallengeService(walletSvc, uow.WalletRepository(), uow.GroupChallengeRepository(), uow.EscrowRepository(), uow.EventBus())

	expired, err := challengeSvc.ExpireDue(ctx, now, sweepBatchSize)
	if err != nil {
		if rbErr := uow.Rollback(); rbErr != nil {
			log.WithError(rbErr).Error("Failed to rollback expiry transaction")
		}
		return 0, err
	}
	return expired, uow.Commit()
}
