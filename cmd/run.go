package cmd

import (
	"context"
	"fmt"
	"time"

	"sidebet/config"
	"sidebet/database"
	"sidebet/domain/events"
	"sidebet/domain/interfaces"
	"sidebet/httpapi"
	"sidebet/infrastructure"
	"sidebet/infrastructure/observability"
	"sidebet/repository"
	"sidebet/worker"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	cfg := config.Get()

	log.WithField("environment", cfg.Environment).Info("Starting sidebet service")

	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Info("Database connection established")

	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)

	// NATS is the event backbone; without it events are dropped, not queued
	natsClient := infrastructure.NewNATSClient(cfg.NATSServers)
	var eventPublisher interfaces.EventPublisher
	if err := natsClient.Connect(ctx); err != nil {
		log.WithError(err).Warn("NATS unavailable, domain events will not be published")
		eventPublisher = infrastructure.NewNoopEventPublisher()
	} else {
		natsPublisher := infrastructure.NewNATSEventPublisher(natsClient, infrastructure.NewEventSubjectMapper())
		if err := natsPublisher.EnsureDomainEventStream(); err != nil {
			return fmt.Errorf("failed to ensure domain event stream: %w", err)
		}
		registerMetricHandlers(natsPublisher, metrics)
		eventPublisher = natsPublisher
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	quoteCache := infrastructure.NewQuoteCache(rdb, 30*time.Second)

	uowFactory := repository.NewUnitOfWorkFactory(db, func() interfaces.TransactionalEventPublisher {
		return infrastructure.NewNATSTransactionalPublisher(eventPublisher)
	})

	metricsServer := observability.NewMetricsServer(cfg.MetricsPort, registry, map[string]observability.Pinger{
		"postgres": db,
		"redis":    quoteCache,
	})
	metricsServer.Start()

	expiryWorker := worker.NewExpiryWorker(uowFactory, metrics)
	expiryWorker.Start(ctx)

	apiServer := httpapi.NewServer(uowFactory, metrics, quoteCache)
	apiServer.Start()

	log.WithField("addr", cfg.HTTPAddr).Info("Service is running")
	<-ctx.Done()

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Error shutting down HTTP server")
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Error shutting down metrics server")
	}
	if err := natsClient.Close(); err != nil {
		log.WithError(err).Error("Error closing NATS connection")
	}
	if err := rdb.Close(); err != nil {
		log.WithError(err).Error("Error closing Redis connection")
	}
	db.Close()

	log.Info("Shutdown completed")
	return nil
}

// registerMetricHandlers feeds settlement counters from domain events so the
// metrics stay correct no matter which code path moved the money
func registerMetricHandlers(publisher *infrastructure.NATSEventPublisher, metrics *observability.Metrics) {
	publisher.RegisterLocalHandler(events.EventTypeWagerResolved, func(_ context.Context, event events.Event) error {
		resolved, ok := event.(events.WagerResolvedEvent)
		if !ok {
			return fmt.Errorf("unexpected event type %T for %s", event, events.EventTypeWagerResolved)
		}
		metrics.SettlementPayouts.Add(float64(resolved.Payout))
		return nil
	})

	publisher.RegisterLocalHandler(events.EventTypeBalanceChanged, func(_ context.Context, event events.Event) error {
		changed, ok := event.(events.BalanceChangedEvent)
		if !ok {
			return fmt.Errorf("unexpected event type %T for %s", event, events.EventTypeBalanceChanged)
		}
		// Every balance change writes exactly one ledger entry
		metrics.LedgerEntries.WithLabelValues(string(changed.TransactionType)).Inc()
		// The only ledgered debit on wager placement or pool entry is the
		// fee portion; the stake itself moves through escrow
		if changed.TransactionType.IsStakeType() && changed.ChangeAmount < 0 {
			metrics.FeesCollected.Add(float64(-changed.ChangeAmount))
		}
		return nil
	})
}
