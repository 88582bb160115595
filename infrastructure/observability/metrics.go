package observability

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

// Metrics holds the Prometheus instruments for the betting core
type Metrics struct {
	WagersCreated     prometheus.Counter
	WagersMatched     prometheus.Counter
	WagersResolved    *prometheus.CounterVec
	WagersExpired     prometheus.Counter
	SettlementPayouts prometheus.Counter
	FeesCollected     prometheus.Counter
	EscrowDisputes    prometheus.Counter
	ChallengesFunded  prometheus.Counter
	LedgerEntries     *prometheus.CounterVec
}

// NewMetrics registers the betting instruments with the given registerer
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		WagersCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "sidebet_wagers_created_total",
			Help: "Number of wagers opened and funded.",
		}),
		WagersMatched: factory.NewCounter(prometheus.CounterOpts{
			Name: "sidebet_wagers_matched_total",
			Help: "Number of wagers accepted by an opponent.",
		}),
		WagersResolved: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sidebet_wagers_resolved_total",
			Help: "Number of wagers settled, by outcome.",
		}, []string{"outcome"}),
		WagersExpired: factory.NewCounter(prometheus.CounterOpts{
			Name: "sidebet_wagers_expired_total",
			Help: "Number of open wagers expired by the sweep.",
		}),
		SettlementPayouts: factory.NewCounter(prometheus.CounterOpts{
			Name: "sidebet_settlement_payout_cents_total",
			Help: "Total cents credited to winners at settlement.",
		}),
		FeesCollected: factory.NewCounter(prometheus.CounterOpts{
			Name: "sidebet_fees_collected_cents_total",
			Help: "Total cents of platform and escrow fees realized.",
		}),
		EscrowDisputes: factory.NewCounter(prometheus.CounterOpts{
			Name: "sidebet_escrow_disputes_total",
			Help: "Number of escrow records placed under dispute.",
		}),
		ChallengesFunded: factory.NewCounter(prometheus.CounterOpts{
			Name: "sidebet_challenges_funded_total",
			Help: "Number of group challenges that reached their target.",
		}),
		LedgerEntries: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sidebet_ledger_entries_total",
			Help: "Number of ledger entries written, by transaction type.",
		}, []string{"transaction_type"}),
	}
}

// Pinger is anything whose liveness the health endpoint should verify
type Pinger interface {
	Ping(ctx context.Context) error
}

// MetricsServer serves /metrics and /healthz on its own port
type MetricsServer struct {
	srv *http.Server
}

// NewMetricsServer builds the metrics/health server. The health check fails
// if any of the given dependencies cannot be pinged.
func NewMetricsServer(port string, gatherer prometheus.Gatherer, deps map[string]Pinger) *MetricsServer {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		for name, dep := range deps {
			if err := dep.Ping(ctx); err != nil {
				log.WithFields(log.Fields{
					"dependency": name,
					"error":      err,
				}).Warn("Health check failed")
				http.Error(w, name, http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return &MetricsServer{
		srv: &http.Server{
			Addr:    fmt.Sprintf(":%s", port),
			Handler: mux,
		},
	}
}

// Start serves until Shutdown is called
func (m *MetricsServer) Start() {
	go func() {
		log.WithField("addr", m.srv.Addr).Info("Metrics server listening")
		if err := m.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("Metrics server failed")
		}
	}()
}

// Shutdown stops the metrics server
func (m *MetricsServer) Shutdown(ctx context.Context) error {
	return m.srv.Shutdown(ctx)
}
