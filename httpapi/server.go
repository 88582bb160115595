package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"sidebet/config"
	"sidebet/domain/domainerrors"
	"sidebet/domain/entities"
	"sidebet/domain/interfaces"
	"sidebet/infrastructure/observability"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// QuoteCache provides reference prices for wager creation
type QuoteCache interface {
	Get(ctx context.Context, marketID string) (*entities.MarketQuote, bool, error)
	Set(ctx context.Context, marketID string, quote *entities.MarketQuote) error
}

// Server exposes the betting core over HTTP. Authentication happens at the
// gateway; this service trusts the X-User-ID header it forwards.
type Server struct {
	engine     *gin.Engine
	srv        *http.Server
	uowFactory interfaces.UnitOfWorkFactory
	metrics    *observability.Metrics
	quotes     QuoteCache
}

// NewServer creates the HTTP server with all routes registered
func NewServer(uowFactory interfaces.UnitOfWorkFactory, metrics *observability.Metrics, quotes QuoteCache) *Server {
	cfg := config.Get()
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestLogger())

	s := &Server{
		engine:     engine,
		uowFactory: uowFactory,
		metrics:    metrics,
		quotes:     quotes,
		srv: &http.Server{
			Addr:    cfg.HTTPAddr,
			Handler: engine,
		},
	}

	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	api := s.engine.Group("/api/v1")
	api.Use(requireUser())

	api.GET("/wallet", s.getWallet)
	api.POST("/wallet/topup", s.topUp)
	api.GET("/wallet/history", s.getWalletHistory)

	api.POST("/wagers", s.createWager)
	api.GET("/wagers/:id", s.getWager)
	api.GET("/wagers", s.listActiveWagers)
	api.POST("/wagers/:id/match", s.matchWager)
	api.POST("/wagers/:id/cancel", s.cancelWager)
	api.POST("/wagers/:id/resolve", s.resolveWager)

	api.POST("/challenges", s.createChallenge)
	api.GET("/challenges/:id", s.getChallenge)
	api.POST("/challenges/:id/contribute", s.contributeToChallenge)
	api.POST("/challenges/:id/resolve", s.resolveChallenge)

	api.GET("/markets/:id/quote", s.getMarketQuote)

	admin := api.Group("/admin")
	admin.POST("/escrows/:id/dispute", s.disputeEscrow)
	admin.POST("/simulation/mock-results", s.generateMockResults)
	admin.POST("/simulation/quotes", s.seedMarketQuote)
}

// Start serves until Shutdown is called
func (s *Server) Start() {
	go func() {
		log.WithField("addr", s.srv.Addr).Info("HTTP server listening")
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("HTTP server failed")
		}
	}()
}

// Shutdown stops the HTTP server gracefully
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// withUnitOfWork runs fn inside a transaction: all repository writes commit
// together and pending events flush only after commit
func (s *Server) withUnitOfWork(ctx context.Context, fn func(uow interfaces.UnitOfWork) error) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	if err := fn(uow); err != nil {
		if rbErr := uow.Rollback(); rbErr != nil {
			log.WithError(rbErr).Error("Failed to rollback transaction")
		}
		return err
	}
	if err := uow.Commit(); err != nil {
		// A failed commit may have landed some of the writes; flag it for
		// reconciliation instead of reporting a generic failure
		return domainerrors.NewPartialCommit("transaction commit", err)
	}
	return nil
}

// userID returns the authenticated user from the request context
func userID(c *gin.Context) string {
	return c.GetString(ctxUserKey)
}

const ctxUserKey = "userID"

// requireUser rejects requests without the gateway-forwarded user header
func requireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := strings.TrimSpace(c.GetHeader("X-User-ID"))
		if uid == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing X-User-ID header"})
			return
		}
		c.Set(ctxUserKey, uid)
		c.Next()
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.WithFields(log.Fields{
			"method":   c.Request.Method,
			"path":     c.FullPath(),
			"status":   c.Writer.Status(),
			"duration": time.Since(start),
		}).Info("Request handled")
	}
}
