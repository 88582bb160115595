package httpapi

import (
	"net/http"
	"time"

	"sidebet/config"
	"sidebet/domain/entities"

	"github.com/gin-gonic/gin"
)

type seedQuoteRequest struct {
	MarketID string `json:"market_id" binding:"required"`
	HomeTeam string `json:"home_team"`
	AwayTeam string `json:"away_team"`
	Odds     int    `json:"odds" binding:"required"`
	Source   string `json:"source"`
}

// getMarketQuote returns the cached reference price for a market. The cache
// is fed by the odds feed ingester; a miss just means no recent quote.
func (s *Server) getMarketQuote(c *gin.Context) {
	if s.quotes == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "quote cache is not available"})
		return
	}

	quote, found, err := s.quotes.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "no quote available for market"})
		return
	}
	c.JSON(http.StatusOK, quote)
}

// seedMarketQuote injects a quote directly into the cache. Simulation only;
// production quotes arrive through the feed ingester.
func (s *Server) seedMarketQuote(c *gin.Context) {
	if !config.Get().SimulationMode {
		c.JSON(http.StatusForbidden, gin.H{"error": "quote seeding is only available in simulation mode"})
		return
	}
	if s.quotes == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "quote cache is not available"})
		return
	}

	var req seedQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	quote := &entities.MarketQuote{
		MarketID: req.MarketID,
		HomeTeam: req.HomeTeam,
		AwayTeam: req.AwayTeam,
		Odds:     req.Odds,
		QuotedAt: time.Now(),
		Source:   req.Source,
	}
	if err := s.quotes.Set(c.Request.Context(), req.MarketID, quote); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, quote)
}
