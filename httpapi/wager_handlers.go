package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"sidebet/domain/entities"
	"sidebet/domain/interfaces"

	"github.com/gin-gonic/gin"
)

type createWagerRequest struct {
	Stake       int64   `json:"stake" binding:"required"`
	Selection   string  `json:"selection" binding:"required"`
	Odds        int     `json:"odds" binding:"required"`
	VigPercent  float64 `json:"vig_percent"`
	ExpiryHours int     `json:"expiry_hours" binding:"required"`
}

type resolveWagerRequest struct {
	Outcome string `json:"outcome" binding:"required"`
}

func (s *Server) createWager(c *gin.Context) {
	var req createWagerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var wager *entities.Wager
	err := s.withUnitOfWork(c.Request.Context(), func(uow interfaces.UnitOfWork) error {
		var err error
		wager, err = servicesFor(uow).wager.Create(
			c.Request.Context(),
			userID(c),
			req.Stake,
			req.Selection,
			req.Odds,
			req.VigPercent,
			time.Duration(req.ExpiryHours)*time.Hour,
		)
		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}

	if s.metrics != nil {
		s.metrics.WagersCreated.Inc()
	}
	c.JSON(http.StatusCreated, wager)
}

func (s *Server) getWager(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var wager *entities.Wager
	err := s.withUnitOfWork(c.Request.Context(), func(uow interfaces.UnitOfWork) error {
		var err error
		wager, err = servicesFor(uow).wager.GetByID(c.Request.Context(), id)
		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, wager)
}

func (s *Server) listActiveWagers(c *gin.Context) {
	var wagers []*entities.Wager
	err := s.withUnitOfWork(c.Request.Context(), func(uow interfaces.UnitOfWork) error {
		var err error
		wagers, err = servicesFor(uow).wager.GetActiveByUser(c.Request.Context(), userID(c))
		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"wagers": wagers})
}

func (s *Server) matchWager(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var wager *entities.Wager
	err := s.withUnitOfWork(c.Request.Context(), func(uow interfaces.UnitOfWork) error {
		var err error
		wager, err = servicesFor(uow).wager.Match(c.Request.Context(), id, userID(c))
		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}

	if s.metrics != nil {
		s.metrics.WagersMatched.Inc()
	}
	c.JSON(http.StatusOK, wager)
}

func (s *Server) cancelWager(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var wager *entities.Wager
	err := s.withUnitOfWork(c.Request.Context(), func(uow interfaces.UnitOfWork) error {
		var err error
		wager, err = servicesFor(uow).wager.Cancel(c.Request.Context(), id, userID(c))
		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, wager)
}

func (s *Server) resolveWager(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req resolveWagerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var wager *entities.Wager
	err := s.withUnitOfWork(c.Request.Context(), func(uow interfaces.UnitOfWork) error {
		var err error
		wager, err = servicesFor(uow).settlement.Resolve(
			c.Request.Context(),
			id,
			entities.WagerOutcome(req.Outcome),
			userID(c),
		)
		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}

	if s.metrics != nil {
		s.metrics.WagersResolved.WithLabelValues(string(wager.Outcome)).Inc()
	}
	c.JSON(http.StatusOK, wager)
}

// pathID parses the :id path parameter, responding with 400 on garbage
func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

// intQuery parses an integer query parameter with a default
func intQuery(c *gin.Context, name string, def int) int {
	raw := c.Query(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return def
	}
	return v
}
