package httpapi

import (
	"net/http"
	"time"

	"sidebet/domain/entities"
	"sidebet/domain/interfaces"

	"github.com/gin-gonic/gin"
)

type createChallengeRequest struct {
	Title           string `json:"title" binding:"required"`
	Description     string `json:"description"`
	EntryFee        int64  `json:"entry_fee" binding:"required"`
	TargetAmount    int64  `json:"target_amount" binding:"required"`
	MinParticipants int    `json:"min_participants" binding:"required"`
	MaxParticipants int    `json:"max_participants"`
	ExpiryHours     int    `json:"expiry_hours" binding:"required"`
}

type resolveChallengeRequest struct {
	WinnerID string `json:"winner_id" binding:"required"`
}

func (s *Server) createChallenge(c *gin.Context) {
	var req createChallengeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var challenge *entities.GroupChallenge
	err := s.withUnitOfWork(c.Request.Context(), func(uow interfaces.UnitOfWork) error {
		var err error
		challenge, err = servicesFor(uow).challenge.Create(
			c.Request.Context(),
			userID(c),
			req.Title,
			req.Description,
			req.EntryFee,
			req.TargetAmount,
			req.MinParticipants,
			req.MaxParticipants,
			time.Duration(req.ExpiryHours)*time.Hour,
		)
		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, challenge)
}

func (s *Server) getChallenge(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var challenge *entities.GroupChallenge
	err := s.withUnitOfWork(c.Request.Context(), func(uow interfaces.UnitOfWork) error {
		var err error
		challenge, err = servicesFor(uow).challenge.GetByID(c.Request.Context(), id)
		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, challenge)
}

func (s *Server) contributeToChallenge(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var challenge *entities.GroupChallenge
	err := s.withUnitOfWork(c.Request.Context(), func(uow interfaces.UnitOfWork) error {
		var err error
		challenge, err = servicesFor(uow).challenge.Contribute(c.Request.Context(), id, userID(c))
		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}

	if s.metrics != nil && challenge.IsFunded() {
		s.metrics.ChallengesFunded.Inc()
	}
	c.JSON(http.StatusOK, challenge)
}

func (s *Server) resolveChallenge(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req resolveChallengeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var challenge *entities.GroupChallenge
	err := s.withUnitOfWork(c.Request.Context(), func(uow interfaces.UnitOfWork) error {
		var err error
		challenge, err = servicesFor(uow).challenge.Resolve(c.Request.Context(), id, req.WinnerID, userID(c))
		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, challenge)
}
