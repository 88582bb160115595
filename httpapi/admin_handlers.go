package httpapi

import (
	"net/http"

	"sidebet/domain/interfaces"

	"github.com/gin-gonic/gin"
)

type mockResultsRequest struct {
	Limit int `json:"limit"`
}

func (s *Server) disputeEscrow(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	err := s.withUnitOfWork(c.Request.Context(), func(uow interfaces.UnitOfWork) error {
		return servicesFor(uow).settlement.DisputeEscrow(c.Request.Context(), id, userID(c))
	})
	if err != nil {
		respondError(c, err)
		return
	}

	if s.metrics != nil {
		s.metrics.EscrowDisputes.Inc()
	}
	c.JSON(http.StatusOK, gin.H{"status": "disputed"})
}

func (s *Server) generateMockResults(c *gin.Context) {
	var req mockResultsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Limit <= 0 {
		req.Limit = 10
	}

	var resolved int
	err := s.withUnitOfWork(c.Request.Context(), func(uow interfaces.UnitOfWork) error {
		var err error
		resolved, err = servicesFor(uow).settlement.GenerateMockResults(c.Request.Context(), req.Limit)
		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"resolved": resolved})
}
