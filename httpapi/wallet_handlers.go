package httpapi

import (
	"net/http"

	"sidebet/domain/entities"
	"sidebet/domain/interfaces"

	"github.com/gin-gonic/gin"
)

type topUpRequest struct {
	Amount int64 `json:"amount" binding:"required"`
}

func (s *Server) getWallet(c *gin.Context) {
	var wallet *entities.Wallet
	err := s.withUnitOfWork(c.Request.Context(), func(uow interfaces.UnitOfWork) error {
		var err error
		wallet, err = servicesFor(uow).wallet.GetOrCreate(c.Request.Context(), userID(c))
		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, wallet)
}

func (s *Server) topUp(c *gin.Context) {
	var req topUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var wallet *entities.Wallet
	err := s.withUnitOfWork(c.Request.Context(), func(uow interfaces.UnitOfWork) error {
		var err error
		wallet, err = servicesFor(uow).wallet.TopUp(c.Request.Context(), userID(c), req.Amount)
		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, wallet)
}

func (s *Server) getWalletHistory(c *gin.Context) {
	limit := intQuery(c, "limit", 50)

	var entries []*entities.LedgerEntry
	err := s.withUnitOfWork(c.Request.Context(), func(uow interfaces.UnitOfWork) error {
		var err error
		entries, err = servicesFor(uow).wallet.History(c.Request.Context(), userID(c), limit)
		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}
