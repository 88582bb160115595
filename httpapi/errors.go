package httpapi

import (
	"errors"
	"net/http"

	"sidebet/domain/domainerrors"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// respondError maps domain errors to HTTP statuses. Anything that is not a
// domain error is an internal failure and gets a generic message.
func respondError(c *gin.Context, err error) {
	var de *domainerrors.DomainError
	if !errors.As(err, &de) {
		log.WithError(err).Error("Request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	var status int
	switch de.Code {
	case domainerrors.CodeValidation:
		status = http.StatusBadRequest
	case domainerrors.CodeNotFound:
		status = http.StatusNotFound
	case domainerrors.CodeInvalidState:
		status = http.StatusConflict
	case domainerrors.CodeInsufficientFunds:
		status = http.StatusPaymentRequired
	case domainerrors.CodePartialCommitFailure:
		log.WithError(err).Error("Transaction commit failed, writes may be partial")
		status = http.StatusInternalServerError
	default:
		log.WithError(err).Error("Request failed")
		status = http.StatusInternalServerError
	}

	c.JSON(status, gin.H{"error": de.UserMessage, "code": de.Code})
}
