package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/transpolabs/transpo/internal/driverauth"
	"github.com/transpolabs/transpo/internal/gps"
	"github.com/transpolabs/transpo/internal/maps"
	meterdomain "github.com/transpolabs/transpo/internal/meter/domain"
	ratedomain "github.com/transpolabs/transpo/internal/ratecard/domain"
)

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrInvalidRequest = errors.New("invalid_request")
)

type apiError struct {
	Code    string `json:"code"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (e *apiError) Error() string { return e.Message }

func newValidationError(field, code, message string) error {
	return &apiError{Code: code, Field: field, Message: message}
}

// AbortWithError maps domain sentinels onto HTTP statuses and writes the
// error envelope. Unknown errors become a 500 without leaking internals.
func AbortWithError(c *gin.Context, err error) {
	var ae *apiError
	if errors.As(err, &ae) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": ae})
		return
	}

	status := http.StatusInternalServerError
	code := "internal_error"

	switch {
	case errors.Is(err, ErrUnauthorized), errors.Is(err, driverauth.ErrUnauthorized):
		status, code = http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, ErrForbidden), errors.Is(err, meterdomain.ErrNotOwner):
		status, code = http.StatusForbidden, err.Error()
	case errors.Is(err, meterdomain.ErrMeterNotFound),
		errors.Is(err, ratedomain.ErrRateCardNotFound):
		status, code = http.StatusNotFound, err.Error()
	case errors.Is(err, meterdomain.ErrAlreadyStarted),
		errors.Is(err, meterdomain.ErrInvalidState),
		errors.Is(err, meterdomain.ErrAlreadyFinalized),
		errors.Is(err, ratedomain.ErrRateCardLocked),
		errors.Is(err, ratedomain.ErrInvalidStatus):
		status, code = http.StatusConflict, err.Error()
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, meterdomain.ErrInvalidTip),
		errors.Is(err, ratedomain.ErrInvalidRate),
		errors.Is(err, gps.ErrMalformedFix):
		status, code = http.StatusBadRequest, err.Error()
	case errors.Is(err, maps.ErrNoRoute):
		status, code = http.StatusUnprocessableEntity, err.Error()
	}

	if status == http.StatusInternalServerError {
		c.AbortWithStatusJSON(status, gin.H{"error": gin.H{"code": code, "message": "internal error"}})
		return
	}
	c.AbortWithStatusJSON(status, gin.H{"error": gin.H{"code": code, "message": err.Error()}})
}
