package server

import (
	"github.com/gin-gonic/gin"

	"github.com/transpolabs/transpo/internal/estimate"
)

func (s *Server) EstimateFare(c *gin.Context) {
	var req estimate.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	if req.FromLat == 0 && req.FromLng == 0 {
		AbortWithError(c, newValidationError("from_lat", "required", "pickup coordinates are required"))
		return
	}
	if req.ToLat == 0 && req.ToLng == 0 {
		AbortWithError(c, newValidationError("to_lat", "required", "dropoff coordinates are required"))
		return
	}

	est, err := s.estimateSvc.Estimate(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, est)
}
