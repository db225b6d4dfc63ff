package server

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	meterdomain "github.com/transpolabs/transpo/internal/meter/domain"
)

func (s *Server) StartMeter(c *gin.Context) {
	var req meterdomain.StartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	req.DriverID = driverIDFrom(c)

	resp, err := s.meterSvc.Start(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, resp)
}

func (s *Server) UpdateMeter(c *gin.Context) {
	var req meterdomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	req.MeterID = c.Param("id")
	req.DriverID = driverIDFrom(c)

	resp, err := s.meterSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, resp)
}

func (s *Server) StopMeter(c *gin.Context) {
	var req meterdomain.StopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	req.MeterID = c.Param("id")
	req.DriverID = driverIDFrom(c)

	resp, err := s.meterSvc.Stop(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, resp)
}

func (s *Server) GetMeter(c *gin.Context) {
	resp, err := s.meterSvc.Status(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, resp)
}

func (s *Server) GetLiveFare(c *gin.Context) {
	resp, err := s.meterSvc.LiveFare(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, resp)
}

func (s *Server) GetHistory(c *gin.Context) {
	limit := 0
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			AbortWithError(c, newValidationError("limit", "invalid_limit", "limit must be a non-negative integer"))
			return
		}
		limit = n
	}

	trips, err := s.meterSvc.History(c.Request.Context(), driverIDFrom(c), limit)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, trips)
}

// GetRates publishes the tariff pair currently in force, plus which period
// applies right now.
func (s *Server) GetRates(c *gin.Context) {
	tables, err := s.rateSvc.ActiveTables(c.Request.Context(), s.region)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	current := tables.Resolve(s.clock.Now())
	respondData(c, gin.H{
		"region":         s.region,
		"current_period": current.Period,
		"day":            tables.Day,
		"night":          tables.Night,
	})
}
