package server

import (
	"strings"

	"github.com/gin-gonic/gin"

	ratedomain "github.com/transpolabs/transpo/internal/ratecard/domain"
)

func (s *Server) CreateRateCard(c *gin.Context) {
	var req ratedomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	if req.Region == "" {
		req.Region = s.region
	}

	card, err := s.rateSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, card)
}

func (s *Server) ListRateCards(c *gin.Context) {
	region := strings.TrimSpace(c.Query("region"))
	if region == "" {
		region = s.region
	}

	cards, err := s.rateSvc.List(c.Request.Context(), region)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, cards)
}

func (s *Server) GetRateCard(c *gin.Context) {
	card, err := s.rateSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, card)
}

func (s *Server) UpdateRateCard(c *gin.Context) {
	var req ratedomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	req.ID = c.Param("id")

	card, err := s.rateSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, card)
}

func (s *Server) ActivateRateCard(c *gin.Context) {
	card, err := s.rateSvc.Activate(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, card)
}

func (s *Server) LockRateCard(c *gin.Context) {
	var body struct {
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	if strings.TrimSpace(body.Reason) == "" {
		AbortWithError(c, newValidationError("reason", "required", "a lock reason is required"))
		return
	}

	card, err := s.rateSvc.Lock(c.Request.Context(), c.Param("id"), body.Reason)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, card)
}
