package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	advancedomain "github.com/smallbiznis/dairypro/internal/advance/domain"
)

func (s *Server) CreateAdvance(c *gin.Context) {
	var req advancedomain.CreateAdvanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.advanceSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListAdvancesByFarmer(c *gin.Context) {
	resp, err := s.advanceSvc.ListByFarmer(c.Request.Context(), strings.TrimSpace(c.Param("farmerId")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
