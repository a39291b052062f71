package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	saledomain "github.com/smallbiznis/dairypro/internal/sale/domain"
)

func (s *Server) CreateSale(c *gin.Context) {
	var req saledomain.CreateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.saleSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListSales(c *gin.Context) {
	resp, err := s.saleSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
