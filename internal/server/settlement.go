package server

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	settlementdomain "github.com/smallbiznis/dairypro/internal/settlement/domain"
)

func (s *Server) GetStatement(c *gin.Context) {
	statement, err := s.resolveStatement(c)
	if err != nil {
		s.obsMetrics.RecordStatement("error")
		AbortWithError(c, err)
		return
	}

	s.obsMetrics.RecordStatement("ok")
	c.JSON(http.StatusOK, gin.H{"data": statement})
}

func (s *Server) GetStatementPDF(c *gin.Context) {
	statement, err := s.resolveStatement(c)
	if err != nil {
		s.obsMetrics.RecordStatement("error")
		AbortWithError(c, err)
		return
	}
	s.obsMetrics.RecordStatement("ok")

	company, err := s.settingsSvc.Get(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	reader, err := s.pdfProvider.GenerateStatement(c.Request.Context(), company, *statement)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	payload, err := io.ReadAll(reader)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	filename := fmt.Sprintf("statement-%s-%s-%s.pdf",
		statement.Farmer.Code,
		statement.PeriodStart.Format(dateOnlyLayout),
		statement.PeriodEnd.Format(dateOnlyLayout),
	)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", payload)
}

func (s *Server) resolveStatement(c *gin.Context) (*settlementdomain.Statement, error) {
	farmerID, err := parseSnowflakeID(c.Query("farmerId"))
	if err != nil {
		return nil, newValidationError("farmerId", "invalid_farmer_id", "invalid farmer id")
	}

	from, err := parseRequiredTime(c.Query("startDate"), false)
	if err != nil {
		return nil, newValidationError("startDate", "invalid_start_date", "invalid start date")
	}

	to, err := parseRequiredTime(c.Query("endDate"), true)
	if err != nil {
		return nil, newValidationError("endDate", "invalid_end_date", "invalid end date")
	}

	return s.settlementSvc.Statement(c.Request.Context(), farmerID, from, to)
}
