package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	commissiondomain "github.com/vendra/vendra/internal/commission/domain"
	ruledomain "github.com/vendra/vendra/internal/commissionrule/domain"
)

func (s *Server) CalculateOrderCommissions(c *gin.Context) {
	var req commissiondomain.OrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.commissionSvc.CalculateOrderCommissions(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (s *Server) PreviewCommissions(c *gin.Context) {
	var req commissiondomain.PreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.commissionSvc.PreviewCommissions(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) ListOrderCommissions(c *gin.Context) {
	entries, err := s.commissionSvc.ListOrderCommissions(c.Request.Context(), c.Param("order_id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": entries})
}

func (s *Server) CancelOrderCommission(c *gin.Context) {
	if err := s.commissionSvc.CancelOrderCommission(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "cancelled"})
}

type summaryQuery struct {
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
}

func (s *Server) GetVendorCommissionSummary(c *gin.Context) {
	var query summaryQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	start, err := parseDate(query.StartDate)
	if err != nil {
		AbortWithError(c, newValidationError("start_date", "invalid_start_date", "invalid start_date"))
		return
	}
	end, err := parseDate(query.EndDate)
	if err != nil {
		AbortWithError(c, newValidationError("end_date", "invalid_end_date", "invalid end_date"))
		return
	}

	summary, err := s.commissionSvc.GetVendorCommissionSummary(c.Request.Context(), c.Param("id"), start, end)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

func (s *Server) GetVendorPeriodSales(c *gin.Context) {
	period := ruledomain.TierPeriod(strings.TrimSpace(c.Query("period")))

	resp, err := s.commissionSvc.GetVendorPeriodSales(c.Request.Context(), c.Param("id"), period)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// parseDate accepts a date or an RFC3339 timestamp. Bare dates are read
// as midnight UTC.
func parseDate(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if t, err := time.Parse("2006-01-02", trimmed); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, trimmed)
}
