package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type listAuditLogsQuery struct {
	TargetType string `form:"target_type"`
	Limit      int    `form:"limit"`
}

func (s *Server) ListAuditLogs(c *gin.Context) {
	var query listAuditLogsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	logs, err := s.auditSvc.List(c.Request.Context(), strings.TrimSpace(query.TargetType), query.Limit)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": logs})
}
