package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	ruledomain "github.com/vendra/vendra/internal/commissionrule/domain"
)

func (s *Server) ListCommissionRules(c *gin.Context) {
	rules, err := s.ruleSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": rules})
}

func (s *Server) CreateCommissionRule(c *gin.Context) {
	var req ruledomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	rule, err := s.ruleSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, rule)
}

func (s *Server) GetCommissionRuleByID(c *gin.Context) {
	rule, err := s.ruleSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, rule)
}

func (s *Server) UpdateCommissionRule(c *gin.Context) {
	var req ruledomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	rule, err := s.ruleSvc.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, rule)
}

func (s *Server) DeleteCommissionRule(c *gin.Context) {
	result, err := s.ruleSvc.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
