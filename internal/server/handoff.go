package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	handoffdomain "github.com/smallbiznis/prodline/internal/handoff/domain"
)

func (s *Server) IssueHandoff(c *gin.Context) {
	var req handoffdomain.IssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	token, err := s.handoffSvc.Issue(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"token": token}})
}

func (s *Server) ConsumeHandoff(c *gin.Context) {
	token := strings.TrimSpace(c.Param("token"))
	resp, err := s.handoffSvc.Consume(c.Request.Context(), token)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
