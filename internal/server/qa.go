package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	qadomain "github.com/smallbiznis/prodline/internal/qa/domain"
)

func (s *Server) ListQALots(c *gin.Context) {
	target := strings.TrimSpace(c.Param("target"))

	var query struct {
		Tab string `form:"tab"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	tab := strings.TrimSpace(query.Tab)
	if tab == "" {
		tab = qadomain.TabNew
	}

	resp, err := s.qaSvc.Lots(c.Request.Context(), target, tab)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListQAHistory(c *gin.Context) {
	target := strings.TrimSpace(c.Param("target"))

	var query struct {
		Lot string `form:"lot"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.qaSvc.History(c.Request.Context(), target, strings.TrimSpace(query.Lot))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) JudgeQALot(c *gin.Context) {
	target := strings.TrimSpace(c.Param("target"))

	var req qadomain.JudgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.qaSvc.Judge(c.Request.Context(), target, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ClearQAHistory(c *gin.Context) {
	target := strings.TrimSpace(c.Param("target"))
	if err := s.qaSvc.Clear(c.Request.Context(), target); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"cleared": true}})
}
