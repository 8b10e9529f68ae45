package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	recipedomain "github.com/smallbiznis/prodline/internal/recipe/domain"
)

func (s *Server) ListRecipes(c *gin.Context) {
	resp, err := s.recipeSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetRecipe(c *gin.Context) {
	name := strings.TrimSpace(c.Param("name"))
	resp, err := s.recipeSvc.Get(c.Request.Context(), name)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) SaveRecipe(c *gin.Context) {
	var req recipedomain.SaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.recipeSvc.Save(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteRecipe(c *gin.Context) {
	name := strings.TrimSpace(c.Param("name"))
	if err := s.recipeSvc.Delete(c.Request.Context(), name); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}
