package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	materialdomain "github.com/smallbiznis/prodline/internal/material/domain"
)

func (s *Server) ListMaterials(c *gin.Context) {
	var query struct {
		Q        string `form:"q"`
		Category string `form:"category"`
		SortBy   string `form:"sort_by"`
		OrderBy  string `form:"order_by"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.materialSvc.List(c.Request.Context(), materialdomain.ListRequest{
		Query:    strings.TrimSpace(query.Q),
		Category: strings.TrimSpace(query.Category),
		SortBy:   strings.TrimSpace(query.SortBy),
		OrderBy:  strings.TrimSpace(query.OrderBy),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetMaterial(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.materialSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CreateMaterial(c *gin.Context) {
	var req materialdomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.materialSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateMaterial(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	var req materialdomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.materialSvc.Update(c.Request.Context(), id, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteMaterial(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if err := s.materialSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}

func (s *Server) ListLowStockMaterials(c *gin.Context) {
	resp, err := s.materialSvc.LowStock(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ExportMaterialsCSV(c *gin.Context) {
	var query struct {
		Q        string `form:"q"`
		Category string `form:"category"`
		SortBy   string `form:"sort_by"`
		OrderBy  string `form:"order_by"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	body, err := s.materialSvc.ExportCSV(c.Request.Context(), materialdomain.ListRequest{
		Query:    strings.TrimSpace(query.Q),
		Category: strings.TrimSpace(query.Category),
		SortBy:   strings.TrimSpace(query.SortBy),
		OrderBy:  strings.TrimSpace(query.OrderBy),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "materials.csv"))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", body)
}
