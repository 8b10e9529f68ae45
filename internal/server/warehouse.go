package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	warehousedomain "github.com/smallbiznis/prodline/internal/warehouse/domain"
)

func (s *Server) ListStock(c *gin.Context) {
	resp, err := s.warehouseSvc.ListStock(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CreateStock(c *gin.Context) {
	var req warehousedomain.CreateStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.warehouseSvc.CreateStock(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListMovements(c *gin.Context) {
	var query struct {
		Direction string `form:"direction"`
		Lot       string `form:"lot"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.warehouseSvc.Movements(c.Request.Context(), warehousedomain.MovementFilter{
		Direction: strings.TrimSpace(query.Direction),
		LotNo:     strings.TrimSpace(query.Lot),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) RecordMovement(c *gin.Context) {
	var req warehousedomain.MovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.warehouseSvc.RecordMovement(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) WithdrawStock(c *gin.Context) {
	var req warehousedomain.WithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.warehouseSvc.Withdraw(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) AllocateMaterials(c *gin.Context) {
	var req warehousedomain.AllocateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.warehouseSvc.Allocate(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListAllocations(c *gin.Context) {
	resp, err := s.warehouseSvc.ListAllocations(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListPurchaseRequests(c *gin.Context) {
	resp, err := s.warehouseSvc.ListPurchaseRequests(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
