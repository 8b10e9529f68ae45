package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	productiondomain "github.com/smallbiznis/prodline/internal/production/domain"
)

func (s *Server) ListOrders(c *gin.Context) {
	resp, err := s.productionSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CreateOrder(c *gin.Context) {
	var req productiondomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.productionSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type updateOrderStatusRequest struct {
	Status string `json:"status"`
}

func (s *Server) UpdateOrderStatus(c *gin.Context) {
	orderNo := strings.TrimSpace(c.Param("orderNo"))

	var req updateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.productionSvc.UpdateStatus(c.Request.Context(), orderNo, strings.TrimSpace(req.Status))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CreateLot(c *gin.Context) {
	orderNo := strings.TrimSpace(c.Param("orderNo"))

	var req productiondomain.CreateLotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.productionSvc.CreateLot(c.Request.Context(), orderNo, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListLots(c *gin.Context) {
	resp, err := s.productionSvc.Lots(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type recordMaterialUseRequest struct {
	Rows []productiondomain.MaterialUseRow `json:"rows"`
}

func (s *Server) RecordMaterialUse(c *gin.Context) {
	orderNo := strings.TrimSpace(c.Param("orderNo"))

	var req recordMaterialUseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.productionSvc.RecordMaterialUse(c.Request.Context(), orderNo, req.Rows)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) OrderRequirements(c *gin.Context) {
	orderNo := strings.TrimSpace(c.Param("orderNo"))
	resp, err := s.productionSvc.Requirements(c.Request.Context(), orderNo)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
