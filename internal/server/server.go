package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/smallbiznis/prodline/internal/config"
	"github.com/smallbiznis/prodline/internal/handoff"
	handoffdomain "github.com/smallbiznis/prodline/internal/handoff/domain"
	"github.com/smallbiznis/prodline/internal/material"
	materialdomain "github.com/smallbiznis/prodline/internal/material/domain"
	"github.com/smallbiznis/prodline/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/prodline/internal/observability/metrics"
	obstracing "github.com/smallbiznis/prodline/internal/observability/tracing"
	"github.com/smallbiznis/prodline/internal/production"
	productiondomain "github.com/smallbiznis/prodline/internal/production/domain"
	"github.com/smallbiznis/prodline/internal/qa"
	qadomain "github.com/smallbiznis/prodline/internal/qa/domain"
	"github.com/smallbiznis/prodline/internal/recipe"
	recipedomain "github.com/smallbiznis/prodline/internal/recipe/domain"
	"github.com/smallbiznis/prodline/internal/warehouse"
	warehousedomain "github.com/smallbiznis/prodline/internal/warehouse/domain"
)

type Server struct {
	engine *gin.Engine
	cfg    config.Config
	db     *gorm.DB

	materialSvc   materialdomain.Service
	recipeSvc     recipedomain.Service
	productionSvc productiondomain.Service
	qaSvc         qadomain.Service
	warehouseSvc  warehousedomain.Service
	handoffSvc    handoffdomain.Service

	obsMetrics *obsmetrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin *gin.Engine
	Cfg config.Config
	DB  *gorm.DB

	MaterialSvc   materialdomain.Service
	RecipeSvc     recipedomain.Service
	ProductionSvc productiondomain.Service
	QASvc         qadomain.Service
	WarehouseSvc  warehousedomain.Service
	HandoffSvc    handoffdomain.Service

	ObsMetrics *obsmetrics.Metrics `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:        p.Gin,
		cfg:           p.Cfg,
		db:            p.DB,
		materialSvc:   p.MaterialSvc,
		recipeSvc:     p.RecipeSvc,
		productionSvc: p.ProductionSvc,
		qaSvc:         p.QASvc,
		warehouseSvc:  p.WarehouseSvc,
		handoffSvc:    p.HandoffSvc,
		obsMetrics:    p.ObsMetrics,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	// -------- Materials --------
	api.GET("/materials", s.ListMaterials)
	api.POST("/materials", s.CreateMaterial)
	api.GET("/materials/low-stock", s.ListLowStockMaterials)
	api.GET("/materials/export.csv", s.ExportMaterialsCSV)
	api.GET("/materials/:id", s.GetMaterial)
	api.PATCH("/materials/:id", s.UpdateMaterial)
	api.DELETE("/materials/:id", s.DeleteMaterial)

	// -------- Recipes --------
	api.GET("/recipes", s.ListRecipes)
	api.POST("/recipes", s.SaveRecipe)
	api.GET("/recipes/:name", s.GetRecipe)
	api.DELETE("/recipes/:name", s.DeleteRecipe)

	// -------- Production orders --------
	api.GET("/orders", s.ListOrders)
	api.POST("/orders", s.CreateOrder)
	api.POST("/orders/:orderNo/status", s.UpdateOrderStatus)
	api.POST("/orders/:orderNo/lots", s.CreateLot)
	api.POST("/orders/:orderNo/material-use", s.RecordMaterialUse)
	api.GET("/orders/:orderNo/requirements", s.OrderRequirements)
	api.GET("/lots", s.ListLots)

	// -------- QA --------
	api.GET("/qa/:target/lots", s.ListQALots)
	api.GET("/qa/:target/history", s.ListQAHistory)
	api.POST("/qa/:target/judgments", s.JudgeQALot)
	api.DELETE("/qa/:target/history", s.ClearQAHistory)

	// -------- Warehouse --------
	api.GET("/warehouse/stock", s.ListStock)
	api.POST("/warehouse/stock", s.CreateStock)
	api.GET("/warehouse/movements", s.ListMovements)
	api.POST("/warehouse/movements", s.RecordMovement)
	api.POST("/warehouse/withdrawals", s.WithdrawStock)
	api.GET("/warehouse/allocations", s.ListAllocations)
	api.POST("/warehouse/allocations", s.AllocateMaterials)
	api.GET("/warehouse/purchase-requests", s.ListPurchaseRequests)

	// -------- Handoff --------
	api.POST("/handoff", s.IssueHandoff)
	api.POST("/handoff/:token/consume", s.ConsumeHandoff)
}

func NewEngine(cfg config.Config, m *obsmetrics.Metrics) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.GinMiddleware(logger.MiddlewareConfig{
		Debug: !cfg.IsProduction(),
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(m.GinMiddleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(m.Handler()))

	return r
}

func registerGin(cfg config.Config, m *obsmetrics.Metrics) *gin.Engine {
	return NewEngine(cfg, m)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

var Module = fx.Module("http.server",
	material.Module,
	recipe.Module,
	production.Module,
	qa.Module,
	warehouse.Module,
	handoff.Module,
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)
