package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/dairypro/internal/advance"
	advancedomain "github.com/smallbiznis/dairypro/internal/advance/domain"
	"github.com/smallbiznis/dairypro/internal/auth"
	authdomain "github.com/smallbiznis/dairypro/internal/auth/domain"
	"github.com/smallbiznis/dairypro/internal/auth/session"
	"github.com/smallbiznis/dairypro/internal/authorization"
	"github.com/smallbiznis/dairypro/internal/backup"
	backupdomain "github.com/smallbiznis/dairypro/internal/backup/domain"
	"github.com/smallbiznis/dairypro/internal/collection"
	collectiondomain "github.com/smallbiznis/dairypro/internal/collection/domain"
	"github.com/smallbiznis/dairypro/internal/config"
	"github.com/smallbiznis/dairypro/internal/dashboard"
	dashboarddomain "github.com/smallbiznis/dairypro/internal/dashboard/domain"
	"github.com/smallbiznis/dairypro/internal/expense"
	expensedomain "github.com/smallbiznis/dairypro/internal/expense/domain"
	"github.com/smallbiznis/dairypro/internal/farmer"
	farmerdomain "github.com/smallbiznis/dairypro/internal/farmer/domain"
	"github.com/smallbiznis/dairypro/internal/observability"
	obsmiddleware "github.com/smallbiznis/dairypro/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/dairypro/internal/observability/metrics"
	obstracing "github.com/smallbiznis/dairypro/internal/observability/tracing"
	"github.com/smallbiznis/dairypro/internal/product"
	productdomain "github.com/smallbiznis/dairypro/internal/product/domain"
	"github.com/smallbiznis/dairypro/internal/providers/pdf"
	"github.com/smallbiznis/dairypro/internal/sale"
	saledomain "github.com/smallbiznis/dairypro/internal/sale/domain"
	"github.com/smallbiznis/dairypro/internal/settings"
	settingsdomain "github.com/smallbiznis/dairypro/internal/settings/domain"
	"github.com/smallbiznis/dairypro/internal/settlement"
	settlementdomain "github.com/smallbiznis/dairypro/internal/settlement/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	authorization.Module,
	auth.Module,
	session.Module,
	farmer.Module,
	collection.Module,
	settlement.Module,
	advance.Module,
	product.Module,
	sale.Module,
	expense.Module,
	settings.Module,
	dashboard.Module,
	backup.Module,
	pdf.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr(),
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server listening", zap.String("addr", srv.Addr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
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

type Server struct {
	engine        *gin.Engine
	cfg           config.Config
	db            *gorm.DB
	genID         *snowflake.Node
	sessions      *session.Manager
	authsvc       authdomain.Service
	authzSvc      authorization.Service
	farmerSvc     farmerdomain.Service
	collectionSvc collectiondomain.Service
	settlementSvc settlementdomain.Service
	advanceSvc    advancedomain.Service
	productSvc    productdomain.Service
	saleSvc       saledomain.Service
	expenseSvc    expensedomain.Service
	settingsSvc   settingsdomain.Service
	dashboardSvc  dashboarddomain.Service
	backupSvc     backupdomain.Service
	pdfProvider   pdf.Provider
	obsMetrics    *obsmetrics.HTTPMetrics
}

type ServerParams struct {
	fx.In

	Gin           *gin.Engine
	Cfg           config.Config
	DB            *gorm.DB
	GenID         *snowflake.Node
	Sessions      *session.Manager
	Authsvc       authdomain.Service
	AuthzSvc      authorization.Service
	FarmerSvc     farmerdomain.Service
	CollectionSvc collectiondomain.Service
	SettlementSvc settlementdomain.Service
	AdvanceSvc    advancedomain.Service
	ProductSvc    productdomain.Service
	SaleSvc       saledomain.Service
	ExpenseSvc    expensedomain.Service
	SettingsSvc   settingsdomain.Service
	DashboardSvc  dashboarddomain.Service
	BackupSvc     backupdomain.Service
	PDFProvider   pdf.Provider
	ObsMetrics    *obsmetrics.HTTPMetrics `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:        p.Gin,
		cfg:           p.Cfg,
		db:            p.DB,
		genID:         p.GenID,
		sessions:      p.Sessions,
		authsvc:       p.Authsvc,
		authzSvc:      p.AuthzSvc,
		farmerSvc:     p.FarmerSvc,
		collectionSvc: p.CollectionSvc,
		settlementSvc: p.SettlementSvc,
		advanceSvc:    p.AdvanceSvc,
		productSvc:    p.ProductSvc,
		saleSvc:       p.SaleSvc,
		expenseSvc:    p.ExpenseSvc,
		settingsSvc:   p.SettingsSvc,
		dashboardSvc:  p.DashboardSvc,
		backupSvc:     p.BackupSvc,
		pdfProvider:   p.PDFProvider,
		obsMetrics:    p.ObsMetrics,
	}

	svc.registerAuthRoutes()
	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAuthRoutes() {
	auth := s.engine.Group("/auth")

	auth.POST("/login", s.Login)
	auth.POST("/logout", s.Logout)
	auth.GET("/me", s.AuthRequired(), s.Me)
	auth.POST("/change-password", s.AuthRequired(), s.ChangePassword)
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")
	api.Use(s.AuthRequired())

	// -------- Farmers --------
	api.GET("/farmers", s.RequireAccess(authorization.ObjectFarmer, authorization.ActionView), s.ListFarmers)
	api.POST("/farmers", s.RequireAccess(authorization.ObjectFarmer, authorization.ActionCreate), s.CreateFarmer)
	api.GET("/farmers/:id", s.RequireAccess(authorization.ObjectFarmer, authorization.ActionView), s.GetFarmerByID)
	api.PATCH("/farmers/:id", s.RequireAccess(authorization.ObjectFarmer, authorization.ActionUpdate), s.UpdateFarmer)
	api.DELETE("/farmers/:id", s.RequireAccess(authorization.ObjectFarmer, authorization.ActionDelete), s.DeleteFarmer)

	// -------- Milk collections --------
	api.GET("/collections", s.RequireAccess(authorization.ObjectCollection, authorization.ActionView), s.ListCollections)
	api.POST("/collections", s.RequireAccess(authorization.ObjectCollection, authorization.ActionCreate), s.CreateCollection)
	api.PATCH("/collections/:id", s.RequireAccess(authorization.ObjectCollection, authorization.ActionUpdate), s.UpdateCollection)
	api.DELETE("/collections/:id", s.RequireAccess(authorization.ObjectCollection, authorization.ActionDelete), s.DeleteCollection)

	// -------- Settlements --------
	api.GET("/settlements/statement", s.RequireAccess(authorization.ObjectSettlement, authorization.ActionView), s.GetStatement)
	api.GET("/settlements/statement/pdf", s.RequireAccess(authorization.ObjectSettlement, authorization.ActionView), s.GetStatementPDF)

	// -------- Advances --------
	api.POST("/advances", s.RequireAccess(authorization.ObjectAdvance, authorization.ActionCreate), s.CreateAdvance)
	api.GET("/advances/farmer/:farmerId", s.RequireAccess(authorization.ObjectAdvance, authorization.ActionView), s.ListAdvancesByFarmer)

	// -------- Products & stock --------
	api.GET("/products", s.RequireAccess(authorization.ObjectProduct, authorization.ActionView), s.ListProducts)
	api.POST("/products", s.RequireAccess(authorization.ObjectProduct, authorization.ActionCreate), s.CreateProduct)
	api.POST("/products/stock", s.RequireAccess(authorization.ObjectProduct, authorization.ActionUpdate), s.AddStock)
	api.GET("/products/history", s.RequireAccess(authorization.ObjectProduct, authorization.ActionView), s.StockHistory)
	api.PATCH("/products/:id", s.RequireAccess(authorization.ObjectProduct, authorization.ActionUpdate), s.UpdateProduct)
	api.DELETE("/products/:id", s.RequireAccess(authorization.ObjectProduct, authorization.ActionDelete), s.DeleteProduct)

	// -------- Sales --------
	api.GET("/sales", s.RequireAccess(authorization.ObjectSale, authorization.ActionView), s.ListSales)
	api.POST("/sales", s.RequireAccess(authorization.ObjectSale, authorization.ActionCreate), s.CreateSale)

	// -------- Expenses --------
	api.GET("/expenses", s.RequireAccess(authorization.ObjectExpense, authorization.ActionView), s.ListExpenses)
	api.POST("/expenses", s.RequireAccess(authorization.ObjectExpense, authorization.ActionCreate), s.CreateExpense)

	// -------- Dashboard --------
	api.GET("/dashboard/stats", s.RequireAccess(authorization.ObjectDashboard, authorization.ActionView), s.GetDashboardStats)
	api.GET("/dashboard/ledger", s.RequireAccess(authorization.ObjectDashboard, authorization.ActionView), s.GetLedger)
	api.GET("/dashboard/reports", s.RequireAccess(authorization.ObjectDashboard, authorization.ActionView), s.GetReports)

	// -------- Settings --------
	api.GET("/settings", s.RequireAccess(authorization.ObjectSettings, authorization.ActionView), s.GetSettings)
	api.PUT("/settings", s.RequireAccess(authorization.ObjectSettings, authorization.ActionUpdate), s.UpdateSettings)

	// -------- Backup --------
	api.GET("/backup", s.RequireAccess(authorization.ObjectBackup, authorization.ActionView), s.ExportBackup)

	// -------- Users --------
	api.POST("/users", s.RequireAccess(authorization.ObjectUser, authorization.ActionCreate), s.CreateUser)
}
