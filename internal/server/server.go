package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	auditdomain "github.com/vendra/vendra/internal/audit/domain"
	catalogdomain "github.com/vendra/vendra/internal/catalog/domain"
	commissiondomain "github.com/vendra/vendra/internal/commission/domain"
	ruledomain "github.com/vendra/vendra/internal/commissionrule/domain"
	"github.com/vendra/vendra/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(cfg config.Config) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func run(lc fx.Lifecycle, cfg config.Config, log *zap.Logger, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
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
	ruleSvc       ruledomain.Service
	commissionSvc commissiondomain.Service
	catalogSvc    catalogdomain.Service
	auditSvc      auditdomain.Service
}

type ServerParams struct {
	fx.In

	Gin           *gin.Engine
	RuleSvc       ruledomain.Service
	CommissionSvc commissiondomain.Service
	CatalogSvc    catalogdomain.Service
	AuditSvc      auditdomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:        p.Gin,
		ruleSvc:       p.RuleSvc,
		commissionSvc: p.CommissionSvc,
		catalogSvc:    p.CatalogSvc,
		auditSvc:      p.AuditSvc,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	// -------- Commission Rules --------
	api.GET("/commission-rules", s.ListCommissionRules)
	api.POST("/commission-rules", s.CreateCommissionRule)
	api.GET("/commission-rules/:id", s.GetCommissionRuleByID)
	api.PUT("/commission-rules/:id", s.UpdateCommissionRule)
	api.DELETE("/commission-rules/:id", s.DeleteCommissionRule)

	// -------- Order Commissions --------
	api.POST("/orders/commissions", s.CalculateOrderCommissions)
	api.POST("/orders/commissions/preview", s.PreviewCommissions)
	api.POST("/order-commissions/:id/cancel", s.CancelOrderCommission)
	api.GET("/orders/:order_id/commissions", s.ListOrderCommissions)

	// -------- Vendor Reports --------
	api.GET("/vendors/:id/commission-summary", s.GetVendorCommissionSummary)
	api.GET("/vendors/:id/period-sales", s.GetVendorPeriodSales)

	api.GET("/audit-logs", s.ListAuditLogs)
}
