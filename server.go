package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"bitbucket.org/mmdatafocus/fabric_backend/catalog"
	"bitbucket.org/mmdatafocus/fabric_backend/config"
	"bitbucket.org/mmdatafocus/fabric_backend/handlers"
	"bitbucket.org/mmdatafocus/fabric_backend/middlewares"
	"bitbucket.org/mmdatafocus/fabric_backend/models"
	"bitbucket.org/mmdatafocus/fabric_backend/store/gormstore"
	"bitbucket.org/mmdatafocus/fabric_backend/workflow"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const defaultPort = "8080"

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = defaultPort
	}

	logger := config.GetLogger()

	// Cloud Run sends SIGTERM on revision shutdown; handle it for graceful drain.
	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	// Start the HTTP server ASAP so the startup probe passes. Until the DB is
	// ready, app endpoints answer 503.
	var ready atomic.Bool
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if c.Request.URL.Path == "/healthz" {
			c.Status(http.StatusNoContent)
			c.Abort()
			return
		}
		if !ready.Load() {
			c.AbortWithStatus(http.StatusServiceUnavailable)
			return
		}
		c.Next()
	})

	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	corsConfig := cors.DefaultConfig()
	// In production, require an explicit allowlist via CORS_ALLOWED_ORIGINS.
	allowedOrigins := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS"))
	if strings.EqualFold(strings.TrimSpace(os.Getenv("GO_ENV")), "production") {
		if allowedOrigins == "" {
			corsConfig.AllowOrigins = []string{}
		} else {
			corsConfig.AllowOrigins = splitAndTrim(allowedOrigins)
		}
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AddAllowMethods("GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS")
	corsConfig.AddAllowHeaders("Origin", "Content-Type", "Authorization",
		middlewares.HeaderActingIdentity, middlewares.HeaderCorrelationId)
	corsConfig.AddExposeHeaders("Content-Length", middlewares.HeaderCorrelationId)
	corsConfig.AllowCredentials = true
	r.Use(cors.New(corsConfig))

	r.Use(middlewares.IdentityMiddleware())
	r.Use(gin.Recovery())

	handlers.RegisterValidations()

	// Handlers resolve the store lazily through this indirection because the
	// DB connects after the listener is up.
	h := handlers.New(nil, nil, logger, discrepancyThreshold())
	registerRoutes(r, h)

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}
	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- srv.ListenAndServe()
	}()

	// Connect dependencies after the port is open.
	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()

	db := config.GetDB()
	sqlDB, _ := db.DB()
	defer func() {
		if sqlDB != nil {
			_ = sqlDB.Close()
		}
	}()
	// AutoMigrate can run DDL that blocks tables; allow running migrations as
	// a separate job instead.
	if !strings.EqualFold(strings.TrimSpace(os.Getenv("SKIP_MIGRATIONS")), "true") {
		models.MigrateTable()
	} else {
		logger.WithFields(logrus.Fields{"field": "migrations"}).Warn("SKIP_MIGRATIONS=true; skipping AutoMigrate on startup")
	}

	// DB is up; wire the real store into the handlers.
	st := gormstore.New(db)
	deps := workflow.NewDeps(st, logger)
	h.Deps = deps
	h.Catalog = catalog.New(st, logger)
	ready.Store(true)

	// Outbox dispatcher publishes ledger events AFTER commit.
	dispatcherCtx, cancelDispatcher := context.WithCancel(context.Background())
	defer cancelDispatcher()
	publisher := &workflow.PubSubPublisher{TopicName: config.LedgerEventsTopic()}
	go workflow.RunOutboxDispatcher(dispatcherCtx, deps, publisher, 10*time.Second)

	logger.WithFields(logrus.Fields{
		"info": "Connection Established",
	}).Info("listening on http://localhost:", port)
	log.Println("Server started successfully")

	select {
	case <-sigCtx.Done():
		// graceful shutdown below
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithFields(logrus.Fields{"field": "http"}).Error("server stopped unexpectedly: " + err.Error())
		}
	}

	// Stop background workers first so they don't start new work mid-drain.
	cancelDispatcher()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithFields(logrus.Fields{"field": "http"}).Error("graceful shutdown failed: " + err.Error())
	}

	if rdb := config.GetRedisDB(); rdb != nil {
		_ = rdb.Close()
	}
}

func registerRoutes(r *gin.Engine, h *handlers.Handler) {
	api := r.Group("/api/v1")

	fabricTypes := api.Group("/fabric-types")
	fabricTypes.POST("", h.CreateFabricType)
	fabricTypes.GET("", h.ListFabricTypes)
	fabricTypes.GET("/:id", h.GetFabricType)
	fabricTypes.PUT("/:id", h.UpdateFabricType)
	fabricTypes.DELETE("/:id", h.DeleteFabricType)
	fabricTypes.PATCH("/:id/active", h.ToggleFabricTypeActive)
	api.GET("/reports/low-stock", h.LowStockReport)

	rolls := api.Group("/rolls")
	rolls.POST("", h.ReceiveRoll)
	rolls.GET("", h.QueryRolls)
	rolls.GET("/:id", h.GetRoll)
	rolls.GET("/by-number/:number", h.GetRollByNumber)
	rolls.POST("/:id/transition", h.TransitionRoll)
	rolls.POST("/:id/correct", h.CorrectRoll)
	rolls.POST("/:id/void", h.VoidRoll)
	rolls.POST("/:id/assess-grade", h.AssessRollGrade)

	issuances := api.Group("/issuances")
	issuances.POST("", h.CreateIssuance)
	issuances.GET("/:id", h.GetIssuance)
	issuances.POST("/:id/cancel", h.CancelIssuance)

	orders := api.Group("/cutting-orders")
	orders.POST("", h.CreateCuttingOrder)
	orders.GET("", h.ListCuttingOrders)
	orders.GET("/:id", h.GetCuttingOrder)
	orders.PATCH("/:id/status", h.UpdateCuttingOrderStatus)
	orders.POST("/:id/consumption", h.ReportConsumption)
	orders.GET("/:id/consumption-report", h.ConsumptionReport)
	orders.GET("/:id/issuances", h.ListIssuancesByOrder)

	checks := api.Group("/inventory-checks")
	checks.POST("", h.StartCheck)
	checks.GET("", h.ListChecks)
	checks.GET("/:id", h.GetCheck)
	checks.POST("/:id/items/:itemId/count", h.RecordCount)
	checks.POST("/:id/complete", h.CompleteCheck)
	checks.POST("/:id/cancel", h.CancelCheck)
	checks.GET("/:id/report", h.CheckReport)

	api.POST("/internal/ops/integrity-sweep", h.RunIntegritySweep)
}

func discrepancyThreshold() decimal.Decimal {
	if v := strings.TrimSpace(os.Getenv("DISCREPANCY_THRESHOLD")); v != "" {
		if parsed, err := decimal.NewFromString(v); err == nil && parsed.IsPositive() {
			return parsed
		}
	}
	return models.DefaultDiscrepancyThreshold
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	return out
}
