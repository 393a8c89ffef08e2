package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	apirest "github.com/kasuganosora/itemsim/api/rest"
	"github.com/kasuganosora/itemsim/audit"
	"github.com/kasuganosora/itemsim/cache"
	"github.com/kasuganosora/itemsim/catalog"
	"github.com/kasuganosora/itemsim/config"
	dbadapter "github.com/kasuganosora/itemsim/db"
	"github.com/kasuganosora/itemsim/economy"
	mw "github.com/kasuganosora/itemsim/middleware"
	"github.com/kasuganosora/itemsim/model"
	"github.com/kasuganosora/itemsim/scheduler"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func main() {
	cfgPath := "config/config.yaml"
	if len(os.Args) > 1 {
		cfgPath = os.Args[1]
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// ---- Logger ----
	var logger *zap.Logger
	var logErr error
	if cfg.Server.Debug {
		logger, logErr = zap.NewDevelopment()
	} else {
		logger, logErr = zap.NewProduction()
	}
	if logErr != nil {
		log.Fatalf("logger: %v", logErr)
	}
	defer logger.Sync()

	if cfg.Server.AdminKey == "" {
		logger.Warn("server.admin_key is not set; item management endpoints are disabled")
	}

	// ---- Database ----
	db, err := dbadapter.Open(cfg.Database)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	if err := model.AutoMigrate(db); err != nil {
		log.Fatalf("db migrate: %v", err)
	}
	logger.Info("DB initialized")

	// ---- Cache ----
	c, err := cache.New(cache.Config{
		RedisAddr:       cfg.Cache.RedisAddr,
		RedisPassword:   cfg.Cache.RedisPassword,
		RedisDB:         cfg.Cache.RedisDB,
		LocalGCInterval: cfg.Cache.LocalGCInterval,
	})
	if err != nil {
		log.Fatalf("cache: %v", err)
	}
	logger.Info("Cache initialized")

	// ---- Audit ----
	auditSvc := audit.New(db, logger)
	defer auditSvc.Stop(context.Background())

	// ---- Services ----
	cat := catalog.NewStore(db)
	engine := economy.NewEngine(db, economy.NewGormStores, cat, cfg.Game, logger)

	// ---- Handlers ----
	authH := apirest.NewAuthHandler(db, c, cfg.Security)
	charH := apirest.NewCharacterHandler(db, cfg.Game)
	itemH := apirest.NewItemHandler(db, cat)
	econH := apirest.NewEconomyHandler(engine, auditSvc)
	rankH := apirest.NewRankingHandler(db, c, logger)

	// ---- Scheduler ----
	sched := scheduler.New(logger)
	defer sched.Stop()
	sched.AddTicker("ranking_refresh", cfg.Game.RankingRefresh, func() {
		rankH.Refresh(context.Background())
	})

	// ---- Gin HTTP Server ----
	if !cfg.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(mw.TraceID(), mw.Logger(logger), mw.Recovery(logger))
	r.Use(mw.RateLimit(rate.Limit(cfg.Security.RateLimitRPS), cfg.Security.RateLimitBurst))

	// Health check
	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(200, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		authG := api.Group("/auth")
		authG.POST("/sign-up", authH.SignUp)
		authG.POST("/sign-in", authH.SignIn)
		authG.POST("/logout", mw.Auth(cfg.Security, c), authH.Logout)

		// Item catalog: public reads, admin-key writes.
		api.GET("/items", itemH.List)
		api.GET("/items/:code", itemH.Detail)
		adminG := api.Group("/items")
		adminG.Use(mw.IPWhitelist(cfg.Server.AdminIPs), apirest.AdminAuth(cfg.Server.AdminKey))
		adminG.POST("", itemH.Create)
		adminG.PUT("/:code", itemH.Update)

		charsG := api.Group("/characters")
		charsG.Use(mw.Auth(cfg.Security, c))
		charsG.POST("", charH.Create)
		charsG.GET("", charH.List)
		charsG.GET("/:id", charH.Detail)
		charsG.DELETE("/:id", charH.Delete)
		charsG.POST("/:id/purchase", econH.Purchase)
		charsG.POST("/:id/sell", econH.Sell)
		charsG.POST("/:id/equip", econH.Equip)
		charsG.POST("/:id/unequip", econH.Unequip)
		charsG.POST("/:id/earn-money", econH.EarnMoney)
		charsG.GET("/:id/inventory", econH.Inventory)

		// Equipped listing is public by design.
		api.GET("/characters/:id/equipped", econH.Equipped)

		rankG := api.Group("/ranking")
		rankG.GET("/money", rankH.TopMoney)
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	logger.Info("Server listening", zap.String("addr", addr))
	if err := r.Run(addr); err != nil {
		log.Fatalf("server: %v", err)
	}
}
