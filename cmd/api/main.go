package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"rifas-el-negro-backend/internal/common/cache"
	"rifas-el-negro-backend/internal/common/config"
	"rifas-el-negro-backend/internal/common/logger"
	"rifas-el-negro-backend/internal/common/middleware"
	adminhttp "rifas-el-negro-backend/internal/features/admin/delivery/http"
	adminpg "rifas-el-negro-backend/internal/features/admin/repository/postgres"
	adminservice "rifas-el-negro-backend/internal/features/admin/service"
	purchasehttp "rifas-el-negro-backend/internal/features/purchase/delivery/http"
	purchasepg "rifas-el-negro-backend/internal/features/purchase/repository/postgres"
	purchaseservice "rifas-el-negro-backend/internal/features/purchase/service"
	rafflehttp "rifas-el-negro-backend/internal/features/raffle/delivery/http"
	rafflepg "rifas-el-negro-backend/internal/features/raffle/repository/postgres"
	raffleservice "rifas-el-negro-backend/internal/features/raffle/service"
	userhttp "rifas-el-negro-backend/internal/features/user/delivery/http"
	userpg "rifas-el-negro-backend/internal/features/user/repository/postgres"
	userservice "rifas-el-negro-backend/internal/features/user/service"
	"rifas-el-negro-backend/internal/platform/db"
	redisplatform "rifas-el-negro-backend/internal/platform/redis"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	logger.Init("rifas-el-negro-backend", cfg.Debug)

	pg, err := db.Open(ctx, cfg.DatabaseDSN(), cfg.Database.MaxConns, cfg.Database.MinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to postgres")
	}
	defer pg.Close()
	logger.Info().Msg("Database connection established")

	rdb, err := redisplatform.Open(ctx, cfg.RedisAddr(), cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to redis")
	}
	defer rdb.Close()

	cacheSvc := cache.NewService(rdb)
	logger.Info().Msg("Cache service initialized")

	userRepository := userpg.NewUserRepository(pg)
	raffleRepository := rafflepg.NewRaffleRepository(pg)
	numberRepository := rafflepg.NewNumberRepository(pg)
	purchaseRepository := purchasepg.NewPurchaseRepository(pg)
	statsRepository := adminpg.NewStatsRepository(pg)

	tokenTTL := time.Duration(cfg.Auth.TokenTTLHours) * time.Hour
	userSvc := userservice.NewUserService(userRepository, cfg.Auth.JWTSecret, tokenTTL)
	raffleSvc := raffleservice.NewRaffleService(
		raffleRepository, numberRepository, cacheSvc,
		time.Duration(cfg.Raffle.ReservationTTLSeconds)*time.Second,
		time.Duration(cfg.Raffle.AvailabilityCacheSeconds)*time.Second,
	)
	purchaseSvc := purchaseservice.NewPurchaseService(purchaseRepository, raffleRepository, numberRepository, cacheSvc)
	adminSvc := adminservice.NewAdminService(statsRepository, cacheSvc,
		time.Duration(cfg.Raffle.StatsCacheSeconds)*time.Second)

	logger.Info().Msg("Services initialized")

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.ErrorHandler())
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Server.Origin}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization", "Accept"}
	corsConfig.AllowCredentials = true
	router.Use(cors.New(corsConfig))

	router.Use(middleware.Authenticate(cfg.Auth.JWTSecret))

	v1 := router.Group("/api/v1")
	userhttp.NewUserHandler(userSvc, cfg.Auth.TokenTTLHours*3600).RegisterRoutes(v1)
	rafflehttp.NewRaffleHandler(raffleSvc).RegisterRoutes(v1)
	purchasehttp.NewPurchaseHandler(purchaseSvc).RegisterRoutes(v1)
	adminhttp.NewAdminHandler(adminSvc).RegisterRoutes(v1)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC(),
			"service":   "rifas-el-negro-backend",
		})
	})

	router.GET("/live", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	router.GET("/ready", func(c *gin.Context) {
		probeCtx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := pg.PingContext(probeCtx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unready", "error": "postgres unavailable"})
			return
		}
		if err := rdb.Ping(probeCtx).Err(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unready", "error": "redis unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Int("port", cfg.Server.Port).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	<-ctx.Done()
	stop()
	logger.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
		os.Exit(1)
	}

	logger.Info().Msg("Server exited")
}
