package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"kc-mini-app-backend/docs"
	"kc-mini-app-backend/internal/common/cache"
	"kc-mini-app-backend/internal/common/config"
	"kc-mini-app-backend/internal/common/logger"
	"kc-mini-app-backend/internal/common/middleware"
	"kc-mini-app-backend/internal/common/validation"
	boosterhttp "kc-mini-app-backend/internal/features/booster/delivery/http"
	boosterservice "kc-mini-app-backend/internal/features/booster/service"
	ledgerhttp "kc-mini-app-backend/internal/features/ledger/delivery/http"
	ledgerrepo "kc-mini-app-backend/internal/features/ledger/repository"
	ledgermemory "kc-mini-app-backend/internal/features/ledger/repository/memory"
	ledgerpostgres "kc-mini-app-backend/internal/features/ledger/repository/postgres"
	ledgerservice "kc-mini-app-backend/internal/features/ledger/service"
	paymentredis "kc-mini-app-backend/internal/features/payment/repository/redis"
	paymentservice "kc-mini-app-backend/internal/features/payment/service"
	simulationhttp "kc-mini-app-backend/internal/features/simulation/delivery/http"
	simulationmodels "kc-mini-app-backend/internal/features/simulation/models"
	simulationservice "kc-mini-app-backend/internal/features/simulation/service"
	stateredis "kc-mini-app-backend/internal/features/state/repository/redis"
	stateservice "kc-mini-app-backend/internal/features/state/service"
	tonproofhttp "kc-mini-app-backend/internal/features/tonproof/delivery/http"
	tonproofredis "kc-mini-app-backend/internal/features/tonproof/repository/redis"
	tonproofservice "kc-mini-app-backend/internal/features/tonproof/service"
	userhttp "kc-mini-app-backend/internal/features/user/delivery/http"
	userservice "kc-mini-app-backend/internal/features/user/service"
	withdrawalhttp "kc-mini-app-backend/internal/features/withdrawal/delivery/http"
	withdrawalmodels "kc-mini-app-backend/internal/features/withdrawal/models"
	withdrawalredis "kc-mini-app-backend/internal/features/withdrawal/repository/redis"
	withdrawalservice "kc-mini-app-backend/internal/features/withdrawal/service"
	"kc-mini-app-backend/internal/platform/postgres"
	"kc-mini-app-backend/internal/platform/price"
	"kc-mini-app-backend/internal/platform/redis"
	"kc-mini-app-backend/internal/platform/ton"
	"kc-mini-app-backend/internal/platform/tonapi"
	"kc-mini-app-backend/internal/scheduler"
)

const serviceName = "kc-mini-app-backend"

// @title           KC Mini App API
// @version         1.0
// @description     Backend of the yield bot mini app. All endpoints require Telegram init data.

// @BasePath  /api/v1

// @securityDefinitions.apikey TelegramInitData
// @in header
// @name Authorization
// @description Telegram Mini App init data as "tma <init_data>"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger.Init(serviceName, cfg.Debug, cfg.LogLevel)
	logger.Info().Bool("debug", cfg.Debug).Msg("Starting KC mini app backend")

	if err := validation.Register(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to register validators")
	}

	redisClient, err := redis.Open(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redisClient.Close()

	var (
		ledgerRepository ledgerrepo.Repository = ledgermemory.NewRepository()
		postgresClient   *postgres.Client
	)
	if cfg.Postgres.DSN != "" {
		postgresClient, err = postgres.NewClient(ctx, cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to connect to database")
		}
		defer postgresClient.Close()

		if cfg.Postgres.AutoMigrate {
			if err := postgresClient.Migrate(); err != nil {
				logger.Fatal().Err(err).Msg("Failed to run migrations")
			}
		}
		ledgerRepository = ledgerpostgres.NewPostgresRepository(postgresClient.GetDB())
	} else {
		logger.Warn().Msg("DATABASE_URL is empty, transactions are kept in memory")
	}

	cacheService := cache.NewCacheService(redisClient.UniversalClient, serviceName)
	priceClient := price.NewClient(price.Config{
		BaseURL:  cfg.Price.APIURL,
		Asset:    cfg.Price.Asset,
		Currency: cfg.Price.Currency,
		CacheTTL: cfg.Price.CacheTTL,
	}, cacheService)

	gateway := paymentservice.NewGateway(priceClient, nil)
	if cfg.Ton.Enabled {
		payer, err := ton.Connect(ctx, cfg.Ton.LiteConfigURL, cfg.Ton.TreasuryAddress)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to connect to TON lite servers")
		}
		gateway = paymentservice.NewGateway(priceClient, payer)
	} else {
		logger.Warn().Msg("TON payments disabled, mnemonic wallets cannot pay")
	}
	gateway.WithTxHashes(paymentredis.NewRepository(redisClient.UniversalClient))

	// Сервисы
	store := stateservice.NewStore(stateredis.NewRepository(redisClient.UniversalClient, cfg.Store.Namespace), time.Now)
	ledgerSvc := ledgerservice.NewService(ledgerRepository, time.Now)
	generator := simulationservice.NewGenerator(store, simulationservice.Config{
		WindowSize: cfg.Simulation.WindowSize,
		MaxBatch:   cfg.Simulation.MaxBatch,
		IdleAfter:  cfg.Simulation.IdleAfter,
		Params:     simulationmodels.DefaultParams(),
	})
	userSvc := userservice.NewService(store, generator, cfg.Telegram.AdminIDs)
	if cfg.TonAPI.URL != "" {
		userSvc.WithBalances(tonapi.NewClient(cfg.TonAPI.URL, cfg.TonAPI.Token))
	}
	lifecycle := boosterservice.NewLifecycle(store, gateway, ledgerSvc)
	withdrawalSvc := withdrawalservice.NewService(
		store,
		withdrawalredis.NewRepository(redisClient.UniversalClient, cfg.Withdrawal.SessionTTL),
		gateway,
		ledgerSvc,
		withdrawalmodels.Policy{Minimum: cfg.Withdrawal.MinAmount},
	)
	tonproofSvc := tonproofservice.NewService(
		tonproofredis.NewRepository(redisClient.UniversalClient),
		userSvc,
		tonproofservice.Config{Domain: cfg.Ton.ProofDomain, TTL: cfg.Ton.ProofTTL},
		time.Now,
	)

	jobs, err := scheduler.New(scheduler.Specs{
		BoosterPrune: cfg.Scheduler.BoosterPruneSpec,
		PlanExpiry:   cfg.Scheduler.PlanExpirySpec,
		PriceRefresh: cfg.Scheduler.PriceRefreshSpec,
	}, scheduler.Deps{
		Boosters: lifecycle,
		Plans:    userSvc,
		Prices:   priceClient,
		Streams:  generator,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to configure scheduler")
	}
	jobs.Start()

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.Logger())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Server.Origin}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization", "Accept", "init_data", "X-Request-ID"}
	router.Use(cors.New(corsConfig))
	router.Use(middleware.HandleErrors())

	setupHealthChecks(router, redisClient, postgresClient)
	docs.SwaggerInfo.BasePath = "/api/v1"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := router.Group("/api/v1")
	v1.Use(middleware.TelegramInitDataMiddleware(cfg.Telegram.BotToken, cfg.Telegram.InitDataTTL))
	v1.Use(middleware.AutoCreateUser(userSvc))
	v1.Use(middleware.CheckBanned(cfg.Telegram.AdminIDs, userSvc))

	userhttp.NewUserHandler(userSvc, cfg.Telegram.AdminIDs).RegisterRoutes(v1)
	simulationhttp.NewSimulationHandler(generator).RegisterRoutes(v1)
	boosterhttp.NewBoosterHandler(lifecycle).RegisterRoutes(v1)
	withdrawalhttp.NewWithdrawalHandler(withdrawalSvc).RegisterRoutes(v1)
	ledgerhttp.NewLedgerHandler(ledgerSvc).RegisterRoutes(v1)
	tonproofhttp.NewHandler(tonproofSvc).RegisterRoutes(v1)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
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

	<-jobs.Stop().Done()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("Server exited")
}

func setupHealthChecks(router *gin.Engine, redisClient *redis.Client, postgresClient *postgres.Client) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC(),
			"service":   serviceName,
		})
	})

	router.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := redisClient.HealthCheck(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unready",
				"error":   "redis unavailable",
				"details": err.Error(),
			})
			return
		}

		if postgresClient != nil {
			if err := postgresClient.HealthCheck(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"status":  "unready",
					"error":   "postgres unavailable",
					"details": err.Error(),
				})
				return
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "ready",
			"timestamp": time.Now().UTC(),
			"service":   serviceName,
		})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
