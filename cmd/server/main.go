package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"coinsight/internal/advisor"
	"coinsight/internal/aggregator"
	"coinsight/internal/bot"
	"coinsight/internal/cache"
	"coinsight/internal/config"
	"coinsight/internal/db"
	"coinsight/internal/handler"
	"coinsight/internal/job"
	"coinsight/internal/provider"
	"coinsight/internal/repository"
	"coinsight/internal/service"
	"coinsight/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/trace"

	_ "coinsight/docs"
)

var (
	loadEnvFunc          = godotenv.Load
	loadConfigFunc       = config.Load
	initPostgresFunc     = db.InitPostgres
	initRedisFunc        = cache.InitRedis
	initTracerFunc       = tracing.InitTracer
	newMarketSourcesFunc = func(tracer trace.Tracer) (service.Snapshotter, service.ChartProvider) {
		coinGecko := provider.NewCoinGeckoProvider(tracer)
		quoteSources := []aggregator.QuoteSource{
			coinGecko,
			provider.NewCoinCapProvider(tracer),
			provider.NewBinanceProvider(tracer),
		}
		agg := aggregator.New(quoteSources, provider.NewFearGreedProvider(tracer), coinGecko, tracer)
		return agg, coinGecko
	}
	newMarketServiceFunc      = service.NewMarketService
	newDerivativesServiceFunc = func(tracer trace.Tracer) *service.DerivativesService {
		return service.NewDerivativesService(tracer,
			provider.NewBinanceDerivativesProvider(tracer),
			provider.NewBybitProvider(tracer),
			provider.NewOKXProvider(tracer),
		)
	}
	newMarketPollerFunc    = job.NewMarketPoller
	startPollerFunc        = func(p *job.MarketPoller, ctx context.Context) { go p.Start(ctx) }
	startTelegramBotFunc   = bot.StartTelegramBot
	newHandlerFunc         = handler.New
	newRouterFunc          = gin.Default
	setupSignalNotify      = signal.Notify
	waitForSignalFunc      = func(quit <-chan os.Signal) { <-quit }
	startHTTPServerFunc    = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
)

// @title           Coinsight API
// @version         1.0
// @description     Crypto market aggregation and scoring service with OpenTelemetry tracing.

// @host      localhost:8080
// @BasePath  /
func main() {
	loadEnvFunc()

	cfg := loadConfigFunc()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init Postgres and Redis
	os.Setenv("DATABASE_URL", cfg.DatabaseURL)
	os.Setenv("REDIS_URL", cfg.RedisURL)
	initPostgresFunc(ctx)
	initRedisFunc(ctx)

	// Init tracing
	tp, tracer, err := initTracerFunc(ctx)
	if err != nil {
		log.Fatalf("failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("error shutting down tracer provider: %v", err)
		}
	}()

	// Repositories are only wired when Postgres is configured; the services
	// degrade to live data without them.
	var (
		candleRepo   service.CandleRepository
		snapshotRepo service.SnapshotRepository
		convStore    advisor.ConversationStore
	)
	if db.Pool != nil {
		candles := repository.NewCandleRepository(db.Pool, tracer)
		if err := candles.RunMigrations(ctx); err != nil {
			log.Fatalf("failed to run migrations: %v", err)
		}
		candleRepo = candles
		snapshotRepo = repository.NewSnapshotRepository(db.Pool, tracer)
		convStore = repository.NewConversationRepository(db.Pool, tracer)
	}

	var redisClient service.RedisClient
	if cache.Client != nil {
		redisClient = cache.Client
	}

	// Aggregator and services
	snapshotter, charts := newMarketSourcesFunc(tracer)
	marketService := newMarketServiceFunc(tracer, snapshotter, charts, candleRepo, snapshotRepo, redisClient)
	technicalsService := service.NewTechnicalsService(tracer, candleRepo)
	derivativesService := newDerivativesServiceFunc(tracer)

	// Advisor: without an OpenAI key it answers from the recommendation set
	var llm advisor.LLMClient
	if cfg.OpenAIAPIKey != "" {
		llm = advisor.NewOpenAIClient(cfg.OpenAIAPIKey)
	}
	advisorService := advisor.NewAdvisorService(tracer, llm, marketService, convStore, cfg.OpenAIModel, cfg.AdvisorMaxHistory)

	// Start market poller (background goroutines, stopped by ctx cancel)
	poller := newMarketPollerFunc(tracer, marketService, cfg.MarketPollSecs, cfg.CandlePollSecs, cfg.SnapshotRetainDays)
	startPollerFunc(poller, ctx)

	// Start Telegram bot
	os.Setenv("TELEGRAM_BOT_TOKEN", cfg.TelegramBotToken)
	startTelegramBotFunc(marketService, advisorService)

	// Create handlers and routes
	h := newHandlerFunc(tracer, marketService, technicalsService, derivativesService)

	r := newRouterFunc()
	r.Use(otelgin.Middleware("coinsight"))

	h.RegisterRoutes(r, cfg.APIKey)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    ":8080",
		Handler: r,
	}

	go func() {
		if err := startHTTPServerFunc(srv); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Println("Shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownHTTPServerFunc(srv, shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
