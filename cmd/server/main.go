package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"helpdesk.app/triage/common/id"
	"helpdesk.app/triage/common/llm"
	"helpdesk.app/triage/common/logger"
	"helpdesk.app/triage/common/otel"
	"helpdesk.app/triage/core/config"
	"helpdesk.app/triage/core/db"
	"helpdesk.app/triage/internal/answerer"
	"helpdesk.app/triage/internal/cache"
	"helpdesk.app/triage/internal/classifier"
	"helpdesk.app/triage/internal/docstore"
	"helpdesk.app/triage/internal/http/handler"
	"helpdesk.app/triage/internal/http/middleware"
	httprouter "helpdesk.app/triage/internal/http/router"
	"helpdesk.app/triage/internal/memory"
	"helpdesk.app/triage/internal/model"
	"helpdesk.app/triage/internal/orchestrator"
	"helpdesk.app/triage/internal/queue"
	"helpdesk.app/triage/internal/store"
	"helpdesk.app/triage/internal/stream"
)

func main() {
	fmt.Printf("%s\n", banner)
	ctx := context.Background()

	cfg, err := config.Load(config.ServiceTypeServer)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	// OTel must init before logger (logger uses OTel provider in production)
	telemetry, err := otel.Setup(ctx, cfg.OTel)
	if err != nil {
		// Can't use slog yet — OTel failed before logger setup
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Setup(cfg)

	if telemetry != nil {
		slog.InfoContext(ctx, "otel initialized", "endpoint", cfg.OTel.Endpoint)
	} else {
		slog.InfoContext(ctx, "otel disabled (no endpoint configured)")
	}

	slog.InfoContext(ctx, "triage server starting", "env", cfg.Env, "service", cfg.OTel.ServiceName)
	if err := id.Init(1); err != nil {
		slog.ErrorContext(ctx, "failed to initialize snowflake id generator", "error", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		slog.ErrorContext(ctx, "failed to create upload directory", "error", err)
		os.Exit(1)
	}

	database, err := db.New(ctx, cfg.DB)
	if err != nil {
		slog.ErrorContext(ctx, "failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer database.Close()
	slog.InfoContext(ctx, "database connected")

	redisOpts, err := redis.ParseURL(cfg.Queue.RedisURL)
	if err != nil {
		slog.ErrorContext(ctx, "failed to parse redis url", "error", err)
		os.Exit(1)
	}

	redisClient := redis.NewClient(redisOpts)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		slog.ErrorContext(ctx, "failed to connect to redis", "error", err)
		os.Exit(1)
	}
	slog.InfoContext(ctx, "redis connected", "stream", cfg.Queue.Stream)

	ingestProducer := queue.NewRedisProducer(redisClient, cfg.Queue.Stream)
	defer ingestProducer.Close()

	documents := store.NewDocumentStore(database.Pool())

	embedder, err := docstore.NewOpenAIEmbedder(cfg.OpenAI)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create embedder", "error", err)
		os.Exit(1)
	}
	docs := docstore.NewStore(cfg.Typesense, embedder, cfg.OpenAI.EmbeddingDims)

	routerClient, err := llm.New(llm.Config{
		Provider: cfg.RouterLLM.Provider,
		APIKey:   cfg.RouterLLM.APIKey,
		BaseURL:  cfg.RouterLLM.BaseURL,
		Model:    cfg.RouterLLM.Model,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to create router llm client", "error", err)
		os.Exit(1)
	}

	chatClient, err := llm.NewChatClient(llm.Config{
		Provider: cfg.AnswerLLM.Provider,
		APIKey:   cfg.AnswerLLM.APIKey,
		BaseURL:  cfg.AnswerLLM.BaseURL,
		Model:    cfg.AnswerLLM.Model,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to create answer llm client", "error", err)
		os.Exit(1)
	}

	policyCache := cache.NewPolicyCache()
	maxTokens := cfg.AnswerLLM.MaxTokens

	answerers := map[model.Category]answerer.Answerer{
		model.CategoryGeneral:   answerer.NewGeneral(docs, chatClient, maxTokens),
		model.CategoryTechnical: answerer.NewTechnical(docs, chatClient, maxTokens),
		model.CategoryBilling:   answerer.NewBilling(docs, chatClient, policyCache, maxTokens),
		model.CategoryPolicy:    answerer.NewPolicy(chatClient, answerer.DefaultPolicyContext(), maxTokens),
	}

	orch, err := orchestrator.New(orchestrator.Config{
		DefaultThreadID: cfg.Chat.DefaultThreadID,
		GenerateTimeout: cfg.Chat.GenerateTimeout,
	}, classifier.New(routerClient, cfg.RouterLLM.MaxTokens), answerers, memory.NewThreadStore())
	if err != nil {
		slog.ErrorContext(ctx, "failed to build orchestrator", "error", err)
		os.Exit(1)
	}

	handlers := httprouter.Handlers{
		Chat:      handler.NewChatHandler(orch, stream.NewStreamer(cfg.Chat.ChunkSize, cfg.Chat.ChunkDelay)),
		Documents: handler.NewDocumentHandler(documents, ingestProducer, cfg.UploadDir),
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := setupRouter(cfg, handlers)
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// Chat responses stream chunk by chunk; give them room.
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.InfoContext(ctx, "http server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.ErrorContext(ctx, "http server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.InfoContext(ctx, "shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "http server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
		}
	}

	slog.InfoContext(shutdownCtx, "shutdown complete")
}

func setupRouter(cfg config.Config, handlers httprouter.Handlers) *gin.Engine {
	router := gin.New()

	// Order matters: OTel creates span → Recovery catches panics → Logger logs with trace context
	if cfg.OTel.Enabled() {
		router.Use(otelgin.Middleware(cfg.OTel.ServiceName))
	}
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())

	httprouter.SetupRoutes(router, handlers)

	return router
}

const banner = `
████████╗██████╗ ██╗ █████╗  ██████╗ ███████╗
╚══██╔══╝██╔══██╗██║██╔══██╗██╔════╝ ██╔════╝
   ██║   ██████╔╝██║███████║██║  ███╗█████╗
   ██║   ██╔══██╗██║██╔══██║██║   ██║██╔══╝
   ██║   ██║  ██║██║██║  ██║╚██████╔╝███████╗
   ╚═╝   ╚═╝  ╚═╝╚═╝╚═╝  ╚═╝ ╚═════╝ ╚══════╝
`
