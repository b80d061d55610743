package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/palitext/suttasearch/internal/answer"
	"github.com/palitext/suttasearch/internal/config"
	"github.com/palitext/suttasearch/internal/db"
	dbRedis "github.com/palitext/suttasearch/internal/db/redis"
	"github.com/palitext/suttasearch/internal/embedding"
	"github.com/palitext/suttasearch/internal/index/weaviate"
	logpkg "github.com/palitext/suttasearch/internal/logger"
	"github.com/palitext/suttasearch/internal/metrics"
	"github.com/palitext/suttasearch/internal/rerank"
	chiTransport "github.com/palitext/suttasearch/internal/transport/chi"
	answeruc "github.com/palitext/suttasearch/internal/usecase/answer"
	healthuc "github.com/palitext/suttasearch/internal/usecase/health"
	searchuc "github.com/palitext/suttasearch/internal/usecase/search"
	"github.com/palitext/suttasearch/internal/version"
)

func main() {
	// Load .env if present, then configuration based on ENV
	_ = godotenv.Load()
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting suttasearch API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("index_url", cfg.Index.URL),
		zap.String("index_class", cfg.Index.Class),
	)

	// Register pipeline metrics explicitly (no init())
	metrics.RegisterPipelineMetrics()

	ctx := context.Background()

	// Optional shared embedding cache store
	var store db.Store
	if len(cfg.Embedding.Cache.RedisAddrs) > 0 {
		store, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Embedding.Cache.RedisAddrs,
			Password: cfg.Embedding.Cache.RedisPassword,
		})
		if err != nil {
			logger.Fatal("Failed to create cache store", zap.Error(err))
		}
		defer store.Close()

		if err := store.WaitForReady(ctx, 10*time.Second); err != nil {
			logger.Fatal("Cache store not ready", zap.Error(err))
		}
		logger.Info("Connected to embedding cache store",
			zap.Strings("addrs", cfg.Embedding.Cache.RedisAddrs))
	}

	// Vectorizer chain — composition root
	embClient := embedding.NewClient(embedding.Config{
		BaseURL: cfg.Embedding.URL,
		Timeout: time.Duration(cfg.Embedding.TimeoutSec) * time.Second,
		Logger:  logger,
	})
	vectorizer, err := buildVectorizer(embClient, store, cfg.Embedding.Cache, logger)
	if err != nil {
		logger.Fatal("Failed to build vectorizer", zap.Error(err))
	}

	// Document index
	index := weaviate.NewClient(weaviate.Config{
		BaseURL: cfg.Index.URL,
		Class:   cfg.Index.Class,
		Timeout: time.Duration(cfg.Index.TimeoutSec) * time.Second,
		Logger:  logger,
	})
	if err := index.EnsureSchema(ctx); err != nil {
		logger.Fatal("Failed to ensure index schema", zap.Error(err))
	}
	logger.Info("Index schema ready", zap.String("class", cfg.Index.Class))

	// Reranker — cross-encoder when configured, passthrough otherwise
	var reranker searchuc.Reranker = rerank.Passthrough{}
	if cfg.Rerank.URL != "" {
		reranker = rerank.NewCrossEncoder(rerank.Config{
			BaseURL: cfg.Rerank.URL,
			Model:   cfg.Rerank.Model,
			Timeout: time.Duration(cfg.Rerank.TimeoutSec) * time.Second,
			Logger:  logger,
		})
		logger.Info("Cross-encoder reranker enabled", zap.String("model", cfg.Rerank.Model))
	}

	// Answer strategy — model-backed when a provider is configured
	var strategy answeruc.Strategy = answer.NewExtractive(
		cfg.Answer.SummaryChars, cfg.Answer.CitationBlocks,
	)
	if cfg.LLM.Provider == "openai" {
		strategy = answer.NewModelBacked(answer.ModelBackedConfig{
			APIKey:      cfg.LLM.APIKey,
			BaseURL:     cfg.LLM.BaseURL,
			Model:       cfg.LLM.Model,
			Temperature: cfg.LLM.Temperature,
			MaxTokens:   cfg.LLM.MaxTokens,
			Logger:      logger,
		})
		logger.Info("Model-backed answers enabled", zap.String("model", cfg.LLM.Model))
	}

	// Use case services
	searchSvc := searchuc.New(index, vectorizer, reranker).
		WithCandidatePool(cfg.Search.CandidatePool).
		WithFallbackMinScore(cfg.Search.FallbackMinScore)
	answerSvc := answeruc.New(searchSvc, strategy, cfg.Answer.MaxCitations)

	var cachePinger healthuc.CachePinger
	if store != nil {
		cachePinger = store
	}
	healthSvc := healthuc.New(index, embClient, cachePinger)

	// Chi server
	server := chiTransport.NewServer(
		searchSvc, answerSvc, healthSvc,
		cfg.Search.DefaultTopK, cfg.Search.MaxTopK, logger,
	)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// buildVectorizer assembles the decorator chain: HTTP client -> Redis cache -> LRU.
// The LRU sits outermost so hot queries never touch the shared store.
func buildVectorizer(
	client *embedding.Client,
	store db.Store,
	cacheCfg config.EmbeddingCacheConfig,
	logger *zap.Logger,
) (searchuc.Vectorizer, error) {
	var vec embedding.Vectorizer = client

	if store != nil {
		ttl := time.Duration(cacheCfg.TTLHours) * time.Hour
		vec = embedding.NewCached(vec, store, ttl, logger)
	}

	lru, err := embedding.NewLRU(vec, cacheCfg.Size)
	if err != nil {
		return nil, fmt.Errorf("build lru cache: %w", err)
	}
	return lru, nil
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"error": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
