package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"trivia-arena-service/internal/app"
	"trivia-arena-service/internal/config"
	"trivia-arena-service/internal/generator"
	"trivia-arena-service/internal/infra/memory"
	pgbank "trivia-arena-service/internal/infra/postgres"
	rediscache "trivia-arena-service/internal/infra/redis"
	transport "trivia-arena-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the trivia server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	// serverCtx bounds every background round job to the server lifetime.
	serverCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	if cfg.LLM.BaseURL == "" {
		log.Printf("llm base_url not configured, rounds will use fallback questions")
	}
	chat := generator.NewClient(cfg.LLM.BaseURL, cfg.LLM.Model, cfg.LLM.APIKey)
	gen := generator.NewGenerator(chat, config.TTLDuration(cfg.LLM.Timeout, 30*time.Second))

	cacheTTL := config.TTLDuration(cfg.Redis.TTL, 24*time.Hour)
	if redisClient != nil {
		cache := rediscache.NewQuestionCache(redisClient, cfg.Game.CacheSize, cacheTTL)
		gen.UseRecorder(cache)
		gen.AddFallback(cache)
	} else {
		cache := memory.NewQuestionCache(cfg.Game.CacheSize)
		gen.UseRecorder(cache)
		gen.AddFallback(cache)
	}
	if pool != nil {
		gen.AddFallback(pgbank.NewQuestionBank(pool))
	}

	source := generator.NewPrefetcher(serverCtx, gen)
	pause := config.TTLDuration(cfg.Game.RevealPause, 3*time.Second)

	game := app.NewGame()
	coordinator := app.NewCoordinator(serverCtx, game, source, pause)
	if cfg.Game.DefaultTopic != "" {
		coordinator.SetTopic(cfg.Game.DefaultTopic)
	}
	wsHandler := transport.NewWSHandler(coordinator)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting trivia service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	return server.Shutdown(shutdownCtx)
}
