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

	"quiztrack/internal/app"
	"quiztrack/internal/auth"
	"quiztrack/internal/config"
	"quiztrack/internal/infra/memory"
	infrapg "quiztrack/internal/infra/postgres"
	infraredis "quiztrack/internal/infra/redis"
	"quiztrack/internal/quizbank"
	transport "quiztrack/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz tracking server",
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

	if cfg.Auth.Secret == "" {
		log.Printf("warning: auth.secret not configured, using an insecure development key")
		cfg.Auth.Secret = "development-only-secret"
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

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	var users app.UserStore = memory.NewUserStore()
	var scores app.ScoreStore = memory.NewScoreStore()
	var loader quizbank.Loader = quizbank.NewStaticLoader(quizbank.DefaultQuizzes())
	if pool != nil {
		users = infrapg.NewUserStore(pool)
		scores = infrapg.NewScoreStore(pool)
		loader = infrapg.NewQuizLoader(pool)
	}

	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	bank := quizbank.NewRepository(loader, quizTTL)

	tokenTTL := config.TTLDuration(cfg.Auth.TokenTTL, auth.DefaultTokenTTL)
	codec := auth.NewCodec(cfg.Auth.Secret, tokenTTL)
	guard := auth.NewGuard(codec, users)

	accounts := app.NewAccountService(users, codec)
	quizzes := app.NewQuizService(bank, scores, users)
	board := app.NewLeaderboard(scores)

	var boardSource transport.LeaderboardSource = board
	if redisClient != nil {
		redisTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)
		cache := infraredis.NewLeaderboardCache(redisClient, board, redisTTL)
		quizzes.WithCache(cache)
		boardSource = cache
	}

	handler := transport.NewHandler(accounts, quizzes, boardSource, guard, tokenTTL)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      handler.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	if interval := config.TTLDuration(cfg.Maintenance.ResetInterval, 0); interval > 0 {
		log.Printf("periodic reset enabled every %s", interval)
		go runPeriodicReset(ctx, quizzes, interval)
	}

	go func() {
		log.Printf("starting quiztrack on :%s", finalPort)
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// runPeriodicReset wipes all users and scores on a fixed interval. Opt-in
// via maintenance.reset_interval for throwaway classroom deployments.
func runPeriodicReset(ctx context.Context, quizzes *app.QuizService, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := quizzes.Reset(ctx); err != nil {
				log.Printf("periodic reset failed: %v", err)
				continue
			}
			log.Printf("periodic reset completed")
		case <-ctx.Done():
			return
		}
	}
}
