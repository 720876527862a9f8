package cli

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"quiztrack/internal/config"
	infrapg "quiztrack/internal/infra/postgres"
)

// NewResetCmd wipes all users and scores. Runs only when invoked; the
// periodic variant lives behind maintenance.reset_interval.
func NewResetCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Delete all users and scores from the configured backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReset(cmd.Context(), *configPath)
		},
	}
}

func runReset(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.Postgres.URL == "" {
		return fmt.Errorf("reset requires postgres.url; the in-memory backend resets on restart")
	}

	pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := infrapg.NewUserStore(pool).Reset(ctx); err != nil {
		return err
	}
	log.Printf("all users and scores deleted")

	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.FlushDB(ctx).Err(); err != nil {
			return err
		}
		log.Printf("redis cache flushed")
	}
	return nil
}
