package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/forgecv/internal/config"
	"github.com/jonathan/forgecv/internal/db"
	"github.com/jonathan/forgecv/internal/llm"
	"github.com/jonathan/forgecv/internal/server"
	"github.com/jonathan/forgecv/internal/tailor"
)

var (
	serveConfigPath string
	serveAddr       string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server exposing tailoring jobs, resume parsing, chat, and profile merging.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveConfigPath, "config", "", "Path to config.json file")
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "HTTP listen address (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(serveConfigPath)
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.Addr = serveAddr
	}

	ctx := context.Background()

	client, err := llm.NewClient(ctx, llmConfig(cfg), cfg.APIKey)
	if err != nil {
		return fmt.Errorf("failed to create generation client: %w", err)
	}
	defer client.Close()

	store, cleanup, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	srv := server.New(server.Config{
		Addr:   cfg.Addr,
		Store:  store,
		Client: client,
		Retry:  tailor.RetryPolicy{Limit: cfg.RetryLimit, Delay: cfg.RetryDelay},
	})

	return srv.Start()
}

// openStore picks Postgres when DATABASE_URL is configured, an
// in-process store otherwise.
func openStore(ctx context.Context, cfg *config.Config) (tailor.JobStore, func(), error) {
	if cfg.DatabaseURL == "" {
		return tailor.NewMemoryStore(), func() {}, nil
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	database, err := db.Connect(connectCtx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.Migrate(connectCtx); err != nil {
		database.Close()
		return nil, nil, err
	}
	return db.NewJobStore(database), database.Close, nil
}

func llmConfig(cfg *config.Config) *llm.Config {
	base := llm.DefaultConfig()
	if cfg.Model != "" {
		base = base.WithModel(llm.TierFast, cfg.Model).WithModel(llm.TierQuality, cfg.Model)
	}
	return base
}
