package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/helmcode/soilguard/pkg/analyzer"
	"github.com/helmcode/soilguard/pkg/config"
	"github.com/helmcode/soilguard/pkg/llm"
	"github.com/helmcode/soilguard/pkg/logger"
	"github.com/helmcode/soilguard/pkg/server"
	"github.com/helmcode/soilguard/pkg/soilhealth"
	"github.com/helmcode/soilguard/pkg/store"
)

func NewServeCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the soil health HTTP API",
		Long: `Serve the land area, soil analysis and alert API backed by PostgreSQL.

Settings come from an optional YAML file, a .env file and SOILGUARD_*
environment variables. Provider API keys are read from ANTHROPIC_API_KEY
or OPENAI_API_KEY.

Examples:
  SOILGUARD_DATABASE_DSN="host=localhost user=soil dbname=soil sslmode=disable" soilguard serve
  soilguard serve --config soilguard.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file")

	return cmd
}

func runServe(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log, err := logger.New(cfg.App.LogLevel, cfg.IsDevelopment())
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	db, err := store.NewPostgres(cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Info("Connected to database")

	client, err := newLLM(cfg.LLM)
	if err != nil {
		log.Warn("LLM unavailable, every analysis will use estimated values", zap.Error(err))
	} else {
		log.Info("LLM configured", zap.String("provider", cfg.LLM.Provider), zap.String("model", client.Model()))
	}

	a := analyzer.NewWithLLM(client, analyzer.WithLogger(log))
	svc := soilhealth.NewService(store.NewRepository(db), a, log)

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := server.NewRouter(server.NewHandler(svc, log), log)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	log.Info("Server exited")
	return nil
}

// newLLM returns a nil client alongside the error so callers can fall back.
func newLLM(c config.LLMConfig) (llm.LLM, error) {
	provider, settings, err := llm.EnvConfig(c.Provider, c.Model)
	if err != nil {
		return nil, err
	}
	settings["base_url"] = c.BaseURL
	if c.Timeout > 0 {
		settings["timeout"] = c.Timeout.String()
	}
	return llm.NewFactory().CreateLLM(provider, settings)
}
