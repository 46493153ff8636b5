package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"github.com/xxxsen/promptdeck/internal/config"
	"github.com/xxxsen/promptdeck/internal/handler"
	"github.com/xxxsen/promptdeck/internal/inference"
	"github.com/xxxsen/promptdeck/internal/job"
	"github.com/xxxsen/promptdeck/internal/middleware"
	"github.com/xxxsen/promptdeck/internal/schedule"
	"github.com/xxxsen/promptdeck/internal/semantic"
	"github.com/xxxsen/promptdeck/internal/service"
	"github.com/xxxsen/promptdeck/internal/store"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "promptdeck",
		Short: "local prompt vault with on-device semantic search",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run promptdeck server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				return fmt.Errorf("--config is required")
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logger.Init(
				cfg.LogConfig.File,
				cfg.LogConfig.Level,
				int(cfg.LogConfig.FileCount),
				int(cfg.LogConfig.FileSize),
				int(cfg.LogConfig.KeepDays),
				cfg.LogConfig.Console,
			)
			logutil.GetLogger(context.Background()).Info("config loaded", zap.String("config", configPath))
			return runServer(cfg)
		},
	}

	runCmd.Flags().StringVar(&configPath, "config", "", "path to config.json")
	rootCmd.AddCommand(runCmd)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

func runServer(cfg *config.Config) error {
	logutil.GetLogger(context.Background()).Info(
		"starting server",
		zap.Int("port", cfg.Port),
		zap.String("db_path", cfg.DBPath),
		zap.String("runtime", cfg.Runtime.Provider),
	)

	kv, err := store.OpenSQLite(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer kv.Close()

	settingsService := service.NewSettingsService(kv)
	factory := func(ctx context.Context) (inference.Provider, error) {
		return inference.NewProvider(cfg.Runtime.Provider, cfg.Runtime.Data)
	}
	engine := semantic.NewEngine(factory, cfg.Semantic.Labels, settingsService, cfg.Semantic.CacheSize)
	promptService := service.NewPromptService(kv, engine)

	deps := handler.RouterDeps{
		Prompts:  handler.NewPromptHandler(promptService, settingsService),
		Semantic: handler.NewSemanticHandler(promptService, engine),
	}

	webEngine, err := webapi.NewEngine(
		"/api/v1",
		fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.CORS(cfg.CORSAllow),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Warm the runtime and backfill missing embeddings without blocking startup.
	go func() {
		if engine.EnsureReady(ctx) {
			promptService.RehydrateAsync(ctx)
		}
	}()

	scheduler := schedule.NewCronScheduler()
	if err := scheduler.AddJob(job.NewRehydrateJob(promptService), cfg.Semantic.RehydrateCron); err != nil {
		return err
	}
	scheduler.Start(ctx)
	defer scheduler.Stop()

	logutil.GetLogger(context.Background()).Info("http server listening", zap.String("addr", fmt.Sprintf("0.0.0.0:%d", cfg.Port)))
	go func() {
		if err := webEngine.Run(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(context.Background()).Error("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logutil.GetLogger(context.Background()).Info("server stopping...")
	return nil
}
