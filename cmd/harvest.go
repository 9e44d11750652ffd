package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ldes-tools/harvester/internal/api"
	"github.com/ldes-tools/harvester/internal/app"
	"github.com/ldes-tools/harvester/internal/clock/system"
	"github.com/ldes-tools/harvester/internal/config"
	collyfetcher "github.com/ldes-tools/harvester/internal/fetcher/colly"
	"github.com/ldes-tools/harvester/internal/harvester"
	"github.com/ldes-tools/harvester/internal/id/uuid"
	"github.com/ldes-tools/harvester/internal/metrics"
	"github.com/ldes-tools/harvester/internal/sink"
	"github.com/ldes-tools/harvester/internal/state"
)

// newHarvestCmd creates and configures the 'harvest' subcommand.
func newHarvestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "harvest <url>",
		Short: "Harvests an LDES endpoint into the cache directory",
		Long: `Fetches the given LDES endpoint, follows its page relations, and caches
every member as an N-Triples file named by the digest of its identity.
A state file in the cache directory makes the harvest resumable.`,
		Args: cobra.ExactArgs(1),
		RunE: runHarvest,
	}

	cmd.Flags().String("cache-dir", "", "directory for member artifacts and state (default: user cache dir)")
	cmd.Flags().Bool("no-resume", false, "ignore saved state and start fresh")

	return cmd
}

func runHarvest(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if dir, _ := cmd.Flags().GetString("cache-dir"); dir != "" {
		cfg.CacheDir = dir
	}
	if noResume, _ := cmd.Flags().GetBool("no-resume"); noResume {
		cfg.Resume = false
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialize application services: %w", err)
	}
	defer application.Close()
	logger := application.Logger()

	metrics.Init()

	retry := harvester.NewRetryPolicy(cfg.HTTP.MaxRetries, cfg.HTTP.BackoffBase)
	fetcher := collyfetcher.New(collyfetcher.Config{
		UserAgent: cfg.HTTP.UserAgent,
		Timeout:   cfg.HTTP.RequestTimeout,
	}, retry, logger)
	memberSink := sink.NewNTriplesSink(sink.NewJSONLDCodec(), application.Storage(), logger)
	stateStore := state.NewFileStore(cfg.CacheDir, logger)

	engine := harvester.NewEngine(
		harvester.Config{
			Resume:          cfg.Resume,
			CheckpointEvery: cfg.Harvest.CheckpointEvery,
		},
		fetcher,
		memberSink,
		stateStore,
		application.Registry(),
		application.Notifier(),
		uuid.New(),
		system.New(),
		logger,
	)

	if cfg.Server.Addr != "" {
		statusSrv := api.New(cfg.Server.Addr, engine, logger)
		statusSrv.Start()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := statusSrv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("Failed to shut down status server", zap.Error(err))
			}
		}()
	}

	if err := engine.Run(ctx, args[0]); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Warn("Harvest interrupted by user")
			return err
		}
		return fmt.Errorf("harvest: %w", err)
	}
	return nil
}
