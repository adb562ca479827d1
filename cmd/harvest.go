package cmd

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kedra-data/wrc-harvester/internal/api"
	"github.com/kedra-data/wrc-harvester/internal/app"
	"github.com/kedra-data/wrc-harvester/internal/config"
	collyfetcher "github.com/kedra-data/wrc-harvester/internal/fetcher/colly"
	"github.com/kedra-data/wrc-harvester/internal/hash/sha256"
	"github.com/kedra-data/wrc-harvester/internal/id/uuid"
	"github.com/kedra-data/wrc-harvester/internal/ingest"
	"github.com/kedra-data/wrc-harvester/internal/planner"
	"github.com/kedra-data/wrc-harvester/internal/walker"
)

// newHarvestCmd creates the 'harvest' subcommand. Flags override the
// corresponding config values.
func newHarvestCmd() *cobra.Command {
	var (
		startDate     string
		endDate       string
		query         string
		bodyKeywords  []string
		partitionDays int
	)

	cmd := &cobra.Command{
		Use:   "harvest",
		Short: "Crawls the document search over a date range and lands results",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			if startDate != "" {
				cfg.Harvest.StartDate = startDate
			}
			if endDate != "" {
				cfg.Harvest.EndDate = endDate
			}
			if query != "" {
				cfg.Harvest.Query = query
			}
			if len(bodyKeywords) > 0 {
				cfg.Harvest.BodyKeywords = bodyKeywords
			}
			if partitionDays > 0 {
				cfg.Harvest.PartitionDays = partitionDays
			}
			return runHarvest(cmd.Context(), cfg, logger)
		},
	}

	cmd.Flags().StringVar(&startDate, "start", "", "start date (dd/mm/yyyy)")
	cmd.Flags().StringVar(&endDate, "end", "", "end date (dd/mm/yyyy)")
	cmd.Flags().StringVar(&query, "query", "", "free-text search term")
	cmd.Flags().StringSliceVar(&bodyKeywords, "body", nil, "adjudicating-body keywords")
	cmd.Flags().IntVar(&partitionDays, "partition-days", 0, "date window width in days")
	return cmd
}

func runHarvest(parent context.Context, cfg config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	from, to, err := config.ParseDateRange(cfg.Harvest.StartDate, cfg.Harvest.EndDate)
	if err != nil {
		return err
	}

	// The plan is validated before any service is dialed or fetch issued.
	parts, err := planner.New(cfg.Harvest.BaseURL).Plan(planner.Request{
		StartDate:     from,
		EndDate:       to,
		Query:         cfg.Harvest.Query,
		BodyKeywords:  cfg.Harvest.BodyKeywords,
		PartitionDays: cfg.Harvest.PartitionDays,
	})
	if err != nil {
		return err
	}

	services, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer services.Close(context.Background())

	if cfg.Server.Enabled {
		srv := api.New(cfg.Server.Port, logger.Named("api"))
		srv.Start()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("metrics server shutdown", zap.Error(err))
			}
		}()
	}

	runID, err := uuid.New().NewID()
	if err != nil {
		return err
	}
	logger.Info("harvest started",
		zap.String("run_id", runID),
		zap.Int("partitions", len(parts)),
		zap.String("query", cfg.Harvest.Query),
	)

	ingestor := ingest.New(
		services.Landing,
		services.Meta,
		sha256.New(),
		services.Publisher,
		ingest.Config{Topic: cfg.Publisher.Topic, RunID: runID},
		logger.Named("ingest"),
	)
	fetcher := collyfetcher.New(collyfetcher.Config{
		UserAgent: cfg.Harvest.UserAgent,
		Timeout:   cfg.FetchTimeout(),
	})
	walk := walker.New(fetcher, ingestor, walker.Config{
		PageParam:            cfg.Harvest.PageParam,
		FollowConcurrency:    cfg.Harvest.FollowConcurrency,
		PartitionConcurrency: cfg.Harvest.PartitionConcurrency,
	}, logger.Named("walker"))

	if err := walk.Run(ctx, parts); err != nil {
		return err
	}
	logger.Info("harvest finished", zap.String("run_id", runID))
	return nil
}
