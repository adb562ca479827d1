package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kedra-data/wrc-harvester/internal/app"
	"github.com/kedra-data/wrc-harvester/internal/clock/system"
	"github.com/kedra-data/wrc-harvester/internal/config"
	"github.com/kedra-data/wrc-harvester/internal/hash/sha256"
	"github.com/kedra-data/wrc-harvester/internal/promote"
)

// newPromoteCmd creates the 'promote' subcommand.
func newPromoteCmd() *cobra.Command {
	var (
		startDate string
		endDate   string
	)

	cmd := &cobra.Command{
		Use:   "promote",
		Short: "Promotes landing records in a date range into staging",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			if startDate != "" {
				cfg.Promote.StartDate = startDate
			}
			if endDate != "" {
				cfg.Promote.EndDate = endDate
			}
			return runPromote(cmd.Context(), cfg, logger)
		},
	}

	cmd.Flags().StringVar(&startDate, "start", "", "start date (dd/mm/yyyy)")
	cmd.Flags().StringVar(&endDate, "end", "", "end date (dd/mm/yyyy)")
	return cmd
}

func runPromote(parent context.Context, cfg config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	from, to, err := config.ParseDateRange(cfg.Promote.StartDate, cfg.Promote.EndDate)
	if err != nil {
		return err
	}

	services, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer services.Close(context.Background())

	promoter := promote.New(
		services.Landing,
		services.Staging,
		services.Meta,
		sha256.New(),
		system.New(),
		logger.Named("promote"),
	)
	summary, err := promoter.Run(ctx, from, to)
	if err != nil {
		return err
	}
	logger.Info("promotion summary",
		zap.Int("found", summary.Found),
		zap.Int("promoted", summary.Promoted),
		zap.Int("failed", summary.Failed),
	)
	return nil
}
