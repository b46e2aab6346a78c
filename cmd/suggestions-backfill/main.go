package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"marketplace_backend/internal/enhancement/repository"
	"marketplace_backend/internal/enhancement/service"
	"marketplace_backend/platform/config"
	"marketplace_backend/platform/db"
	"marketplace_backend/platform/logger"

	"github.com/spf13/cobra"
)

// CLI flags
var (
	dryRunFlag bool
	limitFlag  int
)

// rootCmd re-normalizes stored suggestion documents from their raw text.
var rootCmd = &cobra.Command{
	Use:   "suggestions-backfill",
	Short: "Rebuild structured AI suggestions from stored raw provider text",
	Long: `Suggestions Backfill re-runs JSON repair and field mapping over every stored
rawSuggestionsText and rewrites the structured suggestion fields. No AI
provider is called, so it is safe to run after the mapping rules change.

Examples:
  suggestions-backfill --dry-run
  suggestions-backfill --limit 100`,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.Flags().BoolVar(&dryRunFlag, "dry-run", false, "Parse and report without writing")
	rootCmd.Flags().IntVar(&limitFlag, "limit", 0, "Maximum documents to process (0 = unlimited)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	svc := service.New(service.Deps{Repo: repository.New(pool), Log: log})
	report, err := svc.BackfillSuggestions(ctx, dryRunFlag, limitFlag)
	if err != nil {
		log.Error("suggestion backfill failed", "error", err, "scanned", report.Scanned, "updated", report.Updated)
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "scanned=%d updated=%d empty=%d dry_run=%t\n",
		report.Scanned, report.Updated, report.Empty, dryRunFlag)
	return nil
}
