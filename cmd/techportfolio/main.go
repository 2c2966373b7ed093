package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"TechPortfolio/internal/app"
	"TechPortfolio/internal/config"
	"TechPortfolio/internal/logging"
)

type options struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "techportfolio",
		Short:         "Technology portfolio catalogue and recommendation service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", os.Getenv("TECHPORTFOLIO_CONFIG"), "Path to YAML config (or set TECHPORTFOLIO_CONFIG)")

	root.AddCommand(newServeCmd(opts), newImportCmd(opts), newRecommendCmd(opts))
	return root
}

func newServeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the scheduled importer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApplication(cmd.Context(), opts, func(ctx context.Context, application *app.Application, _ *slog.Logger) error {
				return application.Serve(ctx)
			})
		},
	}
}

func newImportCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "import",
		Short: "Scrape the configured listing pages once and store new technologies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApplication(cmd.Context(), opts, func(ctx context.Context, application *app.Application, _ *slog.Logger) error {
				report, err := application.ImportOnce(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "run %s: fetched %d, skipped %d, saved %d\n",
					report.RunID, report.Fetched, report.Skipped, len(report.Saved))
				return nil
			})
		},
	}
}

func newRecommendCmd(opts *options) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "recommend <id>",
		Short: "Print recommendations for a published portfolio item as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApplication(cmd.Context(), opts, func(ctx context.Context, application *app.Application, _ *slog.Logger) error {
				sel, err := application.Recommend(ctx, args[0], limit)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), sel)
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of recommendations (default from config)")
	return cmd
}

func withApplication(ctx context.Context, opts *options, run func(context.Context, *app.Application, *slog.Logger) error) error {
	cfg := config.LoadFile(opts.configPath)
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := application.Close(); err != nil {
			logger.Warn("close application", "error", err)
		}
	}()

	return run(ctx, application, logger)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
