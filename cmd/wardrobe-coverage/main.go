package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/thinkwright/wardrobe-coverage/internal/analysis"
	"github.com/thinkwright/wardrobe-coverage/internal/cache"
	"github.com/thinkwright/wardrobe-coverage/internal/config"
	"github.com/thinkwright/wardrobe-coverage/internal/loader"
	"github.com/thinkwright/wardrobe-coverage/internal/observability"
	"github.com/thinkwright/wardrobe-coverage/internal/report"
	"github.com/thinkwright/wardrobe-coverage/internal/server"
	"github.com/thinkwright/wardrobe-coverage/internal/store"
	"golang.org/x/term"
)

var version = "dev"

func main() {
	// A missing .env is fine; real environment variables still apply.
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:           "wardrobe-coverage",
		Short:         "Coverage and gap analytics for a garment collection",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Shared flags
	var (
		flagCI       bool
		flagFormat   string
		flagConfig   string
		flagOutput   string
		flagNoPager  bool
		flagLogLevel string
		flagDB       string
		flagAddr     string
		flagPrune    bool
	)

	// ── check command ────────────────────────────────────────────
	checkCmd := &cobra.Command{
		Use:   "check <path>",
		Short: "Analyze a garment file, directory or catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			applyCIDefaults(cmd, &flagFormat, &flagNoPager, flagCI)
			garmentsPath := args[0]

			cfg, err := config.Load(flagConfig, garmentsPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger := cliLogger(cfg, flagLogLevel)

			coll, err := loader.Load(garmentsPath, logger)
			if err != nil {
				return fmt.Errorf("load garments: %w", err)
			}
			if len(coll.Garments) == 0 {
				logger.Warn().Str("path", garmentsPath).Msg("no garments found")
			}
			logger.Info().
				Int("garments", len(coll.Garments)).
				Int("sources", len(coll.Sources)).
				Str("path", garmentsPath).
				Msg("loaded garments")

			universes := config.Options(cfg).Merge(coll.Options)
			rep := analysis.ComputeCoverageReport(coll.Garments, universes)
			verdict := report.Evaluate(rep, thresholdsFromConfig(cfg))

			output := formatReport(rep, verdict, flagFormat)
			if err := writeOutput(output, flagOutput, flagFormat, flagNoPager, logger); err != nil {
				return err
			}

			if flagCI {
				return checkCIResult(verdict)
			}
			return nil
		},
	}
	checkCmd.Flags().BoolVar(&flagCI, "ci", false, "CI mode: JSON output, no pager, exit 1 on failure")
	checkCmd.Flags().StringVar(&flagFormat, "format", "terminal", "Output format: terminal, json, markdown")
	checkCmd.Flags().StringVar(&flagConfig, "config", "", "Path to wardrobe-coverage.yaml config")
	checkCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "Write report to file")
	checkCmd.Flags().BoolVar(&flagNoPager, "no-pager", false, "Disable automatic paging")
	checkCmd.Flags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")

	// ── import command ───────────────────────────────────────────
	importCmd := &cobra.Command{
		Use:   "import <path>",
		Short: "Write garments and enumerated options into a SQLite catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			garmentsPath := args[0]

			cfg, err := config.Load(flagConfig, garmentsPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger := cliLogger(cfg, flagLogLevel)

			dbPath := flagDB
			if dbPath == "" {
				dbPath = config.GetString(config.GetMap(cfg, "catalog"), "path", "")
			}
			if dbPath == "" {
				return fmt.Errorf("no catalog path: pass --db or set catalog.path")
			}

			coll, err := loader.Load(garmentsPath, logger)
			if err != nil {
				return fmt.Errorf("load garments: %w", err)
			}

			s, err := store.Open(dbPath)
			if err != nil {
				return err
			}
			defer s.Close()

			ctx := cmd.Context()
			pruned, err := importCollection(ctx, s, coll, config.Options(cfg).Merge(coll.Options), flagPrune)
			if err != nil {
				return err
			}
			logger.Info().
				Int("garments", len(coll.Garments)).
				Int("pruned", pruned).
				Str("db", dbPath).
				Msg("imported garments")

			// Reports cached for the previous catalog can no longer be hit.
			cacheCfg := config.GetMap(cfg, "cache")
			if config.GetString(cacheCfg, "redis_addr", "") != "" {
				cacheClient := newCache(cacheCfg, logger)
				defer cacheClient.Close()
				purgeReports(ctx, cacheClient, logger)
			}
			return nil
		},
	}
	importCmd.Flags().StringVar(&flagDB, "db", "", "Path to the SQLite catalog (created if missing)")
	importCmd.Flags().BoolVar(&flagPrune, "prune", false, "Delete catalog garments that are not in the source")
	importCmd.Flags().StringVar(&flagConfig, "config", "", "Path to wardrobe-coverage.yaml config")
	importCmd.Flags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")

	// ── serve command ────────────────────────────────────────────
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve coverage reports over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(flagConfig, "")
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			return serve(cmd.Context(), cfg, flagAddr, flagDB, flagLogLevel)
		},
	}
	serveCmd.Flags().StringVar(&flagAddr, "addr", "", "Listen address (default :8080)")
	serveCmd.Flags().StringVar(&flagDB, "db", "", "Path to the SQLite catalog served by GET /api/v1/coverage")
	serveCmd.Flags().StringVar(&flagConfig, "config", "", "Path to wardrobe-coverage.yaml config")
	serveCmd.Flags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")

	root.AddCommand(checkCmd, importCmd, serveCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func serve(ctx context.Context, cfg map[string]any, addr, dbPath, level string) error {
	logCfg := config.GetMap(cfg, "log")
	if level == "" {
		level = config.GetString(logCfg, "level", "info")
	}
	logger := observability.NewLogger(observability.LogConfig{
		Level:       level,
		Format:      config.GetString(logCfg, "format", "json"),
		ServiceName: server.ServiceName,
	})

	serverCfg := config.GetMap(cfg, "server")
	cacheCfg := config.GetMap(cfg, "cache")
	if addr == "" {
		addr = config.GetString(serverCfg, "addr", ":8080")
	}
	if dbPath == "" {
		dbPath = config.GetString(config.GetMap(cfg, "catalog"), "path", "")
	}

	cacheClient := newCache(cacheCfg, logger)
	defer cacheClient.Close()

	var catalog server.Catalog
	if dbPath != "" {
		s, err := store.Open(dbPath)
		if err != nil {
			return err
		}
		defer s.Close()
		catalog = s
	}

	defaults := server.DefaultConfig()
	srv := server.New(logger, cacheClient, catalog, server.Config{
		RequestTimeout: config.GetDuration(serverCfg, "request_timeout", defaults.RequestTimeout),
		CacheTTL:       config.GetDuration(cacheCfg, "ttl", defaults.CacheTTL),
		Options:        config.Options(cfg),
	})

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", addr).Bool("catalog", catalog != nil).Msg("HTTP server listening")
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
		return httpServer.Close()
	}
	logger.Info().Msg("server stopped")
	return nil
}

// importCollection saves every garment of coll and the option lists into s.
// With prune set, stored garments missing from coll are deleted. It returns
// the number of garments deleted.
func importCollection(ctx context.Context, s *store.Store, coll *loader.Collection, opts analysis.OptionUniverses, prune bool) (int, error) {
	keep := make(map[string]bool, len(coll.Garments))
	for _, g := range coll.Garments {
		if err := s.SaveGarment(ctx, g); err != nil {
			return 0, err
		}
		keep[g.ID] = true
	}
	if err := s.SetOptions(ctx, opts); err != nil {
		return 0, err
	}
	if !prune {
		return 0, nil
	}

	stored, err := s.GarmentIDs(ctx)
	if err != nil {
		return 0, err
	}
	pruned := 0
	for _, id := range stored {
		if keep[id] {
			continue
		}
		if err := s.DeleteGarment(ctx, id); err != nil {
			return pruned, err
		}
		pruned++
	}
	return pruned, nil
}

// purgeReports drops every cached coverage report. Failures are logged
// only; the catalog is already written.
func purgeReports(ctx context.Context, c cache.Client, logger zerolog.Logger) {
	if err := c.DeleteByPrefix(ctx, cache.ReportKeyPrefix); err != nil {
		logger.Warn().Err(err).Msg("failed to purge cached reports")
		return
	}
	logger.Info().Msg("purged cached reports")
}

// newCache connects to Redis when an address is configured and falls back
// to an in-memory cache otherwise.
func newCache(cacheCfg map[string]any, logger zerolog.Logger) cache.Client {
	if redisAddr := config.GetString(cacheCfg, "redis_addr", ""); redisAddr != "" {
		client, err := cache.NewRedisClient(cache.RedisConfig{
			Addr:     redisAddr,
			Password: config.GetString(cacheCfg, "redis_password", ""),
			DB:       config.GetInt(cacheCfg, "redis_db", 0),
			Prefix:   config.GetString(cacheCfg, "prefix", "wc:"),
		})
		if err == nil {
			logger.Info().Str("addr", redisAddr).Msg("using redis report cache")
			return client
		}
		logger.Warn().Err(err).Str("addr", redisAddr).Msg("redis unavailable, using in-memory cache")
	}
	return cache.NewMemoryClient(config.GetInt(cacheCfg, "max_entries", 1000))
}

func cliLogger(cfg map[string]any, level string) zerolog.Logger {
	logCfg := config.GetMap(cfg, "log")
	if level == "" {
		level = config.GetString(logCfg, "level", "info")
	}
	return observability.NewLogger(observability.LogConfig{
		Level:  level,
		Format: config.GetString(logCfg, "format", "console"),
	})
}

func thresholdsFromConfig(cfg map[string]any) report.Thresholds {
	thresholds := config.GetMap(cfg, "thresholds")
	defaults := report.DefaultThresholds()
	return report.Thresholds{
		MinCoverage: config.GetFloat(thresholds, "min_coverage", defaults.MinCoverage),
		MaxMissing:  config.GetInt(thresholds, "max_missing", defaults.MaxMissing),
	}
}

func formatReport(rep *analysis.Report, verdict report.Verdict, format string) string {
	switch format {
	case "json":
		return report.FormatJSON(rep, verdict)
	case "markdown":
		return report.FormatMarkdown(rep, verdict)
	default:
		return report.FormatTerminal(rep, verdict)
	}
}

func writeOutput(output, path, format string, noPager bool, logger zerolog.Logger) error {
	// Write to file
	if path != "" {
		if err := os.WriteFile(path, []byte(output), 0644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		logger.Info().Str("path", path).Msg("report written")
		return nil
	}

	// Use pager for terminal format when stdout is a TTY
	if format == "terminal" && !noPager && isTerminal() {
		return outputWithPager(output)
	}

	fmt.Print(output)
	return nil
}

// isTerminal returns true if stdout is connected to a terminal.
func isTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// outputWithPager pipes output through a pager (less -R by default).
func outputWithPager(output string) error {
	pager := os.Getenv("PAGER")
	if pager == "" {
		pager = "less"
	}

	// -R keeps ANSI colors, -X leaves output on screen after quit
	var args []string
	if pager == "less" {
		args = []string{"-R", "-X"}
	}

	cmd := exec.Command(pager, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		fmt.Print(output)
		return nil
	}

	if err := cmd.Start(); err != nil {
		// Pager not available, fall back to direct output
		fmt.Print(output)
		return nil
	}

	io.WriteString(stdin, output)
	stdin.Close()

	// Ignore pager exit errors (e.g. user quits with 'q')
	cmd.Wait()
	return nil
}

func checkCIResult(verdict report.Verdict) error {
	if verdict.Pass {
		return nil
	}
	return fmt.Errorf("check failed: %s", verdict.Failures[0])
}

// applyCIDefaults sets machine-friendly defaults when --ci is used:
// JSON format and no pager, unless the user explicitly overrode them.
func applyCIDefaults(cmd *cobra.Command, format *string, noPager *bool, ci bool) {
	if !ci {
		return
	}
	if !cmd.Flags().Changed("format") {
		*format = "json"
	}
	*noPager = true
}
