// Package main is the entry point for the syncd daemon.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"metasync/internal/api"
	"metasync/internal/audit"
	"metasync/internal/checkpoint"
	"metasync/internal/config"
	"metasync/internal/connector"
	"metasync/internal/domain"
	"metasync/internal/service/changedetect"
	"metasync/internal/service/mapper"
	"metasync/internal/service/orchestrator"
	"metasync/internal/service/validator"
	"metasync/internal/transform"
)

func main() {
	root := newRootCommand()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var demo bool

	cmd := &cobra.Command{
		Use:   "syncd",
		Short: "Catalog metadata synchronization daemon",
		Long: "syncd watches a source catalog for metadata changes and synchronizes " +
			"them into a target catalog through mapping profiles.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(demo)
		},
	}
	cmd.Flags().BoolVar(&demo, "demo", false, "run against seeded in-memory catalogs")
	return cmd
}

func run(demo bool) error {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)
	for _, warning := range cfg.Warnings {
		logger.Warn(warning)
	}

	sink := audit.NewLogSink(logger.With("component", "audit"))
	transforms := transform.NewRegistry().SeedDefaults()
	m := mapper.New(transforms, sink, logger.With("component", "mapper"))
	detector := changedetect.New(checkpoint.NewMemoryStore(), logger.With("component", "changedetect"))

	orch := orchestrator.New(orchestrator.Config{
		Workers:          cfg.Workers,
		TickInterval:     cfg.TickInterval,
		RetryDelay:       cfg.RetryDelay,
		MaxRetries:       cfg.MaxRetries,
		Retention:        cfg.Retention(),
		RateLimit:        cfg.RateLimitRPS,
		RateBurst:        cfg.RateLimitBurst,
		PropagateDeletes: cfg.PropagateDeletes,
	}, m, detector, sink, logger.With("component", "orchestrator"))

	profiles, rules, err := loadDefinitions(cfg)
	if err != nil {
		return err
	}
	for _, p := range profiles {
		if err := orch.RegisterProfile(p); err != nil {
			return fmt.Errorf("register profile %s: %w", p.ID, err)
		}
	}
	for _, r := range rules {
		orch.RegisterSyncRule(r)
	}

	// Validate every profile up front so misconfigurations surface before
	// the first sweep.
	v := validator.New(m, logger.With("component", "validator"))
	for _, p := range profiles {
		report := v.ValidateProfile(context.Background(), p, nil)
		logger.Info("profile validated", "profile", p.ID, "score", report.OverallScore, "issues", len(report.Issues))
		if !report.Valid {
			logger.Warn("profile has blocking issues", "profile", p.ID)
		}
	}

	if demo {
		seedDemoCatalogs(orch, cfg)
		logger.Info("running in demo mode with in-memory catalogs")
	} else {
		logger.Warn("no catalog connectors registered — wire real connectors before scheduling jobs")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := orch.Start(ctx); err != nil {
		return err
	}
	defer orch.Stop()

	sweeps := orchestrator.NewSweepScheduler(orch, logger.With("component", "sweeps"))
	if err := sweeps.Start(); err != nil {
		return err
	}
	defer sweeps.Stop()

	handler := api.NewHandler(orch, logger.With("component", "api"))
	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("status API listening", "addr", cfg.ListenAddr)
		if serveErr := server.ListenAndServe(); serveErr != nil && serveErr != http.ErrServerClosed {
			logger.Error("status API failed", "error", serveErr)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func loadDefinitions(cfg *config.Config) ([]*domain.MappingProfile, []domain.SyncRule, error) {
	profiles := config.SeedDefaultProfiles(cfg)
	rules := config.SeedDefaultSyncRules(cfg)

	if cfg.ProfilesPath != "" {
		loaded, err := config.LoadProfiles(cfg.ProfilesPath)
		if err != nil {
			return nil, nil, err
		}
		profiles = loaded
	}
	if cfg.SyncRulesPath != "" {
		loaded, err := config.LoadSyncRules(cfg.SyncRulesPath)
		if err != nil {
			return nil, nil, err
		}
		rules = loaded
	}
	return profiles, rules, nil
}

// seedDemoCatalogs registers two in-memory catalogs with a handful of
// sample assets so the daemon has something to synchronize locally.
func seedDemoCatalogs(orch *orchestrator.Orchestrator, cfg *config.Config) {
	now := time.Now()
	source := connector.NewMemory(cfg.SourceSystem)
	source.Seed(
		domain.MetadataAsset{
			AssetID:       "sales-space",
			AssetType:     domain.AssetTypeSpace,
			TechnicalName: "SALES",
			BusinessName:  "Sales",
			Owner:         "sales-team@example.com",
			CreatedAt:     now,
			ModifiedAt:    now,
		},
		domain.MetadataAsset{
			AssetID:       "customer-table",
			AssetType:     domain.AssetTypeTable,
			TechnicalName: "Customer Table",
			Owner:         "sales-team@example.com",
			CreatedAt:     now,
			ModifiedAt:    now,
			Business:      domain.BusinessContext{Tags: []string{"certified"}},
			Schema: domain.SchemaDescriptor{Columns: []domain.ColumnDescriptor{
				{Name: "customer_id", Type: "bigint"},
				{Name: "name", Type: "string"},
				{Name: "created_at", Type: "timestamp", Nullable: true},
			}},
		},
		domain.MetadataAsset{
			AssetID:       "revenue-model",
			AssetType:     domain.AssetTypeAnalyticalModel,
			TechnicalName: "REVENUE",
			CreatedAt:     now,
			ModifiedAt:    now,
			Business: domain.BusinessContext{
				Measures:   []string{"revenue", "margin"},
				Dimensions: []string{"region", "quarter"},
			},
		},
	)
	target := connector.NewMemory(cfg.TargetSystem)

	orch.RegisterConnector(cfg.SourceSystem, source)
	orch.RegisterConnector(cfg.TargetSystem, target)
}
