package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ops-desk/mission-control/internal/ai"
	"github.com/ops-desk/mission-control/internal/ai/gemini"
	"github.com/ops-desk/mission-control/internal/delegate"
	"github.com/ops-desk/mission-control/internal/jobposting"
	"github.com/ops-desk/mission-control/internal/logger"
	"github.com/ops-desk/mission-control/internal/profile"
	"github.com/ops-desk/mission-control/internal/qa"
	"github.com/ops-desk/mission-control/internal/queue"
	"github.com/ops-desk/mission-control/internal/secrets"
	"github.com/ops-desk/mission-control/internal/server"
	"github.com/ops-desk/mission-control/internal/store"
	"github.com/ops-desk/mission-control/internal/tailoring"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the mission-control HTTP server",
	Run: func(cmd *cobra.Command, _ []string) {
		serve(cmd)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("addr", "a", "", "listen address, overrides server.addr from the config")

	viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
}

// serve constructs every component once and hands them to the HTTP surface.
func serve(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting mission-control", zap.String("version", version))

	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	st, err := store.Open(config.Storage.DatabaseFile, logger)
	if err != nil {
		logger.Fatal("opening storage", zap.Error(err))
	}

	q := queue.New(config.Storage.QueueFile, logger)
	runner := delegate.NewRunner(logger)
	profiles := profile.NewLoader(config.MasterProfile, logger)
	postings := jobposting.NewLoader(logger)

	drafter, reviewer := newDelegates(ctx, config.AI, logger)

	orchestrator := tailoring.NewOrchestrator(
		postings,
		profiles,
		drafter,
		runner,
		st.History(),
		q,
		logger,
	)

	srv := server.New(server.Deps{
		Orchestrator: orchestrator,
		Renderer:     tailoring.NewRenderer(config.Server.PublicDir, logger),
		QA:           qa.NewService(st.QA(), runner, reviewer, logger),
		Queue:        q,
		History:      st.History(),
		Tasks:        st.Tasks(),
		Runner:       runner,
		PublicDir:    config.Server.PublicDir,
		Logger:       logger,
	})

	if err := srv.Run(config.Server.Addr); err != nil {
		logger.Fatal("http server stopped", zap.Error(err))
	}
}

// newDelegates builds the AI drafting and reviewing clients. Both come back
// nil when AI is disabled or misconfigured; the pipeline then runs on its
// deterministic fallbacks.
func newDelegates(ctx context.Context, cfg *AIConfig, logger *zap.Logger) (ai.Drafter, ai.Reviewer) {
	if cfg == nil || !cfg.Enabled {
		logger.Info("ai delegation disabled, deterministic fallbacks only")
		return nil, nil
	}

	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != "gemini" {
		logger.Warn("unsupported ai provider, delegation disabled", zap.String("provider", cfg.Provider))
		return nil, nil
	}

	if cfg.Gemini == nil {
		logger.Warn("gemini configuration missing, delegation disabled")
		return nil, nil
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: cfg.Gemini.APIKeyFile,
		Env:  "GEMINI_API_KEY",
	})
	if err != nil {
		logger.Warn("gemini api key unavailable, delegation disabled",
			zap.Error(err),
			zap.String("hint", "set ai.gemini.api-key-file or GEMINI_API_KEY"),
		)
		return nil, nil
	}

	genLogger := logger.With(
		zap.String("provider", "gemini"),
		zap.String("model", cfg.Gemini.Model),
		zap.Int("ai_retry_attempts", cfg.Gemini.MaxRetries),
	)

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model, cfg.Gemini.MaxRetries, genLogger)
	if err != nil {
		logger.Warn("building gemini client failed, delegation disabled", zap.Error(err))
		return nil, nil
	}

	return gemini.NewDrafter(generator, cfg.Gemini.MaxLogLength, genLogger),
		gemini.NewReviewer(generator, cfg.Gemini.MaxLogLength, genLogger)
}
