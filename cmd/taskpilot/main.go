package main

import (
	"context"
	"fmt"
	"net"
	"os"

	"github.com/alexanderramin/taskpilot/internal/cli"
	"github.com/alexanderramin/taskpilot/internal/config"
	"github.com/alexanderramin/taskpilot/internal/db"
	"github.com/alexanderramin/taskpilot/internal/events"
	"github.com/alexanderramin/taskpilot/internal/httpapi"
	"github.com/alexanderramin/taskpilot/internal/intelligence"
	"github.com/alexanderramin/taskpilot/internal/llm"
	"github.com/alexanderramin/taskpilot/internal/logging"
	"github.com/alexanderramin/taskpilot/internal/repository"
	"github.com/alexanderramin/taskpilot/internal/scheduler"
	"github.com/alexanderramin/taskpilot/internal/service"
	"github.com/mattn/go-isatty"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// configPath pulls --config out of the arguments before cobra runs, since
// the commands are built from the loaded configuration.
func configPath(args []string) string {
	fs := pflag.NewFlagSet("taskpilot", pflag.ContinueOnError)
	fs.ParseErrorsWhitelist.UnknownFlags = true
	fs.Usage = func() {}
	path := fs.String("config", "", "")
	_ = fs.Parse(args)
	return *path
}

func run() error {
	ctx := context.Background()

	cfg, err := config.Load(configPath(os.Args[1:]))
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	database, err := db.Open(ctx, cfg.DB.Driver, cfg.DB.DSN)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.Events.NATSURL != "" {
		nats, err := events.NewNATSPublisher(cfg.Events.NATSURL, cfg.Events.SubjectPrefix, logger)
		if err != nil {
			// Events are best effort; the assistant works without a broker.
			logger.Warn("event publishing disabled", zap.Error(err))
		} else {
			publisher = nats
		}
	}
	defer publisher.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := service.NewMetrics(registry)
	useCaseLog := service.NewLogUseCaseObserver(logger)

	resolver, resolverMode, err := buildResolver(ctx, cfg, logger, metrics)
	if err != nil {
		return err
	}

	projects := service.NewProjectService(
		repository.NewSQLProjectRepo(database),
		db.NewUnitOfWork(database),
		publisher,
		logger,
		useCaseLog, metrics,
	)
	conversations := service.NewConversationService(
		repository.NewSQLConversationRepo(database),
		cfg.Session.TTL,
		cfg.Session.HistoryLimit,
	)
	categorizer := scheduler.NewCategorizer(cfg.Vocabulary)
	policy := intelligence.DefaultConfirmationPolicy()
	policy.ConfirmWrites = cfg.Assign.ConfirmWrites
	assistant := service.NewAssistantService(resolver, projects, conversations, service.AssistantConfig{
		SuggestWhenMissing: cfg.Assign.SuggestWhenMissing,
		DefaultTeams:       cfg.Assign.DefaultTeams,
		Policy:             policy,
		Categorizer:        categorizer,
	}, logger, useCaseLog, metrics)

	app := &cli.App{
		Assistant:     assistant,
		Projects:      projects,
		Conversations: conversations,
		Resolver:      resolver,
		DefaultTeams:  cfg.Assign.DefaultTeams,
		Categorizer:   categorizer,
		HistoryPath:   cli.DefaultHistoryPath(),
		IsInteractive: func() bool {
			return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
		},
	}
	app.Serve = func(ctx context.Context) error {
		handler := httpapi.NewRouter(cfg.HTTP, httpapi.Deps{
			Assistant:     assistant,
			Projects:      projects,
			Conversations: conversations,
			Resolver:      resolver,
			Ping:          func(ctx context.Context) error { return db.Ping(ctx, database) },
			ResolverMode:  resolverMode,
			DefaultTeams:  cfg.Assign.DefaultTeams,
			Categorizer:   categorizer,
			Gatherer:      registry,
			Logger:        logger,
		})
		ln, err := net.Listen("tcp", cfg.HTTP.Addr)
		if err != nil {
			return fmt.Errorf("listening on %s: %w", cfg.HTTP.Addr, err)
		}
		return httpapi.Serve(ctx, ln, handler, logger)
	}

	return cli.NewRootCmd(app).ExecuteContext(ctx)
}

// buildResolver returns the LLM resolver with rule-based fallback when the
// LLM is enabled, and the rule-based parser alone otherwise.
func buildResolver(ctx context.Context, cfg *config.Config, logger *zap.Logger, metrics *service.Metrics) (intelligence.Resolver, string, error) {
	parser := intelligence.NewParser(cfg.Vocabulary)
	if !cfg.LLM.Enabled {
		return parser, "rules", nil
	}

	observers := llm.MultiObserver{metrics}
	if cfg.LLM.LogCalls {
		observers = append(observers, llm.NewLogObserver(logger))
	}
	client, err := llm.NewClient(ctx, cfg.LLM, observers)
	if err != nil {
		return nil, "", fmt.Errorf("building llm client: %w", err)
	}
	resolver := intelligence.NewLLMResolver(client, parser, cfg.Vocabulary,
		intelligence.WithLogger(logger),
		intelligence.WithResolveHook(metrics.ObserveResolve),
	)
	return resolver, "llm:" + string(cfg.LLM.Provider), nil
}
