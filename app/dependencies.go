// Package app wires the application dependencies together: database,
// repositories, completion client, agents, governance and handlers.
package app

import (
	"context"
	"fmt"

	"github.com/wayline/suppliersync/config"
	"github.com/wayline/suppliersync/handlers"
	"github.com/wayline/suppliersync/internal/agents"
	"github.com/wayline/suppliersync/internal/cost"
	"github.com/wayline/suppliersync/internal/governance"
	"github.com/wayline/suppliersync/internal/llm"
	"github.com/wayline/suppliersync/internal/orchestrator"
	"github.com/wayline/suppliersync/middleware"
	"github.com/wayline/suppliersync/repositories"
	"github.com/wayline/suppliersync/repositories/postgres"
	"go.uber.org/zap"
)

// Dependencies holds all application dependencies. This is the central
// wiring point for dependency injection.
type Dependencies struct {
	Config *config.Config
	DB     *postgres.DB
	Logger *zap.Logger

	Catalog   repositories.CatalogRepository
	Pricing   repositories.PricingRepository
	Audit     repositories.AuditRepository
	Stats     repositories.StatsRepository
	TxManager repositories.TransactionManager

	LLMClient    llm.Client
	Agents       *agents.Runner
	Engine       *governance.Engine
	Orchestrator *orchestrator.Orchestrator

	OrchestrationHandler *handlers.OrchestrationHandler
	CatalogHandler       *handlers.CatalogHandler
	PricingHandler       *handlers.PricingHandler
	AuditHandler         *handlers.AuditHandler
	StatsHandler         *handlers.StatsHandler
	HealthHandler        *handlers.HealthHandler

	// AuthMiddleware is nil when no API secret is configured
	AuthMiddleware *middleware.AuthMiddleware
}

// NewDependencies creates and wires up all application dependencies
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	if err := deps.initDatabase(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	deps.initRepositories()
	if err := deps.initPipeline(cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize pipeline: %w", err)
	}
	deps.initHandlers(cfg)

	logger.Info("all dependencies initialized")
	return deps, nil
}

// initDatabase opens the connection pool and applies the schema
func (d *Dependencies) initDatabase(ctx context.Context, cfg *config.Config) error {
	db, err := postgres.NewDB(cfg.Database, d.Logger)
	if err != nil {
		return err
	}
	if err := db.InitSchema(ctx); err != nil {
		return err
	}
	d.DB = db

	d.Logger.Info("database connection established",
		zap.String("connection", cfg.Database.LogString()))
	return nil
}

func (d *Dependencies) initRepositories() {
	d.Catalog = postgres.NewCatalogRepository(d.DB, d.Logger)
	d.Pricing = postgres.NewPricingRepository(d.DB, d.Logger)
	d.Audit = postgres.NewAuditRepository(d.DB, d.Logger)
	d.Stats = postgres.NewStatsRepository(d.DB, d.Logger)
	d.TxManager = postgres.NewTransactionManager(d.DB, d.Logger)
}

// initPipeline builds the completion client, the agents and the governance
// engine. A missing API key fails here, at startup.
func (d *Dependencies) initPipeline(cfg *config.Config) error {
	client, err := llm.NewOpenAIClient(cfg.OpenAI, d.Logger)
	if err != nil {
		return err
	}
	d.LLMClient = client
	d.Agents = agents.NewRunner(client, d.Logger)
	d.Engine = governance.NewEngine(cfg.Governance)
	d.Orchestrator = orchestrator.New(
		d.TxManager, d.Catalog, d.Pricing, d.Audit,
		d.Agents, d.Engine, cost.FromConfig(cfg.Cost), d.Logger)
	return nil
}

func (d *Dependencies) initHandlers(cfg *config.Config) {
	d.OrchestrationHandler = handlers.NewOrchestrationHandler(d.Orchestrator, d.Logger)
	d.CatalogHandler = handlers.NewCatalogHandler(d.Catalog, d.Logger)
	d.PricingHandler = handlers.NewPricingHandler(d.Pricing, d.Logger)
	d.AuditHandler = handlers.NewAuditHandler(d.Audit, d.Logger)
	d.StatsHandler = handlers.NewStatsHandler(d.Stats, d.Logger)
	d.HealthHandler = handlers.NewHealthHandler(d.DB, d.Logger)

	if cfg.Auth.JWTSecret != "" {
		d.AuthMiddleware = middleware.NewAuthMiddleware(cfg.Auth.JWTSecret, d.Logger)
	}
}

// Close releases held resources
func (d *Dependencies) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
