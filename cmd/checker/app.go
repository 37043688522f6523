package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"gas_checker/internal/app/provider"
	"gas_checker/internal/app/service"
	"gas_checker/internal/infrastructure/accountloader"
	"gas_checker/internal/infrastructure/configloader"
	"gas_checker/internal/infrastructure/httpclient"
	clientprovider "gas_checker/internal/infrastructure/network/client"
	networkdefinition "gas_checker/internal/infrastructure/network/definition"
	"gas_checker/internal/infrastructure/routeloader"
	"gas_checker/internal/pkg/logger"
	"gas_checker/internal/pkg/metrics"
	"gas_checker/internal/pkg/tracing"
)

// application holds the wired services shared by every command.
type application struct {
	cfg         *configloader.Config
	zapLogger   *zap.Logger
	registry    *networkdefinition.ChainRegistry
	balances    *service.BalanceService
	sufficiency *service.GasSufficiencyService
	refuel      *service.RefuelService
	targets     *provider.TargetProvider

	shutdownTracer func()
}

func newApplication(ctx context.Context, configPath string) (*application, error) {
	path := configloader.ResolvePath(configPath)
	cfg, err := configloader.Load(path)
	if err != nil {
		return nil, err
	}

	zapLogger, err := logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.Info("Конфигурация успешно загружена.", "path", path)
	logger.Info("Установлен лимит параллельных горутин", "количество", cfg.Performance.MaxConcurrentRoutines)

	metrics.MustRegisterMetrics()

	shutdownTracer, err := tracing.InitTracer(ctx, cfg.Tracing)
	if err != nil {
		logger.Warn("Tracing disabled", "error", err)
	}

	registry := networkdefinition.NewChainRegistry(logger.Named("chain-registry"), cfg.Networks)
	clients := clientprovider.NewEVMClientProvider(cfg, logger.Named("evm-client"))
	balances := service.NewBalanceService(registry, clients, logger.Named("balances"), cfg)
	sufficiency := service.NewGasSufficiencyService(balances, registry, logger.Named("gas-sufficiency"), cfg.Sufficiency)

	recommendationClient := httpclient.NewGasRecommendationClient(
		cfg.GasRecommendation.BaseURL,
		cfg.GasRecommendation.APIKey,
		time.Duration(cfg.GasRecommendation.RequestTimeoutMillis)*time.Millisecond,
		zapLogger.Named("GasRecommendationAPIClient"),
	)
	refuel := service.NewRefuelService(registry, balances, recommendationClient, logger.Named("refuel"), cfg.GasRecommendation)

	targets := provider.NewTargetProvider(
		routeloader.NewRouteLoader(logger.Named("routes")),
		accountloader.NewAccountLoader(logger.Named("accounts")),
		logger.Named("targets"),
	)

	return &application{
		cfg:            cfg,
		zapLogger:      zapLogger,
		registry:       registry,
		balances:       balances,
		sufficiency:    sufficiency,
		refuel:         refuel,
		targets:        targets,
		shutdownTracer: shutdownTracer,
	}, nil
}

func (a *application) Close() {
	if a.shutdownTracer != nil {
		a.shutdownTracer()
	}
	_ = a.zapLogger.Sync()
}
