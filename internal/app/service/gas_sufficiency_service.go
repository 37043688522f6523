package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"gas_checker/internal/app/port"
	"gas_checker/internal/domain/entity"
	"gas_checker/internal/infrastructure/configloader"
	"gas_checker/internal/pkg/metrics"
	"gas_checker/internal/pkg/tracing"
)

// GasSufficiencyService checks whether an account can pay the gas of a route's pending steps.
// Results are cached per (account, route) for one refetch interval and concurrent identical
// checks share a single evaluation.
type GasSufficiencyService struct {
	fetcher  port.BalanceFetcher
	registry port.ChainRegistry
	logger   port.Logger
	cfg      configloader.SufficiencyConfig
	cache    *gocache.Cache
	group    singleflight.Group
}

// NewGasSufficiencyService creates a new GasSufficiencyService.
func NewGasSufficiencyService(
	fetcher port.BalanceFetcher,
	registry port.ChainRegistry,
	l port.Logger,
	cfg configloader.SufficiencyConfig,
) *GasSufficiencyService {
	if cfg.RefetchInterval <= 0 {
		cfg.RefetchInterval = 30 * time.Second
	}
	if cfg.RefuelTool == "" {
		cfg.RefuelTool = DefaultRefuelTool
	}
	return &GasSufficiencyService{
		fetcher:  fetcher,
		registry: registry,
		logger:   l,
		cfg:      cfg,
		cache:    gocache.New(cfg.RefetchInterval, 2*cfg.RefetchInterval),
	}
}

// RefetchInterval returns how long a result stays fresh.
func (s *GasSufficiencyService) RefetchInterval() time.Duration {
	return s.cfg.RefetchInterval
}

// CheckKey returns the cache key of a check.
func CheckKey(address, routeID string) string {
	return fmt.Sprintf("gas-sufficiency-check/%s/%s", strings.ToLower(address), routeID)
}

// ResolveAccount marks the account as gas sponsored when its connector is configured as such.
func (s *GasSufficiencyService) ResolveAccount(account entity.Account) entity.Account {
	if !account.Connector.GasSponsored && s.cfg.IsSponsoredConnector(account.Connector.ID) {
		account.Connector.GasSponsored = true
	}
	return account
}

// Summarize returns the aggregated gas costs of route for account.
func (s *GasSufficiencyService) Summarize(account entity.Account, route entity.Route) *entity.GasCostSummary {
	return AggregateGasCosts(route, s.ResolveAccount(account), s.cfg.RefuelTool)
}

// Check returns the insufficient gas buckets of route for account.
// Balance fetch failures are logged and yield an empty result.
func (s *GasSufficiencyService) Check(ctx context.Context, account entity.Account, route *entity.Route) ([]entity.GasSufficiency, error) {
	if !account.IsConnected() || route == nil {
		return nil, ErrCheckDisabled
	}

	key := CheckKey(account.Address, route.ID)
	if cached, found := s.cache.Get(key); found {
		metrics.SufficiencyChecks.WithLabelValues("cached").Inc()
		return cached.([]entity.GasSufficiency), nil
	}

	account = s.ResolveAccount(account)
	routeCopy := *route
	ch := s.group.DoChan(key, func() (interface{}, error) {
		// Shared by every waiter, so it must not die with the first caller's context.
		evalCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.RefetchInterval)
		defer cancel()
		results, cacheable := s.evaluate(evalCtx, account, routeCopy)
		if cacheable {
			s.cache.Set(key, results, gocache.DefaultExpiration)
		}
		return results, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]entity.GasSufficiency), nil
	}
}

// Invalidate drops the cached result of (address, routeID).
func (s *GasSufficiencyService) Invalidate(address, routeID string) {
	s.cache.Delete(CheckKey(address, routeID))
}

func (s *GasSufficiencyService) evaluate(ctx context.Context, account entity.Account, route entity.Route) ([]entity.GasSufficiency, bool) {
	ctx, span := tracing.Tracer().Start(ctx, "GasSufficiencyService.evaluate",
		trace.WithAttributes(
			attribute.String("route.id", route.ID),
			attribute.Int64("route.from_chain", int64(route.FromChainID)),
			attribute.Int64("route.to_chain", int64(route.ToChainID)),
		))
	defer span.End()

	summary := AggregateGasCosts(route, account, s.cfg.RefuelTool)
	if summary.Len() == 0 {
		metrics.SufficiencyChecks.WithLabelValues("ok").Inc()
		return []entity.GasSufficiency{}, true
	}

	balances, err := s.fetcher.FetchBalances(ctx, account.Address, summary.Tokens())
	if err != nil {
		tracing.RecordError(ctx, err)
		s.logger.Warn("Balance fetch failed, skipping gas sufficiency check", "route", route.ID, "error", err)
		metrics.SufficiencyChecks.WithLabelValues("fail_open").Inc()
		return []entity.GasSufficiency{}, false
	}
	if len(balances) == 0 {
		s.logger.Debug("No balances returned, skipping gas sufficiency check", "route", route.ID)
		metrics.SufficiencyChecks.WithLabelValues("fail_open").Inc()
		return []entity.GasSufficiency{}, false
	}

	results := EvaluateSufficiency(route, summary, balances, s.registry)
	span.SetAttributes(attribute.Int("insufficient.count", len(results)))
	if len(results) == 0 {
		metrics.SufficiencyChecks.WithLabelValues("ok").Inc()
		return results, true
	}

	metrics.SufficiencyChecks.WithLabelValues("insufficient").Inc()
	for _, r := range results {
		metrics.InsufficientChains.WithLabelValues(strconv.FormatUint(r.Token.ChainID, 10)).Inc()
		s.logger.Info("Insufficient gas balance",
			"route", route.ID, "chainId", r.Token.ChainID, "token", r.Token.Symbol,
			"required", r.GasAmount.String(), "missing", r.InsufficientAmount.String())
	}
	return results, true
}
