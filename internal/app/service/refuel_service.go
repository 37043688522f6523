package service

import (
	"context"
	"fmt"
	"math/big"
	"strconv"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"gas_checker/internal/app/port"
	"gas_checker/internal/domain/entity"
	"gas_checker/internal/infrastructure/configloader"
	"gas_checker/internal/pkg/metrics"
)

// RefuelService answers whether a gas top-up of the destination chain should be offered for
// the selected transfer. Recommendations and destination balances are cached.
type RefuelService struct {
	registry     port.ChainRegistry
	fetcher      port.BalanceFetcher
	provider     port.GasRecommendationProvider
	logger       port.Logger
	cache        *gocache.Cache
	group        singleflight.Group
	fetchTimeout time.Duration
}

// NewRefuelService creates a new RefuelService.
func NewRefuelService(
	registry port.ChainRegistry,
	fetcher port.BalanceFetcher,
	provider port.GasRecommendationProvider,
	l port.Logger,
	cfg configloader.GasRecommendationConfig,
) *RefuelService {
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	timeout := time.Duration(cfg.RequestTimeoutMillis) * time.Millisecond
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &RefuelService{
		registry:     registry,
		fetcher:      fetcher,
		provider:     provider,
		logger:       l,
		cache:        gocache.New(ttl, 2*ttl),
		fetchTimeout: timeout,
	}
}

// RecommendationKey returns the cache key of a gas recommendation.
func RecommendationKey(toChainID, fromChainID uint64, fromTokenAddress string) string {
	return fmt.Sprintf("gas-recommendation/%d/%d/%s", toChainID, fromChainID, entity.NormalizeAddress(fromTokenAddress))
}

func balanceKey(chainID uint64, address string) string {
	return fmt.Sprintf("native-balance/%d/%s", chainID, entity.NormalizeAddress(address))
}

// DestinationAddress is the address whose destination balance is checked.
func DestinationAddress(req entity.RefuelRequest) string {
	if req.ToAddress != "" {
		return req.ToAddress
	}
	return req.FromAddress
}

// Recommend fetches whatever is missing and returns the decision.
func (s *RefuelService) Recommend(ctx context.Context, req entity.RefuelRequest) entity.RefuelResult {
	fromChain, toChain, ok := s.resolveChains(req)
	if !ok {
		return entity.RefuelResult{}
	}

	rec := s.loadRecommendation(ctx, req)
	balance := s.loadBalance(ctx, toChain, DestinationAddress(req))
	return s.decide(req, fromChain, toChain, rec, balance, false)
}

// Poll never blocks: with nothing cached yet it starts a background fetch and reports loading.
func (s *RefuelService) Poll(req entity.RefuelRequest) entity.RefuelResult {
	fromChain, toChain, ok := s.resolveChains(req)
	if !ok {
		return entity.RefuelResult{}
	}

	rec, recCached := s.cachedRecommendation(req)
	address := DestinationAddress(req)
	balance, balanceCached := s.cachedBalance(toChain.ChainID, address)
	if address == "" {
		balanceCached = true
	}

	if recCached && balanceCached {
		return s.decide(req, fromChain, toChain, rec, balance, false)
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.fetchTimeout)
		defer cancel()
		if !recCached {
			s.loadRecommendation(ctx, req)
		}
		if !balanceCached {
			s.loadBalance(ctx, toChain, address)
		}
	}()
	return s.decide(req, fromChain, toChain, rec, balance, !recCached)
}

func (s *RefuelService) resolveChains(req entity.RefuelRequest) (entity.NetworkDefinition, entity.NetworkDefinition, bool) {
	toChain, ok := s.registry.ResolveChain(req.ToChainID)
	if !ok {
		s.logger.Debug("Refuel skipped, destination chain unknown", "toChain", req.ToChainID, "error", ErrChainNotFound)
		return entity.NetworkDefinition{}, entity.NetworkDefinition{}, false
	}
	fromChain, ok := s.registry.ResolveChain(req.FromChainID)
	if !ok {
		fromChain = entity.NetworkDefinition{ChainID: req.FromChainID}
	}
	return fromChain, toChain, true
}

func (s *RefuelService) decide(
	req entity.RefuelRequest,
	fromChain, toChain entity.NetworkDefinition,
	rec *entity.GasRecommendation,
	balance *big.Int,
	loading bool,
) entity.RefuelResult {
	enabled := ShouldRefuel(RefuelDecisionInput{
		FromChain:                fromChain,
		ToChain:                  toChain,
		ToAddress:                req.ToAddress,
		Recommendation:           rec,
		DestinationNativeBalance: balance,
	})
	metrics.RefuelDecisions.WithLabelValues(strconv.FormatBool(enabled)).Inc()

	chain := toChain
	result := entity.RefuelResult{
		Enabled:   enabled,
		IsLoading: loading,
		Chain:     &chain,
	}
	if rec != nil {
		available := rec.Available
		result.Available = &available
		if rec.Available {
			result.FromAmount = rec.FromAmount
		}
	}
	return result
}

func (s *RefuelService) cachedRecommendation(req entity.RefuelRequest) (*entity.GasRecommendation, bool) {
	v, found := s.cache.Get(RecommendationKey(req.ToChainID, req.FromChainID, req.FromTokenAddress))
	if !found {
		return nil, false
	}
	return v.(*entity.GasRecommendation), true
}

func (s *RefuelService) loadRecommendation(ctx context.Context, req entity.RefuelRequest) *entity.GasRecommendation {
	if rec, ok := s.cachedRecommendation(req); ok {
		return rec
	}
	key := RecommendationKey(req.ToChainID, req.FromChainID, req.FromTokenAddress)
	ch := s.group.DoChan(key, func() (interface{}, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.fetchTimeout)
		defer cancel()
		rec, err := s.provider.GetRecommendation(fetchCtx, req.ToChainID, req.FromChainID, req.FromTokenAddress)
		if err != nil {
			return nil, err
		}
		s.cache.Set(key, rec, gocache.DefaultExpiration)
		return rec, nil
	})

	select {
	case <-ctx.Done():
		return nil
	case res := <-ch:
		if res.Err != nil {
			s.logger.Warn("Gas recommendation unavailable", "toChain", req.ToChainID, "fromChain", req.FromChainID, "error", res.Err)
			return nil
		}
		return res.Val.(*entity.GasRecommendation)
	}
}

func (s *RefuelService) cachedBalance(chainID uint64, address string) (*big.Int, bool) {
	if address == "" {
		return nil, false
	}
	v, found := s.cache.Get(balanceKey(chainID, address))
	if !found {
		return nil, false
	}
	return v.(*big.Int), true
}

// loadBalance returns nil when the balance cannot be determined.
func (s *RefuelService) loadBalance(ctx context.Context, chain entity.NetworkDefinition, address string) *big.Int {
	if address == "" {
		return nil
	}
	if balance, ok := s.cachedBalance(chain.ChainID, address); ok {
		return balance
	}
	key := balanceKey(chain.ChainID, address)
	ch := s.group.DoChan(key, func() (interface{}, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.fetchTimeout)
		defer cancel()
		balances, err := s.fetcher.FetchBalances(fetchCtx, address, []entity.Token{chain.NativeToken})
		if err != nil {
			return nil, err
		}
		amount := entity.FindBalance(balances, chain.NativeToken.Key())
		if amount != nil {
			s.cache.Set(key, amount, gocache.DefaultExpiration)
		}
		return amount, nil
	})

	select {
	case <-ctx.Done():
		return nil
	case res := <-ch:
		if res.Err != nil {
			s.logger.Warn("Destination balance unavailable", "chainId", chain.ChainID, "error", res.Err)
			return nil
		}
		amount, _ := res.Val.(*big.Int)
		return amount
	}
}
