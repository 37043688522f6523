package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"gas_checker/internal/app/port"
	"gas_checker/internal/domain/entity"
	"gas_checker/internal/infrastructure/configloader"
	"gas_checker/internal/pkg/metrics"
	"gas_checker/internal/pkg/utils"
)

var errIncompleteBalances = errors.New("balance batch returned incomplete results")

// BalanceService fetches token balances across chains. It implements port.BalanceFetcher.
type BalanceService struct {
	registry       port.ChainRegistry
	clientProvider port.BlockchainClientProvider
	logger         port.Logger
	limiter        *rate.Limiter
	maxConcurrent  int
	maxBatchSize   int
	maxRetries     uint64
	retryDelay     time.Duration
}

// NewBalanceService creates a new BalanceService.
func NewBalanceService(
	registry port.ChainRegistry,
	cp port.BlockchainClientProvider,
	l port.Logger,
	cfg *configloader.Config,
) *BalanceService {
	maxConcurrent := cfg.Performance.MaxConcurrentRoutines
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &BalanceService{
		registry:       registry,
		clientProvider: cp,
		logger:         l,
		limiter:        rate.NewLimiter(rate.Limit(cfg.RPCClient.RequestsPerSecond), cfg.RPCClient.Burst),
		maxConcurrent:  maxConcurrent,
		maxBatchSize:   cfg.RPCClient.MaxBatchSize,
		maxRetries:     uint64(cfg.RPCClient.MaxRetries),
		retryDelay:     time.Duration(cfg.RPCClient.RetryDelayMs) * time.Millisecond,
	}
}

// FetchBalances returns the balances of address for the given tokens. Tokens are
// de-duplicated and grouped per chain; chains are fetched concurrently. A chain that cannot
// be fetched contributes nothing. Only context cancellation is reported as an error.
func (s *BalanceService) FetchBalances(ctx context.Context, address string, tokens []entity.Token) ([]entity.TokenBalance, error) {
	if address == "" || len(tokens) == 0 {
		return []entity.TokenBalance{}, nil
	}

	seen := mapset.NewThreadUnsafeSet[entity.TokenKey]()
	byChain := make(map[uint64][]entity.Token)
	var chainOrder []uint64
	for _, token := range tokens {
		if !seen.Add(token.Key()) {
			continue
		}
		if _, ok := byChain[token.ChainID]; !ok {
			chainOrder = append(chainOrder, token.ChainID)
		}
		byChain[token.ChainID] = append(byChain[token.ChainID], token)
	}

	perChain := make([][]entity.TokenBalance, len(chainOrder))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(s.maxConcurrent)

	for i, chainID := range chainOrder {
		netDef, ok := s.registry.ResolveChain(chainID)
		if !ok {
			s.logger.Warn("Skipping balances of unknown chain", "chainId", chainID, "error", ErrChainNotFound)
			continue
		}
		eg.Go(func() error {
			perChain[i] = s.fetchChainBalances(egCtx, netDef, address, byChain[chainID])
			return nil
		})
	}
	_ = eg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	balances := make([]entity.TokenBalance, 0, len(tokens))
	for _, chainBalances := range perChain {
		balances = append(balances, chainBalances...)
	}
	return balances, nil
}

func (s *BalanceService) fetchChainBalances(ctx context.Context, netDef entity.NetworkDefinition, address string, tokens []entity.Token) []entity.TokenBalance {
	start := time.Now()
	chainLabel := strconv.FormatUint(netDef.ChainID, 10)

	if netDef.ChainType == entity.ChainTypeEVM && !common.IsHexAddress(address) {
		s.logger.Debug("Wallet is not an EVM address, skipping network", "network", netDef.Name, "wallet", address)
		metrics.BalanceFetchDuration.WithLabelValues(chainLabel, "skipped").Observe(time.Since(start).Seconds())
		return nil
	}

	client, err := s.clientProvider.GetClient(netDef)
	if err != nil {
		s.logger.Warn("No balance client for network, skipping", "network", netDef.Name, "chainId", netDef.ChainID, "error", err)
		metrics.BalanceFetchDuration.WithLabelValues(chainLabel, "skipped").Observe(time.Since(start).Seconds())
		return nil
	}

	requests := make([]entity.BalanceRequestItem, 0, len(tokens))
	for _, token := range tokens {
		reqType := entity.TokenBalanceRequest
		if netDef.IsNativeToken(token.Address) {
			reqType = entity.NativeBalanceRequest
		}
		requests = append(requests, entity.BalanceRequestItem{
			ID:            fmt.Sprintf("%s-%d-%s", address, netDef.ChainID, entity.NormalizeAddress(token.Address)),
			Type:          reqType,
			WalletAddress: address,
			Token:         token,
		})
	}

	var balances []entity.TokenBalance
	status := "ok"
	for _, batch := range utils.Batch(requests, s.maxBatchSize) {
		results, err := s.fetchBatchWithRetry(ctx, client, netDef, batch)
		if err != nil {
			status = "partial"
			s.logger.Warn("Balance batch failed after retries", "network", netDef.Name, "batchSize", len(batch), "error", err)
		}
		for _, res := range results {
			if res.Error != nil || res.Balance == nil {
				continue
			}
			balances = append(balances, entity.TokenBalance{
				WalletAddress: address,
				Token:         res.Token,
				Amount:        res.Balance,
			})
		}
	}

	metrics.BalanceFetchDuration.WithLabelValues(chainLabel, status).Observe(time.Since(start).Seconds())
	s.logger.Debug("Fetched balances for network", "network", netDef.Name, "requested", len(requests), "received", len(balances))
	return balances
}

// fetchBatchWithRetry retries a batch until every item has a balance or retries run out.
// The last partial result is returned together with the final error.
func (s *BalanceService) fetchBatchWithRetry(ctx context.Context, client port.BlockchainClient, netDef entity.NetworkDefinition, batch []entity.BalanceRequestItem) ([]entity.BalanceResultItem, error) {
	var last []entity.BalanceResultItem

	operation := func() error {
		if err := s.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}
		results, err := client.GetBalances(ctx, batch)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			return err
		}
		last = results
		for _, res := range results {
			if res.Error != nil {
				return fmt.Errorf("%w: %s: %v", errIncompleteBalances, res.Token.Symbol, res.Error)
			}
		}
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = s.retryDelay
	policy.MaxElapsedTime = 0
	b := backoff.WithContext(backoff.WithMaxRetries(policy, s.maxRetries), ctx)

	notify := func(err error, wait time.Duration) {
		s.logger.Debug("Retrying balance batch", "network", netDef.Name, "wait", wait, "error", err)
	}
	err := backoff.RetryNotify(operation, b, notify)
	return last, err
}
