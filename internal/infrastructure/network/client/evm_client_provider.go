package client

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"gas_checker/internal/app/port"
	"gas_checker/internal/domain/entity"
	"gas_checker/internal/infrastructure/configloader"

	"github.com/hashicorp/go-retryablehttp"
)

// ErrUnsupportedChainType is returned for networks without a balance client implementation.
var ErrUnsupportedChainType = errors.New("unsupported chain type")

// evmClientProvider implements the port.BlockchainClientProvider interface.
type evmClientProvider struct {
	clients           map[uint64]port.BlockchainClient
	mu                sync.Mutex
	logger            port.Logger
	httpClient        *http.Client
	connectionTimeout time.Duration
	rpcCallTimeout    time.Duration
}

// NewEVMClientProvider creates a new EVMClientProvider. RPC traffic goes through a
// retrying HTTP transport configured from rpcClient settings.
func NewEVMClientProvider(cfg *configloader.Config, logger port.Logger) port.BlockchainClientProvider {
	return &evmClientProvider{
		clients:           make(map[uint64]port.BlockchainClient),
		logger:            logger,
		httpClient:        newRetryingHTTPClient(cfg.RPCClient, logger),
		connectionTimeout: time.Duration(cfg.RPCClient.ConnectionTimeoutSeconds) * time.Second,
		rpcCallTimeout:    time.Duration(cfg.RPCClient.CallTimeoutSeconds) * time.Second,
	}
}

func newRetryingHTTPClient(cfg configloader.RPCClientConfig, logger port.Logger) *http.Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = cfg.MaxRetries
	retryClient.RetryWaitMin = time.Duration(cfg.RetryDelayMs) * time.Millisecond
	retryClient.RetryWaitMax = 4 * retryClient.RetryWaitMin
	retryClient.HTTPClient.Timeout = time.Duration(cfg.CallTimeoutSeconds) * time.Second
	// port.Logger satisfies retryablehttp.LeveledLogger.
	retryClient.Logger = logger
	return retryClient.StandardClient()
}

// GetClient retrieves a blockchain client for the given network definition.
// It caches clients to avoid reconnecting repeatedly.
func (p *evmClientProvider) GetClient(netDef entity.NetworkDefinition) (port.BlockchainClient, error) {
	if netDef.ChainType != entity.ChainTypeEVM {
		return nil, fmt.Errorf("%w: %s on %s", ErrUnsupportedChainType, netDef.ChainType, netDef.Name)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if client, exists := p.clients[netDef.ChainID]; exists {
		return client, nil
	}

	p.logger.Info("Creating new EVM client", "network", netDef.Name, "rpc_primary", netDef.PrimaryRPCURL)
	newClient, err := NewEVMClient(netDef, p.httpClient, p.connectionTimeout, p.rpcCallTimeout)
	if err != nil {
		p.logger.Error("Failed to create EVM client", "network", netDef.Name, "error", err)
		return nil, fmt.Errorf("failed to create EVM client for %s: %w", netDef.Name, err)
	}

	p.clients[netDef.ChainID] = newClient
	return newClient, nil
}
