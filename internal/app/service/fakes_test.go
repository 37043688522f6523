package service

import (
	"context"
	"math/big"
	"sync"
	"sync/atomic"

	"gas_checker/internal/app/port"
	"gas_checker/internal/domain/entity"
	"gas_checker/internal/pkg/logger"
)

const (
	chainA      uint64 = 1
	chainB      uint64 = 137
	chainSolana uint64 = 1151111081099710
	walletAddr         = "0x1111111111111111111111111111111111111111"
	usdcAddr           = "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"
)

var (
	nativeA   = entity.Token{ChainID: chainA, Address: entity.ZeroAddress, Symbol: "ETH", Decimals: 18}
	nativeB   = entity.Token{ChainID: chainB, Address: entity.ZeroAddress, Symbol: "POL", Decimals: 18}
	usdcA     = entity.Token{ChainID: chainA, Address: usdcAddr, Symbol: "USDC", Decimals: 6}
	solNative = entity.Token{ChainID: chainSolana, Address: "11111111111111111111111111111111", Symbol: "SOL", Decimals: 9}
)

var testLogger = logger.NewNop()

type fakeRegistry struct {
	chains map[uint64]entity.NetworkDefinition
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{chains: map[uint64]entity.NetworkDefinition{
		chainA:      {ChainID: chainA, Name: "Ethereum", ChainType: entity.ChainTypeEVM, NativeToken: nativeA},
		chainB:      {ChainID: chainB, Name: "Polygon", ChainType: entity.ChainTypeEVM, NativeToken: nativeB},
		chainSolana: {ChainID: chainSolana, Name: "Solana", ChainType: entity.ChainTypeSVM, NativeToken: solNative},
	}}
}

func (r *fakeRegistry) ResolveChain(chainID uint64) (entity.NetworkDefinition, bool) {
	def, ok := r.chains[chainID]
	return def, ok
}

func (r *fakeRegistry) AllChains() []entity.NetworkDefinition {
	out := make([]entity.NetworkDefinition, 0, len(r.chains))
	for _, def := range r.chains {
		out = append(out, def)
	}
	return out
}

var _ port.ChainRegistry = (*fakeRegistry)(nil)

type fakeFetcher struct {
	mu       sync.Mutex
	balances []entity.TokenBalance
	err      error
	calls    atomic.Int32
	release  chan struct{}
	lastReq  []entity.Token
}

func (f *fakeFetcher) FetchBalances(ctx context.Context, address string, tokens []entity.Token) ([]entity.TokenBalance, error) {
	f.calls.Add(1)
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastReq = tokens
	return f.balances, f.err
}

func balanceOf(token entity.Token, amount int64) entity.TokenBalance {
	return entity.TokenBalance{WalletAddress: walletAddr, Token: token, Amount: big.NewInt(amount)}
}

func gasStep(chainID uint64, token entity.Token, amounts ...string) entity.RouteStep {
	costs := make([]entity.GasCost, 0, len(amounts))
	for _, a := range amounts {
		costs = append(costs, entity.GasCost{Amount: a, Token: token})
	}
	return entity.RouteStep{
		Action:   entity.StepAction{FromChainID: chainID, ToChainID: chainID},
		Estimate: &entity.StepEstimate{GasCosts: costs},
	}
}

func done(step entity.RouteStep) entity.RouteStep {
	step.Execution = &entity.StepExecution{Status: entity.ExecutionStatusDone}
	return step
}

var account = entity.Account{Address: walletAddr, ChainType: entity.ChainTypeEVM, Connector: entity.Connector{ID: "metaMask"}}
