package client

import (
	"context"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gas_checker/internal/domain/entity"
	"gas_checker/internal/infrastructure/configloader"
	"gas_checker/internal/pkg/logger"
)

const testWallet = "0x1111111111111111111111111111111111111111"

type rpcRequest struct {
	ID     jsoniter.RawMessage `json:"id"`
	Method string              `json:"method"`
}

type rpcResponse struct {
	JSONRPC string              `json:"jsonrpc"`
	ID      jsoniter.RawMessage `json:"id"`
	Result  interface{}         `json:"result,omitempty"`
	Error   *rpcError           `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// newRPCServer answers eth_getBalance with 1 ether and eth_call with 42 units, or with an
// execution error when failCalls is set.
func newRPCServer(t *testing.T, failCalls bool) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		var reqs []rpcRequest
		if err := jsoniter.Unmarshal(body, &reqs); err != nil {
			var single rpcRequest
			require.NoError(t, jsoniter.Unmarshal(body, &single))
			reqs = []rpcRequest{single}
		}

		resps := make([]rpcResponse, 0, len(reqs))
		for _, req := range reqs {
			resp := rpcResponse{JSONRPC: "2.0", ID: req.ID}
			switch req.Method {
			case "eth_getBalance":
				resp.Result = "0xde0b6b3a7640000"
			case "eth_call":
				if failCalls {
					resp.Error = &rpcError{Code: -32000, Message: "execution reverted"}
				} else {
					resp.Result = hexutil.Encode(common.LeftPadBytes(big.NewInt(42).Bytes(), 32))
				}
			default:
				resp.Result = "0x1"
			}
			resps = append(resps, resp)
		}
		w.Header().Set("Content-Type", "application/json")
		out, _ := jsoniter.Marshal(resps)
		_, _ = w.Write(out)
	}))
}

func testNetwork(url string) entity.NetworkDefinition {
	return entity.NetworkDefinition{
		ChainID:       1,
		Name:          "Ethereum",
		ChainType:     entity.ChainTypeEVM,
		NativeToken:   entity.Token{ChainID: 1, Address: entity.ZeroAddress, Symbol: "ETH", Decimals: 18},
		PrimaryRPCURL: url,
	}
}

func balanceRequests() []entity.BalanceRequestItem {
	usdc := entity.Token{ChainID: 1, Address: "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48", Symbol: "USDC", Decimals: 6}
	return []entity.BalanceRequestItem{
		{ID: "native", Type: entity.NativeBalanceRequest, WalletAddress: testWallet, Token: entity.Token{ChainID: 1, Address: entity.ZeroAddress, Symbol: "ETH"}},
		{ID: "usdc", Type: entity.TokenBalanceRequest, WalletAddress: testWallet, Token: usdc},
	}
}

func TestEVMClientGetBalances(t *testing.T) {
	srv := newRPCServer(t, false)
	defer srv.Close()

	c, err := NewEVMClient(testNetwork(srv.URL), srv.Client(), time.Second, time.Second)
	require.NoError(t, err)

	results, err := c.GetBalances(context.Background(), balanceRequests())
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.True(t, results[0].IsNative)
	assert.NoError(t, results[0].Error)
	assert.Equal(t, "1000000000000000000", results[0].Balance.String())

	assert.False(t, results[1].IsNative)
	assert.NoError(t, results[1].Error)
	assert.Equal(t, "42", results[1].Balance.String())
	assert.Equal(t, "usdc", results[1].RequestID)
}

func TestEVMClientGetBalancesItemErrors(t *testing.T) {
	srv := newRPCServer(t, true)
	defer srv.Close()

	c, err := NewEVMClient(testNetwork(srv.URL), nil, time.Second, time.Second)
	require.NoError(t, err)

	requests := append(balanceRequests(), entity.BalanceRequestItem{ID: "bogus", Type: entity.BalanceRequestType(99)})
	results, err := c.GetBalances(context.Background(), requests)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.NoError(t, results[0].Error)
	assert.Error(t, results[1].Error)
	assert.Nil(t, results[1].Balance)
	assert.ErrorContains(t, results[2].Error, "unknown balance request type")
}

func TestEVMClientRejectsNonHexWallet(t *testing.T) {
	srv := newRPCServer(t, false)
	defer srv.Close()

	c, err := NewEVMClient(testNetwork(srv.URL), nil, time.Second, time.Second)
	require.NoError(t, err)

	const solanaWallet = "7EcDhSYGxXyscszYEp35KHN8vvw3svAuLKTzXwCFLtV"
	requests := balanceRequests()
	for i := range requests {
		requests[i].WalletAddress = solanaWallet
	}
	results, err := c.GetBalances(context.Background(), requests)
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, res := range results {
		assert.ErrorIs(t, res.Error, ErrInvalidWalletAddress)
		assert.Nil(t, res.Balance)
	}
}

func TestEVMClientNoEndpoints(t *testing.T) {
	_, err := NewEVMClient(entity.NetworkDefinition{ChainID: 5, Name: "Nowhere"}, nil, time.Second, time.Second)
	assert.ErrorContains(t, err, "no RPC endpoints")
}

func TestDecodeBalanceOf(t *testing.T) {
	initParsedERC20ABI()

	raw := hexutil.Bytes(common.LeftPadBytes(big.NewInt(7).Bytes(), 32))
	balance, err := decodeBalanceOf(&raw, "USDC")
	require.NoError(t, err)
	assert.Equal(t, int64(7), balance.Int64())

	empty := hexutil.Bytes{}
	balance, err = decodeBalanceOf(&empty, "USDC")
	require.NoError(t, err)
	assert.Zero(t, balance.Sign())

	_, err = decodeBalanceOf("nope", "USDC")
	assert.Error(t, err)
}

func TestBalanceOfCallData(t *testing.T) {
	initParsedERC20ABI()

	data := balanceOfCallData(testWallet)
	require.Len(t, data, 36)
	assert.Equal(t, "0x70a08231", hexutil.Encode(data[:4]))
	assert.Equal(t, common.HexToAddress(testWallet).Bytes(), data[16:])

	// The shared method id must not be mutated by appends.
	other := balanceOfCallData("0x2222222222222222222222222222222222222222")
	assert.Equal(t, data[:4], other[:4])
	assert.NotEqual(t, data[4:], other[4:])
}

func TestEVMClientProviderGetClient(t *testing.T) {
	srv := newRPCServer(t, false)
	defer srv.Close()

	provider := NewEVMClientProvider(configloader.Default(), logger.NewNop())

	_, err := provider.GetClient(entity.NetworkDefinition{ChainID: 99, Name: "Solana", ChainType: entity.ChainTypeSVM})
	assert.ErrorIs(t, err, ErrUnsupportedChainType)

	first, err := provider.GetClient(testNetwork(srv.URL))
	require.NoError(t, err)
	second, err := provider.GetClient(testNetwork(srv.URL))
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, uint64(1), first.Definition().ChainID)
}
