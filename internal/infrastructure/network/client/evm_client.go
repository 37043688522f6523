package client

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"sync"
	"time"

	"gas_checker/internal/app/port"
	"gas_checker/internal/domain/entity"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
)

// EVMClient implements the port.BlockchainClient interface for EVM-compatible chains.
type EVMClient struct {
	ethClient      *ethclient.Client
	netDef         entity.NetworkDefinition
	rpcCallTimeout time.Duration
}

// ErrInvalidWalletAddress is set on results whose wallet is not a hex EVM address.
var ErrInvalidWalletAddress = errors.New("wallet is not an EVM address")

// ERC20 ABI minimal part for balanceOf
const erc20ABI = `[{"constant":true,"inputs":[{"name":"_owner","type":"address"}],"name":"balanceOf","outputs":[{"name":"balance","type":"uint256"}],"payable":false,"stateMutability":"view","type":"function"}]`

var (
	parsedERC20ABI  abi.ABI
	parsedERC20Once sync.Once
	erc20MethodID   []byte
)

func initParsedERC20ABI() {
	parsedERC20Once.Do(func() {
		var err error
		parsedERC20ABI, err = abi.JSON(strings.NewReader(erc20ABI))
		if err != nil {
			panic(fmt.Sprintf("failed to parse ERC20 ABI: %v", err))
		}
		balanceOfMethod, ok := parsedERC20ABI.Methods["balanceOf"]
		if !ok {
			panic("balanceOf method not found in parsed ERC20 ABI")
		}
		erc20MethodID = balanceOfMethod.ID
	})
}

// NewEVMClient dials the network's RPC endpoints in order and returns a client for the first
// one that answers. httpClient is used as the transport when not nil.
func NewEVMClient(netDef entity.NetworkDefinition, httpClient *http.Client, connectionTimeout time.Duration, rpcCallTimeout time.Duration) (port.BlockchainClient, error) {
	initParsedERC20ABI()
	rpcURLs := make([]string, 0, 1+len(netDef.FallbackRPCURLs))
	if netDef.PrimaryRPCURL != "" {
		rpcURLs = append(rpcURLs, netDef.PrimaryRPCURL)
	}
	rpcURLs = append(rpcURLs, netDef.FallbackRPCURLs...)
	if len(rpcURLs) == 0 {
		return nil, fmt.Errorf("network %s (%d) has no RPC endpoints", netDef.Name, netDef.ChainID)
	}

	var options []rpc.ClientOption
	if httpClient != nil {
		options = append(options, rpc.WithHTTPClient(httpClient))
	}

	var lastErr error
	for _, rpcURL := range rpcURLs {
		ctx, cancel := context.WithTimeout(context.Background(), connectionTimeout)
		rpcClient, err := rpc.DialOptions(ctx, rpcURL, options...)
		cancel()

		if err == nil {
			return &EVMClient{ethClient: ethclient.NewClient(rpcClient), netDef: netDef, rpcCallTimeout: rpcCallTimeout}, nil
		}
		lastErr = fmt.Errorf("failed to connect to RPC %s: %w", rpcURL, err)
	}

	return nil, fmt.Errorf("all RPC connection attempts failed for network %s: %w", netDef.Name, lastErr)
}

// placeholderElem keeps the batch aligned with requests for items that are not sent.
func placeholderElem() rpc.BatchElem {
	return rpc.BatchElem{Method: "eth_chainId", Result: new(hexutil.Big)}
}

func balanceOfCallData(walletAddress string) []byte {
	padded := common.LeftPadBytes(common.HexToAddress(walletAddress).Bytes(), 32)
	callData := make([]byte, 0, len(erc20MethodID)+len(padded))
	callData = append(callData, erc20MethodID...)
	return append(callData, padded...)
}

// GetBalances fetches multiple balances using JSON-RPC batch requests.
func (c *EVMClient) GetBalances(ctx context.Context, requests []entity.BalanceRequestItem) ([]entity.BalanceResultItem, error) {
	if len(requests) == 0 {
		return []entity.BalanceResultItem{}, nil
	}

	batchElems := make([]rpc.BatchElem, len(requests))
	results := make([]entity.BalanceResultItem, len(requests))

	for i, reqItem := range requests {
		results[i] = entity.BalanceResultItem{
			RequestID:     reqItem.ID,
			WalletAddress: reqItem.WalletAddress,
			Token:         reqItem.Token,
			IsNative:      reqItem.Type == entity.NativeBalanceRequest,
		}

		if !common.IsHexAddress(reqItem.WalletAddress) {
			results[i].Error = fmt.Errorf("%w: %q", ErrInvalidWalletAddress, reqItem.WalletAddress)
			batchElems[i] = placeholderElem()
			continue
		}

		switch reqItem.Type {
		case entity.NativeBalanceRequest:
			batchElems[i] = rpc.BatchElem{
				Method: "eth_getBalance",
				Args:   []interface{}{common.HexToAddress(reqItem.WalletAddress), "latest"},
				Result: new(*hexutil.Big),
			}
		case entity.TokenBalanceRequest:
			callArgs := map[string]interface{}{
				"to":   common.HexToAddress(reqItem.Token.Address),
				"data": hexutil.Bytes(balanceOfCallData(reqItem.WalletAddress)),
			}
			batchElems[i] = rpc.BatchElem{
				Method: "eth_call",
				Args:   []interface{}{callArgs, "latest"},
				Result: new(hexutil.Bytes),
			}
		default:
			results[i].Error = fmt.Errorf("unknown balance request type: %v for %s", reqItem.Type, reqItem.Token.Symbol)
			batchElems[i] = placeholderElem()
		}
	}

	rawRPCClient := c.ethClient.Client()

	rpcCallCtx, cancel := context.WithTimeout(ctx, c.rpcCallTimeout)
	defer cancel()

	if err := rawRPCClient.BatchCallContext(rpcCallCtx, batchElems); err != nil {
		return results, fmt.Errorf("RPC batch call failed on %s: %w", c.netDef.Name, err)
	}

	for i, elem := range batchElems {
		if results[i].Error != nil {
			continue
		}
		if elem.Error != nil {
			results[i].Error = fmt.Errorf("failed to fetch %s (%s) for wallet %s: %w",
				requests[i].Token.Symbol, requests[i].Token.Address, requests[i].WalletAddress, elem.Error)
			continue
		}

		switch requests[i].Type {
		case entity.NativeBalanceRequest:
			if result, ok := elem.Result.(**hexutil.Big); ok && result != nil && *result != nil {
				results[i].Balance = (*big.Int)(*result)
			} else {
				results[i].Error = fmt.Errorf("failed to decode native balance for %s: unexpected type or nil result", requests[i].Token.Symbol)
			}
		case entity.TokenBalanceRequest:
			results[i].Balance, results[i].Error = decodeBalanceOf(elem.Result, requests[i].Token.Symbol)
		}

		if results[i].Error == nil && results[i].Balance == nil {
			results[i].Balance = big.NewInt(0)
		}
	}
	return results, nil
}

func decodeBalanceOf(raw interface{}, symbol string) (*big.Int, error) {
	result, ok := raw.(*hexutil.Bytes)
	if !ok || result == nil {
		return nil, fmt.Errorf("failed to decode token balance for %s: unexpected type or nil result", symbol)
	}
	if len(*result) == 0 {
		return big.NewInt(0), nil
	}
	unpacked, err := parsedERC20ABI.Unpack("balanceOf", *result)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack balanceOf result for %s: %w. Raw: %s", symbol, err, hexutil.Encode(*result))
	}
	if len(unpacked) == 0 {
		return nil, fmt.Errorf("balanceOf unpack returned no data for %s", symbol)
	}
	balance, ok := unpacked[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("failed to assert unpacked balanceOf result to *big.Int for %s. Got: %T", symbol, unpacked[0])
	}
	return balance, nil
}

// Definition returns the network definition for this client.
func (c *EVMClient) Definition() entity.NetworkDefinition {
	return c.netDef
}
