package accountloader

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/ethereum/go-ethereum/common"

	"gas_checker/internal/app/port"
	"gas_checker/internal/domain/entity"
)

const base58Alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

// AccountFileLoader implements the port.AccountProvider interface.
//
// The file holds one account per line: "<address> [connectorId]". Blank lines and lines
// starting with # are ignored.
type AccountFileLoader struct {
	logger port.Logger
}

// NewAccountLoader creates a new AccountFileLoader.
func NewAccountLoader(logger port.Logger) port.AccountProvider {
	return &AccountFileLoader{logger: logger}
}

// LoadAccounts reads accounts from path. Invalid and repeated addresses are skipped.
func (l *AccountFileLoader) LoadAccounts(path string) ([]entity.Account, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open account file %s: %w", path, err)
	}
	defer file.Close()

	seen := mapset.NewThreadUnsafeSet[string]()
	var accounts []entity.Account
	scanner := bufio.NewScanner(file)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		account, ok := ParseAccount(fields[0])
		if !ok {
			l.logger.Warn("Skipping invalid account address", "file", path, "line_number", lineNum, "address", fields[0])
			continue
		}
		if len(fields) > 1 {
			account.Connector.ID = fields[1]
		}
		if !seen.Add(entity.NormalizeAddress(account.Address)) {
			continue
		}
		accounts = append(accounts, account)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error scanning account file %s: %w", path, err)
	}

	l.logger.Info("Accounts loaded successfully from file", "count", len(accounts), "path", path)
	return accounts, nil
}

// ParseAccount detects the chain type of address: hex addresses are EVM, base58 addresses of
// Solana length are SVM.
func ParseAccount(address string) (entity.Account, bool) {
	address = strings.TrimSpace(address)
	switch {
	case common.IsHexAddress(address) && strings.HasPrefix(address, "0x"):
		return entity.Account{Address: address, ChainType: entity.ChainTypeEVM}, true
	case isBase58(address) && len(address) >= 32 && len(address) <= 44:
		return entity.Account{Address: address, ChainType: entity.ChainTypeSVM}, true
	default:
		return entity.Account{}, false
	}
}

func isBase58(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !strings.ContainsRune(base58Alphabet, r) {
			return false
		}
	}
	return true
}
