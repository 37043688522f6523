package accountloader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gas_checker/internal/domain/entity"
	"gas_checker/internal/pkg/logger"
)

func TestParseAccount(t *testing.T) {
	tests := []struct {
		address string
		ok      bool
		want    entity.ChainType
	}{
		{address: "0x1111111111111111111111111111111111111111", ok: true, want: entity.ChainTypeEVM},
		{address: "DRpbCBMxVnDK7maPM5tGv6MvB3v1sRMC86PZ8okm21hy", ok: true, want: entity.ChainTypeSVM},
		{address: "0x123", ok: false},
		{address: "0000000000000000000000000000000000000000", ok: false},
		{address: "not-an-address", ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.address, func(t *testing.T) {
			account, ok := ParseAccount(tt.address)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, account.ChainType)
		})
	}
}

func TestLoadAccounts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accounts.txt")
	content := `# treasury
0x1111111111111111111111111111111111111111 safe

0x2222222222222222222222222222222222222222
0x1111111111111111111111111111111111111111 metaMask
garbage
DRpbCBMxVnDK7maPM5tGv6MvB3v1sRMC86PZ8okm21hy phantom
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	accounts, err := NewAccountLoader(logger.NewNop()).LoadAccounts(path)
	require.NoError(t, err)
	require.Len(t, accounts, 3)
	assert.Equal(t, "safe", accounts[0].Connector.ID)
	assert.Empty(t, accounts[1].Connector.ID)
	assert.Equal(t, entity.ChainTypeSVM, accounts[2].ChainType)
	assert.Equal(t, "phantom", accounts[2].Connector.ID)

	_, err = NewAccountLoader(logger.NewNop()).LoadAccounts(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}
