package providers

import (
	"testing"
	"tsd/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBalanceBook_DepositAndBalance(t *testing.T) {
	b := NewBalanceBook()

	require.NoError(t, b.Deposit("usdc", "alice", 1000))
	assert.Equal(t, int64(1000), b.Balance("usdc", "alice"))
	assert.Equal(t, int64(0), b.Balance("usdc", "bob"))
	assert.Equal(t, int64(0), b.Balance("dai", "alice"))
}

func TestBalanceBook_Transfer(t *testing.T) {
	b := NewBalanceBook()
	require.NoError(t, b.Deposit("usdc", "alice", 1000))

	require.NoError(t, b.Transfer("usdc", "alice", "bob", 300))
	assert.Equal(t, int64(700), b.Balance("usdc", "alice"))
	assert.Equal(t, int64(300), b.Balance("usdc", "bob"))
}

func TestBalanceBook_TransferInsufficient(t *testing.T) {
	b := NewBalanceBook()
	require.NoError(t, b.Deposit("usdc", "alice", 100))

	err := b.Transfer("usdc", "alice", "bob", 101)
	assert.ErrorIs(t, err, models.ErrInsufficientFunds)

	// No partial effect.
	assert.Equal(t, int64(100), b.Balance("usdc", "alice"))
	assert.Equal(t, int64(0), b.Balance("usdc", "bob"))
}

func TestBalanceBook_TransferUnknownToken(t *testing.T) {
	b := NewBalanceBook()
	err := b.Transfer("dai", "alice", "bob", 1)
	assert.ErrorIs(t, err, models.ErrInsufficientFunds)
}

func TestBalanceBook_NonPositiveAmounts(t *testing.T) {
	b := NewBalanceBook()
	require.NoError(t, b.Deposit("usdc", "alice", 100))

	assert.ErrorIs(t, b.Transfer("usdc", "alice", "bob", 0), models.ErrInvalidAmount)
	assert.ErrorIs(t, b.Transfer("usdc", "alice", "bob", -5), models.ErrInvalidAmount)
	assert.ErrorIs(t, b.Deposit("usdc", "alice", 0), models.ErrInvalidAmount)
	assert.ErrorIs(t, b.Deposit("usdc", "alice", -5), models.ErrInvalidAmount)
}

func TestBalanceBook_SnapshotRestore(t *testing.T) {
	b := NewBalanceBook()
	require.NoError(t, b.Deposit("usdc", "alice", 100))
	require.NoError(t, b.Deposit("dai", "bob", 200))

	snap := b.Snapshot()

	b2 := NewBalanceBook()
	b2.Restore(snap)
	assert.Equal(t, int64(100), b2.Balance("usdc", "alice"))
	assert.Equal(t, int64(200), b2.Balance("dai", "bob"))

	// The snapshot is a copy, not a view.
	require.NoError(t, b.Deposit("usdc", "alice", 50))
	assert.Equal(t, int64(100), b2.Balance("usdc", "alice"))
}

func TestBalanceBook_ConservationAcrossTransfers(t *testing.T) {
	b := NewBalanceBook()
	require.NoError(t, b.Deposit("usdc", "alice", 1000))

	require.NoError(t, b.Transfer("usdc", "alice", "custody", 600))
	require.NoError(t, b.Transfer("usdc", "custody", "bob", 250))
	require.NoError(t, b.Transfer("usdc", "custody", "alice", 350))

	total := b.Balance("usdc", "alice") + b.Balance("usdc", "bob") + b.Balance("usdc", "custody")
	assert.Equal(t, int64(1000), total)
}
