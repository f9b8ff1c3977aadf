package providers

import (
	"sync"
	"tsd/internal/models"
)

// TransferProviderInterface moves value between accounts. It stands in for
// the external settlement system: a transfer either commits in full or
// fails with no effect.
type TransferProviderInterface interface {
	Transfer(token, from, to string, amount int64) error
	Deposit(token, account string, amount int64) error
	Balance(token, account string) int64
	Snapshot() map[string]map[string]int64
	Restore(balances map[string]map[string]int64)
}

// BalanceBook is an in-memory double-entry balance table keyed by token and
// account. Balances never go negative.
type BalanceBook struct {
	mu       sync.RWMutex
	balances map[string]map[string]int64
}

func NewBalanceBook() *BalanceBook {
	return &BalanceBook{balances: make(map[string]map[string]int64)}
}

func (b *BalanceBook) Transfer(token, from, to string, amount int64) error {
	if amount <= 0 {
		return models.ErrInvalidAmount
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	accounts := b.balances[token]
	if accounts == nil || accounts[from] < amount {
		return models.ErrInsufficientFunds
	}
	accounts[from] -= amount
	accounts[to] += amount
	return nil
}

func (b *BalanceBook) Deposit(token, account string, amount int64) error {
	if amount <= 0 {
		return models.ErrInvalidAmount
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.balances[token] == nil {
		b.balances[token] = make(map[string]int64)
	}
	b.balances[token][account] += amount
	return nil
}

func (b *BalanceBook) Balance(token, account string) int64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.balances[token][account]
}

func (b *BalanceBook) Snapshot() map[string]map[string]int64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make(map[string]map[string]int64, len(b.balances))
	for token, accounts := range b.balances {
		cp := make(map[string]int64, len(accounts))
		for acc, bal := range accounts {
			cp[acc] = bal
		}
		out[token] = cp
	}
	return out
}

func (b *BalanceBook) Restore(balances map[string]map[string]int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.balances = make(map[string]map[string]int64, len(balances))
	for token, accounts := range balances {
		cp := make(map[string]int64, len(accounts))
		for acc, bal := range accounts {
			cp[acc] = bal
		}
		b.balances[token] = cp
	}
}

func NewTransferProvider() *BalanceBook {
	return NewBalanceBook()
}
