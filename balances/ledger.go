// Package balances is the destination ledger that holds spendable
// balances of claimants' accounts.
package balances

import (
	"errors"
	"math/big"
	"sync"
)

var ErrInvalidAmount = errors.New("credit amount must be non-negative")

// Ledger credits accounts identified by their canonical byte encoding.
type Ledger interface {
	// Credit adds amount to who, creating the account when absent.
	Credit(who []byte, amount *big.Int) error
	// BalanceOf returns zero for unknown accounts.
	BalanceOf(who []byte) (*big.Int, error)
}

type MemLedger struct {
	mu       sync.RWMutex
	accounts map[string]*big.Int
}

func NewMemLedger() *MemLedger {
	return &MemLedger{accounts: make(map[string]*big.Int)}
}

func (l *MemLedger) Credit(who []byte, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.accounts[string(who)]
	if !ok {
		b = new(big.Int)
		l.accounts[string(who)] = b
	}
	b.Add(b, amount)

	return nil
}

func (l *MemLedger) BalanceOf(who []byte) (*big.Int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if b, ok := l.accounts[string(who)]; ok {
		return new(big.Int).Set(b), nil
	}
	return new(big.Int), nil
}

func (l *MemLedger) NumAccounts() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return len(l.accounts)
}
