package state

import (
	"math/big"
	"sync"

	ethcommon "github.com/ethereum/go-ethereum/common"
)

// MemStore is an in-memory ClaimStore.
type MemStore struct {
	mu     sync.RWMutex
	claims map[ethcommon.Address]*big.Int
	total  *big.Int
	seeded bool
}

func NewMemStore() *MemStore {
	return &MemStore{
		claims: make(map[ethcommon.Address]*big.Int),
		total:  new(big.Int),
	}
}

func (m *MemStore) GetClaim(addr ethcommon.Address) (*big.Int, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	b, ok := m.claims[addr]
	if !ok {
		return nil, false, nil
	}
	return new(big.Int).Set(b), true, nil
}

func (m *MemStore) GetTotal() (*big.Int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return new(big.Int).Set(m.total), nil
}

func (m *MemStore) GetClaims() ([]*Claim, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	claims := make([]*Claim, 0, len(m.claims))
	for addr, b := range m.claims {
		claims = append(claims, &Claim{Address: addr, Balance: new(big.Int).Set(b)})
	}
	return claims, nil
}

func (m *MemStore) TakeClaim(addr ethcommon.Address) (*big.Int, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.claims[addr]
	if !ok {
		return nil, false, nil
	}
	if m.total.Cmp(b) < 0 {
		return nil, false, ErrInternalInvariantViolation
	}

	delete(m.claims, addr)
	m.total.Sub(m.total, b)

	return b, true, nil
}

func (m *MemStore) SeedGenesis(claims []*Claim) error {
	normalized, total, err := normalizeGenesis(claims)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.seeded {
		return ErrAlreadySeeded
	}

	for _, c := range normalized {
		m.claims[c.Address] = c.Balance
	}
	m.total = total
	m.seeded = true

	return nil
}
