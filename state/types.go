package state

import (
	"errors"
	"math/big"

	ethcommon "github.com/ethereum/go-ethereum/common"
)

var (
	// ErrInternalInvariantViolation means Total is smaller than a claim being
	// removed, i.e. the aggregate has drifted from the sum of the entries.
	ErrInternalInvariantViolation = errors.New("logic error: total is less than a claim")
	ErrAlreadySeeded              = errors.New("claims ledger has already been seeded")
	ErrInvalidBalance             = errors.New("claim balance must be a non-negative integer")
	ErrCorruptedBalance           = errors.New("stored balance is not a valid integer")
)

// Claim is a pre-funded balance awaiting one-time redemption by the key
// holder of Address.
type Claim struct {
	Address ethcommon.Address
	Balance *big.Int
}

// ClaimStore holds the claims ledger and its Total. Implementations must
// keep Total equal to the sum of all balances after every call.
type ClaimStore interface {
	GetClaim(addr ethcommon.Address) (*big.Int, bool, error)
	GetTotal() (*big.Int, error)
	GetClaims() ([]*Claim, error)

	// TakeClaim removes the claim of addr and subtracts it from Total as one
	// atomic step. It returns false when there is no claim. If Total is
	// smaller than the claim nothing changes and
	// ErrInternalInvariantViolation is returned.
	TakeClaim(addr ethcommon.Address) (*big.Int, bool, error)

	// SeedGenesis populates an empty ledger once.
	SeedGenesis(claims []*Claim) error
}

// normalizeGenesis validates the seed list and collapses duplicated
// addresses (last write wins). The returned total is the sum of the
// collapsed entries, so the invariant holds right after seeding.
func normalizeGenesis(claims []*Claim) ([]*Claim, *big.Int, error) {
	idx := make(map[ethcommon.Address]int, len(claims))
	out := make([]*Claim, 0, len(claims))

	for _, c := range claims {
		if c == nil || c.Balance == nil || c.Balance.Sign() < 0 {
			return nil, nil, ErrInvalidBalance
		}

		cp := &Claim{Address: c.Address, Balance: new(big.Int).Set(c.Balance)}
		if i, ok := idx[c.Address]; ok {
			out[i] = cp
			continue
		}
		idx[c.Address] = len(out)
		out = append(out, cp)
	}

	total := new(big.Int)
	for _, c := range out {
		total.Add(total, c.Balance)
	}

	return out, total, nil
}
