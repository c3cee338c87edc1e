package state

import (
	"math/big"
	"testing"

	"github.com/TEENet-io/claims-go/common"
	"github.com/stretchr/testify/assert"
)

func newTestStateDB(t *testing.T) (*StateDB, func()) {
	sqlDB := GetMemoryDB()
	statedb, err := NewStateDB(sqlDB)
	assert.NoError(t, err)

	return statedb, func() {
		statedb.Close()
		sqlDB.Close()
	}
}

func TestStateDBInvariantViolationRollsBack(t *testing.T) {
	statedb, close := newTestStateDB(t)
	defer close()

	alice := common.RandEthAddress()
	assert.NoError(t, statedb.SeedGenesis([]*Claim{{Address: alice, Balance: big.NewInt(100)}}))

	// desynchronize the total behind the store's back
	_, err := statedb.stmtCache.DB().Exec(`UPDATE kv SET value = '99' WHERE key = ?`, keyTotal)
	assert.NoError(t, err)

	_, ok, err := statedb.TakeClaim(alice)
	assert.Equal(t, ErrInternalInvariantViolation, err)
	assert.False(t, ok)

	b, ok, err := statedb.GetClaim(alice)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, big.NewInt(100), b)

	total, err := statedb.GetTotal()
	assert.NoError(t, err)
	assert.Equal(t, big.NewInt(99), total)
}

func TestStateDBCorruptedBalance(t *testing.T) {
	statedb, close := newTestStateDB(t)
	defer close()

	assert.NoError(t, statedb.SeedGenesis(nil))
	_, err := statedb.stmtCache.DB().Exec(`UPDATE kv SET value = 'abc' WHERE key = ?`, keyTotal)
	assert.NoError(t, err)

	_, err = statedb.GetTotal()
	assert.Equal(t, ErrCorruptedBalance, err)
}

func TestStateDBSurvivesReopen(t *testing.T) {
	sqlDB := GetMemoryDB()
	defer sqlDB.Close()

	statedb, err := NewStateDB(sqlDB)
	assert.NoError(t, err)
	claims := RandClaims(3, 8)
	assert.NoError(t, statedb.SeedGenesis(claims))
	_, _, err = statedb.TakeClaim(claims[0].Address)
	assert.NoError(t, err)
	statedb.Close()

	// same database, new handle: the state is kept and genesis is not
	// applied a second time
	statedb, err = NewStateDB(sqlDB)
	assert.NoError(t, err)
	defer statedb.Close()

	assert.Equal(t, ErrAlreadySeeded, statedb.SeedGenesis(claims))

	_, ok, err := statedb.GetClaim(claims[0].Address)
	assert.NoError(t, err)
	assert.False(t, ok)

	total, err := statedb.GetTotal()
	assert.NoError(t, err)
	assert.Equal(t, new(big.Int).Add(claims[1].Balance, claims[2].Balance), total)
}
