package balances

import (
	"database/sql"
	"math/big"
	"testing"

	"github.com/TEENet-io/claims-go/common"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
)

func getMemoryDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite3", ":memory:")
	assert.NoError(t, err)
	db.SetMaxOpenConns(1)
	return db
}

func forEachLedger(t *testing.T, fn func(t *testing.T, l Ledger)) {
	t.Run("mem", func(t *testing.T) {
		fn(t, NewMemLedger())
	})
	t.Run("sqlite", func(t *testing.T) {
		sqlDB := getMemoryDB(t)
		bd, err := NewBalanceDB(sqlDB)
		assert.NoError(t, err)
		defer func() {
			bd.Close()
			sqlDB.Close()
		}()
		fn(t, bd)
	})
}

func TestCreditCreatesAccount(t *testing.T) {
	forEachLedger(t, func(t *testing.T, l Ledger) {
		who := []byte{42, 0, 0, 0, 0, 0, 0, 0}

		b, err := l.BalanceOf(who)
		assert.NoError(t, err)
		assert.Equal(t, 0, b.Sign())

		assert.NoError(t, l.Credit(who, big.NewInt(100)))
		b, err = l.BalanceOf(who)
		assert.NoError(t, err)
		assert.Equal(t, big.NewInt(100), b)

		assert.NoError(t, l.Credit(who, big.NewInt(23)))
		b, err = l.BalanceOf(who)
		assert.NoError(t, err)
		assert.Equal(t, big.NewInt(123), b)

		// other accounts are untouched
		b, err = l.BalanceOf([]byte{69})
		assert.NoError(t, err)
		assert.Equal(t, 0, b.Sign())
	})
}

func TestCreditLargeAmounts(t *testing.T) {
	forEachLedger(t, func(t *testing.T, l Ledger) {
		who := common.RandBytes(32)
		a := common.RandBalance(32)
		c := common.RandBalance(32)

		assert.NoError(t, l.Credit(who, a))
		assert.NoError(t, l.Credit(who, c))

		b, err := l.BalanceOf(who)
		assert.NoError(t, err)
		assert.Equal(t, new(big.Int).Add(a, c), b)
	})
}

func TestCreditInvalidAmount(t *testing.T) {
	forEachLedger(t, func(t *testing.T, l Ledger) {
		assert.Equal(t, ErrInvalidAmount, l.Credit([]byte{1}, big.NewInt(-1)))
		assert.Equal(t, ErrInvalidAmount, l.Credit([]byte{1}, nil))
	})
}
