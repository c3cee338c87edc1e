package balances

import (
	"database/sql"
	"errors"
	"math/big"

	"github.com/TEENet-io/claims-go/common"
	"github.com/TEENet-io/claims-go/database"
)

var ErrCorruptedBalance = errors.New("stored account balance is not a valid integer")

var accountTable = `CREATE TABLE IF NOT EXISTS account (
	id VARCHAR(256) PRIMARY KEY NOT NULL,
	balance TEXT NOT NULL,
	CONSTRAINT chk_balance CHECK (balance != '' AND balance NOT LIKE '-%')
);`

// BalanceDB is a Ledger persisted in sqlite. Account identifiers are
// stored as hex.
type BalanceDB struct {
	stmtCache *database.StmtCache
}

func NewBalanceDB(db *sql.DB) (*BalanceDB, error) {
	if _, err := db.Exec(accountTable); err != nil {
		return nil, err
	}

	return &BalanceDB{
		stmtCache: database.NewStmtCache(db),
	}, nil
}

func (bd *BalanceDB) Close() {
	bd.stmtCache.Clear()
}

func (bd *BalanceDB) Credit(who []byte, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}

	id := common.ByteSliceToPureHexStr(who)
	return bd.stmtCache.WithTx(func(tx *sql.Tx) error {
		sel, err := bd.stmtCache.InTx(tx, `SELECT balance FROM account WHERE id = ?`)
		if err != nil {
			return err
		}
		current, err := scanAccountBalance(sel.QueryRow(id))
		if err != nil {
			return err
		}

		upsert, err := bd.stmtCache.InTx(tx, `INSERT OR REPLACE INTO account (id, balance) VALUES (?, ?)`)
		if err != nil {
			return err
		}
		_, err = upsert.Exec(id, current.Add(current, amount).String())
		return err
	})
}

func (bd *BalanceDB) BalanceOf(who []byte) (*big.Int, error) {
	stmt, err := bd.stmtCache.Prepare(`SELECT balance FROM account WHERE id = ?`)
	if err != nil {
		return nil, err
	}

	return scanAccountBalance(stmt.QueryRow(common.ByteSliceToPureHexStr(who)))
}

// scanAccountBalance treats a missing row as a zero balance.
func scanAccountBalance(row *sql.Row) (*big.Int, error) {
	var s string
	if err := row.Scan(&s); err != nil {
		if err == sql.ErrNoRows {
			return new(big.Int), nil
		}
		return nil, err
	}

	b, ok := common.ParseBalance(s)
	if !ok {
		return nil, ErrCorruptedBalance
	}
	return b, nil
}
