package state

import (
	"database/sql"
	"fmt"
	"math/big"

	"github.com/TEENet-io/claims-go/common"
	"github.com/TEENet-io/claims-go/database"
	ethcommon "github.com/ethereum/go-ethereum/common"
	logger "github.com/sirupsen/logrus"
)

// StateDB is a ClaimStore persisted in sqlite.
type StateDB struct {
	stmtCache *database.StmtCache
}

func NewStateDB(db *sql.DB) (*StateDB, error) {
	// 1. Create the tables.
	if _, err := db.Exec(claimTable + kvTable); err != nil {
		return nil, err
	}

	// 2. A stmt cache + db.
	return &StateDB{
		stmtCache: database.NewStmtCache(db),
	}, nil
}

func (st *StateDB) Close() {
	st.stmtCache.Clear()
}

func (st *StateDB) GetClaim(addr ethcommon.Address) (*big.Int, bool, error) {
	stmt, err := st.stmtCache.Prepare(`SELECT balance FROM claim WHERE address = ?`)
	if err != nil {
		return nil, false, err
	}

	return scanBalance(stmt.QueryRow(common.EthAddressToPureHexStr(addr)))
}

func (st *StateDB) GetTotal() (*big.Int, error) {
	stmt, err := st.stmtCache.Prepare(`SELECT value FROM kv WHERE key = ?`)
	if err != nil {
		return nil, err
	}

	total, ok, err := scanBalance(stmt.QueryRow(keyTotal))
	if err != nil {
		return nil, err
	}
	if !ok {
		// not seeded yet
		return new(big.Int), nil
	}
	return total, nil
}

func (st *StateDB) GetClaims() ([]*Claim, error) {
	stmt, err := st.stmtCache.Prepare(`SELECT address, balance FROM claim`)
	if err != nil {
		return nil, err
	}

	rows, err := stmt.Query()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var claims []*Claim
	for rows.Next() {
		var addr, balance string
		if err := rows.Scan(&addr, &balance); err != nil {
			return nil, err
		}

		b, ok := common.ParseBalance(balance)
		if !ok {
			return nil, ErrCorruptedBalance
		}
		a, err := common.HexStrToEthAddress(addr)
		if err != nil {
			return nil, err
		}
		claims = append(claims, &Claim{Address: a, Balance: b})
	}

	return claims, rows.Err()
}

func (st *StateDB) TakeClaim(addr ethcommon.Address) (*big.Int, bool, error) {
	var (
		balance *big.Int
		found   bool
	)

	key := common.EthAddressToPureHexStr(addr)
	err := st.stmtCache.WithTx(func(tx *sql.Tx) error {
		sel, err := st.stmtCache.InTx(tx, `SELECT balance FROM claim WHERE address = ?`)
		if err != nil {
			return err
		}
		b, ok, err := scanBalance(sel.QueryRow(key))
		if err != nil || !ok {
			return err
		}

		getTotal, err := st.stmtCache.InTx(tx, `SELECT value FROM kv WHERE key = ?`)
		if err != nil {
			return err
		}
		total, ok, err := scanBalance(getTotal.QueryRow(keyTotal))
		if err != nil {
			return err
		}
		if !ok || total.Cmp(b) < 0 {
			logger.WithFields(logger.Fields{
				"address": addr.Hex(),
				"balance": b,
				"total":   total,
			}).Error("claims total is less than the claim")
			return ErrInternalInvariantViolation
		}

		del, err := st.stmtCache.InTx(tx, `DELETE FROM claim WHERE address = ?`)
		if err != nil {
			return err
		}
		if _, err := del.Exec(key); err != nil {
			return err
		}

		setTotal, err := st.stmtCache.InTx(tx, `UPDATE kv SET value = ? WHERE key = ?`)
		if err != nil {
			return err
		}
		if _, err := setTotal.Exec(total.Sub(total, b).String(), keyTotal); err != nil {
			return err
		}

		balance, found = b, true
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	return balance, found, nil
}

func (st *StateDB) SeedGenesis(claims []*Claim) error {
	normalized, total, err := normalizeGenesis(claims)
	if err != nil {
		return err
	}

	return st.stmtCache.WithTx(func(tx *sql.Tx) error {
		chk, err := st.stmtCache.InTx(tx, `SELECT value FROM kv WHERE key = ?`)
		if err != nil {
			return err
		}
		var marker string
		err = chk.QueryRow(keyGenesis).Scan(&marker)
		if err == nil {
			return ErrAlreadySeeded
		}
		if err != sql.ErrNoRows {
			return err
		}

		ins, err := st.stmtCache.InTx(tx, `INSERT OR REPLACE INTO claim (address, balance) VALUES (?, ?)`)
		if err != nil {
			return err
		}
		for _, c := range normalized {
			if _, err := ins.Exec(common.EthAddressToPureHexStr(c.Address), c.Balance.String()); err != nil {
				return fmt.Errorf("insert claim %s: %w", c.Address.Hex(), err)
			}
		}

		kv, err := st.stmtCache.InTx(tx, `INSERT OR REPLACE INTO kv (key, value) VALUES (?, ?)`)
		if err != nil {
			return err
		}
		if _, err := kv.Exec(keyTotal, total.String()); err != nil {
			return err
		}
		if _, err := kv.Exec(keyGenesis, fmt.Sprintf("%d", len(normalized))); err != nil {
			return err
		}

		return nil
	})
}

func scanBalance(row *sql.Row) (*big.Int, bool, error) {
	var s string
	if err := row.Scan(&s); err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, err
	}

	b, ok := common.ParseBalance(s)
	if !ok {
		return nil, false, ErrCorruptedBalance
	}
	return b, true, nil
}
