package state

import (
	"database/sql"
	"math/big"

	"github.com/TEENet-io/claims-go/common"
	_ "github.com/mattn/go-sqlite3"
	logger "github.com/sirupsen/logrus"
)

func RandClaim(maxBytes int) *Claim {
	return &Claim{
		Address: common.RandEthAddress(),
		Balance: common.RandBalance(maxBytes),
	}
}

func RandClaims(n, maxBytes int) []*Claim {
	claims := make([]*Claim, n)
	for i := range claims {
		claims[i] = RandClaim(maxBytes)
	}
	return claims
}

// SumClaims adds up the balances of claims.
func SumClaims(claims []*Claim) *big.Int {
	sum := new(big.Int)
	for _, c := range claims {
		sum.Add(sum, c.Balance)
	}
	return sum
}

// GetMemoryDB opens a private in-memory sqlite database. The pool is
// limited to one connection since every connection to ":memory:" would
// otherwise see its own empty database.
func GetMemoryDB() *sql.DB {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		logger.Fatal(err)
	}
	db.SetMaxOpenConns(1)
	return db
}
