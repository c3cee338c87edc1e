package events

import (
	"math/big"
	"time"

	ethcommon "github.com/ethereum/go-ethereum/common"
)

// Claimed is emitted after a claim has been settled and credited.
type Claimed struct {
	Account    []byte
	EthAddress ethcommon.Address
	Amount     *big.Int
}

// ClaimedRecord is a Claimed event as kept in the audit log.
type ClaimedRecord struct {
	Id         int64
	Account    []byte
	EthAddress ethcommon.Address
	Amount     *big.Int
	CreatedAt  time.Time
}
