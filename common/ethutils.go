package common

import (
	"crypto/rand"
	"errors"

	ethcommon "github.com/ethereum/go-ethereum/common"
)

var ErrInvalidEthAddress = errors.New("invalid ethereum address")

func RandEthAddress() ethcommon.Address {
	b := make([]byte, 20)
	if _, err := rand.Read(b); err != nil {
		return ethcommon.Address{}
	}
	return ethcommon.BytesToAddress(b[:])
}

// HexStrToEthAddress strictly parses a 20-byte hex address (with/without
// prefix 0x). Mixed-case input is accepted without checksum validation.
func HexStrToEthAddress(hexStr string) (ethcommon.Address, error) {
	s := Prepend0xPrefix(hexStr)
	if !ethcommon.IsHexAddress(s) {
		return ethcommon.Address{}, ErrInvalidEthAddress
	}
	return ethcommon.HexToAddress(s), nil
}

// EthAddressToPureHexStr returns the lower-case hex form without 0x, the
// representation used as a primary key in sqlite tables.
func EthAddressToPureHexStr(addr ethcommon.Address) string {
	return ByteSliceToPureHexStr(addr.Bytes())
}
