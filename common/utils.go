package common

import (
	"crypto/rand"
	"encoding/hex"
	"math/big"
	"strings"

	ethcommon "github.com/ethereum/go-ethereum/common"
)

// The returned string has No 0x prefix
func ByteSliceToPureHexStr(b []byte) string {
	return ethcommon.Bytes2Hex(b)
}

// HexStrToByteSlice decodes a hex string (with/without prefix 0x). Unlike
// ethcommon.Hex2Bytes it reports malformed input instead of returning an
// empty slice.
func HexStrToByteSlice(hexStr string) ([]byte, error) {
	s := Trim0xPrefix(hexStr)
	if len(s)%2 == 1 {
		s = "0" + s
	}
	return hex.DecodeString(s)
}

// Trim 0x or 0X prefix off the string.
func Trim0xPrefix(str string) string {
	s := strings.TrimPrefix(str, "0x")
	return strings.TrimPrefix(s, "0X")
}

func Prepend0xPrefix(str string) string {
	if strings.HasPrefix(str, "0x") || strings.HasPrefix(str, "0X") {
		return str
	}
	return "0x" + str
}

func RandBytes(n int) []byte {
	b := make([]byte, n)
	_, err := rand.Read(b)
	if err != nil {
		return nil
	}
	return b
}

// RandBalance returns a random positive balance below 2^(8*byteNum).
func RandBalance(byteNum int) *big.Int {
	b := new(big.Int).SetBytes(RandBytes(byteNum))
	return b.Add(b, big.NewInt(1))
}

// ParseBalance parses a non-negative decimal amount.
func ParseBalance(s string) (*big.Int, bool) {
	b, ok := new(big.Int).SetString(strings.TrimSpace(s), 10)
	if !ok || b.Sign() < 0 {
		return nil, false
	}
	return b, true
}

// Shorten shortens a hex string so that both sides have n characters and
// the rest is replaced with "..."
func Shorten(hexStr string, n int) string {
	str := Trim0xPrefix(hexStr)

	if len(str) <= n*2 {
		return Prepend0xPrefix(str)
	}
	return Prepend0xPrefix(str[:n] + "..." + str[len(str)-n:])
}
