package ethsig

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/TEENet-io/claims-go/common"
	"github.com/ethereum/go-ethereum/crypto"
)

const (
	SignatureLength = crypto.SignatureLength // r || s || v

	// Ethereum wallets emit v = 27 + recovery id.
	legacyRecoveryOffset = 27
)

var (
	ErrSignatureLength   = errors.New("signature must be 65 bytes")
	ErrInvalidRecoveryId = errors.New("invalid recovery id")
)

// Signature is a secp256k1 ECDSA signature with an explicit recovery
// hint. V is kept as received; use RecoveryId for the normalized value.
type Signature struct {
	R [32]byte
	S [32]byte
	V int8
}

// SignatureFromBytes splits a 65-byte r || s || v compact signature.
func SignatureFromBytes(b []byte) (*Signature, error) {
	if len(b) != SignatureLength {
		return nil, ErrSignatureLength
	}

	sig := &Signature{V: int8(b[64])}
	copy(sig.R[:], b[:32])
	copy(sig.S[:], b[32:64])
	return sig, nil
}

// ParseSignature decodes a hex string (with/without prefix 0x) holding a
// 65-byte compact signature.
func ParseSignature(hexStr string) (*Signature, error) {
	b, err := common.HexStrToByteSlice(hexStr)
	if err != nil {
		return nil, fmt.Errorf("decode signature: %w", err)
	}
	return SignatureFromBytes(b)
}

// RecoveryId maps V from either the {0,1} or the {27,28} convention to
// {0,1}.
func (sig *Signature) RecoveryId() (byte, error) {
	v := int(sig.V)
	if v < 0 {
		// bytes >= 0x80 are never a valid hint
		return 0, ErrInvalidRecoveryId
	}
	if v >= legacyRecoveryOffset {
		v -= legacyRecoveryOffset
	}
	if v != 0 && v != 1 {
		return 0, ErrInvalidRecoveryId
	}
	return byte(v), nil
}

// Bytes returns r || s || v with v as received.
func (sig *Signature) Bytes() []byte {
	b := make([]byte, SignatureLength)
	copy(b[:32], sig.R[:])
	copy(b[32:64], sig.S[:])
	b[64] = byte(sig.V)
	return b
}

// Hex returns the 0x-prefixed hex encoding of Bytes.
func (sig *Signature) Hex() string {
	return common.Prepend0xPrefix(common.ByteSliceToPureHexStr(sig.Bytes()))
}

// recoverable returns the go-ethereum form r || s || recid after checking
// that r and s are valid scalars. High s values are accepted.
func (sig *Signature) recoverable() ([]byte, error) {
	recid, err := sig.RecoveryId()
	if err != nil {
		return nil, err
	}

	r := new(big.Int).SetBytes(sig.R[:])
	s := new(big.Int).SetBytes(sig.S[:])
	if !crypto.ValidateSignatureValues(recid, r, s, false) {
		return nil, errors.New("signature values out of range")
	}

	b := sig.Bytes()
	b[64] = recid
	return b, nil
}
