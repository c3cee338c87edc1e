// Package ethsig recovers the Ethereum address that signed a claim
// message for a given account.
package ethsig

import (
	"crypto/ecdsa"

	"github.com/TEENet-io/claims-go/claimmsg"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	logger "github.com/sirupsen/logrus"
)

// Recover returns the address whose key produced sig over the claim
// message for who. Every failure (malformed r/s, bad recovery id, no
// point recovered) yields false; callers cannot and need not tell them
// apart.
func Recover(codec *claimmsg.Codec, sig *Signature, who []byte) (ethcommon.Address, bool) {
	if sig == nil {
		return ethcommon.Address{}, false
	}

	raw, err := sig.recoverable()
	if err != nil {
		logger.WithField("err", err).Debug("rejecting signature")
		return ethcommon.Address{}, false
	}

	pub, err := crypto.Ecrecover(codec.Digest(who), raw)
	if err != nil {
		logger.WithField("err", err).Debug("public key recovery failed")
		return ethcommon.Address{}, false
	}

	return PubkeyBytesToAddress(pub)
}

// PubkeyBytesToAddress derives the address from a 65-byte uncompressed
// public key: the last 20 bytes of keccak256 over X || Y.
func PubkeyBytesToAddress(pub []byte) (ethcommon.Address, bool) {
	if len(pub) != 65 || pub[0] != 0x04 {
		return ethcommon.Address{}, false
	}
	return ethcommon.BytesToAddress(crypto.Keccak256(pub[1:])[12:]), true
}

// SignClaim signs the claim message for who the way Ethereum wallets do
// for personal_sign, with v in {27, 28}.
func SignClaim(codec *claimmsg.Codec, key *ecdsa.PrivateKey, who []byte) (*Signature, error) {
	b, err := crypto.Sign(codec.Digest(who), key)
	if err != nil {
		return nil, err
	}
	b[64] += legacyRecoveryOffset

	return SignatureFromBytes(b)
}
