// Package claimmsg builds the byte message a claimant signs with an
// Ethereum key. The message binds the signature to one receiving account:
//
//	"\x19Ethereum Signed Message:\n" || len(prefix)+len(who) || prefix || who
//
// where the length is written in ASCII decimal.
package claimmsg

import (
	"github.com/ethereum/go-ethereum/crypto"
)

const (
	// EthSignedMessagePrefix marks the payload as a personal message so it
	// can never be mistaken for a transaction by Ethereum wallets.
	EthSignedMessagePrefix = "\x19Ethereum Signed Message:\n"

	DefaultClaimPrefix = "Pay DOTs to the Polkadot account:"
)

type Codec struct {
	Prefix []byte
}

// NewCodec returns a codec for the given claim prefix. An empty prefix
// selects DefaultClaimPrefix.
func NewCodec(prefix string) *Codec {
	if prefix == "" {
		prefix = DefaultClaimPrefix
	}
	return &Codec{Prefix: []byte(prefix)}
}

func (c *Codec) Message(who []byte) []byte {
	return BuildMessage(c.Prefix, who)
}

// Digest is the keccak256 hash of Message(who), the value that is
// actually signed.
func (c *Codec) Digest(who []byte) []byte {
	return crypto.Keccak256(c.Message(who))
}

// BuildMessage concatenates the personal-message prefix, the decimal
// length of prefix+who, the claim prefix and who verbatim.
func BuildMessage(prefix, who []byte) []byte {
	digits := decimal(len(prefix) + len(who))

	msg := make([]byte, 0, len(EthSignedMessagePrefix)+len(digits)+len(prefix)+len(who))
	msg = append(msg, EthSignedMessagePrefix...)
	msg = append(msg, digits...)
	msg = append(msg, prefix...)
	msg = append(msg, who...)
	return msg
}

// decimal writes l in base ten, most significant digit first. Zero
// yields no digits, which cannot happen with a non-empty prefix.
func decimal(l int) []byte {
	var rev []byte
	for l > 0 {
		rev = append(rev, byte('0'+l%10))
		l /= 10
	}

	for i, j := 0, len(rev)-1; i < j; i, j = i+1, j-1 {
		rev[i], rev[j] = rev[j], rev[i]
	}
	return rev
}
