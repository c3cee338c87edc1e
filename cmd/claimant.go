package cmd

import (
	"crypto/ecdsa"
	"errors"

	"github.com/TEENet-io/claims-go/claimmsg"
	"github.com/TEENet-io/claims-go/common"
	"github.com/TEENet-io/claims-go/ethsig"
	"github.com/TEENet-io/claims-go/reporter"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

var ErrEmptyAccount = errors.New("account to credit is empty")

type ClaimUserConfig struct {
	EthPrivKey  string // hex private key of the claiming ethereum address
	Account     string // hex of the account identifier to credit
	ClaimPrefix string // must match the server

	ServerIp   string
	ServerPort string
}

// ClaimUser is the claimant side: it holds the ethereum key, signs the
// claim message for one account and submits it to a claims server.
type ClaimUser struct {
	key     *ecdsa.PrivateKey
	codec   *claimmsg.Codec
	account []byte
	reader  *reporter.HttpReader
}

func NewClaimUser(cfg *ClaimUserConfig) (*ClaimUser, error) {
	key, err := crypto.HexToECDSA(common.Trim0xPrefix(cfg.EthPrivKey))
	if err != nil {
		return nil, err
	}

	account, err := common.HexStrToByteSlice(cfg.Account)
	if err != nil {
		return nil, err
	}
	if len(account) == 0 {
		return nil, ErrEmptyAccount
	}

	return &ClaimUser{
		key:     key,
		codec:   claimmsg.NewCodec(cfg.ClaimPrefix),
		account: account,
		reader:  reporter.NewHttpReader(cfg.ServerIp, cfg.ServerPort),
	}, nil
}

func (u *ClaimUser) GetAddress() ethcommon.Address {
	return ethsig.KeyToAddress(u.key)
}

func (u *ClaimUser) AccountHex() string {
	return common.Prepend0xPrefix(common.ByteSliceToPureHexStr(u.account))
}

// Message is what gets signed, for display.
func (u *ClaimUser) Message() []byte {
	return u.codec.Message(u.account)
}

func (u *ClaimUser) Sign() (*ethsig.Signature, error) {
	return ethsig.SignClaim(u.codec, u.key, u.account)
}

// Claimable asks the server for the claim of our address.
func (u *ClaimUser) Claimable() (string, error) {
	c, err := u.reader.GetClaim(u.GetAddress().Hex())
	if err != nil {
		return "", err
	}
	return c.Balance, nil
}

// Claim signs and submits the claim, returning the credited amount.
func (u *ClaimUser) Claim() (string, error) {
	sig, err := u.Sign()
	if err != nil {
		return "", err
	}

	res, err := u.reader.PostClaim(u.AccountHex(), sig.Hex())
	if err != nil {
		return "", err
	}
	return res.Amount, nil
}
