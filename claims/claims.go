// Package claims settles claims of Ethereum key holders against the
// claims ledger: a signature over the receiving account proves control of
// the claiming address, the claim is consumed and its balance credited to
// the account.
package claims

import (
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/TEENet-io/claims-go/balances"
	"github.com/TEENet-io/claims-go/claimmsg"
	"github.com/TEENet-io/claims-go/common"
	"github.com/TEENet-io/claims-go/ethsig"
	"github.com/TEENet-io/claims-go/events"
	"github.com/TEENet-io/claims-go/state"
	ethcommon "github.com/ethereum/go-ethereum/common"
	logger "github.com/sirupsen/logrus"
)

var (
	ErrInvalidSignature = errors.New("invalid Ethereum signature")
	// ErrNoSuchClaim covers both never-funded and already-claimed addresses.
	ErrNoSuchClaim = errors.New("Ethereum address has no claim")
	// ErrHalted is returned once a settlement hit unrecoverable state.
	ErrHalted = errors.New("claims module halted")
)

type Module struct {
	codec  *claimmsg.Codec
	store  state.ClaimStore
	ledger balances.Ledger
	pub    *events.PublisherService

	// serializes settlements
	mu sync.Mutex

	halted   chan struct{}
	haltOnce sync.Once
}

func New(cfg *Config, store state.ClaimStore, ledger balances.Ledger, pub *events.PublisherService) *Module {
	if pub == nil {
		pub = events.NewPublisherService()
	}

	return &Module{
		codec:  claimmsg.NewCodec(cfg.Prefix),
		store:  store,
		ledger: ledger,
		pub:    pub,
		halted: make(chan struct{}),
	}
}

// Claim redeems the claim of the address that signed the claim message for
// who and credits its balance to who. It returns the signer and the
// credited amount.
//
// ErrInvalidSignature and ErrNoSuchClaim leave all state untouched. Errors
// from the claims store before anything was removed are returned as is
// and the call can be retried. A desynchronized total or a failed credit
// after the claim was consumed halts the module and panics; every later
// call returns ErrHalted.
func (m *Module) Claim(who []byte, sig *ethsig.Signature) (ethcommon.Address, *big.Int, error) {
	if m.IsHalted() {
		return ethcommon.Address{}, nil, ErrHalted
	}

	signer, ok := ethsig.Recover(m.codec, sig, who)
	if !ok {
		return ethcommon.Address{}, nil, ErrInvalidSignature
	}

	newLogger := logger.WithFields(logger.Fields{
		"account": common.Shorten(common.ByteSliceToPureHexStr(who), 8),
		"eth":     signer.Hex(),
	})

	m.mu.Lock()
	defer m.mu.Unlock()

	// a concurrent settlement may have halted while we waited
	if m.IsHalted() {
		return signer, nil, ErrHalted
	}

	balanceDue, ok, err := m.store.TakeClaim(signer)
	if err != nil {
		if errors.Is(err, state.ErrInternalInvariantViolation) {
			m.halt()
			newLogger.Panicf("Logic error: pot less than the total of claims: %v", err)
		}
		newLogger.Errorf("failed to take claim: err=%v", err)
		return signer, nil, fmt.Errorf("take claim: %w", err)
	}
	if !ok {
		newLogger.Debug("no claim for signer")
		return signer, nil, ErrNoSuchClaim
	}

	// claim is consumed, a failed credit cannot be retried
	if err := m.ledger.Credit(who, balanceDue); err != nil {
		m.halt()
		newLogger.Panicf("failed to credit claimed balance %v: %v", balanceDue, err)
	}

	m.pub.NotifyClaimed(events.Claimed{
		Account:    append([]byte{}, who...),
		EthAddress: signer,
		Amount:     new(big.Int).Set(balanceDue),
	})
	newLogger.WithField("amount", balanceDue).Info("claimed")

	return signer, balanceDue, nil
}

func (m *Module) halt() {
	m.haltOnce.Do(func() { close(m.halted) })
}

// Halted is closed when the module stops settling claims for good.
func (m *Module) Halted() <-chan struct{} {
	return m.halted
}

func (m *Module) IsHalted() bool {
	select {
	case <-m.halted:
		return true
	default:
		return false
	}
}

// Validate reports what Claim would do without changing anything: the
// recovered signer and its claim.
func (m *Module) Validate(who []byte, sig *ethsig.Signature) (ethcommon.Address, *big.Int, error) {
	signer, ok := ethsig.Recover(m.codec, sig, who)
	if !ok {
		return ethcommon.Address{}, nil, ErrInvalidSignature
	}

	balance, ok, err := m.store.GetClaim(signer)
	if err != nil {
		return signer, nil, err
	}
	if !ok {
		return signer, nil, ErrNoSuchClaim
	}

	return signer, balance, nil
}

func (m *Module) GetClaim(addr ethcommon.Address) (*big.Int, bool, error) {
	return m.store.GetClaim(addr)
}

func (m *Module) GetTotal() (*big.Int, error) {
	return m.store.GetTotal()
}

// Message is the exact byte sequence the holder of a claim signs to
// redeem it to who.
func (m *Module) Message(who []byte) []byte {
	return m.codec.Message(who)
}

func (m *Module) Codec() *claimmsg.Codec {
	return m.codec
}

func (m *Module) Publisher() *events.PublisherService {
	return m.pub
}
