package events

import (
	"context"
	"database/sql"
	"math/big"
	"testing"
	"time"

	"github.com/TEENet-io/claims-go/common"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
)

func randClaimed() Claimed {
	return Claimed{
		Account:    common.RandBytes(8),
		EthAddress: common.RandEthAddress(),
		Amount:     common.RandBalance(16),
	}
}

func newTestAuditDB(t *testing.T) (*AuditDB, func()) {
	sqlDB, err := sql.Open("sqlite3", ":memory:")
	assert.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	a, err := NewAuditDB(sqlDB, 1)
	assert.NoError(t, err)

	return a, func() {
		a.Close()
		sqlDB.Close()
	}
}

func TestNotifyClaimed(t *testing.T) {
	pub := NewPublisherService()
	obs1 := make(chan Claimed, 1)
	obs2 := make(chan Claimed) // unbuffered, notify must not block on it
	pub.RegisterClaimedObserver(obs1)
	pub.RegisterClaimedObserver(obs2)

	ev := randClaimed()
	pub.NotifyClaimed(ev)

	assert.Equal(t, ev, <-obs1)
	select {
	case got := <-obs2:
		assert.Equal(t, ev, got)
	case <-time.After(time.Second):
		t.Fatal("observer did not receive the event")
	}
}

func TestPublisherCloseReleasesPendingDeliveries(t *testing.T) {
	pub := NewPublisherService()
	stalled := make(chan Claimed) // never read
	pub.RegisterClaimedObserver(stalled)

	pub.NotifyClaimed(randClaimed())
	pub.NotifyClaimed(randClaimed())

	done := make(chan struct{})
	go func() {
		pub.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("pending deliveries kept blocking")
	}

	// closed publisher drops events
	pub.NotifyClaimed(randClaimed())
	pub.Close()
	select {
	case <-stalled:
		t.Fatal("event delivered after close")
	default:
	}
}

func TestAuditInsertAndQuery(t *testing.T) {
	a, close := newTestAuditDB(t)
	defer close()

	ev1 := randClaimed()
	ev2 := randClaimed()
	ev2.Account = ev1.Account
	assert.NoError(t, a.Insert(ev1))
	assert.NoError(t, a.Insert(ev2))

	records, err := a.GetClaimedByAddress(ev1.EthAddress)
	assert.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, ev1.Account, records[0].Account)
	assert.Equal(t, ev1.EthAddress, records[0].EthAddress)
	assert.Equal(t, ev1.Amount, records[0].Amount)
	assert.False(t, records[0].CreatedAt.IsZero())

	records, err = a.GetClaimedByAccount(ev1.Account)
	assert.NoError(t, err)
	assert.Len(t, records, 2)
	assert.Less(t, records[0].Id, records[1].Id)

	records, err = a.GetClaimedByAddress(common.RandEthAddress())
	assert.NoError(t, err)
	assert.Empty(t, records)
}

func TestAuditStart(t *testing.T) {
	a, close := newTestAuditDB(t)
	defer close()

	pub := NewPublisherService()
	pub.RegisterClaimedObserver(a.Observer())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() { done <- a.Start(ctx) }()

	ev := randClaimed()
	pub.NotifyClaimed(ev)

	assert.Eventually(t, func() bool {
		records, err := a.GetClaimedByAddress(ev.EthAddress)
		return err == nil && len(records) == 1 && records[0].Amount.Cmp(ev.Amount) == 0
	}, time.Second, 10*time.Millisecond)

	cancel()
	assert.Equal(t, context.Canceled, <-done)
}

func TestAuditZeroAmount(t *testing.T) {
	a, close := newTestAuditDB(t)
	defer close()

	ev := randClaimed()
	ev.Amount = big.NewInt(0)
	assert.NoError(t, a.Insert(ev))

	records, err := a.GetClaimedByAddress(ev.EthAddress)
	assert.NoError(t, err)
	assert.Equal(t, 0, records[0].Amount.Sign())
}
