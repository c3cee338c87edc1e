package cmd

import (
	"context"
	"fmt"
	"math/big"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/TEENet-io/claims-go/common"
	"github.com/TEENet-io/claims-go/ethsig"
	"github.com/TEENet-io/claims-go/reporter"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

const (
	alicePriv   = "0x9a1c3d5e7f0b2a4c6e8d1f3b5a7c9e0d2f4b6a8c1e3d5f7a9b0c2e4d6f8a1b3c"
	aliceClaim  = 1000
	testAccount = "0x2a00000000000000"
)

func freePort(t *testing.T) string {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	assert.NoError(t, err)
	defer l.Close()
	return strconv.Itoa(l.Addr().(*net.TCPAddr).Port)
}

func writeGenesis(t *testing.T, dir string, claims map[string]int64) string {
	content := "claims:\n"
	for addr, bal := range claims {
		content += fmt.Sprintf("  - address: \"%s\"\n    balance: \"%d\"\n", addr, bal)
	}
	path := filepath.Join(dir, "genesis.yaml")
	assert.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func aliceUser(t *testing.T, port string) *ClaimUser {
	cu, err := NewClaimUser(&ClaimUserConfig{
		EthPrivKey: alicePriv,
		Account:    testAccount,
		ServerIp:   "127.0.0.1",
		ServerPort: port,
	})
	assert.NoError(t, err)
	return cu
}

type runningServer struct {
	cs     *ClaimsServer
	cancel context.CancelFunc
	wg     *sync.WaitGroup
}

func (rs *runningServer) stop() {
	rs.cancel()
	rs.wg.Wait()
	rs.cs.Close()
}

func startTestServer(t *testing.T, csc *ClaimsServerConfig) *runningServer {
	gin.SetMode(gin.TestMode)

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	cs, err := NewClaimsServer(csc, ctx, &wg)
	if !assert.NoError(t, err) {
		cancel()
		t.FailNow()
	}

	r := reporter.NewHttpReader(csc.HttpIp, csc.HttpPort)
	assert.Eventually(t, func() bool {
		_, err := r.GetHello()
		return err == nil
	}, 5*time.Second, 20*time.Millisecond)

	return &runningServer{cs: cs, cancel: cancel, wg: &wg}
}

func TestClaimsServerEndToEnd(t *testing.T) {
	dir := t.TempDir()
	port := freePort(t)
	alice := aliceUser(t, port)
	bob := ethsig.KeyToAddress(ethsig.DeterministicKey("Bob"))

	csc := &ClaimsServerConfig{
		DbFilePath: ":memory:",
		GenesisFile: writeGenesis(t, dir, map[string]int64{
			alice.GetAddress().Hex(): aliceClaim,
			bob.Hex():                500,
		}),
		HttpIp:   "127.0.0.1",
		HttpPort: port,
	}
	rs := startTestServer(t, csc)
	defer rs.stop()

	r := reporter.NewHttpReader(csc.HttpIp, csc.HttpPort)
	total, err := r.GetTotal()
	assert.NoError(t, err)
	assert.Equal(t, "1500", total)

	claimable, err := alice.Claimable()
	assert.NoError(t, err)
	assert.Equal(t, strconv.Itoa(aliceClaim), claimable)

	amount, err := alice.Claim()
	assert.NoError(t, err)
	assert.Equal(t, strconv.Itoa(aliceClaim), amount)

	// second attempt finds nothing
	_, err = alice.Claim()
	statusErr, ok := err.(*reporter.StatusError)
	assert.True(t, ok)
	assert.Equal(t, 404, statusErr.StatusCode)

	total, err = r.GetTotal()
	assert.NoError(t, err)
	assert.Equal(t, "500", total)

	account, err := common.HexStrToByteSlice(testAccount)
	assert.NoError(t, err)
	credited, err := rs.cs.MyBalanceDb.BalanceOf(account)
	assert.NoError(t, err)
	assert.Equal(t, big.NewInt(aliceClaim), credited)

	assert.Eventually(t, func() bool {
		records, err := r.GetClaimedByAddress(alice.GetAddress().Hex())
		return err == nil && len(records) == 1
	}, 5*time.Second, 20*time.Millisecond)
}

func TestClaimsServerRestartKeepsState(t *testing.T) {
	dir := t.TempDir()
	port := freePort(t)
	alice := aliceUser(t, port)

	csc := &ClaimsServerConfig{
		DbFilePath:  filepath.Join(dir, "claims.db"),
		GenesisFile: writeGenesis(t, dir, map[string]int64{alice.GetAddress().Hex(): aliceClaim}),
		HttpIp:      "127.0.0.1",
		HttpPort:    port,
	}

	rs := startTestServer(t, csc)
	_, err := alice.Claim()
	assert.NoError(t, err)
	rs.stop()

	// genesis is not applied a second time
	rs = startTestServer(t, csc)
	defer rs.stop()

	total, err := rs.cs.MyModule.GetTotal()
	assert.NoError(t, err)
	assert.Equal(t, 0, total.Sign())

	_, err = alice.Claim()
	assert.Error(t, err)
}

func TestNewClaimsServerBadGenesis(t *testing.T) {
	var wg sync.WaitGroup
	_, err := NewClaimsServer(&ClaimsServerConfig{
		DbFilePath:  ":memory:",
		GenesisFile: filepath.Join(t.TempDir(), "missing.yaml"),
	}, context.Background(), &wg)
	assert.Error(t, err)
}

func TestNewClaimUser(t *testing.T) {
	cu := aliceUser(t, "0")
	assert.Equal(t, testAccount, cu.AccountHex())

	sig, err := cu.Sign()
	assert.NoError(t, err)
	account, _ := common.HexStrToByteSlice(testAccount)
	signer, ok := ethsig.Recover(cu.codec, sig, account)
	assert.True(t, ok)
	assert.Equal(t, cu.GetAddress(), signer)

	_, err = NewClaimUser(&ClaimUserConfig{EthPrivKey: "zz", Account: testAccount})
	assert.Error(t, err)
	_, err = NewClaimUser(&ClaimUserConfig{EthPrivKey: alicePriv, Account: ""})
	assert.ErrorIs(t, err, ErrEmptyAccount)
}
