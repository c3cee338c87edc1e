// This is a http type of reporter.
// It serves claims of the claims module, the message to sign
// and accepts signed claims.

package reporter

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	logger "github.com/sirupsen/logrus"

	"github.com/TEENet-io/claims-go/claims"
	"github.com/TEENet-io/claims-go/common"
	"github.com/TEENet-io/claims-go/ethsig"
	"github.com/TEENet-io/claims-go/events"
)

const (
	ROUTE_HELLO   = "/hello"
	ROUTE_MESSAGE = "/message"
	ROUTE_CLAIM   = "/claim"
	ROUTE_TOTAL   = "/total"
	ROUTE_CLAIMED = "/claimed"

	shutdownTimeout = 5 * time.Second
)

type HttpReporter struct {
	serverIP   string // listen ip
	serverPort string // listen port

	module  *claims.Module
	auditdb *events.AuditDB // optional
}

func NewHttpReporter(serverIP string, serverPort string, module *claims.Module, auditdb *events.AuditDB) *HttpReporter {
	return &HttpReporter{
		serverIP:   serverIP,
		serverPort: serverPort,
		module:     module,
		auditdb:    auditdb,
	}
}

// Hook up routes & handlers
func (h *HttpReporter) SetupRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET(ROUTE_HELLO, Hello)
	router.GET(ROUTE_MESSAGE, h.Message)
	router.GET(ROUTE_CLAIM, h.GetClaim)
	router.POST(ROUTE_CLAIM, h.Claim)
	router.GET(ROUTE_TOTAL, h.Total)
	router.GET(ROUTE_CLAIMED, h.Claimed)
	router.GET(ROUTE_METRICS, gin.WrapH(promhttp.Handler()))

	return router
}

// Run serves until ctx is cancelled or the claims module halts.
func (h *HttpReporter) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    h.serverIP + ":" + h.serverPort,
		Handler: h.SetupRouter(),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.WithField("addr", srv.Addr).Info("starting http reporter")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-h.module.Halted():
		logger.Error("claims module halted, stopping http reporter")
		h.shutdown(srv)
		return claims.ErrHalted
	case <-ctx.Done():
		logger.Info("stopping http reporter")
		return h.shutdown(srv)
	}
}

func (h *HttpReporter) shutdown(srv *http.Server) error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func Hello(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "world",
	})
}

// Message returns what the claimant has to sign for ?account=<hex>.
func (h *HttpReporter) Message(c *gin.Context) {
	who, ok := accountFromHex(c, c.Query("account"))
	if !ok {
		return
	}

	msg := h.module.Message(who)
	c.JSON(http.StatusOK, JSONMessage{
		Account:     common.Prepend0xPrefix(common.ByteSliceToPureHexStr(who)),
		MessageHex:  common.Prepend0xPrefix(common.ByteSliceToPureHexStr(msg)),
		MessageText: string(msg),
	})
}

func (h *HttpReporter) GetClaim(c *gin.Context) {
	addr, err := common.HexStrToEthAddress(c.Query("address"))
	if err != nil {
		c.JSON(http.StatusBadRequest, JSONError{Error: err.Error()})
		return
	}

	balance, ok, err := h.module.GetClaim(addr)
	if err != nil {
		c.JSON(http.StatusInternalServerError, JSONError{Error: err.Error()})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, JSONError{Error: claims.ErrNoSuchClaim.Error()})
		return
	}

	c.JSON(http.StatusOK, JSONClaim{Address: addr.Hex(), Balance: balance.String()})
}

func (h *HttpReporter) Total(c *gin.Context) {
	total, err := h.module.GetTotal()
	if err != nil {
		c.JSON(http.StatusInternalServerError, JSONError{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, JSONTotal{Total: total.String()})
}

// Claim settles a signed claim. The signature binds the account, so the
// request needs no further authentication.
func (h *HttpReporter) Claim(c *gin.Context) {
	var req JSONClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		recordClaimRejected(ClaimBadRequest)
		c.JSON(http.StatusBadRequest, JSONError{Error: err.Error()})
		return
	}

	who, ok := accountFromHex(c, req.Account)
	if !ok {
		recordClaimRejected(ClaimBadRequest)
		return
	}
	sig, err := ethsig.ParseSignature(req.Signature)
	if err != nil {
		recordClaimRejected(ClaimBadRequest)
		c.JSON(http.StatusBadRequest, JSONError{Error: err.Error()})
		return
	}

	signer, amount, err := h.module.Claim(who, sig)
	switch {
	case errors.Is(err, claims.ErrHalted):
		recordClaimRejected(ClaimHalted)
		c.JSON(http.StatusServiceUnavailable, JSONError{Error: err.Error()})
	case errors.Is(err, claims.ErrInvalidSignature):
		recordClaimRejected(ClaimInvalidSignature)
		c.JSON(http.StatusUnauthorized, JSONError{Error: err.Error()})
	case errors.Is(err, claims.ErrNoSuchClaim):
		recordClaimRejected(ClaimNotFound)
		c.JSON(http.StatusNotFound, JSONError{Error: err.Error()})
	case err != nil:
		recordClaimRejected(ClaimRejectedUnknown)
		c.JSON(http.StatusInternalServerError, JSONError{Error: err.Error()})
	default:
		recordClaimSettled()
		c.JSON(http.StatusOK, JSONClaimed{Address: signer.Hex(), Amount: amount.String()})
	}
}

// Claimed lists settled claims from the audit log by ?address= or
// ?account=.
func (h *HttpReporter) Claimed(c *gin.Context) {
	if h.auditdb == nil {
		c.JSON(http.StatusNotFound, JSONError{Error: "audit log is disabled"})
		return
	}

	address, account := c.Query("address"), c.Query("account")

	var (
		records []*events.ClaimedRecord
		err     error
	)
	switch {
	case address != "":
		addr, perr := common.HexStrToEthAddress(address)
		if perr != nil {
			c.JSON(http.StatusBadRequest, JSONError{Error: perr.Error()})
			return
		}
		records, err = h.auditdb.GetClaimedByAddress(addr)
	case account != "":
		who, ok := accountFromHex(c, account)
		if !ok {
			return
		}
		records, err = h.auditdb.GetClaimedByAccount(who)
	default:
		c.JSON(http.StatusBadRequest, JSONError{Error: "Either address or account must be provided"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, JSONError{Error: err.Error()})
		return
	}

	out := make([]JSONClaimedRecord, 0, len(records))
	for _, r := range records {
		out = append(out, JSONClaimedRecord{
			Id:        r.Id,
			Account:   common.Prepend0xPrefix(common.ByteSliceToPureHexStr(r.Account)),
			Address:   r.EthAddress.Hex(),
			Amount:    r.Amount.String(),
			CreatedAt: r.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	c.JSON(http.StatusOK, gin.H{"data": out})
}

func accountFromHex(c *gin.Context, s string) ([]byte, bool) {
	who, err := common.HexStrToByteSlice(s)
	if err != nil || len(who) == 0 {
		c.JSON(http.StatusBadRequest, JSONError{Error: "account must be a non-empty hex string"})
		return nil, false
	}
	return who, true
}
