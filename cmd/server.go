// Server = claims state + balance ledger + audit log + http reporter.
// All components are configured via environment variables (strings!).

package cmd

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	logger "github.com/sirupsen/logrus"

	"github.com/TEENet-io/claims-go/balances"
	"github.com/TEENet-io/claims-go/claims"
	"github.com/TEENet-io/claims-go/events"
	"github.com/TEENet-io/claims-go/reporter"
	"github.com/TEENet-io/claims-go/state"
)

// audit observer config
const CHANNEL_BUFFER_SIZE = 10

// Keep the configuration's fields as "text" as possible.
// Its easier to load it from env vars or a config file.
type ClaimsServerConfig struct {
	DbFilePath  string // db file path, ":memory:" for a throw-away server
	GenesisFile string // json/yaml/toml list of initial claims, read only on the first start
	ClaimPrefix string // statement in front of the account in the signed message

	// Http side
	HttpIp   string // eg. 0.0.0.0
	HttpPort string // eg. 8080

	ChannelSize int // audit observer buffer, CHANNEL_BUFFER_SIZE if zero
}

// ClaimsServer holds the objects that consists of the claims server.
type ClaimsServer struct {
	SqlDB       *sql.DB
	MyStateDb   *state.StateDB
	MyBalanceDb *balances.BalanceDB
	MyAuditDb   *events.AuditDB
	MyModule    *claims.Module
	MyReporter  *reporter.HttpReporter
}

// NewClaimsServer creates a new claims server.
// ctx is used for parental context to cancel the operation of the server.
// wg is used to wait for all the goroutines inside the server (audit log, http reporter) to finish.
func NewClaimsServer(csc *ClaimsServerConfig, ctx context.Context, wg *sync.WaitGroup) (_ *ClaimsServer, err error) {
	sqldb, err := OpenSqliteDB(csc.DbFilePath)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			sqldb.Close()
		}
	}()

	// state_db
	myStateDb, err := state.NewStateDB(sqldb)
	if err != nil {
		logger.Errorf("failed to create state db: %v", err)
		return nil, err
	}

	// seed claims on the first start only
	if csc.GenesisFile != "" {
		genesis, err := state.LoadGenesisFile(csc.GenesisFile)
		if err != nil {
			logger.Errorf("failed to load genesis: %v", err)
			return nil, err
		}
		err = myStateDb.SeedGenesis(genesis)
		switch {
		case errors.Is(err, state.ErrAlreadySeeded):
			logger.Info("claims already seeded, genesis file ignored")
		case err != nil:
			logger.Errorf("failed to seed genesis: %v", err)
			return nil, err
		default:
			logger.WithField("claims", len(genesis)).Info("seeded claims from genesis")
		}
	}

	// balance ledger
	myBalanceDb, err := balances.NewBalanceDB(sqldb)
	if err != nil {
		logger.Errorf("failed to create balance db: %v", err)
		return nil, err
	}

	// audit log observer
	channelSize := csc.ChannelSize
	if channelSize <= 0 {
		channelSize = CHANNEL_BUFFER_SIZE
	}
	myAuditDb, err := events.NewAuditDB(sqldb, channelSize)
	if err != nil {
		logger.Errorf("failed to create audit db: %v", err)
		return nil, err
	}
	publisher := events.NewPublisherService()
	publisher.RegisterClaimedObserver(myAuditDb.Observer())

	myModule := claims.New(&claims.Config{Prefix: csc.ClaimPrefix}, myStateDb, myBalanceDb, publisher)

	total, err := myModule.GetTotal()
	if err != nil {
		logger.Errorf("failed to read claims total: %v", err)
		return nil, err
	}
	logger.WithField("total", total).Info("claims ledger ready")

	httpReporter := reporter.NewHttpReporter(csc.HttpIp, csc.HttpPort, myModule, myAuditDb)

	// Important: Turn on components!
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := myAuditDb.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Errorf("audit log stopped: %v", err)
		}
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		// a halted claims module ends the process
		if err := httpReporter.Run(ctx); err != nil {
			logger.Fatalf("failed to run http reporter: %v", err)
		}
	}()
	// Don't forget to call wg.Wait() in the main routine.

	return &ClaimsServer{
		SqlDB:       sqldb,
		MyStateDb:   myStateDb,
		MyBalanceDb: myBalanceDb,
		MyAuditDb:   myAuditDb,
		MyModule:    myModule,
		MyReporter:  httpReporter,
	}, nil
}

// Close releases the databases. Call it after the goroutines are done.
func (cs *ClaimsServer) Close() {
	cs.MyModule.Publisher().Close()
	cs.MyAuditDb.Close()
	cs.MyBalanceDb.Close()
	cs.MyStateDb.Close()
	cs.SqlDB.Close()
}

// Create, then start the claims server and wait.
// Press Ctrl-C to kill the server.
func StartClaimsServerAndWait(csc *ClaimsServerConfig) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up a signal channel to listen for Ctrl-C (SIGINT) or SIGTERM
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	// Launch a new goroutine to handle the signal
	go func() {
		sig := <-sigCh
		fmt.Printf("Received signal: %v, cancelling context...\n", sig)
		cancel()
	}()

	var wg sync.WaitGroup

	cs, err := NewClaimsServer(csc, ctx, &wg)
	if err != nil {
		logger.Fatalf("failed to create claims server: %v", err)
		return
	}

	// wait for all routines to finish
	wg.Wait()
	cs.Close()
}
