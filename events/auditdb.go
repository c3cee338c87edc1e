package events

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/TEENet-io/claims-go/common"
	"github.com/TEENet-io/claims-go/database"
	ethcommon "github.com/ethereum/go-ethereum/common"
	logger "github.com/sirupsen/logrus"
)

var ErrCorruptedRecord = errors.New("corrupted claimed record")

var claimedTable = `CREATE TABLE IF NOT EXISTS claimed (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	account VARCHAR(256) NOT NULL,
	ethAddress CHAR(40) NOT NULL,
	amount TEXT NOT NULL,
	createdAt TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_claimed_eth_address ON claimed (ethAddress);
CREATE INDEX IF NOT EXISTS idx_claimed_account ON claimed (account);`

// AuditDB is an append-only log of Claimed events. It is fed through an
// observer channel and is best effort: failures are logged and dropped.
type AuditDB struct {
	stmtCache *database.StmtCache
	ch        chan Claimed
}

func NewAuditDB(db *sql.DB, channelSize int) (*AuditDB, error) {
	if _, err := db.Exec(claimedTable); err != nil {
		return nil, err
	}

	return &AuditDB{
		stmtCache: database.NewStmtCache(db),
		ch:        make(chan Claimed, channelSize),
	}, nil
}

func (a *AuditDB) Close() {
	a.stmtCache.Clear()
}

// Observer is the channel to register with a PublisherService.
func (a *AuditDB) Observer() chan Claimed {
	return a.ch
}

func (a *AuditDB) Start(ctx context.Context) error {
	logger.Info("starting claims audit log")
	defer logger.Info("stopping claims audit log")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-a.ch:
			newLogger := logger.WithFields(logger.Fields{
				"account": common.ByteSliceToPureHexStr(ev.Account),
				"eth":     ev.EthAddress.Hex(),
				"amount":  ev.Amount,
			})
			if err := a.Insert(ev); err != nil {
				newLogger.Errorf("failed to record claimed event: err=%v", err)
				continue
			}
			newLogger.Debug("recorded claimed event")
		}
	}
}

func (a *AuditDB) Insert(ev Claimed) error {
	stmt, err := a.stmtCache.Prepare(`INSERT INTO claimed (account, ethAddress, amount) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}

	_, err = stmt.Exec(
		common.ByteSliceToPureHexStr(ev.Account),
		common.EthAddressToPureHexStr(ev.EthAddress),
		ev.Amount.String(),
	)
	return err
}

func (a *AuditDB) GetClaimedByAddress(addr ethcommon.Address) ([]*ClaimedRecord, error) {
	return a.query(`SELECT id, account, ethAddress, amount, createdAt FROM claimed WHERE ethAddress = ? ORDER BY id`,
		common.EthAddressToPureHexStr(addr))
}

func (a *AuditDB) GetClaimedByAccount(who []byte) ([]*ClaimedRecord, error) {
	return a.query(`SELECT id, account, ethAddress, amount, createdAt FROM claimed WHERE account = ? ORDER BY id`,
		common.ByteSliceToPureHexStr(who))
}

func (a *AuditDB) query(query string, arg string) ([]*ClaimedRecord, error) {
	stmt, err := a.stmtCache.Prepare(query)
	if err != nil {
		return nil, err
	}

	rows, err := stmt.Query(arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*ClaimedRecord
	for rows.Next() {
		var (
			r                     ClaimedRecord
			account, addr, amount string
			createdAt             time.Time
		)
		if err := rows.Scan(&r.Id, &account, &addr, &amount, &createdAt); err != nil {
			return nil, err
		}

		if r.Account, err = common.HexStrToByteSlice(account); err != nil {
			return nil, ErrCorruptedRecord
		}
		if r.EthAddress, err = common.HexStrToEthAddress(addr); err != nil {
			return nil, ErrCorruptedRecord
		}
		var ok bool
		if r.Amount, ok = common.ParseBalance(amount); !ok {
			return nil, ErrCorruptedRecord
		}
		r.CreatedAt = createdAt

		records = append(records, &r)
	}

	return records, rows.Err()
}
