package database

import (
	"database/sql"
	"errors"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
)

func newTestCache(t *testing.T) (*StmtCache, func()) {
	db, err := sql.Open("sqlite3", ":memory:")
	assert.NoError(t, err)
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`CREATE TABLE kv (key TEXT PRIMARY KEY, value TEXT NOT NULL);`)
	assert.NoError(t, err)

	sc := NewStmtCache(db)
	return sc, func() {
		sc.Clear()
		db.Close()
	}
}

func count(t *testing.T, sc *StmtCache) int {
	var n int
	err := sc.DB().QueryRow(`SELECT COUNT(*) FROM kv`).Scan(&n)
	assert.NoError(t, err)
	return n
}

func TestPrepareIsCached(t *testing.T) {
	sc, close := newTestCache(t)
	defer close()

	s1, err := sc.Prepare(`SELECT value FROM kv WHERE key = ?`)
	assert.NoError(t, err)
	s2, err := sc.Prepare(`SELECT value FROM kv WHERE key = ?`)
	assert.NoError(t, err)
	assert.Same(t, s1, s2)

	_, err = sc.Prepare(`SELECT nothing FROM nowhere`)
	assert.Error(t, err)
}

func TestWithTxCommit(t *testing.T) {
	sc, close := newTestCache(t)
	defer close()

	err := sc.WithTx(func(tx *sql.Tx) error {
		stmt, err := sc.InTx(tx, `INSERT INTO kv (key, value) VALUES (?, ?)`)
		if err != nil {
			return err
		}
		_, err = stmt.Exec("a", "1")
		return err
	})
	assert.NoError(t, err)
	assert.Equal(t, 1, count(t, sc))
}

func TestWithTxRollback(t *testing.T) {
	sc, close := newTestCache(t)
	defer close()

	errAbort := errors.New("abort")
	err := sc.WithTx(func(tx *sql.Tx) error {
		stmt, err := sc.InTx(tx, `INSERT INTO kv (key, value) VALUES (?, ?)`)
		if err != nil {
			return err
		}
		if _, err := stmt.Exec("a", "1"); err != nil {
			return err
		}
		return errAbort
	})
	assert.Equal(t, errAbort, err)
	assert.Equal(t, 0, count(t, sc))
}
