package database

import (
	"database/sql"
	"sync"
)

// StmtCache caches prepared sql statements, mapping query string to stmt.
// Statements prepared on the db can be bound to a transaction with InTx
// without being prepared again.
type StmtCache struct {
	db *sql.DB
	m  sync.Map
}

func NewStmtCache(db *sql.DB) *StmtCache {
	return &StmtCache{db: db}
}

func (sc *StmtCache) DB() *sql.DB {
	return sc.db
}

func (sc *StmtCache) Prepare(query string) (*sql.Stmt, error) {
	cached, _ := sc.m.Load(query)
	if cached == nil {
		stmt, err := sc.db.Prepare(query)
		if err != nil {
			return nil, err
		}
		// another goroutine may have prepared the same query in the meantime
		if actual, loaded := sc.m.LoadOrStore(query, stmt); loaded {
			_ = stmt.Close()
			cached = actual
		} else {
			cached = stmt
		}
	}
	return cached.(*sql.Stmt), nil
}

// InTx returns the statement for query bound to tx. The returned
// statement is closed together with the transaction. A query that is not
// cached yet is prepared on the transaction's own connection so that a
// pool limited to one connection cannot deadlock.
func (sc *StmtCache) InTx(tx *sql.Tx, query string) (*sql.Stmt, error) {
	if cached, ok := sc.m.Load(query); ok {
		return tx.Stmt(cached.(*sql.Stmt)), nil
	}
	return tx.Prepare(query)
}

// WithTx runs fn in a transaction, committing when fn returns nil and
// rolling back otherwise.
func (sc *StmtCache) WithTx(fn func(tx *sql.Tx) error) error {
	tx, err := sc.db.Begin()
	if err != nil {
		return err
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

func (sc *StmtCache) Clear() {
	sc.m.Range(func(k, v interface{}) bool {
		_ = v.(*sql.Stmt).Close()
		sc.m.Delete(k)
		return true
	})
}
