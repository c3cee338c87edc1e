package cmd

import (
	"database/sql"
	"os"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
	logger "github.com/sirupsen/logrus"
)

// fileExists checks if a file exists and is readable
func FileExists(filePath string) bool {
	file, err := os.Open(filePath)
	if err != nil {
		return false
	}
	defer file.Close()
	return true
}

// Shared Helper function. Open the sqlite database shared by the claims
// state, the balance ledger and the audit log.
func OpenSqliteDB(dbFilePath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dbFilePath)
	if err != nil {
		logger.Errorf("failed to open db file %s: %v", dbFilePath, err)
		return nil, err
	}
	// one writer at a time, and ":memory:" must stay on a single connection
	db.SetMaxOpenConns(1)
	return db, nil
}
