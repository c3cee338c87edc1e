package state

var (
	// one row per unredeemed claim; balance is a decimal string so that
	// amounts above 2^63 survive sqlite's signed INTEGER
	claimTable = `CREATE TABLE IF NOT EXISTS claim (
		address CHAR(40) PRIMARY KEY NOT NULL,
		balance TEXT NOT NULL,
		CONSTRAINT chk_address CHECK (length(address) = 40),
		CONSTRAINT chk_balance CHECK (balance != '' AND balance NOT LIKE '-%')
	);`

	// table stores key-value pairs, currently the claims total and the
	// genesis marker
	kvTable = `CREATE TABLE IF NOT EXISTS kv (
		key VARCHAR(32) PRIMARY KEY NOT NULL,
		value TEXT NOT NULL
	);`

	keyTotal   = "total"
	keyGenesis = "genesis"
)
