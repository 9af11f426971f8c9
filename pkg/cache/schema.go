package cache

// schema defines the SQL statements to create database tables.
const schema = `
-- Cached balances table
-- Last server-reported balance per user, refreshed after every mutation
CREATE TABLE IF NOT EXISTS cached_balances (
    user_id INTEGER PRIMARY KEY,
    balance TEXT NOT NULL,             -- decimal amount, stored as text
    refreshed_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

-- Cached transactions table
-- Last server-reported transaction list, replaced wholesale per refresh
CREATE TABLE IF NOT EXISTS cached_transactions (
    id INTEGER PRIMARY KEY,            -- server-assigned transaction ID
    user_id INTEGER NOT NULL,
    cash_in TEXT NOT NULL,             -- decimal amount, stored as text
    cash_out TEXT NOT NULL,            -- decimal amount, stored as text
    type TEXT NOT NULL,                -- 'CASHIN' or 'CASHOUT'
    notes TEXT NOT NULL,
    transaction_date TEXT NOT NULL     -- RFC 3339
);

CREATE INDEX IF NOT EXISTS idx_cached_transactions_user
    ON cached_transactions(user_id, transaction_date DESC);
`

// initializeSchema initializes the database schema.
// It creates all tables if they don't exist.
func initializeSchema(conn *Connection) error {
	if _, err := conn.Exec(schema); err != nil {
		return err
	}
	return nil
}
