package ledger

// Schema is executed on every Open. Table names match the classroom
// database layout so an existing crypto_championships.db opens as is.
const Schema = `
CREATE TABLE IF NOT EXISTS students (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	color TEXT NOT NULL,
	cash_balance REAL NOT NULL DEFAULT 1000,
	bank_balance REAL NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS investments (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	student_id INTEGER NOT NULL,
	symbol TEXT NOT NULL,
	amount REAL NOT NULL,
	cost_basis REAL NOT NULL,
	FOREIGN KEY (student_id) REFERENCES students(id)
);

CREATE TABLE IF NOT EXISTS weekly_snapshots (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	student_id INTEGER NOT NULL,
	week_number INTEGER NOT NULL,
	total_value REAL NOT NULL,
	profit_loss REAL NOT NULL,
	timestamp DATETIME NOT NULL,
	FOREIGN KEY (student_id) REFERENCES students(id)
);

CREATE TABLE IF NOT EXISTS app_state (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS prices (
	symbol TEXT PRIMARY KEY,
	name TEXT,
	price REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS price_history (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	symbol TEXT NOT NULL,
	week_number INTEGER NOT NULL,
	price REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_investments_student ON investments(student_id);
CREATE INDEX IF NOT EXISTS idx_snapshots_week ON weekly_snapshots(week_number);
CREATE INDEX IF NOT EXISTS idx_price_history_week ON price_history(week_number);
`

const currentWeekKey = "current_week"
