package journal

const Schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id TEXT NOT NULL,
	episode INTEGER NOT NULL,
	created DATETIME NOT NULL,
	symbol TEXT NOT NULL,
	interval TEXT NOT NULL,
	agent TEXT NOT NULL,
	initial_balance REAL NOT NULL,
	fee REAL NOT NULL,
	steps INTEGER NOT NULL,
	transactions INTEGER NOT NULL,
	rejected INTEGER NOT NULL,
	stop_loss BOOLEAN NOT NULL,
	end_balance REAL NOT NULL,
	end_portfolio REAL NOT NULL,
	start_time DATETIME NOT NULL,
	end_time DATETIME NOT NULL,
	PRIMARY KEY (run_id, episode)
);

CREATE TABLE IF NOT EXISTS transactions (
	id TEXT PRIMARY KEY,
	run_id TEXT NOT NULL,
	episode INTEGER NOT NULL,
	step INTEGER NOT NULL,
	time DATETIME NOT NULL,
	kind TEXT NOT NULL,
	side TEXT NOT NULL,
	volume REAL NOT NULL,
	price REAL NOT NULL,
	amount REAL NOT NULL,
	balance REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS steps (
	run_id TEXT NOT NULL,
	episode INTEGER NOT NULL,
	step INTEGER NOT NULL,
	time DATETIME NOT NULL,
	requested TEXT NOT NULL,
	effective TEXT NOT NULL,
	volume REAL NOT NULL,
	price REAL NOT NULL,
	balance REAL NOT NULL,
	portfolio_value REAL NOT NULL,
	side TEXT NOT NULL,
	position_volume REAL NOT NULL,
	entry_price REAL NOT NULL,
	done BOOLEAN NOT NULL,
	PRIMARY KEY (run_id, episode, step)
);

CREATE INDEX IF NOT EXISTS idx_transactions_run ON transactions(run_id, episode, step);
`
