package testutil

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite" // Test Package
)

// SetupTestDB creates an in-memory SQLite database for testing.
// The database is automatically cleaned up when the test completes.
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    db := testutil.SetupTestDB(t)
//	    // db is ready to use with schema created
//	}
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	// In-memory database (destroyed when connection closes)
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		t.Fatalf("Failed to ping test database: %v", err)
	}

	// Configure SQLite for testing
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA timezone = 'UTC'",
		"PRAGMA journal_mode = MEMORY", // Faster for tests
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			t.Fatalf("Failed to set pragma: %v", err)
		}
	}

	// Create schema
	if err := createTestSchema(db); err != nil {
		t.Fatalf("Failed to create test schema: %v", err)
	}

	// Cleanup when test ends
	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// createTestSchema creates all database tables for testing.
// Schema is synchronized with the production database schema.
func createTestSchema(db *sql.DB) error {
	schema := `
		-- Taxable account: one per portfolio under tax tracking
		CREATE TABLE taxable_account (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			portfolio_id VARCHAR(36) NOT NULL UNIQUE,
			cost_basis_method VARCHAR(10) NOT NULL DEFAULT 'FIFO',
			wash_sale_tracking BOOLEAN NOT NULL DEFAULT TRUE,
			account_type VARCHAR(25),
			category VARCHAR(20),
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		-- Tax lot: one per acquisition transaction, never deleted
		CREATE TABLE tax_lot (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			account_id VARCHAR(36) NOT NULL,
			transaction_id VARCHAR(36) NOT NULL UNIQUE,
			investment_id VARCHAR(36) NOT NULL,
			quantity TEXT NOT NULL,
			acquisition_date DATETIME NOT NULL,
			cost_basis TEXT NOT NULL,
			remaining_quantity TEXT NOT NULL,
			adjusted_basis TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY(account_id) REFERENCES taxable_account(id) ON DELETE CASCADE
		);

		CREATE INDEX idx_tax_lot_account_investment ON tax_lot(account_id, investment_id);

		-- Disposition: one per (lot, sale) match
		CREATE TABLE tax_lot_disposition (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			tax_lot_id VARCHAR(36) NOT NULL,
			sale_transaction_id VARCHAR(36) NOT NULL,
			quantity TEXT NOT NULL,
			proceeds TEXT NOT NULL,
			date DATETIME NOT NULL,
			holding_period_seconds INTEGER NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY(tax_lot_id) REFERENCES tax_lot(id) ON DELETE CASCADE
		);

		CREATE INDEX idx_disposition_sale_txn ON tax_lot_disposition(sale_transaction_id);
		CREATE INDEX idx_disposition_date ON tax_lot_disposition(date);

		-- Wash sale: one per (disposition, replacement lot) pair inside the window
		CREATE TABLE wash_sale (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			disposition_id VARCHAR(36) NOT NULL,
			replacement_lot_id VARCHAR(36) NOT NULL,
			disallowed_loss TEXT NOT NULL,
			wash_sale_window_start DATETIME NOT NULL,
			wash_sale_window_end DATETIME NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY(disposition_id) REFERENCES tax_lot_disposition(id) ON DELETE CASCADE,
			FOREIGN KEY(replacement_lot_id) REFERENCES tax_lot(id) ON DELETE CASCADE,
			CONSTRAINT unique_wash_sale UNIQUE (disposition_id, replacement_lot_id)
		);

		-- Taxable event: dividends, return of capital, gain classifications
		CREATE TABLE taxable_event (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			account_id VARCHAR(36) NOT NULL,
			transaction_id VARCHAR(36) NOT NULL,
			event_type VARCHAR(20) NOT NULL,
			amount TEXT NOT NULL,
			date DATETIME NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY(account_id) REFERENCES taxable_account(id) ON DELETE CASCADE
		);

		CREATE INDEX idx_taxable_event_account_date ON taxable_event(account_id, date, event_type);

		-- Form 1099-B totals, one per (account, tax year)
		CREATE TABLE form_1099b (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			account_id VARCHAR(36) NOT NULL,
			tax_year INTEGER NOT NULL,
			st_covered_proceeds TEXT NOT NULL DEFAULT '0',
			st_covered_basis TEXT NOT NULL DEFAULT '0',
			st_uncovered_proceeds TEXT NOT NULL DEFAULT '0',
			lt_covered_proceeds TEXT NOT NULL DEFAULT '0',
			lt_covered_basis TEXT NOT NULL DEFAULT '0',
			lt_uncovered_proceeds TEXT NOT NULL DEFAULT '0',
			wash_sale_adjustments TEXT NOT NULL DEFAULT '0',
			computed_at DATETIME,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY(account_id) REFERENCES taxable_account(id) ON DELETE CASCADE,
			CONSTRAINT unique_form_1099b UNIQUE (account_id, tax_year)
		);

		-- Link table between a 1099-B form and the dispositions it aggregates
		CREATE TABLE form_1099b_disposition (
			form_id VARCHAR(36) NOT NULL,
			disposition_id VARCHAR(36) NOT NULL,
			PRIMARY KEY (form_id, disposition_id),
			FOREIGN KEY(form_id) REFERENCES form_1099b(id) ON DELETE CASCADE,
			FOREIGN KEY(disposition_id) REFERENCES tax_lot_disposition(id) ON DELETE CASCADE
		);
	`

	_, err := db.Exec(schema)
	return err
}
