package testutil

import (
	"database/sql"
	"testing"

	_ "github.com/go-sql-driver/mysql"
)

// SetupTestDB opens the integration-test database. It expects a MySQL
// instance at localhost:3306 with a 'production_test' schema and skips the
// test when none is reachable.
func SetupTestDB(t *testing.T) *sql.DB {
	dsn := "root:@tcp(localhost:3306)/production_test?parseTime=true"
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	// Verify connection
	err = db.Ping()
	if err != nil {
		t.Skipf("test database not available: %v", err)
	}

	return db
}

// CleanupTestDB empties the test tables and closes the connection.
func CleanupTestDB(t *testing.T, db *sql.DB) {
	if db == nil {
		return
	}

	_, err := db.Exec("DELETE FROM production_orders")
	if err != nil {
		t.Logf("failed to clean table production_orders: %v", err)
	}

	db.Close()
}

// SetupTestTables creates the tables the tests need.
func SetupTestTables(t *testing.T, db *sql.DB) {
	createProductionOrdersTable := `
	CREATE TABLE IF NOT EXISTS production_orders (
		id CHAR(36) NOT NULL PRIMARY KEY,
		externalOrderId VARCHAR(255) NOT NULL,
		items JSON NOT NULL,
		status ENUM('RECEIVED', 'PREPARING', 'DONE', 'DELIVERED') NOT NULL DEFAULT 'RECEIVED',
		createdAt DATETIME(3) NOT NULL,
		updatedAt DATETIME(3) NOT NULL,
		UNIQUE INDEX idx_external_order_id (externalOrderId),
		INDEX idx_status (status)
	)`

	_, err := db.Exec(createProductionOrdersTable)
	if err != nil {
		t.Logf("failed to create table production_orders: %v", err)
	}
}
