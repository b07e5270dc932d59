package core_test

import (
	"context"
	"os"
	"testing"

	"backoffice/internal/db"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

// setupTestDB migrates and reseeds the database named by TEST_DATABASE_URL.
// Company 1 is in Karnataka (29); vendor V001 is local, V002 is in Maharashtra (27).
func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	_ = godotenv.Load("../../.env")

	// Use a dedicated TEST database to avoid wiping the live app database.
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test to protect live database")
	}

	if _, err := db.Migrate(dbURL, "../../migrations"); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	_, err = pool.Exec(ctx, `
		TRUNCATE TABLE document_lines, documents, purchase_order_lines, purchase_orders,
		               document_sequences, vendors, products, users, companies RESTART IDENTITY CASCADE;

		INSERT INTO companies (id, company_code, name, base_currency, state_code)
		VALUES (1, '1000', 'Test Company', 'INR', '29');

		INSERT INTO products (company_id, code, name, unit_price, unit, hsn_code, gst_rate) VALUES
		(1, 'STL-10', 'Steel rod 10mm', 52.50, 'kg',  '7214', 18),
		(1, 'BLT-M8', 'Bolt M8',         4.00, 'pcs', '7318', 18),
		(1, 'PNT-1L', 'Primer 1L',     310.00, 'ltr', '3208', 28);

		INSERT INTO vendors (company_id, code, name, gstin, state_code) VALUES
		(1, 'V001', 'Local Steel Traders', '29ABCDE1234F1Z5', '29'),
		(1, 'V002', 'Mumbai Fasteners',    '27ABCDE1234F1Z5', '27');
	`)
	if err != nil {
		t.Fatalf("Failed to seed test database: %v", err)
	}

	return pool
}
