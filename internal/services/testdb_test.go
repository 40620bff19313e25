package services_test

import (
	"testing"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"cafecito/internal/repos"
)

// testDB opens an in-memory database with the real schema, then strips the
// demo seed rows so each test controls its own catalog. One connection only:
// a fresh pool connection would see a fresh empty :memory: database.
func testDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	for _, tbl := range []string{"cart_items", "carts", "order_items", "orders", "products", "promotions", "addons"} {
		db.MustExec("DELETE FROM " + tbl)
	}
	return db
}
