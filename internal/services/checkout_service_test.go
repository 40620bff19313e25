package services_test

import (
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cafecito/internal/domain"
	"cafecito/internal/repos"
	"cafecito/internal/services"
)

type checkoutEnv struct {
	db       *sqlx.DB
	cart     *services.CartService
	checkout *services.CheckoutService
	orders   *services.OrderService
	catalog  *repos.CatalogRepo
}

func newCheckoutEnv(t *testing.T) *checkoutEnv {
	t.Helper()
	db := testDB(t)
	cartRepo := repos.NewCartRepo(db)
	catRepo := repos.NewCatalogRepo(db)
	ordRepo := repos.NewOrderRepo(db)
	return &checkoutEnv{
		db:       db,
		cart:     services.NewCartService(cartRepo, catRepo),
		checkout: services.NewCheckoutService(db, cartRepo, catRepo, ordRepo),
		orders:   services.NewOrderService(ordRepo),
		catalog:  catRepo,
	}
}

func (e *checkoutEnv) stock(t *testing.T, f domain.Family, id int64) int {
	t.Helper()
	it, err := e.catalog.Get(f, id)
	require.NoError(t, err)
	return it.Stock
}

func (e *checkoutEnv) count(t *testing.T, table string) int {
	t.Helper()
	var n int
	require.NoError(t, e.db.Get(&n, "SELECT COUNT(*) FROM "+table))
	return n
}

func TestCheckoutSuccess(t *testing.T) {
	e := newCheckoutEnv(t)
	e.db.MustExec(`INSERT INTO products(id,name,price,stock) VALUES (1,'Latte',3.50,10)`)
	e.db.MustExec(`INSERT INTO addons(id,name,price,stock) VALUES (5,'Extra Shot',0.75,10)`)

	sid := "sess-1"
	require.NoError(t, e.cart.Add(sid, domain.FamilyProduct, 1, 2))
	require.NoError(t, e.cart.Add(sid, domain.FamilyAddOn, 5, 1))

	oid, err := e.checkout.Checkout(sid, "u-alice")
	require.NoError(t, err)
	require.NotEmpty(t, oid)

	o, items, err := e.orders.Get(oid)
	require.NoError(t, err)
	assert.Equal(t, "u-alice", o.UserID)
	assert.Equal(t, domain.StatusPending, o.Status)
	assert.InDelta(t, 7.75, o.Total, 1e-9)

	require.Len(t, items, 2)
	sum := 0.0
	for _, it := range items {
		sum += it.UnitPrice * float64(it.Qty)
	}
	assert.InDelta(t, o.Total, sum, 1e-9)

	assert.Equal(t, 8, e.stock(t, domain.FamilyProduct, 1))
	assert.Equal(t, 9, e.stock(t, domain.FamilyAddOn, 5))

	cv, err := e.cart.View(sid)
	require.NoError(t, err)
	assert.Empty(t, cv.Lines, "cart must be empty after checkout")
}

func TestCheckoutInsufficientStock(t *testing.T) {
	e := newCheckoutEnv(t)
	e.db.MustExec(`INSERT INTO promotions(id,name,price,stock) VALUES (9,'Desayuno Combo',5.50,2)`)

	sid := "sess-2"
	require.NoError(t, e.cart.Add(sid, domain.FamilyPromotion, 9, 3))

	_, err := e.checkout.Checkout(sid, "u-alice")
	var stockErr *services.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, domain.FamilyPromotion, stockErr.Family)
	assert.Equal(t, int64(9), stockErr.ItemID)
	assert.Equal(t, 3, stockErr.Want)
	assert.Equal(t, 2, stockErr.Have)

	// No side effects: stock, cart and order tables untouched.
	assert.Equal(t, 2, e.stock(t, domain.FamilyPromotion, 9))
	cv, err := e.cart.View(sid)
	require.NoError(t, err)
	require.Len(t, cv.Lines, 1)
	assert.Equal(t, 3, cv.Lines[0].Qty)
	assert.Zero(t, e.count(t, "orders"))
	assert.Zero(t, e.count(t, "order_items"))
}

func TestCheckoutAtomicWithPoisonedEntry(t *testing.T) {
	e := newCheckoutEnv(t)
	e.db.MustExec(`INSERT INTO products(id,name,price,stock) VALUES (1,'Espresso',2.00,10)`)

	sid := "sess-3"
	require.NoError(t, e.cart.Add(sid, domain.FamilyProduct, 1, 2))
	require.NoError(t, e.cart.Add(sid, domain.FamilyAddOn, 404, 1)) // never existed

	_, err := e.checkout.Checkout(sid, "u-alice")
	var nfErr *services.ItemNotFoundError
	require.ErrorAs(t, err, &nfErr)
	assert.Equal(t, domain.FamilyAddOn, nfErr.Family)
	assert.Equal(t, int64(404), nfErr.ItemID)

	// The valid entry must not have been touched either.
	assert.Equal(t, 10, e.stock(t, domain.FamilyProduct, 1))
	assert.Zero(t, e.count(t, "orders"))
	assert.Zero(t, e.count(t, "order_items"))
	cv, err := e.cart.View(sid)
	require.NoError(t, err)
	assert.Len(t, cv.Lines, 2)
}

func TestCheckoutPreconditions(t *testing.T) {
	e := newCheckoutEnv(t)

	_, err := e.checkout.Checkout("sess-4", "")
	assert.ErrorIs(t, err, services.ErrUnauthenticated)

	_, err = e.checkout.Checkout("sess-4", "u-alice")
	assert.ErrorIs(t, err, services.ErrEmptyCart)
	assert.Zero(t, e.count(t, "orders"))
}

func TestCheckoutLastUnitContention(t *testing.T) {
	e := newCheckoutEnv(t)
	e.db.MustExec(`INSERT INTO products(id,name,price,stock) VALUES (1,'Cold Brew',4.00,1)`)

	require.NoError(t, e.cart.Add("sess-a", domain.FamilyProduct, 1, 1))
	require.NoError(t, e.cart.Add("sess-b", domain.FamilyProduct, 1, 1))

	_, err := e.checkout.Checkout("sess-a", "u-alice")
	require.NoError(t, err)

	_, err = e.checkout.Checkout("sess-b", "u-bruno")
	var stockErr *services.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 0, stockErr.Have)

	assert.Equal(t, 0, e.stock(t, domain.FamilyProduct, 1))
	assert.Equal(t, 1, e.count(t, "orders"))
}

func TestCheckoutSnapshotsPrices(t *testing.T) {
	e := newCheckoutEnv(t)
	e.db.MustExec(`INSERT INTO products(id,name,price,stock) VALUES (1,'Cappuccino',3.75,10)`)

	sid := "sess-5"
	require.NoError(t, e.cart.Add(sid, domain.FamilyProduct, 1, 2))
	oid, err := e.checkout.Checkout(sid, "u-alice")
	require.NoError(t, err)

	// A later price hike must not rewrite history.
	e.db.MustExec(`UPDATE products SET price = 9.99, name = 'Cappuccino Grande' WHERE id = 1`)

	o, items, err := e.orders.Get(oid)
	require.NoError(t, err)
	assert.InDelta(t, 7.50, o.Total, 1e-9)
	require.Len(t, items, 1)
	assert.InDelta(t, 3.75, items[0].UnitPrice, 1e-9)
	assert.Equal(t, "Cappuccino", items[0].Name)
}
