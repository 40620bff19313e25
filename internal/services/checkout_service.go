package services

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"cafecito/internal/domain"
	"cafecito/internal/repos"
)

// CheckoutService converts a session cart into a persisted order. The whole
// conversion runs inside one transaction: validation reads, pricing, the
// order and item inserts, the stock decrements and the cart clear either all
// commit or all roll back.
type CheckoutService struct {
	DB      *sqlx.DB
	Carts   *repos.CartRepo
	Catalog *repos.CatalogRepo
	Orders  *repos.OrderRepo
}

func NewCheckoutService(db *sqlx.DB, carts *repos.CartRepo, catalog *repos.CatalogRepo, orders *repos.OrderRepo) *CheckoutService {
	return &CheckoutService{DB: db, Carts: carts, Catalog: catalog, Orders: orders}
}

// Checkout places an order for the authenticated user owning sessionID and
// returns the new order id. Failures leave cart and stock untouched.
//
// SQLite has no row-level FOR UPDATE; writers serialize on the database.
// The guarded stock decrement (UPDATE ... WHERE stock >= qty) is therefore
// the serialization point: of two checkouts racing for the last unit,
// exactly one decrement matches and the loser rolls back with
// InsufficientStockError.
func (s *CheckoutService) Checkout(sessionID, userID string) (string, error) {
	if userID == "" {
		return "", ErrUnauthenticated
	}

	cartID, err := s.Carts.EnsureCart(sessionID)
	if err != nil {
		return "", err
	}

	tx, err := s.DB.Beginx()
	if err != nil {
		return "", fmt.Errorf("begin checkout: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	entries, err := s.Carts.EntriesTx(tx, cartID)
	if err != nil {
		return "", err
	}
	if len(entries) == 0 {
		return "", ErrEmptyCart
	}

	// Validate and price every entry against the live catalog. The read and
	// the later decrement sit in the same transaction, and the decrement
	// re-checks stock, so a concurrent checkout cannot sneak between them.
	type pricedEntry struct {
		domain.CartEntry
		Name  string
		Price float64
	}
	priced := make([]pricedEntry, 0, len(entries))
	total := 0.0
	for _, e := range entries {
		it, err := s.Catalog.GetTx(tx, e.Family, e.ItemID)
		if err != nil {
			if err == sql.ErrNoRows {
				return "", &ItemNotFoundError{Family: e.Family, ItemID: e.ItemID}
			}
			return "", err
		}
		if it.Stock < e.Qty {
			return "", &InsufficientStockError{
				Family: e.Family, ItemID: e.ItemID, Name: it.Name,
				Want: e.Qty, Have: it.Stock,
			}
		}
		priced = append(priced, pricedEntry{CartEntry: e, Name: it.Name, Price: it.Price})
		total += it.Price * float64(e.Qty)
	}

	orderID := uuid.NewString()
	if err := s.Orders.CreateTx(tx, orderID, userID, total); err != nil {
		return "", err
	}
	for _, p := range priced {
		if err := s.Orders.InsertItemTx(tx, orderID, p.Family, p.ItemID, p.Name, p.Qty, p.Price); err != nil {
			return "", err
		}
		n, err := s.Catalog.DecrementStockTx(tx, p.Family, p.ItemID, p.Qty)
		if err != nil {
			return "", err
		}
		if n == 0 {
			// Lost a race since the validation read: the row vanished or
			// another committed checkout took the stock first.
			it, gerr := s.Catalog.GetTx(tx, p.Family, p.ItemID)
			if gerr == sql.ErrNoRows {
				return "", &ItemNotFoundError{Family: p.Family, ItemID: p.ItemID}
			}
			if gerr != nil {
				return "", gerr
			}
			return "", &InsufficientStockError{
				Family: p.Family, ItemID: p.ItemID, Name: p.Name,
				Want: p.Qty, Have: it.Stock,
			}
		}
	}

	// The cart lives in the same database, so emptying it inside the
	// transaction makes "order committed" and "cart cleared" one event.
	if err := s.Carts.ClearTx(tx, cartID); err != nil {
		return "", err
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit checkout: %w", err)
	}
	return orderID, nil
}
