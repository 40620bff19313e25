package repos

import (
	"github.com/jmoiron/sqlx"

	"cafecito/internal/domain"
)

type OrderRepo struct{ db *sqlx.DB }

func NewOrderRepo(db *sqlx.DB) *OrderRepo { return &OrderRepo{db: db} }

// CreateTx inserts the order header inside the checkout transaction.
func (r *OrderRepo) CreateTx(tx *sqlx.Tx, orderID, userID string, total float64) error {
	_, err := tx.Exec(`
	  INSERT INTO orders(id, user_id, total, status, created_at)
	  VALUES(?, ?, ?, 'pending', CURRENT_TIMESTAMP)
	`, orderID, userID, total)
	return err
}

// InsertItemTx inserts one line item with the snapshotted name and price.
func (r *OrderRepo) InsertItemTx(tx *sqlx.Tx, orderID string, f domain.Family, itemID int64, name string, qty int, unitPrice float64) error {
	_, err := tx.Exec(`
	  INSERT INTO order_items(order_id, family, item_id, name, qty, unit_price)
	  VALUES(?, ?, ?, ?, ?, ?)
	`, orderID, f, itemID, name, qty, unitPrice)
	return err
}

// Get returns the order header with its line items. Names and prices come
// from the order_items snapshot, not from a live catalog join.
func (r *OrderRepo) Get(orderID string) (domain.Order, []domain.OrderItem, error) {
	var o domain.Order
	if err := r.db.Get(&o, `
		SELECT id, user_id, total, status, created_at
		FROM orders WHERE id = ?
	`, orderID); err != nil {
		return domain.Order{}, nil, err
	}

	var items []domain.OrderItem
	if err := r.db.Select(&items, `
		SELECT order_id, family, item_id, name, qty, unit_price,
		       (qty * unit_price) AS subtotal
		FROM order_items
		WHERE order_id = ?
		ORDER BY family, item_id
	`, orderID); err != nil {
		return domain.Order{}, nil, err
	}

	return o, items, nil
}

func (r *OrderRepo) ListLatest(limit int) ([]domain.Order, error) {
	if limit <= 0 {
		limit = 100
	}
	var out []domain.Order
	err := r.db.Select(&out, `
		SELECT id, user_id, total, status, created_at
		FROM orders
		ORDER BY datetime(created_at) DESC
		LIMIT ?
	`, limit)
	return out, err
}

func (r *OrderRepo) ListByUser(userID string) ([]domain.Order, error) {
	var out []domain.Order
	err := r.db.Select(&out, `
		SELECT id, user_id, total, status, created_at
		FROM orders
		WHERE user_id = ?
		ORDER BY datetime(created_at) DESC
	`, userID)
	return out, err
}

// Status returns just the current status (used by the transition check).
func (r *OrderRepo) Status(orderID string) (string, error) {
	var s string
	err := r.db.Get(&s, `SELECT status FROM orders WHERE id = ?`, orderID)
	return s, err
}

// UpdateStatus writes the new status and reports whether a row matched.
func (r *OrderRepo) UpdateStatus(orderID, status string) (bool, error) {
	res, err := r.db.Exec(`UPDATE orders SET status = ? WHERE id = ?`, status, orderID)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}
