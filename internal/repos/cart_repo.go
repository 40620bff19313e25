package repos

import (
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"cafecito/internal/domain"
)

type CartRepo struct{ db *sqlx.DB }

func NewCartRepo(db *sqlx.DB) *CartRepo { return &CartRepo{db: db} }

func (r *CartRepo) EnsureCart(sessionID string) (string, error) {
	var cartID string
	if err := r.db.Get(&cartID, `SELECT id FROM carts WHERE session_id = ?`, sessionID); err == nil {
		return cartID, nil
	}
	_, err := r.db.Exec(`INSERT INTO carts(id,session_id,updated_at) VALUES(?,?,?)`,
		sessionID, sessionID, time.Now().Format(time.RFC3339))
	if err != nil {
		return "", err
	}
	return sessionID, nil
}

// AddItem upserts an entry: an existing (family, item_id) line accumulates
// quantity instead of duplicating. No catalog validation happens here; an
// unknown reference is caught at view time (placeholder) and at checkout
// (hard failure).
func (r *CartRepo) AddItem(cartID string, f domain.Family, itemID int64, qty int) error {
	_, err := r.db.Exec(`
		INSERT INTO cart_items(cart_id,family,item_id,qty,created_at)
		VALUES(?,?,?,?,CURRENT_TIMESTAMP)
		ON CONFLICT(cart_id,family,item_id) DO UPDATE
		SET qty = cart_items.qty + excluded.qty, updated_at = CURRENT_TIMESTAMP
	`, cartID, f, itemID, qty)
	return err
}

// AdjustQty adds delta (may be negative) to a line's quantity. A resulting
// quantity <= 0 removes the line. Returns sql.ErrNoRows when the cart holds
// no such entry.
func (r *CartRepo) AdjustQty(cartID string, f domain.Family, itemID int64, delta int) error {
	var qty int
	err := r.db.Get(&qty, `
		SELECT qty FROM cart_items WHERE cart_id = ? AND family = ? AND item_id = ?`,
		cartID, f, itemID)
	if err != nil {
		return err
	}
	if qty+delta <= 0 {
		_, err = r.db.Exec(`DELETE FROM cart_items WHERE cart_id = ? AND family = ? AND item_id = ?`,
			cartID, f, itemID)
		return err
	}
	_, err = r.db.Exec(`
		UPDATE cart_items SET qty = qty + ?, updated_at = CURRENT_TIMESTAMP
		WHERE cart_id = ? AND family = ? AND item_id = ?`,
		delta, cartID, f, itemID)
	return err
}

// Remove deletes one (family, item_id) line. Returns sql.ErrNoRows when
// nothing matched.
func (r *CartRepo) Remove(cartID string, f domain.Family, itemID int64) error {
	res, err := r.db.Exec(`DELETE FROM cart_items WHERE cart_id = ? AND family = ? AND item_id = ?`,
		cartID, f, itemID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *CartRepo) Entries(cartID string) ([]domain.CartEntry, error) {
	var out []domain.CartEntry
	err := r.db.Select(&out, `
	  SELECT family, item_id, qty FROM cart_items
	  WHERE cart_id = ?
	  ORDER BY family, item_id`, cartID)
	return out, err
}

// EntriesTx reads the cart inside the checkout transaction so the entries
// that get priced are exactly the entries that get cleared.
func (r *CartRepo) EntriesTx(tx *sqlx.Tx, cartID string) ([]domain.CartEntry, error) {
	var out []domain.CartEntry
	err := tx.Select(&out, `
	  SELECT family, item_id, qty FROM cart_items
	  WHERE cart_id = ?
	  ORDER BY family, item_id`, cartID)
	return out, err
}

func (r *CartRepo) Clear(cartID string) error {
	_, err := r.db.Exec(`DELETE FROM cart_items WHERE cart_id = ?`, cartID)
	return err
}

func (r *CartRepo) ClearTx(tx *sqlx.Tx, cartID string) error {
	_, err := tx.Exec(`DELETE FROM cart_items WHERE cart_id = ?`, cartID)
	return err
}
