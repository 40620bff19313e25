package repos

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"cafecito/internal/domain"
)

// CatalogRepo reads and writes the three family tables. Table names come
// from a fixed whitelist, never from request input.
type CatalogRepo struct{ db *sqlx.DB }

func NewCatalogRepo(db *sqlx.DB) *CatalogRepo { return &CatalogRepo{db: db} }

var familyTables = map[domain.Family]string{
	domain.FamilyProduct:   "products",
	domain.FamilyPromotion: "promotions",
	domain.FamilyAddOn:     "addons",
}

func tableFor(f domain.Family) (string, error) {
	t, ok := familyTables[f]
	if !ok {
		return "", fmt.Errorf("unknown catalog family %q", f)
	}
	return t, nil
}

func (r *CatalogRepo) Get(f domain.Family, id int64) (domain.CatalogItem, error) {
	t, err := tableFor(f)
	if err != nil {
		return domain.CatalogItem{}, err
	}
	var it domain.CatalogItem
	err = r.db.Get(&it, `
	  SELECT id, name, price, stock, created_at, COALESCE(updated_at,'') AS updated_at
	  FROM `+t+` WHERE id = ?`, id)
	return it, err
}

func (r *CatalogRepo) List(f domain.Family) ([]domain.CatalogItem, error) {
	t, err := tableFor(f)
	if err != nil {
		return nil, err
	}
	var out []domain.CatalogItem
	err = r.db.Select(&out, `
	  SELECT id, name, price, stock, created_at, COALESCE(updated_at,'') AS updated_at
	  FROM `+t+` ORDER BY id`)
	return out, err
}

// GetMany fetches a batch of ids from one family in a single query.
func (r *CatalogRepo) GetMany(f domain.Family, ids []int64) ([]domain.CatalogItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	t, err := tableFor(f)
	if err != nil {
		return nil, err
	}
	query, args, err := sqlx.In(`SELECT id, name, price, stock, created_at,
	  COALESCE(updated_at,'') AS updated_at FROM `+t+` WHERE id IN (?)`, ids)
	if err != nil {
		return nil, err
	}
	var out []domain.CatalogItem
	err = r.db.Select(&out, query, args...)
	return out, err
}

// GetTx reads one row inside a checkout transaction.
func (r *CatalogRepo) GetTx(tx *sqlx.Tx, f domain.Family, id int64) (domain.CatalogItem, error) {
	t, err := tableFor(f)
	if err != nil {
		return domain.CatalogItem{}, err
	}
	var it domain.CatalogItem
	err = tx.Get(&it, `
	  SELECT id, name, price, stock, created_at, COALESCE(updated_at,'') AS updated_at
	  FROM `+t+` WHERE id = ?`, id)
	return it, err
}

// DecrementStockTx subtracts "by" units inside a transaction, guarded so
// stock can never go negative. Returns the number of affected rows: 0 means
// the row is missing or short on stock, which the caller tells apart with a
// follow-up read in the same transaction.
func (r *CatalogRepo) DecrementStockTx(tx *sqlx.Tx, f domain.Family, id int64, by int) (int64, error) {
	t, err := tableFor(f)
	if err != nil {
		return 0, err
	}
	res, err := tx.Exec(`
	  UPDATE `+t+`
	  SET stock = stock - ?, updated_at = CURRENT_TIMESTAMP
	  WHERE id = ? AND stock >= ?`, by, id, by)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ---------- Admin CRUD (field validation only, no business rules) ----------

func (r *CatalogRepo) Create(f domain.Family, name string, price float64, stock int) (int64, error) {
	t, err := tableFor(f)
	if err != nil {
		return 0, err
	}
	res, err := r.db.Exec(`INSERT INTO `+t+`(name, price, stock) VALUES(?,?,?)`,
		name, price, stock)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *CatalogRepo) Update(f domain.Family, id int64, name string, price float64, stock int) (bool, error) {
	t, err := tableFor(f)
	if err != nil {
		return false, err
	}
	res, err := r.db.Exec(`
	  UPDATE `+t+`
	  SET name = ?, price = ?, stock = ?, updated_at = CURRENT_TIMESTAMP
	  WHERE id = ?`, name, price, stock, id)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *CatalogRepo) Delete(f domain.Family, id int64) (bool, error) {
	t, err := tableFor(f)
	if err != nil {
		return false, err
	}
	res, err := r.db.Exec(`DELETE FROM `+t+` WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}
