package domain

// Family is one of the three catalog categories. Each family has its own
// identity space, so an item is always addressed by the (family, id) pair.
type Family string

const (
	FamilyProduct   Family = "product"
	FamilyPromotion Family = "promotion"
	FamilyAddOn     Family = "addon"
)

func (f Family) Valid() bool {
	switch f {
	case FamilyProduct, FamilyPromotion, FamilyAddOn:
		return true
	}
	return false
}

// Families in display order (menu sections, admin catalog page).
var Families = []Family{FamilyProduct, FamilyPromotion, FamilyAddOn}

// CatalogItem is one row of a family table.
type CatalogItem struct {
	ID        int64   `db:"id"`
	Name      string  `db:"name"`
	Price     float64 `db:"price"`
	Stock     int     `db:"stock"`
	CreatedAt string  `db:"created_at"`
	UpdatedAt string  `db:"updated_at"`
}

// CartEntry is one line of a session cart: a (family, id) reference plus a
// positive quantity. Prices are not stored on the entry; they are resolved
// against the catalog at view time and snapshotted at checkout.
type CartEntry struct {
	Family Family `db:"family"`
	ItemID int64  `db:"item_id"`
	Qty    int    `db:"qty"`
}

// Order statuses.
const (
	StatusPending   = "pending"
	StatusPaid      = "paid"
	StatusShipped   = "shipped"
	StatusCancelled = "cancelled"
)

// allowedTransitions maps a status to the statuses it may move to.
// shipped and cancelled are terminal.
var allowedTransitions = map[string][]string{
	StatusPending: {StatusPaid, StatusCancelled},
	StatusPaid:    {StatusShipped, StatusCancelled},
}

func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusPaid, StatusShipped, StatusCancelled:
		return true
	}
	return false
}

func TransitionAllowed(from, to string) bool {
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

type Order struct {
	ID        string  `db:"id"`
	UserID    string  `db:"user_id"`
	Total     float64 `db:"total"`
	Status    string  `db:"status"`
	CreatedAt string  `db:"created_at"`
}

// OrderItem carries the unit price and name in effect at checkout time, so
// later catalog edits never change what a historical order shows.
type OrderItem struct {
	OrderID   string  `db:"order_id"`
	Family    Family  `db:"family"`
	ItemID    int64   `db:"item_id"`
	Name      string  `db:"name"`
	Qty       int     `db:"qty"`
	UnitPrice float64 `db:"unit_price"`
	Subtotal  float64 `db:"subtotal"`
}

// Availability buckets for the stock API.
type Availability struct {
	Status string `json:"status"` // IN_STOCK | LOW_STOCK | OUT_OF_STOCK
	Qty    int    `json:"qty,omitempty"`
}
