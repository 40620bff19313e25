package services

import (
	"errors"
	"fmt"

	"cafecito/internal/domain"
)

// Business failures the handlers translate into user-facing responses.
// Anything else coming out of a service is a storage fault and surfaces
// as a 500.
var (
	ErrBadCreds          = errors.New("invalid email or password")
	ErrEmailTaken        = errors.New("email already registered")
	ErrUnauthenticated   = errors.New("login required")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrCartEntryNotFound = errors.New("item not in cart")
	ErrOrderNotFound     = errors.New("order not found")
	ErrInvalidStatus     = errors.New("invalid order status")
)

// ItemNotFoundError names a cart reference that no longer resolves against
// the catalog at checkout time.
type ItemNotFoundError struct {
	Family domain.Family
	ItemID int64
}

func (e *ItemNotFoundError) Error() string {
	return fmt.Sprintf("catalog item %s/%d not found", e.Family, e.ItemID)
}

// InsufficientStockError names the offending item and both quantities.
type InsufficientStockError struct {
	Family domain.Family
	ItemID int64
	Name   string
	Want   int
	Have   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s %q (%s/%d): need %d, have %d",
		e.Family, e.Name, e.Family, e.ItemID, e.Want, e.Have)
}
