package services

import (
	"database/sql"

	"cafecito/internal/domain"
	"cafecito/internal/repos"
)

type CartService struct {
	Carts   *repos.CartRepo
	Catalog *repos.CatalogRepo
}

func NewCartService(carts *repos.CartRepo, catalog *repos.CatalogRepo) *CartService {
	return &CartService{Carts: carts, Catalog: catalog}
}

// Add appends a (family, id) reference or accumulates quantity onto an
// existing line. The reference is deliberately not validated against the
// catalog here; checkout is the gate.
func (s *CartService) Add(sessionID string, f domain.Family, itemID int64, qty int) error {
	if qty < 1 {
		qty = 1
	}
	cartID, err := s.Carts.EnsureCart(sessionID)
	if err != nil {
		return err
	}
	return s.Carts.AddItem(cartID, f, itemID, qty)
}

// UpdateQty applies a signed delta to one line; a resulting quantity <= 0
// removes the line entirely.
func (s *CartService) UpdateQty(sessionID string, f domain.Family, itemID int64, delta int) error {
	cartID, err := s.Carts.EnsureCart(sessionID)
	if err != nil {
		return err
	}
	if err := s.Carts.AdjustQty(cartID, f, itemID, delta); err != nil {
		if err == sql.ErrNoRows {
			return ErrCartEntryNotFound
		}
		return err
	}
	return nil
}

func (s *CartService) Remove(sessionID string, f domain.Family, itemID int64) error {
	cartID, err := s.Carts.EnsureCart(sessionID)
	if err != nil {
		return err
	}
	if err := s.Carts.Remove(cartID, f, itemID); err != nil {
		if err == sql.ErrNoRows {
			return ErrCartEntryNotFound
		}
		return err
	}
	return nil
}

func (s *CartService) Clear(sessionID string) error {
	cartID, err := s.Carts.EnsureCart(sessionID)
	if err != nil {
		return err
	}
	return s.Carts.Clear(cartID)
}

// CartLine is a priced view of one entry. Resolved is false when the
// reference no longer matches a catalog row; such lines show a placeholder
// name and a zero price instead of failing the whole view.
type CartLine struct {
	Family    domain.Family `json:"family"`
	ItemID    int64         `json:"id"`
	Name      string        `json:"name"`
	UnitPrice float64       `json:"unitPrice"`
	Qty       int           `json:"quantity"`
	Subtotal  float64       `json:"subtotal"`
	Resolved  bool          `json:"resolved"`
}

type CartView struct {
	Lines []CartLine `json:"items"`
	Total float64    `json:"total"`
}

const placeholderName = "(no longer available)"

// View joins the cart against the catalog, one batched lookup per family.
func (s *CartService) View(sessionID string) (CartView, error) {
	cartID, err := s.Carts.EnsureCart(sessionID)
	if err != nil {
		return CartView{}, err
	}
	entries, err := s.Carts.Entries(cartID)
	if err != nil {
		return CartView{}, err
	}

	byFamily := map[domain.Family][]int64{}
	for _, e := range entries {
		byFamily[e.Family] = append(byFamily[e.Family], e.ItemID)
	}

	resolved := map[domain.Family]map[int64]domain.CatalogItem{}
	for f, ids := range byFamily {
		items, err := s.Catalog.GetMany(f, ids)
		if err != nil {
			return CartView{}, err
		}
		m := make(map[int64]domain.CatalogItem, len(items))
		for _, it := range items {
			m[it.ID] = it
		}
		resolved[f] = m
	}

	view := CartView{Lines: make([]CartLine, 0, len(entries))}
	for _, e := range entries {
		line := CartLine{Family: e.Family, ItemID: e.ItemID, Qty: e.Qty, Name: placeholderName}
		if it, ok := resolved[e.Family][e.ItemID]; ok {
			line.Name = it.Name
			line.UnitPrice = it.Price
			line.Subtotal = it.Price * float64(e.Qty)
			line.Resolved = true
		}
		view.Lines = append(view.Lines, line)
		view.Total += line.Subtotal
	}
	return view, nil
}
