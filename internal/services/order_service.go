package services

import (
	"database/sql"

	"cafecito/internal/domain"
	"cafecito/internal/repos"
)

type OrderService struct {
	Orders *repos.OrderRepo
}

func NewOrderService(orders *repos.OrderRepo) *OrderService {
	return &OrderService{Orders: orders}
}

// Get returns the order header with its snapshotted line items.
func (s *OrderService) Get(orderID string) (domain.Order, []domain.OrderItem, error) {
	o, items, err := s.Orders.Get(orderID)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.Order{}, nil, ErrOrderNotFound
		}
		return domain.Order{}, nil, err
	}
	return o, items, nil
}

func (s *OrderService) History(userID string) ([]domain.Order, error) {
	return s.Orders.ListByUser(userID)
}

func (s *OrderService) Latest(limit int) ([]domain.Order, error) {
	return s.Orders.ListLatest(limit)
}

// SetStatus moves an order along the transition table:
// pending -> paid|cancelled, paid -> shipped|cancelled; shipped and
// cancelled are terminal. Unknown values and disallowed edges both come
// back as ErrInvalidStatus.
func (s *OrderService) SetStatus(orderID, status string) error {
	if !domain.ValidStatus(status) {
		return ErrInvalidStatus
	}
	current, err := s.Orders.Status(orderID)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrOrderNotFound
		}
		return err
	}
	if !domain.TransitionAllowed(current, status) {
		return ErrInvalidStatus
	}
	ok, err := s.Orders.UpdateStatus(orderID, status)
	if err != nil {
		return err
	}
	if !ok {
		return ErrOrderNotFound
	}
	return nil
}
