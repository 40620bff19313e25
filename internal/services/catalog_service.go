package services

import (
	"database/sql"

	"cafecito/internal/domain"
	"cafecito/internal/repos"
)

type CatalogService struct {
	Catalog *repos.CatalogRepo
}

func NewCatalogService(catalog *repos.CatalogRepo) *CatalogService {
	return &CatalogService{Catalog: catalog}
}

// Menu lists every family for the storefront page.
func (s *CatalogService) Menu() (map[domain.Family][]domain.CatalogItem, error) {
	out := map[domain.Family][]domain.CatalogItem{}
	for _, f := range domain.Families {
		items, err := s.Catalog.List(f)
		if err != nil {
			return nil, err
		}
		out[f] = items
	}
	return out, nil
}

func (s *CatalogService) Get(f domain.Family, id int64) (domain.CatalogItem, error) {
	return s.Catalog.Get(f, id)
}

// CheckAvailability buckets stock into IN_STOCK / LOW_STOCK / OUT_OF_STOCK.
func (s *CatalogService) CheckAvailability(f domain.Family, id int64) (domain.Availability, error) {
	it, err := s.Catalog.Get(f, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.Availability{Status: "OUT_OF_STOCK", Qty: 0}, nil
		}
		return domain.Availability{}, err
	}

	status := "OUT_OF_STOCK"
	switch {
	case it.Stock >= 5:
		status = "IN_STOCK"
	case it.Stock > 0:
		status = "LOW_STOCK"
	}
	return domain.Availability{Status: status, Qty: it.Stock}, nil
}

// ---------- Admin pass-through CRUD ----------

func (s *CatalogService) Create(f domain.Family, name string, price float64, stock int) (int64, error) {
	return s.Catalog.Create(f, name, price, stock)
}

func (s *CatalogService) Update(f domain.Family, id int64, name string, price float64, stock int) error {
	ok, err := s.Catalog.Update(f, id, name, price, stock)
	if err != nil {
		return err
	}
	if !ok {
		return &ItemNotFoundError{Family: f, ItemID: id}
	}
	return nil
}

func (s *CatalogService) Delete(f domain.Family, id int64) error {
	ok, err := s.Catalog.Delete(f, id)
	if err != nil {
		return err
	}
	if !ok {
		return &ItemNotFoundError{Family: f, ItemID: id}
	}
	return nil
}
