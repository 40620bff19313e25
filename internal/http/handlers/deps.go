package handlers

import (
	"github.com/jmoiron/sqlx"

	"cafecito/internal/repos"
	"cafecito/internal/services"
)

type Deps struct {
	MenuHandler  *MenuHandler
	CartHandler  *CartHandler
	OrderHandler *OrderHandler
	AdminHandler *AdminHandler
}

func NewDeps(db *sqlx.DB, auth *services.AuthService) *Deps {
	catRepo := repos.NewCatalogRepo(db)
	cartRepo := repos.NewCartRepo(db)
	orderRepo := repos.NewOrderRepo(db)

	catalogSvc := services.NewCatalogService(catRepo)
	cartSvc := services.NewCartService(cartRepo, catRepo)
	checkoutSvc := services.NewCheckoutService(db, cartRepo, catRepo, orderRepo)
	orderSvc := services.NewOrderService(orderRepo)

	return &Deps{
		MenuHandler:  &MenuHandler{Catalog: catalogSvc},
		CartHandler:  &CartHandler{Cart: cartSvc},
		OrderHandler: &OrderHandler{Cart: cartSvc, Checkout: checkoutSvc, Orders: orderSvc, Auth: auth},
		AdminHandler: &AdminHandler{Orders: orderSvc, Catalog: catalogSvc},
	}
}
