package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"cafecito/internal/domain"
	applog "cafecito/internal/log"
	"cafecito/internal/services"
	"cafecito/internal/validate"
)

type AdminHandler struct {
	Orders  *services.OrderService
	Catalog *services.CatalogService
}

// GET /admin
func (h *AdminHandler) Dashboard(c *fiber.Ctx) error {
	return render(c, "admin_dashboard", fiber.Map{})
}

// GET /admin/orders
func (h *AdminHandler) OrdersPage(c *fiber.Ctx) error {
	ords, err := h.Orders.Latest(100)
	if err != nil {
		applog.Error(c, "admin.orders.list.fail", err, nil)
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Could not load orders"})
	}
	return render(c, "admin_orders", fiber.Map{"Orders": ords})
}

// POST /admin/orders/:id/status
func (h *AdminHandler) UpdateOrderStatus(c *fiber.Ctx) error {
	id := c.Params("id")
	status := c.FormValue("status")
	if id == "" || status == "" {
		return c.Status(400).SendString("missing id or status")
	}
	if err := h.Orders.SetStatus(id, status); err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidStatus):
			applog.Security(c, "admin.orders.update.invalid", map[string]any{"order_id": id, "status": status})
			return c.Status(400).SendString("invalid status or transition")
		case errors.Is(err, services.ErrOrderNotFound):
			return c.Status(404).SendString("order not found")
		default:
			applog.Error(c, "admin.orders.update.fail", err, map[string]any{"order_id": id})
			return c.Status(500).SendString("could not update status")
		}
	}
	applog.Audit(c, "admin.orders.update", map[string]any{"order_id": id, "status": status})
	return c.Redirect("/admin/orders")
}

// GET /admin/catalog
func (h *AdminHandler) CatalogPage(c *fiber.Ctx) error {
	menu, err := h.Catalog.Menu()
	if err != nil {
		applog.Error(c, "admin.catalog.list.fail", err, nil)
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Could not load the catalog"})
	}
	return render(c, "admin_catalog", fiber.Map{
		"Products":   menu[domain.FamilyProduct],
		"Promotions": menu[domain.FamilyPromotion],
		"AddOns":     menu[domain.FamilyAddOn],
	})
}

// POST /admin/catalog — creates when no id is given, updates otherwise.
func (h *AdminHandler) SaveCatalogItem(c *fiber.Ctx) error {
	family, okF := validate.Family(c.FormValue("family"))
	name, okN := validate.Name(c.FormValue("name"))
	price, okP := validate.Price(c.FormValue("price"))
	stock, okS := validate.Stock(c.FormValue("stock"))
	if !okF || !okN || !okP || !okS {
		return c.Status(400).SendString("invalid input")
	}
	f := domain.Family(family)

	if rawID := c.FormValue("id"); rawID != "" {
		id, ok := validate.ItemID(rawID)
		if !ok {
			return c.Status(400).SendString("invalid id")
		}
		if err := h.Catalog.Update(f, id, name, price, stock); err != nil {
			var nfErr *services.ItemNotFoundError
			if errors.As(err, &nfErr) {
				return c.Status(404).SendString("item not found")
			}
			applog.Error(c, "admin.catalog.save.fail", err, map[string]any{"family": family, "id": id})
			return c.Status(500).SendString("could not save item")
		}
		applog.Audit(c, "admin.catalog.update", map[string]any{"family": family, "id": id, "price": price, "stock": stock})
		return c.Redirect("/admin/catalog")
	}

	id, err := h.Catalog.Create(f, name, price, stock)
	if err != nil {
		applog.Error(c, "admin.catalog.create.fail", err, map[string]any{"family": family})
		return c.Status(500).SendString("could not create item")
	}
	applog.Audit(c, "admin.catalog.create", map[string]any{"family": family, "id": id})
	return c.Redirect("/admin/catalog")
}

// POST /admin/catalog/delete
func (h *AdminHandler) DeleteCatalogItem(c *fiber.Ctx) error {
	family, okF := validate.Family(c.FormValue("family"))
	id, okID := validate.ItemID(c.FormValue("id"))
	if !okF || !okID {
		return c.Status(400).SendString("invalid input")
	}
	if err := h.Catalog.Delete(domain.Family(family), id); err != nil {
		var nfErr *services.ItemNotFoundError
		if errors.As(err, &nfErr) {
			return c.Status(404).SendString("item not found")
		}
		applog.Error(c, "admin.catalog.delete.fail", err, map[string]any{"family": family, "id": id})
		return c.Status(500).SendString("could not delete item")
	}
	applog.Audit(c, "admin.catalog.delete", map[string]any{"family": family, "id": id})
	return c.Redirect("/admin/catalog")
}
