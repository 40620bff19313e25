package handlers

import (
	"github.com/gofiber/fiber/v2"

	"cafecito/internal/domain"
	applog "cafecito/internal/log"
	"cafecito/internal/services"
	"cafecito/internal/validate"
)

type MenuHandler struct {
	Catalog *services.CatalogService
}

// Home renders the menu: every family in its own section.
func (h *MenuHandler) Home(c *fiber.Ctx) error {
	menu, err := h.Catalog.Menu()
	if err != nil {
		applog.Error(c, "menu.load.fail", err, nil)
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Could not load the menu"})
	}
	return render(c, "menu", fiber.Map{
		"Products":   menu[domain.FamilyProduct],
		"Promotions": menu[domain.FamilyPromotion],
		"AddOns":     menu[domain.FamilyAddOn],
	})
}

// Availability answers GET /api/v1/availability?family=product&id=3.
func (h *MenuHandler) Availability(c *fiber.Ctx) error {
	family, ok := validate.Family(c.Query("family"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "family"})
		return c.Status(400).JSON(fiber.Map{"error": "invalid family"})
	}
	id, ok := validate.ItemID(c.Query("id"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "id"})
		return c.Status(400).JSON(fiber.Map{"error": "invalid id"})
	}

	a, err := h.Catalog.CheckAvailability(domain.Family(family), id)
	if err != nil {
		applog.Error(c, "availability.fail", err, map[string]any{"family": family, "id": id})
		return c.Status(500).JSON(fiber.Map{"error": "availability unavailable"})
	}
	return c.JSON(a)
}
