package handlers

import (
	"github.com/gofiber/fiber/v2"

	"cafecito/internal/domain"
	applog "cafecito/internal/log"
	"cafecito/internal/services"
	"cafecito/internal/validate"
)

type CartHandler struct {
	Cart *services.CartService
}

// cartRef pulls the (family, id) pair every cart mutation requires. Both
// fields are mandatory; a bare id is ambiguous across families.
func cartRef(c *fiber.Ctx) (domain.Family, int64, bool) {
	family, ok := validate.Family(c.FormValue("family"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "family"})
		return "", 0, false
	}
	id, ok := validate.ItemID(c.FormValue("id"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "id"})
		return "", 0, false
	}
	return domain.Family(family), id, true
}

func (h *CartHandler) Add(c *fiber.Ctx) error {
	sid := ensureSID(c)
	family, id, ok := cartRef(c)
	if !ok {
		return c.Status(400).SendString("missing or invalid family/id")
	}
	qty := validate.Qty(c.FormValue("qty"))

	if err := h.Cart.Add(sid, family, id, qty); err != nil {
		applog.Error(c, "cart.add.fail", err, map[string]any{"family": family, "id": id})
		return c.Status(500).SendString("could not add to cart")
	}
	applog.Info(c, "cart.add", map[string]any{"family": family, "id": id, "qty": qty})
	return c.Redirect("/cart")
}

func (h *CartHandler) Update(c *fiber.Ctx) error {
	sid := ensureSID(c)
	family, id, ok := cartRef(c)
	if !ok {
		return c.Status(400).SendString("missing or invalid family/id")
	}
	delta, ok := validate.Delta(c.FormValue("delta"))
	if !ok {
		return c.Status(400).SendString("missing or invalid delta")
	}

	if err := h.Cart.UpdateQty(sid, family, id, delta); err != nil {
		if err == services.ErrCartEntryNotFound {
			return c.Status(404).SendString("item not in cart")
		}
		applog.Error(c, "cart.update.fail", err, map[string]any{"family": family, "id": id})
		return c.Status(500).SendString("could not update cart")
	}
	return c.Redirect("/cart")
}

func (h *CartHandler) Remove(c *fiber.Ctx) error {
	sid := ensureSID(c)
	family, id, ok := cartRef(c)
	if !ok {
		return c.Status(400).SendString("missing or invalid family/id")
	}

	if err := h.Cart.Remove(sid, family, id); err != nil {
		if err == services.ErrCartEntryNotFound {
			return c.Status(404).SendString("item not in cart")
		}
		applog.Error(c, "cart.remove.fail", err, map[string]any{"family": family, "id": id})
		return c.Status(500).SendString("could not update cart")
	}
	return c.Redirect("/cart")
}

func (h *CartHandler) Clear(c *fiber.Ctx) error {
	sid := ensureSID(c)
	if err := h.Cart.Clear(sid); err != nil {
		applog.Error(c, "cart.clear.fail", err, nil)
		return c.Status(500).SendString("could not clear cart")
	}
	return c.Redirect("/cart")
}

func (h *CartHandler) View(c *fiber.Ctx) error {
	sid := ensureSID(c)
	cv, err := h.Cart.View(sid)
	if err != nil {
		applog.Error(c, "cart.view.fail", err, nil)
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Could not load your cart"})
	}
	return render(c, "cart", fiber.Map{"Cart": cv})
}

// Snapshot serves the priced cart as JSON for the fetch-based frontend.
func (h *CartHandler) Snapshot(c *fiber.Ctx) error {
	sid := ensureSID(c)
	cv, err := h.Cart.View(sid)
	if err != nil {
		applog.Error(c, "cart.snapshot.fail", err, nil)
		return c.Status(500).JSON(fiber.Map{"error": "cart unavailable"})
	}
	return c.JSON(cv)
}
