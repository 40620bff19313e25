package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"cafecito/internal/domain"
	applog "cafecito/internal/log"
	"cafecito/internal/services"
)

type OrderHandler struct {
	Cart     *services.CartService
	Checkout *services.CheckoutService
	Orders   *services.OrderService
	Auth     *services.AuthService
}

// CheckoutPage shows the priced cart one last time before placing the order.
func (h *OrderHandler) CheckoutPage(c *fiber.Ctx) error {
	cv, err := h.Cart.View(ensureSID(c))
	if err != nil {
		applog.Error(c, "checkout.load", err, nil)
		return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{"Message": "Could not load your cart"})
	}
	return render(c, "checkout", fiber.Map{"Cart": cv})
}

// Place runs the checkout transaction and redirects to the order page.
func (h *OrderHandler) Place(c *fiber.Ctx) error {
	sid := ensureSID(c)

	var userID string
	if u, err := h.Auth.CurrentUser(sid); err == nil && u != nil {
		userID = u.ID
	}

	orderID, err := h.Checkout.Checkout(sid, userID)
	if err != nil {
		var stockErr *services.InsufficientStockError
		var nfErr *services.ItemNotFoundError
		switch {
		case errors.Is(err, services.ErrUnauthenticated):
			applog.Security(c, "order.place.unauthenticated", nil)
			return c.Redirect("/login")
		case errors.Is(err, services.ErrEmptyCart):
			return c.Status(fiber.StatusBadRequest).SendString("Your cart is empty.")
		case errors.As(err, &stockErr):
			applog.Info(c, "order.place.out_of_stock", map[string]any{
				"family": stockErr.Family, "id": stockErr.ItemID,
				"want": stockErr.Want, "have": stockErr.Have,
			})
			return c.Status(fiber.StatusConflict).SendString(stockErr.Error())
		case errors.As(err, &nfErr):
			return c.Status(fiber.StatusConflict).SendString(nfErr.Error())
		default:
			applog.Error(c, "order.place.fail", err, map[string]any{"sid": sid})
			return c.Status(fiber.StatusInternalServerError).SendString("Could not place the order. Please try again.")
		}
	}

	applog.Audit(c, "order.place", map[string]any{"order_id": orderID, "user_id": userID})
	return c.Redirect("/order/" + orderID)
}

// View shows one order. Only the owner and admins may see it; anyone else
// gets the same not-found page as a missing order.
func (h *OrderHandler) View(c *fiber.Ctx) error {
	oid := c.Params("id")
	if oid == "" {
		return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": "Order not found"})
	}

	o, items, err := h.Orders.Get(oid)
	if err != nil {
		if !errors.Is(err, services.ErrOrderNotFound) {
			applog.Error(c, "order.view.fail", err, map[string]any{"order_id": oid})
		}
		return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": "Order not found"})
	}

	var u *domain.User
	if sid := c.Cookies("sid"); sid != "" {
		u, _ = h.Auth.CurrentUser(sid)
	}
	if u == nil || (u.ID != o.UserID && u.Role != "ADMIN") {
		applog.Security(c, "access.denied.order", map[string]any{"order_id": oid})
		return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": "Order not found"})
	}

	return render(c, "order", fiber.Map{"Order": o, "Items": items})
}

// History lists orders for the current logged-in user.
func (h *OrderHandler) History(c *fiber.Ctx) error {
	u, _ := c.Locals("user").(*domain.User)
	if u == nil {
		return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": "Orders not available"})
	}
	orders, err := h.Orders.History(u.ID)
	if err != nil {
		applog.Error(c, "orders.history.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{"Message": "Could not load orders"})
	}
	return render(c, "order_history", fiber.Map{"Orders": orders})
}
