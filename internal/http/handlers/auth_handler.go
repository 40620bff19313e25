package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	applog "cafecito/internal/log"
	"cafecito/internal/services"
	"cafecito/internal/validate"
)

type AuthHandler struct {
	Auth *services.AuthService
}

func ensureSID(c *fiber.Ctx) string {
	sid := c.Cookies("sid")
	if sid == "" {
		sid = uuid.NewString()
		c.Cookie(&fiber.Cookie{
			Name:     "sid",
			Value:    sid,
			Path:     "/",
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
			Secure:   false, // set true behind TLS
		})
	}
	return sid
}

func (h *AuthHandler) LoginForm(c *fiber.Ctx) error {
	return render(c, "login", fiber.Map{"Err": ""})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	sid := ensureSID(c)
	email := c.FormValue("email")
	pass := c.FormValue("password")
	if _, ok := validate.Email(email); !ok {
		applog.Security(c, "auth.login.fail", map[string]any{"email": email, "reason": "bad_format"})
		return c.Status(401).Render("login", fiber.Map{"Err": "Invalid email or password", "CSRFToken": c.Cookies("csrf_")})
	}

	_, err := h.Auth.Login(sid, email, pass)
	if err != nil {
		applog.Security(c, "auth.login.fail", map[string]any{"email": email})
		return c.Status(401).Render("login", fiber.Map{"Err": "Invalid email or password", "CSRFToken": c.Cookies("csrf_")})
	}

	applog.Audit(c, "auth.login.success", map[string]any{"email": email})
	return c.Redirect("/")
}

func (h *AuthHandler) RegisterForm(c *fiber.Ctx) error {
	return render(c, "register", fiber.Map{"Err": ""})
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	sid := ensureSID(c)
	name, okName := validate.Name(c.FormValue("name"))
	email, okEmail := validate.Email(c.FormValue("email"))
	pass := c.FormValue("password")

	fail := func(msg string) error {
		return c.Status(400).Render("register", fiber.Map{"Err": msg, "CSRFToken": c.Cookies("csrf_")})
	}
	if !okName {
		return fail("Name must be 1-40 characters")
	}
	if !okEmail {
		return fail("Invalid email address")
	}
	if !validate.Password(pass) {
		return fail("Password needs 8+ characters with upper, lower and digit")
	}

	if _, err := h.Auth.Register(sid, name, email, pass); err != nil {
		if err == services.ErrEmailTaken {
			applog.Security(c, "auth.register.dup", map[string]any{"email": email})
			return fail("Email already registered")
		}
		applog.Error(c, "auth.register.fail", err, nil)
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Could not create the account"})
	}

	applog.Audit(c, "auth.register.success", map[string]any{"email": email})
	return c.Redirect("/")
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sid := ensureSID(c)
	_ = h.Auth.Logout(sid)
	c.Cookie(&fiber.Cookie{
		Name:     "sid",
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   false,
		Expires:  time.Now().Add(-1 * time.Hour),
	})
	applog.Audit(c, "auth.logout", map[string]any{"sid": sid})
	return c.Redirect("/")
}

// Me reports the logged-in user for the fetch-based frontend.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	sid := c.Cookies("sid")
	if sid != "" {
		if u, err := h.Auth.CurrentUser(sid); err == nil && u != nil {
			return c.JSON(fiber.Map{"user": fiber.Map{"id": u.ID, "name": u.Name, "role": u.Role}})
		}
	}
	return c.JSON(fiber.Map{"user": nil})
}
