package handlers_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"
	"github.com/jmoiron/sqlx"

	"cafecito/internal/http/handlers"
	"cafecito/internal/repos"
	"cafecito/internal/services"
)

// newTestApp wires the real routes against an in-memory database, mirroring
// cmd/cafecito.
func newTestApp(t *testing.T) (*fiber.App, *sqlx.DB) {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)

	userRepo := repos.NewUserRepo(db)
	authSvc := &services.AuthService{Users: userRepo}
	authH := &handlers.AuthHandler{Auth: authSvc}

	engine := html.New("../../web/templates", ".html")
	app := fiber.New(fiber.Config{Views: engine})
	app.Server().MaxRequestBodySize = 1 << 20
	app.Use(requestid.New())
	app.Use(func(c *fiber.Ctx) error {
		if sid := c.Cookies("sid"); sid != "" {
			if u, err := authSvc.CurrentUser(sid); err == nil && u != nil {
				c.Locals("user", u)
			}
		}
		return c.Next()
	})
	app.Use(csrf.New(csrf.Config{KeyLookup: "form:csrf", CookieName: "csrf_", CookieSameSite: "Lax"}))

	deps := handlers.NewDeps(db, authSvc)

	app.Get("/", deps.MenuHandler.Home)
	app.Get("/cart", deps.CartHandler.View)
	app.Post("/cart", deps.CartHandler.Add)
	app.Post("/cart/update", deps.CartHandler.Update)
	app.Post("/cart/remove", deps.CartHandler.Remove)
	app.Post("/cart/clear", deps.CartHandler.Clear)
	app.Get("/checkout", deps.OrderHandler.CheckoutPage)
	app.Post("/orders", deps.OrderHandler.Place)
	app.Get("/order/:id", deps.OrderHandler.View)
	app.Get("/orders", handlers.RequireUser(authSvc), deps.OrderHandler.History)

	api := app.Group("/api/v1")
	api.Get("/me", authH.Me)
	api.Get("/cart", deps.CartHandler.Snapshot)
	api.Get("/availability", deps.MenuHandler.Availability)

	app.Get("/login", authH.LoginForm)
	app.Post("/login", limiter.New(limiter.Config{Max: 5, Expiration: 10 * time.Minute}), authH.Login)
	app.Get("/register", authH.RegisterForm)
	app.Post("/register", authH.Register)
	app.Post("/logout", authH.Logout)

	admin := app.Group("/admin", handlers.RequireAdmin(authSvc))
	admin.Get("/orders", deps.AdminHandler.OrdersPage)
	admin.Post("/orders/:id/status", deps.AdminHandler.UpdateOrderStatus)
	admin.Get("/catalog", deps.AdminHandler.CatalogPage)
	admin.Post("/catalog", deps.AdminHandler.SaveCatalogItem)
	admin.Post("/catalog/delete", deps.AdminHandler.DeleteCatalogItem)

	return app, db
}

// client carries cookies (sid, csrf_) across requests like a browser would.
type client struct {
	app     *fiber.App
	cookies map[string]string
}

func newClient(app *fiber.App) *client {
	return &client{app: app, cookies: map[string]string{}}
}

func (cl *client) do(t *testing.T, method, path string, form url.Values) *http.Response {
	t.Helper()
	var body io.Reader
	if form != nil {
		form.Set("csrf", cl.cookies["csrf_"])
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for name, val := range cl.cookies {
		req.AddCookie(&http.Cookie{Name: name, Value: val})
	}
	resp, err := cl.app.Test(req, 10000)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	for _, c := range resp.Cookies() {
		if c.Value == "" {
			delete(cl.cookies, c.Name)
			continue
		}
		cl.cookies[c.Name] = c.Value
	}
	return resp
}

func (cl *client) login(t *testing.T, email, password string) {
	t.Helper()
	// Prime the csrf and sid cookies.
	_ = cl.do(t, "GET", "/login", nil)
	resp := cl.do(t, "POST", "/login", url.Values{"email": {email}, "password": {password}})
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("login as %s: got %d", email, resp.StatusCode)
	}
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}
