package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"testing"
)

// Full storefront flow: login, add to cart, checkout, view the order.
func TestCheckoutFlow(t *testing.T) {
	app, db := newTestApp(t)
	cl := newClient(app)
	cl.login(t, "alice@cafecito.test", "Passw0rd!")

	// Seeded product 3 is the Latte at 3.50 with stock 30.
	resp := cl.do(t, "POST", "/cart", url.Values{
		"family": {"product"}, "id": {"3"}, "qty": {"2"},
	})
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("cart add: got %d", resp.StatusCode)
	}

	resp = cl.do(t, "GET", "/api/v1/cart", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("cart snapshot: got %d", resp.StatusCode)
	}
	var cv struct {
		Items []struct {
			Family    string  `json:"family"`
			ID        int64   `json:"id"`
			Name      string  `json:"name"`
			UnitPrice float64 `json:"unitPrice"`
			Quantity  int     `json:"quantity"`
		} `json:"items"`
		Total float64 `json:"total"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&cv); err != nil {
		t.Fatal(err)
	}
	if len(cv.Items) != 1 || cv.Items[0].Quantity != 2 || cv.Total != 7.00 {
		t.Fatalf("bad cart snapshot: %+v", cv)
	}

	resp = cl.do(t, "POST", "/orders", url.Values{})
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("place order: got %d (%s)", resp.StatusCode, readBody(t, resp))
	}
	loc := resp.Header.Get("Location")
	if !strings.HasPrefix(loc, "/order/") {
		t.Fatalf("bad redirect: %q", loc)
	}

	resp = cl.do(t, "GET", loc, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("order page: got %d", resp.StatusCode)
	}
	body := readBody(t, resp)
	if !strings.Contains(body, "pending") || !strings.Contains(body, "7.00") {
		t.Fatalf("order page missing status/total: %s", body)
	}

	var stock int
	if err := db.Get(&stock, `SELECT stock FROM products WHERE id = 3`); err != nil {
		t.Fatal(err)
	}
	if stock != 28 {
		t.Fatalf("want stock 28 after checkout, got %d", stock)
	}

	// Cart is gone; placing again is an empty-cart failure.
	resp = cl.do(t, "POST", "/orders", url.Values{})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("second checkout on empty cart: got %d", resp.StatusCode)
	}
}

func TestCheckoutRequiresLogin(t *testing.T) {
	app, _ := newTestApp(t)
	cl := newClient(app)

	// Prime cookies, fill the cart anonymously.
	_ = cl.do(t, "GET", "/", nil)
	resp := cl.do(t, "POST", "/cart", url.Values{
		"family": {"addon"}, "id": {"1"}, "qty": {"1"},
	})
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("cart add: got %d", resp.StatusCode)
	}

	resp = cl.do(t, "POST", "/orders", url.Values{})
	if resp.StatusCode != http.StatusFound || resp.Header.Get("Location") != "/login" {
		t.Fatalf("anonymous checkout must bounce to login, got %d -> %q",
			resp.StatusCode, resp.Header.Get("Location"))
	}

	// The cart survives the refusal.
	resp = cl.do(t, "GET", "/api/v1/cart", nil)
	body := readBody(t, resp)
	if !strings.Contains(body, "Extra Shot") {
		t.Fatalf("cart lost after refused checkout: %s", body)
	}
}

func TestCheckoutInsufficientStockSurfaces(t *testing.T) {
	app, db := newTestApp(t)
	db.MustExec(`UPDATE promotions SET stock = 2 WHERE id = 1`)

	cl := newClient(app)
	cl.login(t, "alice@cafecito.test", "Passw0rd!")

	resp := cl.do(t, "POST", "/cart", url.Values{
		"family": {"promotion"}, "id": {"1"}, "qty": {"3"},
	})
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("cart add: got %d", resp.StatusCode)
	}

	resp = cl.do(t, "POST", "/orders", url.Values{})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("want 409 for short stock, got %d", resp.StatusCode)
	}
	if body := readBody(t, resp); !strings.Contains(body, "insufficient stock") {
		t.Fatalf("failure reason missing: %s", body)
	}

	var stock int
	if err := db.Get(&stock, `SELECT stock FROM promotions WHERE id = 1`); err != nil {
		t.Fatal(err)
	}
	if stock != 2 {
		t.Fatalf("stock must be untouched, got %d", stock)
	}
}
