package handlers_test

import (
	"net/http"
	"net/url"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"cafecito/internal/repos"
)

// Seeded passwords must be hashed, never plaintext.
func TestPasswordsSeededAreHashed(t *testing.T) {
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	var hashes []string
	if err := db.Select(&hashes, `SELECT password_hash FROM users`); err != nil {
		t.Fatalf("select hashes: %v", err)
	}
	if len(hashes) == 0 {
		t.Fatal("no users seeded")
	}
	for _, h := range hashes {
		if strings.Contains(h, "Passw0rd!") {
			t.Fatal("hash contains plaintext password")
		}
		if !strings.HasPrefix(h, "$2") {
			t.Fatalf("unexpected hash format: %s", h)
		}
		if err := bcrypt.CompareHashAndPassword([]byte(h), []byte("Passw0rd!")); err != nil {
			t.Fatalf("seed hash does not validate known password: %v", err)
		}
	}
}

func TestRegisterLoginMe(t *testing.T) {
	app, _ := newTestApp(t)
	cl := newClient(app)
	_ = cl.do(t, "GET", "/register", nil)

	resp := cl.do(t, "POST", "/register", url.Values{
		"name": {"Carmen"}, "email": {"carmen@cafecito.test"}, "password": {"Cafecito1"},
	})
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("register: got %d (%s)", resp.StatusCode, readBody(t, resp))
	}

	// Registration logs the session in.
	body := readBody(t, cl.do(t, "GET", "/api/v1/me", nil))
	if !strings.Contains(body, "Carmen") {
		t.Fatalf("me after register: %s", body)
	}

	// Same email again is rejected.
	resp = cl.do(t, "POST", "/register", url.Values{
		"name": {"Carmen"}, "email": {"carmen@cafecito.test"}, "password": {"Cafecito1"},
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("duplicate register: want 400, got %d", resp.StatusCode)
	}

	resp = cl.do(t, "POST", "/logout", url.Values{})
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("logout: got %d", resp.StatusCode)
	}
	body = readBody(t, cl.do(t, "GET", "/api/v1/me", nil))
	if !strings.Contains(body, `"user":null`) {
		t.Fatalf("me after logout: %s", body)
	}
}

func TestRegisterWeakPasswordRejected(t *testing.T) {
	app, _ := newTestApp(t)
	cl := newClient(app)
	_ = cl.do(t, "GET", "/register", nil)

	resp := cl.do(t, "POST", "/register", url.Values{
		"name": {"Eve"}, "email": {"eve@cafecito.test"}, "password": {"short"},
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("weak password: want 400, got %d", resp.StatusCode)
	}
}
