package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/railbook-io/railbook/internal/account/domain"
	"github.com/railbook-io/railbook/internal/outcome"
	"github.com/railbook-io/railbook/pkg/logging"
)

func TestCookieName(t *testing.T) {
	if got := CookieName(domain.RoleAdmin); got != "sessionIdForADMIN" {
		t.Fatalf("admin cookie = %q", got)
	}
	if got := CookieName(domain.RoleCustomer); got != "sessionIdForCUSTOMER" {
		t.Fatalf("customer cookie = %q", got)
	}
}

func TestReadCookie(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: "sessionIdForADMIN", Value: "abc123"})

	v, ok := ReadCookie(r, "sessionIdForADMIN")
	if !ok || v != "abc123" {
		t.Fatalf("got %q, %v", v, ok)
	}
	if _, ok := ReadCookie(r, "sessionIdForCUSTOMER"); ok {
		t.Fatal("found cookie that was never set")
	}
}

func TestValidateMissingCookie(t *testing.T) {
	m := NewManager(logging.New(), nil, nil, 0)
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	for _, role := range []domain.Role{domain.RoleAdmin, domain.RoleCustomer} {
		_, err := m.Validate(context.Background(), r, role)
		if err == nil {
			t.Fatalf("validate passed without cookie for %s", role)
		}
		if err.Error() != ExpiredMessage {
			t.Fatalf("message = %q, want %q", err.Error(), ExpiredMessage)
		}
		var oe *outcome.Error
		if !errors.As(err, &oe) || oe.StatusCode != 401 {
			t.Fatalf("status = %v", err)
		}
	}
}

func TestLoginResult(t *testing.T) {
	if got := LoginResult(nil); got != "SUCCESS" {
		t.Fatalf("success result = %q", got)
	}
	got := LoginResult(outcome.New("Invalid credentials"))
	if !strings.Contains(got, "UNAUTHORIZED") || !strings.Contains(got, "Invalid credentials") {
		t.Fatalf("failure result = %q", got)
	}
}

func TestLogoutExpiresCookies(t *testing.T) {
	m := NewManager(logging.New(), nil, nil, 0)
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/", nil)

	m.Logout(context.Background(), w, r, domain.RoleCustomer)

	cookies := w.Result().Cookies()
	if len(cookies) != 2 {
		t.Fatalf("got %d cookies, want 2", len(cookies))
	}
	for _, c := range cookies {
		if c.Value != "" || c.MaxAge != -1 {
			t.Fatalf("cookie %s not expired: value=%q maxage=%d", c.Name, c.Value, c.MaxAge)
		}
	}
}
