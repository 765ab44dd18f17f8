package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/railbook-io/railbook/internal/account/domain"
	"github.com/railbook-io/railbook/internal/outcome"
)

// ExpiredMessage is the exact user-facing text for a missing or
// expired session.
const ExpiredMessage = "Session Expired, Login Again to Continue"

const usernameCookie = "username"

// DefaultTTL bounds server-side session lifetime. Absence of the
// cookie is no longer the sole expiry signal; the Redis record is.
const DefaultTTL = 30 * time.Minute

// Authenticator is the slice of the account service the gate needs.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (domain.Account, error)
}

// Record is the server-side session state keyed by the opaque token.
type Record struct {
	Email string      `json:"email"`
	Name  string      `json:"name"`
	Role  domain.Role `json:"role"`
}

// Manager issues and validates role-scoped session cookies backed by
// Redis records with TTL.
type Manager struct {
	log  *slog.Logger
	rdb  *redis.Client
	auth Authenticator
	ttl  time.Duration
}

func NewManager(log *slog.Logger, rdb *redis.Client, auth Authenticator, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{log: log, rdb: rdb, auth: auth, ttl: ttl}
}

// CookieName is the role-scoped session cookie name, e.g.
// sessionIdForADMIN.
func CookieName(role domain.Role) string {
	return "sessionIdFor" + string(role)
}

// ReadCookie returns the named cookie's value if present.
func ReadCookie(r *http.Request, name string) (string, bool) {
	c, err := r.Cookie(name)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}

func sessionKey(token string) string { return "session:" + token }

// Login authenticates the credentials for the role, stores a session
// record and sets the session and username cookies.
func (m *Manager) Login(ctx context.Context, w http.ResponseWriter, role domain.Role, email, password string) (domain.Account, error) {
	a, err := m.auth.Authenticate(ctx, email, password)
	if err != nil {
		return domain.Account{}, err
	}
	if a.Role != role {
		return domain.Account{}, outcome.FromCode(outcome.Unauthorized)
	}

	token := uuid.NewString()
	rec, err := json.Marshal(Record{Email: a.Email, Name: a.FirstName, Role: role})
	if err != nil {
		return domain.Account{}, outcome.Wrap(outcome.InternalServerError, err)
	}
	if err := m.rdb.Set(ctx, sessionKey(token), rec, m.ttl).Err(); err != nil {
		return domain.Account{}, outcome.Wrap(outcome.InternalServerError, err)
	}

	http.SetCookie(w, &http.Cookie{Name: CookieName(role), Value: token, Path: "/", HttpOnly: true})
	http.SetCookie(w, &http.Cookie{Name: usernameCookie, Value: a.FirstName, Path: "/"})
	m.log.Info("session issued", "role", role, "email", a.Email)
	return a, nil
}

// LoginResult preserves the legacy result contract: the SUCCESS
// literal on success, a message embedding the UNAUTHORIZED code
// otherwise.
func LoginResult(err error) string {
	if err == nil {
		return outcome.Success.String()
	}
	return fmt.Sprintf("%s: %s", outcome.Unauthorized.String(), err.Error())
}

// Validate gates a role-scoped operation. It fails with the exact
// session-expired message when the cookie or the server-side record
// is gone.
func (m *Manager) Validate(ctx context.Context, r *http.Request, role domain.Role) (Record, error) {
	expired := &outcome.Error{
		StatusCode: outcome.Unauthorized.Status(),
		ErrorCode:  outcome.Unauthorized.String(),
		Message:    ExpiredMessage,
	}

	token, ok := ReadCookie(r, CookieName(role))
	if !ok {
		return Record{}, expired
	}
	raw, err := m.rdb.Get(ctx, sessionKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Record{}, expired
		}
		return Record{}, outcome.Wrap(outcome.InternalServerError, err)
	}
	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return Record{}, expired
	}
	if rec.Role != role {
		return Record{}, expired
	}
	return rec, nil
}

// IsLoggedIn reports whether the request carries a live session for
// the role.
func (m *Manager) IsLoggedIn(ctx context.Context, r *http.Request, role domain.Role) bool {
	_, err := m.Validate(ctx, r, role)
	return err == nil
}

// Token returns the raw session token for the role, used to scope
// staged booking state.
func (m *Manager) Token(r *http.Request, role domain.Role) (string, bool) {
	return ReadCookie(r, CookieName(role))
}

// Logout deletes the server-side record and expires both cookies.
func (m *Manager) Logout(ctx context.Context, w http.ResponseWriter, r *http.Request, role domain.Role) {
	if token, ok := ReadCookie(r, CookieName(role)); ok {
		if err := m.rdb.Del(ctx, sessionKey(token)).Err(); err != nil {
			m.log.Warn("session delete failed", "err", err)
		}
	}
	http.SetCookie(w, &http.Cookie{Name: CookieName(role), Value: "", Path: "/", MaxAge: -1})
	http.SetCookie(w, &http.Cookie{Name: usernameCookie, Value: "", Path: "/", MaxAge: -1})
}
