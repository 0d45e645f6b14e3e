// Package session is the source of truth for "is this browser authenticated,
// and as whom". Auth state lives in two cookies plus a third, independent one
// for the last-purchase snapshot; rehydration never trusts a stored value it
// cannot fully parse and structurally check.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/jithin-j-s/nextjs-ecommerce-nike/internal/config"
	"github.com/jithin-j-s/nextjs-ecommerce-nike/internal/model"
)

const (
	// TokenCookie holds the opaque auth token. The route guard keys off its
	// presence alone.
	TokenCookie = "token"

	userCookie         = "user"
	lastPurchaseCookie = "last_purchase"

	// Rehydrated tokens at or below this length are treated as corrupt.
	minTokenLength = 10
)

var (
	errNoCredentials = errors.New("no stored credentials")
	errTokenTooShort = errors.New("stored token below minimum length")
	errMissingUserID = errors.New("stored user has no id")
)

// Session is the per-request view of the browser's state. Orders and the
// error fields are in-memory only; everything else round-trips through the
// Jar.
type Session struct {
	Token         string
	User          *model.User
	Authenticated bool
	Err           string
	Orders        []model.Order
	OrdersErr     string
	LastPurchased *model.PurchasedProduct
}

// Store writes session state through a Jar with fixed secure attributes.
type Store struct {
	log    *zap.Logger
	ttl    time.Duration
	secure bool
}

// NewStore builds a Store from the process configuration.
func NewStore(cfg *config.Config, logger *zap.Logger) *Store {
	return &Store{log: logger, ttl: cfg.CookieTTL, secure: cfg.CookieSecure}
}

func (s *Store) cookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		Secure:   s.secure,
		SameSite: http.SameSiteStrictMode,
	}
}

// Login persists the token and user and returns an authenticated session.
// On any failure both entries are removed and the returned session carries an
// error instead: authenticated in memory implies successfully persisted,
// never the reverse.
func (s *Store) Login(jar Jar, token string, user model.User) (*Session, error) {
	raw, err := json.Marshal(user)
	if err != nil {
		jar.Delete(TokenCookie)
		jar.Delete(userCookie)
		s.log.Error("failed to serialize user", zap.Error(err))
		return &Session{Err: "failed to save login data"}, fmt.Errorf("serialize user: %w", err)
	}
	ttl := int(s.ttl.Seconds())
	jar.Set(s.cookie(TokenCookie, token, ttl))
	jar.Set(s.cookie(userCookie, string(raw), ttl))
	return &Session{Token: token, User: &user, Authenticated: true}, nil
}

// Logout clears the auth entries, best-effort, and returns an unauthenticated
// session. The last-purchase snapshot is deliberately left alone.
func (s *Store) Logout(jar Jar) *Session {
	jar.Delete(TokenCookie)
	jar.Delete(userCookie)
	return &Session{}
}

// Init rehydrates a session from the jar. Absent credentials mean
// unauthenticated; anything present but malformed or structurally invalid is
// treated as corruption, which clears both auth entries rather than trusting
// a half-valid session.
func (s *Store) Init(jar Jar) *Session {
	sess := &Session{}
	sess.LastPurchased = s.loadLastPurchase(jar)

	token, user, err := decodeAuth(jar)
	if err != nil {
		if !errors.Is(err, errNoCredentials) {
			s.log.Warn("clearing corrupt session cookies", zap.Error(err))
			jar.Delete(TokenCookie)
			jar.Delete(userCookie)
		}
		return sess
	}

	sess.Token = token
	sess.User = user
	sess.Authenticated = true
	return sess
}

// decodeAuth is the pure rehydration step. It only reads the jar; the caller
// decides whether a failure clears storage.
func decodeAuth(jar Jar) (string, *model.User, error) {
	token, hasToken := jar.Get(TokenCookie)
	rawUser, hasUser := jar.Get(userCookie)
	if !hasToken || !hasUser || token == "" || rawUser == "" {
		return "", nil, errNoCredentials
	}

	var user model.User
	if err := json.Unmarshal([]byte(rawUser), &user); err != nil {
		return "", nil, fmt.Errorf("parse stored user: %w", err)
	}
	if len(token) <= minTokenLength {
		return "", nil, errTokenTooShort
	}
	if user.ID == "" {
		return "", nil, errMissingUserID
	}
	return token, &user, nil
}

// SetLastPurchased overwrites the snapshot backing the purchase confirmation
// view. It is persisted on its own and survives logout.
func (s *Store) SetLastPurchased(jar Jar, sess *Session, product model.PurchasedProduct) error {
	raw, err := json.Marshal(product)
	if err != nil {
		return fmt.Errorf("serialize last purchase: %w", err)
	}
	// MaxAge 0 leaves the lifetime to the browser.
	jar.Set(s.cookie(lastPurchaseCookie, string(raw), 0))
	sess.LastPurchased = &product
	return nil
}

func (s *Store) loadLastPurchase(jar Jar) *model.PurchasedProduct {
	raw, ok := jar.Get(lastPurchaseCookie)
	if !ok || raw == "" {
		return nil
	}
	var product model.PurchasedProduct
	if err := json.Unmarshal([]byte(raw), &product); err != nil {
		s.log.Warn("dropping corrupt last-purchase cookie", zap.Error(err))
		jar.Delete(lastPurchaseCookie)
		return nil
	}
	return &product
}

// SetOrders replaces the in-memory order list. Orders are refetched per
// session and never persisted.
func (sess *Session) SetOrders(orders []model.Order) {
	sess.Orders = orders
	sess.OrdersErr = ""
}

// AddOrder prepends, keeping the list reverse-chronological.
func (sess *Session) AddOrder(order model.Order) {
	sess.Orders = append([]model.Order{order}, sess.Orders...)
	sess.OrdersErr = ""
}

// ClearOrders drops the in-memory order list.
func (sess *Session) ClearOrders() {
	sess.Orders = nil
	sess.OrdersErr = ""
}

// SetOrdersError flags a failed order fetch without touching auth state.
func (sess *Session) SetOrdersError(msg string) {
	sess.OrdersErr = msg
}
