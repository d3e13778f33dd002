package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"

	"github.com/evergreenfarmers/storefront/pkg/config"
	"github.com/evergreenfarmers/storefront/pkg/logger"
)

const (
	cartSessionHeader = "X-Cart-Session"
	cartSessionValue  = "cart_session_id"

	// maxSessionKeyLen is the width of carts.session_id and orders.session_id.
	maxSessionKeyLen = 64
)

// NewCartSessionStore builds the signed (and, with a block key, encrypted)
// cookie store holding the cart session id.
func NewCartSessionStore(cfg config.SessionConfig) *sessions.CookieStore {
	keys := [][]byte{[]byte(cfg.HashKey)}
	if cfg.BlockKey != "" {
		keys = append(keys, []byte(cfg.BlockKey))
	}
	store := sessions.NewCookieStore(keys...)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   cfg.MaxAge,
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

// CartSession resolves the visitor's cart session id and puts it in the
// request context. API clients may pass X-Cart-Session instead of a cookie;
// browsers get a cookie issued on first contact.
func CartSession(store sessions.Store, cookieName string, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := strings.TrimSpace(r.Header.Get(cartSessionHeader))
			if len(key) > maxSessionKeyLen {
				key = ""
			}
			if key == "" {
				key = cookieSessionKey(w, r, store, cookieName, logg)
			}

			w.Header().Set(cartSessionHeader, key)
			ctx := WithCartSession(r.Context(), key)
			if logg != nil {
				ctx = logg.WithSessionKey(ctx, key)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// cookieSessionKey reads the id from the cookie, issuing a new one when the
// cookie is absent or no longer decodes.
func cookieSessionKey(w http.ResponseWriter, r *http.Request, store sessions.Store, cookieName string, logg *logger.Logger) string {
	session, err := store.Get(r, cookieName)
	if err != nil && logg != nil {
		logg.Warn(logg.WithField(r.Context(), "error", err.Error()), "cart_session.cookie_invalid")
	}
	if session == nil {
		return uuid.NewString()
	}
	if key, ok := session.Values[cartSessionValue].(string); ok && key != "" {
		return key
	}

	key := uuid.NewString()
	session.Values[cartSessionValue] = key
	if err := session.Save(r, w); err != nil && logg != nil {
		logg.Error(r.Context(), "cart_session.save_failed", err)
	}
	return key
}
