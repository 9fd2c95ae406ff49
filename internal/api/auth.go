package api

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/atlas-digital/agency-engine/internal/config"
)

const sessionCookieName = "agency_admin_session"

// Auth implements shared-secret admin authentication with a signed,
// httpOnly session cookie. The secret is compared in constant time.
type Auth struct {
	password []byte
	secret   []byte
	ttl      time.Duration
	now      func() time.Time
}

// NewAuth creates the admin authenticator
func NewAuth(cfg config.AdminConfig) *Auth {
	return &Auth{
		password: []byte(cfg.Password),
		secret:   []byte(cfg.SessionSecret),
		ttl:      cfg.SessionTTL,
		now:      time.Now,
	}
}

// Enabled reports whether an admin password is configured. With no
// password the admin surface is disabled entirely.
func (a *Auth) Enabled() bool {
	return len(a.password) > 0
}

// VerifyPassword compares a submitted credential against the configured
// secret in constant time
func (a *Auth) VerifyPassword(password string) bool {
	if !a.Enabled() {
		return false
	}
	return subtle.ConstantTimeCompare(a.password, []byte(password)) == 1
}

// sessionValue builds "expiry.signature" where expiry is the base64
// unix expiry timestamp and signature its HMAC-SHA256
func (a *Auth) sessionValue() string {
	expiry := strconv.FormatInt(a.now().Add(a.ttl).Unix(), 10)
	payload := base64.RawURLEncoding.EncodeToString([]byte(expiry))

	mac := hmac.New(sha256.New, a.secret)
	mac.Write([]byte(payload))
	signature := hex.EncodeToString(mac.Sum(nil))

	return payload + "." + signature
}

// verifySession checks the cookie signature and expiry
func (a *Auth) verifySession(value string) bool {
	parts := strings.Split(value, ".")
	if len(parts) != 2 {
		return false
	}
	payload, signature := parts[0], parts[1]

	mac := hmac.New(sha256.New, a.secret)
	mac.Write([]byte(payload))
	expected := mac.Sum(nil)

	provided, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	if !hmac.Equal(provided, expected) {
		return false
	}

	decoded, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return false
	}
	expiry, err := strconv.ParseInt(string(decoded), 10, 64)
	if err != nil {
		return false
	}

	return a.now().Unix() < expiry
}

// SetSessionCookie issues the signed admin session cookie
func (a *Auth) SetSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    a.sessionValue(),
		Path:     "/",
		MaxAge:   int(a.ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie removes the admin session cookie
func (a *Auth) ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// Authenticate guards admin routes behind a valid session cookie
func (a *Auth) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.Enabled() {
			respondError(w, http.StatusUnauthorized, "unauthorized", "admin access is not configured")
			return
		}

		cookie, err := r.Cookie(sessionCookieName)
		if err != nil || !a.verifySession(cookie.Value) {
			slog.Warn("unauthorized admin request", "path", r.URL.Path, "remote_addr", r.RemoteAddr)
			respondError(w, http.StatusUnauthorized, "unauthorized", "valid admin session required")
			return
		}

		next.ServeHTTP(w, r.WithContext(ContextWithAdmin(r.Context())))
	})
}
