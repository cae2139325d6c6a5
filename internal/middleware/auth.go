package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"flightshots/internal/i18n"
	"flightshots/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

const TokenCookie = "token"

type contextKey string

const sessionKey contextKey = "session"

// SessionStore resolves a session id to a live session.
type SessionStore interface {
	Session(sid string) (models.Session, bool)
}

// Claims is the JWT payload. The token only names a server-side session;
// the user snapshot lives in the session store.
type Claims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

type Auth struct {
	secret   []byte
	sessions SessionStore
}

func NewAuth(secret string, sessions SessionStore) *Auth {
	return &Auth{secret: []byte(secret), sessions: sessions}
}

// IssueToken signs a token for s that expires with it.
func (a *Auth) IssueToken(s models.Session) (string, error) {
	claims := Claims{
		SessionID: s.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   s.User.ID,
			IssuedAt:  jwt.NewNumericDate(s.CreatedAt),
			ExpiresAt: jwt.NewNumericDate(s.ExpiresAt),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

func (a *Auth) parse(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return a.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.SessionID == "" {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

func SetTokenCookie(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     TokenCookie,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

func ClearTokenCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     TokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}

func tokenFromRequest(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	if c, err := r.Cookie(TokenCookie); err == nil {
		return c.Value
	}
	return ""
}

// Authenticate attaches the caller's session to the context when the request
// carries a valid token for a live session of an active user. It never rejects.
func (a *Auth) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenStr := tokenFromRequest(r)
		if tokenStr == "" {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := a.parse(tokenStr)
		if err != nil {
			ClearTokenCookie(w)
			next.ServeHTTP(w, r)
			return
		}

		s, ok := a.sessions.Session(claims.SessionID)
		if !ok || s.User.Status == models.UserBanned {
			ClearTokenCookie(w)
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), s)))
	})
}

// RequireAuth rejects requests without a session.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetSession(r.Context()); !ok {
			redirectToLogin(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole lets through sessions whose user holds one of roles.
func RequireRole(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := GetUser(r.Context())
			if !ok {
				redirectToLogin(w, r)
				return
			}
			for _, role := range roles {
				if u.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			forbidden(w, r)
		})
	}
}

func WithSession(ctx context.Context, s models.Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

func GetSession(ctx context.Context) (models.Session, bool) {
	s, ok := ctx.Value(sessionKey).(models.Session)
	return s, ok
}

func GetUser(ctx context.Context) (models.User, bool) {
	s, ok := GetSession(ctx)
	if !ok {
		return models.User{}, false
	}
	return s.User, true
}

func wantsHTML(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "" && strings.Contains(r.Header.Get("Accept"), "text/html")
}

func redirectToLogin(w http.ResponseWriter, r *http.Request) {
	if wantsHTML(r) {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	writeError(w, r, http.StatusUnauthorized, "auth.required")
}

func forbidden(w http.ResponseWriter, r *http.Request) {
	if wantsHTML(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	writeError(w, r, http.StatusForbidden, "auth.forbidden")
}

func writeError(w http.ResponseWriter, r *http.Request, status int, key string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": i18n.T(r.Context(), key)})
}
