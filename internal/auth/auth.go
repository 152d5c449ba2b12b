package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

type ctxKey string

const (
	sessionCookieName = "session"
	actorCtxKey       = ctxKey("actor")
)

// Actor is the acting identity attached to every request: who records a
// payment or handles a sale, and which role gates a void.
type Actor struct {
	UserID    uint
	CompanyID uint
	Role      string
}

// ActorVerifier is an optional callback to validate that a session's user still
// exists/is allowed. Set it during app bootstrap via SetActorVerifier. If nil,
// no extra verification is performed.
type ActorVerifier func(ctx context.Context, uid uint) bool

var verifier ActorVerifier

// SetActorVerifier configures the global verifier used by RequireAuth.
func SetActorVerifier(v ActorVerifier) { verifier = v }

// Secret returns SESSION_SECRET or default dev value.
func Secret() string {
	if s := os.Getenv("SESSION_SECRET"); s != "" {
		return s
	}
	return "devsessionsecret"
}

func sign(payload string) string {
	mac := hmac.New(sha256.New, []byte(Secret()))
	mac.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// CreateSession sets a signed cookie carrying user id, company id and role.
func CreateSession(w http.ResponseWriter, a Actor) {
	payload := fmt.Sprintf("%d:%d:%s", a.UserID, a.CompanyID, a.Role)
	value := payload + "." + sign(payload)
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(14 * 24 * time.Hour),
	})
}

// ClearSession deletes the session cookie.
func ClearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{Name: sessionCookieName, Value: "", Path: "/", Expires: time.Unix(0, 0), HttpOnly: true, SameSite: http.SameSiteLaxMode})
}

// ParseSession validates the cookie and returns the actor.
func ParseSession(r *http.Request) (Actor, bool) {
	c, err := r.Cookie(sessionCookieName)
	if err != nil || c.Value == "" {
		return Actor{}, false
	}
	idx := strings.LastIndex(c.Value, ".")
	if idx <= 0 {
		return Actor{}, false
	}
	payload, sig := c.Value[:idx], c.Value[idx+1:]
	if !hmac.Equal([]byte(sig), []byte(sign(payload))) {
		return Actor{}, false
	}
	parts := strings.Split(payload, ":")
	if len(parts) != 3 {
		return Actor{}, false
	}
	uid, err := strconv.ParseUint(parts[0], 10, 64)
	if err != nil || uid == 0 {
		return Actor{}, false
	}
	cid, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		return Actor{}, false
	}
	return Actor{UserID: uint(uid), CompanyID: uint(cid), Role: parts[2]}, true
}

// WithActor stores the actor in context.
func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorCtxKey, a)
}

// ActorFromContext extracts the actor.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(actorCtxKey).(Actor)
	return a, ok && a.UserID != 0
}

// Middleware attaches the actor to the request context if a valid session is present.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a, ok := ParseSession(r); ok {
			r = r.WithContext(WithActor(r.Context(), a))
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAuth rejects requests without a valid authenticated actor.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a, ok := ActorFromContext(r.Context())
		if !ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"error":"unauthorized"}`)
			return
		}
		if verifier != nil && !verifier(r.Context(), a.UserID) {
			// Session refers to a non-existing/disabled user: clear and treat as unauthorized.
			ClearSession(w)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"error":"unauthorized"}`)
			return
		}
		next.ServeHTTP(w, r)
	})
}
