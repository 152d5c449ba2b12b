package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func sessionRequest(w *httptest.ResponseRecorder) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range w.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func TestSessionRoundTrip(t *testing.T) {
	w := httptest.NewRecorder()
	CreateSession(w, Actor{UserID: 7, CompanyID: 3, Role: "cashier"})

	actor, ok := ParseSession(sessionRequest(w))
	if !ok {
		t.Fatal("valid session rejected")
	}
	if actor.UserID != 7 || actor.CompanyID != 3 || actor.Role != "cashier" {
		t.Fatalf("actor = %+v", actor)
	}
}

func TestSessionTamperedSignature(t *testing.T) {
	w := httptest.NewRecorder()
	CreateSession(w, Actor{UserID: 7, CompanyID: 3, Role: "cashier"})
	cookie := w.Result().Cookies()[0]

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: cookie.Name, Value: "9:3:admin." + cookie.Value[len(cookie.Value)-10:]})
	if _, ok := ParseSession(req); ok {
		t.Fatal("tampered session accepted")
	}
}

func TestRequireAuthWithoutActor(t *testing.T) {
	handler := RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", w.Code)
	}
}

func TestMiddlewareAttachesActor(t *testing.T) {
	w := httptest.NewRecorder()
	CreateSession(w, Actor{UserID: 7, CompanyID: 3, Role: "admin"})

	var seen Actor
	handler := Middleware(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen, _ = ActorFromContext(r.Context())
	}))
	handler.ServeHTTP(httptest.NewRecorder(), sessionRequest(w))
	if seen.UserID != 7 || seen.Role != "admin" {
		t.Fatalf("actor = %+v", seen)
	}
}
