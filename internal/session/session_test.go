package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestManagerRequiresSecret(t *testing.T) {
	if _, err := NewManager("", false); err == nil {
		t.Fatal("expected error for empty secret")
	}
}

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager("test-secret-0123456789", false)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return m
}

// requestWithCookies copies Set-Cookie headers from a response into a fresh
// request, mimicking a browser follow-up.
func requestWithCookies(rr *httptest.ResponseRecorder, method, target string) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	for _, c := range rr.Result().Cookies() {
		if c.MaxAge >= 0 && c.Value != "" {
			req.AddCookie(c)
		}
	}
	return req
}

func TestIssueParseRoundTrip(t *testing.T) {
	m := newTestManager(t)

	rr := httptest.NewRecorder()
	if err := m.Issue(rr, Identity{UserID: 42, Username: "alice"}); err != nil {
		t.Fatalf("Issue: %v", err)
	}

	req := requestWithCookies(rr, http.MethodGet, "/")
	id, err := m.Parse(req)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if id.UserID != 42 || id.Username != "alice" {
		t.Errorf("Parse = %+v, want UserID 42, Username alice", id)
	}
}

func TestParseRejectsForgedToken(t *testing.T) {
	m := newTestManager(t)
	other, err := NewManager("a-different-secret-value", false)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	rr := httptest.NewRecorder()
	if err := other.Issue(rr, Identity{UserID: 7, Username: "mallory"}); err != nil {
		t.Fatalf("Issue: %v", err)
	}

	req := requestWithCookies(rr, http.MethodGet, "/")
	if _, err := m.Parse(req); err == nil {
		t.Fatal("expected token signed with a different secret to be rejected")
	}
}

func TestParseAnonymous(t *testing.T) {
	m := newTestManager(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, err := m.Parse(req); err == nil {
		t.Fatal("expected ErrNoSession without a cookie")
	}
}

func TestMiddlewarePopulatesContext(t *testing.T) {
	m := newTestManager(t)

	rr := httptest.NewRecorder()
	if err := m.Issue(rr, Identity{UserID: 9, Username: "bob"}); err != nil {
		t.Fatalf("Issue: %v", err)
	}

	var got Identity
	var ok bool
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok = FromContext(r.Context())
	}))

	h.ServeHTTP(httptest.NewRecorder(), requestWithCookies(rr, http.MethodGet, "/"))
	if !ok || got.UserID != 9 {
		t.Errorf("FromContext = %+v, %v; want UserID 9", got, ok)
	}

	// Anonymous requests pass through without identity.
	ok = true
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if ok {
		t.Error("expected no identity for anonymous request")
	}
}

func TestFlashRoundTrip(t *testing.T) {
	rr := httptest.NewRecorder()
	SetFlash(rr, "Expense type successfully added")

	req := requestWithCookies(rr, http.MethodGet, "/")
	rr2 := httptest.NewRecorder()
	msg, ok := TakeFlash(rr2, req)
	if !ok || msg != "Expense type successfully added" {
		t.Fatalf("TakeFlash = %q, %v", msg, ok)
	}

	// The flash cookie is cleared by TakeFlash.
	var cleared bool
	for _, c := range rr2.Result().Cookies() {
		if c.Name == "flash" && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("expected flash cookie to be expired after TakeFlash")
	}
}
