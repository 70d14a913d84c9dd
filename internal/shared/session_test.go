package shared_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/civreg-ph/civreg/internal/shared"
	_ "github.com/civreg-ph/civreg/internal/testing/guard"
)

func newSessionManager(t *testing.T) *shared.SessionManager {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return shared.NewSessionManager(client, "test_session", "secret", time.Hour, false)
}

func TestSessionRoundTrip(t *testing.T) {
	sm := newSessionManager(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := sm.Load(ctx, req)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	sess.Set("intent", "login")
	sess.SetAccount("42")

	rec := httptest.NewRecorder()
	if err := sm.Commit(ctx, rec, req, sess); err != nil {
		t.Fatalf("commit session: %v", err)
	}

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected one session cookie, got %d", len(cookies))
	}
	cookie := cookies[0]
	if cookie.Name != "test_session" || cookie.Value == "" {
		t.Fatalf("unexpected cookie %q=%q", cookie.Name, cookie.Value)
	}
	if !cookie.HttpOnly {
		t.Fatal("session cookie must be http-only")
	}

	req2 := httptest.NewRequest(http.MethodGet, "/", nil)
	req2.AddCookie(cookie)
	loaded, err := sm.Load(ctx, req2)
	if err != nil {
		t.Fatalf("reload session: %v", err)
	}
	if loaded.Account() != "42" {
		t.Fatalf("expected account 42, got %q", loaded.Account())
	}
	if loaded.Get("intent") != "login" {
		t.Fatalf("expected stored value, got %q", loaded.Get("intent"))
	}
}

func TestSessionDestroy(t *testing.T) {
	sm := newSessionManager(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := sm.Load(ctx, req)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	sess.SetAccount("7")

	rec := httptest.NewRecorder()
	if err := sm.Commit(ctx, rec, req, sess); err != nil {
		t.Fatalf("commit session: %v", err)
	}
	cookie := rec.Result().Cookies()[0]

	req2 := httptest.NewRequest(http.MethodGet, "/", nil)
	req2.AddCookie(cookie)
	loaded, err := sm.Load(ctx, req2)
	if err != nil {
		t.Fatalf("reload session: %v", err)
	}
	sm.Destroy(loaded)

	rec2 := httptest.NewRecorder()
	if err := sm.Commit(ctx, rec2, req2, loaded); err != nil {
		t.Fatalf("commit destroyed session: %v", err)
	}
	expired := rec2.Result().Cookies()[0]
	if expired.MaxAge != -1 {
		t.Fatalf("expected expired cookie, got MaxAge %d", expired.MaxAge)
	}

	req3 := httptest.NewRequest(http.MethodGet, "/", nil)
	req3.AddCookie(cookie)
	again, err := sm.Load(ctx, req3)
	if err != nil {
		t.Fatalf("load after destroy: %v", err)
	}
	if again.Account() != "" {
		t.Fatalf("expected anonymous session after destroy, got account %q", again.Account())
	}
}
