package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	pkgerrors "github.com/hos-market/storefront-api/pkg/errors"
)

type fakeStore struct {
	data    map[string]string
	lastTTL time.Duration
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: make(map[string]string)}
}

func (f *fakeStore) Get(_ context.Context, key string) (string, error) {
	if v, ok := f.data[key]; ok {
		return v, nil
	}
	return "", redis.Nil
}

func (f *fakeStore) SetNX(_ context.Context, key string, value any, ttl time.Duration) (bool, error) {
	f.lastTTL = ttl
	if _, ok := f.data[key]; ok {
		return false, nil
	}
	str, _ := value.(string)
	f.data[key] = str
	return true, nil
}

func (f *fakeStore) IdempotencyKey(scope, id string) string {
	return fmt.Sprintf("fake:%s:%s", scope, id)
}

func (f *fakeStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.data, key)
	}
	return nil
}

func newRequest(method, url string, body io.Reader) *http.Request {
	return httptest.NewRequest(method, url, body)
}

func TestGuardedRouteSelection(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		want   bool
	}{
		{"checkout split", http.MethodPost, "/api/v1/checkout/split", true},
		{"checkout complete", http.MethodPost, "/api/v1/checkout/complete", true},
		{"cart read", http.MethodGet, "/api/v1/cart/chk-1", false},
		{"plan read", http.MethodGet, "/api/v1/checkout/plan", false},
		{"abandon", http.MethodDelete, "/api/v1/checkout/plan", false},
	}

	for _, tt := range tests {
		if got := guardedRoute(tt.method, tt.path); got != tt.want {
			t.Fatalf("%s: expected guarded=%v got %v", tt.name, tt.want, got)
		}
	}
}

func TestIdempotencyUsesConfiguredTTL(t *testing.T) {
	store := newFakeStore()
	mw := Idempotency(store, nil, 48*time.Hour)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := newRequest(http.MethodPost, "/api/v1/checkout/split", strings.NewReader(`{"checkoutId":"chk-1"}`))
	req.Header.Set("Idempotency-Key", "abc")
	mw(handler).ServeHTTP(httptest.NewRecorder(), req)

	if store.lastTTL != 48*time.Hour {
		t.Fatalf("expected configured TTL 48h on the stored record, got %v", store.lastTTL)
	}
}

func TestIdempotencyDefaultsTTLWhenUnset(t *testing.T) {
	store := newFakeStore()
	mw := Idempotency(store, nil, 0)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := newRequest(http.MethodPost, "/api/v1/checkout/split", strings.NewReader(`{"checkoutId":"chk-1"}`))
	req.Header.Set("Idempotency-Key", "abc")
	mw(handler).ServeHTTP(httptest.NewRecorder(), req)

	if store.lastTTL != defaultIdempotencyTTL {
		t.Fatalf("expected fallback TTL %v, got %v", defaultIdempotencyTTL, store.lastTTL)
	}
}

func TestIdempotencyMiddlewareRequiresHeader(t *testing.T) {
	store := newFakeStore()
	mw := Idempotency(store, nil, 0)
	handlerCalled := false
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
		w.WriteHeader(http.StatusCreated)
	})

	req := newRequest(http.MethodPost, "/api/v1/checkout/split", strings.NewReader(`{"checkoutId":"chk-1"}`))
	resp := httptest.NewRecorder()
	mw(handler).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if handlerCalled {
		t.Fatalf("handler should not run without idempotency key")
	}
}

func TestIdempotencyMiddlewareReplaysStoredResponse(t *testing.T) {
	store := newFakeStore()
	mw := Idempotency(store, nil, 0)
	var calls int
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	newReq := func() *http.Request {
		req := newRequest(http.MethodPost, "/api/v1/checkout/split", strings.NewReader(`{"checkoutId":"chk-1"}`))
		req.Header.Set("Idempotency-Key", "abc")
		return req
	}

	resp := httptest.NewRecorder()
	mw(handler).ServeHTTP(resp, newReq())
	if resp.Code != http.StatusAccepted {
		t.Fatalf("expected first response 202 got %d", resp.Code)
	}

	replay := httptest.NewRecorder()
	mw(handler).ServeHTTP(replay, newReq())
	if replay.Code != http.StatusAccepted {
		t.Fatalf("expected replay 202 got %d", replay.Code)
	}
	if replay.Body.String() != `{"ok":true}` {
		t.Fatalf("replay body mismatch: %s", replay.Body.String())
	}
	if calls != 1 {
		t.Fatalf("handler must run once, ran %d times", calls)
	}
}

func TestIdempotencyMiddlewareRejectsKeyReuse(t *testing.T) {
	store := newFakeStore()
	mw := Idempotency(store, nil, 0)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	first := newRequest(http.MethodPost, "/api/v1/checkout/split", strings.NewReader(`{"checkoutId":"chk-1"}`))
	first.Header.Set("Idempotency-Key", "abc")
	mw(handler).ServeHTTP(httptest.NewRecorder(), first)

	second := newRequest(http.MethodPost, "/api/v1/checkout/split", strings.NewReader(`{"checkoutId":"chk-other"}`))
	second.Header.Set("Idempotency-Key", "abc")
	resp := httptest.NewRecorder()
	mw(handler).ServeHTTP(resp, second)

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}
	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode error envelope: %v", err)
	}
	if envelope.Error.Code != string(pkgerrors.CodeIdempotency) {
		t.Fatalf("expected idempotency error code, got %s", envelope.Error.Code)
	}
}

func TestIdempotencyMiddlewareScopesByClientKey(t *testing.T) {
	store := newFakeStore()
	mw := Idempotency(store, nil, 0)
	var calls int
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	})

	send := func(clientKey string) {
		req := newRequest(http.MethodPost, "/api/v1/checkout/split", strings.NewReader(`{"checkoutId":"chk-1"}`))
		req.Header.Set("Idempotency-Key", "abc")
		req = req.WithContext(WithClientKey(req.Context(), clientKey))
		mw(handler).ServeHTTP(httptest.NewRecorder(), req)
	}

	send("client-1")
	send("client-2")
	if calls != 2 {
		t.Fatalf("different clients must not share idempotency records, ran %d", calls)
	}

	send("client-1")
	if calls != 2 {
		t.Fatalf("same client replay must not re-run handler, ran %d", calls)
	}
}

func TestIdempotencySkipsUnmatchedRoutes(t *testing.T) {
	store := newFakeStore()
	mw := Idempotency(store, nil, 0)
	var calls int
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	})

	req := newRequest(http.MethodGet, "/api/v1/checkout/plan", nil)
	mw(handler).ServeHTTP(httptest.NewRecorder(), req)
	if calls != 1 {
		t.Fatalf("unmatched routes pass straight through, ran %d", calls)
	}
	if len(store.data) != 0 {
		t.Fatalf("nothing should be recorded for unmatched routes")
	}
}
