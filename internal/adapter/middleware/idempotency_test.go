package middleware

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"loan-ledger-backend/pkg/id"
)

var testActorID = id.NewActorID()

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func newIdempServer(t *testing.T, rdb *redis.Client, calls *int64) *echo.Echo {
	t.Helper()
	e := echo.New()
	e.POST("/loans/:loan_id/fund", func(c echo.Context) error {
		atomic.AddInt64(calls, 1)
		return c.JSON(http.StatusOK, map[string]string{"loan_id": c.Param("loan_id"), "status": "funded"})
	}, IdempotencyMiddleware(rdb, time.Hour))
	return e
}

func fundRequest(reqID, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/loans/1/fund", bytes.NewBufferString(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set("X-Request-Id", reqID)
	req.Header.Set("X-Request-At", strconv.FormatInt(time.Now().Unix(), 10))
	req.Header.Set("X-Actor-Id", testActorID)
	return req
}

func TestIdempotency_ReplaySameRequest(t *testing.T) {
	rdb := newTestRedis(t)
	var calls int64
	e := newIdempServer(t, rdb, &calls)
	reqID := "11111111-1111-1111-8111-111111111111"

	rec1 := httptest.NewRecorder()
	e.ServeHTTP(rec1, fundRequest(reqID, `{}`))
	if rec1.Code != http.StatusOK {
		t.Fatalf("first call: %d %s", rec1.Code, rec1.Body)
	}

	rec2 := httptest.NewRecorder()
	e.ServeHTTP(rec2, fundRequest(reqID, `{}`))
	if rec2.Code != http.StatusOK {
		t.Fatalf("replay: %d %s", rec2.Code, rec2.Body)
	}
	if rec2.Body.String() != rec1.Body.String() {
		t.Fatalf("replay body %q != original %q", rec2.Body, rec1.Body)
	}
	if got := atomic.LoadInt64(&calls); got != 1 {
		t.Fatalf("handler ran %d times, want 1", got)
	}
}

func TestIdempotency_SameIDDifferentBodyConflicts(t *testing.T) {
	rdb := newTestRedis(t)
	var calls int64
	e := newIdempServer(t, rdb, &calls)
	reqID := "22222222-2222-1222-8222-222222222222"

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, fundRequest(reqID, `{"a":1}`))
	if rec.Code != http.StatusOK {
		t.Fatalf("first call: %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, fundRequest(reqID, `{"a":2}`))
	if rec.Code != http.StatusConflict {
		t.Fatalf("mismatched body: %d, want 409", rec.Code)
	}
}

func TestIdempotency_HeaderValidation(t *testing.T) {
	rdb := newTestRedis(t)
	var calls int64
	e := newIdempServer(t, rdb, &calls)

	cases := []struct {
		name   string
		mutate func(*http.Request)
	}{
		{"missing request id", func(r *http.Request) { r.Header.Del("X-Request-Id") }},
		{"malformed request id", func(r *http.Request) { r.Header.Set("X-Request-Id", "not-a-uuid") }},
		{"missing request at", func(r *http.Request) { r.Header.Del("X-Request-At") }},
		{"naive timestamp", func(r *http.Request) { r.Header.Set("X-Request-At", "2026-03-05T10:00:00") }},
		{"skewed timestamp", func(r *http.Request) {
			r.Header.Set("X-Request-At", strconv.FormatInt(time.Now().Add(-time.Hour).Unix(), 10))
		}},
		{"missing actor", func(r *http.Request) { r.Header.Del("X-Actor-Id") }},
		{"bad actor", func(r *http.Request) { r.Header.Set("X-Actor-Id", "UPPERCASE") }},
	}
	for i, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := fundRequest(fmt.Sprintf("33333333-3333-1333-8333-3333333333%02d", i), `{}`)
			tc.mutate(req)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("%s: %d, want 400", tc.name, rec.Code)
			}
		})
	}
	if got := atomic.LoadInt64(&calls); got != 0 {
		t.Fatalf("handler ran %d times", got)
	}
}

func TestIdempotency_GetBypassed(t *testing.T) {
	rdb := newTestRedis(t)
	e := echo.New()
	var calls int64
	e.GET("/loans/active", func(c echo.Context) error {
		atomic.AddInt64(&calls, 1)
		return c.JSON(http.StatusOK, map[string][]uint64{"loan_ids": {}})
	}, IdempotencyMiddleware(rdb, time.Hour))

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/loans/active", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("call %d: %d", i, rec.Code)
		}
	}
	if got := atomic.LoadInt64(&calls); got != 2 {
		t.Fatalf("handler ran %d times, want 2", got)
	}
}

func TestParseRequestAt(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)

	if got, err := parseRequestAt(strconv.FormatInt(now.Unix(), 10)); err != nil || !got.Equal(now) {
		t.Fatalf("epoch seconds: %v %v", got, err)
	}
	if got, err := parseRequestAt(strconv.FormatInt(now.UnixMilli(), 10)); err != nil || !got.Equal(now) {
		t.Fatalf("epoch ms: %v %v", got, err)
	}
	if _, err := parseRequestAt(now.Format(time.RFC3339)); err != nil {
		t.Fatalf("rfc3339: %v", err)
	}
	if _, err := parseRequestAt("2026-03-05T10:00:00"); err == nil {
		t.Fatal("naive timestamp accepted")
	}
	if _, err := parseRequestAt(""); err == nil {
		t.Fatal("empty accepted")
	}
}

func TestBuildKey(t *testing.T) {
	key := buildKey(http.MethodPost, "/loans/:loan_id/repay", testActorID, "rid")
	if !strings.HasPrefix(key, "idemp:loan:post:") {
		t.Fatalf("key = %s", key)
	}
	if !strings.Contains(key, testActorID) || !strings.HasSuffix(key, ":rid") {
		t.Fatalf("key = %s", key)
	}
}
