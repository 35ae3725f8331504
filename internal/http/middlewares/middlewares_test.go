package middlewares_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/geocoder89/reviewhub/internal/actorctx"
	"github.com/geocoder89/reviewhub/internal/auth"
	"github.com/geocoder89/reviewhub/internal/domain/user"
	"github.com/geocoder89/reviewhub/internal/http/middlewares"
	"github.com/geocoder89/reviewhub/internal/observability"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeVerifier struct {
	authFn func(ctx context.Context, key string) (user.Identity, error)
}

func (f *fakeVerifier) Authenticate(ctx context.Context, key string) (user.Identity, error) {
	return f.authFn(ctx, key)
}

func keyVerifier() *fakeVerifier {
	return &fakeVerifier{authFn: func(ctx context.Context, key string) (user.Identity, error) {
		switch key {
		case "":
			return user.Identity{}, auth.ErrMissingAPIKey
		case "key-alice-123":
			return user.Identity{UserID: "1", Username: "alice", Role: user.RoleUser}, nil
		case "key-bob-456":
			return user.Identity{UserID: "2", Username: "bob", Role: user.RoleAdmin}, nil
		case "key-broken":
			return user.Identity{}, errors.New("disk gone")
		default:
			return user.Identity{}, auth.ErrInvalidAPIKey
		}
	}}
}

func TestRequireAPIKey(t *testing.T) {
	tests := []struct {
		name           string
		key            string
		wantStatusCode int
		wantHandler    bool
	}{
		{name: "missing_key", key: "", wantStatusCode: http.StatusUnauthorized},
		{name: "invalid_key", key: "key-nobody", wantStatusCode: http.StatusUnauthorized},
		{name: "lookup_failure", key: "key-broken", wantStatusCode: http.StatusInternalServerError},
		{name: "valid_key", key: "key-alice-123", wantStatusCode: http.StatusOK, wantHandler: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			m := middlewares.NewAuthMiddleware(keyVerifier(), observability.Discard())

			called := false
			r := gin.New()
			r.POST("/api/reviews", m.RequireAPIKey(), func(ctx *gin.Context) {
				called = true

				id, ok := middlewares.IdentityFromContext(ctx)
				if !ok || id.Username != "alice" {
					t.Errorf("identity missing from gin context: %+v", id)
				}
				if reqID, ok := actorctx.IdentityFrom(ctx.Request.Context()); !ok || reqID.UserID != "1" {
					t.Errorf("identity missing from request context: %+v", reqID)
				}
				ctx.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodPost, "/api/reviews", nil)
			if tt.key != "" {
				req.Header.Set(auth.HeaderAPIKey, tt.key)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
			if called != tt.wantHandler {
				t.Fatalf("handler called=%v, want %v", called, tt.wantHandler)
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	m := middlewares.NewAuthMiddleware(keyVerifier(), observability.Discard())

	r := gin.New()
	r.POST("/admin", m.RequireAPIKey(), m.RequireRole(user.RoleAdmin), func(ctx *gin.Context) {
		ctx.Status(http.StatusOK)
	})

	for key, want := range map[string]int{
		"key-bob-456":   http.StatusOK,
		"key-alice-123": http.StatusForbidden,
		"":              http.StatusUnauthorized,
	} {
		req := httptest.NewRequest(http.MethodPost, "/admin", nil)
		req.Header.Set(auth.HeaderAPIKey, key)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != want {
			t.Fatalf("key %q: got status %d, want %d", key, w.Code, want)
		}
	}
}

func TestRateLimiter_RejectsAfterBurst(t *testing.T) {
	rl := middlewares.NewRateLimiter(2, time.Minute)

	r := gin.New()
	r.Use(rl.RateLimiterMiddleware(middlewares.KeyByAPIKeyOrIP))
	r.GET("/api/reviews", func(ctx *gin.Context) { ctx.Status(http.StatusOK) })

	do := func(key string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/reviews", nil)
		if key != "" {
			req.Header.Set(auth.HeaderAPIKey, key)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	for i := 0; i < 2; i++ {
		if w := do("key-alice-123"); w.Code != http.StatusOK {
			t.Fatalf("request %d: got %d", i, w.Code)
		}
	}

	w := do("key-alice-123")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Fatalf("expected Retry-After header")
	}

	if w := do(""); w.Code != http.StatusOK {
		t.Fatalf("anonymous bucket must be independent, got %d", w.Code)
	}
}

func TestRequestID_EchoesOrGenerates(t *testing.T) {
	r := gin.New()
	r.Use(middlewares.RequestID(), middlewares.RequestLogger(observability.Discard()))
	r.GET("/", func(ctx *gin.Context) { ctx.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-Id", "req-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if got := w.Header().Get("X-Request-Id"); got != "req-123" {
		t.Fatalf("expected echoed request id, got %q", got)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if got := w.Header().Get("X-Request-Id"); got == "" {
		t.Fatalf("expected generated request id")
	}
}

func TestCORS_PreflightForAllowedOrigin(t *testing.T) {
	r := gin.New()
	r.Use(middlewares.CORSMiddleware([]string{"http://app.test"}))
	r.GET("/api/reviews", func(ctx *gin.Context) { ctx.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/api/reviews", nil)
	req.Header.Set("Origin", "http://app.test")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204 preflight, got %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "http://app.test" {
		t.Fatalf("missing allow-origin header")
	}

	req = httptest.NewRequest(http.MethodGet, "/api/reviews", nil)
	req.Header.Set("Origin", "http://evil.test")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Fatalf("unknown origin must not be allowed")
	}
}
