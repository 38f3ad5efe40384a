package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hitoshi/recipeman/internal/model"
)

// stubTokenValidator はテスト用のTokenValidator実装。
// "valid-token" のみ受け付け、ユーザーID "user-123" を返す。
type stubTokenValidator struct{}

func (stubTokenValidator) ValidateToken(tokenString string) (string, error) {
	if tokenString == "valid-token" {
		return "user-123", nil
	}
	return "", errors.New("invalid token")
}

// stubHealthChecker はテスト用のHealthChecker実装。
type stubHealthChecker struct {
	err error
}

func (s *stubHealthChecker) PingContext(ctx context.Context) error {
	return s.err
}

// testLogger はテスト出力を汚さないロガーを返す。
func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// newTestRouter はデフォルトのテスト用ルーターを構築する。
func newTestRouter(t *testing.T, mutate func(deps *RouterDeps)) http.Handler {
	t.Helper()

	deps := &RouterDeps{
		Logger:            testLogger(),
		TokenValidator:    stubTokenValidator{},
		CORSAllowedOrigin: "http://localhost:3000",
		AuthService:       &mockAuthService{},
		RecipeService:     &mockRecipeService{},
		HealthChecker:     &stubHealthChecker{},
	}
	if mutate != nil {
		mutate(deps)
	}
	return NewRouter(deps)
}

func TestRouter_Health_ReturnsOK(t *testing.T) {
	router := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusOK)
	}
	if !strings.Contains(w.Body.String(), `"status":"ok"`) {
		t.Errorf("body = %q, want status ok", w.Body.String())
	}
}

func TestRouter_Health_DBDown_Returns503(t *testing.T) {
	router := newTestRouter(t, func(deps *RouterDeps) {
		deps.HealthChecker = &stubHealthChecker{err: errors.New("connection refused")}
	})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusServiceUnavailable)
	}
}

func TestRouter_AuthRoutes_DoNotRequireToken(t *testing.T) {
	router := newTestRouter(t, func(deps *RouterDeps) {
		deps.AuthService = &mockAuthService{
			registerFn: func(ctx context.Context, email, password string) (*model.User, error) {
				return &model.User{ID: "user-1", Email: email}, nil
			},
			loginFn: func(ctx context.Context, email, password string) (string, error) {
				return "token", nil
			},
		}
	})

	tests := []struct {
		path string
		want int
	}{
		{"/auth/register", http.StatusCreated},
		{"/auth/login", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, tt.path, strings.NewReader(`{"email": "a@example.com", "password": "password123"}`))
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Result().StatusCode != tt.want {
				t.Errorf("status = %d, want %d", w.Result().StatusCode, tt.want)
			}
		})
	}
}

func TestRouter_RecipeRoutes_RequireToken(t *testing.T) {
	router := newTestRouter(t, nil)

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/recipes"},
		{http.MethodGet, "/recipes"},
		{http.MethodGet, "/recipes/recipe-1"},
		{http.MethodPut, "/recipes/recipe-1"},
		{http.MethodDelete, "/recipes/recipe-1"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Result().StatusCode != http.StatusUnauthorized {
				t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusUnauthorized)
			}
		})
	}
}

func TestRouter_RecipeRoutes_ValidToken_ReachesHandler(t *testing.T) {
	router := newTestRouter(t, func(deps *RouterDeps) {
		deps.RecipeService = &mockRecipeService{
			getRecipeFn: func(ctx context.Context, recipeID string) (*model.Recipe, error) {
				if recipeID != "recipe-1" {
					t.Errorf("recipeID = %q, want %q", recipeID, "recipe-1")
				}
				return testRecipe("recipe-1", "user-123"), nil
			},
		}
	})

	req := httptest.NewRequest(http.MethodGet, "/recipes/recipe-1", nil)
	req.Header.Set("Authorization", "Bearer valid-token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusOK)
	}
}

func TestRouter_RecipesPublicRead_AllowsUnauthenticatedReads(t *testing.T) {
	router := newTestRouter(t, func(deps *RouterDeps) {
		deps.RecipesPublicRead = true
		deps.RecipeService = &mockRecipeService{
			listRecipesFn: func(ctx context.Context, limit, offset int) ([]model.RecipeSummary, error) {
				return []model.RecipeSummary{}, nil
			},
			getRecipeFn: func(ctx context.Context, recipeID string) (*model.Recipe, error) {
				return testRecipe(recipeID, "user-123"), nil
			},
		}
	})

	// 閲覧系はトークンなしで通る
	for _, path := range []string{"/recipes", "/recipes/recipe-1"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Result().StatusCode != http.StatusOK {
			t.Errorf("GET %s: status = %d, want %d", path, w.Result().StatusCode, http.StatusOK)
		}
	}

	// 書き込み系は引き続き認証が必要
	req := httptest.NewRequest(http.MethodPost, "/recipes", strings.NewReader(`{"title": "x"}`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusUnauthorized {
		t.Errorf("POST /recipes: status = %d, want %d", w.Result().StatusCode, http.StatusUnauthorized)
	}
}

func TestRouter_SetsCORSAndSecurityHeaders(t *testing.T) {
	router := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	resp := w.Result()
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, "http://localhost:3000")
	}
	if got := resp.Header.Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q, want %q", got, "nosniff")
	}
}

func TestRouter_MetricsHandler_Mounted(t *testing.T) {
	router := newTestRouter(t, func(deps *RouterDeps) {
		deps.MetricsHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("metrics ok"))
		})
	})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusOK)
	}
	if w.Body.String() != "metrics ok" {
		t.Errorf("body = %q, want %q", w.Body.String(), "metrics ok")
	}
}

func TestRouter_PanicInHandler_Returns500(t *testing.T) {
	router := newTestRouter(t, func(deps *RouterDeps) {
		deps.RecipeService = &mockRecipeService{
			getRecipeFn: func(ctx context.Context, recipeID string) (*model.Recipe, error) {
				panic("unexpected state")
			},
		}
	})

	req := httptest.NewRequest(http.MethodGet, "/recipes/recipe-1", nil)
	req.Header.Set("Authorization", "Bearer valid-token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusInternalServerError)
	}

	body := parseAPIErrorResponse(t, w)
	if body["code"] != "INTERNAL_ERROR" {
		t.Errorf("code = %q, want %q", body["code"], "INTERNAL_ERROR")
	}
}
