package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/recipeman/internal/metrics"
	"github.com/hitoshi/recipeman/internal/middleware"
)

// HealthChecker はヘルスチェックに必要なインターフェース。
// *sql.DB が満たす。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger            *slog.Logger
	TokenValidator    middleware.TokenValidator
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	MetricsRecorder   metrics.RequestRecorder

	// サービス
	AuthService   AuthServiceInterface
	RecipeService RecipeServiceInterface

	// 運用エンドポイント
	HealthChecker  HealthChecker
	MetricsHandler http.Handler

	// trueの場合、GET /recipes と GET /recipes/{id} を未認証でも許可する
	RecipesPublicRead bool
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	CORS → SecurityHeaders → Logging → Metrics → Recovery
//
// 認証エンドポイント（/auth/*）はIP単位のレート制限のみを適用し、
// 認証済みルートはトークン検証の後にユーザー単位のレート制限を適用する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	if deps.MetricsRecorder != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.MetricsRecorder))
	}
	r.Use(middleware.NewRecoveryMiddleware())

	authHandler := NewAuthHandler(deps.AuthService)
	recipeHandler := NewRecipeHandler(deps.RecipeService)

	// --- 認証不要のルート ---

	r.Get("/health", healthHandler(deps.HealthChecker))

	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler)
	}

	// ユーザー登録・ログイン（IP単位のレート制限を適用）
	r.Route("/auth", func(r chi.Router) {
		if deps.RateLimiter != nil {
			r.Use(deps.RateLimiter.AuthEndpointMiddleware())
		}
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
	})

	// 閲覧系エンドポイントの公開設定
	if deps.RecipesPublicRead {
		r.Get("/recipes", recipeHandler.ListRecipes)
		r.Get("/recipes/{id}", recipeHandler.GetRecipe)
	}

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Auth → RateLimit(General)
	// 公開設定と同一パターンを共有するため、Route/Mountではなく
	// メソッド単位で登録する。
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewAuthMiddleware(deps.TokenValidator))
		if deps.RateLimiter != nil {
			r.Use(deps.RateLimiter.GeneralMiddleware())
		}

		r.Post("/recipes", recipeHandler.CreateRecipe)
		r.Put("/recipes/{id}", recipeHandler.UpdateRecipe)
		r.Delete("/recipes/{id}", recipeHandler.DeleteRecipe)

		if !deps.RecipesPublicRead {
			r.Get("/recipes", recipeHandler.ListRecipes)
			r.Get("/recipes/{id}", recipeHandler.GetRecipe)
		}
	})

	return r
}

// healthHandler はDB接続を確認するヘルスチェックハンドラーを返す。
func healthHandler(checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if checker != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()

			if err := checker.PingContext(ctx); err != nil {
				slog.Error("health check failed", slog.String("error", err.Error()))
				http.Error(w, "unhealthy", http.StatusServiceUnavailable)
				return
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	}
}
