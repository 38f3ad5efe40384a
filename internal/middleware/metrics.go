package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/recipeman/internal/metrics"
)

// NewMetricsMiddleware はHTTPリクエストのメトリクスを記録するミドルウェアを返す。
// ルートラベルにはchiのルートパターン（例: /recipes/{recipeID}）を使用し、
// パスパラメータによるラベルの爆発を防ぐ。
func NewMetricsMiddleware(recorder metrics.RequestRecorder) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			rec := &statusRecorder{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			next.ServeHTTP(rec, r)

			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					route = pattern
				}
			}

			recorder.RecordHTTPRequest(r.Method, route, rec.statusCode, time.Since(start))
		})
	}
}
