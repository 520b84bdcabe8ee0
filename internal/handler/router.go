package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/hitoshi/newsletter/internal/metrics"
	"github.com/hitoshi/newsletter/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	Logger  *slog.Logger
	Metrics metrics.MetricsCollector

	// 購読受付
	SubscriptionService SubscriptionServiceInterface
}

// NewRouter はAPIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	RequestID → Logging → Recovery → Metrics
//
// 登録するルートは GET /health_check と POST /subscription の2つのみ。
func NewRouter(deps *RouterDeps) http.Handler {
	collector := deps.Metrics
	if collector == nil {
		collector = metrics.NopCollector{}
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	r.Use(middleware.NewRecoveryMiddleware(deps.Logger))
	r.Use(middleware.NewMetricsMiddleware(collector))

	subHandler := NewSubscriptionHandler(deps.SubscriptionService, deps.Logger)

	r.Get("/health_check", HealthCheck)
	r.Post("/subscription", subHandler.Subscribe)

	return r
}

// HealthCheck はプロセスの生存確認に応答する。ボディは空でDBにはアクセスしない。
// GET /health_check
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
