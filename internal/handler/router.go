package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/pudaweed/clubman/internal/metrics"
	"github.com/pudaweed/clubman/internal/middleware"
)

// HealthChecker はヘルスチェックに必要なインターフェース。
// sql.DBのPingContextを満たす。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	SessionFinder     middleware.SessionFinder
	UserFinder        middleware.UserFinder
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	Collector         metrics.MetricsCollector
	Gatherer          prometheus.Gatherer

	// ヘルスチェック
	HealthChecker HealthChecker

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// 支払い
	PaymentService PaymentServiceInterface

	// 選手管理
	PlayerService PlayerServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → CORS → Logging → Session → RateLimit(General)
//
// 認証ルート（/auth/*）と/health、/metricsはセッションミドルウェアの外に配置する。
// 管理者専用ルートにはさらにAdminミドルウェアを重ねる。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewLoggingMiddleware(slog.Default(), deps.Collector))

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig)
	paymentHandler := NewPaymentHandler(deps.PaymentService)
	playerHandler := NewPlayerHandler(deps.PlayerService)

	// --- 認証不要のルート ---

	r.Get("/health", newHealthHandler(deps.HealthChecker))

	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Gatherer))
	}

	// 認証ルート（OAuthフロー）
	r.Route("/auth", func(r chi.Router) {
		r.Get("/google/login", authHandler.Login)
		r.Get("/google/callback", authHandler.Callback)
		r.Post("/logout", authHandler.Logout)
		r.Get("/me", authHandler.Me)
	})

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Session → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewSessionMiddleware(deps.SessionFinder, deps.UserFinder))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		// 選手向けビュー
		r.Get("/api/dashboard", paymentHandler.Dashboard)
		r.Get("/api/payments/history", paymentHandler.History)

		// --- 管理者専用ルート ---
		r.Group(func(r chi.Router) {
			r.Use(middleware.NewAdminMiddleware())

			// 選手管理
			r.Route("/api/players", func(r chi.Router) {
				r.Get("/", playerHandler.List)
				r.Put("/{id}/allowed", playerHandler.SetAllowed)
			})

			// 支払い登録簿（書き込みには専用レート制限を追加）
			r.Route("/api/payments", func(r chi.Router) {
				r.Get("/", paymentHandler.List)
				r.With(deps.RateLimiter.PaymentWriteMiddleware()).Post("/", paymentHandler.Create)

				r.Route("/{id}", func(r chi.Router) {
					r.With(deps.RateLimiter.PaymentWriteMiddleware()).Patch("/", paymentHandler.Update)
					r.With(deps.RateLimiter.PaymentWriteMiddleware()).Put("/status", paymentHandler.UpdateStatus)
				})
			})
		})
	})

	return r
}

// newHealthHandler はヘルスチェックエンドポイントのハンドラーを返す。
// DB接続を確認し、到達できない場合は503を返す。
func newHealthHandler(checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := "ok"
		statusCode := http.StatusOK

		if checker != nil {
			if err := checker.PingContext(r.Context()); err != nil {
				status = "unavailable"
				statusCode = http.StatusServiceUnavailable
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		json.NewEncoder(w).Encode(map[string]string{"status": status})
	}
}
