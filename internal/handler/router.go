package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/recipeshare/internal/middleware"
	"github.com/hitoshi/recipeshare/internal/view"
)

// HealthChecker はヘルスチェックに必要なインターフェース。
// *sql.DBがそのまま満たす。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Sessions       middleware.SessionReader
	MetricsHandler http.Handler
	Metrics        middleware.RequestRecorder
	HealthChecker  HealthChecker

	// サービス
	AuthService   AuthServiceInterface
	RecipeService RecipeServiceInterface
	UserFinder    UserFinder

	// セッション・描画
	SessionWriter SessionWriter
	Renderer      *view.Renderer

	// アップロード上限（バイト）
	MaxUploadSize int64
}

// NewRouter は全ルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → Metrics → Session → Logging
//
// 全ルートで認証主体の注入までは行い、認証の強制が必要なルートにのみ
// RequireAuthを重ねる。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	if deps.Metrics != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.Metrics))
	}
	r.Use(middleware.NewSessionMiddleware(deps.Sessions))
	r.Use(middleware.NewLoggingMiddleware(slog.Default()))

	authHandler := NewAuthHandler(deps.AuthService, deps.SessionWriter, deps.Renderer)
	recipeHandler := NewRecipeHandler(deps.RecipeService, deps.Renderer, deps.MaxUploadSize)
	userHandler := NewUserHandler(deps.UserFinder, deps.RecipeService, deps.Renderer)

	requireAuth := middleware.NewRequireAuthMiddleware()

	// --- 認証不要のルート ---

	r.Get("/", recipeHandler.List)

	r.Get("/register", authHandler.RegisterForm)
	r.Post("/register", authHandler.Register)
	r.Get("/login", authHandler.LoginForm)
	r.Post("/login", authHandler.Login)

	r.Get("/profile/{username}", userHandler.Profile)

	r.Get("/health", healthHandler(deps.HealthChecker))
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	// --- レシピ ---

	r.Route("/recipes", func(r chi.Router) {
		// 作成は/recipes/{id}より先に定義する（"create"をIDとして解釈させない）
		r.With(requireAuth).Get("/create", recipeHandler.CreateForm)
		r.With(requireAuth).Post("/create", recipeHandler.Create)

		r.Route("/{id:[0-9]+}", func(r chi.Router) {
			r.Get("/", recipeHandler.Detail)
			r.With(requireAuth).Post("/", recipeHandler.PostComment)

			r.Get("/img", recipeHandler.Image)

			r.With(requireAuth).Get("/edit", recipeHandler.EditForm)
			r.With(requireAuth).Post("/edit", recipeHandler.Edit)
			r.With(requireAuth).Post("/delete", recipeHandler.Delete)
		})
	})

	// --- ログアウト ---

	r.With(requireAuth).Get("/logout", authHandler.Logout)

	return r
}

// healthHandler はDB疎通を確認するヘルスチェックハンドラーを返す。
func healthHandler(checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if checker != nil {
			if err := checker.PingContext(r.Context()); err != nil {
				slog.Error("health check failed", slog.String("error", err.Error()))
				http.Error(w, "unhealthy", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}

