// Package app はアプリケーションの初期化と起動を提供する。
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hitoshi/recipeshare/internal/auth"
	"github.com/hitoshi/recipeshare/internal/config"
	"github.com/hitoshi/recipeshare/internal/database"
	"github.com/hitoshi/recipeshare/internal/handler"
	"github.com/hitoshi/recipeshare/internal/logger"
	"github.com/hitoshi/recipeshare/internal/metrics"
	"github.com/hitoshi/recipeshare/internal/recipe"
	"github.com/hitoshi/recipeshare/internal/repository"
	"github.com/hitoshi/recipeshare/internal/session"
	"github.com/hitoshi/recipeshare/internal/view"
)

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("db_driver", cfg.DBDriver),
		slog.String("port", cfg.ServerPort),
		slog.String("base_url", cfg.BaseURL),
	)

	switch cmd {
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		return runServe(cfg)
	}
}

// runServe はWebサーバーモードで起動する。
// DB接続を開き、全依存関係をワイヤリングし、HTTPサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	// 1. DB接続
	db, err := database.Open(cfg.DBDriver, cfg.DSN())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established",
		slog.String("driver", cfg.DBDriver),
	)

	// 2. リポジトリの初期化（ドライバごとの実装を選択）
	var (
		userRepo    repository.UserRepository
		recipeRepo  repository.RecipeRepository
		commentRepo repository.CommentRepository
	)
	switch cfg.DBDriver {
	case database.DriverPostgres:
		userRepo = repository.NewPostgresUserRepo(db)
		recipeRepo = repository.NewPostgresRecipeRepo(db)
		commentRepo = repository.NewPostgresCommentRepo(db)
	case database.DriverSQLite:
		userRepo = repository.NewSQLiteUserRepo(db)
		recipeRepo = repository.NewSQLiteRecipeRepo(db)
		commentRepo = repository.NewSQLiteCommentRepo(db)
	default:
		return fmt.Errorf("unsupported database driver: %q", cfg.DBDriver)
	}

	// 3. ドメインサービスの初期化
	verifier, err := auth.NewVerifier(cfg.PasswordScheme)
	if err != nil {
		return fmt.Errorf("failed to create password verifier: %w", err)
	}
	authService := auth.NewService(userRepo, verifier)
	recipeService := recipe.NewService(recipeRepo, commentRepo)

	// 4. セッションとビューの初期化
	sessions := session.NewManager(cfg.SessionSecret, cfg.SessionMaxAge, cfg.CookieSecure)

	renderer, err := view.NewRenderer()
	if err != nil {
		return fmt.Errorf("failed to create renderer: %w", err)
	}

	// 5. メトリクスの初期化
	collector := metrics.NewCollector()

	// 6. ルーターの構築
	deps := &handler.RouterDeps{
		Sessions:       sessions,
		MetricsHandler: collector.Handler(),
		Metrics:        collector,
		HealthChecker:  db,

		AuthService:   authService,
		RecipeService: recipeService,
		UserFinder:    authService,

		SessionWriter: sessions,
		Renderer:      renderer,

		MaxUploadSize: cfg.MaxUploadSize,
	}

	router := handler.NewRouter(deps)

	// 7. HTTPサーバーの起動
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("web server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server listen error", slog.String("error", err.Error()))
		}
	}()

	<-stop
	slog.Info("shutting down web server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("web server stopped gracefully")
	return nil
}

// runMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config) error {
	slog.Info("running database migrations",
		slog.String("driver", cfg.DBDriver),
		slog.String("dsn", maskDSN(cfg.DSN())),
	)

	if err := database.RunMigrations(cfg.DBDriver, cfg.DSN()); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully")
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDSN は接続文字列の認証情報をマスクする。
func maskDSN(dsn string) string {
	if len(dsn) > 20 {
		return dsn[:12] + "***@..."
	}
	return "***"
}
