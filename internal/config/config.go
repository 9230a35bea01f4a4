// Package config は環境変数からのアプリケーション設定読み込みを提供する。
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// パスワード照合方式。
const (
	// PasswordSchemePlaintext は保存値との直接比較（既定）。
	PasswordSchemePlaintext = "plaintext"
	// PasswordSchemeBcrypt はbcryptハッシュによる照合。
	PasswordSchemeBcrypt = "bcrypt"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DBDriver    string // "postgres" または "sqlite3"
	DatabaseURL string // postgres接続URL（DBDriver=postgresの場合必須）
	SQLitePath  string // SQLiteファイルパス（DBDriver=sqlite3の場合）

	// Session
	SessionSecret string
	SessionMaxAge int // 秒

	// Auth
	PasswordScheme string

	// Upload
	MaxUploadSize int64 // バイト

	// Server
	ServerPort string
	BaseURL    string

	// Cookie
	CookieSecure bool
}

// Load は環境変数からConfigを読み込む。
// カレントディレクトリに.envがあれば先に読み込む（ローカル開発用）。
// 必須環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	var missing []string

	cfg.SessionSecret = os.Getenv("SESSION_SECRET")
	if cfg.SessionSecret == "" {
		missing = append(missing, "SESSION_SECRET")
	}

	cfg.DBDriver = getEnvString("DB_DRIVER", "sqlite3")
	switch cfg.DBDriver {
	case "postgres":
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
		if cfg.DatabaseURL == "" {
			missing = append(missing, "DATABASE_URL")
		}
	case "sqlite3":
		cfg.SQLitePath = getEnvString("SQLITE_PATH", "recipes.db")
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER: %q (expected postgres or sqlite3)", cfg.DBDriver)
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	cfg.PasswordScheme = getEnvString("PASSWORD_SCHEME", PasswordSchemePlaintext)
	if cfg.PasswordScheme != PasswordSchemePlaintext && cfg.PasswordScheme != PasswordSchemeBcrypt {
		return nil, fmt.Errorf("unsupported PASSWORD_SCHEME: %q (expected plaintext or bcrypt)", cfg.PasswordScheme)
	}

	cfg.SessionMaxAge = getEnvInt("SESSION_MAX_AGE", 86400)
	cfg.MaxUploadSize = getEnvInt64("MAX_UPLOAD_SIZE", 5242880)
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.BaseURL = getEnvString("BASE_URL", "http://localhost:8080")
	cfg.CookieSecure = strings.HasPrefix(cfg.BaseURL, "https://")

	return cfg, nil
}

// DSN は有効なドライバに対応する接続文字列を返す。
func (c *Config) DSN() string {
	if c.DBDriver == "postgres" {
		return c.DatabaseURL
	}
	return c.SQLitePath
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvInt64(key string, defaultVal int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return defaultVal
	}
	return i
}
