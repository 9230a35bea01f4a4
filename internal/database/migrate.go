// Package database はデータベース接続とマイグレーション管理を提供する。
package database

import (
	"embed"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrationsFS embed.FS

// NewMigrator はマイグレーション実行用のmigrateインスタンスを生成する。
// driverに応じた埋め込みマイグレーションソースを選択する。
// 両バックエンドのマイグレーションは同一の論理スキーマ
// （列名・NULL許容・カスケード動作）を生成する。
func NewMigrator(driver, dsn string) (*migrate.Migrate, error) {
	var sourceDir, databaseURL string

	switch driver {
	case DriverPostgres:
		sourceDir = "migrations/postgres"
		databaseURL = dsn
	case DriverSQLite:
		sourceDir = "migrations/sqlite"
		databaseURL = "sqlite3://" + withForeignKeys(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver: %q", driver)
	}

	source, err := iofs.New(migrationsFS, sourceDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create migration source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrator: %w", err)
	}

	return m, nil
}

// RunMigrations はすべてのマイグレーションを適用する。
// すでに最新の場合はエラーなしで返る。
func RunMigrations(driver, dsn string) error {
	m, err := NewMigrator(driver, dsn)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
