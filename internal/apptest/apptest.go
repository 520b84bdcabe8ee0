// Package apptest は統合テスト用に、専用データベースを持つアプリケーションを起動する。
package apptest

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/newsletter/internal/app"
	"github.com/hitoshi/newsletter/internal/config"
	"github.com/hitoshi/newsletter/internal/database"
	"github.com/hitoshi/newsletter/internal/logger"
	"github.com/hitoshi/newsletter/internal/metrics"
)

// TestApp は起動済みのアプリケーション。
type TestApp struct {
	// Address は "http://127.0.0.1:<port>" 形式のベースURL。
	Address string
	// DB はアプリケーションと同じデータベースへの接続プール。
	DB *sql.DB
}

// SpawnApp はテストごとに一意のデータベースを作成・マイグレーションし、
// エフェメラルポートでサーバーを起動する。サーバーとDB接続はテスト終了時に閉じる。
// PostgreSQLに到達できない場合はテストをスキップする。
func SpawnApp(t *testing.T) *TestApp {
	t.Helper()

	db := ProvisionDatabase(t)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to bind random port: %v", err)
	}

	server := app.NewServer(listener, db, testLogger(), metrics.NopCollector{})
	go func() {
		if err := server.Serve(); err != nil {
			t.Errorf("server stopped unexpectedly: %v", err)
		}
	}()

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	})

	return &TestApp{
		Address: "http://" + server.Addr().String(),
		DB:      db,
	}
}

// ProvisionDatabase は設定の接続先にUUID名のデータベースを作成し、
// マイグレーション済みの接続プールを返す。
func ProvisionDatabase(t *testing.T) *sql.DB {
	t.Helper()

	cfg := loadConfig(t)
	name := uuid.NewString()
	settings := cfg.Database.WithDatabaseName(name)
	adminURL := settings.ConnectionStringWithoutDB()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	requirePostgres(ctx, t, adminURL)

	db, err := database.Provision(ctx, adminURL, settings.ConnectionString(), name)
	if err != nil {
		t.Fatalf("failed to provision test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return db
}

// requirePostgres は管理用接続でPingし、失敗した場合はテストをスキップする。
func requirePostgres(ctx context.Context, t *testing.T, adminURL string) {
	t.Helper()

	admin, err := database.Open(adminURL)
	if err != nil {
		t.Fatalf("failed to open admin connection: %v", err)
	}
	defer admin.Close()

	if err := admin.PingContext(ctx); err != nil {
		t.Skipf("PostgreSQL is not available: %v", err)
	}
}

// loadConfig はリポジトリのconfigurationディレクトリを既定として設定を読み込む。
func loadConfig(t *testing.T) *config.Config {
	t.Helper()

	if os.Getenv("APP_CONFIG_DIR") == "" {
		if dir, ok := configurationDir(); ok {
			t.Setenv("APP_CONFIG_DIR", dir)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("failed to load configuration: %v", err)
	}
	return cfg
}

func configurationDir() (string, bool) {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		return "", false
	}
	dir := filepath.Join(filepath.Dir(file), "..", "..", "configuration")
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		return "", false
	}
	return dir, true
}

// testLogger はTEST_LOGが設定されている場合のみ標準出力にログを出す。
func testLogger() *slog.Logger {
	if strings.TrimSpace(os.Getenv("TEST_LOG")) == "" {
		return logger.Discard()
	}
	return logger.New(os.Stdout, app.ServiceName+"-test", slog.LevelDebug)
}
