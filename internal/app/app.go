package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/newsletter/internal/config"
	"github.com/hitoshi/newsletter/internal/database"
	"github.com/hitoshi/newsletter/internal/logger"
	"github.com/hitoshi/newsletter/internal/metrics"
)

// ServiceName はログのservice属性に付与するプロセス名。
const ServiceName = "newsletter"

// Init はアプリケーションの初期化を行う。
// 設定ファイルと環境変数からConfigを読み込み、JSON構造化ロガーを生成する。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	level, err := cfg.Log.SlogLevel()
	if err != nil {
		return nil, nil, err
	}

	return cfg, logger.New(w, ServiceName, level), nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("APP_APPLICATION_PORT")
		if port == "" {
			port = strconv.Itoa(config.Default().Application.Port)
		}
		return runHealthcheck("http://" + net.JoinHostPort("localhost", port))
	}

	cfg, log, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	log.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("environment", string(cfg.Environment)),
		slog.String("addr", cfg.Application.Address()),
	)

	switch cmd {
	case CommandMigrate:
		return runMigrate(cfg, log)
	default:
		return runServe(cfg, log)
	}
}

// runServe はAPIサーバーモードで起動する。
// DB接続プールを開き（接続は最初のリクエストまで遅延）、HTTPサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config, log *slog.Logger) error {
	// 1. DB接続プール（起動時にPingしない）
	db, err := database.Open(cfg.Database.ConnectionString())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	log.Info("database pool configured",
		slog.String("database_url", maskDatabaseURL(cfg.Database.ConnectionString())),
	)

	// 2. メトリクス
	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg)

	// 3. HTTPサーバー
	listener, err := Listen(cfg.Application.Address())
	if err != nil {
		return err
	}
	server := NewServer(listener, db, log, collector)

	var metricsServer *http.Server
	if cfg.Metrics.Enabled() {
		metricsServer = &http.Server{
			Addr:    net.JoinHostPort(cfg.Application.Host, strconv.Itoa(cfg.Metrics.Port)),
			Handler: metrics.SetupMetricsRoute(reg),
		}
		go func() {
			log.Info("metrics server starting", slog.String("addr", metricsServer.Addr))
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("metrics server listen error", slog.String("error", err.Error()))
			}
		}()
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	serveErr := make(chan error, 1)
	go func() {
		log.Info("API server starting", slog.String("addr", server.Addr().String()))
		serveErr <- server.Serve()
	}()

	select {
	case <-stop:
	case err := <-serveErr:
		return err
	}

	log.Info("shutting down API server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if metricsServer != nil {
		if err := metricsServer.Shutdown(ctx); err != nil {
			log.Error("metrics server shutdown failed", slog.String("error", err.Error()))
		}
	}

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("API server stopped gracefully")
	return nil
}

// runMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config, log *slog.Logger) error {
	dbURL := cfg.Database.ConnectionString()
	log.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(dbURL)),
	)

	if err := database.RunMigrations(dbURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	log.Info("database migrations completed successfully")
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health_check エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(baseURL string) error {
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(baseURL + "/health_check")
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL はデータベースURLのパスワードをマスクする。
func maskDatabaseURL(dbURL string) string {
	u, err := url.Parse(dbURL)
	if err != nil || u.Host == "" {
		return "***"
	}
	return u.Redacted()
}
