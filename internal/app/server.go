package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/hitoshi/newsletter/internal/handler"
	"github.com/hitoshi/newsletter/internal/metrics"
	"github.com/hitoshi/newsletter/internal/repository"
	"github.com/hitoshi/newsletter/internal/subscription"
)

// Server はHTTPリスナーと、全リクエストで共有する接続プールを束ねる。
type Server struct {
	httpServer *http.Server
	listener   net.Listener
}

// NewServer は待ち受け済みのlistenerとDB接続プールからServerを構築する。
// listenerを外から渡すことで、テストではポート0で確保したエフェメラルポートを使える。
// dbの接続確認は行わず、DBに到達できない場合のエラーはリクエスト単位で返る。
func NewServer(listener net.Listener, db *sql.DB, logger *slog.Logger, collector metrics.MetricsCollector) *Server {
	subRepo := repository.NewPostgresSubscriptionRepo(db)
	subService := subscription.NewService(subRepo, collector, logger)

	router := handler.NewRouter(&handler.RouterDeps{
		Logger:              logger,
		Metrics:             collector,
		SubscriptionService: subService,
	})

	return &Server{
		httpServer: &http.Server{
			Handler:  router,
			ErrorLog: slog.NewLogLogger(logger.Handler(), slog.LevelError),
		},
		listener: listener,
	}
}

// Listen はaddrでTCPリスナーを確保する。
func Listen(addr string) (net.Listener, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to bind %s: %w", addr, err)
	}
	return listener, nil
}

// Addr は待ち受けアドレスを返す。
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Port は待ち受けポート番号を返す。
func (s *Server) Port() int {
	if addr, ok := s.listener.Addr().(*net.TCPAddr); ok {
		return addr.Port
	}
	return 0
}

// Serve はリクエストの受付を開始し、Shutdownされるまでブロックする。
// Shutdownによる停止の場合はnilを返す。
func (s *Server) Serve() error {
	if err := s.httpServer.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server listen error: %w", err)
	}
	return nil
}

// Shutdown は新規接続の受付を止め、処理中のリクエストの完了を待つ。
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
