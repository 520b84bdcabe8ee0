// Package logger はJSON構造化ログの生成を提供する。
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Setup はJSON構造化ログ出力のslog.Loggerを生成して返す。
// writerが指定された場合はそのwriterに出力する。
func Setup(w io.Writer) *slog.Logger {
	return New(w, "", slog.LevelInfo)
}

// New はサービス名と最小ログレベルを指定してJSON構造化ロガーを生成する。
// nameが空でない場合は全レコードに service 属性を付与する。
// wがnilの場合はos.Stdoutに出力する。
func New(w io.Writer, name string, level slog.Leveler) *slog.Logger {
	if w == nil {
		w = os.Stdout
	}
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	})
	l := slog.New(handler)
	if name != "" {
		l = l.With(slog.String("service", name))
	}
	return l
}

// Discard は何も出力しないロガーを返す。テストでの既定の出力先に使用する。
func Discard() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// RedactEmail はログ出力用にメールアドレスをマスクする。
// "john.doe@example.com" → "jo***@example.com"
// ローカル部が2文字以下の場合は全てマスクする: "ab@example.com" → "***@example.com"
func RedactEmail(email string) string {
	local, domain, ok := strings.Cut(email, "@")
	if !ok || strings.Contains(domain, "@") {
		return "***@***"
	}
	if len(local) > 2 {
		return local[:2] + "***@" + domain
	}
	return "***@" + domain
}
