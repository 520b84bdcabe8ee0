package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/newsletter/internal/middleware"
	"github.com/hitoshi/newsletter/internal/model"
)

// SubscriptionServiceInterface は購読ハンドラーが必要とするサービスインターフェース。
type SubscriptionServiceInterface interface {
	// Subscribe は入力を検証し、購読者を1件保存する。
	// 検証エラーは *model.APIError、保存失敗はそれ以外のエラーとして返す。
	Subscribe(ctx context.Context, name, email string) (*model.Subscriber, error)
}

// SubscriptionHandler は購読受付のHTTPハンドラー。
type SubscriptionHandler struct {
	service SubscriptionServiceInterface
	logger  *slog.Logger
}

// NewSubscriptionHandler はSubscriptionHandlerを生成する。
func NewSubscriptionHandler(service SubscriptionServiceInterface, logger *slog.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{
		service: service,
		logger:  logger,
	}
}

// Subscribe はフォームで送信された購読リクエストを受け付ける。
// 成功時は200を空ボディで返す。
// POST /subscription (application/x-www-form-urlencoded: name, email)
func (h *SubscriptionHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError())
		return
	}

	// フィールド自体が無いリクエストはバリデーション前に拒否する
	if !r.PostForm.Has("name") || !r.PostForm.Has("email") {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError())
		return
	}

	if _, err := h.service.Subscribe(r.Context(), r.PostForm.Get("name"), r.PostForm.Get("email")); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// writeAPIErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	middleware.WriteErrorResponse(w, statusCode, apiErr)
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
// 重複メールを含むストレージエラーは区別せず500を返す。
func (h *SubscriptionHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		writeAPIErrorResponse(w, mapAPIErrorToHTTPStatus(apiErr), apiErr)
		return
	}

	reason := "storage"
	if errors.Is(err, model.ErrDuplicateEmail) {
		reason = "duplicate_email"
	}
	h.logger.ErrorContext(r.Context(), "failed to save subscriber",
		slog.String("reason", reason),
		slog.String("error", err.Error()),
	)
	middleware.WriteInternalServerError(w)
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeInvalidRequest, model.ErrCodeInvalidName, model.ErrCodeInvalidEmail:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
