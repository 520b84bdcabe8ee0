package model

import (
	"errors"
	"fmt"
)

// ErrDuplicateEmail は既に登録済みのメールアドレスで購読しようとした場合のエラー。
// ストレージ層の一意制約違反から変換される。
var ErrDuplicateEmail = errors.New("email already subscribed")

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: validation, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeInvalidRequest = "INVALID_REQUEST"
	ErrCodeInvalidName    = "INVALID_NAME"
	ErrCodeInvalidEmail   = "INVALID_EMAIL"
	ErrCodeInternal       = "INTERNAL_ERROR"
)

// NewInvalidRequestError はリクエストボディの解析失敗エラーを生成する。
func NewInvalidRequestError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  "リクエストボディの解析に失敗しました。",
		Category: "validation",
		Action:   "application/x-www-form-urlencoded 形式で name と email を送信してください。",
	}
}

// NewInvalidNameError は名前のバリデーションエラーを生成する。
func NewInvalidNameError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidName,
		Message:  fmt.Sprintf("無効な名前です: %s", reason),
		Category: "validation",
		Action:   "256文字以内で、記号 / ( ) \" < > \\ { } を含まない名前を入力してください。",
	}
}

// NewInvalidEmailError はメールアドレスのバリデーションエラーを生成する。
func NewInvalidEmailError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidEmail,
		Message:  fmt.Sprintf("無効なメールアドレスです: %s", reason),
		Category: "validation",
		Action:   "user@example.com の形式でメールアドレスを入力してください。",
	}
}

// NewInternalError は内部エラーを生成する。
// 詳細はログのみに記録し、ユーザーには一般的なメッセージを返す。
func NewInternalError() *APIError {
	return &APIError{
		Code:     ErrCodeInternal,
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}
