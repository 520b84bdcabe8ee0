// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/newsletter/internal/model"
)

// SubscriptionRepository は購読者データの永続化インターフェース。
type SubscriptionRepository interface {
	// Insert は購読者を1件作成する。
	// メールアドレスが既に登録済みの場合は model.ErrDuplicateEmail をラップしたエラーを返す。
	Insert(ctx context.Context, sub *model.Subscriber) error
}
