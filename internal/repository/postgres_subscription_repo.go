package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/hitoshi/newsletter/internal/model"
)

const (
	// pqUniqueViolation はPostgreSQLの一意制約違反のSQLSTATE。
	pqUniqueViolation = "23505"
	// emailUniqueConstraint はsubscriptions.emailの一意制約名。
	emailUniqueConstraint = "subscriptions_email_key"
)

// PostgresSubscriptionRepo はPostgreSQLを使用した購読者リポジトリ。
// *sql.DBは並行利用可能な接続プールで、1回のInsertの間だけ接続を保持する。
type PostgresSubscriptionRepo struct {
	db *sql.DB
}

// NewPostgresSubscriptionRepo はPostgresSubscriptionRepoを生成する。
func NewPostgresSubscriptionRepo(db *sql.DB) *PostgresSubscriptionRepo {
	return &PostgresSubscriptionRepo{db: db}
}

// Insert は購読者を1回のINSERTで作成する。リトライは行わない。
func (r *PostgresSubscriptionRepo) Insert(ctx context.Context, sub *model.Subscriber) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO subscriptions (id, email, name, subscribed_at)
		 VALUES ($1, $2, $3, $4)`,
		sub.ID, sub.Email, sub.Name, sub.SubscribedAt,
	)
	if err != nil {
		if isEmailConflict(err) {
			return fmt.Errorf("購読者の作成に失敗しました: %w: %w", model.ErrDuplicateEmail, err)
		}
		return fmt.Errorf("購読者の作成に失敗しました: %w", err)
	}

	return nil
}

// isEmailConflict はエラーがemailの一意制約違反かどうかを判定する。
func isEmailConflict(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return string(pqErr.Code) == pqUniqueViolation && pqErr.Constraint == emailUniqueConstraint
}

// compile-time interface check
var _ SubscriptionRepository = (*PostgresSubscriptionRepo)(nil)
