// Package subscription はニュースレター購読受付のドメインロジックを提供する。
package subscription

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/newsletter/internal/logger"
	"github.com/hitoshi/newsletter/internal/metrics"
	"github.com/hitoshi/newsletter/internal/model"
	"github.com/hitoshi/newsletter/internal/repository"
	"github.com/hitoshi/newsletter/internal/subscriber"
)

// Service は購読受付のサービス層。
// 入力を検証し、検証に成功した場合のみストレージに1件書き込む。
type Service struct {
	repo      repository.SubscriptionRepository
	collector metrics.MetricsCollector
	logger    *slog.Logger

	// テストで差し替え可能
	now   func() time.Time
	newID func() string
}

// NewService はServiceの新しいインスタンスを生成する。
// collectorがnilの場合はメトリクスを記録しない。
func NewService(repo repository.SubscriptionRepository, collector metrics.MetricsCollector, logger *slog.Logger) *Service {
	if collector == nil {
		collector = metrics.NopCollector{}
	}
	return &Service{
		repo:      repo,
		collector: collector,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
		newID:     func() string { return uuid.New().String() },
	}
}

// Subscribe は購読リクエストを受け付ける。
// 検証に失敗した場合は *model.APIError を返し、ストレージにはアクセスしない。
// ストレージへの書き込みに失敗した場合はラップしたエラーを返す（リトライしない）。
func (s *Service) Subscribe(ctx context.Context, name, email string) (*model.Subscriber, error) {
	input, err := subscriber.Validate(name, email)
	if err != nil {
		return nil, s.rejected(err)
	}

	sub := &model.Subscriber{
		ID:           s.newID(),
		Email:        input.Email,
		Name:         input.Name,
		SubscribedAt: s.now(),
	}

	if err := s.repo.Insert(ctx, sub); err != nil {
		reason := "storage"
		if errors.Is(err, model.ErrDuplicateEmail) {
			reason = "duplicate_email"
		}
		s.collector.RecordSubscriptionFailed(reason)
		return nil, fmt.Errorf("購読者の保存に失敗しました: %w", err)
	}

	s.collector.RecordSubscriptionAccepted()
	s.logger.InfoContext(ctx, "new subscriber saved",
		slog.String("subscriber_id", sub.ID),
		slog.String("email", logger.RedactEmail(sub.Email)),
	)

	return sub, nil
}

// rejected はバリデーションエラーをAPIErrorに変換し、メトリクスを記録する。
func (s *Service) rejected(err error) *model.APIError {
	var vErr *subscriber.ValidationError
	if !errors.As(err, &vErr) {
		s.collector.RecordSubscriptionRejected("unknown")
		return model.NewInvalidRequestError()
	}

	s.collector.RecordSubscriptionRejected(string(vErr.Field))
	switch vErr.Field {
	case subscriber.FieldName:
		return model.NewInvalidNameError(vErr.Err.Error())
	default:
		return model.NewInvalidEmailError(vErr.Err.Error())
	}
}
