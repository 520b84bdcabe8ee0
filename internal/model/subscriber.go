// Package model はドメインモデルを定義する。
package model

import "time"

// Subscriber はニュースレター購読者を表す。
// 作成後に更新・削除されることはない。
type Subscriber struct {
	ID           string
	Email        string
	Name         string
	SubscribedAt time.Time
}
