package repository

import (
	"context"

	"Navi-App/internal/domain/model"
)

// SessionRepository 地図セッションのスナップショット保存先
type SessionRepository interface {
	Save(ctx context.Context, session *model.MapSession) error
	// Get は存在しない場合 model.ErrSessionNotFound を返す
	Get(ctx context.Context, id string) (*model.MapSession, error)
	Delete(ctx context.Context, id string) error
}

// RouteHistoryRepository ルート履歴の保存先
type RouteHistoryRepository interface {
	Create(ctx context.Context, record *model.RouteRecord) error
	ListBySession(ctx context.Context, sessionID string) ([]model.RouteRecord, error)
}

// GeocodeCacheRepository ジオコーディング結果のキャッシュ
type GeocodeCacheRepository interface {
	Get(ctx context.Context, query string) (*model.GeocodeResult, error) // 未登録ならnil
	Put(ctx context.Context, query string, result model.GeocodeResult) error
}
