package repository

import (
	"context"

	"Navi-App/internal/domain/model"
)

// RoutingProvider 外部の経路サービス
// ルートが見つからない場合は (nil, nil) または空のルートを返す
type RoutingProvider interface {
	GetRoute(ctx context.Context, waypoints []model.Coordinate) (*model.Route, error)
}

// GeocodingProvider 外部のジオコーディングサービス
type GeocodingProvider interface {
	Lookup(ctx context.Context, text string, maxResults int) ([]model.GeocodeResult, error)
}
