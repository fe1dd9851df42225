package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"Navi-App/internal/domain/model"
	"Navi-App/internal/domain/repository"
)

// DestinationResolver は自由入力の地名を座標に変換する
type DestinationResolver struct {
	geocoder repository.GeocodingProvider
	cache    repository.GeocodeCacheRepository // nil可
	timeout  time.Duration
}

// NewDestinationResolver は新しいDestinationResolverを生成する
func NewDestinationResolver(geocoder repository.GeocodingProvider, cache repository.GeocodeCacheRepository, timeout time.Duration) *DestinationResolver {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &DestinationResolver{
		geocoder: geocoder,
		cache:    cache,
		timeout:  timeout,
	}
}

// Resolve は地名をジオコーディングし、最初の候補の座標を返す
func (r *DestinationResolver) Resolve(ctx context.Context, freeText string) (model.Coordinate, error) {
	query := strings.TrimSpace(freeText)
	if query == "" {
		return model.Coordinate{}, model.ErrEmptyInput
	}
	cacheKey := normalizeQuery(query)

	if r.cache != nil {
		cached, err := r.cache.Get(ctx, cacheKey)
		if err != nil {
			logrus.Warnf("⚠️ ジオコードキャッシュの読み込みに失敗: %v", err)
		} else if cached != nil {
			logrus.Debugf("📦 ジオコードキャッシュヒット: %q", query)
			return cached.Location, nil
		}
	}

	lookupCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	results, err := r.geocoder.Lookup(lookupCtx, query, 1)
	if err != nil {
		return model.Coordinate{}, fmt.Errorf("%w: %v", model.ErrGeocodingService, err)
	}
	if len(results) == 0 {
		return model.Coordinate{}, model.ErrDestinationNotFound
	}

	first := results[0]
	if err := first.Location.Validate(); err != nil {
		return model.Coordinate{}, fmt.Errorf("%w: %v", model.ErrGeocodingService, err)
	}

	if r.cache != nil {
		if err := r.cache.Put(ctx, cacheKey, first); err != nil {
			logrus.Warnf("⚠️ ジオコードキャッシュの保存に失敗: %v", err)
		}
	}

	logrus.Infof("📍 目的地を解決: %q -> %s", query, first.Location.String())
	return first.Location, nil
}

func normalizeQuery(query string) string {
	return strings.ToLower(strings.Join(strings.Fields(query), " "))
}
