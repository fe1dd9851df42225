package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"Navi-App/internal/domain/model"
	"Navi-App/internal/domain/repository"
	"Navi-App/internal/infrastructure/database"
)

const (
	selectGeocodeCacheQuery = `
		SELECT latitude, longitude, display_name
		FROM geocode_cache
		WHERE query = $1`

	upsertGeocodeCacheQuery = `
		INSERT INTO geocode_cache (query, latitude, longitude, display_name, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (query) DO UPDATE
		SET latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			display_name = EXCLUDED.display_name,
			updated_at = NOW()`
)

type PostgresGeocodeCacheRepository struct {
	client *database.PostgreSQLClient
}

func NewPostgresGeocodeCacheRepository(client *database.PostgreSQLClient) repository.GeocodeCacheRepository {
	return &PostgresGeocodeCacheRepository{
		client: client,
	}
}

// Get キャッシュ済みのジオコーディング結果を返す。未登録なら nil
func (r *PostgresGeocodeCacheRepository) Get(ctx context.Context, query string) (*model.GeocodeResult, error) {
	var (
		lat, lng    float64
		displayName sql.NullString
	)
	err := r.client.DB.QueryRowContext(ctx, selectGeocodeCacheQuery, query).Scan(&lat, &lng, &displayName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ジオコードキャッシュの取得失敗: %w", err)
	}

	return &model.GeocodeResult{
		Location:    model.Coordinate{Latitude: lat, Longitude: lng},
		DisplayName: displayName.String,
	}, nil
}

func (r *PostgresGeocodeCacheRepository) Put(ctx context.Context, query string, result model.GeocodeResult) error {
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("キャッシュキーが空です")
	}
	_, err := r.client.DB.ExecContext(ctx, upsertGeocodeCacheQuery,
		query,
		result.Location.Latitude,
		result.Location.Longitude,
		result.DisplayName,
	)
	if err != nil {
		return fmt.Errorf("ジオコードキャッシュの保存失敗: %w", err)
	}
	return nil
}
