package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"Navi-App/internal/domain/model"
	"Navi-App/internal/domain/repository"
	"Navi-App/internal/infrastructure/database"
)

const routeHistoryTable = "route_history"

type SupabaseRouteHistoryRepository struct {
	client *database.SupabaseClient
}

func NewSupabaseRouteHistoryRepository(client *database.SupabaseClient) repository.RouteHistoryRepository {
	return &SupabaseRouteHistoryRepository{
		client: client,
	}
}

func (r *SupabaseRouteHistoryRepository) Create(ctx context.Context, record *model.RouteRecord) error {
	// RouteRecord を DB 保存用の形式に変換（地理情報を含む）
	// Insert 側でJSONに変換されるので構造体のまま渡す
	row := RouteRecordToDB(record)

	_, _, err := r.client.GetClient().From(routeHistoryTable).Insert(row, false, "", "", "").Execute()
	if err != nil {
		return fmt.Errorf("ルート履歴の作成失敗: %w", err)
	}

	return nil
}

func (r *SupabaseRouteHistoryRepository) ListBySession(ctx context.Context, sessionID string) ([]model.RouteRecord, error) {
	data, _, err := r.client.GetClient().From(routeHistoryTable).
		Select("*", "exact", false).
		Eq("session_id", sessionID).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("ルート履歴の取得失敗: %w", err)
	}

	var rows []RouteRecordDB
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("ルート履歴のJSONアンマーシャル失敗: %w", err)
	}

	records := make([]model.RouteRecord, 0, len(rows))
	for i := range rows {
		record, err := rows[i].ToRouteRecord()
		if err != nil {
			return nil, fmt.Errorf("ルート履歴 %s の変換失敗: %w", rows[i].ID, err)
		}
		records = append(records, *record)
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CreatedAt.Before(records[j].CreatedAt)
	})
	return records, nil
}
