package repository

import (
	"fmt"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"

	"Navi-App/internal/domain/model"
)

// GeoPoint PostGIS POINT 型の JSON 表現
type GeoPoint struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

// CoordinateToGeoPoint model.Coordinate を PostGIS POINT 形式に変換
func CoordinateToGeoPoint(c model.Coordinate) *GeoPoint {
	point := c.ToPoint()
	return &GeoPoint{
		Type:        "Point",
		Coordinates: []float64{point.Lon(), point.Lat()},
	}
}

// GeoPointToCoordinate PostGIS POINT を model.Coordinate に変換
func GeoPointToCoordinate(geoPoint *GeoPoint) (model.Coordinate, error) {
	if geoPoint == nil || len(geoPoint.Coordinates) < 2 {
		return model.Coordinate{}, fmt.Errorf("不正なPOINTデータです")
	}
	return model.CoordinateFromPoint(orb.Point{geoPoint.Coordinates[0], geoPoint.Coordinates[1]}), nil
}

// PathToWKT 経路の座標列を LINESTRING の WKT に変換
func PathToWKT(path []model.Coordinate) string {
	if len(path) < 2 {
		return ""
	}
	ls := make(orb.LineString, len(path))
	for i, c := range path {
		ls[i] = c.ToPoint()
	}
	return wkt.MarshalString(ls)
}

// WKTToPath LINESTRING の WKT を座標列に変換
func WKTToPath(s string) ([]model.Coordinate, error) {
	if s == "" {
		return nil, nil
	}
	ls, err := wkt.UnmarshalLineString(s)
	if err != nil {
		return nil, fmt.Errorf("WKTのパースに失敗: %w", err)
	}
	path := make([]model.Coordinate, len(ls))
	for i, p := range ls {
		path[i] = model.CoordinateFromPoint(p)
	}
	return path, nil
}

// RouteRecordDB route_history テーブルの行
type RouteRecordDB struct {
	ID              string    `json:"id"`
	SessionID       string    `json:"session_id"`
	Query           string    `json:"query"`
	Origin          *GeoPoint `json:"origin"`
	Destination     *GeoPoint `json:"destination"`
	NodeCount       int       `json:"node_count"`
	DistanceMeters  float64   `json:"distance_meters"`
	DurationSeconds float64   `json:"duration_seconds"`
	PathWKT         string    `json:"path_wkt"`
	CreatedAt       time.Time `json:"created_at"`
}

// RouteRecordToDB model.RouteRecord を DB 保存用に変換
func RouteRecordToDB(record *model.RouteRecord) *RouteRecordDB {
	return &RouteRecordDB{
		ID:              record.ID,
		SessionID:       record.SessionID,
		Query:           record.Query,
		Origin:          CoordinateToGeoPoint(record.Origin),
		Destination:     CoordinateToGeoPoint(record.Destination),
		NodeCount:       record.NodeCount,
		DistanceMeters:  record.DistanceMeters,
		DurationSeconds: record.DurationSeconds,
		PathWKT:         PathToWKT(record.Path),
		CreatedAt:       record.CreatedAt,
	}
}

// ToRouteRecord DB の行を model.RouteRecord に変換
func (r *RouteRecordDB) ToRouteRecord() (*model.RouteRecord, error) {
	origin, err := GeoPointToCoordinate(r.Origin)
	if err != nil {
		return nil, fmt.Errorf("origin: %w", err)
	}
	destination, err := GeoPointToCoordinate(r.Destination)
	if err != nil {
		return nil, fmt.Errorf("destination: %w", err)
	}
	path, err := WKTToPath(r.PathWKT)
	if err != nil {
		return nil, err
	}
	return &model.RouteRecord{
		ID:              r.ID,
		SessionID:       r.SessionID,
		Query:           r.Query,
		Origin:          origin,
		Destination:     destination,
		NodeCount:       r.NodeCount,
		DistanceMeters:  r.DistanceMeters,
		DurationSeconds: r.DurationSeconds,
		Path:            path,
		CreatedAt:       r.CreatedAt,
	}, nil
}
