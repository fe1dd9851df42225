package model

import "time"

// RouteRecord 描画に成功したルートの履歴
type RouteRecord struct {
	ID              string       `json:"id"`
	SessionID       string       `json:"session_id"`
	Query           string       `json:"query"`
	Origin          Coordinate   `json:"origin"`
	Destination     Coordinate   `json:"destination"`
	NodeCount       int          `json:"node_count"`
	DistanceMeters  float64      `json:"distance_meters"`
	DurationSeconds float64      `json:"duration_seconds"`
	Path            []Coordinate `json:"path,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
}
