package model

// LocationUpdateRequest 端末から送られる位置情報
type LocationUpdateRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// TrackingRequest 位置情報取得の有効/無効切り替え
type TrackingRequest struct {
	Enabled *bool `json:"enabled"`
}

// DestinationRequest 検索・ルート開始で使う自由入力の目的地
type DestinationRequest struct {
	Query string `json:"query"`
}

// RotateRequest コンパスボタンによる回転。省略時は90度
type RotateRequest struct {
	Degrees *float64 `json:"degrees"`
}

// SearchResponse 検索結果
type SearchResponse struct {
	Target  Coordinate  `json:"target"`
	Session *MapSession `json:"session"`
}

// RouteResponse ルート描画結果
type RouteResponse struct {
	Target          Coordinate  `json:"target"`
	StepCount       int         `json:"step_count"`
	DistanceMeters  float64     `json:"distance_meters"`
	DurationSeconds float64     `json:"duration_seconds"`
	Session         *MapSession `json:"session"`
}

// RouteHistoryResponse ルート履歴一覧
type RouteHistoryResponse struct {
	Routes []RouteRecord `json:"routes"`
}
