package model

import "errors"

var (
	// ErrMissingCurrentLocation 現在地がまだ取得できていない
	ErrMissingCurrentLocation = errors.New("current location is unknown")
	// ErrEmptyInput 検索文字列が空
	ErrEmptyInput = errors.New("input cannot be empty")
	// ErrDestinationNotFound ジオコーディング結果が0件
	ErrDestinationNotFound = errors.New("location not found")
	// ErrGeocodingService ジオコーディングサービスの通信エラー
	ErrGeocodingService = errors.New("geocoding service error")
	// ErrNoRouteFound 経路サービスがルートを返さなかった
	ErrNoRouteFound = errors.New("no route found")
	// ErrRoutingServiceUnavailable 経路サービスの通信エラー
	ErrRoutingServiceUnavailable = errors.New("routing service unavailable")
	// ErrRequestSuperseded より新しいリクエストに置き換えられた
	ErrRequestSuperseded = errors.New("request superseded by a newer request")

	ErrInvalidCoordinate = errors.New("invalid coordinate")
	ErrSessionNotFound   = errors.New("session not found")
	ErrTrackingDisabled  = errors.New("location tracking is disabled")
)

var userMessages = []struct {
	err     error
	message string
}{
	{ErrEmptyInput, "Input cannot be empty"},
	{ErrMissingCurrentLocation, "Current location is not available yet"},
	{ErrDestinationNotFound, "Location not found"},
	{ErrGeocodingService, "Location search is currently unavailable"},
	{ErrNoRouteFound, "No route found"},
	{ErrRoutingServiceUnavailable, "Routing service is currently unavailable"},
	{ErrRequestSuperseded, "Request was replaced by a newer one"},
	{ErrInvalidCoordinate, "Invalid coordinate"},
	{ErrSessionNotFound, "Map session not found"},
	{ErrTrackingDisabled, "Location tracking is disabled"},
}

// UserMessage はエラー種別ごとにユーザーへ表示する短い通知文を返す
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	for _, m := range userMessages {
		if errors.Is(err, m.err) {
			return m.message
		}
	}
	return "Something went wrong"
}
