package repository

import "Navi-App/internal/domain/model"

// LocationProvider セッションごとの現在地を保持する
type LocationProvider interface {
	Enable(sessionID string)
	Disable(sessionID string)
	Update(sessionID string, fix model.Coordinate) error
	CurrentLocation(sessionID string) (model.Coordinate, bool)
	Forget(sessionID string)
}
