package model

import "math"

const (
	DefaultZoom         = 18.0
	DefaultRotationStep = 90.0
)

// DefaultCenter 初期表示の中心座標
var DefaultCenter = Coordinate{Latitude: 49.12, Longitude: 9.21}

// MapView 地図の表示状態
type MapView struct {
	Center    Coordinate `json:"center" firestore:"center"`
	Zoom      float64    `json:"zoom" firestore:"zoom"`
	Rotation  float64    `json:"rotation" firestore:"rotation"`   // 度、[0, 360)
	Following bool       `json:"following" firestore:"following"` // 現在地追従モード
}

// NewMapView は初期表示状態を生成する
func NewMapView(center Coordinate, zoom float64) MapView {
	return MapView{Center: center, Zoom: zoom}
}

// Rotate は地図を時計回りに回転させる
func (v *MapView) Rotate(degrees float64) {
	r := math.Mod(v.Rotation+degrees, 360)
	if r < 0 {
		r += 360
	}
	v.Rotation = r
}

// MoveTo は追従モードを解除して中心を移動する
func (v *MapView) MoveTo(c Coordinate) {
	v.Following = false
	v.Center = c
}
