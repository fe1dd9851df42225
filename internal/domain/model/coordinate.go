package model

import (
	"fmt"

	"github.com/paulmach/orb"
)

// Coordinate 緯度経度（度）を表す値オブジェクト
type Coordinate struct {
	Latitude  float64 `json:"latitude" firestore:"latitude"`
	Longitude float64 `json:"longitude" firestore:"longitude"`
}

// NewCoordinate は範囲チェック済みのCoordinateを生成する
func NewCoordinate(lat, lng float64) (Coordinate, error) {
	c := Coordinate{Latitude: lat, Longitude: lng}
	if err := c.Validate(); err != nil {
		return Coordinate{}, err
	}
	return c, nil
}

// Validate は緯度経度が有効範囲内かを確認する
func (c Coordinate) Validate() error {
	if c.Latitude < -90 || c.Latitude > 90 {
		return fmt.Errorf("%w: latitude %f is out of range [-90, 90]", ErrInvalidCoordinate, c.Latitude)
	}
	if c.Longitude < -180 || c.Longitude > 180 {
		return fmt.Errorf("%w: longitude %f is out of range [-180, 180]", ErrInvalidCoordinate, c.Longitude)
	}
	return nil
}

// ToPoint orb.Point（[lng, lat]）に変換
func (c Coordinate) ToPoint() orb.Point {
	return orb.Point{c.Longitude, c.Latitude}
}

// CoordinateFromPoint orb.Point から Coordinate に変換
func CoordinateFromPoint(p orb.Point) Coordinate {
	return Coordinate{Latitude: p.Lat(), Longitude: p.Lon()}
}

// String は "lat,lng" 形式の文字列を返す（外部APIのクエリで使用）
func (c Coordinate) String() string {
	return fmt.Sprintf("%f,%f", c.Latitude, c.Longitude)
}

// Ptr はCoordinateのポインタを返す
func (c Coordinate) Ptr() *Coordinate {
	return &c
}

// NewWaypoints は現在地と目的地からウェイポイントリストを構築する
// 先頭が現在地、末尾が目的地になる
func NewWaypoints(current, target Coordinate) []Coordinate {
	return []Coordinate{current, target}
}
