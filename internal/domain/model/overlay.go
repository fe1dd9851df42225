package model

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

const (
	// MarkerIconDirectionArrow 全ステップ共通の矢印アイコン
	MarkerIconDirectionArrow = "direction-arrow"

	AnchorCenter = "center"
	AnchorBottom = "bottom"

	DefaultRouteWidth = 15.0
	DefaultRouteColor = "#0000FF"
)

// RoutePath 地図上に描画するルート線
type RoutePath struct {
	Points []Coordinate `json:"points" firestore:"points"`
	Width  float64      `json:"width" firestore:"width"`
	Color  string       `json:"color" firestore:"color"`
}

// LineString orb.LineString に変換
func (p *RoutePath) LineString() orb.LineString {
	ls := make(orb.LineString, len(p.Points))
	for i, c := range p.Points {
		ls[i] = c.ToPoint()
	}
	return ls
}

// InstructionMarker ルート上の曲がり角などに置く案内マーカー
type InstructionMarker struct {
	Step     int        `json:"step" firestore:"step"` // 1始まり
	Title    string     `json:"title" firestore:"title"`
	Text     string     `json:"text" firestore:"text"`
	Position Coordinate `json:"position" firestore:"position"`
	Icon     string     `json:"icon" firestore:"icon"`
	AnchorU  string     `json:"anchor_u" firestore:"anchor_u"`
	AnchorV  string     `json:"anchor_v" firestore:"anchor_v"`
}

// NewInstructionMarker はステップ番号とノードからマーカーを生成する
func NewInstructionMarker(step int, node RouteNode) InstructionMarker {
	return InstructionMarker{
		Step:     step,
		Title:    fmt.Sprintf("Step %d", step),
		Text:     node.InstructionText(),
		Position: node.Location,
		Icon:     MarkerIconDirectionArrow,
		AnchorU:  AnchorCenter,
		AnchorV:  AnchorBottom,
	}
}

// Label はマーカーに表示するテキスト
func (m InstructionMarker) Label() string {
	return fmt.Sprintf("%s: %s", m.Title, m.Text)
}

// PositionMarker 現在地インジケーター。Positionがnilの場合は位置未取得
type PositionMarker struct {
	Position *Coordinate `json:"position" firestore:"position"`
}

// ScaleBar 縮尺バー
type ScaleBar struct {
	Visible bool `json:"visible" firestore:"visible"`
}

// OverlaySet 地図に重ねて表示する要素の集合
// 各スロットは丸ごと置き換えて更新する
type OverlaySet struct {
	Route          *RoutePath          `json:"route" firestore:"route"`
	Markers        []InstructionMarker `json:"markers" firestore:"markers"`
	PositionMarker *PositionMarker     `json:"position_marker" firestore:"position_marker"`
	ScaleBar       *ScaleBar           `json:"scale_bar" firestore:"scale_bar"`
}

// NewOverlaySet は常設オーバーレイ（現在地マーカーと縮尺バー）だけを持つ集合を生成する
func NewOverlaySet() OverlaySet {
	return OverlaySet{
		Markers:        []InstructionMarker{},
		PositionMarker: &PositionMarker{},
		ScaleBar:       &ScaleBar{Visible: true},
	}
}

// Clone はスロットを共有しないコピーを返す
func (s OverlaySet) Clone() OverlaySet {
	out := OverlaySet{Markers: make([]InstructionMarker, len(s.Markers))}
	copy(out.Markers, s.Markers)
	if s.Route != nil {
		route := *s.Route
		route.Points = append([]Coordinate(nil), s.Route.Points...)
		out.Route = &route
	}
	if s.PositionMarker != nil {
		pm := PositionMarker{}
		if s.PositionMarker.Position != nil {
			pm.Position = s.PositionMarker.Position.Ptr()
		}
		out.PositionMarker = &pm
	}
	if s.ScaleBar != nil {
		sb := *s.ScaleBar
		out.ScaleBar = &sb
	}
	return out
}

// WithRoute はルートとマーカーのスロットを置き換えた新しい集合を返す
func (s OverlaySet) WithRoute(path *RoutePath, markers []InstructionMarker) OverlaySet {
	out := s.Clone()
	out.Route = path
	out.Markers = markers
	return out
}

// ToFeatureCollection はオーバーレイをGeoJSONに変換する
func (s OverlaySet) ToFeatureCollection() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	if s.Route != nil && len(s.Route.Points) > 0 {
		f := geojson.NewFeature(s.Route.LineString())
		f.Properties["kind"] = "route"
		f.Properties["width"] = s.Route.Width
		f.Properties["color"] = s.Route.Color
		fc.Append(f)
	}

	for _, m := range s.Markers {
		f := geojson.NewFeature(m.Position.ToPoint())
		f.Properties["kind"] = "instruction"
		f.Properties["step"] = m.Step
		f.Properties["title"] = m.Title
		f.Properties["text"] = m.Text
		f.Properties["icon"] = m.Icon
		fc.Append(f)
	}

	if s.PositionMarker != nil && s.PositionMarker.Position != nil {
		f := geojson.NewFeature(s.PositionMarker.Position.ToPoint())
		f.Properties["kind"] = "position"
		fc.Append(f)
	}

	fc.ExtraMembers = geojson.Properties{
		"scale_bar": s.ScaleBar != nil && s.ScaleBar.Visible,
	}
	return fc
}
