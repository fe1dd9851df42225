package model

// DefaultInstruction は指示文がないノード（直進）に表示する文言
const DefaultInstruction = "Continue straight"

// RouteNode ルート上の1ノード。Instructionがnilの場合は直進を意味する
type RouteNode struct {
	Location    Coordinate `json:"location"`
	Instruction *string    `json:"instruction,omitempty"`
}

// InstructionText は表示用の指示文を返す
func (n RouteNode) InstructionText() string {
	if n.Instruction == nil || *n.Instruction == "" {
		return DefaultInstruction
	}
	return *n.Instruction
}

// Route 経路サービスから返されたルート
type Route struct {
	Nodes           []RouteNode  `json:"nodes"`
	Geometry        []Coordinate `json:"geometry,omitempty"` // 経路全体の形状（プロバイダが返す場合のみ）
	DistanceMeters  float64      `json:"distance_meters"`
	DurationSeconds float64      `json:"duration_seconds"`
}

// IsEmpty はルートが存在しないかを判定する
func (r *Route) IsEmpty() bool {
	return r == nil || len(r.Nodes) == 0
}

// PathPoints は描画用の座標列を返す。形状がない場合はノード位置をつなぐ
func (r *Route) PathPoints() []Coordinate {
	if r == nil {
		return nil
	}
	if len(r.Geometry) > 0 {
		points := make([]Coordinate, len(r.Geometry))
		copy(points, r.Geometry)
		return points
	}
	points := make([]Coordinate, len(r.Nodes))
	for i, node := range r.Nodes {
		points[i] = node.Location
	}
	return points
}

// GeocodeResult ジオコーディングの候補1件
type GeocodeResult struct {
	Location    Coordinate `json:"location"`
	DisplayName string     `json:"display_name,omitempty"`
}

// StringPtr は文字列のポインタを返す
func StringPtr(s string) *string {
	return &s
}
