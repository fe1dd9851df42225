package model

import "time"

// MapSession 1画面分の地図の状態
type MapSession struct {
	ID              string      `json:"id"`
	View            MapView     `json:"view"`
	Overlays        OverlaySet  `json:"overlays"`
	Target          *Coordinate `json:"target"`
	TrackingEnabled bool        `json:"tracking_enabled"`
	Generation      uint64      `json:"generation"` // 最後に反映された検索・ルートリクエストの世代
	UpdatedAt       time.Time   `json:"updated_at"`
}

// NewMapSession は初期状態のセッションを生成する
func NewMapSession(id string, view MapView) *MapSession {
	return &MapSession{
		ID:              id,
		View:            view,
		Overlays:        NewOverlaySet(),
		TrackingEnabled: true,
		UpdatedAt:       time.Now(),
	}
}

// Clone は共有部分を持たないコピーを返す
func (s *MapSession) Clone() *MapSession {
	out := *s
	out.Overlays = s.Overlays.Clone()
	if s.Target != nil {
		out.Target = s.Target.Ptr()
	}
	return &out
}

// CurrentPosition は現在地マーカーの位置を返す
func (s *MapSession) CurrentPosition() *Coordinate {
	if s.Overlays.PositionMarker == nil {
		return nil
	}
	return s.Overlays.PositionMarker.Position
}

// FirestoreMapSession Firestore保存用の構造体
type FirestoreMapSession struct {
	View            MapView     `firestore:"view"`
	Overlays        OverlaySet  `firestore:"overlays"`
	Target          *Coordinate `firestore:"target"`
	TrackingEnabled bool        `firestore:"tracking_enabled"`
	Generation      int64       `firestore:"generation"`
	UpdatedAt       time.Time   `firestore:"updated_at"`
	ExpireAt        time.Time   `firestore:"expireAt"`
}

func (s *MapSession) ToFirestoreMapSession(ttlHours int) *FirestoreMapSession {
	return &FirestoreMapSession{
		View:            s.View,
		Overlays:        s.Overlays,
		Target:          s.Target,
		TrackingEnabled: s.TrackingEnabled,
		Generation:      int64(s.Generation),
		UpdatedAt:       s.UpdatedAt,
		ExpireAt:        time.Now().Add(time.Duration(ttlHours) * time.Hour),
	}
}

func (f *FirestoreMapSession) ToMapSession(id string) *MapSession {
	s := &MapSession{
		ID:              id,
		View:            f.View,
		Overlays:        f.Overlays,
		Target:          f.Target,
		TrackingEnabled: f.TrackingEnabled,
		Generation:      uint64(f.Generation),
		UpdatedAt:       f.UpdatedAt,
	}
	if s.Overlays.Markers == nil {
		s.Overlays.Markers = []InstructionMarker{}
	}
	return s
}

// RedrawEvent 描画面に送る再描画シグナル
type RedrawEvent struct {
	SessionID  string     `json:"session_id"`
	Generation uint64     `json:"generation"`
	Reason     string     `json:"reason"`
	View       MapView    `json:"view"`
	Overlays   OverlaySet `json:"overlays"`
	At         time.Time  `json:"at"`
}

// NewRedrawEvent はセッションの現在状態から再描画イベントを生成する
func NewRedrawEvent(s *MapSession, reason string) RedrawEvent {
	return RedrawEvent{
		SessionID:  s.ID,
		Generation: s.Generation,
		Reason:     reason,
		View:       s.View,
		Overlays:   s.Overlays.Clone(),
		At:         time.Now(),
	}
}
