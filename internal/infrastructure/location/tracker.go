package location

import (
	"sync"

	"Navi-App/internal/domain/model"
)

// Tracker はセッションごとに端末から送られた最新の位置を保持する
type Tracker struct {
	mu      sync.RWMutex
	entries map[string]*trackerEntry
}

type trackerEntry struct {
	enabled bool
	fix     *model.Coordinate
}

// NewTracker は新しいTrackerを生成する
func NewTracker() *Tracker {
	return &Tracker{entries: make(map[string]*trackerEntry)}
}

func (t *Tracker) entry(sessionID string) *trackerEntry {
	e, ok := t.entries[sessionID]
	if !ok {
		e = &trackerEntry{}
		t.entries[sessionID] = e
	}
	return e
}

// Enable は位置情報の受け付けを開始する
func (t *Tracker) Enable(sessionID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entry(sessionID).enabled = true
}

// Disable は位置情報の受け付けを停止する。停止中は現在地不明として扱う
func (t *Tracker) Disable(sessionID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entry(sessionID).enabled = false
}

// Update は最新の位置を記録する
func (t *Tracker) Update(sessionID string, fix model.Coordinate) error {
	if err := fix.Validate(); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	e := t.entry(sessionID)
	if !e.enabled {
		return model.ErrTrackingDisabled
	}
	e.fix = fix.Ptr()
	return nil
}

// CurrentLocation は最新の位置を返す。未取得または停止中はfalse
func (t *Tracker) CurrentLocation(sessionID string) (model.Coordinate, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	e, ok := t.entries[sessionID]
	if !ok || !e.enabled || e.fix == nil {
		return model.Coordinate{}, false
	}
	return *e.fix, true
}

func (t *Tracker) Forget(sessionID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.entries, sessionID)
}
