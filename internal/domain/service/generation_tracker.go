package service

import (
	"context"
	"sync"
)

// GenerationTracker はセッションごとに検索・ルートリクエストの世代を管理する
// 新しい世代を開始すると、前の世代のコンテキストはキャンセルされる
type GenerationTracker struct {
	mu      sync.Mutex
	entries map[string]*generationEntry
}

type generationEntry struct {
	generation uint64
	cancel     context.CancelFunc
}

// NewGenerationTracker は新しいGenerationTrackerを生成する
func NewGenerationTracker() *GenerationTracker {
	return &GenerationTracker{entries: make(map[string]*generationEntry)}
}

// Begin は新しい世代を開始し、その世代用のコンテキストを返す
// 返されたdoneは処理完了時に必ず呼び出すこと
func (t *GenerationTracker) Begin(parent context.Context, key string) (context.Context, uint64, func()) {
	ctx, cancel := context.WithCancel(parent)

	t.mu.Lock()
	entry, ok := t.entries[key]
	if !ok {
		entry = &generationEntry{}
		t.entries[key] = entry
	}
	if entry.cancel != nil {
		entry.cancel()
	}
	entry.generation++
	entry.cancel = cancel
	generation := entry.generation
	t.mu.Unlock()

	done := func() {
		t.mu.Lock()
		if e, ok := t.entries[key]; ok && e.generation == generation {
			e.cancel = nil
		}
		t.mu.Unlock()
		cancel()
	}
	return ctx, generation, done
}

// IsCurrent は指定した世代が最新かどうかを判定する
func (t *GenerationTracker) IsCurrent(key string, generation uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	entry, ok := t.entries[key]
	return ok && entry.generation == generation
}

// Current は最新の世代を返す（未開始なら0）
func (t *GenerationTracker) Current(key string) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	if entry, ok := t.entries[key]; ok {
		return entry.generation
	}
	return 0
}

// Forget は進行中のリクエストをキャンセルしてキーを削除する
func (t *GenerationTracker) Forget(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if entry, ok := t.entries[key]; ok {
		if entry.cancel != nil {
			entry.cancel()
		}
		delete(t.entries, key)
	}
}
