package repository

import (
	"context"
	"fmt"
	"sync"

	"Navi-App/internal/domain/model"
	"Navi-App/internal/domain/repository"
)

// MemorySessionRepository プロセス内に保持するセッションの保存先（Firestore未設定時に使用）
type MemorySessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]*model.MapSession
}

func NewMemorySessionRepository() repository.SessionRepository {
	return &MemorySessionRepository{sessions: make(map[string]*model.MapSession)}
}

func (r *MemorySessionRepository) Save(ctx context.Context, session *model.MapSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.ID] = session.Clone()
	return nil
}

func (r *MemorySessionRepository) Get(ctx context.Context, id string) (*model.MapSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", model.ErrSessionNotFound, id)
	}
	return s.Clone(), nil
}

func (r *MemorySessionRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	return nil
}
