package repository

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"Navi-App/internal/domain/model"
	"Navi-App/internal/domain/repository"
)

const mapSessionsCollection = "mapSessions"

// FirestoreSessionRepository Firestoreを使用した地図セッションの保存先
type FirestoreSessionRepository struct {
	client   *firestore.Client
	ttlHours int
}

// NewFirestoreSessionRepository 新しいFirestoreSessionRepositoryインスタンスを作成
func NewFirestoreSessionRepository(client *firestore.Client, ttlHours int) repository.SessionRepository {
	return &FirestoreSessionRepository{
		client:   client,
		ttlHours: ttlHours,
	}
}

// Save はセッションのスナップショットを保存する（expireAtでTTLを設定）
func (r *FirestoreSessionRepository) Save(ctx context.Context, session *model.MapSession) error {
	doc := session.ToFirestoreMapSession(r.ttlHours)
	if _, err := r.client.Collection(mapSessionsCollection).Doc(session.ID).Set(ctx, doc); err != nil {
		return fmt.Errorf("セッションの保存に失敗しました: %w", err)
	}
	logrus.Debugf("💾 Map session saved: %s (expires in %d hours)", session.ID, r.ttlHours)
	return nil
}

// Get は指定されたIDのセッションを取得する
func (r *FirestoreSessionRepository) Get(ctx context.Context, id string) (*model.MapSession, error) {
	snap, err := r.client.Collection(mapSessionsCollection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("%w: %s", model.ErrSessionNotFound, id)
		}
		return nil, fmt.Errorf("セッションの取得に失敗しました: %w", err)
	}

	var doc model.FirestoreMapSession
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("データの変換に失敗しました: %w", err)
	}
	return doc.ToMapSession(id), nil
}

func (r *FirestoreSessionRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.client.Collection(mapSessionsCollection).Doc(id).Delete(ctx); err != nil {
		return fmt.Errorf("セッションの削除に失敗しました: %w", err)
	}
	return nil
}
