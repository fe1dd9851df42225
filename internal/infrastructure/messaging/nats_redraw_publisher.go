package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"

	"Navi-App/internal/domain/model"
)

// RedrawSubjectPrefix 再描画イベントのサブジェクト（navigation.redraw.<session_id>）
const RedrawSubjectPrefix = "navigation.redraw."

// NATSRedrawPublisher は再描画イベントをNATSに配信する
type NATSRedrawPublisher struct {
	conn *nats.Conn
}

// NewNATSRedrawPublisher はNATSに接続する
func NewNATSRedrawPublisher(url string) (*NATSRedrawPublisher, error) {
	conn, err := nats.Connect(url,
		nats.Name("navi-app"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	logrus.Infof("✅ NATS connected: %s", url)
	return &NATSRedrawPublisher{conn: conn}, nil
}

// Redraw は描画面に再描画を要求する
func (p *NATSRedrawPublisher) Redraw(ctx context.Context, event model.RedrawEvent) error {
	data, err := EncodeRedrawEvent(event)
	if err != nil {
		return err
	}
	if err := p.conn.Publish(RedrawSubject(event.SessionID), data); err != nil {
		return fmt.Errorf("再描画イベントの配信に失敗: %w", err)
	}
	return nil
}

// Close は未送信のメッセージを送ってから接続を閉じる
func (p *NATSRedrawPublisher) Close() {
	_ = p.conn.Drain()
}

// RedrawSubject はセッションごとのサブジェクト名を返す
func RedrawSubject(sessionID string) string {
	return RedrawSubjectPrefix + sessionID
}

// EncodeRedrawEvent はイベントをJSONに変換する
func EncodeRedrawEvent(event model.RedrawEvent) ([]byte, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("再描画イベントのJSONマーシャル失敗: %w", err)
	}
	return data, nil
}
