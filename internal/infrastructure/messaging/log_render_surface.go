package messaging

import (
	"context"

	"github.com/sirupsen/logrus"

	"Navi-App/internal/domain/model"
)

// LogRenderSurface はNATS未設定時に再描画要求をログに出すだけの描画面
type LogRenderSurface struct{}

func NewLogRenderSurface() *LogRenderSurface {
	return &LogRenderSurface{}
}

func (LogRenderSurface) Redraw(ctx context.Context, event model.RedrawEvent) error {
	logrus.WithFields(logrus.Fields{
		"session_id": event.SessionID,
		"generation": event.Generation,
		"reason":     event.Reason,
		"markers":    len(event.Overlays.Markers),
	}).Debug("🖼️ redraw")
	return nil
}
