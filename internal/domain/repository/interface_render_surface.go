package repository

import (
	"context"

	"Navi-App/internal/domain/model"
)

// RenderSurface 再描画シグナルの送り先
type RenderSurface interface {
	Redraw(ctx context.Context, event model.RedrawEvent) error
}
