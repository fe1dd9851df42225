package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"Navi-App/internal/domain/model"
	"Navi-App/internal/domain/repository"
)

// OverlayReconciler はルートを取得してオーバーレイ集合を組み替える
type OverlayReconciler struct {
	routingProvider repository.RoutingProvider
	timeout         time.Duration
}

// NewOverlayReconciler は新しいOverlayReconcilerを生成する
func NewOverlayReconciler(routingProvider repository.RoutingProvider, timeout time.Duration) *OverlayReconciler {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &OverlayReconciler{
		routingProvider: routingProvider,
		timeout:         timeout,
	}
}

// RenderRoute は現在地から目的地までのルートを取得し、ルート線と案内マーカーを
// 置き換えた新しいオーバーレイ集合を返す。
// エラー時は渡されたoverlaysをそのまま返す。
func (r *OverlayReconciler) RenderRoute(ctx context.Context, current *model.Coordinate, target model.Coordinate, overlays model.OverlaySet) (model.OverlaySet, *model.Route, error) {
	if current == nil {
		return overlays, nil, model.ErrMissingCurrentLocation
	}

	// 1. ウェイポイントを構築
	waypoints := model.NewWaypoints(*current, target)

	// 2. 経路サービスを呼び出し
	routeCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	route, err := r.routingProvider.GetRoute(routeCtx, waypoints)
	if err != nil {
		logrus.WithFields(logrus.Fields{"from": current.String(), "to": target.String()}).
			Warnf("⚠️ 経路サービスの呼び出しに失敗: %v", err)
		return overlays, nil, fmt.Errorf("%w: %v", model.ErrRoutingServiceUnavailable, err)
	}

	// 3. ルートが確定するまで既存のオーバーレイには触らない
	if route.IsEmpty() {
		logrus.WithFields(logrus.Fields{"from": current.String(), "to": target.String()}).
			Info("🚫 ルートが見つかりませんでした")
		return overlays, nil, model.ErrNoRouteFound
	}

	// 4. ルート線と案内マーカーのスロットを丸ごと置き換え
	path := &model.RoutePath{
		Points: route.PathPoints(),
		Width:  model.DefaultRouteWidth,
		Color:  model.DefaultRouteColor,
	}
	next := overlays.WithRoute(path, BuildInstructionMarkers(route))

	// 5. 常設オーバーレイを復元
	if next.PositionMarker == nil {
		next.PositionMarker = &model.PositionMarker{Position: current.Ptr()}
	}
	if next.ScaleBar == nil {
		next.ScaleBar = &model.ScaleBar{Visible: true}
	}

	logrus.Infof("🗺️ ルート描画: %dノード, マーカー%d件", len(route.Nodes), len(next.Markers))
	return next, route, nil
}

// BuildInstructionMarkers は最終ノードを除く各ノードに案内マーカーを作る
func BuildInstructionMarkers(route *model.Route) []model.InstructionMarker {
	if route.IsEmpty() {
		return []model.InstructionMarker{}
	}
	markers := make([]model.InstructionMarker, 0, len(route.Nodes)-1)
	for i, node := range route.Nodes[:len(route.Nodes)-1] {
		markers = append(markers, model.NewInstructionMarker(i+1, node))
	}
	return markers
}
