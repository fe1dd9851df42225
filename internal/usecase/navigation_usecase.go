package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb/geojson"
	"github.com/sirupsen/logrus"

	"Navi-App/internal/domain/model"
	"Navi-App/internal/domain/repository"
	"Navi-App/internal/domain/service"
	"Navi-App/internal/infrastructure/metrics"
)

// 再描画の理由
const (
	RedrawReasonCreated  = "created"
	RedrawReasonLocation = "location"
	RedrawReasonTracking = "tracking"
	RedrawReasonSearch   = "search"
	RedrawReasonCenter   = "center"
	RedrawReasonTarget   = "target"
	RedrawReasonRoute    = "route"
	RedrawReasonRotate   = "rotate"
)

type NavigationUseCase interface {
	// CreateSession は初期状態の地図セッションを作成する
	CreateSession(ctx context.Context) (*model.MapSession, error)

	// GetSession はセッションの現在状態を返す
	GetSession(ctx context.Context, sessionID string) (*model.MapSession, error)

	DeleteSession(ctx context.Context, sessionID string) error

	// UpdateLocation は端末から届いた現在地を反映する
	UpdateLocation(ctx context.Context, sessionID string, fix model.Coordinate) (*model.MapSession, error)

	// SetTracking は位置情報の取得を切り替える。停止すると追従モードも解除される
	SetTracking(ctx context.Context, sessionID string, enabled bool) (*model.MapSession, error)

	// Search は目的地を検索し、地図の中心をそこへ移動する
	Search(ctx context.Context, sessionID, query string) (*model.SearchResponse, error)

	// Center は追従モードを有効にし、現在地へ中心を戻す
	Center(ctx context.Context, sessionID string) (*model.MapSession, error)

	// StartRoute は目的地を解決し、現在地からのルートを描画する
	StartRoute(ctx context.Context, sessionID, query string) (*model.RouteResponse, error)

	// Rotate は地図を回転させる。degreesがnilなら既定の角度
	Rotate(ctx context.Context, sessionID string, degrees *float64) (*model.MapSession, error)

	// Overlays はオーバーレイをGeoJSONとして返す
	Overlays(ctx context.Context, sessionID string) (*geojson.FeatureCollection, error)

	// History はセッションで描画したルートの履歴を返す
	History(ctx context.Context, sessionID string) (*model.RouteHistoryResponse, error)
}

// MapSettings 新規セッションの初期表示
type MapSettings struct {
	InitialCenter model.Coordinate
	InitialZoom   float64
	RotationStep  float64
}

// DefaultMapSettings は既定の初期表示を返す
func DefaultMapSettings() MapSettings {
	return MapSettings{
		InitialCenter: model.DefaultCenter,
		InitialZoom:   model.DefaultZoom,
		RotationStep:  model.DefaultRotationStep,
	}
}

// NavigationDeps ユースケースが利用する部品
type NavigationDeps struct {
	Resolver   *service.DestinationResolver
	Reconciler *service.OverlayReconciler
	Location   repository.LocationProvider
	Surface    repository.RenderSurface
	Sessions   repository.SessionRepository
	History    repository.RouteHistoryRepository // nil可
}

// sessionEntry メモリ上のセッション。mu を持つgoroutineだけが session を書き換える
type sessionEntry struct {
	mu      sync.Mutex
	session *model.MapSession
	deleted bool // 削除済み。以後の変更は反映しない
}

func (e *sessionEntry) snapshot() *model.MapSession {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session.Clone()
}

// navigationUseCaseImpl はNavigationUseCaseの実装
type navigationUseCaseImpl struct {
	resolver    *service.DestinationResolver
	reconciler  *service.OverlayReconciler
	location    repository.LocationProvider
	surface     repository.RenderSurface
	sessions    repository.SessionRepository
	history     repository.RouteHistoryRepository
	generations *service.GenerationTracker
	settings    MapSettings

	mu      sync.Mutex
	entries map[string]*sessionEntry
}

// NewNavigationUseCase は新しいNavigationUseCaseインスタンスを作成
func NewNavigationUseCase(deps NavigationDeps, settings MapSettings) NavigationUseCase {
	if settings.InitialZoom <= 0 {
		settings.InitialZoom = model.DefaultZoom
	}
	if settings.RotationStep == 0 {
		settings.RotationStep = model.DefaultRotationStep
	}
	return &navigationUseCaseImpl{
		resolver:    deps.Resolver,
		reconciler:  deps.Reconciler,
		location:    deps.Location,
		surface:     deps.Surface,
		sessions:    deps.Sessions,
		history:     deps.History,
		generations: service.NewGenerationTracker(),
		settings:    settings,
		entries:     make(map[string]*sessionEntry),
	}
}

func (u *navigationUseCaseImpl) CreateSession(ctx context.Context) (session *model.MapSession, err error) {
	defer func() { metrics.ObserveCommand("create_session", err) }()

	s := model.NewMapSession(uuid.New().String(), model.NewMapView(u.settings.InitialCenter, u.settings.InitialZoom))
	u.location.Enable(s.ID)

	entry := &sessionEntry{session: s}
	u.mu.Lock()
	u.entries[s.ID] = entry
	u.mu.Unlock()
	metrics.ActiveSessions.Inc()

	entry.mu.Lock()
	defer entry.mu.Unlock()
	u.persist(ctx, s)
	u.redraw(ctx, s, RedrawReasonCreated)

	logrus.Infof("🆕 セッション作成: %s", s.ID)
	return s.Clone(), nil
}

func (u *navigationUseCaseImpl) GetSession(ctx context.Context, sessionID string) (*model.MapSession, error) {
	entry, err := u.entry(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return entry.snapshot(), nil
}

func (u *navigationUseCaseImpl) DeleteSession(ctx context.Context, sessionID string) (err error) {
	defer func() { metrics.ObserveCommand("delete_session", err) }()

	entry, err := u.entry(ctx, sessionID)
	if err != nil {
		return err
	}

	// 実行中のcommitが終わるのを待ってから削除済みにする
	entry.mu.Lock()
	entry.deleted = true
	entry.mu.Unlock()

	u.mu.Lock()
	if current, ok := u.entries[sessionID]; ok && current == entry {
		delete(u.entries, sessionID)
		metrics.ActiveSessions.Dec()
	}
	u.mu.Unlock()

	u.generations.Forget(sessionID)
	u.location.Forget(sessionID)
	if err := u.sessions.Delete(ctx, sessionID); err != nil {
		logrus.Warnf("⚠️ セッション %s の削除に失敗: %v", sessionID, err)
	}

	logrus.Infof("🗑️ セッション削除: %s", sessionID)
	return nil
}

func (u *navigationUseCaseImpl) UpdateLocation(ctx context.Context, sessionID string, fix model.Coordinate) (session *model.MapSession, err error) {
	defer func() { metrics.ObserveCommand("update_location", err) }()

	if err := fix.Validate(); err != nil {
		return nil, err
	}
	entry, err := u.entry(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	return u.commit(ctx, sessionID, entry, 0, RedrawReasonLocation, func(s *model.MapSession) error {
		if err := u.location.Update(sessionID, fix); err != nil {
			return err
		}
		s.Overlays.PositionMarker = &model.PositionMarker{Position: fix.Ptr()}
		if s.View.Following {
			s.View.Center = fix
		}
		return nil
	})
}

func (u *navigationUseCaseImpl) SetTracking(ctx context.Context, sessionID string, enabled bool) (session *model.MapSession, err error) {
	defer func() { metrics.ObserveCommand("set_tracking", err) }()

	entry, err := u.entry(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	return u.commit(ctx, sessionID, entry, 0, RedrawReasonTracking, func(s *model.MapSession) error {
		s.TrackingEnabled = enabled
		if enabled {
			u.location.Enable(sessionID)
			return nil
		}
		u.location.Disable(sessionID)
		s.View.Following = false
		return nil
	})
}

func (u *navigationUseCaseImpl) Search(ctx context.Context, sessionID, query string) (resp *model.SearchResponse, err error) {
	defer func() { metrics.ObserveCommand("search", err) }()

	if strings.TrimSpace(query) == "" {
		return nil, model.ErrEmptyInput
	}
	entry, err := u.entry(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	reqCtx, generation, done := u.generations.Begin(ctx, sessionID)
	defer done()

	target, err := u.resolve(reqCtx, sessionID, generation, query)
	if err != nil {
		return nil, err
	}

	session, err := u.commit(reqCtx, sessionID, entry, generation, RedrawReasonSearch, func(s *model.MapSession) error {
		s.Target = target.Ptr()
		s.View.MoveTo(target)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &model.SearchResponse{Target: target, Session: session}, nil
}

func (u *navigationUseCaseImpl) Center(ctx context.Context, sessionID string) (session *model.MapSession, err error) {
	defer func() { metrics.ObserveCommand("center", err) }()

	entry, err := u.entry(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	return u.commit(ctx, sessionID, entry, 0, RedrawReasonCenter, func(s *model.MapSession) error {
		s.View.Following = true
		if current, ok := u.location.CurrentLocation(sessionID); ok {
			s.View.Center = current
		}
		return nil
	})
}

func (u *navigationUseCaseImpl) StartRoute(ctx context.Context, sessionID, query string) (resp *model.RouteResponse, err error) {
	defer func() { metrics.ObserveCommand("start_route", err) }()

	if strings.TrimSpace(query) == "" {
		return nil, model.ErrEmptyInput
	}
	entry, err := u.entry(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	// 現在地が無ければジオコーディングも行わない
	if _, ok := u.location.CurrentLocation(sessionID); !ok {
		return nil, model.ErrMissingCurrentLocation
	}

	reqCtx, generation, done := u.generations.Begin(ctx, sessionID)
	defer done()

	// Step 1: 目的地を解決してカメラを移動
	target, err := u.resolve(reqCtx, sessionID, generation, query)
	if err != nil {
		return nil, err
	}
	if _, err := u.commit(reqCtx, sessionID, entry, generation, RedrawReasonTarget, func(s *model.MapSession) error {
		s.Target = target.Ptr()
		s.View.MoveTo(target)
		return nil
	}); err != nil {
		return nil, err
	}

	// Step 2: 経路を取得してオーバーレイを構築（ロックは保持しない）
	var current *model.Coordinate
	if c, ok := u.location.CurrentLocation(sessionID); ok {
		current = c.Ptr()
	}
	start := time.Now()
	next, route, err := u.reconciler.RenderRoute(reqCtx, current, target, entry.snapshot().Overlays)
	metrics.ObserveUpstream("routing", start)
	if err != nil {
		if !u.generations.IsCurrent(sessionID, generation) {
			return nil, model.ErrRequestSuperseded
		}
		return nil, err
	}

	// Step 3: ルート線とマーカーのスロットだけを置き換える
	session, err := u.commit(reqCtx, sessionID, entry, generation, RedrawReasonRoute, func(s *model.MapSession) error {
		merged := s.Overlays.WithRoute(next.Route, next.Markers)
		if merged.PositionMarker == nil {
			merged.PositionMarker = next.PositionMarker
		}
		if merged.ScaleBar == nil {
			merged.ScaleBar = next.ScaleBar
		}
		s.Overlays = merged
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Step 4: 履歴を保存（失敗してもユーザー操作は成功扱い）
	u.recordHistory(context.WithoutCancel(reqCtx), sessionID, query, *current, target, route)

	return &model.RouteResponse{
		Target:          target,
		StepCount:       len(session.Overlays.Markers),
		DistanceMeters:  route.DistanceMeters,
		DurationSeconds: route.DurationSeconds,
		Session:         session,
	}, nil
}

func (u *navigationUseCaseImpl) Rotate(ctx context.Context, sessionID string, degrees *float64) (session *model.MapSession, err error) {
	defer func() { metrics.ObserveCommand("rotate", err) }()

	entry, err := u.entry(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	step := u.settings.RotationStep
	if degrees != nil {
		step = *degrees
	}

	return u.commit(ctx, sessionID, entry, 0, RedrawReasonRotate, func(s *model.MapSession) error {
		s.View.Rotate(step)
		return nil
	})
}

func (u *navigationUseCaseImpl) Overlays(ctx context.Context, sessionID string) (*geojson.FeatureCollection, error) {
	entry, err := u.entry(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return entry.snapshot().Overlays.ToFeatureCollection(), nil
}

func (u *navigationUseCaseImpl) History(ctx context.Context, sessionID string) (*model.RouteHistoryResponse, error) {
	if _, err := u.entry(ctx, sessionID); err != nil {
		return nil, err
	}
	if u.history == nil {
		return &model.RouteHistoryResponse{Routes: []model.RouteRecord{}}, nil
	}

	records, err := u.history.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("ルート履歴の取得に失敗: %w", err)
	}
	if records == nil {
		records = []model.RouteRecord{}
	}
	return &model.RouteHistoryResponse{Routes: records}, nil
}

// entry はメモリ上のセッションを返す。無ければ保存先から復元する
func (u *navigationUseCaseImpl) entry(ctx context.Context, sessionID string) (*sessionEntry, error) {
	u.mu.Lock()
	entry, ok := u.entries[sessionID]
	u.mu.Unlock()
	if ok {
		return entry, nil
	}

	stored, err := u.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, model.ErrSessionNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", model.ErrSessionNotFound, err)
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	// 復元中に別のリクエストが登録していればそちらを使う
	if entry, ok := u.entries[sessionID]; ok {
		return entry, nil
	}
	if stored.TrackingEnabled {
		u.location.Enable(sessionID)
		if pos := stored.CurrentPosition(); pos != nil {
			if err := u.location.Update(sessionID, *pos); err != nil {
				logrus.Warnf("⚠️ セッション %s の現在地を復元できません: %v", sessionID, err)
			}
		}
	} else {
		u.location.Disable(sessionID)
	}
	entry = &sessionEntry{session: stored}
	u.entries[sessionID] = entry
	metrics.ActiveSessions.Inc()

	logrus.Infof("♻️ セッションを復元: %s", sessionID)
	return entry, nil
}

// resolve は目的地を解決する。待っている間に新しい世代が始まっていれば破棄する
func (u *navigationUseCaseImpl) resolve(ctx context.Context, sessionID string, generation uint64, query string) (model.Coordinate, error) {
	start := time.Now()
	target, err := u.resolver.Resolve(ctx, query)
	metrics.ObserveUpstream("geocoding", start)
	if err != nil {
		if !u.generations.IsCurrent(sessionID, generation) {
			return model.Coordinate{}, model.ErrRequestSuperseded
		}
		return model.Coordinate{}, err
	}
	return target, nil
}

// commit はセッションのロックを取り、世代が最新の場合だけ変更を反映して再描画する。
// generation が0なら世代を確認しない。mutate が失敗した場合セッションは変更されない
func (u *navigationUseCaseImpl) commit(ctx context.Context, sessionID string, entry *sessionEntry, generation uint64, reason string, mutate func(*model.MapSession) error) (*model.MapSession, error) {
	entry.mu.Lock()
	defer entry.mu.Unlock()

	if entry.deleted {
		return nil, fmt.Errorf("%w: %s", model.ErrSessionNotFound, sessionID)
	}
	if generation != 0 && !u.generations.IsCurrent(sessionID, generation) {
		logrus.WithFields(logrus.Fields{
			"session":    sessionID,
			"generation": generation,
			"current":    u.generations.Current(sessionID),
		}).Info("⏭️ 古いリクエストの結果を破棄")
		return nil, model.ErrRequestSuperseded
	}

	next := entry.session.Clone()
	if err := mutate(next); err != nil {
		return nil, err
	}
	if generation != 0 {
		next.Generation = generation
	}
	next.UpdatedAt = time.Now()
	entry.session = next

	sideCtx := context.WithoutCancel(ctx)
	u.persist(sideCtx, next)
	u.redraw(sideCtx, next, reason)
	return next.Clone(), nil
}

func (u *navigationUseCaseImpl) persist(ctx context.Context, s *model.MapSession) {
	if err := u.sessions.Save(ctx, s); err != nil {
		logrus.Warnf("⚠️ セッション %s の保存に失敗: %v", s.ID, err)
	}
}

func (u *navigationUseCaseImpl) redraw(ctx context.Context, s *model.MapSession, reason string) {
	if u.surface == nil {
		return
	}
	if err := u.surface.Redraw(ctx, model.NewRedrawEvent(s, reason)); err != nil {
		logrus.Warnf("⚠️ 再描画の通知に失敗 (session=%s, reason=%s): %v", s.ID, reason, err)
	}
}

func (u *navigationUseCaseImpl) recordHistory(ctx context.Context, sessionID, query string, origin, destination model.Coordinate, route *model.Route) {
	if u.history == nil || route == nil {
		return
	}
	record := &model.RouteRecord{
		ID:              uuid.New().String(),
		SessionID:       sessionID,
		Query:           strings.TrimSpace(query),
		Origin:          origin,
		Destination:     destination,
		NodeCount:       len(route.Nodes),
		DistanceMeters:  route.DistanceMeters,
		DurationSeconds: route.DurationSeconds,
		Path:            route.PathPoints(),
		CreatedAt:       time.Now(),
	}
	if err := u.history.Create(ctx, record); err != nil {
		logrus.Warnf("⚠️ ルート履歴の保存に失敗: %v", err)
	}
}
