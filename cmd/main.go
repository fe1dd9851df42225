package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"Navi-App/internal/config"
	"Navi-App/internal/domain/model"
	"Navi-App/internal/domain/repository"
	"Navi-App/internal/domain/service"
	"Navi-App/internal/handler"
	"Navi-App/internal/infrastructure/database"
	"Navi-App/internal/infrastructure/firestore"
	"Navi-App/internal/infrastructure/location"
	"Navi-App/internal/infrastructure/logger"
	"Navi-App/internal/infrastructure/maps"
	"Navi-App/internal/infrastructure/messaging"
	repoImpl "Navi-App/internal/repository"
	"Navi-App/internal/usecase"
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Println("Warning: .env file not found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("設定の読み込みに失敗: %v", err)
	}
	logger.Setup(cfg.Log.Level, cfg.Log.Format)
	gin.SetMode(cfg.Server.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 経路・ジオコーディングの外部サービス
	routingProvider := newRoutingProvider(cfg)
	geocoder := newGeocoder(cfg)

	// セッションの保存先（Firestore未設定ならメモリ）
	var sessions repository.SessionRepository
	if cfg.Firestore.Enabled() {
		fsClient, err := firestore.NewFirestoreClient(ctx, cfg.Firestore.ProjectID)
		if err != nil {
			logrus.Fatalf("Firestoreクライアント初期化失敗: %v", err)
		}
		defer fsClient.Close()
		sessions = repoImpl.NewFirestoreSessionRepository(fsClient.GetClient(), cfg.Firestore.SessionTTLHours)
	} else {
		logrus.Info("ℹ️ Firestore未設定のためセッションはメモリに保持します")
		sessions = repoImpl.NewMemorySessionRepository()
	}

	// ルート履歴（Supabase）
	var history repository.RouteHistoryRepository
	if cfg.Supabase.Enabled() {
		supabaseClient, err := database.NewSupabaseClient(cfg.Supabase.URL, cfg.Supabase.AnonKey)
		if err != nil {
			logrus.Fatalf("Supabaseクライアント初期化失敗: %v", err)
		}
		if err := supabaseClient.HealthCheck(); err != nil {
			logrus.Fatalf("Supabaseヘルスチェック失敗: %v", err)
		}
		history = repoImpl.NewSupabaseRouteHistoryRepository(supabaseClient)
	} else {
		logrus.Info("ℹ️ Supabase未設定のためルート履歴は保存しません")
	}

	// ジオコードキャッシュ（PostgreSQL）
	var geocodeCache repository.GeocodeCacheRepository
	if cfg.Postgres.Enabled() {
		pgClient, err := database.NewPostgreSQLClientWithRetry(cfg.Postgres.DSN, 3, 2*time.Second)
		if err != nil {
			logrus.Warnf("⚠️ PostgreSQLに接続できないためキャッシュを無効化: %v", err)
		} else if err := pgClient.HealthCheck(ctx); err != nil {
			logrus.Warnf("⚠️ PostgreSQLヘルスチェック失敗のためキャッシュを無効化: %v", err)
			pgClient.Close()
		} else {
			defer pgClient.Close()
			geocodeCache = repoImpl.NewPostgresGeocodeCacheRepository(pgClient)
		}
	}

	// 再描画の通知先（NATS未設定ならログ出力）
	var surface repository.RenderSurface = messaging.NewLogRenderSurface()
	if cfg.NATS.Enabled() {
		publisher, err := messaging.NewNATSRedrawPublisher(cfg.NATS.URL)
		if err != nil {
			logrus.Warnf("⚠️ NATSに接続できないためログ出力に切り替えます: %v", err)
		} else {
			defer publisher.Close()
			surface = publisher
		}
	}

	navigationUseCase := usecase.NewNavigationUseCase(usecase.NavigationDeps{
		Resolver:   service.NewDestinationResolver(geocoder, geocodeCache, cfg.Geocoding.Timeout()),
		Reconciler: service.NewOverlayReconciler(routingProvider, cfg.Routing.Timeout()),
		Location:   location.NewTracker(),
		Surface:    surface,
		Sessions:   sessions,
		History:    history,
	}, usecase.MapSettings{
		InitialCenter: model.Coordinate{Latitude: cfg.Map.InitialLatitude, Longitude: cfg.Map.InitialLongitude},
		InitialZoom:   cfg.Map.InitialZoom,
		RotationStep:  cfg.Map.RotationStep,
	})

	router := handler.NewRouter(handler.NewNavigationHandler(navigationUseCase))
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logrus.Infof("🚀 Navi-App server starting on %s...", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("サーバー起動失敗: %v", err)
		}
	}()

	<-ctx.Done()
	logrus.Info("🛑 シャットダウン中...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("シャットダウン失敗: %v", err)
	}
}

func newRoutingProvider(cfg *config.Config) repository.RoutingProvider {
	if cfg.Routing.Provider == "google" {
		logrus.Info("🗺️ 経路サービス: Google Directions")
		return maps.NewGoogleDirectionsProvider(cfg.Google.MapsAPIKey, cfg.Routing.Profile, cfg.Geocoding.Language)
	}
	logrus.Infof("🗺️ 経路サービス: OSRM (%s)", cfg.Routing.OSRMBaseURL)
	return maps.NewOSRMRoutingProvider(cfg.Routing.OSRMBaseURL, cfg.Routing.Profile)
}

func newGeocoder(cfg *config.Config) repository.GeocodingProvider {
	if cfg.Geocoding.Provider == "google" {
		logrus.Info("📍 ジオコーディング: Google Geocoding")
		return maps.NewGoogleGeocoder(cfg.Google.MapsAPIKey, cfg.Geocoding.Language)
	}
	logrus.Infof("📍 ジオコーディング: Nominatim (%s)", cfg.Geocoding.NominatimBaseURL)
	return maps.NewNominatimGeocoder(cfg.Geocoding.NominatimBaseURL, cfg.Geocoding.UserAgent, cfg.Geocoding.Language)
}
