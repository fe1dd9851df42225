package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config アプリケーション全体の設定
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Map       MapConfig       `mapstructure:"map"`
	Routing   RoutingConfig   `mapstructure:"routing"`
	Geocoding GeocodingConfig `mapstructure:"geocoding"`
	Google    GoogleConfig    `mapstructure:"google"`
	Firestore FirestoreConfig `mapstructure:"firestore"`
	Supabase  SupabaseConfig  `mapstructure:"supabase"`
	Postgres  PostgresConfig  `mapstructure:"postgres"`
	NATS      NATSConfig      `mapstructure:"nats"`
}

type ServerConfig struct {
	Port    int    `mapstructure:"port"`
	GinMode string `mapstructure:"gin_mode"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type MapConfig struct {
	InitialLatitude  float64 `mapstructure:"initial_latitude"`
	InitialLongitude float64 `mapstructure:"initial_longitude"`
	InitialZoom      float64 `mapstructure:"initial_zoom"`
	RotationStep     float64 `mapstructure:"rotation_step"`
}

type RoutingConfig struct {
	Provider       string `mapstructure:"provider"` // "osrm" or "google"
	OSRMBaseURL    string `mapstructure:"osrm_base_url"`
	Profile        string `mapstructure:"profile"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

func (r RoutingConfig) Timeout() time.Duration {
	return time.Duration(r.TimeoutSeconds) * time.Second
}

type GeocodingConfig struct {
	Provider         string `mapstructure:"provider"` // "nominatim" or "google"
	NominatimBaseURL string `mapstructure:"nominatim_base_url"`
	UserAgent        string `mapstructure:"user_agent"`
	Language         string `mapstructure:"language"`
	TimeoutSeconds   int    `mapstructure:"timeout_seconds"`
}

func (g GeocodingConfig) Timeout() time.Duration {
	return time.Duration(g.TimeoutSeconds) * time.Second
}

type GoogleConfig struct {
	MapsAPIKey string `mapstructure:"maps_api_key"`
}

type FirestoreConfig struct {
	ProjectID       string `mapstructure:"project_id"`
	SessionTTLHours int    `mapstructure:"session_ttl_hours"`
}

// Enabled はFirestoreを使うかどうか
func (f FirestoreConfig) Enabled() bool { return f.ProjectID != "" }

type SupabaseConfig struct {
	URL     string `mapstructure:"url"`
	AnonKey string `mapstructure:"anon_key"`
}

func (s SupabaseConfig) Enabled() bool { return s.URL != "" && s.AnonKey != "" }

type PostgresConfig struct {
	DSN string `mapstructure:"dsn"`
}

func (p PostgresConfig) Enabled() bool { return p.DSN != "" }

type NATSConfig struct {
	URL string `mapstructure:"url"`
}

func (n NATSConfig) Enabled() bool { return n.URL != "" }

// Load は設定ファイルと環境変数から設定を読み込む
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.gin_mode", "release")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("map.initial_latitude", 49.12)
	v.SetDefault("map.initial_longitude", 9.21)
	v.SetDefault("map.initial_zoom", 18)
	v.SetDefault("map.rotation_step", 90)
	v.SetDefault("routing.provider", "osrm")
	v.SetDefault("routing.osrm_base_url", "https://router.project-osrm.org")
	v.SetDefault("routing.profile", "driving")
	v.SetDefault("routing.timeout_seconds", 10)
	v.SetDefault("geocoding.provider", "nominatim")
	v.SetDefault("geocoding.nominatim_base_url", "https://nominatim.openstreetmap.org")
	v.SetDefault("geocoding.user_agent", "Navi-App/1.0")
	v.SetDefault("geocoding.language", "en")
	v.SetDefault("geocoding.timeout_seconds", 10)
	v.SetDefault("google.maps_api_key", "")
	v.SetDefault("firestore.project_id", "")
	v.SetDefault("firestore.session_ttl_hours", 24)
	v.SetDefault("supabase.url", "")
	v.SetDefault("supabase.anon_key", "")
	v.SetDefault("postgres.dsn", "")
	v.SetDefault("nats.url", "")

	// 設定ファイルは任意
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig()

	// NAVI_ROUTING_PROVIDER → routing.provider
	v.SetEnvPrefix("NAVI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 既存の環境変数名もそのまま使えるようにする
	legacy := map[string]string{
		"server.port":          "PORT",
		"google.maps_api_key":  "GOOGLE_MAPS_API_KEY",
		"firestore.project_id": "GOOGLE_CLOUD_PROJECT",
		"supabase.url":         "SUPABASE_URL",
		"supabase.anon_key":    "SUPABASE_ANON_KEY",
		"postgres.dsn":         "DATABASE_URL",
		"nats.url":             "NATS_URL",
	}
	for key, env := range legacy {
		if err := v.BindEnv(key, "NAVI_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", env, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate は必須項目と値の範囲をまとめて確認する
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Map.InitialLatitude < -90 || c.Map.InitialLatitude > 90 {
		errs = append(errs, "map.initial_latitude must be within [-90, 90]")
	}
	if c.Map.InitialLongitude < -180 || c.Map.InitialLongitude > 180 {
		errs = append(errs, "map.initial_longitude must be within [-180, 180]")
	}
	if c.Map.InitialZoom <= 0 {
		errs = append(errs, "map.initial_zoom must be positive")
	}

	switch c.Routing.Provider {
	case "osrm":
		if c.Routing.OSRMBaseURL == "" {
			errs = append(errs, "routing.osrm_base_url is required for the osrm provider")
		}
	case "google":
		if c.Google.MapsAPIKey == "" {
			errs = append(errs, "google.maps_api_key is required for the google routing provider")
		}
	default:
		errs = append(errs, fmt.Sprintf("routing.provider must be osrm or google, got %q", c.Routing.Provider))
	}
	if c.Routing.TimeoutSeconds <= 0 {
		errs = append(errs, "routing.timeout_seconds must be positive")
	}

	switch c.Geocoding.Provider {
	case "nominatim":
		if c.Geocoding.NominatimBaseURL == "" {
			errs = append(errs, "geocoding.nominatim_base_url is required for the nominatim provider")
		}
	case "google":
		if c.Google.MapsAPIKey == "" {
			errs = append(errs, "google.maps_api_key is required for the google geocoding provider")
		}
	default:
		errs = append(errs, fmt.Sprintf("geocoding.provider must be nominatim or google, got %q", c.Geocoding.Provider))
	}
	if c.Geocoding.TimeoutSeconds <= 0 {
		errs = append(errs, "geocoding.timeout_seconds must be positive")
	}

	if c.Firestore.Enabled() && c.Firestore.SessionTTLHours <= 0 {
		errs = append(errs, "firestore.session_ttl_hours must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
