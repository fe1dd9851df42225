package database

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/supabase-community/supabase-go"
)

// SupabaseClient Supabaseクライアントのラッパー
type SupabaseClient struct {
	Client *supabase.Client
	url    string
}

// NewSupabaseClient 新しいSupabaseクライアントを作成
func NewSupabaseClient(url, anonKey string) (*SupabaseClient, error) {
	if url == "" {
		return nil, fmt.Errorf("SupabaseのURLが設定されていません")
	}
	if anonKey == "" {
		return nil, fmt.Errorf("SupabaseのAnonキーが設定されていません")
	}

	client, err := supabase.NewClient(url, anonKey, &supabase.ClientOptions{})
	if err != nil {
		return nil, fmt.Errorf("Supabaseクライアントの初期化に失敗: %w", err)
	}

	return &SupabaseClient{
		Client: client,
		url:    url,
	}, nil
}

// GetClient Supabaseクライアントを取得
func (sc *SupabaseClient) GetClient() *supabase.Client {
	return sc.Client
}

// HealthCheck クライアントが初期化済みかを確認する
func (sc *SupabaseClient) HealthCheck() error {
	if sc.Client == nil {
		return fmt.Errorf("Supabaseクライアントが初期化されていません")
	}
	logrus.Infof("✅ Supabase client initialized with URL: %s", sc.url)
	return nil
}
