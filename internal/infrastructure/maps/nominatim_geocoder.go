package maps

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"Navi-App/internal/domain/model"
)

// NominatimGeocoder はOpenStreetMap Nominatimを使用したジオコーディングの実装
type NominatimGeocoder struct {
	baseURL    string
	userAgent  string
	language   string
	httpClient *http.Client
}

// NewNominatimGeocoder は新しいジオコーダを生成する
func NewNominatimGeocoder(baseURL, userAgent, language string) *NominatimGeocoder {
	return &NominatimGeocoder{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  userAgent,
		language:   language,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Lookup は地名を検索し、最大maxResults件の候補を返す
func (n *NominatimGeocoder) Lookup(ctx context.Context, text string, maxResults int) ([]model.GeocodeResult, error) {
	params := url.Values{}
	params.Set("q", text)
	params.Set("format", "jsonv2")
	params.Set("limit", strconv.Itoa(maxResults))
	if n.language != "" {
		params.Set("accept-language", n.language)
	}
	reqURL := fmt.Sprintf("%s/search?%s", n.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("リクエストの作成に失敗: %w", err)
	}
	// Nominatimの利用規約でUser-Agentが必須
	req.Header.Set("User-Agent", n.userAgent)

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("APIリクエストに失敗: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("APIからエラーステータスが返されました: %s", resp.Status)
	}

	var places []nominatimPlace
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return nil, fmt.Errorf("JSONのパースに失敗: %w", err)
	}

	results := make([]model.GeocodeResult, 0, len(places))
	for _, p := range places {
		results = append(results, model.GeocodeResult{
			Location:    model.Coordinate{Latitude: p.Lat, Longitude: p.Lon},
			DisplayName: p.DisplayName,
		})
		if maxResults > 0 && len(results) == maxResults {
			break
		}
	}
	return results, nil
}

type nominatimPlace struct {
	Lat         float64 `json:"lat,string"`
	Lon         float64 `json:"lon,string"`
	DisplayName string  `json:"display_name"`
}
