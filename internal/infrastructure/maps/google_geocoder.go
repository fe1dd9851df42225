package maps

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"Navi-App/internal/domain/model"
)

const googleGeocodeURL = "https://maps.googleapis.com/maps/api/geocode/json"

// GoogleGeocoder はGoogle Geocoding APIを使用したジオコーディングの実装
type GoogleGeocoder struct {
	apiKey     string
	language   string
	baseURL    string
	httpClient *http.Client
}

// NewGoogleGeocoder は新しいジオコーダを生成する
func NewGoogleGeocoder(apiKey, language string) *GoogleGeocoder {
	return &GoogleGeocoder{
		apiKey:     apiKey,
		language:   language,
		baseURL:    googleGeocodeURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Lookup は住所・地名を検索し、最大maxResults件の候補を返す
func (g *GoogleGeocoder) Lookup(ctx context.Context, text string, maxResults int) ([]model.GeocodeResult, error) {
	params := url.Values{}
	params.Set("address", text)
	if g.language != "" {
		params.Set("language", g.language)
	}
	params.Set("key", g.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s?%s", g.baseURL, params.Encode()), nil)
	if err != nil {
		return nil, fmt.Errorf("リクエストの作成に失敗: %w", err)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("APIリクエストに失敗: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("APIからエラーステータスが返されました: %s", resp.Status)
	}

	var apiResp googleGeocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("JSONのパースに失敗: %w", err)
	}

	switch apiResp.Status {
	case "OK":
	case "ZERO_RESULTS":
		return []model.GeocodeResult{}, nil
	default:
		return nil, fmt.Errorf("Geocoding APIエラー: %s %s", apiResp.Status, apiResp.ErrorMessage)
	}

	results := make([]model.GeocodeResult, 0, len(apiResp.Results))
	for _, r := range apiResp.Results {
		results = append(results, model.GeocodeResult{
			Location:    r.Geometry.Location.toCoordinate(),
			DisplayName: r.FormattedAddress,
		})
		if maxResults > 0 && len(results) == maxResults {
			break
		}
	}
	return results, nil
}

type googleGeocodeResponse struct {
	Results []struct {
		FormattedAddress string `json:"formatted_address"`
		Geometry         struct {
			Location latLng `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message,omitempty"`
}
