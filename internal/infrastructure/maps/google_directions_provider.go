package maps

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/twpayne/go-polyline"

	"Navi-App/internal/domain/model"
)

const googleDirectionsURL = "https://maps.googleapis.com/maps/api/directions/json"

// GoogleDirectionsProvider はGoogle Maps Directions APIを使用した経路検索の実装
type GoogleDirectionsProvider struct {
	apiKey     string
	mode       string
	language   string
	baseURL    string
	httpClient *http.Client
}

// NewGoogleDirectionsProvider は新しいプロバイダを生成する
func NewGoogleDirectionsProvider(apiKey, mode, language string) *GoogleDirectionsProvider {
	if mode == "" {
		mode = "driving"
	}
	return &GoogleDirectionsProvider{
		apiKey:     apiKey,
		mode:       mode,
		language:   language,
		baseURL:    googleDirectionsURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// GetRoute はDirections APIを呼び出し、各ステップの開始地点をノードとするルートを返す
func (g *GoogleDirectionsProvider) GetRoute(ctx context.Context, waypoints []model.Coordinate) (*model.Route, error) {
	// 1. APIリクエストURLを構築
	reqURL, err := g.buildURL(waypoints)
	if err != nil {
		return nil, fmt.Errorf("URLの構築に失敗: %w", err)
	}

	// 2. HTTPリクエストを作成・実行
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
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

	// 3. JSONレスポンスをパース
	var apiResp googleRouteResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("JSONのパースに失敗: %w", err)
	}

	switch apiResp.Status {
	case "OK":
	case "ZERO_RESULTS", "NOT_FOUND":
		return nil, nil
	default:
		return nil, fmt.Errorf("Directions APIエラー: %s %s", apiResp.Status, apiResp.ErrorMessage)
	}
	if len(apiResp.Routes) == 0 {
		return nil, nil
	}

	// 4. ドメインモデルに変換して返す
	return toDomainRoute(apiResp.Routes[0])
}

func (g *GoogleDirectionsProvider) buildURL(waypoints []model.Coordinate) (string, error) {
	if len(waypoints) < 2 {
		return "", fmt.Errorf("ウェイポイントは2点以上必要です: %d", len(waypoints))
	}
	params := url.Values{}
	params.Set("origin", waypoints[0].String())
	// 最後の地点がdestinationになる
	params.Set("destination", waypoints[len(waypoints)-1].String())

	// 経由地を設定
	if len(waypoints) > 2 {
		viaPoints := make([]string, 0, len(waypoints)-2)
		for _, wp := range waypoints[1 : len(waypoints)-1] {
			viaPoints = append(viaPoints, wp.String())
		}
		params.Set("waypoints", strings.Join(viaPoints, "|"))
	}

	params.Set("mode", g.mode)
	if g.language != "" {
		params.Set("language", g.language)
	}
	params.Set("key", g.apiKey)

	return fmt.Sprintf("%s?%s", g.baseURL, params.Encode()), nil
}

func toDomainRoute(r route) (*model.Route, error) {
	result := &model.Route{}
	var last *latLng
	for _, l := range r.Legs {
		result.DistanceMeters += float64(l.Distance.Value)
		result.DurationSeconds += float64(l.Duration.Value)
		for _, s := range l.Steps {
			node := model.RouteNode{Location: s.StartLocation.toCoordinate()}
			if text := plainInstruction(s.HTMLInstructions); text != "" {
				node.Instruction = &text
			}
			result.Nodes = append(result.Nodes, node)
			end := s.EndLocation
			last = &end
		}
	}
	if last == nil {
		return result, nil
	}
	// 到着地点（案内マーカーは付かない）
	result.Nodes = append(result.Nodes, model.RouteNode{Location: last.toCoordinate()})

	if r.OverviewPolyline.Points != "" {
		coords, _, err := polyline.DecodeCoords([]byte(r.OverviewPolyline.Points))
		if err != nil {
			return nil, fmt.Errorf("ポリラインのデコードに失敗: %w", err)
		}
		result.Geometry = make([]model.Coordinate, len(coords))
		for i, c := range coords {
			result.Geometry[i] = model.Coordinate{Latitude: c[0], Longitude: c[1]}
		}
	}
	return result, nil
}

var htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

// plainInstruction はhtml_instructionsからタグを除去する
func plainInstruction(s string) string {
	text := htmlTagPattern.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(html.UnescapeString(text)), " ")
}

// --- Google Maps APIのレスポンスをパースするための構造体 ---

type googleRouteResponse struct {
	Routes       []route `json:"routes"`
	Status       string  `json:"status"`
	ErrorMessage string  `json:"error_message,omitempty"`
}
type route struct {
	Legs             []leg            `json:"legs"`
	OverviewPolyline overviewPolyline `json:"overview_polyline"`
}
type leg struct {
	Distance textValue `json:"distance"`
	Duration textValue `json:"duration"`
	Steps    []step    `json:"steps"`
}
type step struct {
	StartLocation    latLng `json:"start_location"`
	EndLocation      latLng `json:"end_location"`
	HTMLInstructions string `json:"html_instructions"`
	Maneuver         string `json:"maneuver,omitempty"`
}
type textValue struct {
	Value int `json:"value"` // meters or seconds
}
type latLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (l latLng) toCoordinate() model.Coordinate {
	return model.Coordinate{Latitude: l.Lat, Longitude: l.Lng}
}

type overviewPolyline struct {
	Points string `json:"points"`
}
