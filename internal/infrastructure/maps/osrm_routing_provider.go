package maps

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"Navi-App/internal/domain/model"
)

// OSRMRoutingProvider はOSRM HTTP APIを使用した経路検索の実装
type OSRMRoutingProvider struct {
	baseURL    string
	profile    string
	httpClient *http.Client
}

// NewOSRMRoutingProvider は新しいプロバイダを生成する
func NewOSRMRoutingProvider(baseURL, profile string) *OSRMRoutingProvider {
	if profile == "" {
		profile = "driving"
	}
	return &OSRMRoutingProvider{
		baseURL:    strings.TrimRight(baseURL, "/"),
		profile:    profile,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// GetRoute はOSRMのrouteサービスを呼び出し、各マニューバ地点をノードとするルートを返す
func (o *OSRMRoutingProvider) GetRoute(ctx context.Context, waypoints []model.Coordinate) (*model.Route, error) {
	reqURL, err := o.buildURL(waypoints)
	if err != nil {
		return nil, fmt.Errorf("URLの構築に失敗: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("リクエストの作成に失敗: %w", err)
	}

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("APIリクエストに失敗: %w", err)
	}
	defer resp.Body.Close()

	// OSRMはエラー時も400でJSONを返す
	var apiResp osrmRouteResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("APIからエラーステータスが返されました: %s", resp.Status)
		}
		return nil, fmt.Errorf("JSONのパースに失敗: %w", err)
	}

	switch apiResp.Code {
	case "Ok":
	case "NoRoute", "NoSegment":
		return nil, nil
	default:
		return nil, fmt.Errorf("OSRMエラー: %s (%s) %s", apiResp.Code, resp.Status, apiResp.Message)
	}
	if len(apiResp.Routes) == 0 {
		return nil, nil
	}

	return apiResp.Routes[0].toDomainRoute()
}

func (o *OSRMRoutingProvider) buildURL(waypoints []model.Coordinate) (string, error) {
	if len(waypoints) < 2 {
		return "", fmt.Errorf("ウェイポイントは2点以上必要です: %d", len(waypoints))
	}
	coords := make([]string, len(waypoints))
	for i, wp := range waypoints {
		// OSRMは lng,lat の順
		coords[i] = fmt.Sprintf("%f,%f", wp.Longitude, wp.Latitude)
	}

	params := url.Values{}
	params.Set("overview", "full")
	params.Set("geometries", "geojson")
	params.Set("steps", "true")

	return fmt.Sprintf("%s/route/v1/%s/%s?%s", o.baseURL, url.PathEscape(o.profile), strings.Join(coords, ";"), params.Encode()), nil
}

// --- OSRM APIのレスポンスをパースするための構造体 ---

type osrmRouteResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message,omitempty"`
	Routes  []osrmRoute `json:"routes"`
}

type osrmRoute struct {
	Distance float64           `json:"distance"`
	Duration float64           `json:"duration"`
	Geometry *geojson.Geometry `json:"geometry"`
	Legs     []osrmLeg         `json:"legs"`
}

type osrmLeg struct {
	Steps []osrmStep `json:"steps"`
}

type osrmStep struct {
	Name     string       `json:"name"`
	Maneuver osrmManeuver `json:"maneuver"`
}

type osrmManeuver struct {
	Location []float64 `json:"location"` // [lng, lat]
	Type     string    `json:"type"`
	Modifier string    `json:"modifier,omitempty"`
	Exit     int       `json:"exit,omitempty"`
}

func (r osrmRoute) toDomainRoute() (*model.Route, error) {
	result := &model.Route{
		DistanceMeters:  r.Distance,
		DurationSeconds: r.Duration,
	}

	for li, l := range r.Legs {
		for _, s := range l.Steps {
			if len(s.Maneuver.Location) < 2 {
				return nil, fmt.Errorf("マニューバの座標が不正です: %v", s.Maneuver.Location)
			}
			// 経由地の到着と次レグの出発は同じ地点なので到着側を省く
			if s.Maneuver.Type == "arrive" && li < len(r.Legs)-1 {
				continue
			}
			result.Nodes = append(result.Nodes, model.RouteNode{
				Location:    model.CoordinateFromPoint(orb.Point{s.Maneuver.Location[0], s.Maneuver.Location[1]}),
				Instruction: osrmInstruction(s),
			})
		}
	}

	if r.Geometry != nil {
		if ls, ok := r.Geometry.Coordinates.(orb.LineString); ok {
			result.Geometry = make([]model.Coordinate, len(ls))
			for i, p := range ls {
				result.Geometry[i] = model.CoordinateFromPoint(p)
			}
		}
	}
	return result, nil
}

// osrmInstruction はマニューバから案内文を組み立てる
// 出発と直進はnil（"Continue straight"として表示）
func osrmInstruction(s osrmStep) *string {
	m := s.Maneuver
	var text string
	switch m.Type {
	case "depart":
		return nil
	case "arrive":
		text = "You have arrived at your destination"
	case "continue", "new name":
		if m.Modifier == "" || m.Modifier == "straight" {
			return nil
		}
		text = "Continue " + m.Modifier
	case "roundabout", "rotary":
		if m.Exit > 0 {
			text = fmt.Sprintf("Enter the roundabout and take exit %d", m.Exit)
		} else {
			text = "Enter the roundabout"
		}
	case "exit roundabout", "exit rotary":
		text = "Exit the roundabout"
	case "fork":
		text = "Keep " + defaultModifier(m.Modifier, "straight") + " at the fork"
	case "merge":
		text = "Merge " + defaultModifier(m.Modifier, "straight")
	case "on ramp":
		text = "Take the ramp " + defaultModifier(m.Modifier, "straight")
	case "off ramp":
		text = "Take the exit " + defaultModifier(m.Modifier, "straight")
	case "end of road":
		text = "At the end of the road turn " + defaultModifier(m.Modifier, "straight")
	default: // turn, notification など
		if m.Modifier == "" || m.Modifier == "straight" {
			return nil
		}
		if m.Modifier == "uturn" {
			text = "Make a U-turn"
		} else {
			text = "Turn " + m.Modifier
		}
	}
	if s.Name != "" && m.Type != "arrive" {
		text += " onto " + s.Name
	}
	return &text
}

func defaultModifier(modifier, fallback string) string {
	if modifier == "" {
		return fallback
	}
	return modifier
}
