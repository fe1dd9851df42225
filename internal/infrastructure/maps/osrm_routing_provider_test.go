package maps

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Navi-App/internal/domain/model"
)

const osrmOKResponse = `{
  "code": "Ok",
  "routes": [{
    "distance": 15234.5,
    "duration": 1100.2,
    "geometry": {"type": "LineString", "coordinates": [[9.0, 49.0], [9.02, 49.03], [9.05, 49.05], [9.1, 49.1]]},
    "legs": [{
      "steps": [
        {"name": "Hauptstraße", "maneuver": {"location": [9.0, 49.0], "type": "depart"}},
        {"name": "Bahnhofstraße", "maneuver": {"location": [9.05, 49.05], "type": "turn", "modifier": "right"}},
        {"name": "", "maneuver": {"location": [9.1, 49.1], "type": "arrive"}}
      ]
    }]
  }]
}`

func TestOSRMRoutingProvider_GetRoute(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		assert.Equal(t, "true", r.URL.Query().Get("steps"))
		assert.Equal(t, "geojson", r.URL.Query().Get("geometries"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(osrmOKResponse))
	}))
	defer server.Close()

	provider := NewOSRMRoutingProvider(server.URL+"/", "driving")
	route, err := provider.GetRoute(context.Background(), []model.Coordinate{
		{Latitude: 49.0, Longitude: 9.0},
		{Latitude: 49.1, Longitude: 9.1},
	})
	require.NoError(t, err)
	require.NotNil(t, route)

	assert.Equal(t, "/route/v1/driving/9.000000,49.000000;9.100000,49.100000", gotPath)
	require.Len(t, route.Nodes, 3)
	assert.Nil(t, route.Nodes[0].Instruction)
	require.NotNil(t, route.Nodes[1].Instruction)
	assert.Equal(t, "Turn right onto Bahnhofstraße", *route.Nodes[1].Instruction)
	assert.Equal(t, model.Coordinate{Latitude: 49.05, Longitude: 9.05}, route.Nodes[1].Location)
	assert.Len(t, route.Geometry, 4)
	assert.Equal(t, 15234.5, route.DistanceMeters)
}

func TestOSRMRoutingProvider_NoRoute(t *testing.T) {
	for _, tc := range []struct {
		name   string
		status int
		body   string
	}{
		{"no route", http.StatusOK, `{"code": "NoRoute", "message": "Impossible route between points"}`},
		{"no segment", http.StatusBadRequest, `{"code": "NoSegment", "message": "Could not find a matching segment"}`},
		{"empty routes", http.StatusOK, `{"code": "Ok", "routes": []}`},
	} {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer server.Close()

			route, err := NewOSRMRoutingProvider(server.URL, "").GetRoute(context.Background(), []model.Coordinate{{}, {Latitude: 1, Longitude: 1}})
			assert.NoError(t, err)
			assert.True(t, route.IsEmpty())
		})
	}
}

func TestOSRMRoutingProvider_ServiceErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	}))
	defer server.Close()

	_, err := NewOSRMRoutingProvider(server.URL, "").GetRoute(context.Background(), []model.Coordinate{{}, {Latitude: 1, Longitude: 1}})
	assert.Error(t, err)

	_, err = NewOSRMRoutingProvider(server.URL, "").GetRoute(context.Background(), []model.Coordinate{{}})
	assert.Error(t, err)
}

func TestOSRMInstruction(t *testing.T) {
	cases := []struct {
		step osrmStep
		want *string
	}{
		{osrmStep{Maneuver: osrmManeuver{Type: "depart"}}, nil},
		{osrmStep{Maneuver: osrmManeuver{Type: "continue", Modifier: "straight"}}, nil},
		{osrmStep{Maneuver: osrmManeuver{Type: "new name"}}, nil},
		{osrmStep{Maneuver: osrmManeuver{Type: "turn", Modifier: "left"}}, model.StringPtr("Turn left")},
		{osrmStep{Name: "A6", Maneuver: osrmManeuver{Type: "on ramp", Modifier: "slight right"}}, model.StringPtr("Take the ramp slight right onto A6")},
		{osrmStep{Maneuver: osrmManeuver{Type: "roundabout", Exit: 2}}, model.StringPtr("Enter the roundabout and take exit 2")},
		{osrmStep{Maneuver: osrmManeuver{Type: "turn", Modifier: "uturn"}}, model.StringPtr("Make a U-turn")},
		{osrmStep{Name: "Ziel", Maneuver: osrmManeuver{Type: "arrive"}}, model.StringPtr("You have arrived at your destination")},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, osrmInstruction(tc.step), "%+v", tc.step)
	}
}
