package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Navi-App/internal/domain/model"
)

// stubNavigationUseCase は呼び出し引数を記録し、設定したエラーを返す
type stubNavigationUseCase struct {
	err         error
	lastQuery   string
	lastFix     model.Coordinate
	lastDegrees *float64
	lastEnabled *bool
}

func (s *stubNavigationUseCase) session(id string) *model.MapSession {
	return model.NewMapSession(id, model.NewMapView(model.DefaultCenter, model.DefaultZoom))
}

func (s *stubNavigationUseCase) CreateSession(ctx context.Context) (*model.MapSession, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.session("new"), nil
}

func (s *stubNavigationUseCase) GetSession(ctx context.Context, id string) (*model.MapSession, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.session(id), nil
}

func (s *stubNavigationUseCase) DeleteSession(ctx context.Context, id string) error {
	return s.err
}

func (s *stubNavigationUseCase) UpdateLocation(ctx context.Context, id string, fix model.Coordinate) (*model.MapSession, error) {
	s.lastFix = fix
	if s.err != nil {
		return nil, s.err
	}
	return s.session(id), nil
}

func (s *stubNavigationUseCase) SetTracking(ctx context.Context, id string, enabled bool) (*model.MapSession, error) {
	s.lastEnabled = &enabled
	if s.err != nil {
		return nil, s.err
	}
	return s.session(id), nil
}

func (s *stubNavigationUseCase) Search(ctx context.Context, id, query string) (*model.SearchResponse, error) {
	s.lastQuery = query
	if s.err != nil {
		return nil, s.err
	}
	target := model.Coordinate{Latitude: 49.13, Longitude: 9.22}
	return &model.SearchResponse{Target: target, Session: s.session(id)}, nil
}

func (s *stubNavigationUseCase) Center(ctx context.Context, id string) (*model.MapSession, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.session(id), nil
}

func (s *stubNavigationUseCase) StartRoute(ctx context.Context, id, query string) (*model.RouteResponse, error) {
	s.lastQuery = query
	if s.err != nil {
		return nil, s.err
	}
	return &model.RouteResponse{StepCount: 2, Session: s.session(id)}, nil
}

func (s *stubNavigationUseCase) Rotate(ctx context.Context, id string, degrees *float64) (*model.MapSession, error) {
	s.lastDegrees = degrees
	if s.err != nil {
		return nil, s.err
	}
	return s.session(id), nil
}

func (s *stubNavigationUseCase) Overlays(ctx context.Context, id string) (*geojson.FeatureCollection, error) {
	if s.err != nil {
		return nil, s.err
	}
	return model.NewOverlaySet().ToFeatureCollection(), nil
}

func (s *stubNavigationUseCase) History(ctx context.Context, id string) (*model.RouteHistoryResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &model.RouteHistoryResponse{Routes: []model.RouteRecord{}}, nil
}

func setupRouter(stub *stubNavigationUseCase) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return NewRouter(NewNavigationHandler(stub))
}

func doRequest(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestHealth(t *testing.T) {
	router := setupRouter(&stubNavigationUseCase{})
	w := doRequest(router, http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}

func TestSessionEndpoints(t *testing.T) {
	router := setupRouter(&stubNavigationUseCase{})

	w := doRequest(router, http.MethodPost, "/sessions", "")
	assert.Equal(t, http.StatusCreated, w.Code)

	w = doRequest(router, http.MethodGet, "/sessions/abc", "")
	assert.Equal(t, http.StatusOK, w.Code)
	var session model.MapSession
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &session))
	assert.Equal(t, "abc", session.ID)

	w = doRequest(router, http.MethodDelete, "/sessions/abc", "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doRequest(router, http.MethodGet, "/sessions/abc/overlays", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "FeatureCollection")

	w = doRequest(router, http.MethodGet, "/sessions/abc/history", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"routes":[]}`, w.Body.String())
}

func TestPutLocation(t *testing.T) {
	stub := &stubNavigationUseCase{}
	router := setupRouter(stub)

	t.Run("緯度経度を渡す", func(t *testing.T) {
		w := doRequest(router, http.MethodPut, "/sessions/abc/location", `{"latitude": 49.12, "longitude": 9.21}`)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, model.Coordinate{Latitude: 49.12, Longitude: 9.21}, stub.lastFix)
	})

	t.Run("範囲外の座標はユースケースに渡さない", func(t *testing.T) {
		stub := &stubNavigationUseCase{}
		router := setupRouter(stub)
		w := doRequest(router, http.MethodPut, "/sessions/abc/location", `{"latitude": 91, "longitude": 9.21}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "invalid_coordinate", decodeError(t, w)["error"])
		assert.Equal(t, model.Coordinate{}, stub.lastFix)
	})

	t.Run("経度が無ければ400", func(t *testing.T) {
		w := doRequest(router, http.MethodPut, "/sessions/abc/location", `{"latitude": 49.12}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "invalid_request", decodeError(t, w)["error"])
	})

	t.Run("壊れたJSONは400", func(t *testing.T) {
		w := doRequest(router, http.MethodPut, "/sessions/abc/location", `{"latitude":`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestPutTracking(t *testing.T) {
	stub := &stubNavigationUseCase{}
	router := setupRouter(stub)

	w := doRequest(router, http.MethodPut, "/sessions/abc/tracking", `{"enabled": false}`)
	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, stub.lastEnabled)
	assert.False(t, *stub.lastEnabled)

	w = doRequest(router, http.MethodPut, "/sessions/abc/tracking", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPostSearchAndRoute(t *testing.T) {
	stub := &stubNavigationUseCase{}
	router := setupRouter(stub)

	w := doRequest(router, http.MethodPost, "/sessions/abc/search", `{"query": "Marktplatz"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Marktplatz", stub.lastQuery)

	w = doRequest(router, http.MethodPost, "/sessions/abc/route", `{"query": "Bahnhof"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Bahnhof", stub.lastQuery)
	var resp model.RouteResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.StepCount)
}

func TestPostRotate(t *testing.T) {
	stub := &stubNavigationUseCase{}
	router := setupRouter(stub)

	w := doRequest(router, http.MethodPost, "/sessions/abc/rotate", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, stub.lastDegrees)

	w = doRequest(router, http.MethodPost, "/sessions/abc/rotate", `{"degrees": 45}`)
	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, stub.lastDegrees)
	assert.Equal(t, 45.0, *stub.lastDegrees)

	t.Run("チャンク転送のボディも読む", func(t *testing.T) {
		stub := &stubNavigationUseCase{}
		router := setupRouter(stub)

		// strings.Reader 以外のボディは ContentLength が -1 になる
		req := httptest.NewRequest(http.MethodPost, "/sessions/abc/rotate", io.MultiReader(strings.NewReader(`{"degrees": -30}`)))
		req.Header.Set("Content-Type", "application/json")
		require.Equal(t, int64(-1), req.ContentLength)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, stub.lastDegrees)
		assert.Equal(t, -30.0, *stub.lastDegrees)
	})

	t.Run("空のチャンク転送は既定の角度", func(t *testing.T) {
		stub := &stubNavigationUseCase{}
		router := setupRouter(stub)

		req := httptest.NewRequest(http.MethodPost, "/sessions/abc/rotate", io.MultiReader(strings.NewReader("")))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Nil(t, stub.lastDegrees)
	})

	t.Run("壊れたJSONは400", func(t *testing.T) {
		w := doRequest(router, http.MethodPost, "/sessions/abc/rotate", `{"degrees":`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{model.ErrEmptyInput, http.StatusBadRequest, "empty_input"},
		{model.ErrInvalidCoordinate, http.StatusBadRequest, "invalid_coordinate"},
		{model.ErrSessionNotFound, http.StatusNotFound, "session_not_found"},
		{model.ErrDestinationNotFound, http.StatusNotFound, "destination_not_found"},
		{model.ErrNoRouteFound, http.StatusUnprocessableEntity, "no_route"},
		{model.ErrMissingCurrentLocation, http.StatusConflict, "missing_location"},
		{model.ErrTrackingDisabled, http.StatusConflict, "tracking_disabled"},
		{model.ErrRequestSuperseded, http.StatusConflict, "superseded"},
		{fmt.Errorf("%w: timeout", model.ErrGeocodingService), http.StatusServiceUnavailable, "geocoding_unavailable"},
		{fmt.Errorf("%w: 502", model.ErrRoutingServiceUnavailable), http.StatusServiceUnavailable, "routing_unavailable"},
		{fmt.Errorf("unexpected"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			router := setupRouter(&stubNavigationUseCase{err: tt.err})
			w := doRequest(router, http.MethodPost, "/sessions/abc/route", `{"query": "Bahnhof"}`)

			assert.Equal(t, tt.status, w.Code)
			body := decodeError(t, w)
			assert.Equal(t, tt.code, body["error"])
			assert.Equal(t, model.UserMessage(tt.err), body["message"])
			assert.NotEmpty(t, body["message"])
		})
	}
}
