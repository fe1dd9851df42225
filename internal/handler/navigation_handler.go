package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"Navi-App/internal/domain/model"
	"Navi-App/internal/usecase"
)

// NavigationHandler は地図セッションAPIのハンドラー
type NavigationHandler struct {
	navigationUseCase usecase.NavigationUseCase
}

// NewNavigationHandler は新しいNavigationHandlerインスタンスを作成
func NewNavigationHandler(navigationUseCase usecase.NavigationUseCase) *NavigationHandler {
	return &NavigationHandler{
		navigationUseCase: navigationUseCase,
	}
}

// PostSession はセッションを作成するエンドポイント
// POST /sessions
func (h *NavigationHandler) PostSession(c *gin.Context) {
	session, err := h.navigationUseCase.CreateSession(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

// GetSession GET /sessions/:id
func (h *NavigationHandler) GetSession(c *gin.Context) {
	session, err := h.navigationUseCase.GetSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// DeleteSession DELETE /sessions/:id
func (h *NavigationHandler) DeleteSession(c *gin.Context) {
	if err := h.navigationUseCase.DeleteSession(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetOverlays はオーバーレイをGeoJSONで返すエンドポイント
// GET /sessions/:id/overlays
func (h *NavigationHandler) GetOverlays(c *gin.Context) {
	fc, err := h.navigationUseCase.Overlays(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, fc)
}

// GetHistory GET /sessions/:id/history
func (h *NavigationHandler) GetHistory(c *gin.Context) {
	history, err := h.navigationUseCase.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, history)
}

// PutLocation は端末の現在地を受け取るエンドポイント
// PUT /sessions/:id/location
func (h *NavigationHandler) PutLocation(c *gin.Context) {
	var req model.LocationUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	if req.Latitude == nil {
		respondBadRequest(c, &ValidationError{Field: "latitude", Message: "緯度は必須です"})
		return
	}
	if req.Longitude == nil {
		respondBadRequest(c, &ValidationError{Field: "longitude", Message: "経度は必須です"})
		return
	}

	fix, err := model.NewCoordinate(*req.Latitude, *req.Longitude)
	if err != nil {
		respondError(c, err)
		return
	}
	session, err := h.navigationUseCase.UpdateLocation(c.Request.Context(), c.Param("id"), fix)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// PutTracking PUT /sessions/:id/tracking
func (h *NavigationHandler) PutTracking(c *gin.Context) {
	var req model.TrackingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	if req.Enabled == nil {
		respondBadRequest(c, &ValidationError{Field: "enabled", Message: "enabledは必須です"})
		return
	}

	session, err := h.navigationUseCase.SetTracking(c.Request.Context(), c.Param("id"), *req.Enabled)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// PostSearch は目的地を検索して地図を移動するエンドポイント
// POST /sessions/:id/search
func (h *NavigationHandler) PostSearch(c *gin.Context) {
	var req model.DestinationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	response, err := h.navigationUseCase.Search(c.Request.Context(), c.Param("id"), req.Query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response)
}

// PostCenter POST /sessions/:id/center
func (h *NavigationHandler) PostCenter(c *gin.Context) {
	session, err := h.navigationUseCase.Center(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// PostRoute は目的地までのルートを描画するエンドポイント
// POST /sessions/:id/route
func (h *NavigationHandler) PostRoute(c *gin.Context) {
	var req model.DestinationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	response, err := h.navigationUseCase.StartRoute(c.Request.Context(), c.Param("id"), req.Query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response)
}

// PostRotate はコンパスボタンによる回転。ボディは省略可能
// POST /sessions/:id/rotate
func (h *NavigationHandler) PostRotate(c *gin.Context) {
	var req model.RotateRequest
	// チャンク転送ではContentLengthが-1になるため、ボディの有無で判定する
	if c.Request.Body != nil && c.Request.Body != http.NoBody && c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			respondBadRequest(c, err)
			return
		}
	}

	session, err := h.navigationUseCase.Rotate(c.Request.Context(), c.Param("id"), req.Degrees)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// GetHealth GET /api/health
func GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "Navi-App"})
}

// ValidationError はバリデーションエラーを表す
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

func respondBadRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "invalid_request",
		"message": "リクエストの形式が正しくありません",
		"details": err.Error(),
	})
}

// errorResponses エラー種別とHTTPステータス・エラーコードの対応
var errorResponses = []struct {
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
	{model.ErrGeocodingService, http.StatusServiceUnavailable, "geocoding_unavailable"},
	{model.ErrRoutingServiceUnavailable, http.StatusServiceUnavailable, "routing_unavailable"},
}

// respondError はエラー種別に応じたステータスと通知文を返す
func respondError(c *gin.Context, err error) {
	for _, r := range errorResponses {
		if errors.Is(err, r.err) {
			c.JSON(r.status, gin.H{
				"error":   r.code,
				"message": model.UserMessage(err),
			})
			return
		}
	}

	logrus.Errorf("❌ %s %s: %v", c.Request.Method, c.FullPath(), err)
	c.JSON(http.StatusInternalServerError, gin.H{
		"error":   "internal_error",
		"message": model.UserMessage(err),
	})
}
