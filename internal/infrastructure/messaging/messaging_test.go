package messaging

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Navi-App/internal/domain/model"
)

func TestRedrawSubject(t *testing.T) {
	assert.Equal(t, "navigation.redraw.abc", RedrawSubject("abc"))
}

func TestEncodeRedrawEvent(t *testing.T) {
	session := model.NewMapSession("abc", model.NewMapView(model.DefaultCenter, model.DefaultZoom))
	session.Generation = 3

	data, err := EncodeRedrawEvent(model.NewRedrawEvent(session, "route"))
	require.NoError(t, err)

	var decoded model.RedrawEvent
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "abc", decoded.SessionID)
	assert.Equal(t, uint64(3), decoded.Generation)
	assert.Equal(t, "route", decoded.Reason)
	assert.NotNil(t, decoded.Overlays.ScaleBar)
}

func TestLogRenderSurface(t *testing.T) {
	session := model.NewMapSession("abc", model.MapView{})
	assert.NoError(t, NewLogRenderSurface().Redraw(context.Background(), model.NewRedrawEvent(session, "center")))
}
