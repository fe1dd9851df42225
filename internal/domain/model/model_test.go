package model

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoordinateValidate(t *testing.T) {
	cases := []struct {
		name    string
		coord   Coordinate
		wantErr bool
	}{
		{"origin", Coordinate{0, 0}, false},
		{"heilbronn", Coordinate{49.12, 9.21}, false},
		{"poles and antimeridian", Coordinate{-90, 180}, false},
		{"latitude too high", Coordinate{90.0001, 0}, true},
		{"longitude too low", Coordinate{0, -180.5}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.coord.Validate()
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrInvalidCoordinate)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCoordinatePointConversion(t *testing.T) {
	c := Coordinate{Latitude: 49.1, Longitude: 9.2}
	p := c.ToPoint()
	assert.Equal(t, 9.2, p.Lon())
	assert.Equal(t, 49.1, p.Lat())
	assert.Equal(t, c, CoordinateFromPoint(p))
}

func TestNewWaypoints(t *testing.T) {
	current := Coordinate{Latitude: 49.0, Longitude: 9.0}
	target := Coordinate{Latitude: 49.1, Longitude: 9.1}
	wp := NewWaypoints(current, target)
	require.Len(t, wp, 2)
	assert.Equal(t, current, wp[0])
	assert.Equal(t, target, wp[len(wp)-1])
}

func TestRouteNodeInstructionText(t *testing.T) {
	assert.Equal(t, "Continue straight", RouteNode{}.InstructionText())
	assert.Equal(t, "Continue straight", RouteNode{Instruction: StringPtr("")}.InstructionText())
	assert.Equal(t, "Turn left", RouteNode{Instruction: StringPtr("Turn left")}.InstructionText())
}

func TestMapViewRotate(t *testing.T) {
	v := NewMapView(DefaultCenter, DefaultZoom)
	for i := 0; i < 3; i++ {
		v.Rotate(DefaultRotationStep)
	}
	assert.Equal(t, 270.0, v.Rotation)
	v.Rotate(DefaultRotationStep)
	assert.Equal(t, 0.0, v.Rotation)
	v.Rotate(-45)
	assert.Equal(t, 315.0, v.Rotation)
}

func TestMapViewMoveToStopsFollowing(t *testing.T) {
	v := MapView{Following: true}
	target := Coordinate{Latitude: 48.0, Longitude: 11.0}
	v.MoveTo(target)
	assert.False(t, v.Following)
	assert.Equal(t, target, v.Center)
}

func TestOverlaySetCloneIsIndependent(t *testing.T) {
	pos := Coordinate{Latitude: 1, Longitude: 2}
	s := NewOverlaySet()
	s.PositionMarker.Position = &pos
	s.Route = &RoutePath{Points: []Coordinate{{1, 2}, {3, 4}}}
	s.Markers = []InstructionMarker{NewInstructionMarker(1, RouteNode{Location: pos})}

	c := s.Clone()
	require.Equal(t, s, c)

	c.Route.Points[0] = Coordinate{9, 9}
	c.Markers[0].Text = "changed"
	c.PositionMarker.Position.Latitude = 7

	assert.Equal(t, Coordinate{1, 2}, s.Route.Points[0])
	assert.Equal(t, DefaultInstruction, s.Markers[0].Text)
	assert.Equal(t, 1.0, s.PositionMarker.Position.Latitude)
}

func TestOverlaySetToFeatureCollection(t *testing.T) {
	pos := Coordinate{Latitude: 49.0, Longitude: 9.0}
	s := NewOverlaySet()
	fc := s.ToFeatureCollection()
	assert.Empty(t, fc.Features)
	assert.Equal(t, true, fc.ExtraMembers["scale_bar"])

	s.PositionMarker.Position = &pos
	s = s.WithRoute(
		&RoutePath{Points: []Coordinate{pos, {49.1, 9.1}}, Width: DefaultRouteWidth, Color: DefaultRouteColor},
		[]InstructionMarker{NewInstructionMarker(1, RouteNode{Location: pos})},
	)
	fc = s.ToFeatureCollection()
	require.Len(t, fc.Features, 3)
	assert.Equal(t, "route", fc.Features[0].Properties["kind"])
	assert.Equal(t, "LineString", fc.Features[0].Geometry.GeoJSONType())
	assert.Equal(t, "instruction", fc.Features[1].Properties["kind"])
	assert.Equal(t, "Step 1", fc.Features[1].Properties["title"])
	assert.Equal(t, "position", fc.Features[2].Properties["kind"])
}

func TestUserMessageIsDistinctPerKind(t *testing.T) {
	kinds := []error{
		ErrMissingCurrentLocation,
		ErrEmptyInput,
		ErrDestinationNotFound,
		ErrGeocodingService,
		ErrNoRouteFound,
		ErrRoutingServiceUnavailable,
	}
	seen := map[string]bool{}
	for _, k := range kinds {
		msg := UserMessage(fmt.Errorf("wrapped: %w", k))
		assert.NotEmpty(t, msg)
		assert.False(t, seen[msg], "duplicate message %q", msg)
		seen[msg] = true
	}
	assert.Equal(t, "Input cannot be empty", UserMessage(ErrEmptyInput))
	assert.Equal(t, "No route found", UserMessage(ErrNoRouteFound))
	assert.Equal(t, "Something went wrong", UserMessage(errors.New("boom")))
	assert.Equal(t, "", UserMessage(nil))
}

func TestMapSessionFirestoreRoundTrip(t *testing.T) {
	s := NewMapSession("abc", NewMapView(DefaultCenter, DefaultZoom))
	s.Generation = 4
	s.Target = &Coordinate{Latitude: 48, Longitude: 9}

	doc := s.ToFirestoreMapSession(24)
	assert.True(t, doc.ExpireAt.After(s.UpdatedAt))

	back := doc.ToMapSession("abc")
	assert.Equal(t, s.ID, back.ID)
	assert.Equal(t, s.Generation, back.Generation)
	assert.Equal(t, s.Target, back.Target)
	assert.Equal(t, s.View, back.View)
}
