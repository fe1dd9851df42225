package service

import (
	"context"
	"sync"

	"Navi-App/internal/domain/model"
)

type fakeRoutingProvider struct {
	mu        sync.Mutex
	route     *model.Route
	err       error
	calls     int
	waypoints [][]model.Coordinate
}

func (f *fakeRoutingProvider) GetRoute(ctx context.Context, waypoints []model.Coordinate) (*model.Route, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.waypoints = append(f.waypoints, waypoints)
	return f.route, f.err
}

type fakeGeocoder struct {
	results []model.GeocodeResult
	err     error
	calls   int
	queries []string
	limits  []int
}

func (f *fakeGeocoder) Lookup(ctx context.Context, text string, maxResults int) ([]model.GeocodeResult, error) {
	f.calls++
	f.queries = append(f.queries, text)
	f.limits = append(f.limits, maxResults)
	return f.results, f.err
}

type fakeGeocodeCache struct {
	entries map[string]model.GeocodeResult
	getErr  error
	puts    int
}

func newFakeGeocodeCache() *fakeGeocodeCache {
	return &fakeGeocodeCache{entries: map[string]model.GeocodeResult{}}
}

func (f *fakeGeocodeCache) Get(ctx context.Context, query string) (*model.GeocodeResult, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if r, ok := f.entries[query]; ok {
		return &r, nil
	}
	return nil, nil
}

func (f *fakeGeocodeCache) Put(ctx context.Context, query string, result model.GeocodeResult) error {
	f.puts++
	f.entries[query] = result
	return nil
}
