package predict

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iequus/iequus_backend/config"
)

// a plausible landmark set: every segment has length and the slopes differ
func samplePoints() []Point {
	return []Point{
		{0, 0}, {30, 40}, // A B   |AB| = 50
		{0, 0}, {6, 8},   // C D   |CD| = 10
		{0, 0}, {0, 20},  // E F   |EF| = 20
		{0, 0}, {40, 0},  // G H   |GH| = 40
		{0, 0}, {3, 4},   // I J   |IJ| = 5, slope 4/3
		{1, 1}, {2, 2},   // K L unused
		{0, 0}, {1, 2},   // M N   slope 2
	}
}

func TestFeatures(t *testing.T) {
	v, err := Features(samplePoints())
	require.NoError(t, err)

	assert.InDelta(t, (4.0/3.0)/2.0, v.SlopeRatio, 1e-9)
	assert.InDelta(t, 10.0, v.BackToFlank, 1e-9)
	assert.InDelta(t, 0.5, v.ShoulderToNeck, 1e-9)
	assert.InDelta(t, 0.5, v.NeckToHip, 1e-9)
	assert.InDelta(t, 4.0, v.NeckToFlank, 1e-9)
	assert.Len(t, v.Slice(), 5)
}

func TestFeatures_Deterministic(t *testing.T) {
	a, err := Features(samplePoints())
	require.NoError(t, err)
	b, err := Features(samplePoints())
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestFeatures_Degenerate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p []Point)
	}{
		{"vertical IJ", func(p []Point) { p[pJ] = Point{0, 5} }},
		{"vertical MN", func(p []Point) { p[pN] = Point{0, 7} }},
		{"horizontal MN", func(p []Point) { p[pN] = Point{5, 0} }},
		{"zero EF", func(p []Point) { p[pF] = p[pE] }},
		{"zero GH", func(p []Point) { p[pH] = p[pG] }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := samplePoints()
			tt.mutate(p)
			_, err := Features(p)
			assert.ErrorIs(t, err, ErrDegenerate)
		})
	}
}

func TestFeatures_WrongCount(t *testing.T) {
	_, err := Features(samplePoints()[:13])
	assert.ErrorIs(t, err, ErrPointCount)
}

type fakeScorer struct {
	score float64
	calls int
}

func (f *fakeScorer) Predict(context.Context, Vector) (float64, error) {
	f.calls++
	return f.score, nil
}

func (f *fakeScorer) Health(context.Context) error { return nil }

func TestDecodePoints(t *testing.T) {
	points, err := DecodePoints([]byte(`[{"x": 1, "y": 2.5}, {"x": 0, "y": 0}]`))
	require.NoError(t, err)
	assert.Equal(t, []Point{{1, 2.5}, {0, 0}}, points)

	points, err = DecodePoints([]byte(`[]`))
	require.NoError(t, err)
	assert.Empty(t, points)

	for _, raw := range []string{
		`[{"x": 1}]`,
		`[{"y": 4}]`,
		`[{"x": 1, "y": 2}, null]`,
		`[{"x": null, "y": 2}]`,
	} {
		_, err := DecodePoints([]byte(raw))
		assert.ErrorIs(t, err, ErrIncomplete, raw)
	}

	_, err = DecodePoints([]byte(`[{"x": "1", "y": 2}]`))
	assert.Error(t, err)
}

func TestEstimate(t *testing.T) {
	scorer := &fakeScorer{score: 5.5}
	e := &Estimator{Scorer: scorer, WeightPlaceholder: 0}
	ctx := context.Background()

	none, err := e.Estimate(ctx, nil)
	require.NoError(t, err)
	assert.Nil(t, none.BodyWeight)
	assert.Nil(t, none.BodyScore)

	partial, err := e.Estimate(ctx, samplePoints()[:13])
	require.NoError(t, err)
	require.NotNil(t, partial.BodyWeight)
	assert.Equal(t, 0.0, *partial.BodyWeight)
	assert.Nil(t, partial.BodyScore)
	assert.Equal(t, 0, scorer.calls)

	full, err := e.Estimate(ctx, samplePoints())
	require.NoError(t, err)
	require.NotNil(t, full.BodyScore)
	assert.Equal(t, 5.5, *full.BodyScore)
	assert.Equal(t, 1, scorer.calls)

	_, err = e.Estimate(ctx, append(samplePoints(), Point{}))
	assert.ErrorIs(t, err, ErrPointCount)
}

func TestClient_Predict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/predict", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)

		var req predictRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Len(t, req.Features, 5)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"body_score": 4.25}`))
	}))
	defer srv.Close()

	c := NewClient(config.PredictionConfig{BaseURL: srv.URL + "/", TimeoutSeconds: 2})
	v, err := Features(samplePoints())
	require.NoError(t, err)

	score, err := c.Predict(context.Background(), v)
	require.NoError(t, err)
	assert.Equal(t, 4.25, score)
}

func TestClient_PredictServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(config.PredictionConfig{BaseURL: srv.URL, TimeoutSeconds: 2})
	_, err := c.Predict(context.Background(), Vector{})
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestClient_Health(t *testing.T) {
	body := "OK"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	c := NewClient(config.PredictionConfig{BaseURL: srv.URL, TimeoutSeconds: 2})
	assert.NoError(t, c.Health(context.Background()))

	body = "degraded"
	assert.ErrorIs(t, c.Health(context.Background()), ErrUnavailable)
}
