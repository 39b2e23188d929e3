// Package predict turns the 14 body landmarks of a measure into the feature
// vector the scoring service expects, and calls that service.
package predict

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// PointCount is the number of landmarks a full measure carries (A..N).
const PointCount = 14

var (
	ErrPointCount = errors.New("exactly 14 points are required")
	ErrDegenerate = errors.New("degenerate landmark geometry")
	ErrIncomplete = errors.New("every point needs numeric x and y")
)

// Point is one landmark in image pixel coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// DecodePoints parses a JSON list of {x, y} points. A null entry or a point
// missing either coordinate is rejected rather than read as zero.
func DecodePoints(raw []byte) ([]Point, error) {
	var in []*struct {
		X *float64 `json:"x"`
		Y *float64 `json:"y"`
	}
	if err := json.Unmarshal(raw, &in); err != nil {
		return nil, err
	}
	points := make([]Point, len(in))
	for i, p := range in {
		if p == nil || p.X == nil || p.Y == nil {
			return nil, fmt.Errorf("%w: point %d", ErrIncomplete, i)
		}
		points[i] = Point{X: *p.X, Y: *p.Y}
	}
	return points, nil
}

// Vector is the feature vector in the order the scoring model was trained on.
type Vector struct {
	SlopeRatio     float64 // slope(I,J) / slope(M,N)
	BackToFlank    float64 // |AB| / |IJ|
	ShoulderToNeck float64 // |CD| / |EF|
	NeckToHip      float64 // |EF| / |GH|
	NeckToFlank    float64 // |EF| / |IJ|
}

func (v Vector) Slice() []float64 {
	return []float64{v.SlopeRatio, v.BackToFlank, v.ShoulderToNeck, v.NeckToHip, v.NeckToFlank}
}

const (
	pA = iota
	pB
	pC
	pD
	pE
	pF
	pG
	pH
	pI
	pJ
	pK
	pL
	pM
	pN
)

func dist(p, q Point) float64 {
	return math.Hypot(q.X-p.X, q.Y-p.Y)
}

// Features computes the vector from 14 points. K and L are not used.
func Features(points []Point) (Vector, error) {
	if len(points) != PointCount {
		return Vector{}, fmt.Errorf("%w: got %d", ErrPointCount, len(points))
	}
	i, j, m, n := points[pI], points[pJ], points[pM], points[pN]

	if j.X-i.X == 0 {
		return Vector{}, fmt.Errorf("%w: I and J share an x coordinate", ErrDegenerate)
	}
	if n.X-m.X == 0 {
		return Vector{}, fmt.Errorf("%w: M and N share an x coordinate", ErrDegenerate)
	}
	slopeIJ := (j.Y - i.Y) / (j.X - i.X)
	slopeMN := (n.Y - m.Y) / (n.X - m.X)
	if slopeMN == 0 {
		return Vector{}, fmt.Errorf("%w: M-N segment is horizontal", ErrDegenerate)
	}

	ab := dist(points[pA], points[pB])
	cd := dist(points[pC], points[pD])
	ef := dist(points[pE], points[pF])
	gh := dist(points[pG], points[pH])
	ij := dist(i, j)

	switch {
	case ij == 0:
		return Vector{}, fmt.Errorf("%w: |IJ| is zero", ErrDegenerate)
	case ef == 0:
		return Vector{}, fmt.Errorf("%w: |EF| is zero", ErrDegenerate)
	case gh == 0:
		return Vector{}, fmt.Errorf("%w: |GH| is zero", ErrDegenerate)
	}

	return Vector{
		SlopeRatio:     slopeIJ / slopeMN,
		BackToFlank:    ab / ij,
		ShoulderToNeck: cd / ef,
		NeckToHip:      ef / gh,
		NeckToFlank:    ef / ij,
	}, nil
}
