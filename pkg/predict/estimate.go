package predict

import "context"

// Estimate is the algorithm output stored on a measure.
type Estimate struct {
	BodyWeight *float64
	BodyScore  *float64
}

// Estimator applies the landmark rules: no points yields nothing, a partial
// set yields only the weight placeholder, a full set is scored remotely.
type Estimator struct {
	Scorer            Scorer
	WeightPlaceholder float64
}

func (e *Estimator) Estimate(ctx context.Context, points []Point) (Estimate, error) {
	if len(points) == 0 {
		return Estimate{}, nil
	}
	if len(points) > PointCount {
		return Estimate{}, ErrPointCount
	}

	bw := e.WeightPlaceholder
	if len(points) < PointCount {
		return Estimate{BodyWeight: &bw}, nil
	}

	v, err := Features(points)
	if err != nil {
		return Estimate{}, err
	}
	score, err := e.Scorer.Predict(ctx, v)
	if err != nil {
		return Estimate{}, err
	}
	return Estimate{BodyWeight: &bw, BodyScore: &score}, nil
}
