package recognition

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/saturnino-fabrica-de-software/chamada/internal/domain"
)

const (
	DefaultTolerance = 0.5
	defaultWorkers   = 4
)

// MatchResult is Known only when some identity lies strictly within tolerance.
type MatchResult struct {
	Known    bool
	Identity domain.Identity
	Distance float64
	Position int
}

type Matcher struct {
	tolerance float64
	workers   int
}

func NewMatcher(tolerance float64, workers int) *Matcher {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	if workers <= 0 {
		workers = defaultWorkers
	}
	return &Matcher{tolerance: tolerance, workers: workers}
}

func (m *Matcher) Tolerance() float64 {
	return m.tolerance
}

// Match returns the closest identity among those with distance < tolerance.
// On equal distances the earliest identity in the index wins.
func (m *Matcher) Match(query []float64, index []domain.Identity) MatchResult {
	best := MatchResult{Position: -1}

	for i, id := range index {
		d := EuclideanDistance(query, id.Encoding)
		if d >= m.tolerance {
			continue
		}
		if !best.Known || d < best.Distance {
			best = MatchResult{Known: true, Identity: id, Distance: d, Position: i}
		}
	}

	return best
}

// MatchAll matches every face of a frame. Results keep the order of queries.
func (m *Matcher) MatchAll(ctx context.Context, queries [][]float64, index []domain.Identity) ([]MatchResult, error) {
	results := make([]MatchResult, len(queries))
	if len(queries) == 0 {
		return results, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(m.workers)

	for i, q := range queries {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = m.Match(q, index)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("match faces: %w", err)
	}

	return results, nil
}
