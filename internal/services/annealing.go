package services

import (
	"context"
	"itinerary-route-service/internal/domain"
	"math"
	"math/rand"
	"time"
)

// ctxCheckEvery is how many iterations pass between context checks.
const ctxCheckEvery = 256

// SearchResult is the best route found plus counters describing the run.
type SearchResult struct {
	BestRoute      []int
	BestEvaluation Evaluation

	Iterations    int
	Accepted      int
	AcceptedWorse int
	Improvements  int
}

// InitialRoute is the seed permutation: the anchor first (and last when
// returnToStart is set), then the remaining stops in caller order.
func InitialRoute(stops []domain.Stop, returnToStart bool) []int {
	anchor := anchorIndex(stops)
	route := make([]int, 0, len(stops)+1)
	if anchor >= 0 {
		route = append(route, anchor)
	}
	for i := range stops {
		if i != anchor {
			route = append(route, i)
		}
	}
	if anchor >= 0 && returnToStart {
		route = append(route, anchor)
	}
	return route
}

// freeRange returns the half-open range of route positions that may be swapped.
func freeRange(route []int, stops []domain.Stop, returnToStart bool) (lo, hi int) {
	lo, hi = 0, len(route)
	if anchorIndex(stops) >= 0 {
		lo = 1
		if returnToStart {
			hi--
		}
	}
	return lo, hi
}

// Search runs simulated annealing over stop orderings and returns the best
// route seen. Anchor positions never move. Cancelling ctx stops the search
// early with the best route found so far.
func Search(ctx context.Context, stops []domain.Stop, m *Matrices, day time.Weekday, opts Options) SearchResult {
	start := opts.StartClock()
	eval := func(route []int) Evaluation {
		return Evaluate(route, stops, m, day, start, opts)
	}

	current := InitialRoute(stops, opts.ReturnToStart)
	currentEval := eval(current)

	res := SearchResult{
		BestRoute:      append([]int(nil), current...),
		BestEvaluation: currentEval,
	}

	lo, hi := freeRange(current, stops, opts.ReturnToStart)
	free := hi - lo
	if free < 2 {
		return res
	}

	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	temp := opts.InitialTemperature
	for temp > opts.StoppingTemperature && res.Iterations < opts.MaxIterations {
		if res.Iterations%ctxCheckEvery == 0 && ctx.Err() != nil {
			break
		}
		res.Iterations++

		i := lo + rng.Intn(free)
		j := lo + rng.Intn(free-1)
		if j >= i {
			j++
		}

		candidate := append([]int(nil), current...)
		candidate[i], candidate[j] = candidate[j], candidate[i]
		candEval := eval(candidate)

		delta := candEval.Score - currentEval.Score
		if delta > 0 || rng.Float64() < math.Exp(delta/temp) {
			res.Accepted++
			if delta < 0 {
				res.AcceptedWorse++
			}
			current, currentEval = candidate, candEval
		}

		if candEval.Score > res.BestEvaluation.Score {
			res.Improvements++
			res.BestRoute = candidate
			res.BestEvaluation = candEval
		}

		if opts.Observer != nil {
			opts.Observer(SearchProgress{
				Iteration:    res.Iterations,
				Temperature:  temp,
				CurrentScore: currentEval.Score,
				BestScore:    res.BestEvaluation.Score,
			})
		}

		temp *= opts.CoolingRate
	}

	return res
}
