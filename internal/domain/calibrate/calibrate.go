// Package calibrate solves for the scalar that makes the floor-clamped
// valuation set sum to the league's target budget.
package calibrate

import (
	"errors"
	"fmt"
	"math"
)

// Default bracket constants. The low end is effectively zero; the high end
// is expanded from target/minPositive until it straddles the target.
const (
	bracketLow       = 1e-9
	bracketExpansion = 32
)

// ErrDiverged marks a solve that hit the iteration cap out of tolerance.
var ErrDiverged = errors.New("calibration diverged")

// DivergedError carries the last bracket state for diagnostics. An
// uncalibrated set is never published; the whole run fails with this error.
type DivergedError struct {
	LastFactor float64
	LastSum    int
	Target     int
	Iterations int
}

func (e *DivergedError) Error() string {
	return fmt.Sprintf("calibration diverged after %d iterations: f(%.6g) = %d, target %d",
		e.Iterations, e.LastFactor, e.LastSum, e.Target)
}

func (e *DivergedError) Unwrap() error { return ErrDiverged }

// Result is a converged calibration.
type Result struct {
	Factor     float64
	Sum        int
	Iterations int
}

// Sum evaluates f(c) = sum over the pool of max(1, round(adjusted*c)).
// The $1 floor and integer rounding make f monotonic but stepped: naive
// linear scaling from a single ratio over- or under-shoots once floors
// activate, which is why the solver bisects instead.
func Sum(adjusted []float64, c float64) int {
	total := 0
	for _, a := range adjusted {
		total += Apply(a, c)
	}
	return total
}

// Apply converts one adjusted value into calibrated integer dollars.
func Apply(adjusted, c float64) int {
	v := int(math.Round(adjusted * c))
	if v < 1 {
		return 1
	}
	return v
}

// Solve bisects on c until Sum(adjusted, c) is within the relative
// tolerance of target, or the iteration cap is reached. The adjusted slice
// must already be restricted to the drafted pool.
func Solve(adjusted []float64, target int, tolerance float64, maxIterations int) (Result, error) {
	if target <= 0 {
		return Result{}, fmt.Errorf("calibration target must be positive, got %d", target)
	}
	if len(adjusted) == 0 {
		return Result{}, errors.New("calibration pool is empty")
	}

	within := func(sum int) bool {
		return math.Abs(float64(sum-target))/float64(target) <= tolerance
	}

	minPositive := 0.0
	for _, a := range adjusted {
		if a > 0 && (minPositive == 0 || a < minPositive) {
			minPositive = a
		}
	}
	if minPositive == 0 {
		// Every player sits at the floor; f is constant in c.
		sum := Sum(adjusted, 1)
		if within(sum) {
			return Result{Factor: 1, Sum: sum, Iterations: 0}, nil
		}
		return Result{}, &DivergedError{LastFactor: 1, LastSum: sum, Target: target, Iterations: 0}
	}

	cLo := bracketLow
	cHi := float64(target) / minPositive
	for i := 0; i < bracketExpansion && Sum(adjusted, cHi) < target; i++ {
		cHi *= 2
	}

	var (
		c   float64
		sum int
	)
	for i := 1; i <= maxIterations; i++ {
		c = (cLo + cHi) / 2
		sum = Sum(adjusted, c)
		if within(sum) {
			return Result{Factor: c, Sum: sum, Iterations: i}, nil
		}
		if sum < target {
			cLo = c
		} else {
			cHi = c
		}
	}

	return Result{}, &DivergedError{LastFactor: c, LastSum: sum, Target: target, Iterations: maxIterations}
}
