// Package srs implements the SM-2 family interval scheduler that drives
// spaced review of phrases and frames.
package srs

import (
	"errors"
	"fmt"
	"math"
)

// MinEase is the floor of the SM-2 easiness factor.
const MinEase = 1.3

// PassThreshold is the lowest quality counted as a successful recall.
const PassThreshold = 3

// ErrInvalidQuality is returned when a rating is outside [0,5]. Ratings are
// validated here, at the boundary, so the numeric core never sees bad input.
var ErrInvalidQuality = errors.New("srs: quality must be between 0 and 5")

// ComputeNextInterval maps a self-graded recall quality, the prior interval
// in days and the prior easiness factor to the next interval and factor.
//
// Failures (quality < 3) reset the interval to one day and leave the ease
// untouched. Successes follow SM-2: 0 -> 1 day, 1 -> 6 days, then
// round(interval * ease), with the ease adjusted by the SM-2 formula and
// floored at 1.3. Rounding is half-away-from-zero so interval growth is
// reproducible across runs.
func ComputeNextInterval(quality, priorInterval int, priorEase float64) (int, float64, error) {
	if quality < 0 || quality > 5 {
		return 0, 0, fmt.Errorf("%w: got %d", ErrInvalidQuality, quality)
	}

	if quality < PassThreshold {
		return 1, priorEase, nil
	}

	var interval int
	switch priorInterval {
	case 0:
		interval = 1
	case 1:
		interval = 6
	default:
		interval = int(math.Round(float64(priorInterval) * priorEase))
	}

	q := float64(quality)
	ease := priorEase + (0.1 - (5-q)*(0.08+(5-q)*0.02))
	if ease < MinEase {
		ease = MinEase
	}

	return interval, ease, nil
}
