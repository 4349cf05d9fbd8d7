package clip

import (
	"errors"
	"fmt"
	"math"

	"vigil-worker-go/internal/imaging"
)

// ErrEmptyClip is returned when sampling is attempted on zero frames.
var ErrEmptyClip = errors.New("clip contains no frames")

// Sample deterministically selects exactly n frames from an ordered buffer,
// preserving order:
//
//   - shorter buffers are padded by repeating the last frame, keeping the
//     temporal recency bias instead of looping from the start;
//   - longer buffers are evenly sampled across [0, len-1];
//   - equal length passes through unchanged.
//
// Identical inputs always produce identical outputs.
func Sample(frames []*imaging.Frame, n int) ([]*imaging.Frame, error) {
	if n < 1 {
		return nil, fmt.Errorf("invalid clip length %d: must be >= 1", n)
	}
	l := len(frames)
	if l == 0 {
		return nil, ErrEmptyClip
	}

	out := make([]*imaging.Frame, 0, n)

	switch {
	case l == n:
		out = append(out, frames...)

	case l < n:
		out = append(out, frames...)
		last := frames[l-1]
		for len(out) < n {
			out = append(out, last)
		}

	case n == 1:
		// Most recent frame carries the most signal
		out = append(out, frames[l-1])

	default:
		step := float64(l-1) / float64(n-1)
		for i := 0; i < n; i++ {
			// exact halves round to the even index
			idx := int(math.RoundToEven(float64(i) * step))
			out = append(out, frames[idx])
		}
	}

	return out, nil
}
