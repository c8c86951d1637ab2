// Package silence turns a silencedetect report into a rescaled silence
// timeline and the ordered list of non-silent segments worth keeping.
//
// Everything here is a pure function of its inputs. Running ffmpeg and
// cutting media belong to the audio and video packages.
package silence

import (
	"fmt"
	"math"
)

// tolerance used when checking interval invariants
const epsilon = 1e-9

// detected span of near-zero audio energy, in seconds
type Interval struct {
	Start    float64
	Duration float64
	End      float64
}

// NewInterval derives End from Start and Duration.
func NewInterval(start, duration float64) Interval {
	return Interval{Start: start, Duration: duration, End: start + duration}
}

// Midpoint returns the center of the interval.
func (iv Interval) Midpoint() float64 {
	return (iv.Start + iv.End) / 2
}

// Valid reports whether End == Start + Duration and Start <= End.
func (iv Interval) Valid() bool {
	if iv.Duration < 0 || iv.Start > iv.End+epsilon {
		return false
	}
	return math.Abs(iv.Start+iv.Duration-iv.End) <= 1e-6*math.Max(1, math.Abs(iv.End))
}

func (iv Interval) String() string {
	return fmt.Sprintf("%.3f-%.3f (%.3fs)", iv.Start, iv.End, iv.Duration)
}

// playable non-silent range in the rescaled timeline
type Segment struct {
	Start  float64
	Length float64
	End    float64
}

// Range returns the (start, end) pair handed to the export driver.
func (s Segment) Range() (float64, float64) {
	return s.Start, s.End
}

func (s Segment) String() string {
	return fmt.Sprintf("%.3f-%.3f (%.3fs)", s.Start, s.End, s.Length)
}

// TotalLength sums the length of all segments.
func TotalLength(segments []Segment) float64 {
	var total float64
	for _, s := range segments {
		total += s.Length
	}
	return total
}

// Plan is the full, auditable result of one planning pass.
type Plan struct {
	Detected []Interval
	Rescaled []Interval
	Segments []Segment
}

// Empty reports whether the plan keeps nothing, which callers treat as
// "nothing to trim".
func (p *Plan) Empty() bool {
	return p == nil || len(p.Segments) == 0
}
