package silence

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSegments(t *testing.T) {
	silences := []Interval{
		NewInterval(0, 2),
		NewInterval(10, 1),
		NewInterval(11.5, 2), // gap of 0.5s, dropped
		NewInterval(20, 3),
	}

	var dropped []Segment
	hook := func(e Event) {
		if e.Kind == EventSegmentDropped {
			dropped = append(dropped, e.Segment)
		}
	}

	got := BuildSegments(silences, hook)
	assert.Equal(t, []Segment{
		{Start: 2, Length: 8, End: 10},
		{Start: 13.5, Length: 6.5, End: 20},
	}, got)
	require.Len(t, dropped, 1)
	assert.InDelta(t, 0.5, dropped[0].Length, 1e-9)
}

func TestBuildSegmentsTooFewSilences(t *testing.T) {
	assert.Empty(t, BuildSegments(nil, nil))
	assert.Empty(t, BuildSegments([]Interval{NewInterval(4, 2)}, nil))
	assert.NotNil(t, BuildSegments(nil, nil))
}

func TestBuildSegmentsKeepsExactlyOneSecond(t *testing.T) {
	got := BuildSegments([]Interval{NewInterval(0, 1), NewInterval(2, 1)}, nil)
	require.Len(t, got, 1)
	assert.Equal(t, 1.0, got[0].Length)
}

func TestBuildSegmentsCountLaw(t *testing.T) {
	var silences []Interval
	for i := 0; i < 50; i++ {
		silences = append(silences, NewInterval(float64(i)*2.3, 0.4+float64(i%7)*0.3))
	}
	got := BuildSegments(silences, nil)
	assert.LessOrEqual(t, len(got), len(silences)-1)
	for _, s := range got {
		assert.GreaterOrEqual(t, s.Length, MinSegmentLength)
		assert.InDelta(t, s.End-s.Start, s.Length, 1e-12)
	}
}

func TestPlannerPlan(t *testing.T) {
	report := strings.Join([]string{
		"[silencedetect @ 0x1] silence_end: 20 | silence_duration: 20",
		"[silencedetect @ 0x1] silence_end: 30 | silence_duration: 0.4",
		"[silencedetect @ 0x1] silence_end: 30.9 | silence_duration: 0.3",
	}, "\n")

	var kinds []EventKind
	p, err := NewPlanner(DefaultRescaleConfig(), WithHook(func(e Event) {
		kinds = append(kinds, e.Kind)
	}))
	require.NoError(t, err)

	plan, err := p.Plan(strings.NewReader(report))
	require.NoError(t, err)
	require.Len(t, plan.Detected, 3)
	require.Len(t, plan.Rescaled, 3)

	assert.InDelta(t, 15, plan.Rescaled[0].End, 1e-6)
	require.Len(t, plan.Segments, 1)
	assert.InDelta(t, 15, plan.Segments[0].Start, 1e-6)
	assert.InDelta(t, plan.Rescaled[1].Start, plan.Segments[0].End, 1e-9)
	assert.False(t, plan.Empty())

	assert.Contains(t, kinds, EventParsed)
	assert.Contains(t, kinds, EventRescaled)
	assert.Contains(t, kinds, EventSegmentKept)
	assert.Contains(t, kinds, EventSegmentDropped)
}

func TestPlannerNothingToTrim(t *testing.T) {
	p, err := NewPlanner(DefaultRescaleConfig())
	require.NoError(t, err)

	plan, err := p.Plan(strings.NewReader("no silence here\n"))
	require.NoError(t, err)
	assert.True(t, plan.Empty())
}

func TestNewPlannerRejectsInvalidConfig(t *testing.T) {
	_, err := NewPlanner(RescaleConfig{MinDuration: 1, MaxDuration: 1})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
