package silence

// shortest gap between two silences that is still worth keeping, in seconds
const MinSegmentLength = 1.0

// BuildSegments returns the non-silent ranges strictly between consecutive
// silences. Material before the first and after the last silence is not
// kept, so fewer than two silences yields no segments.
func BuildSegments(silences []Interval, hook Hook) []Segment {
	segments := []Segment{}
	if len(silences) < 2 {
		return segments
	}

	for i := 1; i < len(silences); i++ {
		end1 := silences[i-1].End
		start2 := silences[i].Start
		seg := Segment{Start: end1, Length: start2 - end1, End: start2}

		if seg.Length < MinSegmentLength {
			hook.emit(Event{Kind: EventSegmentDropped, Segment: seg})
			continue
		}
		hook.emit(Event{Kind: EventSegmentKept, Segment: seg})
		segments = append(segments, seg)
	}

	return segments
}
