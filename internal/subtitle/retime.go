package subtitle

import (
	"math"
	"time"

	"github.com/mgpai22/quietcut/internal/silence"
)

// cues shorter than this after clipping are dropped
const minCueLength = 10 * time.Millisecond

// span of the source kept in the output, and where it lands there
type keptSpan struct {
	start, end time.Duration // source timeline
	offset     time.Duration // output timeline position of start
}

func keptSpans(segments []silence.Segment) []keptSpan {
	spans := make([]keptSpan, 0, len(segments))
	var offset time.Duration
	for _, seg := range segments {
		start, end := seconds(seg.Start), seconds(seg.End)
		if end <= start {
			continue
		}
		spans = append(spans, keptSpan{start: start, end: end, offset: offset})
		offset += end - start
	}
	return spans
}

// Retime maps every cue onto the timeline produced by concatenating
// segments in order. A cue wholly inside removed material is dropped; a
// cue crossing a cut keeps only its parts inside kept segments, which are
// adjacent in the output. Entries are renumbered from 1.
func Retime(sub *Subtitle, segments []silence.Segment) *Subtitle {
	spans := keptSpans(segments)
	out := &Subtitle{
		Entries: make([]Entry, 0, len(sub.Entries)),
		Format:  sub.Format,
	}

	for _, e := range sub.Entries {
		start, end, ok := mapCue(spans, e.StartTime, e.EndTime)
		if !ok || end-start < minCueLength {
			continue
		}
		out.Entries = append(out.Entries, Entry{
			Index:     len(out.Entries) + 1,
			StartTime: start,
			EndTime:   end,
			Text:      e.Text,
		})
	}
	return out
}

// RetimeFile replaces the entries of f in place.
func RetimeFile(f File, segments []silence.Segment) (kept, dropped int) {
	before := len(f.Subtitle().Entries)
	retimed := Retime(f.Subtitle(), segments)
	f.SetEntries(retimed.Entries)
	return len(retimed.Entries), before - len(retimed.Entries)
}

func mapCue(spans []keptSpan, start, end time.Duration) (time.Duration, time.Duration, bool) {
	var (
		outStart, outEnd time.Duration
		found            bool
	)
	for _, sp := range spans {
		lo := max(start, sp.start)
		hi := min(end, sp.end)
		if lo >= hi {
			continue
		}
		if !found {
			outStart = sp.offset + (lo - sp.start)
			found = true
		}
		outEnd = sp.offset + (hi - sp.start)
	}
	return outStart, outEnd, found
}

func seconds(s float64) time.Duration {
	return time.Duration(math.Round(s * float64(time.Second)))
}
