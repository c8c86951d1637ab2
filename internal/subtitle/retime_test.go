package subtitle

import (
	"testing"
	"time"

	"github.com/mgpai22/quietcut/internal/silence"
)

func sec(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

func TestRetime(t *testing.T) {
	// kept: [10, 20) -> [0, 10), [30, 35) -> [10, 15)
	segments := []silence.Segment{
		{Start: 10, Length: 10, End: 20},
		{Start: 30, Length: 5, End: 35},
	}

	sub := &Subtitle{Format: string(FormatSRT), Entries: []Entry{
		{Index: 1, StartTime: sec(2), EndTime: sec(5), Text: "lead-in"},
		{Index: 2, StartTime: sec(12), EndTime: sec(14), Text: "inside"},
		{Index: 3, StartTime: sec(18), EndTime: sec(32), Text: "across cut"},
		{Index: 4, StartTime: sec(22), EndTime: sec(28), Text: "removed"},
		{Index: 5, StartTime: sec(34), EndTime: sec(40), Text: "tail"},
		{Index: 6, StartTime: sec(8), EndTime: sec(11), Text: "clipped start"},
	}}

	got := Retime(sub, segments)

	want := []Entry{
		{Index: 1, StartTime: sec(2), EndTime: sec(4), Text: "inside"},
		{Index: 2, StartTime: sec(8), EndTime: sec(12), Text: "across cut"},
		{Index: 3, StartTime: sec(14), EndTime: sec(15), Text: "tail"},
		{Index: 4, StartTime: 0, EndTime: sec(1), Text: "clipped start"},
	}

	if got.Format != string(FormatSRT) {
		t.Errorf("expected format to be kept, got %q", got.Format)
	}
	if len(got.Entries) != len(want) {
		t.Fatalf("expected %d entries, got %d: %+v", len(want), len(got.Entries), got.Entries)
	}
	for i := range want {
		if got.Entries[i] != want[i] {
			t.Errorf("entry %d: got %+v, want %+v", i, got.Entries[i], want[i])
		}
	}

	// input untouched
	if sub.Entries[1].StartTime != sec(12) {
		t.Errorf("Retime modified its input")
	}
}

func TestRetimeNoSegments(t *testing.T) {
	sub := &Subtitle{Entries: []Entry{
		{Index: 1, StartTime: sec(1), EndTime: sec(2), Text: "gone"},
	}}
	got := Retime(sub, nil)
	if len(got.Entries) != 0 {
		t.Errorf("expected no entries, got %+v", got.Entries)
	}
}

func TestRetimeDropsSlivers(t *testing.T) {
	segments := []silence.Segment{{Start: 10, Length: 5, End: 15}}
	sub := &Subtitle{Entries: []Entry{
		{Index: 1, StartTime: sec(5), EndTime: sec(10.005), Text: "sliver"},
	}}
	if got := Retime(sub, segments); len(got.Entries) != 0 {
		t.Errorf("expected sliver to be dropped, got %+v", got.Entries)
	}
}

func TestRetimeFile(t *testing.T) {
	f := &SRTFile{entries: []Entry{
		{Index: 1, StartTime: sec(1), EndTime: sec(2), Text: "kept"},
		{Index: 2, StartTime: sec(6), EndTime: sec(7), Text: "dropped"},
	}}
	kept, dropped := RetimeFile(f, []silence.Segment{{Start: 0, Length: 5, End: 5}})
	if kept != 1 || dropped != 1 {
		t.Errorf("expected 1 kept and 1 dropped, got %d and %d", kept, dropped)
	}
	if f.Subtitle().Entries[0].Text != "kept" {
		t.Errorf("unexpected entries: %+v", f.Subtitle().Entries)
	}
}
