package silence

// kind of trace event emitted while planning
type EventKind string

const (
	EventParsed         EventKind = "parsed"
	EventMalformedLine  EventKind = "malformed_line"
	EventRescaled       EventKind = "rescaled"
	EventSegmentKept    EventKind = "segment_kept"
	EventSegmentDropped EventKind = "segment_dropped"
)

// Event describes one step of the pipeline. Only the fields relevant to Kind
// are set.
type Event struct {
	Kind    EventKind
	Line    int
	Text    string
	Err     error
	Before  Interval
	After   Interval
	Segment Segment
}

// Hook observes pipeline events. A nil Hook is valid and ignored.
type Hook func(Event)

func (h Hook) emit(e Event) {
	if h != nil {
		h(e)
	}
}
