package silence

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"
)

const endMarker = "silence_end"

// Example: [silencedetect @ 0x7fffe351b460] silence_end: 51.2464 | silence_duration: 2.06966
var silenceEndRx = regexp.MustCompile(
	`silence_end:\s*([^\s|]+)\s*\|\s*silence_duration:\s*([^\s|]+)`,
)

// ParseReport reads a silencedetect report and returns the silence intervals
// in report order. Lines without the silence_end marker are ignored, and
// malformed silence_end lines are skipped after being reported to hook.
// The only error returned is one from reading r.
func ParseReport(r io.Reader, hook Hook) ([]Interval, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	scanner.Split(scanReportLines)

	intervals := []Interval{}
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		if iv, ok := parseReportLine(lineNum, scanner.Text(), hook); ok {
			intervals = append(intervals, iv)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read silence report: %w", err)
	}

	return intervals, nil
}

// scanReportLines is bufio.ScanLines that also ends a line at a bare '\r'.
// ffmpeg redraws its progress stats with '\r' only, which would otherwise
// pile up into one line longer than the scanner buffer.
func scanReportLines(data []byte, atEOF bool) (int, []byte, error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		if data[i] == '\n' {
			return i + 1, data[:i], nil
		}
		if i+1 < len(data) {
			if data[i+1] == '\n' {
				return i + 2, data[:i], nil
			}
			return i + 1, data[:i], nil
		}
		// need one more byte to tell "\r\n" from a bare "\r"
		if !atEOF {
			return 0, nil, nil
		}
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

// ParseLines is ParseReport over lines already split by the caller.
func ParseLines(lines []string, hook Hook) []Interval {
	intervals := []Interval{}
	for i, line := range lines {
		if iv, ok := parseReportLine(i+1, line, hook); ok {
			intervals = append(intervals, iv)
		}
	}
	return intervals
}

func parseReportLine(lineNum int, line string, hook Hook) (Interval, bool) {
	if !strings.Contains(line, endMarker) {
		return Interval{}, false
	}

	iv, err := ParseLine(line)
	if err != nil {
		hook.emit(Event{
			Kind: EventMalformedLine,
			Line: lineNum,
			Text: line,
			Err:  fmt.Errorf("line %d: %w", lineNum, err),
		})
		return Interval{}, false
	}

	hook.emit(Event{Kind: EventParsed, Line: lineNum, Text: line, After: iv})
	return iv, true
}

// ParseLine parses a single silence_end line.
func ParseLine(line string) (Interval, error) {
	matches := silenceEndRx.FindStringSubmatch(line)
	if len(matches) != 3 {
		return Interval{}, fmt.Errorf("%w: %q", ErrMalformedLine, strings.TrimSpace(line))
	}

	end, err := parseSeconds(matches[1])
	if err != nil {
		return Interval{}, fmt.Errorf("%w: silence_end: %v", ErrMalformedLine, err)
	}
	duration, err := parseSeconds(matches[2])
	if err != nil {
		return Interval{}, fmt.Errorf("%w: silence_duration: %v", ErrMalformedLine, err)
	}
	if end < 0 || duration < 0 {
		return Interval{}, fmt.Errorf("%w: negative time (end %g, duration %g)", ErrMalformedLine, end, duration)
	}

	// silencedetect can report a start a hair before zero
	start := end - duration
	if start < 0 {
		start = 0
		duration = end
	}

	return Interval{Start: start, Duration: duration, End: end}, nil
}

func parseSeconds(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("not a finite number: %s", s)
	}
	return v, nil
}
