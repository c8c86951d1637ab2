package subtitle

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var srtTimestampRegex = regexp.MustCompile(
	`(\d{2,}):(\d{2}):(\d{2}),(\d{3})\s*-->\s*(\d{2,}):(\d{2}):(\d{2}),(\d{3})`,
)

type SRTFile struct {
	entries []Entry
}

func parseSRT(r io.Reader) (*SRTFile, error) {
	var entries []Entry
	scanner := bufio.NewScanner(r)

	var current *Entry
	var textLines []string
	timed := false
	lineNum := 0

	flush := func() {
		if current != nil && timed && len(textLines) > 0 {
			current.Text = strings.Join(textLines, "\n")
			entries = append(entries, *current)
		}
		current = nil
		timed = false
		textLines = nil
	}

	for scanner.Scan() {
		line := scanner.Text()
		lineNum++

		if lineNum == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}

		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}

		if current == nil {
			index, err := strconv.Atoi(strings.TrimSpace(line))
			if err == nil {
				current = &Entry{Index: index}
				continue
			}
		}

		if current != nil && !timed {
			if m := srtTimestampRegex.FindStringSubmatch(line); m != nil {
				start, end, err := parseCueTimes(m[1:5], m[5:9])
				if err != nil {
					return nil, fmt.Errorf("invalid timestamp at line %d: %w", lineNum, err)
				}
				current.StartTime = start
				current.EndTime = end
				timed = true
				continue
			}
		}

		if current != nil {
			textLines = append(textLines, line)
		}
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading SRT file: %w", err)
	}

	return &SRTFile{entries: entries}, nil
}

// parses two [h, m, s, ms] groups
func parseCueTimes(start, end []string) (time.Duration, time.Duration, error) {
	s, err := parseTimestamp(start[0], start[1], start[2], start[3])
	if err != nil {
		return 0, 0, err
	}
	e, err := parseTimestamp(end[0], end[1], end[2], end[3])
	if err != nil {
		return 0, 0, err
	}
	if e < s {
		return 0, 0, fmt.Errorf("cue ends before it starts (%v --> %v)", s, e)
	}
	return s, e, nil
}

func parseTimestamp(hours, minutes, seconds, millis string) (time.Duration, error) {
	var parts [4]int
	for i, v := range []string{hours, minutes, seconds, millis} {
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, err
		}
		parts[i] = n
	}

	return time.Duration(parts[0])*time.Hour +
		time.Duration(parts[1])*time.Minute +
		time.Duration(parts[2])*time.Second +
		time.Duration(parts[3])*time.Millisecond, nil
}

func (f *SRTFile) Format() Format {
	return FormatSRT
}

func (f *SRTFile) Subtitle() *Subtitle {
	return &Subtitle{
		Entries: f.entries,
		Format:  string(FormatSRT),
	}
}

func (f *SRTFile) SetEntries(entries []Entry) {
	f.entries = entries
}

func (f *SRTFile) Write(path string) error {
	return (&SRTWriter{}).Write(f.Subtitle(), path)
}
