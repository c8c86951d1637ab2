package subtitle

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"
)

var (
	vttTimestampRegex = regexp.MustCompile(
		`(\d{2,}):(\d{2}):(\d{2})\.(\d{3})\s*-->\s*(\d{2,}):(\d{2}):(\d{2})\.(\d{3})`,
	)
	vttShortTimestampRegex = regexp.MustCompile(
		`^(\d{2}):(\d{2})\.(\d{3})\s*-->\s*(\d{2}):(\d{2})\.(\d{3})`,
	)
)

// VTTFile keeps the header block (WEBVTT line plus any NOTE/STYLE/REGION
// blocks before the first cue) so Write can put it back.
type VTTFile struct {
	header  []string
	entries []Entry
}

func parseVTT(r io.Reader) (*VTTFile, error) {
	file := &VTTFile{}
	scanner := bufio.NewScanner(r)

	var current *Entry
	var textLines []string
	lineNum := 0
	inHeader := true
	firstBlock := true
	skipBlock := false

	flush := func() {
		if current != nil && len(textLines) > 0 {
			current.Text = strings.Join(textLines, "\n")
			file.entries = append(file.entries, *current)
		}
		current = nil
		textLines = nil
	}

	for scanner.Scan() {
		line := scanner.Text()
		lineNum++

		if lineNum == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
			if !strings.HasPrefix(strings.TrimSpace(line), "WEBVTT") {
				return nil, fmt.Errorf("missing WEBVTT header")
			}
			file.header = append(file.header, line)
			continue
		}

		trimmed := strings.TrimSpace(line)

		if trimmed == "" {
			skipBlock = false
			firstBlock = false
			flush()
			if inHeader {
				file.header = append(file.header, line)
			}
			continue
		}

		if skipBlock {
			if inHeader {
				file.header = append(file.header, line)
			}
			continue
		}

		if current == nil && (strings.HasPrefix(trimmed, "NOTE") ||
			strings.HasPrefix(trimmed, "STYLE") ||
			strings.HasPrefix(trimmed, "REGION")) {
			skipBlock = true
			if inHeader {
				file.header = append(file.header, line)
			}
			continue
		}

		var groups []string
		if m := vttTimestampRegex.FindStringSubmatch(line); m != nil {
			groups = m[1:9]
		} else if m := vttShortTimestampRegex.FindStringSubmatch(line); m != nil {
			groups = []string{"00", m[1], m[2], m[3], "00", m[4], m[5], m[6]}
		}

		if groups != nil {
			flush()
			start, end, err := parseCueTimes(groups[0:4], groups[4:8])
			if err != nil {
				return nil, fmt.Errorf("invalid timestamp at line %d: %w", lineNum, err)
			}
			inHeader = false
			current = &Entry{
				Index:     len(file.entries) + 1,
				StartTime: start,
				EndTime:   end,
			}
			continue
		}

		if current != nil {
			textLines = append(textLines, line)
			continue
		}
		// metadata such as "Kind: captions" directly under WEBVTT; anything
		// else here is a cue identifier, renumbered on write
		if firstBlock {
			file.header = append(file.header, line)
		}
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading VTT file: %w", err)
	}

	return file, nil
}

func (f *VTTFile) Format() Format {
	return FormatVTT
}

func (f *VTTFile) Subtitle() *Subtitle {
	return &Subtitle{
		Entries: f.entries,
		Format:  string(FormatVTT),
	}
}

func (f *VTTFile) SetEntries(entries []Entry) {
	f.entries = entries
}

func (f *VTTFile) Write(path string) error {
	return (&VTTWriter{Header: f.header}).Write(f.Subtitle(), path)
}
