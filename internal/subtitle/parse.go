package subtitle

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// matches SRT (comma) and VTT (dot) cue timings, hours optional
var cueTimingRegex = regexp.MustCompile(
	`^\s*(?:(\d+):)?(\d{2}):(\d{2})[,.](\d{3})\s*-->\s*(?:(\d+):)?(\d{2}):(\d{2})[,.](\d{3})`,
)

// opens an srt or vtt file
func Open(path string) (*Subtitle, error) {
	ext := strings.ToLower(filepath.Ext(path))
	var format Format
	switch ext {
	case ".srt":
		format = FormatSRT
	case ".vtt":
		format = FormatVTT
	default:
		return nil, fmt.Errorf("unsupported subtitle format: %s", ext)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open subtitle file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	return Parse(file, format)
}

// reads SubRip or WebVTT cues; cues with empty text are kept
func Parse(r io.Reader, format Format) (*Subtitle, error) {
	if format != FormatSRT && format != FormatVTT {
		return nil, fmt.Errorf("unsupported subtitle format: %s", format)
	}

	var (
		entries   []Entry
		current   *Entry
		textLines []string
		skipBlock bool
		lineNum   int
	)

	finish := func() {
		if current == nil {
			return
		}
		current.Text = strings.Join(textLines, "\n")
		current.Index = len(entries) + 1
		entries = append(entries, *current)
		current = nil
		textLines = nil
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		lineNum++
		if lineNum == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}
		trimmed := strings.TrimSpace(line)

		if trimmed == "" {
			finish()
			skipBlock = false
			continue
		}
		if skipBlock {
			continue
		}

		if matches := cueTimingRegex.FindStringSubmatch(line); matches != nil {
			finish()
			start, err := parseClock(matches[1:5])
			if err != nil {
				return nil, fmt.Errorf("invalid start timestamp at line %d: %w", lineNum, err)
			}
			end, err := parseClock(matches[5:9])
			if err != nil {
				return nil, fmt.Errorf("invalid end timestamp at line %d: %w", lineNum, err)
			}
			current = &Entry{StartTime: start, EndTime: end}
			continue
		}

		if current != nil {
			textLines = append(textLines, line)
			continue
		}

		// outside a cue: index lines, cue identifiers and VTT header blocks
		if format == FormatVTT && isVTTBlock(trimmed) {
			skipBlock = true
		}
	}
	finish()

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading %s file: %w", format, err)
	}

	return &Subtitle{Entries: entries, Format: string(format)}, nil
}

func isVTTBlock(line string) bool {
	for _, prefix := range []string{"WEBVTT", "NOTE", "STYLE", "REGION"} {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}

// parses [hours, minutes, seconds, millis]; hours may be empty
func parseClock(parts []string) (time.Duration, error) {
	var values [4]int
	for i, p := range parts {
		if p == "" {
			continue
		}
		v, err := strconv.Atoi(p)
		if err != nil {
			return 0, err
		}
		values[i] = v
	}
	if values[1] > 59 || values[2] > 59 {
		return 0, fmt.Errorf("minutes and seconds must be below 60")
	}

	return time.Duration(values[0])*time.Hour +
		time.Duration(values[1])*time.Minute +
		time.Duration(values[2])*time.Second +
		time.Duration(values[3])*time.Millisecond, nil
}
