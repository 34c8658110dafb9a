package edgetts

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/andigenesis/brainrot-generator/internal/timing"
)

const ticksPerMS = 10_000

// boundaryEvent is one word boundary line in the engine's JSON stream.
// Offset and duration are in 100-nanosecond ticks.
type boundaryEvent struct {
	Type     string `json:"type"`
	Offset   int64  `json:"offset"`
	Duration int64  `json:"duration"`
	Text     string `json:"text"`
}

// ParseBoundaries reads a word boundary file in either of the shapes the
// engine emits: JSON lines with tick offsets, or an SRT with one word per
// cue. Returns nil events when the file holds nothing usable.
func ParseBoundaries(path string) ([]timing.Event, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return nil, fmt.Errorf("boundary file %s is empty", path)
	}
	if strings.HasPrefix(trimmed, "{") {
		return parseJSONLines(trimmed)
	}
	return parseWordSRT(trimmed)
}

func parseJSONLines(content string) ([]timing.Event, error) {
	var events []timing.Event
	scanner := bufio.NewScanner(strings.NewReader(content))
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var ev boundaryEvent
		if err := json.Unmarshal([]byte(line), &ev); err != nil {
			return nil, fmt.Errorf("parse boundary line: %w", err)
		}
		if ev.Type != "" && !strings.EqualFold(ev.Type, "WordBoundary") {
			continue
		}
		events = append(events, timing.Event{
			Text:          ev.Text,
			OffsetTicks:   ev.Offset,
			DurationTicks: ev.Duration,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, fmt.Errorf("boundary stream carried no word events")
	}
	return events, nil
}

// parseWordSRT reads one-word-per-cue subtitles and converts cue times to
// ticks so both boundary shapes normalize identically downstream.
func parseWordSRT(content string) ([]timing.Event, error) {
	var events []timing.Event
	blocks := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n\n")
	for _, block := range blocks {
		lines := strings.Split(strings.TrimSpace(block), "\n")
		if len(lines) < 3 {
			continue
		}
		startMS, endMS, err := parseSRTTimes(lines[1])
		if err != nil {
			continue
		}
		text := strings.TrimSpace(strings.Join(lines[2:], " "))
		if text == "" {
			continue
		}
		events = append(events, timing.Event{
			Text:          text,
			OffsetTicks:   startMS * ticksPerMS,
			DurationTicks: (endMS - startMS) * ticksPerMS,
		})
	}
	if len(events) == 0 {
		return nil, fmt.Errorf("subtitle stream carried no word cues")
	}
	return events, nil
}

func parseSRTTimes(line string) (startMS, endMS int64, err error) {
	parts := strings.Split(line, "-->")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("malformed cue timing %q", line)
	}
	startMS, err = parseSRTTimestamp(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, err
	}
	endMS, err = parseSRTTimestamp(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, err
	}
	return startMS, endMS, nil
}

func parseSRTTimestamp(value string) (int64, error) {
	// HH:MM:SS,mmm
	value = strings.ReplaceAll(value, ",", ".")
	fields := strings.Split(value, ":")
	if len(fields) != 3 {
		return 0, fmt.Errorf("malformed timestamp %q", value)
	}
	hours, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return 0, err
	}
	minutes, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return 0, err
	}
	seconds, err := strconv.ParseFloat(fields[2], 64)
	if err != nil {
		return 0, err
	}
	return hours*3600_000 + minutes*60_000 + int64(seconds*1000), nil
}
