package timing

import (
	"errors"
	"strings"
)

// ticksPerMS is the number of 100-nanosecond ticks in one millisecond.
const ticksPerMS = 10_000

// ErrTimingDataInvalid reports that the event stream carried no usable word
// timing: every event was empty, zero-length, or the stream itself was empty.
var ErrTimingDataInvalid = errors.New("timing data invalid")

// Event is one raw word boundary reported by the narration engine.
type Event struct {
	Text          string
	OffsetTicks   int64
	DurationTicks int64
}

// WordSpan is one spoken word's start and end time in the narration audio.
// Spans produced by Normalize are strictly ordered and never overlap.
type WordSpan struct {
	Text    string
	StartMS int64
	EndMS   int64
}

// DurationMS returns the span length in milliseconds.
func (s WordSpan) DurationMS() int64 {
	return s.EndMS - s.StartMS
}

// Source is the tagged input to Normalize: either precise boundary events
// from the engine, or an approximate split over the narration duration for
// engines that report none.
type Source struct {
	events  []Event
	totalMS int64
	words   []string
	approx  bool
}

// Precise wraps an ordered boundary event stream.
func Precise(events []Event) Source {
	return Source{events: events}
}

// ApproximateFromDuration synthesizes timing for text whose engine supplied
// no boundary events, splitting totalMS across words by character count.
func ApproximateFromDuration(totalMS int64, words []string) Source {
	return Source{totalMS: totalMS, words: words, approx: true}
}

// Approximate reports whether the source is the synthesized fallback.
func (s Source) Approximate() bool {
	return s.approx
}

// Result carries the normalized span sequence and whether it came from the
// approximate fallback path.
type Result struct {
	Spans       []WordSpan
	Approximate bool
}

// DurationMS returns the end of the final span, or 0 for an empty result.
func (r Result) DurationMS() int64 {
	if len(r.Spans) == 0 {
		return 0
	}
	return r.Spans[len(r.Spans)-1].EndMS
}

// Normalize converts a timing source into a monotonic millisecond span
// sequence. Overlapping starts are clamped to the previous span's end;
// events left with no duration after clamping are dropped. It returns
// ErrTimingDataInvalid when nothing usable remains.
func Normalize(src Source) (Result, error) {
	if src.approx {
		spans, err := approximateSpans(src.totalMS, src.words)
		if err != nil {
			return Result{}, err
		}
		return Result{Spans: spans, Approximate: true}, nil
	}

	spans := make([]WordSpan, 0, len(src.events))
	var prevEnd int64
	for _, event := range src.events {
		text := strings.TrimSpace(event.Text)
		if text == "" || event.DurationTicks <= 0 {
			continue
		}
		start := roundTicksToMS(event.OffsetTicks)
		end := roundTicksToMS(event.OffsetTicks + event.DurationTicks)
		if start < prevEnd {
			start = prevEnd
		}
		if end <= start {
			continue
		}
		spans = append(spans, WordSpan{Text: text, StartMS: start, EndMS: end})
		prevEnd = end
	}
	if len(spans) == 0 {
		return Result{}, ErrTimingDataInvalid
	}
	return Result{Spans: spans}, nil
}

// roundTicksToMS converts 100-nanosecond ticks to the nearest millisecond.
func roundTicksToMS(ticks int64) int64 {
	if ticks <= 0 {
		return 0
	}
	return (ticks + ticksPerMS/2) / ticksPerMS
}

// approximateSpans splits totalMS across words proportionally to character
// count, so longer words occupy more of the narration.
func approximateSpans(totalMS int64, words []string) ([]WordSpan, error) {
	cleaned := make([]string, 0, len(words))
	var totalChars int64
	for _, word := range words {
		trimmed := strings.TrimSpace(word)
		if trimmed == "" {
			continue
		}
		cleaned = append(cleaned, trimmed)
		totalChars += int64(len([]rune(trimmed)))
	}
	if len(cleaned) == 0 || totalMS <= 0 || totalChars == 0 {
		return nil, ErrTimingDataInvalid
	}

	spans := make([]WordSpan, 0, len(cleaned))
	var consumedChars int64
	var cursor int64
	for i, word := range cleaned {
		consumedChars += int64(len([]rune(word)))
		end := totalMS * consumedChars / totalChars
		if i == len(cleaned)-1 {
			end = totalMS
		}
		if end <= cursor {
			end = cursor + 1
		}
		spans = append(spans, WordSpan{Text: word, StartMS: cursor, EndMS: end})
		cursor = end
	}
	return spans, nil
}
