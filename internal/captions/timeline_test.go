package captions

import (
	"fmt"
	"strings"
	"testing"

	"github.com/andigenesis/brainrot-generator/internal/timing"
)

// evenSpans builds count words timed back to back, every stepMS milliseconds.
func evenSpans(count int, stepMS int64) []timing.WordSpan {
	spans := make([]timing.WordSpan, 0, count)
	for i := 0; i < count; i++ {
		spans = append(spans, timing.WordSpan{
			Text:    fmt.Sprintf("word%d", i),
			StartMS: int64(i) * stepMS,
			EndMS:   int64(i+1) * stepMS,
		})
	}
	return spans
}

func TestBuildEvenBlocks(t *testing.T) {
	// 24 words every 500ms over 12s with block size 6 must yield 4 blocks
	// ending at 3000, 6000, 9000, and 12000ms.
	timeline, err := Build(evenSpans(24, 500), 6)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	blocks := timeline.Blocks()
	if len(blocks) != 4 {
		t.Fatalf("block count = %d, want 4", len(blocks))
	}
	wantEnds := []int64{3000, 6000, 9000, 12000}
	for i, block := range blocks {
		if len(block.Words) != 6 {
			t.Fatalf("block %d has %d words, want 6", i, len(block.Words))
		}
		if block.EndMS != wantEnds[i] {
			t.Fatalf("block %d ends at %d, want %d", i, block.EndMS, wantEnds[i])
		}
	}
	if timeline.DurationMS() != 12000 {
		t.Fatalf("duration = %d, want 12000", timeline.DurationMS())
	}
}

func TestBuildShortFinalBlock(t *testing.T) {
	timeline, err := Build(evenSpans(8, 400), 6)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	blocks := timeline.Blocks()
	if len(blocks) != 2 {
		t.Fatalf("block count = %d, want 2", len(blocks))
	}
	if len(blocks[1].Words) != 2 {
		t.Fatalf("final block has %d words, want 2", len(blocks[1].Words))
	}
}

func TestBuildSingleWord(t *testing.T) {
	timeline, err := Build(evenSpans(1, 700), 6)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if timeline.Len() != 1 {
		t.Fatalf("block count = %d, want 1", timeline.Len())
	}
}

func TestBuildRejectsEmptyInput(t *testing.T) {
	if _, err := Build(nil, 6); err == nil {
		t.Fatal("expected error for empty span sequence")
	}
}

func TestBuildBlocksAreContiguousNonOverlapping(t *testing.T) {
	spans := []timing.WordSpan{
		{Text: "a", StartMS: 0, EndMS: 300},
		{Text: "b", StartMS: 350, EndMS: 600},
		{Text: "c", StartMS: 900, EndMS: 1200}, // pause before this word
		{Text: "d", StartMS: 1200, EndMS: 1500},
	}
	timeline, err := Build(spans, 2)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	blocks := timeline.Blocks()
	for i := 1; i < len(blocks); i++ {
		if blocks[i-1].EndMS > blocks[i].StartMS {
			t.Fatalf("block %d end %d overlaps block %d start %d",
				i-1, blocks[i-1].EndMS, i, blocks[i].StartMS)
		}
	}
}

func TestResolveActiveWord(t *testing.T) {
	timeline, err := Build(evenSpans(12, 500), 6)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	cases := []struct {
		tMS       int64
		wantBlock int
		wantWord  int
	}{
		{0, 0, 0},
		{499, 0, 0},
		{500, 0, 1},
		{2999, 0, 5},
		{3000, 1, 0},
		{5999, 1, 5},
	}
	for _, tc := range cases {
		got := timeline.Resolve(tc.tMS)
		if got.Block != tc.wantBlock || got.Word != tc.wantWord {
			t.Fatalf("Resolve(%d) = %+v, want block %d word %d",
				tc.tMS, got, tc.wantBlock, tc.wantWord)
		}
	}
}

func TestResolveBeforeFirstAndAfterLast(t *testing.T) {
	spans := evenSpans(6, 500)
	for i := range spans {
		spans[i].StartMS += 1000
		spans[i].EndMS += 1000
	}
	timeline, err := Build(spans, 6)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	before := timeline.Resolve(200)
	if before.Block != 0 || before.Word != NoWord {
		t.Fatalf("before-first = %+v, want block 0 with no word", before)
	}

	after := timeline.Resolve(10_000)
	if after.Block != timeline.Len()-1 || after.Word != NoWord {
		t.Fatalf("after-last = %+v, want final block with no word", after)
	}
}

func TestResolveHoldsPreviousBlockThroughGaps(t *testing.T) {
	spans := []timing.WordSpan{
		{Text: "a", StartMS: 0, EndMS: 500},
		{Text: "b", StartMS: 500, EndMS: 1000},
		// 2s pause.
		{Text: "c", StartMS: 3000, EndMS: 3500},
		{Text: "d", StartMS: 3500, EndMS: 4000},
	}
	timeline, err := Build(spans, 2)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	gap := timeline.Resolve(2000)
	if gap.Block != 0 || gap.Word != NoWord {
		t.Fatalf("gap position = %+v, want held block 0 with no word", gap)
	}
}

func TestResolveWordGapWithinBlock(t *testing.T) {
	spans := []timing.WordSpan{
		{Text: "a", StartMS: 0, EndMS: 400},
		{Text: "b", StartMS: 600, EndMS: 1000}, // 200ms breath between words
	}
	timeline, err := Build(spans, 6)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	got := timeline.Resolve(500)
	if got.Block != 0 || got.Word != NoWord {
		t.Fatalf("inter-word gap = %+v, want block 0 with no word", got)
	}
}

func TestResolveTotalAndMonotonic(t *testing.T) {
	spans := []timing.WordSpan{
		{Text: "a", StartMS: 100, EndMS: 450},
		{Text: "b", StartMS: 500, EndMS: 900},
		{Text: "c", StartMS: 1400, EndMS: 2000},
		{Text: "d", StartMS: 2000, EndMS: 2600},
		{Text: "e", StartMS: 2650, EndMS: 3100},
	}
	timeline, err := Build(spans, 2)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	prevBlock := 0
	for tMS := int64(0); tMS <= timeline.DurationMS()+500; tMS += 7 {
		pos := timeline.Resolve(tMS)
		if pos.Block < 0 || pos.Block >= timeline.Len() {
			t.Fatalf("Resolve(%d) = block %d out of range", tMS, pos.Block)
		}
		if pos.Block < prevBlock {
			t.Fatalf("block index regressed at t=%d: %d -> %d", tMS, prevBlock, pos.Block)
		}
		prevBlock = pos.Block

		// Pure function: identical input, identical output.
		if again := timeline.Resolve(tMS); again != pos {
			t.Fatalf("Resolve(%d) not deterministic: %+v then %+v", tMS, pos, again)
		}
	}
}

func TestWriteSRT(t *testing.T) {
	spans := []timing.WordSpan{
		{Text: "never", StartMS: 0, EndMS: 400},
		{Text: "gonna", StartMS: 400, EndMS: 800},
		{Text: "give", StartMS: 1200, EndMS: 1600},
		{Text: "you", StartMS: 1600, EndMS: 2000},
	}
	timeline, err := Build(spans, 2)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	var sb strings.Builder
	if err := timeline.WriteSRT(&sb); err != nil {
		t.Fatalf("WriteSRT: %v", err)
	}
	out := sb.String()

	if !strings.Contains(out, "1\n00:00:00,000 --> 00:00:01,200\nnever gonna\n") {
		t.Fatalf("first cue missing or wrong:\n%s", out)
	}
	if !strings.Contains(out, "2\n00:00:01,200 --> 00:00:02,000\ngive you\n") {
		t.Fatalf("second cue missing or wrong:\n%s", out)
	}
}
