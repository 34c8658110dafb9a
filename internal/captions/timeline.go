package captions

import (
	"errors"

	"github.com/andigenesis/brainrot-generator/internal/timing"
)

// DefaultBlockSize is the number of words shown on screen at once.
const DefaultBlockSize = 6

// Block is an ordered window of word spans displayed together. Blocks are
// contiguous and non-overlapping in time; gaps between adjacent blocks
// represent narration pauses.
type Block struct {
	Words   []timing.WordSpan
	StartMS int64
	EndMS   int64
}

// Timeline is the immutable block sequence covering one narration.
type Timeline struct {
	blocks []Block
}

// Build partitions spans into blocks of at most blockSize words, in input
// order. The final block may be shorter. blockSize values below 1 fall back
// to DefaultBlockSize.
func Build(spans []timing.WordSpan, blockSize int) (*Timeline, error) {
	if len(spans) == 0 {
		return nil, errors.New("captions: no word spans to window")
	}
	if blockSize < 1 {
		blockSize = DefaultBlockSize
	}

	blocks := make([]Block, 0, (len(spans)+blockSize-1)/blockSize)
	for start := 0; start < len(spans); start += blockSize {
		end := start + blockSize
		if end > len(spans) {
			end = len(spans)
		}
		group := spans[start:end]
		blocks = append(blocks, Block{
			Words:   group,
			StartMS: group[0].StartMS,
			EndMS:   group[len(group)-1].EndMS,
		})
	}
	return &Timeline{blocks: blocks}, nil
}

// Blocks returns the ordered block sequence.
func (t *Timeline) Blocks() []Block {
	return t.blocks
}

// Len returns the number of blocks.
func (t *Timeline) Len() int {
	return len(t.blocks)
}

// DurationMS returns the end of the final block.
func (t *Timeline) DurationMS() int64 {
	if len(t.blocks) == 0 {
		return 0
	}
	return t.blocks[len(t.blocks)-1].EndMS
}
