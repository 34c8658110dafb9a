package captions

import "sort"

// NoWord marks a resolved position with no emphasized word: the timestamp
// falls in an inter-word gap, before the first span, or after the last.
const NoWord = -1

// Position identifies the block on screen and the emphasized word within it
// at a resolved timestamp.
type Position struct {
	Block int
	Word  int
}

// Resolve returns the caption position for a playback timestamp. It is total:
// timestamps before the first word show the first block with no emphasis, and
// timestamps past the last word hold the final block with no emphasis rather
// than flashing back to the start. Resolution is a binary search over block
// boundaries followed by a scan bounded by the block size.
func (t *Timeline) Resolve(tMS int64) Position {
	if len(t.blocks) == 0 {
		return Position{Block: 0, Word: NoWord}
	}

	if tMS < t.blocks[0].StartMS {
		return Position{Block: 0, Word: NoWord}
	}
	last := len(t.blocks) - 1
	if tMS >= t.blocks[last].EndMS {
		return Position{Block: last, Word: NoWord}
	}

	// First block whose end is past the timestamp. A timestamp in the gap
	// before that block's start belongs to the pause after the previous
	// block, which stays on screen without emphasis.
	idx := sort.Search(len(t.blocks), func(i int) bool {
		return t.blocks[i].EndMS > tMS
	})
	block := t.blocks[idx]
	if tMS < block.StartMS {
		return Position{Block: idx - 1, Word: NoWord}
	}
	for w, word := range block.Words {
		if tMS >= word.StartMS && tMS < word.EndMS {
			return Position{Block: idx, Word: w}
		}
	}
	return Position{Block: idx, Word: NoWord}
}
