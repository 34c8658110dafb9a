package background

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"path/filepath"
	"strings"
	"time"
)

// ErrNoBackgroundAssets reports an empty clip pool. There is no sensible
// default visual, so this aborts the job.
var ErrNoBackgroundAssets = errors.New("no background assets")

// Plan describes how a chosen clip is trimmed or looped to cover the
// narration duration exactly.
type Plan struct {
	Clip          string
	ClipMS        int64
	StartOffsetMS int64 // trim start when the clip is longer than the target
	Loops         int   // total plays of the clip; 1 means no looping
	TargetMS      int64
}

// Looped reports whether the clip must repeat to cover the target.
func (p Plan) Looped() bool {
	return p.Loops > 1
}

// ProbeFunc reports a clip's duration in milliseconds.
type ProbeFunc func(ctx context.Context, path string) (int64, error)

// Selector chooses backdrop clips from a shared read-only pool. A fixed seed
// makes clip and offset choice reproducible across renders.
type Selector struct {
	pool  []string
	rng   *rand.Rand
	probe ProbeFunc
}

// NewSelector builds a selector over the given pool. Seed 0 selects from the
// clock; any other value pins the random sequence.
func NewSelector(pool []string, seed int64, probe ProbeFunc) *Selector {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	cp := make([]string, len(pool))
	copy(cp, pool)
	return &Selector{
		pool:  cp,
		rng:   rand.New(rand.NewSource(seed)),
		probe: probe,
	}
}

// PoolSize returns the number of candidate clips.
func (s *Selector) PoolSize() int {
	return len(s.pool)
}

// Choose picks a clip (uniform-random unless requested names one) and builds
// its trim/loop plan for the target duration.
func (s *Selector) Choose(ctx context.Context, targetMS int64, requested string) (Plan, error) {
	if targetMS <= 0 {
		return Plan{}, fmt.Errorf("background: target duration %dms is not positive", targetMS)
	}

	clip, err := s.pickClip(requested)
	if err != nil {
		return Plan{}, err
	}

	clipMS, err := s.probe(ctx, clip)
	if err != nil {
		return Plan{}, fmt.Errorf("background: probe %s: %w", filepath.Base(clip), err)
	}
	if clipMS <= 0 {
		return Plan{}, fmt.Errorf("background: clip %s has no duration", filepath.Base(clip))
	}

	plan := Plan{Clip: clip, ClipMS: clipMS, TargetMS: targetMS}
	if clipMS >= targetMS {
		plan.Loops = 1
		if slack := clipMS - targetMS; slack > 0 {
			plan.StartOffsetMS = s.rng.Int63n(slack + 1)
		}
		return plan, nil
	}

	// Loop from the start until the concatenation covers the target, then
	// the encode trims the tail to exactly the target.
	plan.Loops = int((targetMS + clipMS - 1) / clipMS)
	return plan, nil
}

func (s *Selector) pickClip(requested string) (string, error) {
	if requested = strings.TrimSpace(requested); requested != "" {
		for _, clip := range s.pool {
			if clip == requested || filepath.Base(clip) == requested {
				return clip, nil
			}
		}
		return "", fmt.Errorf("background: requested clip %q not in pool", requested)
	}
	if len(s.pool) == 0 {
		return "", ErrNoBackgroundAssets
	}
	return s.pool[s.rng.Intn(len(s.pool))], nil
}
