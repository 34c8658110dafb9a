package compose

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"golang.org/x/sync/errgroup"
)

// ErrEncodeFailure marks frame delivery into the encoder failing. Callers
// match it with errors.Is to classify the stage failure.
var ErrEncodeFailure = errors.New("encode failure")

type renderJob struct {
	idx int
	buf []byte
}

// Render streams the job: it reads raw backdrop frames from src in order,
// composites captions and overlays across the worker pool, and writes
// finished frames to dst in strict index order. progress, when non-nil, is
// called after every delivered frame. On error or cancellation the stream
// stops and the partial output is the caller's to discard.
func (c *Compositor) Render(ctx context.Context, src io.Reader, dst io.Writer, progress func(done, total int)) error {
	total := c.totalFrames
	frameSize := c.FrameSize()
	bufs := sync.Pool{New: func() any { return make([]byte, frameSize) }}

	g, ctx := errgroup.WithContext(ctx)
	jobs := make(chan renderJob, c.opts.Workers)
	results := make(chan renderJob, c.opts.Workers)

	// Reader: the backdrop decodes once, sequentially.
	g.Go(func() error {
		defer close(jobs)
		for idx := 0; idx < total; idx++ {
			buf := bufs.Get().([]byte)
			if _, err := io.ReadFull(src, buf); err != nil {
				return fmt.Errorf("read backdrop frame %d: %w", idx, err)
			}
			select {
			case jobs <- renderJob{idx: idx, buf: buf}:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	var workers sync.WaitGroup
	for i := 0; i < c.opts.Workers; i++ {
		workers.Add(1)
		g.Go(func() error {
			defer workers.Done()
			face, err := newFace(c.opts.Font, c.opts.FontSize)
			if err != nil {
				return err
			}
			defer face.Close()
			for job := range jobs {
				if err := c.RenderInto(job.buf, job.idx, face); err != nil {
					return err
				}
				select {
				case results <- job:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
			return nil
		})
	}
	go func() {
		workers.Wait()
		close(results)
	}()

	// Writer: the reorder buffer holds out-of-order frames until their
	// predecessors have been written.
	g.Go(func() error {
		pending := make(map[int][]byte, c.opts.Workers)
		next := 0
		for res := range results {
			pending[res.idx] = res.buf
			for {
				buf, ok := pending[next]
				if !ok {
					break
				}
				delete(pending, next)
				if _, err := dst.Write(buf); err != nil {
					return fmt.Errorf("%w: write frame %d: %v", ErrEncodeFailure, next, err)
				}
				bufs.Put(buf)
				next++
				if progress != nil {
					progress(next, total)
				}
			}
		}
		if next != total {
			if err := ctx.Err(); err != nil {
				return err
			}
			return fmt.Errorf("%w: delivered %d of %d frames", ErrEncodeFailure, next, total)
		}
		return nil
	})

	return g.Wait()
}
