package scan

import (
	"context"
	"fmt"
	"slices"

	"github.com/outofforest/logger"
	"github.com/outofforest/parallel"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/outofforest/seedhash/hasher"
	"github.com/outofforest/seedhash/index"
	"github.com/outofforest/seedhash/scheme"
	"github.com/outofforest/seedhash/types"
	"github.com/outofforest/seedhash/window"
)

// Config stores scanner configuration.
type Config struct {
	Scheme    *scheme.Scheme
	Table     *index.Table
	Workers   int
	ChunkSize int
}

// Run scans the reference looking for the reads stored in the table. Chunks of the reference are
// scanned by workers in parallel, but sink is called sequentially in the order of positions.
func Run(ctx context.Context, config Config, reference []byte, sink index.Sink) error {
	if err := validate(config); err != nil {
		return err
	}

	numOfChunks := (len(reference) + config.ChunkSize - 1) / config.ChunkSize
	keys, postings := config.Table.Stats()
	log := logger.Get(ctx)
	log.Info("Scanning reference",
		zap.String("scheme", config.Scheme.Name()),
		zap.Uint64("keys", keys),
		zap.Uint64("postings", postings),
		zap.Int("bases", len(reference)),
		zap.Int("chunks", numOfChunks),
		zap.Int("workers", config.Workers))

	if numOfChunks == 0 {
		return nil
	}

	chunkCh := make(chan int)
	resultCh := make(chan chunkResult)

	return parallel.Run(ctx, func(ctx context.Context, spawn parallel.SpawnFn) error {
		spawn("chunks", parallel.Continue, func(ctx context.Context) error {
			defer close(chunkCh)

			for i := range numOfChunks {
				select {
				case <-ctx.Done():
					return errors.WithStack(ctx.Err())
				case chunkCh <- i:
				}
			}
			return nil
		})

		for i := range config.Workers {
			spawn(fmt.Sprintf("worker-%02d", i), parallel.Continue, func(ctx context.Context) error {
				w, err := newWorker(config)
				if err != nil {
					return err
				}

				for chunk := range chunkCh {
					start := chunk * config.ChunkSize
					end := min(start+config.ChunkSize, len(reference))
					hits, err := w.Scan(reference, start, end)
					if err != nil {
						return err
					}

					select {
					case <-ctx.Done():
						return errors.WithStack(ctx.Err())
					case resultCh <- chunkResult{Chunk: chunk, Hits: hits}:
					}
				}
				return nil
			})
		}

		spawn("collector", parallel.Continue, func(ctx context.Context) error {
			pending := map[int][]hit{}
			var next, numOfCandidates int
			for next < numOfChunks {
				select {
				case <-ctx.Done():
					return errors.WithStack(ctx.Err())
				case result := <-resultCh:
					pending[result.Chunk] = result.Hits
				}

				for {
					hits, exists := pending[next]
					if !exists {
						break
					}
					delete(pending, next)
					next++

					for _, h := range hits {
						numOfCandidates += len(h.Candidates)
						if err := sink(h.Position, h.Candidates); err != nil {
							return err
						}
					}
				}
			}

			log.Info("Reference scanned", zap.Int("candidates", numOfCandidates))
			return nil
		})

		return nil
	})
}

func validate(config Config) error {
	switch {
	case config.Scheme == nil:
		return errors.New("scheme is not set")
	case config.Table == nil:
		return errors.New("table is not set")
	case config.Workers <= 0:
		return errors.Errorf("invalid number of workers: %d", config.Workers)
	case config.ChunkSize <= 0:
		return errors.Errorf("invalid chunk size: %d", config.ChunkSize)
	}
	return config.Table.Compatible(config.Scheme)
}

type hit struct {
	Position   types.Position
	Candidates []index.Candidate
}

type chunkResult struct {
	Chunk int
	Hits  []hit
}

func newWorker(config Config) (*worker, error) {
	w := &worker{}
	probe, err := index.NewProbe(config.Table, config.Scheme, w.collect)
	if err != nil {
		return nil, err
	}
	w.hasher = hasher.New(config.Scheme, &w.acc, nil, probe)
	return w, nil
}

// worker owns the window state of one scanning goroutine.
type worker struct {
	acc    window.Accumulator
	hasher *hasher.Hasher
	hits   []hit
}

// Scan returns candidates of template windows ending in [start, end). Window is primed with the
// bases preceding the chunk so results don't depend on chunk boundaries.
func (w *worker) Scan(reference []byte, start, end int) ([]hit, error) {
	w.acc.Reset()
	w.hits = nil

	for i := max(0, start-types.PlaneBits); i < end; i++ {
		w.acc.AddBase(reference[i])
		if i < start {
			continue
		}

		win := w.acc.Window()
		if err := w.hasher.TemplateAll(types.Position(i), win.V0, win.V1); err != nil {
			return nil, err
		}
	}
	return w.hits, nil
}

func (w *worker) collect(position types.Position, candidates []index.Candidate) error {
	w.hits = append(w.hits, hit{
		Position:   position,
		Candidates: slices.Clone(candidates),
	})
	return nil
}
