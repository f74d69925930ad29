package app

import (
	"context"
	"fmt"
	"log"

	"github.com/jacobclarklds/openlings-chess-app/app/models"
)

// Evaluator is the scoring oracle the coordinator talks to. *UCIEngine
// implements it; tests substitute fakes.
type Evaluator interface {
	EvalFEN(ctx context.Context, fen string, settings models.EngineSettings) (models.UCIScore, error)
}

// EnginePool holds a fixed number of engine handles behind a channel.
// Checkout/checkin is serialized per handle, so two evaluations can never
// overlap on the same engine session.
type EnginePool struct {
	handles chan Evaluator
	closers []func() error
}

// NewEnginePool starts size engines from the given factory. If any engine
// fails to start the pool is torn down and the error returned.
func NewEnginePool(size int, factory func() (Evaluator, error)) (*EnginePool, error) {
	if size <= 0 {
		size = 1
	}
	p := &EnginePool{handles: make(chan Evaluator, size)}
	for i := 0; i < size; i++ {
		e, err := factory()
		if err != nil {
			p.Close()
			return nil, fmt.Errorf("engine pool: start engine %d: %w", i, err)
		}
		if c, ok := e.(interface{ Close() error }); ok {
			p.closers = append(p.closers, c.Close)
		}
		p.handles <- e
	}
	return p, nil
}

// NewUCIEnginePool builds a pool of UCI engine processes at the given path.
func NewUCIEnginePool(path string, size int) (*EnginePool, error) {
	return NewEnginePool(size, func() (Evaluator, error) {
		eng, err := NewUCIEngine(path)
		if err != nil {
			return nil, err
		}
		if err := eng.NewGame(); err != nil {
			return nil, err
		}
		return eng, nil
	})
}

// Acquire checks out a handle, blocking until one is free or ctx is done.
func (p *EnginePool) Acquire(ctx context.Context) (Evaluator, error) {
	select {
	case e := <-p.handles:
		return e, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Release returns a handle to the pool. The slot must always be released,
// even when the evaluation it served was abandoned.
func (p *EnginePool) Release(e Evaluator) {
	select {
	case p.handles <- e:
	default:
		// Releasing more handles than were acquired is a programming error;
		// drop rather than block.
		log.Printf("engine pool: release with full pool, dropping handle")
	}
}

// Size reports the pool capacity.
func (p *EnginePool) Size() int { return cap(p.handles) }

func (p *EnginePool) Close() {
	for _, c := range p.closers {
		if err := c(); err != nil {
			log.Printf("engine pool: close engine: %v", err)
		}
	}
}
