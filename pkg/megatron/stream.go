package megatron

import (
	"context"

	"github.com/pkg/errors"

	"github.com/askiada/megatron/pkg/megatron/model"
)

// Stream is the lazy, single-pass result sequence of TransformGenerator.
// It is pull-based: one batch is drawn from the producer and run through the
// pipeline per call to Next, and nothing is buffered beyond the batch in
// flight. A Stream is not restartable.
type Stream struct {
	ctx      context.Context
	pipe     *Pipeline
	producer model.BatchProducer
	steps    int
	drawn    int
	out      map[string]*model.Tensor
	err      error
	done     bool
}

// TransformGenerator transforms exactly steps batches drawn one at a time
// from the producer. Over the same batches and fit state it produces
// bit-identical outputs to repeated Transform calls, in order. Cancellation
// is caller-driven: stop calling Next.
func (p *Pipeline) TransformGenerator(ctx context.Context, producer model.BatchProducer, steps int) (*Stream, error) {
	if producer == nil {
		return nil, ErrProducerMustBeSet
	}
	if steps <= 0 {
		return nil, ErrStepsMustBePositive
	}
	if err := p.checkFitted(); err != nil {
		return nil, err
	}

	return &Stream{ctx: ctx, pipe: p, producer: producer, steps: steps}, nil
}

// Next advances the stream by one batch. It returns false once steps results
// were produced, or when the producer is exhausted or a transform failed, in
// which case Err reports the cause.
func (s *Stream) Next() bool {
	if s.done || s.err != nil {
		return false
	}
	if s.drawn == s.steps {
		s.done = true

		return false
	}

	batch, err := s.producer.Next(s.ctx)
	if errors.Is(err, model.ErrEndOfStream) {
		s.err = errors.Wrapf(ErrStarvedGenerator, "drew %d of %d batches", s.drawn, s.steps)
		s.done = true

		return false
	}
	if err != nil {
		s.err = errors.Wrapf(err, "unable to draw batch %d", s.drawn)
		s.done = true

		return false
	}

	out, err := s.pipe.Transform(s.ctx, batch)
	if err != nil {
		s.err = err
		s.done = true

		return false
	}

	s.out = out
	s.drawn++

	return true
}

// Output returns the result of the last successful Next call.
func (s *Stream) Output() map[string]*model.Tensor {
	return s.out
}

// Err returns the error that terminated the stream, if any. Reaching the
// requested step count is not an error.
func (s *Stream) Err() error {
	return s.err
}
