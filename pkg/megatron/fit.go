package megatron

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/askiada/megatron/pkg/megatron/model"
)

// Fit learns the parameters of every stateful layer from a fully materialised
// batch. Each layer instance is fitted exactly once with the batches reaching
// all of its application sites; calling Fit again re-learns from scratch.
func (p *Pipeline) Fit(ctx context.Context, batch model.Batch) error {
	records, err := p.validateBatch(batch)
	if err != nil {
		return err
	}

	_, err = p.forward(ctx, batch, fitPass)
	if err != nil {
		return err
	}

	p.logger.Info("pipeline fitted",
		zap.String("pipeline", p.name),
		zap.Int("records", records))

	return nil
}

// PartialFit folds one more batch into the fit state of every layer that
// supports online updates. A stateful layer without incremental support must
// already be fitted, otherwise PartialFit fails with ErrNotIncremental.
func (p *Pipeline) PartialFit(ctx context.Context, batch model.Batch) error {
	_, err := p.validateBatch(batch)
	if err != nil {
		return err
	}

	_, err = p.forward(ctx, batch, partialFitPass)

	return err
}

// FitGenerator draws steps batches from the producer, concatenates them and
// fits the pipeline once over the combined records. If the producer is
// exhausted before steps batches were drawn, it fails with
// ErrStarvedGenerator and no layer is fitted.
func (p *Pipeline) FitGenerator(ctx context.Context, producer model.BatchProducer, steps int) error {
	if producer == nil {
		return ErrProducerMustBeSet
	}
	if steps <= 0 {
		return ErrStepsMustBePositive
	}

	batches := make([]model.Batch, 0, steps)
	for i := 0; i < steps; i++ {
		batch, err := producer.Next(ctx)
		if errors.Is(err, model.ErrEndOfStream) {
			return errors.Wrapf(ErrStarvedGenerator, "drew %d of %d batches", i, steps)
		}
		if err != nil {
			return errors.Wrapf(err, "unable to draw batch %d", i)
		}
		batches = append(batches, batch)
	}

	combined, err := model.ConcatBatches(batches)
	if err != nil {
		return errors.Wrap(err, "unable to combine drawn batches")
	}

	return p.Fit(ctx, combined)
}

// checkFitted verifies every layer is ready to transform.
func (p *Pipeline) checkFitted() error {
	for _, node := range p.path {
		if node.IsInput() {
			continue
		}
		if !node.Layer().Fitted() {
			return errors.Wrapf(ErrNotFitted, "layer %s at node %q", node.Layer().Kind(), node.Name())
		}
	}

	return nil
}
