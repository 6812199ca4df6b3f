package model

import (
	"context"

	"github.com/pkg/errors"
)

// Batch maps input node names to a tensor of records. All tensors in one
// batch must hold the same number of records.
type Batch map[string]*Tensor

// Records returns the common record count of the batch.
func (b Batch) Records() (int, error) {
	records := -1
	for name, tensor := range b {
		if tensor == nil {
			return 0, errors.Wrapf(ErrInvalidTensor, "input %q is nil", name)
		}
		if records == -1 {
			records = tensor.Records()

			continue
		}
		if tensor.Records() != records {
			return 0, errors.Wrapf(ErrRaggedBatch, "input %q holds %d records, expected %d",
				name, tensor.Records(), records)
		}
	}
	if records == -1 {
		records = 0
	}

	return records, nil
}

// ConcatBatches stacks several batches along the record dimension. All batches
// must cover the same input names.
func ConcatBatches(batches []Batch) (Batch, error) {
	if len(batches) == 0 {
		return Batch{}, nil
	}

	out := Batch{}
	for name := range batches[0] {
		parts := make([]*Tensor, 0, len(batches))
		for _, batch := range batches {
			tensor, ok := batch[name]
			if !ok {
				return nil, errors.Wrapf(ErrRaggedBatch, "input %q missing from a batch", name)
			}
			parts = append(parts, tensor)
		}
		combined, err := Concat(parts...)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to concatenate input %q", name)
		}
		out[name] = combined
	}

	return out, nil
}

// BatchProducer yields successive batches for the streaming execution modes.
// Next returns ErrEndOfStream once the underlying source is exhausted.
// Producers are pull-based: the executor never requests more than one batch
// ahead of the caller.
type BatchProducer interface {
	Next(ctx context.Context) (Batch, error)
}

type sliceProducer struct {
	batches []Batch
	idx     int
}

func (p *sliceProducer) Next(_ context.Context) (Batch, error) {
	if p.idx >= len(p.batches) {
		return nil, ErrEndOfStream
	}
	batch := p.batches[p.idx]
	p.idx++

	return batch, nil
}

// ProducerFromSlice turns a fixed list of batches into a BatchProducer.
func ProducerFromSlice(batches []Batch) BatchProducer {
	return &sliceProducer{batches: batches}
}

// ProducerFunc adapts a function to the BatchProducer interface.
type ProducerFunc func(ctx context.Context) (Batch, error)

// Next calls the wrapped function.
func (f ProducerFunc) Next(ctx context.Context) (Batch, error) {
	return f(ctx)
}
