package megatron

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/cespare/xxhash/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/askiada/megatron/pkg/megatron/model"
)

// Transform runs a fully materialised batch through the fitted pipeline and
// returns a mapping from output node name to its computed tensor. When a
// storage collaborator is bound, records already seen under the current
// pipeline name and version are served from storage without recomputation,
// and freshly computed terminal values are persisted before being returned.
func (p *Pipeline) Transform(ctx context.Context, batch model.Batch) (map[string]*model.Tensor, error) {
	if err := p.checkFitted(); err != nil {
		return nil, err
	}
	records, err := p.validateBatch(batch)
	if err != nil {
		return nil, err
	}

	var sums []uint64
	if p.storage != nil && records > 0 {
		sums = p.recordSums(batch, records)

		cached, ok, err := p.readCache(ctx, sums, records)
		if err != nil {
			return nil, err
		}
		if ok {
			p.logger.Debug("batch served from storage",
				zap.String("pipeline", p.name),
				zap.Int("records", records))

			return cached, nil
		}
	}

	values, err := p.forward(ctx, batch, transformPass)
	if err != nil {
		return nil, err
	}
	out, err := p.collectOutputs(values)
	if err != nil {
		return nil, err
	}

	if sums != nil {
		if err := p.writeCache(ctx, sums, out); err != nil {
			return nil, err
		}
	}

	return out, nil
}

// recordSums fingerprints every record of the batch by hashing the raw
// content of all declared inputs in name order. Identical records therefore
// map to identical storage keys, independent of their position in the batch.
func (p *Pipeline) recordSums(batch model.Batch, records int) []uint64 {
	names := make([]string, 0, len(p.inputs))
	for _, input := range p.inputs {
		names = append(names, input.Name())
	}
	sort.Strings(names)

	var scratch [8]byte
	sums := make([]uint64, records)
	for i := 0; i < records; i++ {
		digest := xxhash.New()
		for _, name := range names {
			_, _ = digest.WriteString(name)
			_, _ = digest.Write([]byte{0})
			for _, v := range batch[name].Record(i) {
				binary.LittleEndian.PutUint64(scratch[:], math.Float64bits(v))
				_, _ = digest.Write(scratch[:])
			}
		}
		sums[i] = digest.Sum64()
	}

	return sums
}

// cacheKey namespaces a record's value at a terminal node per pipeline name
// and version, so that two pipeline revisions never collide.
func (p *Pipeline) cacheKey(node string, sum uint64) string {
	return fmt.Sprintf("%s/%s/%s/%016x", p.name, p.version, node, sum)
}

// readCache consults storage for every output node. It only short-circuits
// the pass when every record of every output is present; partial hits fall
// back to a full recomputation so that a batch is always computed as a whole.
func (p *Pipeline) readCache(ctx context.Context, sums []uint64, records int) (map[string]*model.Tensor, bool, error) {
	allHit := true
	found := make(map[string]map[string][]byte, len(p.outputs))

	for _, output := range p.outputs {
		keys := make([]string, records)
		for i, sum := range sums {
			keys[i] = p.cacheKey(output.Name(), sum)
		}

		entries, err := p.storage.Read(ctx, keys)
		if err != nil {
			return nil, false, errors.Wrapf(err, "unable to read storage for node %q", output.Name())
		}
		found[output.Name()] = entries

		hits := len(entries)
		if hits < records {
			allHit = false
		}
		for _, opt := range p.opts {
			if err := opt.OnCacheLookup(p.infos[output.Name()], hits, records-hits); err != nil {
				return nil, false, errors.Wrapf(err, "unable to run cache hook for node %q", output.Name())
			}
		}
	}

	if !allHit {
		return nil, false, nil
	}

	out := make(map[string]*model.Tensor, len(p.outputs))
	for _, output := range p.outputs {
		entries := found[output.Name()]
		parts := make([]*model.Tensor, records)
		for i, sum := range sums {
			var tensor model.Tensor
			if err := json.Unmarshal(entries[p.cacheKey(output.Name(), sum)], &tensor); err != nil {
				return nil, false, errors.Wrapf(err, "unable to decode cached value for node %q", output.Name())
			}
			parts[i] = &tensor
		}
		combined, err := model.Concat(parts...)
		if err != nil {
			return nil, false, errors.Wrapf(err, "unable to assemble cached values for node %q", output.Name())
		}
		out[output.Name()] = combined
	}

	return out, true, nil
}

// writeCache persists every record of every output under its fingerprint.
// Entries are written once: re-writing an identical value is a no-op, and a
// conflicting value surfaces the storage consistency error.
func (p *Pipeline) writeCache(ctx context.Context, sums []uint64, out map[string]*model.Tensor) error {
	for _, output := range p.outputs {
		tensor := out[output.Name()]
		for i := 0; i < tensor.Records(); i++ {
			record, err := model.NewTensor(1, tensor.Shape(), tensor.Record(i))
			if err != nil {
				return errors.Wrapf(err, "unable to slice record %d of node %q", i, output.Name())
			}
			raw, err := json.Marshal(record)
			if err != nil {
				return errors.Wrapf(err, "unable to encode record %d of node %q", i, output.Name())
			}

			err = p.storage.Write(ctx, p.cacheKey(output.Name(), sums[i]), raw)
			if err != nil {
				return errors.Wrapf(err, "unable to persist record %d of node %q", i, output.Name())
			}
		}
	}

	return nil
}
