package megatron

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/askiada/megatron/pkg/megatron/model"
)

type passMode int

const (
	fitPass passMode = iota
	partialFitPass
	transformPass
)

// validateBatch checks the batch against the frozen input contract and
// returns the common record count.
func (p *Pipeline) validateBatch(batch model.Batch) (int, error) {
	records, err := batch.Records()
	if err != nil {
		return 0, err
	}

	declared := make(map[string]struct{}, len(p.inputs))
	for _, input := range p.inputs {
		declared[input.Name()] = struct{}{}

		tensor, ok := batch[input.Name()]
		if !ok {
			return 0, errors.Wrapf(ErrMissingInput, "input %q", input.Name())
		}
		if !tensor.Shape().Equal(input.Shape()) {
			return 0, errors.Wrapf(model.ErrShapeMismatch, "input %q expects %s, got %s",
				input.Name(), input.Shape(), tensor.Shape())
		}
	}
	for name := range batch {
		if _, ok := declared[name]; !ok {
			return 0, errors.Wrapf(ErrUnknownInput, "input %q", name)
		}
	}

	return records, nil
}

// forward runs one batch through the DAG. Nodes are computed exactly once, in
// the frozen topological order; a node whose layer still has to be fitted is
// deferred until the inputs of all of the layer's application sites are
// available, so that the layer is fitted once with the combined batches.
// Upstream values are released as soon as their last consumer has run.
func (p *Pipeline) forward(ctx context.Context, batch model.Batch, mode passMode) (map[string]*model.Tensor, error) {
	values := make(map[string]*model.Tensor, len(p.path))
	for _, input := range p.inputs {
		values[input.Name()] = batch[input.Name()]
	}

	outputSet := make(map[string]struct{}, len(p.outputs))
	for _, output := range p.outputs {
		outputSet[output.Name()] = struct{}{}
	}
	consumers := make(map[string]int, len(p.path))
	for _, node := range p.path {
		for _, parent := range node.Inbound() {
			consumers[parent.Name()]++
		}
	}

	fitted := make(map[model.Layer]struct{}, len(p.sites))

	pending := make([]*model.Node, 0, len(p.path))
	for _, node := range p.path {
		if !node.IsInput() {
			pending = append(pending, node)
		}
	}

	for len(pending) > 0 {
		progressed := false
		remaining := pending[:0]

		for _, node := range pending {
			ok, err := p.computeNode(ctx, node, values, fitted, mode)
			if err != nil {
				return nil, err
			}
			if !ok {
				remaining = append(remaining, node)

				continue
			}
			progressed = true

			for _, parent := range node.Inbound() {
				consumers[parent.Name()]--
				if consumers[parent.Name()] == 0 {
					if _, isOutput := outputSet[parent.Name()]; !isOutput {
						delete(values, parent.Name())
					}
				}
			}
		}

		pending = remaining
		if !progressed {
			return nil, errors.Wrap(ErrSharedLayerOrder, "unable to schedule remaining nodes")
		}
	}

	return values, nil
}

// computeNode fits the node's layer if the pass requires it, then transforms
// the node. It returns false when the node has to be deferred.
func (p *Pipeline) computeNode(ctx context.Context, node *model.Node, values map[string]*model.Tensor,
	fitted map[model.Layer]struct{}, mode passMode,
) (bool, error) {
	if !p.inboundReady(node, values) {
		return false, nil
	}

	layer := node.Layer()
	if _, done := fitted[layer]; !done && mode != transformPass {
		if !p.sitesReady(layer, values) {
			return false, nil
		}

		start := time.Now()
		err := p.fitLayer(ctx, layer, values, mode)
		if err != nil {
			return false, errors.Wrapf(err, "unable to fit layer %s at node %q", layer.Kind(), node.Name())
		}
		fitted[layer] = struct{}{}
		elapsed := time.Since(start)

		p.logger.Debug("layer fitted",
			zap.String("layer", layer.Kind()),
			zap.String("node", node.Name()),
			zap.Duration("elapsed", elapsed))
		for _, opt := range p.opts {
			if err := opt.OnNodeFit(p.infos[node.Name()], elapsed); err != nil {
				return false, errors.Wrapf(err, "unable to run fit hook for node %q", node.Name())
			}
		}
	}

	inputs := make([]*model.Tensor, len(node.Inbound()))
	for i, parent := range node.Inbound() {
		inputs[i] = values[parent.Name()]
	}

	start := time.Now()
	out, err := layer.Transform(ctx, inputs)
	if err != nil {
		return false, &TransformError{Node: node.Name(), Err: err}
	}
	elapsed := time.Since(start)
	values[node.Name()] = out

	p.logger.Debug("node transformed",
		zap.String("node", node.Name()),
		zap.Duration("elapsed", elapsed))
	for _, opt := range p.opts {
		if err := opt.OnNodeTransform(p.infos[node.Name()], elapsed); err != nil {
			return false, errors.Wrapf(err, "unable to run transform hook for node %q", node.Name())
		}
	}

	return true, nil
}

func (p *Pipeline) fitLayer(ctx context.Context, layer model.Layer, values map[string]*model.Tensor, mode passMode) error {
	switch mode {
	case fitPass:
		return layer.Fit(ctx, p.gatherSites(layer, values))
	case partialFitPass:
		incremental, ok := layer.(model.IncrementalLayer)
		if !ok {
			if !layer.Fitted() {
				return errors.Wrapf(ErrNotIncremental, "layer %s", layer.Kind())
			}
			// Already fitted, keep the existing state.
			return nil
		}

		return incremental.PartialFit(ctx, p.gatherSites(layer, values))
	default:
		return nil
	}
}

func (p *Pipeline) inboundReady(node *model.Node, values map[string]*model.Tensor) bool {
	for _, parent := range node.Inbound() {
		if _, ok := values[parent.Name()]; !ok {
			return false
		}
	}

	return true
}

func (p *Pipeline) sitesReady(layer model.Layer, values map[string]*model.Tensor) bool {
	for _, site := range p.sites[layer] {
		if !p.inboundReady(site, values) {
			return false
		}
	}

	return true
}

func (p *Pipeline) gatherSites(layer model.Layer, values map[string]*model.Tensor) [][]*model.Tensor {
	sites := make([][]*model.Tensor, 0, len(p.sites[layer]))
	for _, site := range p.sites[layer] {
		inputs := make([]*model.Tensor, len(site.Inbound()))
		for i, parent := range site.Inbound() {
			inputs[i] = values[parent.Name()]
		}
		sites = append(sites, inputs)
	}

	return sites
}

func (p *Pipeline) collectOutputs(values map[string]*model.Tensor) (map[string]*model.Tensor, error) {
	out := make(map[string]*model.Tensor, len(p.outputs))
	for _, output := range p.outputs {
		tensor, ok := values[output.Name()]
		if !ok {
			return nil, errors.Wrapf(ErrUnresolvedDependency, "output %q was not computed", output.Name())
		}
		out[output.Name()] = tensor
	}

	return out, nil
}
