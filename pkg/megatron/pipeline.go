package megatron

import (
	"github.com/dominikbraun/graph"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/askiada/megatron/internal/store"
	"github.com/askiada/megatron/pkg/megatron/model"
	"github.com/askiada/megatron/pkg/megatron/storage"
)

// Pipeline owns a frozen DAG of input nodes and layer applications. It is
// built once, fitted, and transformed arbitrarily many times afterwards.
type Pipeline struct {
	name    string
	version string

	inputs  []*model.Node
	outputs []*model.Node
	nodes   map[string]*model.Node
	path    []*model.Node
	infos   map[string]*model.NodeInfo

	// sites groups the application positions of each layer instance, in
	// execution order. A layer is fitted once per instance with the batches
	// reaching all of its sites.
	sites      map[model.Layer][]*model.Node
	layerArena []model.Layer

	storage storage.Storage
	logger  *zap.Logger
	opts    []model.PipelineOption
}

// New validates and freezes the DAG spanned between the declared inputs and
// outputs. Construction errors are fatal; no partial pipeline is returned.
func New(name string, inputs, outputs []*model.Node, opts ...Option) (*Pipeline, error) {
	if name == "" {
		return nil, ErrNameMustBeSet
	}
	if len(inputs) == 0 {
		return nil, ErrInputMustBeSet
	}
	if len(outputs) == 0 {
		return nil, ErrOutputMustBeSet
	}

	pipe := &Pipeline{
		name:    name,
		version: "1",
		inputs:  dedupeNodes(inputs),
		outputs: dedupeNodes(outputs),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(pipe)
	}

	for _, input := range pipe.inputs {
		if input == nil {
			return nil, errors.Wrap(ErrInputMustBeSet, "declared input is nil")
		}
		if !input.IsInput() {
			return nil, errors.Wrapf(ErrInputMustBeSet, "node %q is not an input node", input.Name())
		}
	}
	for _, output := range pipe.outputs {
		if output == nil {
			return nil, errors.Wrap(ErrOutputMustBeSet, "declared output is nil")
		}
	}

	if err := pipe.freeze(); err != nil {
		return nil, err
	}
	if err := pipe.prepareOptions(); err != nil {
		return nil, err
	}

	return pipe, nil
}

// freeze collects the reachable graph, validates the DAG invariants and
// computes the stable execution order.
func (p *Pipeline) freeze() error {
	reachable, err := p.collectBackward()
	if err != nil {
		return err
	}

	declared := make(map[*model.Node]struct{}, len(p.inputs))
	for _, input := range p.inputs {
		declared[input] = struct{}{}
	}

	for _, node := range reachable {
		if node.IsInput() {
			if _, ok := declared[node]; !ok {
				return errors.Wrapf(ErrUnresolvedDependency, "input node %q is not declared", node.Name())
			}
		}
	}
	inReachable := make(map[*model.Node]struct{}, len(reachable))
	for _, node := range reachable {
		inReachable[node] = struct{}{}
	}
	for _, input := range p.inputs {
		if _, ok := inReachable[input]; !ok {
			return errors.Wrapf(ErrDisconnectedInput, "input %q", input.Name())
		}
	}

	if err := p.sortPath(reachable); err != nil {
		return err
	}

	p.sites = make(map[model.Layer][]*model.Node)
	p.layerArena = nil
	for _, node := range p.path {
		if node.IsInput() {
			continue
		}
		layer := node.Layer()
		if _, ok := p.sites[layer]; !ok {
			p.layerArena = append(p.layerArena, layer)
		}
		p.sites[layer] = append(p.sites[layer], node)
	}

	if err := p.checkSharedLayerOrder(); err != nil {
		return err
	}

	outputSet := make(map[*model.Node]struct{}, len(p.outputs))
	for _, output := range p.outputs {
		outputSet[output] = struct{}{}
	}
	p.infos = make(map[string]*model.NodeInfo, len(p.path))
	for _, node := range p.path {
		info := &model.NodeInfo{
			Kind:  model.LayerNodeKind,
			Name:  node.Name(),
			Shape: node.Shape(),
		}
		if node.IsInput() {
			info.Kind = model.InputNodeKind
		} else {
			info.LayerKind = node.Layer().Kind()
		}
		if _, ok := outputSet[node]; ok {
			info.Output = true
		}
		p.infos[node.Name()] = info
	}

	return nil
}

// collectBackward walks the producer edges from the outputs and returns every
// node taking part in the pipeline, checking name uniqueness on the way.
func (p *Pipeline) collectBackward() ([]*model.Node, error) {
	var reachable []*model.Node
	byName := make(map[string]*model.Node)
	visited := make(map[*model.Node]struct{})

	stack := make([]*model.Node, len(p.outputs))
	copy(stack, p.outputs)

	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if _, ok := visited[node]; ok {
			continue
		}
		visited[node] = struct{}{}

		if existing, ok := byName[node.Name()]; ok && existing != node {
			return nil, errors.Wrapf(ErrDuplicateNodeName, "name %q", node.Name())
		}
		byName[node.Name()] = node
		reachable = append(reachable, node)

		stack = append(stack, node.Inbound()...)
	}

	p.nodes = byName

	return reachable, nil
}

// sortPath builds the dependency graph and computes a topological order that
// is stable across repeated builds of the identical graph, which cache keys
// rely on.
func (p *Pipeline) sortPath(reachable []*model.Node) error {
	graphStore := store.NewGraphStore[string, *model.Node]()
	g := graph.NewWithStore(func(n *model.Node) string { return n.Name() }, graphStore, graph.Directed())

	for _, node := range reachable {
		if err := g.AddVertex(node); err != nil {
			return errors.Wrapf(err, "unable to add node %q", node.Name())
		}
	}
	for _, node := range reachable {
		for _, parent := range node.Inbound() {
			cycles, err := graphStore.CreatesCycle(parent.Name(), node.Name())
			if err != nil {
				return errors.Wrap(err, "unable to check for cycles")
			}
			if cycles {
				return errors.Wrapf(ErrCyclicGraph, "edge %q -> %q", parent.Name(), node.Name())
			}

			err = g.AddEdge(parent.Name(), node.Name())
			if err != nil && !errors.Is(err, graph.ErrEdgeAlreadyExists) {
				return errors.Wrapf(err, "unable to add edge %q -> %q", parent.Name(), node.Name())
			}
		}
	}

	order, err := graph.StableTopologicalSort(g, func(a, b string) bool { return a < b })
	if err != nil {
		return errors.Wrap(ErrCyclicGraph, err.Error())
	}

	p.path = make([]*model.Node, len(order))
	for i, name := range order {
		p.path[i] = p.nodes[name]
	}

	return nil
}

// checkSharedLayerOrder rejects graphs where one application site of a layer
// depends on another site of the same layer. Fitting such a layer is
// impossible: its own output would be needed to assemble its fit data.
func (p *Pipeline) checkSharedLayerOrder() error {
	for layer, sites := range p.sites {
		if len(sites) < 2 {
			continue
		}
		for _, from := range sites {
			for _, to := range sites {
				if from == to {
					continue
				}
				if reaches(from, to) {
					return errors.Wrapf(ErrSharedLayerOrder, "layer %s at %q feeds its site %q",
						layer.Kind(), from.Name(), to.Name())
				}
			}
		}
	}

	return nil
}

func reaches(from, to *model.Node) bool {
	visited := make(map[*model.Node]struct{})
	stack := []*model.Node{from}

	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if node == to {
			return true
		}
		if _, ok := visited[node]; ok {
			continue
		}
		visited[node] = struct{}{}

		stack = append(stack, node.Outbound()...)
	}

	return false
}

func (p *Pipeline) prepareOptions() error {
	for _, opt := range p.opts {
		if err := opt.New(); err != nil {
			return errors.Wrap(err, "unable to apply pipeline option")
		}
	}

	for _, node := range p.path {
		for _, opt := range p.opts {
			if err := opt.PrepareNode(p.infos[node.Name()]); err != nil {
				return errors.Wrapf(err, "unable to prepare node %q", node.Name())
			}
		}
	}

	seen := make(map[[2]string]struct{})
	for _, node := range p.path {
		for _, parent := range node.Inbound() {
			edge := [2]string{parent.Name(), node.Name()}
			if _, ok := seen[edge]; ok {
				continue
			}
			seen[edge] = struct{}{}

			for _, opt := range p.opts {
				if err := opt.PrepareLink(p.infos[parent.Name()], p.infos[node.Name()]); err != nil {
					return errors.Wrapf(err, "unable to prepare link %q -> %q", parent.Name(), node.Name())
				}
			}
		}
	}

	return nil
}

// Finish runs the Finish hook of every pipeline option, letting observers
// like the drawer flush their output.
func (p *Pipeline) Finish() error {
	for _, opt := range p.opts {
		if err := opt.Finish(); err != nil {
			return errors.Wrap(err, "unable to finish pipeline option")
		}
	}

	return nil
}

// Name returns the pipeline name.
func (p *Pipeline) Name() string { return p.name }

// Version returns the pipeline version used to namespace cache entries.
func (p *Pipeline) Version() string { return p.version }

// Path returns the node names in execution order.
func (p *Pipeline) Path() []string {
	names := make([]string, len(p.path))
	for i, node := range p.path {
		names[i] = node.Name()
	}

	return names
}

// Node returns a frozen node by name.
func (p *Pipeline) Node(name string) (*model.Node, bool) {
	node, ok := p.nodes[name]

	return node, ok
}

// InputNames returns the declared input names in declaration order.
func (p *Pipeline) InputNames() []string {
	names := make([]string, len(p.inputs))
	for i, input := range p.inputs {
		names[i] = input.Name()
	}

	return names
}

// OutputNames returns the declared output names in declaration order.
func (p *Pipeline) OutputNames() []string {
	names := make([]string, len(p.outputs))
	for i, output := range p.outputs {
		names[i] = output.Name()
	}

	return names
}

func dedupeNodes(nodes []*model.Node) []*model.Node {
	seen := make(map[*model.Node]struct{}, len(nodes))
	out := make([]*model.Node, 0, len(nodes))
	for _, node := range nodes {
		if node != nil {
			if _, ok := seen[node]; ok {
				continue
			}
			seen[node] = struct{}{}
		}
		out = append(out, node)
	}

	return out
}
