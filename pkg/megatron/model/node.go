package model

import "github.com/pkg/errors"

// Node is a vertex of the pipeline graph. It describes where data flows but
// never holds data itself. A node is produced either by an Input declaration
// or by applying a Layer, and is immutable once the pipeline is frozen.
type Node struct {
	name     string
	shape    Shape
	layer    Layer
	inbound  []*Node
	outbound []*Node
}

// Input declares a raw data entry point with the given record shape.
func Input(name string, shape Shape) *Node {
	return &Node{name: name, shape: shape.Clone()}
}

// Apply connects a layer to the given input nodes and returns the node
// carrying its output. The same layer instance may be applied several times;
// all applications share its fit state.
func Apply(layer Layer, inputs []*Node, name string) (*Node, error) {
	if layer == nil {
		return nil, ErrLayerMustBeSet
	}
	if name == "" {
		return nil, ErrNameMustBeSet
	}
	if len(inputs) == 0 {
		return nil, ErrInputMustBeSet
	}

	shapes := make([]Shape, len(inputs))
	for i, input := range inputs {
		if input == nil {
			return nil, errors.Wrapf(ErrInputMustBeSet, "input %d is nil", i)
		}
		shapes[i] = input.shape
	}

	shape, err := layer.OutputShape(shapes)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to apply layer %s as %q", layer.Kind(), name)
	}

	node := &Node{name: name, shape: shape, layer: layer}
	for _, input := range inputs {
		Link(input, node)
	}

	return node, nil
}

// Link wires a producer/consumer edge between two existing nodes. Apply calls
// it for every input; it is exported for graph surgery ahead of validation,
// which rejects any wiring that breaks the DAG invariants.
func Link(parent, child *Node) {
	child.inbound = append(child.inbound, parent)
	parent.outbound = append(parent.outbound, child)
}

// Name returns the unique node name.
func (n *Node) Name() string { return n.name }

// Shape returns the record shape produced at this node.
func (n *Node) Shape() Shape { return n.shape }

// Layer returns the producing layer, or nil for input nodes.
func (n *Node) Layer() Layer { return n.layer }

// IsInput reports whether the node is a raw data entry point.
func (n *Node) IsInput() bool { return n.layer == nil }

// Inbound returns the producer edges, in application order.
func (n *Node) Inbound() []*Node { return n.inbound }

// Outbound returns the consumer edges.
func (n *Node) Outbound() []*Node { return n.outbound }
