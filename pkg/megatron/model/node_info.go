package model

// NodeKind classifies a node for display and metrics.
type NodeKind string

const (
	InputNodeKind NodeKind = "input"
	LayerNodeKind NodeKind = "layer"
)

// NodeInfo is the read-only description of a frozen node handed to pipeline
// options (drawer, measure).
type NodeInfo struct {
	Kind      NodeKind
	Name      string
	Shape     Shape
	LayerKind string
	Output    bool
}

var (
	// StartNode and EndNode are virtual vertices used by options that render
	// or aggregate over the whole graph.
	StartNode = &NodeInfo{Name: "start"}
	EndNode   = &NodeInfo{Name: "end"}
)
