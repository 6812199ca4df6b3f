package drawer

import (
	"github.com/askiada/megatron/pkg/megatron/measure"
	"github.com/askiada/megatron/pkg/megatron/model"
)

// Drawer is an interface that defines the methods for rendering a frozen
// pipeline graph. It only reads graph structure; it never takes part in
// execution.
type Drawer interface {
	// AddNode adds a node to the rendered graph.
	AddNode(info *model.NodeInfo) error
	// AddLink adds an edge between a producer and a consumer node.
	AddLink(parentName, childName string) error
	// AddMeasure decorates the rendered graph with execution metrics.
	AddMeasure(measure measure.Measure) error
	// Draw writes the rendered graph out.
	Draw() error
}
