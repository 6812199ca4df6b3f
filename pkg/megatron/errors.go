package megatron

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrInputMustBeSet       = errors.New("at least one input must be set")
	ErrOutputMustBeSet      = errors.New("at least one output must be set")
	ErrNameMustBeSet        = errors.New("pipeline name must be set")
	ErrCyclicGraph          = errors.New("pipeline graph contains a cycle")
	ErrDisconnectedInput    = errors.New("declared input does not reach any output")
	ErrUnresolvedDependency = errors.New("node is not reachable from any declared input")
	ErrDuplicateNodeName    = errors.New("node name is not unique")
	ErrSharedLayerOrder     = errors.New("shared layer consumes one of its own outputs")
	ErrNotFitted            = errors.New("layer is not fitted")
	ErrNotIncremental       = errors.New("layer does not support partial fit")
	ErrMissingInput         = errors.New("batch is missing a declared input")
	ErrUnknownInput         = errors.New("batch contains an undeclared input")
	ErrStepsMustBePositive  = errors.New("steps must be greater than 0")
	ErrProducerMustBeSet    = errors.New("producer must be set")
	ErrStarvedGenerator     = errors.New("producer exhausted before the requested steps")
	ErrUnknownLayerKind     = errors.New("layer kind is not registered")
)

// TransformError reports a layer failure during transform. The whole batch is
// aborted; the pipeline stays usable for subsequent calls.
type TransformError struct {
	Node string
	Err  error
}

func (e *TransformError) Error() string {
	return fmt.Sprintf("transform failed at node %q: %v", e.Node, e.Err)
}

func (e *TransformError) Unwrap() error {
	return e.Err
}
