package layers

import (
	"context"

	"github.com/pkg/errors"

	"github.com/askiada/megatron/pkg/megatron/model"
)

const oneHotKind = "one_hot"

// OneHot encodes scalar class labels into one-hot vectors of a fixed depth,
// turning records of shape () into (depth,). The depth is part of the layer
// identity so that downstream shapes are known at graph-construction time.
type OneHot struct {
	model.Stateless
	depth int
}

// NewOneHot creates a one-hot encoder producing vectors of length depth.
func NewOneHot(depth int) *OneHot {
	return &OneHot{depth: depth}
}

func (*OneHot) Kind() string { return oneHotKind }

func (l *OneHot) OutputShape(inputs []model.Shape) (model.Shape, error) {
	if len(inputs) != 1 {
		return nil, errors.Wrapf(ErrArity, "one_hot takes 1 input, got %d", len(inputs))
	}
	if len(inputs[0]) != 0 {
		return nil, errors.Wrapf(model.ErrShapeMismatch, "one_hot expects scalar records, got %s", inputs[0])
	}
	if l.depth <= 0 {
		return nil, errors.Wrapf(ErrBadParams, "one_hot depth must be positive, got %d", l.depth)
	}

	return model.Shape{l.depth}, nil
}

func (l *OneHot) Transform(_ context.Context, inputs []*model.Tensor) (*model.Tensor, error) {
	if len(inputs) != 1 {
		return nil, errors.Wrapf(ErrArity, "one_hot takes 1 input, got %d", len(inputs))
	}
	in := inputs[0]

	out := model.Zeros(in.Records(), model.Shape{l.depth})
	dst := out.Data()
	for i, v := range in.Data() {
		label := int(v)
		if float64(label) != v || label < 0 || label >= l.depth {
			return nil, errors.Wrapf(ErrValueOutOfRange, "label %v does not fit depth %d", v, l.depth)
		}
		dst[i*l.depth+label] = 1
	}

	return out, nil
}

// MarshalParams serialises the depth for the pipeline artifact.
func (l *OneHot) MarshalParams() (map[string]any, error) {
	return map[string]any{"depth": l.depth}, nil
}

// UnmarshalParams restores the depth from a pipeline artifact.
func (l *OneHot) UnmarshalParams(params map[string]any) error {
	depth, err := paramInt(params, "depth")
	if err != nil {
		return err
	}
	l.depth = depth

	return nil
}

var (
	_ model.Layer           = (*OneHot)(nil)
	_ model.ParamsMarshaler = (*OneHot)(nil)
)
