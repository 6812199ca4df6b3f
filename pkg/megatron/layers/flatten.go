package layers

import (
	"context"

	"github.com/pkg/errors"

	"github.com/askiada/megatron/pkg/megatron/model"
)

const flattenKind = "flatten"

// Flatten collapses every record to a rank-1 vector, turning records of
// shape (a,b,...) into (a*b*...,). The underlying values are untouched.
type Flatten struct {
	model.Stateless
}

// NewFlatten creates a flatten layer.
func NewFlatten() *Flatten {
	return &Flatten{}
}

func (*Flatten) Kind() string { return flattenKind }

func (*Flatten) OutputShape(inputs []model.Shape) (model.Shape, error) {
	if len(inputs) != 1 {
		return nil, errors.Wrapf(ErrArity, "flatten takes 1 input, got %d", len(inputs))
	}

	return model.Shape{inputs[0].Size()}, nil
}

func (*Flatten) Transform(_ context.Context, inputs []*model.Tensor) (*model.Tensor, error) {
	if len(inputs) != 1 {
		return nil, errors.Wrapf(ErrArity, "flatten takes 1 input, got %d", len(inputs))
	}
	in := inputs[0]

	out, err := model.NewTensor(in.Records(), model.Shape{in.Shape().Size()}, in.Data())
	if err != nil {
		return nil, errors.Wrap(err, "flatten records")
	}

	return out, nil
}

var _ model.Layer = (*Flatten)(nil)
