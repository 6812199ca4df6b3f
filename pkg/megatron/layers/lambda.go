package layers

import (
	"context"

	"github.com/askiada/megatron/pkg/megatron/model"
)

const lambdaKind = "lambda"

// TransformFunc is a record-batch transformation supplied by the caller.
type TransformFunc func(ctx context.Context, inputs []*model.Tensor) (*model.Tensor, error)

// Lambda wraps an arbitrary function as a stateless layer. It carries no
// fitted state and no serialisable params, so a pipeline using one cannot be
// reloaded without the caller re-binding the function through NewLambda.
type Lambda struct {
	model.Stateless
	out model.Shape
	fn  TransformFunc
}

// NewLambda creates a layer applying fn, producing records of shape out.
func NewLambda(out model.Shape, fn TransformFunc) *Lambda {
	return &Lambda{out: out, fn: fn}
}

func (*Lambda) Kind() string { return lambdaKind }

func (l *Lambda) OutputShape([]model.Shape) (model.Shape, error) {
	return l.out.Clone(), nil
}

func (l *Lambda) Transform(ctx context.Context, inputs []*model.Tensor) (*model.Tensor, error) {
	return l.fn(ctx, inputs)
}

var _ model.Layer = (*Lambda)(nil)
