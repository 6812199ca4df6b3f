package layers

import (
	"context"

	"github.com/pkg/errors"

	"github.com/askiada/megatron/pkg/megatron/model"
)

const modelKind = "model"

// Estimator is a trainable predictor bound into a Model layer. Implementations
// own their parameters and their persistence; the pipeline artifact only
// records that the surrounding layer was fitted.
type Estimator interface {
	Fit(ctx context.Context, inputs []*model.Tensor) error
	Predict(ctx context.Context, inputs []*model.Tensor) (*model.Tensor, error)
}

// Model adapts an Estimator to the layer contract. A model layer must sit at
// exactly one position in the graph, since sharing one would train a single
// estimator on the union of unrelated feature streams.
type Model struct {
	estimator Estimator
	out       model.Shape
	fitted    bool
}

// NewModel wraps estimator as a layer producing records of shape out.
func NewModel(estimator Estimator, out model.Shape) *Model {
	return &Model{estimator: estimator, out: out}
}

// SetEstimator binds an estimator, typically after reloading a pipeline
// artifact. The fitted flag from the artifact is kept as is, so the caller is
// expected to bind an estimator whose own parameters match it.
func (l *Model) SetEstimator(estimator Estimator) {
	l.estimator = estimator
}

func (*Model) Kind() string { return modelKind }

func (l *Model) OutputShape([]model.Shape) (model.Shape, error) {
	return l.out.Clone(), nil
}

func (l *Model) Fitted() bool { return l.fitted }

func (l *Model) Fit(ctx context.Context, sites [][]*model.Tensor) error {
	if l.estimator == nil {
		return errors.Wrap(ErrEstimatorMustBeSet, "fit model layer")
	}
	if len(sites) != 1 {
		return errors.Wrapf(ErrSharedModel, "model layer applied at %d positions", len(sites))
	}

	if err := l.estimator.Fit(ctx, sites[0]); err != nil {
		return errors.Wrap(err, "fit estimator")
	}
	l.fitted = true

	return nil
}

func (l *Model) Transform(ctx context.Context, inputs []*model.Tensor) (*model.Tensor, error) {
	if l.estimator == nil {
		return nil, errors.Wrap(ErrEstimatorMustBeSet, "predict with model layer")
	}

	out, err := l.estimator.Predict(ctx, inputs)
	if err != nil {
		return nil, errors.Wrap(err, "predict with estimator")
	}

	return out, nil
}

// MarshalParams serialises the output shape and fitted flag. The estimator
// itself is not part of the artifact.
func (l *Model) MarshalParams() (map[string]any, error) {
	shape := make([]int, len(l.out))
	copy(shape, l.out)

	return map[string]any{"output_shape": shape, "fitted": l.fitted}, nil
}

// UnmarshalParams restores the output shape and fitted flag. The estimator
// stays nil until SetEstimator is called.
func (l *Model) UnmarshalParams(params map[string]any) error {
	shape, err := paramInts(params, "output_shape")
	if err != nil {
		return err
	}
	fitted, err := paramBool(params, "fitted")
	if err != nil {
		return err
	}
	l.out = model.Shape(shape)
	l.fitted = fitted

	return nil
}

var (
	_ model.Layer           = (*Model)(nil)
	_ model.ParamsMarshaler = (*Model)(nil)
)
