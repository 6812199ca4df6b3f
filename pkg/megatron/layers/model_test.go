package layers_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/megatron/pkg/megatron/layers"
	"github.com/askiada/megatron/pkg/megatron/model"
)

// meanEstimator predicts the mean of every record's elements.
type meanEstimator struct {
	fits int
}

func (e *meanEstimator) Fit(context.Context, []*model.Tensor) error {
	e.fits++

	return nil
}

func (*meanEstimator) Predict(_ context.Context, inputs []*model.Tensor) (*model.Tensor, error) {
	in := inputs[0]
	out := model.Zeros(in.Records(), model.Shape{1})
	size := in.Shape().Size()
	for i := 0; i < in.Records(); i++ {
		sum := 0.0
		for _, v := range in.Record(i) {
			sum += v
		}
		out.Data()[i] = sum / float64(size)
	}

	return out, nil
}

func TestModelFitAndPredict(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	estimator := &meanEstimator{}
	wrapped := layers.NewModel(estimator, model.Shape{1})
	assert.False(t, wrapped.Fitted())

	in, err := model.NewTensor(2, model.Shape{2}, []float64{1, 3, 5, 9})
	require.NoError(t, err)
	require.NoError(t, wrapped.Fit(ctx, [][]*model.Tensor{{in}}))
	assert.True(t, wrapped.Fitted())
	assert.Equal(t, 1, estimator.fits)

	out, err := wrapped.Transform(ctx, []*model.Tensor{in})
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 7}, out.Data())
}

func TestModelRejectsSharedSites(t *testing.T) {
	t.Parallel()

	wrapped := layers.NewModel(&meanEstimator{}, model.Shape{1})
	in := model.Zeros(1, model.Shape{2})

	err := wrapped.Fit(context.Background(), [][]*model.Tensor{{in}, {in}})
	assert.ErrorIs(t, err, layers.ErrSharedModel)
	assert.False(t, wrapped.Fitted())
}

func TestModelWithoutEstimator(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	wrapped := layers.NewModel(nil, model.Shape{1})
	in := model.Zeros(1, model.Shape{2})

	err := wrapped.Fit(ctx, [][]*model.Tensor{{in}})
	assert.ErrorIs(t, err, layers.ErrEstimatorMustBeSet)

	_, err = wrapped.Transform(ctx, []*model.Tensor{in})
	assert.ErrorIs(t, err, layers.ErrEstimatorMustBeSet)
}

func TestModelSetEstimator(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	wrapped := layers.NewModel(nil, model.Shape{1})
	wrapped.SetEstimator(&meanEstimator{})

	in := model.Zeros(1, model.Shape{2})
	require.NoError(t, wrapped.Fit(ctx, [][]*model.Tensor{{in}}))
}

func TestModelParamsRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	wrapped := layers.NewModel(&meanEstimator{}, model.Shape{4})
	in := model.Zeros(1, model.Shape{2})
	require.NoError(t, wrapped.Fit(ctx, [][]*model.Tensor{{in}}))

	params, err := wrapped.MarshalParams()
	require.NoError(t, err)

	restored := &layers.Model{}
	require.NoError(t, restored.UnmarshalParams(params))
	assert.True(t, restored.Fitted())

	shape, err := restored.OutputShape(nil)
	require.NoError(t, err)
	assert.Equal(t, model.Shape{4}, shape)
}

func TestLambdaTransform(t *testing.T) {
	t.Parallel()

	negate := layers.NewLambda(model.Shape{2},
		func(_ context.Context, inputs []*model.Tensor) (*model.Tensor, error) {
			in := inputs[0]
			out := model.Zeros(in.Records(), in.Shape())
			for i, v := range in.Data() {
				out.Data()[i] = -v
			}

			return out, nil
		})

	assert.True(t, negate.Fitted())
	shape, err := negate.OutputShape([]model.Shape{{2}})
	require.NoError(t, err)
	assert.Equal(t, model.Shape{2}, shape)

	in, err := model.NewTensor(1, model.Shape{2}, []float64{1, -2})
	require.NoError(t, err)
	out, err := negate.Transform(context.Background(), []*model.Tensor{in})
	require.NoError(t, err)
	assert.Equal(t, []float64{-1, 2}, out.Data())
}
