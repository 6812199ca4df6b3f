package megatron_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/askiada/megatron/pkg/megatron"
	"github.com/askiada/megatron/pkg/megatron/layers"
	"github.com/askiada/megatron/pkg/megatron/model"
)

// sumEstimator is a deterministic stand-in for an externally trained model.
// It predicts (sum, -sum) over all input elements of a record and keeps track
// of how often and over how many records it was fitted.
type sumEstimator struct {
	fits    int
	records int
}

func (e *sumEstimator) Fit(_ context.Context, inputs []*model.Tensor) error {
	e.fits++
	e.records = inputs[0].Records()

	return nil
}

func (e *sumEstimator) Predict(_ context.Context, inputs []*model.Tensor) (*model.Tensor, error) {
	records := inputs[0].Records()
	out := model.Zeros(records, model.Shape{2})
	for i := 0; i < records; i++ {
		sum := 0.0
		for _, in := range inputs {
			for _, v := range in.Record(i) {
				sum += v
			}
		}
		out.Data()[i*2] = sum
		out.Data()[i*2+1] = -sum
	}

	return out, nil
}

// countingLayer clones its input and counts the batches it transformed, so
// tests can assert whether a pass was served from storage.
type countingLayer struct {
	model.Stateless
	calls int
}

func (*countingLayer) Kind() string { return "counting" }

func (*countingLayer) OutputShape(inputs []model.Shape) (model.Shape, error) {
	return inputs[0].Clone(), nil
}

func (l *countingLayer) Transform(_ context.Context, inputs []*model.Tensor) (*model.Tensor, error) {
	l.calls++

	return inputs[0].Clone(), nil
}

// buildScenario wires the reference graph: two image inputs sharing one
// grayscale and one flatten instance, a one-hot encoded label and an
// estimator consuming all three branches.
func buildScenario(t *testing.T, opts ...megatron.Option) (*megatron.Pipeline, *sumEstimator) {
	t.Helper()

	imageOne := model.Input("image_one", model.Shape{4, 4, 3})
	imageTwo := model.Input("image_two", model.Shape{4, 4, 3})
	label := model.Input("label", model.Shape{})

	gray := layers.NewGrayscale()
	grayOne, err := model.Apply(gray, []*model.Node{imageOne}, "gray_one")
	require.NoError(t, err)
	grayTwo, err := model.Apply(gray, []*model.Node{imageTwo}, "gray_two")
	require.NoError(t, err)

	flat := layers.NewFlatten()
	flatOne, err := model.Apply(flat, []*model.Node{grayOne}, "flat_one")
	require.NoError(t, err)
	flatTwo, err := model.Apply(flat, []*model.Node{grayTwo}, "flat_two")
	require.NoError(t, err)

	std := layers.NewStandardize()
	stdOne, err := model.Apply(std, []*model.Node{flatOne}, "std_one")
	require.NoError(t, err)
	stdTwo, err := model.Apply(std, []*model.Node{flatTwo}, "std_two")
	require.NoError(t, err)

	encoded, err := model.Apply(layers.NewOneHot(2), []*model.Node{label}, "label_one_hot")
	require.NoError(t, err)

	estimator := &sumEstimator{}
	pred, err := model.Apply(layers.NewModel(estimator, model.Shape{2}),
		[]*model.Node{stdOne, stdTwo, encoded}, "pred")
	require.NoError(t, err)

	pipe, err := megatron.New("faces", []*model.Node{imageOne, imageTwo, label}, []*model.Node{pred}, opts...)
	require.NoError(t, err)

	return pipe, estimator
}

// scenarioBatch builds a deterministic batch for buildScenario. The offset
// shifts every value so that two batches with different offsets never share a
// record fingerprint.
func scenarioBatch(t *testing.T, records, offset int) model.Batch {
	t.Helper()

	imageSize := model.Shape{4, 4, 3}.Size()
	makeImage := func(salt int) *model.Tensor {
		data := make([]float64, records*imageSize)
		for i := range data {
			data[i] = float64((i*7+salt+offset)%23) / 4
		}
		tensor, err := model.NewTensor(records, model.Shape{4, 4, 3}, data)
		require.NoError(t, err)

		return tensor
	}

	labels := make([]float64, records)
	for i := range labels {
		labels[i] = float64(i % 2)
	}
	labelTensor, err := model.NewTensor(records, model.Shape{}, labels)
	require.NoError(t, err)

	return model.Batch{
		"image_one": makeImage(1),
		"image_two": makeImage(5),
		"label":     labelTensor,
	}
}

// vectorBatch builds a single-input batch for small pipelines over (2,)
// records.
func vectorBatch(t *testing.T, name string, values ...float64) model.Batch {
	t.Helper()

	require.Zero(t, len(values)%2)
	tensor, err := model.NewTensor(len(values)/2, model.Shape{2}, values)
	require.NoError(t, err)

	return model.Batch{name: tensor}
}
