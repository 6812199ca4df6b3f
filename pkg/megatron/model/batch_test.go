package model_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/megatron/pkg/megatron/model"
)

func TestBatchRecords(t *testing.T) {
	t.Parallel()

	batch := model.Batch{
		"a": model.Zeros(3, model.Shape{2}),
		"b": model.Zeros(3, model.Shape{}),
	}
	records, err := batch.Records()
	require.NoError(t, err)
	assert.Equal(t, 3, records)
}

func TestBatchRecordsRagged(t *testing.T) {
	t.Parallel()

	batch := model.Batch{
		"a": model.Zeros(3, model.Shape{2}),
		"b": model.Zeros(2, model.Shape{2}),
	}
	_, err := batch.Records()
	assert.ErrorIs(t, err, model.ErrRaggedBatch)
}

func TestBatchRecordsNilTensor(t *testing.T) {
	t.Parallel()

	batch := model.Batch{"a": nil}
	_, err := batch.Records()
	assert.ErrorIs(t, err, model.ErrInvalidTensor)
}

func TestBatchRecordsEmpty(t *testing.T) {
	t.Parallel()

	records, err := model.Batch{}.Records()
	require.NoError(t, err)
	assert.Equal(t, 0, records)
}

func TestConcatBatches(t *testing.T) {
	t.Parallel()

	first, err := model.NewTensor(2, model.Shape{}, []float64{1, 2})
	require.NoError(t, err)
	second, err := model.NewTensor(1, model.Shape{}, []float64{3})
	require.NoError(t, err)

	combined, err := model.ConcatBatches([]model.Batch{{"a": first}, {"a": second}})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, combined["a"].Data())
}

func TestConcatBatchesMissingInput(t *testing.T) {
	t.Parallel()

	_, err := model.ConcatBatches([]model.Batch{
		{"a": model.Zeros(1, model.Shape{})},
		{"b": model.Zeros(1, model.Shape{})},
	})
	assert.ErrorIs(t, err, model.ErrRaggedBatch)
}

func TestProducerFromSlice(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	producer := model.ProducerFromSlice([]model.Batch{
		{"a": model.Zeros(1, model.Shape{})},
		{"a": model.Zeros(2, model.Shape{})},
	})

	first, err := producer.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, first["a"].Records())

	second, err := producer.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, second["a"].Records())

	_, err = producer.Next(ctx)
	assert.ErrorIs(t, err, model.ErrEndOfStream)
}

func TestProducerFunc(t *testing.T) {
	t.Parallel()

	calls := 0
	producer := model.ProducerFunc(func(context.Context) (model.Batch, error) {
		calls++

		return model.Batch{"a": model.Zeros(1, model.Shape{})}, nil
	})

	_, err := producer.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}
