package measure_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/megatron/pkg/megatron/measure"
	"github.com/askiada/megatron/pkg/megatron/model"
)

func TestDefaultMeasure(t *testing.T) {
	t.Parallel()

	msr := measure.NewDefaultMeasure()
	metric := msr.AddMetric("node")
	assert.Same(t, metric, msr.GetMetric("node"))
	assert.Len(t, msr.AllMetrics(), 1)
}

func TestDefaultMetric(t *testing.T) {
	t.Parallel()

	msr := measure.NewDefaultMeasure()
	metric := msr.AddMetric("node")

	metric.AddFitDuration(100 * time.Millisecond)
	metric.AddFitDuration(50 * time.Millisecond)
	assert.Equal(t, 150*time.Millisecond, metric.FitDuration())

	metric.AddTransformDuration(20 * time.Millisecond)
	metric.AddTransformDuration(40 * time.Millisecond)
	assert.Equal(t, 30*time.Millisecond, metric.AVGTransformDuration())

	metric.AddCacheLookup(3, 1)
	metric.AddCacheLookup(0, 2)
	assert.Equal(t, int64(3), metric.CacheHits())
	assert.Equal(t, int64(3), metric.CacheMisses())
}

func TestDefaultMetricNoTransforms(t *testing.T) {
	t.Parallel()

	metric := measure.NewDefaultMeasure().AddMetric("node")
	assert.Equal(t, time.Duration(0), metric.AVGTransformDuration())
}

func TestPipelineMeasure(t *testing.T) {
	t.Parallel()

	msr := measure.NewDefaultMeasure()
	opt := measure.PipelineMeasure(msr)

	require.NoError(t, opt.New())
	assert.NotNil(t, msr.GetMetric(model.StartNode.Name))
	assert.NotNil(t, msr.GetMetric(model.EndNode.Name))

	info := &model.NodeInfo{Kind: model.LayerNodeKind, Name: "gray", LayerKind: "grayscale"}
	require.NoError(t, opt.PrepareNode(info))
	require.NoError(t, opt.OnNodeFit(info, 10*time.Millisecond))
	require.NoError(t, opt.OnNodeTransform(info, 30*time.Millisecond))
	require.NoError(t, opt.OnCacheLookup(info, 2, 1))
	require.NoError(t, opt.Finish())

	metric := msr.GetMetric("gray")
	require.NotNil(t, metric)
	assert.Equal(t, 10*time.Millisecond, metric.FitDuration())
	assert.Equal(t, 30*time.Millisecond, metric.AVGTransformDuration())
	assert.Equal(t, int64(2), metric.CacheHits())
	assert.Equal(t, int64(1), metric.CacheMisses())
}
