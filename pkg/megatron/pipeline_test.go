package megatron_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/megatron/pkg/megatron"
	"github.com/askiada/megatron/pkg/megatron/layers"
	"github.com/askiada/megatron/pkg/megatron/model"
)

func TestNewEmptyName(t *testing.T) {
	t.Parallel()

	input := model.Input("x", model.Shape{2})
	_, err := megatron.New("", []*model.Node{input}, []*model.Node{input})
	assert.ErrorIs(t, err, megatron.ErrNameMustBeSet)
}

func TestNewNoInputs(t *testing.T) {
	t.Parallel()

	input := model.Input("x", model.Shape{2})
	_, err := megatron.New("p", nil, []*model.Node{input})
	assert.ErrorIs(t, err, megatron.ErrInputMustBeSet)
}

func TestNewNoOutputs(t *testing.T) {
	t.Parallel()

	input := model.Input("x", model.Shape{2})
	_, err := megatron.New("p", []*model.Node{input}, nil)
	assert.ErrorIs(t, err, megatron.ErrOutputMustBeSet)
}

func TestNewNilInput(t *testing.T) {
	t.Parallel()

	input := model.Input("x", model.Shape{2})
	_, err := megatron.New("p", []*model.Node{nil}, []*model.Node{input})
	assert.ErrorIs(t, err, megatron.ErrInputMustBeSet)
}

func TestNewInputIsNotAnInputNode(t *testing.T) {
	t.Parallel()

	input := model.Input("x", model.Shape{2})
	flat, err := model.Apply(layers.NewFlatten(), []*model.Node{input}, "flat")
	require.NoError(t, err)

	_, err = megatron.New("p", []*model.Node{flat}, []*model.Node{flat})
	assert.ErrorIs(t, err, megatron.ErrInputMustBeSet)
}

func TestNewUnresolvedDependency(t *testing.T) {
	t.Parallel()

	declared := model.Input("x", model.Shape{2})
	hidden := model.Input("y", model.Shape{2})
	flat, err := model.Apply(layers.NewFlatten(), []*model.Node{hidden}, "flat")
	require.NoError(t, err)

	_, err = megatron.New("p", []*model.Node{declared}, []*model.Node{flat})
	assert.ErrorIs(t, err, megatron.ErrUnresolvedDependency)
}

func TestNewDisconnectedInput(t *testing.T) {
	t.Parallel()

	used := model.Input("x", model.Shape{2})
	unused := model.Input("y", model.Shape{2})
	flat, err := model.Apply(layers.NewFlatten(), []*model.Node{used}, "flat")
	require.NoError(t, err)

	_, err = megatron.New("p", []*model.Node{used, unused}, []*model.Node{flat})
	assert.ErrorIs(t, err, megatron.ErrDisconnectedInput)
}

func TestNewDuplicateNodeName(t *testing.T) {
	t.Parallel()

	input := model.Input("x", model.Shape{2})
	clash, err := model.Apply(layers.NewFlatten(), []*model.Node{input}, "x")
	require.NoError(t, err)

	_, err = megatron.New("p", []*model.Node{input}, []*model.Node{clash})
	assert.ErrorIs(t, err, megatron.ErrDuplicateNodeName)
}

func TestNewCyclicGraph(t *testing.T) {
	t.Parallel()

	input := model.Input("x", model.Shape{2})
	first, err := model.Apply(layers.NewFlatten(), []*model.Node{input}, "first")
	require.NoError(t, err)
	second, err := model.Apply(layers.NewFlatten(), []*model.Node{first}, "second")
	require.NoError(t, err)

	// Wire the downstream output back into its ancestor before validation.
	model.Link(second, first)

	_, err = megatron.New("p", []*model.Node{input}, []*model.Node{second})
	assert.ErrorIs(t, err, megatron.ErrCyclicGraph)
}

func TestNewSharedLayerFeedsItself(t *testing.T) {
	t.Parallel()

	input := model.Input("image", model.Shape{4, 4, 3})
	gray := layers.NewGrayscale()
	first, err := model.Apply(gray, []*model.Node{input}, "first")
	require.NoError(t, err)
	second, err := model.Apply(gray, []*model.Node{first}, "second")
	require.NoError(t, err)

	_, err = megatron.New("p", []*model.Node{input}, []*model.Node{second})
	assert.ErrorIs(t, err, megatron.ErrSharedLayerOrder)
}

func TestNewScenario(t *testing.T) {
	t.Parallel()

	pipe, _ := buildScenario(t)
	assert.Equal(t, "faces", pipe.Name())
	assert.Equal(t, "1", pipe.Version())
	assert.Equal(t, []string{"image_one", "image_two", "label"}, pipe.InputNames())
	assert.Equal(t, []string{"pred"}, pipe.OutputNames())

	node, ok := pipe.Node("pred")
	require.True(t, ok)
	assert.Equal(t, model.Shape{2}, node.Shape())

	_, ok = pipe.Node("unknown")
	assert.False(t, ok)
}

func TestPathIsStable(t *testing.T) {
	t.Parallel()

	first, _ := buildScenario(t)
	second, _ := buildScenario(t)

	path := first.Path()
	assert.Equal(t, path, second.Path())

	// Inputs come first, the prediction last, producers before consumers.
	assert.Equal(t, "pred", path[len(path)-1])
	index := make(map[string]int, len(path))
	for i, name := range path {
		index[name] = i
	}
	assert.Less(t, index["image_one"], index["gray_one"])
	assert.Less(t, index["gray_one"], index["flat_one"])
	assert.Less(t, index["flat_one"], index["std_one"])
	assert.Less(t, index["label"], index["label_one_hot"])
}

func TestWithVersion(t *testing.T) {
	t.Parallel()

	pipe, _ := buildScenario(t, megatron.WithVersion("7"))
	assert.Equal(t, "7", pipe.Version())
}
